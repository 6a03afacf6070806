package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/viant/scy/cred/secret"
	"gopkg.in/yaml.v3"

	"github.com/viant/emergencykb/classifier"
	"github.com/viant/emergencykb/indexer"
	"github.com/viant/emergencykb/indexer/splitter"
	"github.com/viant/emergencykb/matching"
	"github.com/viant/emergencykb/matching/option"
)

// Config defines knowledge base settings.
type Config struct {
	SourceDir          string          `yaml:"sourceDir"`
	StorageDir         string          `yaml:"storageDir"`
	ChunkSize          int             `yaml:"chunkSize"`
	ChunkOverlap       int             `yaml:"chunkOverlap"`
	MinChunkLength     int             `yaml:"minChunkLength"`
	RelevanceThreshold float64         `yaml:"relevanceThreshold"`
	CategoryThreshold  float64         `yaml:"categoryThreshold"`
	LexicalWeight      float64         `yaml:"lexicalWeight"`
	SemanticWeight     float64         `yaml:"semanticWeight"`
	StrictIndex        bool            `yaml:"strictIndex"`
	Include            []string        `yaml:"include"`
	Exclude            []string        `yaml:"exclude"`
	MaxSizeBytes       int             `yaml:"maxSizeBytes"`
	Embedder           EmbedderConfig  `yaml:"embedder"`
	MCPServer          MCPServerConfig `yaml:"mcpServer"`
}

// EmbedderConfig selects and configures the embedding backend.
type EmbedderConfig struct {
	Name    string `yaml:"name"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL"`
	APIKey  string `yaml:"apiKey"`
	// Secret is a scy resource expanded into APIKey placeholders.
	Secret         string   `yaml:"secret,omitempty"`
	Project        string   `yaml:"project"`
	Location       string   `yaml:"location"`
	Scopes         []string `yaml:"scopes"`
	Dim            int      `yaml:"dim"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
	CacheSize      int      `yaml:"cacheSize"`
}

// MCPServerConfig defines MCP server settings.
type MCPServerConfig struct {
	Addr string `yaml:"addr"`
	Port int    `yaml:"port"`
}

// LoadConfig reads a YAML config, expanding ~ in directories and the embedder secret.
func LoadConfig(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: %v: %w", path, err)
	}
	if cfg.SourceDir, err = expandUserPath(cfg.SourceDir); err != nil {
		return nil, err
	}
	if cfg.StorageDir, err = expandUserPath(cfg.StorageDir); err != nil {
		return nil, err
	}
	if cfg.Embedder.Secret != "" {
		expanded, err := ExpandWithSecret(context.Background(), cfg.Embedder.APIKey, cfg.Embedder.Secret)
		if err != nil {
			return nil, err
		}
		cfg.Embedder.APIKey = expanded
	}
	return &cfg, nil
}

// Options translates the config into service options; zero values keep the defaults.
func (c *Config) Options() []Option {
	var opts []Option
	if c.SourceDir != "" {
		opts = append(opts, WithSourceURL(c.SourceDir))
	}
	if c.StorageDir != "" {
		opts = append(opts, WithStorageURL(c.StorageDir))
	}
	if c.StrictIndex {
		opts = append(opts, WithStrictIndex(true))
	}
	if c.Embedder.TimeoutSeconds > 0 {
		opts = append(opts, WithTimeout(time.Duration(c.Embedder.TimeoutSeconds)*time.Second))
	}
	if c.Embedder.CacheSize != 0 {
		opts = append(opts, WithCacheSize(c.Embedder.CacheSize))
	}

	var classifierOpts []classifier.Option
	if c.RelevanceThreshold > 0 {
		classifierOpts = append(classifierOpts, classifier.WithRelevanceThreshold(c.RelevanceThreshold))
	}
	if c.CategoryThreshold > 0 {
		classifierOpts = append(classifierOpts, classifier.WithCategoryThreshold(c.CategoryThreshold))
	}
	if c.LexicalWeight > 0 || c.SemanticWeight > 0 {
		lexical, semantic := c.LexicalWeight, c.SemanticWeight
		if lexical <= 0 {
			lexical = classifier.DefaultLexicalWeight
		}
		if semantic <= 0 {
			semantic = classifier.DefaultSemanticWeight
		}
		classifierOpts = append(classifierOpts, classifier.WithWeights(lexical, semantic))
	}
	if c.MinChunkLength > 0 {
		classifierOpts = append(classifierOpts, classifier.WithMinLength(c.MinChunkLength))
	}
	if len(classifierOpts) > 0 {
		opts = append(opts, WithClassifierOptions(classifierOpts...))
	}

	var indexerOpts []indexer.Option
	if c.ChunkSize > 0 || c.ChunkOverlap > 0 {
		size, overlap := c.ChunkSize, c.ChunkOverlap
		if size <= 0 {
			size = splitter.DefaultChunkSize
		}
		if overlap <= 0 {
			overlap = splitter.DefaultChunkOverlap
		}
		indexerOpts = append(indexerOpts, indexer.WithSplitter(splitter.NewRecursive(size, overlap)))
	}
	if len(c.Include) > 0 || len(c.Exclude) > 0 || c.MaxSizeBytes > 0 {
		indexerOpts = append(indexerOpts, indexer.WithMatcher(c.Matcher()))
	}
	if len(indexerOpts) > 0 {
		opts = append(opts, WithIndexerOptions(indexerOpts...))
	}
	return opts
}

// Matcher builds the source file matcher; without includes the supported extensions are used.
func (c *Config) Matcher() *matching.Manager {
	include := c.Include
	if len(include) == 0 {
		include = DefaultInclude()
	}
	opts := []option.Option{
		option.WithInclusionPatterns(include...),
		option.WithDefaultExclusionPatterns(),
	}
	if len(c.Exclude) > 0 {
		opts = append(opts, option.WithExclusionPatterns(c.Exclude...))
	}
	if c.MaxSizeBytes > 0 {
		opts = append(opts, option.WithMaxIndexableSize(c.MaxSizeBytes))
	}
	return matching.New(opts...)
}

// DefaultInclude returns the extensions ingested by default.
func DefaultInclude() []string {
	return []string{".pdf", ".txt", ".md", ".docx", ".xlsx", ".xls"}
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed[0] != '~' {
		return path, nil
	}
	if trimmed != "~" && !strings.HasPrefix(trimmed, "~/") {
		return "", fmt.Errorf("config: unsupported ~user path: %s", path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(trimmed, "~")), nil
}

// ExpandWithSecret loads a secret and expands placeholders in value.
func ExpandWithSecret(ctx context.Context, value, secretRef string) (string, error) {
	secretRef = strings.TrimSpace(secretRef)
	if secretRef == "" {
		return value, nil
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("secret %q provided but value is empty", secretRef)
	}
	sec, err := secret.New().Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(value), nil
}
