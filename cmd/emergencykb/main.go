package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/joho/godotenv"
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"

	"github.com/viant/emergencykb/service"
	"github.com/viant/emergencykb/vectordb/persist"
)

var smokeQueries = []string{
	"what to do during earthquake",
	"flood safety",
	"hurricane evacuation",
	"first aid bleeding",
}

func main() {
	_ = godotenv.Load()
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		buildCmd(os.Args[2:])
	case "search":
		searchCmd(os.Args[2:])
	case "status":
		statusCmd(os.Args[2:])
	case "stats":
		statsCmd(os.Args[2:])
	case "info":
		infoCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: emergencykb <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  build   Ingest the source directory, build and save the index")
	fmt.Fprintln(os.Stderr, "  search  Query the saved index (or a running server with --mcp-addr)")
	fmt.Fprintln(os.Stderr, "  status  Show the source directory and its eligible files")
	fmt.Fprintln(os.Stderr, "  stats   Show category, source and quality statistics of the saved index")
	fmt.Fprintln(os.Stderr, "  info    Show the saved index metadata")
	fmt.Fprintln(os.Stderr, "  serve   Serve search, stats and status over MCP")
}

// commonFlags are shared by every command that opens the knowledge base.
type commonFlags struct {
	configPath *string
	source     *string
	storage    *string
	embedder   *string
	model      *string
	baseURL    *string
	apiKey     *string
	timeout    *int
	strict     *bool
}

func registerCommon(flags *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: flags.String("config", "", "config yaml (optional, defaults to ~/emergencykb/config.yaml if present)"),
		source:     flags.String("source", "", "source documents directory or bucket URL (default "+service.DefaultSourceURL+")"),
		storage:    flags.String("storage", "", "index storage directory (default "+service.DefaultStorageURL+")"),
		embedder:   flags.String("embedder", "", "embedder: ollama|openai|vertexai|simple"),
		model:      flags.String("model", "", "embedding model"),
		baseURL:    flags.String("base-url", "", "embedding API base URL"),
		apiKey:     flags.String("api-key", "", "embedding API key (openai)"),
		timeout:    flags.Int("timeout", 0, "embedding call timeout in seconds"),
		strict:     flags.Bool("strict", false, "fail searches when the index and documents disagree"),
	}
}

// config loads the config file, if any, and applies flag overrides.
func (c *commonFlags) config() *service.Config {
	cfg := &service.Config{}
	if path := resolveConfigPath(*c.configPath); path != "" {
		loaded, err := service.LoadConfig(path)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *c.source != "" {
		cfg.SourceDir = *c.source
	}
	if *c.storage != "" {
		cfg.StorageDir = *c.storage
	}
	if *c.embedder != "" {
		cfg.Embedder.Name = *c.embedder
	}
	if *c.model != "" {
		cfg.Embedder.Model = *c.model
	}
	if *c.baseURL != "" {
		cfg.Embedder.BaseURL = *c.baseURL
	}
	if *c.apiKey != "" {
		cfg.Embedder.APIKey = *c.apiKey
	}
	if *c.timeout > 0 {
		cfg.Embedder.TimeoutSeconds = *c.timeout
	}
	if *c.strict {
		cfg.StrictIndex = true
	}
	return cfg
}

func (c *commonFlags) service(ctx context.Context) (*service.Service, *service.Config) {
	cfg := c.config()
	emb, err := service.SelectEmbedder(cfg.Embedder)
	if err != nil {
		log.Fatalf("embedder: %v", err)
	}
	opts := append(cfg.Options(), service.WithEmbedder(emb), service.WithLogf(log.Printf))
	svc, err := service.New(ctx, opts...)
	if err != nil {
		log.Fatalf("service init: %v", err)
	}
	return svc, cfg
}

func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(home, "emergencykb", "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func buildCmd(args []string) {
	flags := flag.NewFlagSet("build", flag.ExitOnError)
	common := registerCommon(flags)
	force := flags.Bool("force", false, "reprocess files even when unchanged")
	smoke := flags.Bool("smoke", true, "run sample queries after the build")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	svc, _ := common.service(ctx)

	status, err := svc.Status(ctx)
	if err != nil {
		log.Fatalf("status: %v", err)
	}
	printStatus(status)
	if status.FileCount == 0 {
		fmt.Println("No source files found; the builtin emergency documents will be used.")
	}

	if !*force {
		restored, err := svc.Restore(ctx)
		if err != nil {
			log.Fatalf("load: %v", err)
		}
		if restored {
			fmt.Printf("Loaded %d indexed documents; unchanged files will be skipped.\n", svc.Len())
		}
	}

	start := time.Now()
	result, err := svc.Build(ctx, &service.BuildRequest{Force: *force})
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	if result.Report != nil {
		fmt.Printf("ingest: %v\n", result.Report)
		for _, failure := range result.Report.Failed {
			fmt.Printf("  failed: %v\n", failure)
		}
	}
	fmt.Printf("indexed %d documents (dropped=%d dim=%d) in %s\n", result.Documents, result.Dropped, result.Dimension, time.Since(start).Truncate(time.Millisecond))

	manifest, err := svc.Save(ctx)
	if err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Println("Source breakdown:")
	for _, source := range sortedKeys(manifest.SourceBreakdown) {
		fmt.Printf("  - %s: %d chunks\n", source, manifest.SourceBreakdown[source])
	}

	if !*smoke {
		return
	}
	for _, query := range smokeQueries {
		results, err := svc.Search(ctx, query, 2)
		if err != nil {
			log.Printf("search %q: %v", query, err)
			continue
		}
		fmt.Printf("\nQuery: %q\n", query)
		for _, r := range results {
			fmt.Printf("  - %s (source=%s score=%.3f)\n", clip(r.Document.Title, 50), r.Document.Source, r.Score)
		}
	}
}

func searchCmd(args []string) {
	flags := flag.NewFlagSet("search", flag.ExitOnError)
	common := registerCommon(flags)
	query := flags.String("query", "", "search query (or pass it as arguments)")
	k := flags.Int("k", service.DefaultK, "number of results")
	category := flags.String("category", "", "keep only results of this category (with --mcp-addr)")
	mcpAddr := flags.String("mcp-addr", "", "query a running MCP server instead of the local index")
	flags.Parse(args)

	q := *query
	if q == "" {
		q = strings.Join(flags.Args(), " ")
	}
	if strings.TrimSpace(q) == "" {
		flags.Usage()
		os.Exit(2)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *mcpAddr != "" {
		out, err := mcpSearch(ctx, *mcpAddr, q, *k, *category)
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		printJSON(out.Results)
		return
	}

	svc, _ := common.service(ctx)
	if err := svc.Load(ctx); err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			log.Fatalf("search: no saved index, run build first")
		}
		log.Fatalf("load: %v", err)
	}
	results, err := svc.Search(ctx, q, *k)
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	for i, r := range results {
		fmt.Printf("%d. [%s] %s (source=%s score=%.3f)\n", i+1, r.Document.Category, r.Document.Title, r.Document.Source, r.Score)
		fmt.Printf("   %s\n", clip(r.Document.Content, 200))
	}
}

func statusCmd(args []string) {
	flags := flag.NewFlagSet("status", flag.ExitOnError)
	common := registerCommon(flags)
	flags.Parse(args)

	ctx := context.Background()
	svc, _ := common.service(ctx)
	status, err := svc.Status(ctx)
	if err != nil {
		log.Fatalf("status: %v", err)
	}
	printStatus(status)
	exists, err := svc.Exists(ctx)
	if err != nil {
		log.Fatalf("status: %v", err)
	}
	fmt.Printf("Saved index: %t\n", exists)
}

func statsCmd(args []string) {
	flags := flag.NewFlagSet("stats", flag.ExitOnError)
	common := registerCommon(flags)
	flags.Parse(args)

	ctx := context.Background()
	svc, _ := common.service(ctx)
	if err := svc.Load(ctx); err != nil {
		log.Fatalf("load: %v", err)
	}
	printJSON(svc.Stats())
}

func infoCmd(args []string) {
	flags := flag.NewFlagSet("info", flag.ExitOnError)
	common := registerCommon(flags)
	flags.Parse(args)

	ctx := context.Background()
	svc, _ := common.service(ctx)
	manifest, err := svc.Info(ctx)
	if err != nil {
		log.Fatalf("info: %v", err)
	}
	printJSON(manifest)
}

func printStatus(status *service.Status) {
	fmt.Printf("Source directory: %s (exists=%t)\n", status.SourceDir, status.DirectoryExists)
	fmt.Printf("Source files found: %d\n", status.FileCount)
	for _, name := range status.Files {
		fmt.Printf("  - %s\n", name)
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	fmt.Println(string(data))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func clip(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
