package option

import (
	"bufio"
	"io"
	"strings"
)

// Options holds the file selection rules.
type Options struct {
	// Exclusions are gitignore-style patterns; "!" negates an earlier match.
	Exclusions []string
	// Inclusions restrict selection to matching files; ".ext" entries match by extension.
	Inclusions []string
	// MaxFileSize is the largest eligible file in bytes; zero disables the limit.
	MaxFileSize int
}

// Options returns the Option list reproducing o.
func (o *Options) Options() []Option {
	var result []Option
	if o.MaxFileSize > 0 {
		result = append(result, WithMaxIndexableSize(o.MaxFileSize))
	}
	if o.Exclusions != nil {
		result = append(result, WithExclusionPatterns(o.Exclusions...))
	}
	if o.Inclusions != nil {
		result = append(result, WithInclusionPatterns(o.Inclusions...))
	}
	return result
}

// NewOptions applies opts; default exclusions apply when none are given.
func NewOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Exclusions == nil {
		options.Exclusions = DefaultExclusions()
	}
	return options
}

// Option modifies Options.
type Option func(*Options)

// WithExclusionPatterns appends exclusion patterns.
func WithExclusionPatterns(patterns ...string) Option {
	return func(o *Options) {
		o.Exclusions = append(o.Exclusions, patterns...)
	}
}

// WithInclusionPatterns appends inclusion patterns.
func WithInclusionPatterns(patterns ...string) Option {
	return func(o *Options) {
		o.Inclusions = append(o.Inclusions, patterns...)
	}
}

// WithMaxIndexableSize sets the maximum eligible file size.
func WithMaxIndexableSize(size int) Option {
	return func(o *Options) {
		o.MaxFileSize = size
	}
}

// WithIgnoreFile appends patterns read from a gitignore-style file.
func WithIgnoreFile(reader io.Reader) Option {
	return func(o *Options) {
		if patterns := parseIgnoreFile(reader); len(patterns) > 0 {
			o.Exclusions = append(o.Exclusions, patterns...)
		}
	}
}

// WithDefaultExclusionPatterns appends DefaultExclusions.
func WithDefaultExclusionPatterns() Option {
	return func(o *Options) {
		o.Exclusions = append(o.Exclusions, DefaultExclusions()...)
	}
}

// DefaultExclusions skips VCS folders, OS metadata and editor or office lock files.
func DefaultExclusions() []string {
	return []string{
		".git/",
		".svn/",
		"__MACOSX/",
		".DS_Store",
		"Thumbs.db",
		"~$*",
		".~lock.*",
		"*.swp",
		"*.tmp",
		"*.bak",
	}
}

func parseIgnoreFile(reader io.Reader) []string {
	var patterns []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
