// Package graph implements the Dependency Graph component (C5, §4.5): it
// drives the scan → cache → parse pipeline that populates a
// domain.DependencyGraph, and implements relative-specifier resolution.
// Grounded on internal/analyzer/dependency_graph.go's resolveImportTarget
// (extension-list + index-file resolution order, memoized lookups) and
// domain/dependency_graph.go's map-backed node structure — generalized
// from the teacher's ModuleNode/DependencyEdge graph (built once from a
// completed ModuleAnalysisResult) to the spec's incremental, cache-aware
// construction sequence (§4.5 steps 1-7).
package graph

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/cache"
	"github.com/kiron0/unreach/internal/parser"
	"github.com/kiron0/unreach/internal/scanner"
	"github.com/kiron0/unreach/internal/style"
	"github.com/kiron0/unreach/service"
)

// resolutionExtensions is the ordered extension list tried during
// relative-specifier resolution (§4.5 step 3).
var resolutionExtensions = []string{".ts", ".tsx", ".js", ".jsx", ""}

// BuildResult bundles the constructed graph with the style-sheet paths
// scanned, for callers (e.g. finders) that need the raw file lists too.
type BuildResult struct {
	Graph       *domain.DependencyGraph
	SourceFiles []string
	StyleFiles  []string
}

// Build performs the C5 construction sequence (§4.5 steps 1-7): scan,
// classify against the cache manifest when incremental is enabled, parse
// changed/new files with bounded concurrency, remove deleted entries, save
// the manifest, parse style files, and mark entry points.
func Build(ctx context.Context, projectRoot string, cfg *domain.Config, entryPoints []string, incremental bool, opts *domain.AnalyzeOptions) (*BuildResult, error) {
	scanResult, err := scanner.Scan(projectRoot, cfg)
	if err != nil {
		return nil, err
	}

	g := domain.NewDependencyGraph()
	c := cache.New(projectRoot)

	var toParse []string
	if incremental {
		oldManifest := c.LoadManifest()
		classification := cache.Classify(scanResult.SourceFiles, oldManifest)

		for _, path := range classification.Unchanged {
			meta := oldManifest[path]
			summary := c.LoadAST(path, meta.Hash)
			if summary != nil {
				g.AddFile(summary)
				continue
			}
			toParse = append(toParse, path)
		}
		toParse = append(toParse, classification.New...)
		toParse = append(toParse, classification.Changed...)
	} else {
		toParse = scanResult.SourceFiles
	}

	if err := parseBatch(ctx, g, c, toParse, cfg, opts); err != nil {
		return nil, err
	}

	newManifest := make(map[string]cache.Metadata, len(scanResult.SourceFiles))
	for _, path := range scanResult.SourceFiles {
		if !g.Has(path) {
			continue
		}
		if meta, err := cache.FileMetadata(path); err == nil {
			newManifest[path] = meta
		}
	}
	c.SaveManifest(newManifest)
	c.EnsureGitignore(projectRoot)

	for _, stylePath := range scanResult.StyleFiles {
		classes, err := style.ParseFile(stylePath)
		if err != nil {
			opts.Warn(domain.NewAnalysisError(domain.ErrStyleParseFailure, stylePath, "unreadable style file", err).Error())
			continue
		}
		g.SetStyleClasses(stylePath, classes)
	}

	for _, entry := range entryPoints {
		abs, err := filepath.Abs(entry)
		if err != nil {
			return nil, domain.NewAnalysisError(domain.ErrEntryPointMissing, entry, "cannot resolve entry point", err)
		}
		if !g.Has(abs) {
			summary, perr := parseOne(g, c, abs, cfg, opts)
			if perr != nil {
				return nil, domain.NewAnalysisError(domain.ErrEntryPointMissing, abs, "entry point does not exist", perr)
			}
			if summary == nil {
				// parseOne already warned about the size cap or syntax
				// error that produced this; an entry point that can't be
				// parsed can't seed reachability, so it's still fatal, but
				// as a ParseFailure rather than a missing entry point.
				return nil, domain.NewAnalysisError(domain.ErrParseFailure, abs, "entry point could not be parsed", nil)
			}
			g.AddFile(summary)
		}
		g.MarkEntryPoint(abs)
	}

	return &BuildResult{Graph: g, SourceFiles: scanResult.SourceFiles, StyleFiles: scanResult.StyleFiles}, nil
}

func maxFileSize(cfg *domain.Config) int64 {
	if cfg != nil && cfg.MaxFileSize > 0 {
		return cfg.MaxFileSize
	}
	return 10 * 1024 * 1024
}

// parseOne parses a single file on demand (§4.5 step 7: entry points not
// already present in the graph), honoring the same max-file-size cutoff as
// the batch path; unlike parseTask, it first reuses a cached AST whose hash
// still matches.
func parseOne(g *domain.DependencyGraph, c *cache.Cache, path string, cfg *domain.Config, opts *domain.AnalyzeOptions) (*domain.FileSummary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize(cfg) {
		opts.Warn(domain.NewAnalysisError(domain.ErrParseFailure, path, "file exceeds max size", nil).Error())
		return nil, nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	hash, err := cache.FileHash(path)
	if err != nil {
		hash = ""
	}
	if hash != "" {
		if cached := c.LoadAST(path, hash); cached != nil {
			return cached, nil
		}
	}

	p := parser.NewParser()
	defer p.Close()
	summary, perr := p.ParseSource(path, source)
	if perr != nil {
		opts.Warn(domain.NewAnalysisError(domain.ErrParseFailure, path, "syntax error", perr).Error())
		return nil, nil
	}
	if summary != nil && hash != "" {
		c.SaveAST(path, summary, hash)
	}
	return summary, nil
}

// parseTask parses a single file for parseBatch's worker pool, implementing
// domain.ExecutableTask so the batch runs through service.ParallelExecutorImpl
// instead of a hand-rolled errgroup loop. A parse failure on one file is
// reported through opts and never returned as a task error (§4.3/§7
// ParseFailure is local, it must not abort the rest of the batch).
type parseTask struct {
	g       *domain.DependencyGraph
	c       *cache.Cache
	path    string
	sizeCap int64
	opts    *domain.AnalyzeOptions
}

func (t *parseTask) Name() string    { return t.path }
func (t *parseTask) IsEnabled() bool { return true }

func (t *parseTask) Execute(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	t.opts.FileStarted(t.path)

	info, err := os.Stat(t.path)
	if err != nil {
		t.opts.FileFinished(t.path, err)
		return nil, nil
	}
	if info.Size() > t.sizeCap {
		ferr := domain.NewAnalysisError(domain.ErrParseFailure, t.path, "file exceeds max size", nil)
		t.opts.Warn(ferr.Error())
		t.opts.FileFinished(t.path, ferr)
		return nil, nil
	}
	source, err := os.ReadFile(t.path)
	if err != nil {
		t.opts.FileFinished(t.path, err)
		return nil, nil
	}
	hash, hashErr := cache.FileHash(t.path)

	p := parser.NewParser()
	defer p.Close()
	summary, perr := p.ParseSource(t.path, source)
	if perr != nil {
		ferr := domain.NewAnalysisError(domain.ErrParseFailure, t.path, "syntax error", perr)
		t.opts.Warn(ferr.Error())
		t.opts.FileFinished(t.path, ferr)
		return nil, nil
	}
	t.g.AddFile(summary)
	if hashErr == nil {
		t.c.SaveAST(t.path, summary, hash)
	}
	t.opts.FileFinished(t.path, nil)
	return nil, nil
}

// parseBatch parses paths in parallel through service.ParallelExecutorImpl,
// concurrency bounded to opts.MaxGoroutines (falling back to min(NumCPU, 8))
// (§4.5 step 3, §5); each parseTask creates and closes its own tree-sitter
// Parser since *parser.Parser is not safe for concurrent use.
func parseBatch(ctx context.Context, g *domain.DependencyGraph, c *cache.Cache, paths []string, cfg *domain.Config, opts *domain.AnalyzeOptions) error {
	if len(paths) == 0 {
		return nil
	}
	limit := runtime.NumCPU()
	if opts != nil && opts.MaxGoroutines > 0 {
		limit = opts.MaxGoroutines
	}
	if limit > 8 {
		limit = 8
	}
	if limit < 1 {
		limit = 1
	}

	sizeCap := maxFileSize(cfg)

	tasks := make([]domain.ExecutableTask, len(paths))
	for i, path := range paths {
		tasks[i] = &parseTask{g: g, c: c, path: path, sizeCap: sizeCap, opts: opts}
	}

	executor := service.NewParallelExecutor()
	executor.SetMaxConcurrency(limit)
	// The batch's real deadline is ctx (the whole analyze() run); the
	// executor's own timeout exists for standalone callers, so give it
	// enough room that it never fires first here.
	executor.SetTimeout(24 * time.Hour)

	if err := executor.Execute(ctx, tasks); err != nil {
		return domain.NewAnalysisError(domain.ErrParseFailure, "", "parse batch failed", err)
	}
	return nil
}

// Resolve implements §4.5's relative-specifier resolution: strip a
// trailing .js/.jsx, join with the importing file's directory, then try
// each extension in resolutionExtensions against both the bare candidate
// and its /index form, falling back to the un-stripped base verbatim.
// Bare (non-relative) specifiers are never resolved here — callers must
// classify them as package imports before calling Resolve.
func Resolve(g *domain.DependencyGraph, fromFile, specifier string) domain.ResolvedModule {
	if cached, ok := g.LookupResolution(fromFile, specifier); ok {
		return cached
	}

	stripped := specifier
	for _, ext := range []string{".js", ".jsx"} {
		if strings.HasSuffix(stripped, ext) {
			stripped = strings.TrimSuffix(stripped, ext)
			break
		}
	}

	dir := filepath.Dir(fromFile)
	base := filepath.Join(dir, stripped)

	for _, ext := range resolutionExtensions {
		candidate := filepath.Clean(base + ext)
		if g.Has(candidate) {
			result := domain.ResolvedModule{Path: candidate, Ok: true}
			g.CacheResolution(fromFile, specifier, result)
			return result
		}
	}
	for _, ext := range resolutionExtensions {
		candidate := filepath.Clean(filepath.Join(base, "index"+ext))
		if g.Has(candidate) {
			result := domain.ResolvedModule{Path: candidate, Ok: true}
			g.CacheResolution(fromFile, specifier, result)
			return result
		}
	}

	fallback := filepath.Clean(filepath.Join(dir, specifier))
	result := domain.ResolvedModule{Path: fallback, Ok: g.Has(fallback)}
	g.CacheResolution(fromFile, specifier, result)
	return result
}

// IsRelativeSpecifier reports whether specifier begins with "." or ".."
// (§GLOSSARY Relative specifier).
func IsRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".."
}

// PackageName extracts the package name from a bare specifier: the first
// segment, or the first two segments for a scoped @scope/name package
// (§GLOSSARY Bare specifier).
func PackageName(specifier string) string {
	if strings.HasPrefix(specifier, "@") {
		parts := strings.SplitN(specifier, "/", 3)
		if len(parts) >= 2 {
			return parts[0] + "/" + parts[1]
		}
		return specifier
	}
	parts := strings.SplitN(specifier, "/", 2)
	return parts[0]
}
