package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kiron0/unreach/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestFileHashAndMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	writeFile(t, path, "export const a = 1;")

	h1, err := FileHash(path)
	if err != nil {
		t.Fatalf("FileHash() error = %v", err)
	}
	h2, err := FileHash(path)
	if err != nil || h1 != h2 {
		t.Errorf("FileHash() not stable across calls: %q vs %q", h1, h2)
	}

	meta, err := FileMetadata(path)
	if err != nil {
		t.Fatalf("FileMetadata() error = %v", err)
	}
	if meta.Hash != h1 {
		t.Errorf("FileMetadata().Hash = %q, want %q", meta.Hash, h1)
	}
	if meta.Size != int64(len("export const a = 1;")) {
		t.Errorf("FileMetadata().Size = %d", meta.Size)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	m := map[string]Metadata{
		"/proj/a.ts": {Hash: "abc", Mtime: time.Now().Truncate(time.Second), Size: 10},
		"/proj/b.ts": {Hash: "def", Mtime: time.Now().Truncate(time.Second), Size: 20},
	}
	c.SaveManifest(m)

	loaded := c.LoadManifest()
	if len(loaded) != 2 {
		t.Fatalf("LoadManifest() = %v, want 2 entries", loaded)
	}
	if loaded["/proj/a.ts"].Hash != "abc" || loaded["/proj/b.ts"].Hash != "def" {
		t.Errorf("LoadManifest() = %v", loaded)
	}
}

func TestLoadManifest_MissingFileReturnsEmpty(t *testing.T) {
	c := New(t.TempDir())
	if m := c.LoadManifest(); len(m) != 0 {
		t.Errorf("LoadManifest() = %v, want empty map", m)
	}
}

func TestLoadManifest_MalformedFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	if err := os.MkdirAll(dir+"/.unreach", 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeFile(t, c.manifestPath(), "{ not valid json")

	if m := c.LoadManifest(); len(m) != 0 {
		t.Errorf("LoadManifest() = %v, want empty map on malformed data", m)
	}
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	changedPath := filepath.Join(dir, "changed.ts")
	unchangedPath := filepath.Join(dir, "unchanged.ts")
	newPath := filepath.Join(dir, "new.ts")

	writeFile(t, changedPath, "old content")
	writeFile(t, unchangedPath, "stable content")

	unchangedMeta, err := FileMetadata(unchangedPath)
	if err != nil {
		t.Fatalf("FileMetadata() error = %v", err)
	}
	oldManifest := map[string]Metadata{
		changedPath:   {Hash: "stale-hash", Mtime: time.Now().Add(-time.Hour), Size: 1},
		unchangedPath: unchangedMeta,
		filepath.Join(dir, "deleted.ts"): {Hash: "gone", Mtime: time.Now(), Size: 1},
	}

	writeFile(t, newPath, "brand new")

	result := Classify([]string{changedPath, unchangedPath, newPath}, oldManifest)

	if len(result.Changed) != 1 || result.Changed[0] != changedPath {
		t.Errorf("Classify().Changed = %v", result.Changed)
	}
	if len(result.Unchanged) != 1 || result.Unchanged[0] != unchangedPath {
		t.Errorf("Classify().Unchanged = %v", result.Unchanged)
	}
	if len(result.New) != 1 || result.New[0] != newPath {
		t.Errorf("Classify().New = %v", result.New)
	}
	if len(result.Deleted) != 1 || result.Deleted[0] != filepath.Join(dir, "deleted.ts") {
		t.Errorf("Classify().Deleted = %v", result.Deleted)
	}
}

func TestClassify_UnreadableTreatedAsNew(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.ts")
	result := Classify([]string{missing}, map[string]Metadata{missing: {Hash: "x"}})
	if len(result.New) != 1 || result.New[0] != missing {
		t.Errorf("Classify() with unreadable current file = %v, want New=[%q]", result, missing)
	}
}

func TestASTRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	path := filepath.Join(dir, "a.ts")
	node := domain.NewFileSummary(path)
	node.Exports["widget"] = domain.ExportInfo{Type: domain.ExportNamed, Line: 1}

	c.SaveAST(path, node, "hash1")

	got := c.LoadAST(path, "hash1")
	if got == nil {
		t.Fatalf("LoadAST() = nil, want the cached node")
	}
	if _, ok := got.Exports["widget"]; !ok {
		t.Errorf("LoadAST() missing export %v", got.Exports)
	}
}

func TestLoadAST_HashMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	path := filepath.Join(dir, "a.ts")
	c.SaveAST(path, domain.NewFileSummary(path), "hash1")

	if got := c.LoadAST(path, "hash2"); got != nil {
		t.Errorf("LoadAST() with mismatched hash = %v, want nil", got)
	}
}

func TestLoadAST_MissingIsMiss(t *testing.T) {
	c := New(t.TempDir())
	if got := c.LoadAST(filepath.Join("nope", "a.ts"), "anyhash"); got != nil {
		t.Errorf("LoadAST() for an uncached path = %v, want nil", got)
	}
}

func TestClearAllAndClearASTs(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	path := filepath.Join(dir, "a.ts")
	c.SaveAST(path, domain.NewFileSummary(path), "hash1")
	c.SaveManifest(map[string]Metadata{path: {Hash: "hash1"}})

	if err := c.ClearASTs(); err != nil {
		t.Fatalf("ClearASTs() error = %v", err)
	}
	if got := c.LoadAST(path, "hash1"); got != nil {
		t.Errorf("LoadAST() after ClearASTs() = %v, want nil", got)
	}
	if m := c.LoadManifest(); len(m) != 1 {
		t.Errorf("ClearASTs() should leave the manifest intact, got %v", m)
	}

	if err := c.ClearAll(); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if m := c.LoadManifest(); len(m) != 0 {
		t.Errorf("LoadManifest() after ClearAll() = %v, want empty", m)
	}
}

func TestEnsureGitignore_AddsEntryOnce(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("MkdirAll(.git) error = %v", err)
	}
	c := New(dir)

	c.EnsureGitignore(dir)
	c.EnsureGitignore(dir)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("ReadFile(.gitignore) error = %v", err)
	}
	count := 0
	for _, line := range splitLines(string(data)) {
		if line == ".unreach" {
			count++
		}
	}
	if count != 1 {
		t.Errorf(".gitignore contains %d copies of the cache entry, want 1:\n%s", count, data)
	}
}

func TestEnsureGitignore_NoOpWithoutGitDir(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.EnsureGitignore(dir)

	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); err == nil {
		t.Errorf("expected no .gitignore to be created outside a git repository")
	}
}
