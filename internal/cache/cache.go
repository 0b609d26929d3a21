// Package cache implements the Analysis Cache component (§4.4): a
// content-addressed, on-disk store mapping a file's SHA-256 hash to its
// parsed domain.FileSummary, plus per-file metadata for change detection.
// Grounded on 1homsi-gorisk/internal/interproc/cache.go (Cache.Load/Store,
// ComputeCodeHash, JSON-blob-per-entry layout, graceful degradation on I/O
// failure), adapted to the spec's exact on-disk layout (§3/§6): a single
// cache.json manifest (a JSON array of [path, metadata] pairs) plus an
// asts/ directory of JSON blobs keyed by a short hash of the absolute path.
//
// Failure policy (§4.4): every I/O failure silently degrades to a cache
// miss. The cache is advisory.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/constants"
)

// Metadata is the per-file record stored in the manifest (§3/§6).
type Metadata struct {
	Hash  string    `json:"hash"`
	Mtime time.Time `json:"mtime"`
	Size  int64     `json:"size"`
}

// manifestEntry is one [path, metadata] pair as the manifest is serialized
// on disk (§6: "a sequence of [absolutePath, {hash, mtime, size}]").
type manifestEntry struct {
	Path     string   `json:"-"`
	Metadata Metadata `json:"-"`
}

func (e manifestEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Path, e.Metadata})
}

func (e *manifestEntry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Path); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Metadata)
}

// astBlob is the on-disk shape of one cached FileSummary (§3/§4.3: "{
// node, hash, timestamp }").
type astBlob struct {
	Node      *domain.FileSummary `json:"node"`
	Hash      string              `json:"hash"`
	Timestamp time.Time           `json:"timestamp"`
}

// Classification is the outcome of comparing the current file set against
// the loaded manifest (§4.4 classify).
type Classification struct {
	Changed   []string
	New       []string
	Unchanged []string
	Deleted   []string
}

// Cache is the on-disk cache rooted at <projectRoot>/.unreach (§3/§6).
type Cache struct {
	root string
}

// New returns a Cache rooted at projectRoot's .unreach directory. It does
// not touch disk; directories are created lazily on first write.
func New(projectRoot string) *Cache {
	return &Cache{root: filepath.Join(projectRoot, constants.CacheDirName)}
}

func (c *Cache) manifestPath() string {
	return filepath.Join(c.root, constants.ManifestFileName)
}

func (c *Cache) astDir() string {
	return filepath.Join(c.root, constants.ASTCacheDirName)
}

// EnsureGitignore appends the cache directory name to <projectRoot>/.gitignore
// on first use, if a .git directory exists and the entry is not already
// present (§3/§6).
func (c *Cache) EnsureGitignore(projectRoot string) {
	if _, err := os.Stat(filepath.Join(projectRoot, ".git")); err != nil {
		return
	}
	gitignorePath := filepath.Join(projectRoot, ".gitignore")
	existing, _ := os.ReadFile(gitignorePath)
	entry := constants.CacheDirName
	for _, line := range splitLines(string(existing)) {
		if line == entry || line == entry+"/" {
			return
		}
	}
	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString(entry + "\n")
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// FileHash returns the SHA-256 hex digest of path's content.
func FileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// FileMetadata returns the current {hash, mtime, size} for path.
func FileMetadata(path string) (Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, err
	}
	hash, err := FileHash(path)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{Hash: hash, Mtime: info.ModTime(), Size: info.Size()}, nil
}

// LoadManifest loads the on-disk manifest, tolerating a missing or
// malformed file by returning an empty map (§4.4).
func (c *Cache) LoadManifest() map[string]Metadata {
	result := make(map[string]Metadata)
	data, err := os.ReadFile(c.manifestPath())
	if err != nil {
		return result
	}
	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return result
	}
	for _, e := range entries {
		result[e.Path] = e.Metadata
	}
	return result
}

// SaveManifest persists the manifest. I/O failures are silently ignored
// per the cache's advisory failure policy.
func (c *Cache) SaveManifest(m map[string]Metadata) {
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return
	}
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	entries := make([]manifestEntry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, manifestEntry{Path: p, Metadata: m[p]})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return
	}
	_ = atomicWrite(c.manifestPath(), data)
}

// Classify partitions currentFiles against oldManifest into
// changed/new/unchanged/deleted sets (§4.4). "changed" = a known file whose
// hash or mtime differs from the manifest; "unchanged" = both match.
func Classify(currentFiles []string, oldManifest map[string]Metadata) Classification {
	var result Classification
	seen := make(map[string]struct{}, len(currentFiles))

	for _, path := range currentFiles {
		seen[path] = struct{}{}
		meta, err := FileMetadata(path)
		if err != nil {
			// Unreadable now; treat like new so the caller re-parses and
			// surfaces the failure through its own I/O path.
			result.New = append(result.New, path)
			continue
		}
		old, known := oldManifest[path]
		if !known {
			result.New = append(result.New, path)
			continue
		}
		if old.Hash != meta.Hash || !old.Mtime.Equal(meta.Mtime) {
			result.Changed = append(result.Changed, path)
			continue
		}
		result.Unchanged = append(result.Unchanged, path)
	}

	for path := range oldManifest {
		if _, ok := seen[path]; !ok {
			result.Deleted = append(result.Deleted, path)
		}
	}
	return result
}

// astBlobPath returns the blob path for a canonical absolute path, keyed
// by a short hash of that path (§3/§6: "<root>/.unreach/asts/<16-hex>.json").
func (c *Cache) astBlobPath(path string) string {
	sum := sha256.Sum256([]byte(path))
	key := hex.EncodeToString(sum[:])[:16]
	return filepath.Join(c.astDir(), key+".json")
}

// LoadAST returns the cached FileSummary for path if present, hash-matched
// and not older than the staleness window (§4.3/§4.4: 7 days).
func (c *Cache) LoadAST(path, currentHash string) *domain.FileSummary {
	data, err := os.ReadFile(c.astBlobPath(path))
	if err != nil {
		return nil
	}
	var blob astBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil
	}
	if blob.Hash != currentHash || blob.Node == nil {
		return nil
	}
	if time.Since(blob.Timestamp) > constants.CacheStalenessWindowDays*24*time.Hour {
		return nil
	}
	return blob.Node
}

// SaveAST writes node under the AST cache, evicting the oldest 25% of
// blobs first if the asts/ directory already exceeds the size threshold
// (§4.3: "If the total size of the asts/ directory exceeds 100 MiB, evict
// the oldest 25% of blobs by modification time before writing").
func (c *Cache) SaveAST(path string, node *domain.FileSummary, hash string) {
	dir := c.astDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	evictIfOversized(dir)

	blob := astBlob{Node: node, Hash: hash, Timestamp: time.Now()}
	data, err := json.Marshal(blob)
	if err != nil {
		return
	}
	_ = atomicWrite(c.astBlobPath(path), data)
}

type blobInfo struct {
	path    string
	size    int64
	modTime time.Time
}

func evictIfOversized(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var blobs []blobInfo
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		blobs = append(blobs, blobInfo{path: filepath.Join(dir, e.Name()), size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
	}
	if total <= constants.MaxASTCacheBytes {
		return
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].modTime.Before(blobs[j].modTime) })
	evictCount := int(float64(len(blobs)) * constants.ASTCacheEvictFraction)
	for i := 0; i < evictCount; i++ {
		_ = os.Remove(blobs[i].path)
	}
}

// ClearAll removes the entire .unreach cache directory.
func (c *Cache) ClearAll() error {
	return os.RemoveAll(c.root)
}

// ClearASTs removes only the asts/ subdirectory, leaving the manifest intact.
func (c *Cache) ClearASTs() error {
	return os.RemoveAll(c.astDir())
}

func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.%d.tmp", path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
