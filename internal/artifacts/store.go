// Package artifacts indexes the JSON result files persisted by the tool
// handlers so they can be searched and queried without re-reading the
// output tree on every call.
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxKeyScanBytes caps how large an artifact may be before the scanner
// skips decoding it for top-level keys. Name and category tokens are
// still indexed.
const maxKeyScanBytes = 4 << 20

// Artifact describes one persisted result file.
type Artifact struct {
	Path     string    `json:"path"`
	Category string    `json:"category"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Store scans the output directory into an in-memory token index and
// caches decoded payloads. Scans are deduplicated through singleflight
// and skipped entirely while the index is fresh.
type Store struct {
	baseDir   string
	workers   int
	freshness time.Duration

	mu        sync.RWMutex
	artifacts []Artifact
	tokens    map[string]*roaring.Bitmap
	lastScan  time.Time

	scanGroup singleflight.Group
	payloads  *lru.Cache[string, map[string]any]
}

// NewStore creates a store over baseDir. workers bounds the concurrent
// file reads during a scan; cacheItems bounds the decoded payload cache.
func NewStore(baseDir string, workers, cacheItems int, freshness time.Duration) (*Store, error) {
	payloads, err := lru.New[string, map[string]any](max(cacheItems, 1))
	if err != nil {
		return nil, fmt.Errorf("creating payload cache: %w", err)
	}
	return &Store{
		baseDir:   baseDir,
		workers:   max(workers, 1),
		freshness: freshness,
		tokens:    make(map[string]*roaring.Bitmap),
		payloads:  payloads,
	}, nil
}

// BaseDir returns the directory the store scans.
func (s *Store) BaseDir() string { return s.baseDir }

// Refresh rescans the output directory unless the index is still fresh.
// Concurrent callers share one scan.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	fresh := time.Since(s.lastScan) < s.freshness
	s.mu.RUnlock()
	if fresh {
		return nil
	}

	_, err, _ := s.scanGroup.Do("scan", func() (any, error) {
		return nil, s.scan(ctx)
	})
	return err
}

// scan rebuilds the artifact list and token index from disk.
func (s *Store) scan(ctx context.Context) error {
	start := time.Now()

	var paths []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking output directory: %w", err)
	}

	type scanned struct {
		artifact Artifact
		tokens   []string
	}
	results := make([]scanned, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			info, err := os.Stat(path)
			if err != nil {
				// File disappeared between walk and stat; leave a hole.
				return nil
			}
			rel, err := filepath.Rel(s.baseDir, path)
			if err != nil {
				rel = path
			}
			a := Artifact{
				Path:     path,
				Category: filepath.ToSlash(filepath.Dir(rel)),
				Name:     filepath.Base(path),
				Size:     info.Size(),
				Modified: info.ModTime(),
			}
			tokens := Tokenize(a.Name + " " + a.Category)
			tokens = append(tokens, topLevelKeys(path, info.Size())...)
			results[i] = scanned{artifact: a, tokens: tokens}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	artifacts := make([]Artifact, 0, len(results))
	index := make(map[string]*roaring.Bitmap)
	for _, r := range results {
		if r.artifact.Path == "" {
			continue
		}
		id := uint32(len(artifacts))
		artifacts = append(artifacts, r.artifact)
		for _, tok := range r.tokens {
			addToken(index, tok, id)
		}
	}

	s.mu.Lock()
	s.artifacts = artifacts
	s.tokens = index
	s.lastScan = time.Now()
	s.mu.Unlock()

	slog.Debug("artifact scan complete",
		slog.Int("artifacts", len(artifacts)),
		slog.Int("tokens", len(index)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// topLevelKeys decodes an artifact just far enough to index its top-level
// JSON keys. Oversized or undecodable files contribute no key tokens.
func topLevelKeys(path string, size int64) []string {
	if size > maxKeyScanBytes {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	var keys []string
	for k := range payload {
		keys = append(keys, Tokenize(k)...)
	}
	return keys
}

// Load returns the decoded payload of one artifact, served from the LRU
// cache when possible. Paths outside the store's base directory are
// rejected.
func (s *Store) Load(ctx context.Context, path string) (map[string]any, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	if payload, ok := s.payloads.Get(abs); ok {
		return payload, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding result file: %w", err)
	}
	s.payloads.Add(abs, payload)
	return payload, nil
}

// Recent returns the most recently modified artifacts, optionally
// filtered by category prefix.
func (s *Store) Recent(ctx context.Context, category string, limit int) ([]Artifact, error) {
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]Artifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		if category == "" || a.Category == category || strings.HasPrefix(a.Category, category+"/") {
			matched = append(matched, a)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Modified.After(matched[j].Modified) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// resolve normalizes path and confirms it stays inside the base directory.
func (s *Store) resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", err)
	}
	if abs != base && !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the results directory", path)
	}
	return abs, nil
}
