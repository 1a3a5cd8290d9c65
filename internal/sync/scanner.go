package sync

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/docpush/docpush/internal/utils"
	"golang.org/x/sync/errgroup"
)

// DefaultInclude matches the document extensions pushed to the store.
var DefaultInclude = []string{"**/*.md"}

// LocalDocument is one scanned file. Produced fresh on every scan,
// never persisted.
type LocalDocument struct {
	Path        string // slash-separated path relative to the root
	Title       string // base name without extension
	Dir         string // parent dir rel path, "." at the root
	AbsPath     string
	Fingerprint string // md5 hex of the raw bytes
	Size        int64
}

// Content reads the file's current bytes. Callers treat a failure here
// the same as a scan failure for that path.
func (d *LocalDocument) Content() (string, error) {
	data, err := os.ReadFile(d.AbsPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", d.Path, err)
	}
	return string(data), nil
}

// ScanError is a per-file failure. It never aborts the scan.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Scanner enumerates local documents under a root directory.
type Scanner struct {
	Root      string
	Include   []string // doublestar patterns, DefaultInclude when empty
	CacheFile string   // base name to exclude from the scan
}

// Scan walks the root and returns documents sorted lexicographically by
// relative path, plus one ScanError per unreadable file. Hidden entries
// (dot-prefixed) and the cache file are skipped. Hashing runs on a
// bounded worker pool; sorting afterwards keeps the order deterministic.
func (s *Scanner) Scan(ctx context.Context) ([]*LocalDocument, []*ScanError, error) {
	include := s.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	var paths []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(s.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if utils.IsHidden(rel) || d.Name() == s.CacheFile {
			return nil
		}
		if !matchAny(include, rel) {
			return nil
		}

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", s.Root, err)
	}

	var (
		mu       sync.Mutex
		docs     []*LocalDocument
		failures []*ScanError
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, rel := range paths {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			abs := filepath.Join(s.Root, filepath.FromSlash(rel))
			doc, err := s.stat(rel, abs)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, &ScanError{Path: rel, Err: err})
				return nil
			}
			docs = append(docs, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })

	return docs, failures, nil
}

func (s *Scanner) stat(rel, abs string) (*LocalDocument, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	hash, err := utils.FileHash(abs)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(rel)
	return &LocalDocument{
		Path:        rel,
		Title:       strings.TrimSuffix(name, filepath.Ext(name)),
		Dir:         parentDir(rel),
		AbsPath:     abs,
		Fingerprint: hash,
		Size:        info.Size(),
	}, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// parentDir returns the slash-separated parent of a relative path, "."
// for entries at the root.
func parentDir(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(rel)))
	if dir == "" {
		return "."
	}
	return dir
}
