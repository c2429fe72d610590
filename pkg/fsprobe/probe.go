// Package fsprobe answers read-only questions about files under a fixed root
// directory. Existence checks are cached; paths escaping the root are
// rejected.
package fsprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheSize bounds the existence cache when no size is configured
const DefaultCacheSize = 4096

// Prober resolves paths relative to a root and caches whether they exist.
// It is safe for concurrent use.
type Prober struct {
	absRoot string
	cache   *lru.LRU[string, bool]

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness
type Stats struct {
	Hits   int64
	Misses int64
	Items  int
}

// New locks the prober to root, resolved to an absolute symlink-free path.
func New(root string, cacheSize int) (*Prober, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	return &Prober{
		absRoot: abs,
		// zero TTL keeps entries until evicted by size
		cache: lru.NewLRU[string, bool](cacheSize, nil, 0),
	}, nil
}

// Root returns the absolute root directory
func (p *Prober) Root() string {
	return p.absRoot
}

// Exists reports whether a regular file exists at the slash separated path
// relative to the root. Paths outside the root never exist.
func (p *Prober) Exists(rel string) bool {
	full, err := p.resolve(rel)
	if err != nil {
		return false
	}

	if found, ok := p.cache.Get(full); ok {
		p.hits.Add(1)
		return found
	}
	p.misses.Add(1)

	info, err := os.Stat(full)
	found := err == nil && !info.IsDir()
	p.cache.Add(full, found)
	return found
}

// FindWithExtension returns the first base+ext that exists, trying exts in
// order.
func (p *Prober) FindWithExtension(base string, exts []string) (string, bool) {
	for _, ext := range exts {
		candidate := base + ext
		if p.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// ReadFile reads a file relative to the root
func (p *Prober) ReadFile(rel string) ([]byte, error) {
	full, err := p.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Stats returns cache counters
func (p *Prober) Stats() Stats {
	return Stats{
		Hits:   p.hits.Load(),
		Misses: p.misses.Load(),
		Items:  p.cache.Len(),
	}
}

// Purge drops every cached answer
func (p *Prober) Purge() {
	p.cache.Purge()
}

func (p *Prober) resolve(rel string) (string, error) {
	if rel == "" {
		return "", ErrEmptyPath
	}

	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	if clean == "." {
		return p.absRoot, nil
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}

	return filepath.Join(p.absRoot, clean), nil
}
