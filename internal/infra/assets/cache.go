// Package assets serves static files through a versioned cache-first layer.
// A version bump plus Activate purges every entry from older versions, the
// standard trick for forcing clients off stale bundles.
package assets

import (
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"healthcare-storefront/internal/infra/metrics"
)

// Cache is a cache-first static asset store keyed by (version, path).
type Cache struct {
	version string
	fsys    fs.FS
	log     *zerolog.Logger

	mu      sync.RWMutex
	entries map[string]map[string][]byte
}

func NewCache(version string, fsys fs.FS, logger *zerolog.Logger) *Cache {
	l := logger.With().Str("component", "asset-cache").Logger()
	return &Cache{
		version: version,
		fsys:    fsys,
		log:     &l,
		entries: map[string]map[string][]byte{},
	}
}

// Version returns the active cache version.
func (c *Cache) Version() string { return c.version }

// Precache loads the given paths into the active version's bucket. Missing
// files are skipped with a warning; install succeeds with what it could get.
func (c *Cache) Precache(paths []string) {
	for _, p := range paths {
		data, err := fs.ReadFile(c.fsys, normalize(p))
		if err != nil {
			c.log.Warn().Err(err).Str("path", p).Msg("precache skip")
			continue
		}
		c.put(c.version, p, data)
	}
	c.log.Info().Str("version", c.version).Int("count", len(paths)).Msg("precache complete")
}

// Activate drops every cached bucket that does not match the active version
// and returns the number of purged versions.
func (c *Cache) Activate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	purged := 0
	for v := range c.entries {
		if v != c.version {
			delete(c.entries, v)
			purged++
		}
	}
	if purged > 0 {
		c.log.Info().Str("version", c.version).Int("purged", purged).Msg("stale cache versions removed")
	}
	return purged
}

// Seed places an entry under an arbitrary version. Used to model buckets left
// behind by previous deployments.
func (c *Cache) Seed(version, p string, data []byte) { c.put(version, p, data) }

func (c *Cache) put(version, p string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.entries[version]
	if !ok {
		bucket = map[string][]byte{}
		c.entries[version] = bucket
	}
	bucket[canonical(p)] = data
}

func (c *Cache) get(p string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bucket, ok := c.entries[c.version]
	if !ok {
		return nil, false
	}
	data, ok := bucket[canonical(p)]
	return data, ok
}

// Len reports the number of entries in the active version's bucket.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[c.version])
}

// Handler serves GET requests cache-first, filling misses from the backing
// filesystem. Anything it cannot serve falls through to next.
func (c *Cache) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		p := r.URL.Path

		if data, ok := c.get(p); ok {
			metrics.IncAssetCache(true)
			c.serve(w, p, data)
			return
		}

		data, err := fs.ReadFile(c.fsys, normalize(p))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		metrics.IncAssetCache(false)
		c.put(c.version, p, data)
		c.serve(w, p, data)
	})
}

func (c *Cache) serve(w http.ResponseWriter, p string, data []byte) {
	if ct := mime.TypeByExtension(path.Ext(canonical(p))); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("X-Cache-Version", c.version)
	_, _ = w.Write(data)
}

// canonical maps "/" and "" to the index document and strips query-style
// suffixes left in precache manifests.
func canonical(p string) string {
	p = path.Clean("/" + p)
	if p == "/" {
		p = "/index.html"
	}
	return p
}

func normalize(p string) string {
	return strings.TrimPrefix(canonical(p), "/")
}
