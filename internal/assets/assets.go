// Package assets handles heightmap loading and grid caching.
package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/midgard-heightfield/internal/logger"
	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
	"github.com/Faultbox/midgard-heightfield/pkg/raster"
)

// ErrNotFound is returned when no search directory holds the requested file.
var ErrNotFound = errors.New("asset not found")

// GridStore persists built grids between runs.
type GridStore interface {
	Get(ctx context.Context, key string) (*heightfield.Grid, bool, error)
	Put(ctx context.Context, key string, grid *heightfield.Grid) (uuid.UUID, error)
}

// Manager resolves heightmaps from search directories and builds grids from them.
type Manager struct {
	dirs    []string
	cache   *Cache
	grids   *GridCache
	store   GridStore
	workers int
	group   singleflight.Group
	mu      sync.RWMutex
	log     *zap.Logger
}

// NewManager creates a new asset manager keeping up to gridEntries built grids in memory.
func NewManager(gridEntries int) *Manager {
	return &Manager{
		cache: NewCache(),
		grids: NewGridCache(gridEntries),
		log:   logger.Named("assets"),
	}
}

// AddDir adds a search directory.
// Directories are searched in reverse order (last added = highest priority).
func (m *Manager) AddDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("adding search dir %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding search dir %s: not a directory", path)
	}

	m.mu.Lock()
	m.dirs = append(m.dirs, path)
	m.mu.Unlock()

	return nil
}

// SetStore attaches a persistent grid store. Pass nil to detach.
func (m *Manager) SetStore(s GridStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
}

// SetWorkers sets the smoothing worker count used for new builds.
func (m *Manager) SetWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = n
}

// Load reads a file from the search directories.
// Absolute paths bypass the search; with no directories, names resolve against the working directory.
func (m *Manager) Load(name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	for _, path := range m.candidates(name) {
		data, err := os.ReadFile(path)
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (m *Manager) candidates(name string) []string {
	if filepath.IsAbs(name) {
		return []string{name}
	}
	if !filepath.IsLocal(name) {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.dirs) == 0 {
		return []string{name}
	}
	paths := make([]string, 0, len(m.dirs))
	for i := len(m.dirs) - 1; i >= 0; i-- {
		paths = append(paths, filepath.Join(m.dirs[i], name))
	}
	return paths
}

// Grid returns the heightfield built from the named heightmap at the given resolution.
// Results are memoised in memory by name and resolution and, when a store is attached,
// persisted under CacheKey. Call Invalidate after editing a heightmap in place.
func (m *Manager) Grid(ctx context.Context, name string, resolution int) (*heightfield.Grid, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution %d", heightfield.ErrInvalidArgument, resolution)
	}

	memoKey := gridKey{name: name, resolution: resolution}
	if grid, ok := m.grids.Get(memoKey); ok {
		return grid, nil
	}

	v, err, _ := m.group.Do(name+"@"+strconv.Itoa(resolution), func() (any, error) {
		// A build that finished between the miss above and this call already stored its result.
		if grid, ok := m.grids.peek(memoKey); ok {
			return grid, nil
		}
		grid, err := m.buildGrid(ctx, name, resolution)
		if err != nil {
			return nil, err
		}
		m.grids.Set(memoKey, grid)
		return grid, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*heightfield.Grid), nil
}

func (m *Manager) buildGrid(ctx context.Context, name string, resolution int) (*heightfield.Grid, error) {
	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	store, workers := m.store, m.workers
	m.mu.RUnlock()

	key := CacheKey(name, resolution, data)
	if store != nil {
		grid, ok, err := store.Get(ctx, key)
		switch {
		case err != nil:
			m.log.Warn("grid cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			m.log.Debug("grid cache hit", zap.String("key", key))
			return grid, nil
		}
	}

	img, err := raster.Load(bytes.NewReader(data), name, resolution)
	if err != nil {
		return nil, fmt.Errorf("decoding heightmap %s: %w", name, err)
	}
	grid, err := heightfield.Build(img, resolution, heightfield.WithWorkers(workers))
	if err != nil {
		return nil, fmt.Errorf("building grid from %s: %w", name, err)
	}
	m.log.Info("built grid", zap.String("heightmap", name), zap.Int("resolution", resolution))

	if store != nil {
		if _, err := store.Put(ctx, key, grid); err != nil {
			m.log.Warn("grid cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return grid, nil
}

// Invalidate drops the cached bytes and every memoised grid for name, so the next
// Grid call rereads the file and looks it up in the store under its new content hash.
func (m *Manager) Invalidate(name string) {
	m.cache.Delete(name)
	if n := m.grids.removeName(name); n > 0 {
		m.log.Debug("invalidated grids", zap.String("heightmap", name), zap.Int("count", n))
	}
}

// CacheKey identifies a grid by heightmap name, resolution and content.
func CacheKey(name string, resolution int, data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s@%d#%x", filepath.ToSlash(name), resolution, sum[:8])
}

// Stats returns raw file cache and grid cache statistics.
func (m *Manager) Stats() (fileHits, fileMisses, gridHits, gridMisses int) {
	fileHits, fileMisses = m.cache.Stats()
	gridHits, gridMisses = m.grids.Stats()
	return
}

// Close drops search directories and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	m.dirs = nil
	m.mu.Unlock()

	m.cache.Clear()
	m.grids.Clear()
}

// Cache is a simple in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
