package mangadex

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/tonymushah/mangadex-api-sub002/api"
	"github.com/tonymushah/mangadex-api-sub002/filesystem"
	"github.com/tonymushah/mangadex-api-sub002/where"
)

type cacheData[K comparable, T any] struct {
	Entries map[K]T `json:"entries"`
}

// cacher is a keyed view over a single gache file.
type cacher[K comparable, T any] struct {
	internal *gache.Cache[*cacheData[K, T]]
	mu       sync.RWMutex
}

func (c *cacher[K, T]) Get(key K) mo.Option[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[T]()
	}

	if value, ok := data.Entries[key]; ok {
		return mo.Some(value)
	}
	return mo.None[T]()
}

func (c *cacher[K, T]) Set(key K, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil || data.Entries == nil {
		data = &cacheData[K, T]{Entries: make(map[K]T)}
	}

	data.Entries[key] = value
	return c.internal.Set(data)
}

func (c *cacher[K, T]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.internal.Set(&cacheData[K, T]{Entries: make(map[K]T)})
}

var mangaCacher = &cacher[string, Manga]{
	internal: gache.New[*cacheData[string, Manga]](&gache.Options{
		Path:       filepath.Join(where.Cache(), "manga.json"),
		Lifetime:   time.Hour * 6,
		FileSystem: &filesystem.GacheFs{},
	}),
}

var tagCacher = gache.New[[]Tag](&gache.Options{
	Path:       where.Tags(),
	Lifetime:   time.Hour * 24 * 7,
	FileSystem: &filesystem.GacheFs{},
})

// CachedManga returns the manga from the local cache, fetching it on a miss.
// Entries are keyed by id and the requested includes.
func CachedManga(ctx context.Context, c *api.Client, id string, includes ...string) (Manga, error) {
	cacheKey := id
	for _, include := range includes {
		cacheKey += "+" + include
	}

	if m, ok := mangaCacher.Get(cacheKey).Get(); ok {
		return m, nil
	}

	m, err := GetManga(ctx, c, id, includes...)
	if err != nil {
		return Manga{}, err
	}

	_ = mangaCacher.Set(cacheKey, m)
	return m, nil
}

// CachedTags returns the tag list, refreshed weekly.
func CachedTags(ctx context.Context, c *api.Client) ([]Tag, error) {
	if tags, expired, err := tagCacher.Get(); err == nil && !expired && len(tags) > 0 {
		return tags, nil
	}

	tags, err := Tags(ctx, c)
	if err != nil {
		return nil, err
	}

	_ = tagCacher.Set(tags)
	return tags, nil
}

// ClearCache drops every cached resource.
func ClearCache() error {
	if err := mangaCacher.Clear(); err != nil {
		return err
	}
	return tagCacher.Set(nil)
}
