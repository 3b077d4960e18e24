package rule

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"golang.org/x/sync/singleflight"
)

//go:embed META-INF
var embedded embed.FS

// Resources returns the rule definitions compiled into the binary.
func Resources() fs.FS {
	return embedded
}

// Cache loads each (feature, dialect) registry once and keeps it for the
// life of the process. Concurrent first requests share a single load.
type Cache struct {
	fsys    fs.FS
	entries sync.Map // string -> *Registry
	group   singleflight.Group
}

// NewCache creates a cache reading definitions from fsys.
func NewCache(fsys fs.FS) *Cache {
	return &Cache{fsys: fsys}
}

// Get returns the registry for feature and db, loading it on first use.
// Failed loads are not cached.
func (c *Cache) Get(feature string, db dialect.DatabaseType) (*Registry, error) {
	key := feature + "/" + db.Name()
	if r, ok := c.entries.Load(key); ok {
		return r.(*Registry), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if r, ok := c.entries.Load(key); ok {
			return r, nil
		}
		r, err := Load(c.fsys, feature, db)
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, r)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Registry), nil
}

var defaultCache = NewCache(embedded)

// Default returns the cached registry built from the embedded definitions.
func Default(feature string, db dialect.DatabaseType) (*Registry, error) {
	return defaultCache.Get(feature, db)
}
