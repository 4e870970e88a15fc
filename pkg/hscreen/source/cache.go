package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// Cache is a read-through handle over a Source keyed by spec (usually a
// path). Each spec is loaded at most once successfully; the loaded tables are
// never mutated, and callers receive copies of the record slices.
type Cache struct {
	src Source

	mu     sync.Mutex
	tables map[string][]types.Table
}

func NewCache(src Source) *Cache {
	return &Cache{src: src, tables: map[string][]types.Table{}}
}

// Load returns the cached tables for spec, loading them on first use.
// Failed loads are not cached.
func (c *Cache) Load(ctx context.Context, spec any) ([]types.Table, error) {
	key := fmt.Sprint(spec)

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tables[key]; ok {
		return cloneTables(t), nil
	}
	t, err := c.src.Load(ctx, spec)
	if err != nil {
		return nil, err
	}
	c.tables[key] = t
	return cloneTables(t), nil
}

func cloneTables(in []types.Table) []types.Table {
	out := make([]types.Table, len(in))
	for i, t := range in {
		out[i] = types.Table{
			Name:    t.Name,
			Columns: append([]string(nil), t.Columns...),
			Records: append([]types.Record(nil), t.Records...),
		}
	}
	return out
}
