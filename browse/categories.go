package browse

import (
	"context"
	"strings"
	"sync"

	"github.com/qyinm/offtui/types"
	"github.com/sahilm/fuzzy"
)

// Categories keeps the category list after the first successful load.
// A failed load is not remembered; the next call fetches again.
type Categories struct {
	mu     sync.Mutex
	loaded bool
	list   []types.Category
}

// Load returns the stored list, fetching it first if no load has
// succeeded yet. The fetch is detached from ctx cancellation so an
// aborted caller does not poison the result for later callers.
func (c *Categories) Load(ctx context.Context, src types.ProductSource) ([]types.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.list, nil
	}
	list, err := src.Categories(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	c.list = list
	c.loaded = true
	return c.list, nil
}

type categorySource []types.Category

func (c categorySource) String(i int) string { return c[i].Name() + " " + c[i].ID() }
func (c categorySource) Len() int            { return len(c) }

// FilterCategories fuzzy-matches query against category names and ids,
// best match first. An empty query returns the input unchanged.
func FilterCategories(categories []types.Category, query string) []types.Category {
	query = strings.TrimSpace(query)
	if query == "" {
		return categories
	}
	matches := fuzzy.FindFrom(query, categorySource(categories))
	out := make([]types.Category, 0, len(matches))
	for _, m := range matches {
		out = append(out, categories[m.Index])
	}
	return out
}
