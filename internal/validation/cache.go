package validation

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vvakame/selconflict/internal/diagnostic"
	"github.com/vvakame/selconflict/internal/ir"
)

// Stats counts cache activity of one validation run.
type Stats struct {
	FragmentHits   atomic.Int64
	FragmentMisses atomic.Int64
	FieldHits      atomic.Int64
	FieldMisses    atomic.Int64
}

// selectionCache memoizes flattened field lists.
// Fragments are keyed by name, linked fields by node identity, so two equal
// but distinct field nodes get their own entries.
// Two tasks may flatten the same entry concurrently; the first stored list wins
// and both results are equivalent.
type selectionCache struct {
	enabled bool
	stats   *Stats

	fragments sync.Map // string -> fields
	fields    sync.Map // *ir.LinkedField -> fields
}

func newSelectionCache(enabled bool, stats *Stats) *selectionCache {
	if stats == nil {
		stats = &Stats{}
	}

	return &selectionCache{
		enabled: enabled,
		stats:   stats,
	}
}

func (c *selectionCache) fragment(name string, compute func() (fields, diagnostic.List)) (fields, diagnostic.List) {
	if !c.enabled {
		c.stats.FragmentMisses.Add(1)
		return compute()
	}
	if cached, ok := c.fragments.Load(name); ok {
		c.stats.FragmentHits.Add(1)
		return cached.(fields), nil
	}

	c.stats.FragmentMisses.Add(1)
	result, errs := compute()
	if len(errs) != 0 {
		return nil, errs
	}
	actual, _ := c.fragments.LoadOrStore(name, slices.Clip(result))

	return actual.(fields), nil
}

func (c *selectionCache) linkedField(node *ir.LinkedField, compute func() (fields, diagnostic.List)) (fields, diagnostic.List) {
	if !c.enabled {
		c.stats.FieldMisses.Add(1)
		return compute()
	}
	if cached, ok := c.fields.Load(node); ok {
		c.stats.FieldHits.Add(1)
		return cached.(fields), nil
	}

	c.stats.FieldMisses.Add(1)
	result, errs := compute()
	if len(errs) != 0 {
		return nil, errs
	}
	actual, _ := c.fields.LoadOrStore(node, slices.Clip(result))

	return actual.(fields), nil
}
