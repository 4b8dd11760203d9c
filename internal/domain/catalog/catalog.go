package catalog

import "slices"

// Catalog is an ordered, read-only mapping from handle to item.
// Iteration order is the order in which handles were first seen.
type Catalog struct {
	handles []string
	items   map[string]Item
}

// NewCatalog builds a Catalog from items, keeping the first item of each handle.
func NewCatalog(items ...Item) *Catalog {
	c := &Catalog{items: make(map[string]Item, len(items))}
	for _, it := range items {
		if _, ok := c.items[it.handle]; ok {
			continue
		}
		c.handles = append(c.handles, it.handle)
		c.items[it.handle] = it
	}
	return c
}

// Len returns the number of distinct handles
func (c *Catalog) Len() int {
	return len(c.handles)
}

// Get returns the item for a handle
func (c *Catalog) Get(handle string) (Item, bool) {
	it, ok := c.items[handle]
	return it, ok
}

// Handles returns the handles in first-seen order
func (c *Catalog) Handles() []string {
	return slices.Clone(c.handles)
}

// Items returns the items in first-seen order
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.handles))
	for _, h := range c.handles {
		out = append(out, c.items[h])
	}
	return out
}

// Stats summarizes the catalog
type Stats struct {
	Items    int `json:"items"`
	Variants int `json:"variants"`
	Images   int `json:"images"`
}

// Stats counts items, variants and images
func (c *Catalog) Stats() Stats {
	s := Stats{Items: len(c.handles)}
	for _, it := range c.items {
		s.Variants += len(it.variants)
		s.Images += len(it.images)
	}
	return s
}

// CrossProduct returns every value combination of the given groups. The
// first group varies slowest and values keep their order within a group.
// It returns nil when there are no groups or any group is empty.
func CrossProduct(groups []OptionGroup) [][]string {
	if len(groups) == 0 {
		return nil
	}
	total := 1
	for _, g := range groups {
		if len(g.Values) == 0 {
			return nil
		}
		total *= len(g.Values)
	}

	out := make([][]string, 0, total)
	combo := make([]string, len(groups))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(groups) {
			out = append(out, slices.Clone(combo))
			return
		}
		for _, v := range groups[depth].Values {
			combo[depth] = v
			walk(depth + 1)
		}
	}
	walk(0)
	return out
}
