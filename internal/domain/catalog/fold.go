package catalog

import (
	"slices"
	"strings"
)

// FoldOptions controls how rows accumulate into items
type FoldOptions struct {
	// HeaderRows is the number of leading sheet rows that carry no data.
	HeaderRows int
	// DedupeImages drops an image whose src is already on the item.
	DedupeImages bool
}

// DefaultFoldOptions skips one header row and deduplicates images.
func DefaultFoldOptions() FoldOptions {
	return FoldOptions{
		HeaderRows:   1,
		DedupeImages: true,
	}
}

// NewItem starts an aggregate from the first row seen for its handle.
// Handle, title and body are fixed here and never overwritten.
func NewItem(row Row, opts FoldOptions) Item {
	seed := Item{
		handle:   NormalizeHandle(row.Handle),
		title:    strings.TrimSpace(row.Title),
		bodyHTML: row.Description,
	}
	return seed.Fold(row, opts)
}

// Fold returns a new Item with the row's image, option values and variant
// appended. The receiver is left untouched.
//
// A row contributes a variant only when its first option value is present.
// With a single option group every contributing row appends its value, so
// variants and option values stay the same length. With several groups the
// values of each group are kept distinct and variants carry the combination.
func (it Item) Fold(row Row, opts FoldOptions) Item {
	next := it.clone()

	if src := strings.TrimSpace(row.ImageURL); src != "" {
		if !opts.DedupeImages || !next.hasImage(src) {
			next.images = append(next.images, Image{Src: src})
		}
	}

	if !row.primaryOption() {
		return next
	}

	cells := row.Options
	if len(cells) > MaxOptionGroups {
		cells = cells[:MaxOptionGroups]
	}
	if len(cells) > 1 {
		next.distinctValues = true
	}

	var variant Variant
	for i, cell := range cells {
		value := strings.TrimSpace(cell.Value)
		if value == "" {
			continue
		}
		next.addOptionValue(i, strings.TrimSpace(cell.Name), value)
		variant.setOption(i, value)
	}
	variant.Price = row.Price
	next.variants = append(next.variants, variant)

	return next
}

func (it *Item) addOptionValue(i int, name, value string) {
	for len(it.options) <= i {
		it.options = append(it.options, OptionGroup{})
	}
	group := &it.options[i]
	if group.Name == "" {
		group.Name = name
	}
	if it.distinctValues && slices.Contains(group.Values, value) {
		return
	}
	group.Values = append(group.Values, value)
}

// Builder folds a row stream into a Catalog keyed by handle in first-seen order.
type Builder struct {
	opts    FoldOptions
	handles []string
	items   map[string]Item
	skipped int
}

// NewBuilder creates a Builder with the given fold options
func NewBuilder(opts FoldOptions) *Builder {
	return &Builder{
		opts:  opts,
		items: make(map[string]Item),
	}
}

// Add folds one row. Header rows and rows without a handle are skipped and
// reported as false.
func (b *Builder) Add(row Row) bool {
	if row.Index <= b.opts.HeaderRows {
		return false
	}
	handle := NormalizeHandle(row.Handle)
	if handle == "" {
		b.skipped++
		return false
	}

	prev, ok := b.items[handle]
	if !ok {
		b.handles = append(b.handles, handle)
		b.items[handle] = NewItem(row, b.opts)
		return true
	}
	b.items[handle] = prev.Fold(row, b.opts)
	return true
}

// Skipped returns the number of data rows dropped for having no handle.
func (b *Builder) Skipped() int {
	return b.skipped
}

// Catalog returns a snapshot of the items folded so far.
func (b *Builder) Catalog() *Catalog {
	c := &Catalog{
		handles: slices.Clone(b.handles),
		items:   make(map[string]Item, len(b.items)),
	}
	for h, it := range b.items {
		c.items[h] = it
	}
	return c
}

// Aggregate folds a fully materialized row sequence into a Catalog.
func Aggregate(rows []Row, opts FoldOptions) *Catalog {
	b := NewBuilder(opts)
	for _, row := range rows {
		b.Add(row)
	}
	return b.Catalog()
}
