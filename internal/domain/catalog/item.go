package catalog

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// MaxOptionGroups is the number of option dimensions a catalog item can carry.
const MaxOptionGroups = 3

// Image is a product image reference
type Image struct {
	Src string `json:"src"`
}

// OptionGroup is one named option dimension with its values in first-seen order
type OptionGroup struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Variant is one purchasable option combination of an item
type Variant struct {
	Option1 string          `json:"option1"`
	Option2 string          `json:"option2,omitempty"`
	Option3 string          `json:"option3,omitempty"`
	Price   decimal.Decimal `json:"price"`
}

// Option returns the variant value for the option group at index i.
func (v Variant) Option(i int) string {
	switch i {
	case 0:
		return v.Option1
	case 1:
		return v.Option2
	case 2:
		return v.Option3
	}
	return ""
}

func (v *Variant) setOption(i int, value string) {
	switch i {
	case 0:
		v.Option1 = value
	case 1:
		v.Option2 = value
	case 2:
		v.Option3 = value
	}
}

// Item is an immutable snapshot of one catalog item aggregate.
// Accessors hand out copies; folding a row returns a new Item.
type Item struct {
	handle         string
	title          string
	bodyHTML       string
	images         []Image
	options        []OptionGroup
	variants       []Variant
	distinctValues bool
}

// Handle returns the grouping key
func (it Item) Handle() string { return it.handle }

// Title returns the title taken from the first row of the handle
func (it Item) Title() string { return it.title }

// BodyHTML returns the description taken from the first row of the handle
func (it Item) BodyHTML() string { return it.bodyHTML }

// Images returns a copy of the image list
func (it Item) Images() []Image { return slices.Clone(it.images) }

// Variants returns a copy of the variant list
func (it Item) Variants() []Variant { return slices.Clone(it.variants) }

// Options returns a deep copy of the option groups
func (it Item) Options() []OptionGroup {
	out := make([]OptionGroup, len(it.options))
	for i, g := range it.options {
		out[i] = OptionGroup{Name: g.Name, Values: slices.Clone(g.Values)}
	}
	return out
}

// Validate checks the structural invariants of the aggregate.
func (it Item) Validate() error {
	if it.handle == "" {
		return fmt.Errorf("catalog: item has empty handle")
	}
	if len(it.options) > MaxOptionGroups {
		return fmt.Errorf("catalog: item %q has %d option groups, max %d", it.handle, len(it.options), MaxOptionGroups)
	}
	for i, g := range it.options {
		if len(g.Values) == 0 {
			return fmt.Errorf("catalog: item %q option group %d has no values", it.handle, i+1)
		}
	}
	if !it.distinctValues && len(it.options) > 0 && len(it.variants) != len(it.options[0].Values) {
		return fmt.Errorf("catalog: item %q has %d variants but %d option values",
			it.handle, len(it.variants), len(it.options[0].Values))
	}
	for _, v := range it.variants {
		for i, g := range it.options {
			value := v.Option(i)
			if value == "" && i > 0 {
				continue
			}
			if !slices.Contains(g.Values, value) {
				return fmt.Errorf("catalog: item %q variant value %q missing from option %q", it.handle, value, g.Name)
			}
		}
	}
	return nil
}

func (it Item) clone() Item {
	next := it
	next.images = slices.Clone(it.images)
	next.variants = slices.Clone(it.variants)
	next.options = it.Options()
	return next
}

func (it Item) hasImage(src string) bool {
	return slices.ContainsFunc(it.images, func(img Image) bool { return img.Src == src })
}

// ItemSnapshot is the serializable form of an Item
type ItemSnapshot struct {
	Handle   string        `json:"handle"`
	Title    string        `json:"title"`
	BodyHTML string        `json:"body_html"`
	Images   []Image       `json:"images"`
	Options  []OptionGroup `json:"options"`
	Variants []Variant     `json:"variants"`
	Distinct bool          `json:"distinct_values,omitempty"`
}

// Snapshot returns the serializable form of the item
func (it Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		Handle:   it.handle,
		Title:    it.title,
		BodyHTML: it.bodyHTML,
		Images:   it.Images(),
		Options:  it.Options(),
		Variants: it.Variants(),
		Distinct: it.distinctValues,
	}
}

// FromSnapshot rebuilds an Item from its serialized form
func FromSnapshot(s ItemSnapshot) Item {
	it := Item{
		handle:         s.Handle,
		title:          s.Title,
		bodyHTML:       s.BodyHTML,
		images:         slices.Clone(s.Images),
		variants:       slices.Clone(s.Variants),
		distinctValues: s.Distinct,
	}
	it.options = make([]OptionGroup, len(s.Options))
	for i, g := range s.Options {
		it.options[i] = OptionGroup{Name: g.Name, Values: slices.Clone(g.Values)}
	}
	return it
}
