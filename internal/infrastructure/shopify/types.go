package shopify

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
)

// ---------------------------------------------------------------------------
// Request Types
// ---------------------------------------------------------------------------

// ProductEnvelope wraps a product in request and response bodies
type ProductEnvelope struct {
	Product Product `json:"product"`
}

// Product is the REST Admin API product resource
type Product struct {
	ID       int64           `json:"id,omitempty"`
	Title    string          `json:"title"`
	BodyHTML string          `json:"body_html,omitempty"`
	Handle   string          `json:"handle"`
	Options  []ProductOption `json:"options,omitempty"`
	Variants []Variant       `json:"variants,omitempty"`
	Images   []Image         `json:"images,omitempty"`
}

// ProductOption is one option dimension of a product
type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Variant is a product variant. Price is sent as a fixed two-decimal string.
type Variant struct {
	ID      int64  `json:"id,omitempty"`
	Option1 string `json:"option1,omitempty"`
	Option2 string `json:"option2,omitempty"`
	Option3 string `json:"option3,omitempty"`
	Price   string `json:"price,omitempty"`
}

// Image is a product image
type Image struct {
	Src string `json:"src"`
}

// CountResponse is the response of products/count.json
type CountResponse struct {
	Count int `json:"count"`
}

// ErrorResponse is the error body of a failed call. Errors is either a
// string or an object of field messages.
type ErrorResponse struct {
	Errors json.RawMessage `json:"errors"`
}

// Message flattens the errors payload into one line
func (r ErrorResponse) Message() string {
	if len(r.Errors) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Errors, &s); err == nil {
		return s
	}
	var fields map[string][]string
	if err := json.Unmarshal(r.Errors, &fields); err == nil {
		parts := make([]string, 0, len(fields))
		for _, k := range slices.Sorted(maps.Keys(fields)) {
			parts = append(parts, k+" "+strings.Join(fields[k], ", "))
		}
		return strings.Join(parts, "; ")
	}
	return string(r.Errors)
}

// productFromItem converts a catalog item to the create payload
func productFromItem(item catalog.Item) Product {
	p := Product{
		Title:    item.Title(),
		BodyHTML: item.BodyHTML(),
		Handle:   item.Handle(),
	}
	for _, g := range item.Options() {
		p.Options = append(p.Options, ProductOption{Name: g.Name, Values: g.Values})
	}
	for _, v := range item.Variants() {
		p.Variants = append(p.Variants, Variant{
			Option1: v.Option1,
			Option2: v.Option2,
			Option3: v.Option3,
			Price:   v.Price.StringFixed(2),
		})
	}
	for _, img := range item.Images() {
		p.Images = append(p.Images, Image{Src: img.Src})
	}
	return p
}
