package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/xuri/excelize/v2"
)

// OptionColumns names the column pair holding one option group
type OptionColumns struct {
	Name  string `validate:"required,alpha,max=3"`
	Value string `validate:"required,alpha,max=3"`
}

// Schema maps catalog fields to spreadsheet column letters.
// Handle is required; other fields may be left empty to ignore them.
type Schema struct {
	Handle      string          `validate:"required,alpha,max=3"`
	Title       string          `validate:"omitempty,alpha,max=3"`
	Description string          `validate:"omitempty,alpha,max=3"`
	Price       string          `validate:"omitempty,alpha,max=3"`
	Image       string          `validate:"omitempty,alpha,max=3"`
	Options     []OptionColumns `validate:"max=3,dive"`
	HeaderRows  int             `validate:"gte=0"`
}

// DefaultSchema is the product sheet layout: A handle, B title,
// C description, H/I option name and value, T price, Y image.
func DefaultSchema() Schema {
	return Schema{
		Handle:      "A",
		Title:       "B",
		Description: "C",
		Price:       "T",
		Image:       "Y",
		Options:     []OptionColumns{{Name: "H", Value: "I"}},
		HeaderRows:  1,
	}
}

var schemaValidator = validator.New()

// Validate checks column letters and rejects a column mapped to two fields.
func (s Schema) Validate() error {
	if err := schemaValidator.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return newError(ErrCodeInvalidSchema, ErrInvalidSchema, "",
				fmt.Errorf("field %s fails %q", e.Namespace(), e.Tag()))
		}
		return newError(ErrCodeInvalidSchema, ErrInvalidSchema, "", err)
	}

	seen := make(map[int]string)
	for _, f := range s.fields() {
		if f.column == "" {
			continue
		}
		idx, err := excelize.ColumnNameToNumber(f.column)
		if err != nil {
			return newError(ErrCodeInvalidSchema, ErrInvalidSchema, "",
				fmt.Errorf("field %s: %w", f.name, err))
		}
		if other, ok := seen[idx]; ok {
			return newError(ErrCodeInvalidSchema, ErrInvalidSchema, "",
				fmt.Errorf("column %s mapped to both %s and %s", f.column, other, f.name))
		}
		seen[idx] = f.name
	}
	return nil
}

// FoldOptions returns catalog fold options matching the schema's header rows.
func (s Schema) FoldOptions(dedupeImages bool) catalog.FoldOptions {
	return catalog.FoldOptions{
		HeaderRows:   s.HeaderRows,
		DedupeImages: dedupeImages,
	}
}

type schemaField struct {
	name   string
	column string
}

func (s Schema) fields() []schemaField {
	fields := []schemaField{
		{"handle", s.Handle},
		{"title", s.Title},
		{"description", s.Description},
		{"price", s.Price},
		{"image", s.Image},
	}
	for i, o := range s.Options {
		fields = append(fields,
			schemaField{fmt.Sprintf("option%d_name", i+1), o.Name},
			schemaField{fmt.Sprintf("option%d_value", i+1), o.Value},
		)
	}
	return fields
}

// layout is a validated schema resolved to 0-based column indexes; -1 means unmapped.
type layout struct {
	handle, title, description, price, image int
	options                                  [][2]int
	priceColumn                              string
	headerRows                               int
}

func compile(s Schema) (layout, error) {
	if err := s.Validate(); err != nil {
		return layout{}, err
	}
	index := func(col string) int {
		if col == "" {
			return -1
		}
		n, _ := excelize.ColumnNameToNumber(strings.ToUpper(col))
		return n - 1
	}
	l := layout{
		handle:      index(s.Handle),
		title:       index(s.Title),
		description: index(s.Description),
		price:       index(s.Price),
		image:       index(s.Image),
		priceColumn: strings.ToUpper(s.Price),
		headerRows:  s.HeaderRows,
	}
	for _, o := range s.Options {
		l.options = append(l.options, [2]int{index(o.Name), index(o.Value)})
	}
	return l, nil
}
