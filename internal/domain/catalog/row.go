package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// OptionCell is the name/value cell pair of one option group in a row
type OptionCell struct {
	Name  string
	Value string
}

// Row is one spreadsheet row mapped onto catalog fields.
// Index is the 1-based physical row number in the sheet.
type Row struct {
	Index       int
	Handle      string
	Title       string
	Description string
	Options     []OptionCell
	Price       decimal.Decimal
	ImageURL    string
}

// NormalizeHandle trims a handle cell and puts it in NFC form so visually
// identical handles group together.
func NormalizeHandle(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// primaryOption reports whether the row carries a value for the first option group.
func (r Row) primaryOption() bool {
	return len(r.Options) > 0 && strings.TrimSpace(r.Options[0].Value) != ""
}
