package sheet

import (
	"errors"
	"fmt"
	"strings"
)

// Sheet error codes
const (
	ErrCodeResourceNotFound = "ERR_IMPORT_RESOURCE_NOT_FOUND"
	ErrCodeMalformedSheet   = "ERR_IMPORT_MALFORMED_SHEET"
	ErrCodeInvalidSchema    = "ERR_IMPORT_INVALID_SCHEMA"
	ErrCodeFileTooLarge     = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeInvalidPrice     = "ERR_IMPORT_INVALID_PRICE"
)

// Common sheet errors
var (
	// ErrResourceNotFound is returned when the spreadsheet file does not exist
	ErrResourceNotFound = errors.New("spreadsheet not found")

	// ErrMalformedSheet is returned when the workbook has no readable worksheet
	ErrMalformedSheet = errors.New("spreadsheet has no readable worksheet")

	// ErrInvalidSchema is returned when the column schema fails validation
	ErrInvalidSchema = errors.New("invalid sheet schema")

	// ErrTooManyRows is returned when the sheet exceeds the configured row limit
	ErrTooManyRows = errors.New("spreadsheet exceeds maximum row count")
)

// Error is a sheet failure carrying a stable code and the file it concerns.
// It matches both its kind sentinel and the underlying cause with errors.Is.
type Error struct {
	Code  string
	Path  string
	Kind  error
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the kind sentinel and the cause
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(code string, kind error, path string, cause error) *Error {
	return &Error{Code: code, Path: path, Kind: kind, Cause: cause}
}

// CodeOf returns the stable code of a sheet error, or "" for other errors.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// RowWarning is a non-fatal problem found in a specific cell
type RowWarning struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// String renders the warning for logs
func (w RowWarning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", w.Row, w.Column, w.Message)
	}
	return fmt.Sprintf("row %d: %s", w.Row, w.Message)
}

// WarningCollection keeps up to a fixed number of warnings and counts the rest
type WarningCollection struct {
	warnings   []RowWarning
	max        int
	totalCount int
}

// NewWarningCollection creates a collection with a maximum kept size
func NewWarningCollection(max int) *WarningCollection {
	if max <= 0 {
		max = 100
	}
	return &WarningCollection{
		warnings: make([]RowWarning, 0),
		max:      max,
	}
}

// Add adds a warning to the collection
func (wc *WarningCollection) Add(w RowWarning) {
	wc.totalCount++
	if len(wc.warnings) < wc.max {
		wc.warnings = append(wc.warnings, w)
	}
}

// Warnings returns the kept warnings
func (wc *WarningCollection) Warnings() []RowWarning {
	return wc.warnings
}

// TotalCount returns the number of warnings including those not kept
func (wc *WarningCollection) TotalCount() int {
	return wc.totalCount
}

// IsTruncated returns true if some warnings were dropped
func (wc *WarningCollection) IsTruncated() bool {
	return wc.totalCount > len(wc.warnings)
}
