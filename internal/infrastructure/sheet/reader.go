package sheet

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/lpcheniris/shopify-demo/internal/domain/catalog"
	"github.com/xuri/excelize/v2"
)

// Reader reads product rows from the first worksheet of an xlsx workbook
// according to a validated Schema.
type Reader struct {
	schema      Schema
	layout      layout
	sheet       string
	maxRows     int
	maxWarnings int
}

// ReaderOption configures a Reader
type ReaderOption func(*Reader)

// WithSchema sets the column schema. It is validated by NewReader.
func WithSchema(s Schema) ReaderOption {
	return func(r *Reader) {
		r.schema = s
	}
}

// WithSheet reads the named worksheet instead of the first one
func WithSheet(name string) ReaderOption {
	return func(r *Reader) {
		r.sheet = name
	}
}

// WithMaxRows limits the number of data rows; zero means unlimited
func WithMaxRows(n int) ReaderOption {
	return func(r *Reader) {
		r.maxRows = n
	}
}

// WithMaxWarnings limits the number of warnings kept per read
func WithMaxWarnings(n int) ReaderOption {
	return func(r *Reader) {
		r.maxWarnings = n
	}
}

// NewReader creates a Reader. The schema is checked here so a bad column
// mapping fails before any file is opened.
func NewReader(opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		schema:      DefaultSchema(),
		maxWarnings: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	l, err := compile(r.schema)
	if err != nil {
		return nil, err
	}
	r.layout = l
	return r, nil
}

// Schema returns the reader's column schema
func (r *Reader) Schema() Schema {
	return r.schema
}

// Open opens the workbook at path and returns a row iterator.
// The caller must Close the iterator.
func (r *Reader) Open(path string) (*Rows, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(ErrCodeResourceNotFound, ErrResourceNotFound, path, nil)
		}
		return nil, newError(ErrCodeResourceNotFound, ErrResourceNotFound, path, err)
	}
	if info.IsDir() {
		return nil, newError(ErrCodeMalformedSheet, ErrMalformedSheet, path, errors.New("path is a directory"))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, newError(ErrCodeMalformedSheet, ErrMalformedSheet, path, err)
	}
	return r.iterate(f, path)
}

// OpenReader reads a workbook from src. name is only used in errors.
func (r *Reader) OpenReader(src io.Reader, name string) (*Rows, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, newError(ErrCodeMalformedSheet, ErrMalformedSheet, name, err)
	}
	return r.iterate(f, name)
}

// Result is a fully read sheet
type Result struct {
	Rows          []catalog.Row
	Warnings      []RowWarning
	TotalWarnings int
}

// ReadAll reads every row of the workbook at path
func (r *Reader) ReadAll(path string) (*Result, error) {
	rows, err := r.Open(path)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ReadAllFrom reads every row of a workbook streamed from src
func (r *Reader) ReadAllFrom(src io.Reader, name string) (*Result, error) {
	rows, err := r.OpenReader(src, name)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows *Rows) (*Result, error) {
	defer rows.Close()

	out := make([]catalog.Row, 0)
	for rows.Next() {
		out = append(out, rows.Row())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &Result{
		Rows:          out,
		Warnings:      rows.warnings.Warnings(),
		TotalWarnings: rows.warnings.TotalCount(),
	}, nil
}

func (r *Reader) iterate(f *excelize.File, path string) (*Rows, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, newError(ErrCodeMalformedSheet, ErrMalformedSheet, path, errors.New("workbook has no worksheets"))
	}

	name := sheets[0]
	if r.sheet != "" {
		if !slices.Contains(sheets, r.sheet) {
			_ = f.Close()
			return nil, newError(ErrCodeMalformedSheet, ErrMalformedSheet, path,
				fmt.Errorf("worksheet %q not found", r.sheet))
		}
		name = r.sheet
	}

	rows, err := f.Rows(name)
	if err != nil {
		_ = f.Close()
		return nil, newError(ErrCodeMalformedSheet, ErrMalformedSheet, path, err)
	}

	return &Rows{
		file:     f,
		rows:     rows,
		layout:   r.layout,
		path:     path,
		sheet:    name,
		maxRows:  r.maxRows,
		warnings: NewWarningCollection(r.maxWarnings),
	}, nil
}

// Rows iterates the rows of one worksheet. Blank rows are not returned;
// header rows are, so the aggregator can account for them.
type Rows struct {
	file     *excelize.File
	rows     *excelize.Rows
	layout   layout
	path     string
	sheet    string
	maxRows  int
	index    int
	dataRows int
	current  catalog.Row
	warnings *WarningCollection
	err      error
	closed   bool
}

// Next advances to the next non-blank row
func (it *Rows) Next() bool {
	if it.err != nil || it.closed {
		return false
	}
	for it.rows.Next() {
		it.index++
		cols, err := it.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			it.err = newError(ErrCodeMalformedSheet, ErrMalformedSheet, it.path,
				fmt.Errorf("row %d: %w", it.index, err))
			return false
		}
		if blank(cols) {
			continue
		}
		if it.index > it.layout.headerRows {
			it.dataRows++
			if it.maxRows > 0 && it.dataRows > it.maxRows {
				it.err = newError(ErrCodeFileTooLarge, ErrTooManyRows, it.path,
					fmt.Errorf("limit is %d rows", it.maxRows))
				return false
			}
		}
		it.current = it.mapRow(cols)
		return true
	}
	if err := it.rows.Error(); err != nil {
		it.err = newError(ErrCodeMalformedSheet, ErrMalformedSheet, it.path, err)
	}
	return false
}

// Row returns the current row
func (it *Rows) Row() catalog.Row {
	return it.current
}

// Err returns the error that stopped iteration, if any
func (it *Rows) Err() error {
	return it.err
}

// Sheet returns the name of the worksheet being read
func (it *Rows) Sheet() string {
	return it.sheet
}

// Warnings returns the warnings collected so far
func (it *Rows) Warnings() *WarningCollection {
	return it.warnings
}

// Close releases the workbook
func (it *Rows) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return errors.Join(it.rows.Close(), it.file.Close())
}

func (it *Rows) mapRow(cols []string) catalog.Row {
	l := it.layout
	row := catalog.Row{
		Index:       it.index,
		Handle:      cell(cols, l.handle),
		Title:       cell(cols, l.title),
		Description: cell(cols, l.description),
		ImageURL:    strings.TrimSpace(cell(cols, l.image)),
	}
	for _, o := range l.options {
		row.Options = append(row.Options, catalog.OptionCell{
			Name:  strings.TrimSpace(cell(cols, o[0])),
			Value: strings.TrimSpace(cell(cols, o[1])),
		})
	}

	if it.index <= l.headerRows {
		return row
	}
	raw := cell(cols, l.price)
	price, err := catalog.ParsePrice(raw)
	if err != nil {
		it.warnings.Add(RowWarning{
			Row:     it.index,
			Column:  l.priceColumn,
			Code:    ErrCodeInvalidPrice,
			Message: "price is not a valid amount, using 0",
			Value:   raw,
		})
	}
	row.Price = price
	return row
}

func cell(cols []string, i int) string {
	if i < 0 || i >= len(cols) {
		return ""
	}
	return cols[i]
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
