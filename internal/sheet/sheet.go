// Package sheet reads and writes the spreadsheets exchanged with the console.
//
// Reading always yields a ParsedSheet: the first row of the first sheet is the
// header row, every later row is data (blank rows included). Cells keep the
// type the workbook stored them with: string for text, float64 for numbers and
// bool for booleans. CSV input only ever produces strings.
//
// Writing produces .xlsx workbooks for import templates and report exports.
package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnreadableFile is returned when the input cannot be decoded as a
// spreadsheet. No partial sheet is ever returned alongside it.
var ErrUnreadableFile = errors.New("unreadable spreadsheet file")

// ErrFileTooLarge is returned when the input exceeds the parser's size limit.
var ErrFileTooLarge = errors.New("file too large")

// ole2Magic starts legacy BIFF (.xls) workbooks, which are not decoded.
var ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// DefaultMaxFileSize caps input read by the zero-value Parser (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Format identifies how the bytes of a file are decoded.
type Format int

const (
	FormatUnknown Format = iota
	FormatWorkbook
	FormatCSV
)

// String returns the lowercase name of the format.
func (f Format) String() string {
	switch f {
	case FormatWorkbook:
		return "workbook"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// Row is one data row: source header -> raw cell value.
// A cell that is absent from the file has no entry.
type Row map[string]any

// IsBlank reports whether the row holds no non-whitespace cell.
func (r Row) IsBlank() bool {
	for _, v := range r {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}

// ParsedSheet is the decoded content of one uploaded file.
type ParsedSheet struct {
	Headers []string
	Rows    []Row
	Format  Format
}

// Preview returns at most n data rows.
func (p *ParsedSheet) Preview(n int) []Row {
	if n < 0 || n > len(p.Rows) {
		n = len(p.Rows)
	}
	return p.Rows[:n]
}

// Parser decodes uploaded files into a ParsedSheet.
type Parser struct {
	// MaxFileSize is the largest accepted input in bytes (DefaultMaxFileSize if zero).
	MaxFileSize int64
}

// Parse decodes r using the package default Parser.
func Parse(ctx context.Context, name string, r io.Reader) (*ParsedSheet, error) {
	return Parser{}.Parse(ctx, name, r)
}

// Parse reads the whole input and decodes it as a workbook or CSV.
// The file name's extension picks the format; zip content is treated as a
// workbook whatever the name says. Anything else must look like text to be
// read as CSV.
func (p Parser) Parse(ctx context.Context, name string, r io.Reader) (*ParsedSheet, error) {
	limit := p.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrUnreadableFile, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, ole2Magic) {
		return nil, fmt.Errorf("%w: legacy .xls workbook, save it as .xlsx", ErrUnreadableFile)
	}

	var matrix [][]any
	format := DetectFormat(name, data)
	switch format {
	case FormatWorkbook:
		matrix, err = readWorkbook(data)
	default:
		if !looksLikeText(data) {
			return nil, fmt.Errorf("%w: binary content is neither a workbook nor CSV", ErrUnreadableFile)
		}
		format = FormatCSV
		matrix, err = readCSV(ctx, data)
	}
	if err != nil {
		return nil, err
	}

	if len(matrix) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrUnreadableFile)
	}

	return build(matrix, format), nil
}

// DetectFormat picks the decoder for a file. Zip magic always wins since a
// workbook renamed to .csv is still a workbook.
func DetectFormat(name string, data []byte) Format {
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FormatWorkbook
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatWorkbook
	case ".csv", ".txt":
		return FormatCSV
	}
	return FormatUnknown
}

// build turns the cell matrix into headers + keyed rows.
func build(matrix [][]any, format Format) *ParsedSheet {
	headers := headerNames(matrix[0])

	rows := make([]Row, 0, len(matrix)-1)
	for _, cells := range matrix[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i >= len(cells) || cells[i] == nil {
				continue
			}
			row[h] = cells[i]
		}
		rows = append(rows, row)
	}

	return &ParsedSheet{Headers: headers, Rows: rows, Format: format}
}

// headerNames stringifies the header row so every column has a distinct name.
// Empty cells become __EMPTY, __EMPTY_1, ...; repeats get _1, _2, ... suffixes.
func headerNames(cells []any) []string {
	names := make([]string, len(cells))
	used := make(map[string]bool, len(cells))
	suffix := make(map[string]int)

	for i, c := range cells {
		base := CellText(c)
		if strings.TrimSpace(base) == "" {
			base = "__EMPTY"
		}

		name := base
		for used[name] {
			suffix[base]++
			name = base + "_" + strconv.Itoa(suffix[base])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// CellText renders a raw cell value as text.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(val)
	}
}
