package core

// session.go implements the import state machine for one user.
//
//	Idle -> FileSelected -> Parsed -> Mapped <-> Reviewed -> Completed
//
// A Session is single-owner and not safe for concurrent use; Service
// serializes access per session. The parsed sheet is cached so the user can
// remap and re-run ProcessImport without uploading again.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/noor-ul-masajid/console/internal/sheet"
)

var (
	// ErrNotReady is returned when ProcessImport runs before a file is
	// selected or while required fields are unmapped.
	ErrNotReady = errors.New("import not ready")

	// ErrEmptySheet is returned when the selected file has no data rows.
	ErrEmptySheet = errors.New("empty sheet: no data rows")

	// ErrImportRejected is returned when the accept callback fails. Nothing is
	// recorded as imported.
	ErrImportRejected = errors.New("import rejected")
)

// DefaultPreviewRows is how many data rows the review step shows.
const DefaultPreviewRows = 5

// Session holds the per-file state of one import.
type Session struct {
	info   SchemaInfo
	accept AcceptFunc
	parser sheet.Parser

	previewRows int

	state    State
	fileName string
	parsed   *sheet.ParsedSheet
	mappings []ColumnMapping
	result   *ImportResult
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithParser sets the parser used by SelectFile.
func WithParser(p sheet.Parser) SessionOption {
	return func(s *Session) { s.parser = p }
}

// WithPreviewRows sets how many rows Preview returns.
func WithPreviewRows(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.previewRows = n
		}
	}
}

// NewSession starts an idle session for a schema. accept receives the
// records of every successful attempt.
func NewSession(info SchemaInfo, accept AcceptFunc, opts ...SessionOption) *Session {
	s := &Session{
		info:        info,
		accept:      accept,
		previewRows: DefaultPreviewRows,
		state:       StateIdle,
		mappings:    NewMappings(info.Columns),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle stage.
func (s *Session) State() State { return s.state }

// Schema returns the schema the session imports into.
func (s *Session) Schema() SchemaInfo { return s.info }

// FileName returns the name of the selected file.
func (s *Session) FileName() string { return s.fileName }

// Headers returns the headers of the parsed sheet, nil before a parse.
func (s *Session) Headers() []string {
	if s.parsed == nil {
		return nil
	}
	return s.parsed.Headers
}

// Mappings returns a copy of the current column mappings.
func (s *Session) Mappings() []ColumnMapping { return cloneMappings(s.mappings) }

// Result returns the result of the last attempt, nil if none.
func (s *Session) Result() *ImportResult { return s.result }

// SelectFile discards all per-file state and parses the new file. On success
// headers are auto-mapped and the session is Mapped. On failure the session
// is Idle again with nothing retained.
func (s *Session) SelectFile(ctx context.Context, name string, r io.Reader) error {
	s.clear()
	s.state = StateFileSelected
	s.fileName = name

	parsed, err := s.parser.Parse(ctx, name, r)
	if err != nil {
		s.clear()
		return fmt.Errorf("parse %s: %w", name, err)
	}

	s.parsed = parsed
	s.state = StateParsed

	AutoMap(parsed.Headers, s.mappings)
	s.state = StateMapped
	return nil
}

// SetMapping points mapping index at a source header. An empty header unsets
// it. The header is not validated here; a header that does not exist simply
// yields missing cells at normalization time.
func (s *Session) SetMapping(index int, header string) error {
	if index < 0 || index >= len(s.mappings) {
		return fmt.Errorf("%w: %d (have %d)", ErrMappingIndex, index, len(s.mappings))
	}

	s.mappings[index].ExcelColumn = header
	if s.state == StateReviewed || s.state == StateCompleted {
		s.state = StateMapped
	}
	return nil
}

// Preview returns the first rows of the sheet with the current mapping and
// moves the session to Reviewed.
func (s *Session) Preview() (PreviewData, error) {
	if s.parsed == nil {
		return PreviewData{}, fmt.Errorf("%w: no file selected", ErrNotReady)
	}

	if s.state == StateMapped {
		s.state = StateReviewed
	}

	return PreviewData{
		Headers:  s.parsed.Headers,
		Rows:     s.parsed.Preview(s.previewRows),
		Mappings: cloneMappings(s.mappings),
	}, nil
}

// CanProcess reports whether a file is parsed and every required field has
// a source column.
func (s *Session) CanProcess() bool {
	return s.parsed != nil && len(MissingRequired(s.mappings)) == 0
}

// ProcessImport normalizes every non-blank data row against the current
// mapping. If any row has errors the caller is not invoked and the result
// lists every error; the session stays Reviewed so mappings can be fixed.
// Otherwise the accept callback receives all records and the session is
// Completed.
//
// Returned errors are reserved for attempts that could not run at all;
// validation failures are reported in the result.
func (s *Session) ProcessImport(ctx context.Context) (*ImportResult, error) {
	if s.parsed == nil {
		return nil, fmt.Errorf("%w: no file selected", ErrNotReady)
	}
	if missing := MissingRequired(s.mappings); len(missing) > 0 {
		return nil, fmt.Errorf("%w: required columns not mapped: %s", ErrNotReady, strings.Join(missing, ", "))
	}

	result := &ImportResult{Errors: []RowError{}}
	records := make([]Record, 0, len(s.parsed.Rows))

	for i, row := range s.parsed.Rows {
		if row.IsBlank() {
			continue
		}
		result.TotalRows++

		record, problems := NormalizeRow(row, s.mappings)
		for _, msg := range problems {
			// +2: header is line 1 and rows are zero-indexed
			result.Errors = append(result.Errors, RowError{Row: i + 2, Message: msg})
		}
		if len(problems) == 0 {
			records = append(records, record)
		}
	}

	if result.TotalRows == 0 {
		return nil, ErrEmptySheet
	}

	if !result.OK() {
		s.result = result
		s.state = StateReviewed
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	updated, err := s.accept(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportRejected, err)
	}
	updated = min(max(updated, 0), len(records))

	result.NewRecordsAdded = len(records)
	result.RecordsUpdated = updated
	s.result = result
	s.state = StateCompleted
	return result, nil
}

// Reset returns the session to Idle and drops the file, the sheet, every
// mapping edit and the last result.
func (s *Session) Reset() {
	s.clear()
}

// TemplateWorkbook writes a workbook holding only the template header row.
// It does not touch session state.
func (s *Session) TemplateWorkbook(w io.Writer) error {
	return WriteTemplate(w, s.info)
}

// TemplateFileName is the download name of the template workbook.
func (s *Session) TemplateFileName() string {
	return sheet.TemplateFileName(s.info.Title)
}

// WriteTemplate writes the header-only template workbook for a schema.
func WriteTemplate(w io.Writer, info SchemaInfo) error {
	headers := make([]string, len(info.Columns))
	for i, col := range info.Columns {
		headers[i] = col.Header
	}
	return sheet.WriteTemplate(w, headers)
}

func (s *Session) clear() {
	s.state = StateIdle
	s.fileName = ""
	s.parsed = nil
	s.mappings = NewMappings(s.info.Columns)
	s.result = nil
}
