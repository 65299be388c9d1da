package core

import (
	"context"
	"fmt"
	"time"

	"github.com/noor-ul-masajid/console/internal/sheet"
)

// Kind selects how a textual cell is coerced during normalization.
type Kind int

const (
	// KindInfer derives the kind from the field name: "phone" is Phone;
	// "amount", "id" or "year" is Number; "paid" or "verified" is Boolean.
	KindInfer Kind = iota
	KindText
	KindPhone
	KindNumber
	KindBoolean
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhone:
		return "phone"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "infer"
	}
}

// MarshalText encodes the kind by name for JSON responses.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names are an error.
func (k *Kind) UnmarshalText(b []byte) error {
	for c := KindInfer; c <= KindBoolean; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", b)
}

// TemplateColumn is one field a caller expects from an import.
type TemplateColumn struct {
	Header   string `json:"header"`   // Display label, also the template workbook header
	Key      string `json:"key"`      // Target field name in the produced record
	Required bool   `json:"required"` // Cell must be non-blank
	Kind     Kind   `json:"kind"`
}

// ColumnMapping binds a source spreadsheet header to a target field.
// ExcelColumn is empty while unmapped.
type ColumnMapping struct {
	ExcelColumn string `json:"excelColumn"`
	AppField    string `json:"appField"`
	Required    bool   `json:"required"`
	Kind        Kind   `json:"kind"`
}

// Record is one normalized row keyed by target field.
type Record map[string]any

// RowError is one field-level validation failure.
// Row is the spreadsheet line number (the header is line 1).
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes one import attempt. A new value is produced for
// every attempt; a result with errors forwarded nothing to the caller.
type ImportResult struct {
	TotalRows       int        `json:"totalRows"`
	NewRecordsAdded int        `json:"newRecordsAdded"`
	RecordsUpdated  int        `json:"recordsUpdated"`
	Errors          []RowError `json:"errors"`
}

// OK reports whether the attempt was accepted.
func (r *ImportResult) OK() bool {
	return len(r.Errors) == 0
}

// State is the import session lifecycle stage.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateParsed       State = "parsed"
	StateMapped       State = "mapped"
	StateReviewed     State = "reviewed"
	StateCompleted    State = "completed"
)

// AcceptFunc receives the accepted records of an attempt. It returns how many
// of them overwrote existing data. Every accepted record still counts toward
// NewRecordsAdded.
type AcceptFunc func(ctx context.Context, records []Record) (updated int, err error)

// BindFunc builds the accept callback for one session. Params carry
// per-session context such as the attendance date.
type BindFunc func(params map[string]string) (AcceptFunc, error)

// SchemaInfo contains display information about an import schema.
type SchemaInfo struct {
	Key     string           `json:"key"`     // Unique identifier: "attendance"
	Group   string           `json:"group"`   // Screen that owns the import: "Attendance"
	Title   string           `json:"title"`   // Modal title, also names the template file
	Columns []TemplateColumn `json:"columns"` // Expected fields in order
}

// SchemaDefinition contains everything needed to run imports for one screen.
type SchemaDefinition struct {
	Info SchemaInfo
	Bind BindFunc
}

// PreviewData is what the review step shows before processing.
type PreviewData struct {
	Headers  []string        `json:"headers"`
	Rows     []sheet.Row     `json:"rows"`
	Mappings []ColumnMapping `json:"mappings"`
}

// SessionInfo is a point-in-time snapshot of a session for API responses.
type SessionInfo struct {
	ID         string          `json:"id"`
	SchemaKey  string          `json:"schema"`
	Title      string          `json:"title"`
	State      State           `json:"state"`
	FileName   string          `json:"fileName,omitempty"`
	Headers    []string        `json:"headers"`
	Mappings   []ColumnMapping `json:"mappings"`
	RowCount   int             `json:"rowCount"`
	CanProcess bool            `json:"canProcess"`
	Missing    []string        `json:"missingRequired,omitempty"`
	Result     *ImportResult   `json:"result,omitempty"`
	LastUsed   time.Time       `json:"lastUsed"`
}
