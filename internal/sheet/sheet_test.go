package sheet

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// workbookBytes builds an in-memory .xlsx whose first sheet holds rows.
func workbookBytes(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := row
		if err := f.SetSheetRow("Sheet1", ref, &values); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestParse_CSV(t *testing.T) {
	input := "Roll Number,Status\n101,Present\n102,\n"

	got, err := Parse(context.Background(), "attendance.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Format != FormatCSV {
		t.Errorf("Format = %v, want %v", got.Format, FormatCSV)
	}
	if want := []string{"Roll Number", "Status"}; !reflect.DeepEqual(got.Headers, want) {
		t.Errorf("Headers = %v, want %v", got.Headers, want)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}
	if v := got.Rows[0]["Roll Number"]; v != "101" {
		t.Errorf("Rows[0][Roll Number] = %#v, want \"101\"", v)
	}
	if _, ok := got.Rows[1]["Status"]; ok {
		t.Error("empty CSV cell should be absent from the row")
	}
}

func TestParse_CSVBOMAndInvalidUTF8(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Name\nAb\xffd\n")...)

	got, err := Parse(context.Background(), "x.csv", bytes.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Headers[0] != "Name" {
		t.Errorf("Headers[0] = %q, want %q (BOM not stripped)", got.Headers[0], "Name")
	}
	if v := got.Rows[0]["Name"]; v != "Ab�d" {
		t.Errorf("Rows[0][Name] = %q, want replacement character", v)
	}
}

func TestParse_Workbook(t *testing.T) {
	data := workbookBytes(t,
		[]any{"Admission ID", "Paid", "Remarks"},
		[]any{1001, true, "ok"},
		[]any{1002.5, false},
	)

	got, err := Parse(context.Background(), "fees.xlsx", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Format != FormatWorkbook {
		t.Errorf("Format = %v, want %v", got.Format, FormatWorkbook)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}

	tests := []struct {
		row    int
		header string
		want   any
	}{
		{0, "Admission ID", float64(1001)},
		{0, "Paid", true},
		{0, "Remarks", "ok"},
		{1, "Admission ID", 1002.5},
		{1, "Paid", false},
	}
	for _, tt := range tests {
		if v := got.Rows[tt.row][tt.header]; v != tt.want {
			t.Errorf("Rows[%d][%s] = %#v, want %#v", tt.row, tt.header, v, tt.want)
		}
	}
	if _, ok := got.Rows[1]["Remarks"]; ok {
		t.Error("missing workbook cell should be absent from the row")
	}
}

func TestParse_ZipContentWinsOverExtension(t *testing.T) {
	data := workbookBytes(t, []any{"Name"}, []any{"Ali"})

	got, err := Parse(context.Background(), "renamed.csv", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Format != FormatWorkbook {
		t.Errorf("Format = %v, want %v", got.Format, FormatWorkbook)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		input   []byte
		limit   int64
		wantErr error
	}{
		{
			name:    "empty csv",
			file:    "a.csv",
			input:   nil,
			wantErr: ErrUnreadableFile,
		},
		{
			name:    "corrupt workbook",
			file:    "a.xlsx",
			input:   []byte("PK\x03\x04 definitely not a zip"),
			wantErr: ErrUnreadableFile,
		},
		{
			name:    "binary with unknown extension",
			file:    "report.pdf",
			input:   []byte("%PDF-1.4\n\x00\x01\x02\x03 stream"),
			wantErr: ErrUnreadableFile,
		},
		{
			name:    "binary named csv",
			file:    "data.csv",
			input:   []byte("\x01\x02\x03\x04\x05\x06Name"),
			wantErr: ErrUnreadableFile,
		},
		{
			name:    "legacy xls workbook",
			file:    "legacy.xls",
			input:   append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 64)...),
			wantErr: ErrUnreadableFile,
		},
		{
			name:    "too large",
			file:    "a.csv",
			input:   []byte("Name\nAli\n"),
			limit:   4,
			wantErr: ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parser{MaxFileSize: tt.limit}
			got, err := p.Parse(context.Background(), tt.file, bytes.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("Parse() returned partial sheet %+v", got)
			}
		})
	}
}

func TestParse_TextWithUnknownExtension(t *testing.T) {
	got, err := Parse(context.Background(), "export.dat", strings.NewReader("Name\tNote\nAli,x\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Format != FormatCSV || len(got.Rows) != 1 {
		t.Errorf("Parse() = %+v, want one CSV row", got)
	}
}

func TestLooksLikeText(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want bool
	}{
		{"empty", nil, true},
		{"plain csv", []byte("Name,Phone\r\nAli,0300\r\n"), true},
		{"latin-1 bytes", []byte("Name\nCaf\xe9\n"), true},
		{"nul byte", []byte("Name\x00"), false},
		{"mostly control", []byte("\x01\x02\x03ab"), false},
	}

	for _, tt := range tests {
		if got := looksLikeText(tt.in); got != tt.want {
			t.Errorf("looksLikeText(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, "a.csv", strings.NewReader("Name\nAli\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Parse() error = %v, want context.Canceled", err)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	got, err := Parse(context.Background(), "a.csv", strings.NewReader("Name,Phone\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Rows) != 0 {
		t.Errorf("len(Rows) = %d, want 0", len(got.Rows))
	}
	if len(got.Headers) != 2 {
		t.Errorf("len(Headers) = %d, want 2", len(got.Headers))
	}
}

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		name  string
		cells []any
		want  []string
	}{
		{"distinct", []any{"A", "B"}, []string{"A", "B"}},
		{"empty cells", []any{"A", nil, ""}, []string{"A", "__EMPTY", "__EMPTY_1"}},
		{"duplicates", []any{"Name", "Name", "Name"}, []string{"Name", "Name_1", "Name_2"}},
		{"numeric header", []any{float64(2024)}, []string{"2024"}},
		{"suffix collides with real header", []any{"A_1", "A", "A"}, []string{"A_1", "A", "A_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headerNames(tt.cells); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("headerNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRowIsBlank(t *testing.T) {
	tests := []struct {
		row  Row
		want bool
	}{
		{Row{}, true},
		{Row{"A": "  "}, true},
		{Row{"A": ""}, true},
		{Row{"A": "x"}, false},
		{Row{"A": float64(0)}, false},
		{Row{"A": false}, false},
	}

	for _, tt := range tests {
		if got := tt.row.IsBlank(); got != tt.want {
			t.Errorf("%v.IsBlank() = %v, want %v", tt.row, got, tt.want)
		}
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{float64(3001234567), "3001234567"},
		{1.5, "1.5"},
		{true, "TRUE"},
		{false, "FALSE"},
	}

	for _, tt := range tests {
		if got := CellText(tt.in); got != tt.want {
			t.Errorf("CellText(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"a.XLSX", nil, FormatWorkbook},
		{"a.csv", []byte("x"), FormatCSV},
		{"a.bin", []byte("PK\x03\x04rest"), FormatWorkbook},
		{"a.bin", []byte("x"), FormatUnknown},
		{"legacy.xls", nil, FormatUnknown},
	}

	for _, tt := range tests {
		if got := DetectFormat(tt.name, tt.data); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
