package sheet

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteTemplate(t *testing.T) {
	headers := []string{"Roll Number", "Status"}

	var buf bytes.Buffer
	if err := WriteTemplate(&buf, headers); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != TemplateSheetName {
		t.Fatalf("sheets = %v, want [%s]", sheets, TemplateSheetName)
	}

	rows, err := f.GetRows(TemplateSheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 (header only)", len(rows))
	}
	for i, h := range headers {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
}

func TestExport_RoundTripsThroughParse(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, "Attendance_Hifz A_2024-05-01", []string{"Roll Number", "Status"}, [][]any{
		{101, "Present"},
		{102, "Absent"},
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := Parse(context.Background(), "report.xlsx", &buf)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}
	if v := got.Rows[1]["Roll Number"]; v != float64(102) {
		t.Errorf("Rows[1][Roll Number] = %#v, want 102", v)
	}
	if v := got.Rows[1]["Status"]; v != "Absent" {
		t.Errorf("Rows[1][Status] = %#v, want Absent", v)
	}
}

func TestSafeSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Template", "Template"},
		{"Attendance_Hifz A_2024/05/01", "Attendance_Hifz A_2024_05_01"},
		{"", "Sheet1"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{"'quoted'", "quoted"},
	}

	for _, tt := range tests {
		if got := SafeSheetName(tt.in); got != tt.want {
			t.Errorf("SafeSheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTemplateFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Attendance", "Attendance_Template.xlsx"},
		{"Import Fee Updates", "Import_Fee_Updates_Template.xlsx"},
		{"Two  Spaces", "Two__Spaces_Template.xlsx"},
		{"Fee\u00a0Updates", "Fee_Updates_Template.xlsx"},
		{"Tab\tand\u3000Ideographic", "Tab_and_Ideographic_Template.xlsx"},
	}

	for _, tt := range tests {
		if got := TemplateFileName(tt.title); got != tt.want {
			t.Errorf("TemplateFileName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
