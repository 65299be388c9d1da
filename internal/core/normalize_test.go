package core

import (
	"reflect"
	"testing"

	"github.com/noor-ul-masajid/console/internal/sheet"
)

func TestEffectiveKind(t *testing.T) {
	tests := []struct {
		field string
		kind  Kind
		want  Kind
	}{
		{"Phone", KindInfer, KindPhone},
		{"Parent Phone", KindInfer, KindPhone},
		{"Admission ID", KindInfer, KindNumber},
		{"Fee Amount", KindInfer, KindNumber},
		{"Year", KindInfer, KindNumber},
		{"Paid", KindInfer, KindBoolean},
		{"Verified", KindInfer, KindBoolean},
		{"Fee Verified", KindInfer, KindBoolean},
		{"Paid Amount", KindInfer, KindNumber}, // amount is checked before paid
		{"Fee Paid", KindInfer, KindBoolean},
		{"Paid ID", KindInfer, KindBoolean},
		{"Status", KindInfer, KindText},
		{"Roll Number", KindInfer, KindText},
		{"Admission ID", KindText, KindText}, // explicit kind wins
		{"Notes", KindPhone, KindPhone},
	}

	for _, tt := range tests {
		if got := EffectiveKind(tt.field, tt.kind); got != tt.want {
			t.Errorf("EffectiveKind(%q, %v) = %v, want %v", tt.field, tt.kind, got, tt.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3001234567", "923001234567"},
		{"(300) 123-4567", "923001234567"},
		{"923001234567", "923001234567"},
		{"+92 300 1234567", "923001234567"},
		{"9230012345", "9230012345"}, // 10 digits already starting with 92
		{"03001234567", "03001234567"},
		{"12345", "12345"},
		{"", ""},
		{"n/a", ""},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"true", "TRUE", "yes", "Yes", "1"} {
		if !ParseBool(in) {
			t.Errorf("ParseBool(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"false", "no", "0", "", "y", " yes", "paid"} {
		if ParseBool(in) {
			t.Errorf("ParseBool(%q) = true, want false", in)
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		kind Kind
		want any
	}{
		{"number from text", "1001", KindNumber, float64(1001)},
		{"number with spaces", " 12.5 ", KindNumber, 12.5},
		{"scientific", "1e3", KindNumber, float64(1000)},
		{"signed", "-7", KindNumber, float64(-7)},
		{"not a number", "H-101", KindNumber, "H-101"},
		{"thousands separator kept", "1,000", KindNumber, "1,000"},
		{"empty string kept", "", KindNumber, ""},
		{"boolean", "Yes", KindBoolean, true},
		{"boolean false", "pending", KindBoolean, false},
		{"phone", "3001234567", KindPhone, "923001234567"},
		{"text unchanged", "  Present ", KindText, "  Present "},
		{"numeric cell passes through phone", float64(3001234567), KindPhone, float64(3001234567)},
		{"bool cell passes through number", true, KindNumber, true},
		{"nil stays nil", nil, KindBoolean, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.raw, tt.kind); got != tt.want {
				t.Errorf("Coerce(%#v, %v) = %#v, want %#v", tt.raw, tt.kind, got, tt.want)
			}
		})
	}
}

func TestNormalizeRow(t *testing.T) {
	mappings := []ColumnMapping{
		{ExcelColumn: "Roll", AppField: "Roll Number", Required: true},
		{ExcelColumn: "Status", AppField: "Status", Required: true},
		{ExcelColumn: "Mobile", AppField: "Parent Phone"},
		{ExcelColumn: "", AppField: "Remarks"},
	}

	tests := []struct {
		name       string
		row        sheet.Row
		wantRecord Record
		wantErrs   []string
	}{
		{
			name: "valid row",
			row:  sheet.Row{"Roll": "H-101", "Status": "present", "Mobile": "3001234567"},
			wantRecord: Record{
				"Roll Number":  "H-101",
				"Status":       "present",
				"Parent Phone": "923001234567",
				"Remarks":      nil,
			},
		},
		{
			name: "missing required cell",
			row:  sheet.Row{"Status": "Absent"},
			wantRecord: Record{
				"Roll Number":  nil,
				"Status":       "Absent",
				"Parent Phone": nil,
				"Remarks":      nil,
			},
			wantErrs: []string{"Required field 'Roll Number' is missing."},
		},
		{
			name: "whitespace counts as missing and errors keep collecting",
			row:  sheet.Row{"Roll": "   ", "Status": ""},
			wantRecord: Record{
				"Roll Number":  "   ",
				"Status":       "",
				"Parent Phone": nil,
				"Remarks":      nil,
			},
			wantErrs: []string{
				"Required field 'Roll Number' is missing.",
				"Required field 'Status' is missing.",
			},
		},
		{
			name: "numeric cell satisfies required",
			row:  sheet.Row{"Roll": float64(0), "Status": "Leave"},
			wantRecord: Record{
				"Roll Number":  float64(0),
				"Status":       "Leave",
				"Parent Phone": nil,
				"Remarks":      nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, errs := NormalizeRow(tt.row, mappings)

			if !reflect.DeepEqual(record, tt.wantRecord) {
				t.Errorf("record = %#v, want %#v", record, tt.wantRecord)
			}
			if !reflect.DeepEqual(errs, tt.wantErrs) {
				t.Errorf("errors = %q, want %q", errs, tt.wantErrs)
			}
		})
	}
}

func TestNormalizeRow_UnmappedRequired(t *testing.T) {
	mappings := []ColumnMapping{{AppField: "Name", Required: true}}

	_, errs := NormalizeRow(sheet.Row{"Name": "Ali"}, mappings)

	if len(errs) != 1 {
		t.Errorf("errors = %q, want one required-field error", errs)
	}
}

func TestNormalizeRow_PaidScenario(t *testing.T) {
	mappings := []ColumnMapping{{ExcelColumn: "Paid", AppField: "Paid"}}

	record, errs := NormalizeRow(sheet.Row{"Paid": "Yes"}, mappings)

	if len(errs) != 0 {
		t.Fatalf("errors = %q, want none", errs)
	}
	if record["Paid"] != true {
		t.Errorf("Paid = %#v, want true", record["Paid"])
	}
}
