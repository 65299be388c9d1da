package core

// normalize.go turns raw spreadsheet rows into typed records.
//
// Coercion only touches textual cells. Workbook cells that are already
// numbers or booleans pass through as stored, so an Admission ID typed as a
// number in Excel stays a float64 and a ticked Paid cell stays a bool.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/noor-ul-masajid/console/internal/sheet"
)

// numericRegex accepts plain decimal and scientific literals.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// nonDigitRegex matches everything a phone number is stripped of.
var nonDigitRegex = regexp.MustCompile(`\D`)

// countryCode is the dialing prefix added to bare 10-digit local numbers.
const countryCode = "92"

// EffectiveKind resolves KindInfer from the field name. Explicit kinds are
// returned unchanged.
func EffectiveKind(field string, kind Kind) Kind {
	if kind != KindInfer {
		return kind
	}

	name := strings.ToLower(field)
	switch {
	case strings.Contains(name, "phone"):
		return KindPhone
	case strings.Contains(name, "amount"):
		return KindNumber
	// "paid" contains "id", so flags are matched before the id rule
	case strings.Contains(name, "paid"),
		strings.Contains(name, "verified"):
		return KindBoolean
	case strings.Contains(name, "id"),
		strings.Contains(name, "year"):
		return KindNumber
	default:
		return KindText
	}
}

// NormalizeRow builds the record for one data row and collects a message for
// every required field that is missing. The record is built even when the
// row has errors; unmapped and absent cells are nil.
func NormalizeRow(row sheet.Row, mappings []ColumnMapping) (Record, []string) {
	record := make(Record, len(mappings))
	var problems []string

	for _, m := range mappings {
		var raw any
		if m.ExcelColumn != "" {
			raw = row[m.ExcelColumn]
		}

		if m.Required && isBlank(raw) {
			problems = append(problems, fmt.Sprintf("Required field '%s' is missing.", m.AppField))
		}

		record[m.AppField] = Coerce(raw, EffectiveKind(m.AppField, m.Kind))
	}

	return record, problems
}

// Coerce converts a textual cell to kind. Non-string values are returned as is.
func Coerce(raw any, kind Kind) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}

	switch kind {
	case KindPhone:
		return NormalizePhone(s)
	case KindNumber:
		return parseNumber(s)
	case KindBoolean:
		return ParseBool(s)
	default:
		return s
	}
}

// NormalizePhone strips every non-digit and prefixes the country code to a
// bare 10-digit local number.
func NormalizePhone(s string) string {
	digits := nonDigitRegex.ReplaceAllString(s, "")
	if len(digits) == 10 && !strings.HasPrefix(digits, countryCode) {
		return countryCode + digits
	}
	return digits
}

// ParseBool reports whether s is "true", "yes" or "1" ignoring case.
func ParseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// parseNumber returns s as a float64, or s unchanged when it is not a number.
func parseNumber(s string) any {
	trimmed := strings.TrimSpace(s)
	if !numericRegex.MatchString(trimmed) {
		return s
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return s
	}
	return n
}

func isBlank(v any) bool {
	return v == nil || strings.TrimSpace(sheet.CellText(v)) == ""
}
