package core

import (
	"errors"
	"strings"
)

// ErrMappingIndex is returned when a mapping index is outside the template.
var ErrMappingIndex = errors.New("mapping index out of range")

// NewMappings returns one unset mapping per template column, in order.
func NewMappings(columns []TemplateColumn) []ColumnMapping {
	mappings := make([]ColumnMapping, len(columns))
	for i, col := range columns {
		mappings[i] = ColumnMapping{
			AppField: col.Key,
			Required: col.Required,
			Kind:     col.Kind,
		}
	}
	return mappings
}

// AutoMap binds every unset mapping to the first header whose trimmed text
// equals the mapping's AppField, ignoring case. Mappings that already have a
// source are left alone. The slice is updated in place and returned.
func AutoMap(headers []string, mappings []ColumnMapping) []ColumnMapping {
	for i := range mappings {
		if mappings[i].ExcelColumn != "" {
			continue
		}
		for _, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), mappings[i].AppField) {
				mappings[i].ExcelColumn = h
				break
			}
		}
	}
	return mappings
}

// MissingRequired returns the AppFields of required mappings with no source.
func MissingRequired(mappings []ColumnMapping) []string {
	var missing []string
	for _, m := range mappings {
		if m.Required && m.ExcelColumn == "" {
			missing = append(missing, m.AppField)
		}
	}
	return missing
}

// cloneMappings returns a copy safe to hand out of a session.
func cloneMappings(mappings []ColumnMapping) []ColumnMapping {
	if mappings == nil {
		return nil
	}
	out := make([]ColumnMapping, len(mappings))
	copy(out, mappings)
	return out
}
