package sheet

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// TemplateSheetName is the sheet name of downloadable import templates.
const TemplateSheetName = "Template"

// maxSheetNameLen is Excel's limit on sheet name length.
const maxSheetNameLen = 31

// readWorkbook decodes the first sheet of an .xlsx workbook into a cell matrix.
func readWorkbook(data []byte) ([][]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableFile)
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrUnreadableFile, name, err)
	}

	matrix := make([][]any, len(rows))
	for r, cols := range rows {
		cells := make([]any, len(cols))
		for c, raw := range cols {
			if raw == "" {
				continue // absent cell
			}
			cells[c] = typedCell(f, name, c+1, r+1, raw)
		}
		matrix[r] = cells
	}

	return matrix, nil
}

// typedCell converts a raw cell string to the type the workbook stored.
func typedCell(f *excelize.File, sheet string, col, row int, raw string) any {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// Cells with no type attribute are numeric per the OOXML default.
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}

// WriteTemplate writes a workbook with one "Template" sheet holding only the
// given header row.
func WriteTemplate(w io.Writer, headers []string) error {
	return Export(w, TemplateSheetName, headers, nil)
}

// Export writes a single-sheet workbook: the header row followed by rows.
// Cell values are written with their Go type (numbers stay numeric).
func Export(w io.Writer, sheetName string, headers []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	name := SafeSheetName(sheetName)
	const defaultSheet = "Sheet1"
	if name != defaultSheet {
		if err := f.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		values := row
		if err := f.SetSheetRow(name, ref, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SafeSheetName strips characters Excel rejects in sheet names and truncates
// to the 31 character limit.
func SafeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.Trim(name, "'"))

	if name == "" {
		return "Sheet1"
	}
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}
	return name
}

// TemplateFileName derives the download name of an import template from the
// session title: every whitespace rune, Unicode spaces and the BOM included,
// becomes "_" and "_Template.xlsx" is appended.
func TemplateFileName(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			return '_'
		}
		return r
	}, title) + "_Template.xlsx"
}
