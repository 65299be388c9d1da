// Package schemas registers the import schemas of every console screen with
// the core registry. Call Register once at startup with the roster the
// accepted records are written to.
package schemas

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/noor-ul-masajid/console/internal/core"
	"github.com/noor-ul-masajid/console/internal/roster"
	"github.com/noor-ul-masajid/console/internal/sheet"
)

// Register adds the attendance, fee update, student and contact schemas.
func Register(r *roster.Roster) {
	registerAttendance(r)
	registerFeeUpdates(r)
	registerStudents(r)
	registerContacts(r)
}

// text renders a record value as trimmed text.
func text(v any) string {
	return strings.TrimSpace(sheet.CellText(v))
}

// truthy interprets a normalized cell as a yes/no flag.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b == 1
	case string:
		return core.ParseBool(strings.TrimSpace(b))
	}
	return false
}

// date renders a date cell as YYYY-MM-DD. Workbook date cells arrive as
// serial numbers; text is kept as typed.
func date(v any) string {
	if serial, ok := v.(float64); ok {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(roster.DateLayout)
		}
	}
	return text(v)
}

// phone normalizes a phone cell whether it was typed as text or a number.
func phone(v any) string {
	if v == nil {
		return ""
	}
	return core.NormalizePhone(sheet.CellText(v))
}

// dateParam reads an optional YYYY-MM-DD parameter, defaulting to today.
func dateParam(params map[string]string, name string, now time.Time) (string, error) {
	v := strings.TrimSpace(params[name])
	if v == "" {
		return now.Format(roster.DateLayout), nil
	}
	if _, err := time.Parse(roster.DateLayout, v); err != nil {
		return "", fmt.Errorf("%w %s %q: want YYYY-MM-DD", core.ErrInvalidParam, name, v)
	}
	return v, nil
}
