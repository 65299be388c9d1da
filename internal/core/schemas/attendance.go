package schemas

import (
	"context"
	"log/slog"
	"time"

	"github.com/noor-ul-masajid/console/internal/core"
	"github.com/noor-ul-masajid/console/internal/roster"
)

// AttendanceKey is the registry key of the attendance import.
const AttendanceKey = "attendance"

func registerAttendance(r *roster.Roster) {
	core.Register(core.SchemaDefinition{
		Info: core.SchemaInfo{
			Key:   AttendanceKey,
			Group: "Attendance",
			Title: "Import Attendance",
			Columns: []core.TemplateColumn{
				{Header: "Roll Number", Key: "Roll Number", Required: true, Kind: core.KindText},
				{Header: "Status", Key: "Status", Required: true, Kind: core.KindText},
			},
		},
		Bind: func(params map[string]string) (core.AcceptFunc, error) {
			day, err := dateParam(params, "date", time.Now())
			if err != nil {
				return nil, err
			}
			return acceptAttendance(r, day), nil
		},
	})
}

// acceptAttendance marks each student's status for day. Rows for unknown
// roll numbers or with a status other than Present, Absent or Leave are
// skipped.
func acceptAttendance(r *roster.Roster, day string) core.AcceptFunc {
	return func(ctx context.Context, records []core.Record) (int, error) {
		updated, skipped := 0, 0
		for _, rec := range records {
			status, ok := roster.ParseStatus(text(rec["Status"]))
			if !ok {
				skipped++
				continue
			}
			overwrote, err := r.MarkAttendance(day, text(rec["Roll Number"]), status)
			if err != nil {
				skipped++
				continue
			}
			if overwrote {
				updated++
			}
		}

		if skipped > 0 {
			slog.InfoContext(ctx, "attendance rows skipped", "date", day, "skipped", skipped)
		}
		return updated, nil
	}
}
