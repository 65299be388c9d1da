package schemas

import (
	"context"

	"github.com/noor-ul-masajid/console/internal/core"
	"github.com/noor-ul-masajid/console/internal/roster"
)

// StudentsKey is the registry key of the student roster import.
const StudentsKey = "students"

func registerStudents(r *roster.Roster) {
	core.Register(core.SchemaDefinition{
		Info: core.SchemaInfo{
			Key:   StudentsKey,
			Group: "Students",
			Title: "Import Students",
			Columns: []core.TemplateColumn{
				{Header: "Name", Key: "Name", Required: true},
				{Header: "Father Name", Key: "Father Name"},
				{Header: "Class", Key: "Class", Required: true},
				{Header: "Section", Key: "Section", Required: true},
				{Header: "Roll Number", Key: "Roll Number", Required: true, Kind: core.KindText},
				{Header: "Phone", Key: "Phone", Kind: core.KindPhone},
				{Header: "Parent Phone", Key: "Parent Phone", Kind: core.KindPhone},
				{Header: "Admission Date", Key: "Admission Date", Kind: core.KindText},
			},
		},
		Bind: func(map[string]string) (core.AcceptFunc, error) {
			return acceptStudents(r), nil
		},
	})
}

// acceptStudents adds or replaces students by roll number. A section that is
// neither program is kept as written. The batch is written in one roster
// call so an invalid student leaves the roster untouched.
func acceptStudents(r *roster.Roster) core.AcceptFunc {
	return func(_ context.Context, records []core.Record) (int, error) {
		students := make([]roster.Student, len(records))
		for i, rec := range records {
			section, ok := roster.ParseSection(text(rec["Section"]))
			if !ok {
				section = roster.Section(text(rec["Section"]))
			}

			students[i] = roster.Student{
				RollNumber:    text(rec["Roll Number"]),
				Name:          text(rec["Name"]),
				FatherName:    text(rec["Father Name"]),
				Class:         text(rec["Class"]),
				Section:       section,
				Phone:         phone(rec["Phone"]),
				ParentPhone:   phone(rec["Parent Phone"]),
				AdmissionDate: date(rec["Admission Date"]),
			}
		}
		return r.UpsertStudents(students)
	}
}
