package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/noor-ul-masajid/console/internal/roster"
	"github.com/noor-ul-masajid/console/internal/sheet"
)

// exportPrefix starts every exported file name.
const exportPrefix = "Noor-ul-Masajid"

var attendanceColumns = []string{"Date", "Class", "Roll Number", "Student Name", "Status"}

var feeColumns = []string{
	"Admission ID",
	"Student Name",
	"Father Name",
	"Class Level",
	"Fee Item",
	"Amount (PKR)",
	"Paid (Yes/No)",
	"Payment Date",
	"Verified",
	"Remarks",
}

// handleExportAttendance writes the day's attendance for a class. Students
// without a mark are exported as Absent. ?date defaults to today and an
// empty ?class exports every student.
func (s *Server) handleExportAttendance(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(roster.DateLayout)
	} else if _, err := time.Parse(roster.DateLayout, date); err != nil {
		fail(w, r, fmt.Errorf("%w: date %q: want YYYY-MM-DD", errBadRequest, date))
		return
	}
	class := strings.TrimSpace(r.URL.Query().Get("class"))

	students := s.roster.Students(class)
	rows := make([][]any, len(students))
	for i, st := range students {
		rows[i] = []any{date, st.Class, st.RollNumber, st.Name, string(s.roster.AttendanceOn(date, st.RollNumber))}
	}

	label := class
	if label == "" {
		label = "All"
	}
	name := fmt.Sprintf("Attendance_%s_%s", label, date)

	var buf bytes.Buffer
	if err := sheet.Export(&buf, name, attendanceColumns, rows); err != nil {
		fail(w, r, err)
		return
	}
	writeWorkbook(w, exportFileName(name), buf.Bytes())
}

// handleExportFees writes one row per fee item of every admission.
func (s *Server) handleExportFees(w http.ResponseWriter, r *http.Request) {
	var rows [][]any
	for _, a := range s.roster.Admissions() {
		for _, fee := range a.FeeChecklist {
			rows = append(rows, []any{
				a.ID,
				a.FullName,
				a.FatherName,
				a.ClassLevel,
				fee.Name,
				fee.Amount,
				yesNo(fee.Paid),
				orNA(fee.DateOfPayment),
				yesNo(fee.Verified),
				fee.Remarks,
			})
		}
	}

	const name = "Admission_Fees_Report"
	var buf bytes.Buffer
	if err := sheet.Export(&buf, name, feeColumns, rows); err != nil {
		fail(w, r, err)
		return
	}
	writeWorkbook(w, exportFileName(name), buf.Bytes())
}

// writeWorkbook sends an xlsx attachment.
func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func exportFileName(name string) string {
	return exportPrefix + "_" + strings.ReplaceAll(name, " ", "_") + ".xlsx"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
