package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/noor-ul-masajid/console/internal/core"
	"github.com/noor-ul-masajid/console/internal/roster"
)

// admissionRequest is the admission form. The fee checklist, status and id
// are assigned by the roster.
type admissionRequest struct {
	FullName      string `json:"fullName"`
	FatherName    string `json:"fatherName"`
	ClassLevel    string `json:"classLevel"`
	StudentPhone  string `json:"studentPhone"`
	ParentPhone   string `json:"parentPhone"`
	AdmissionDate string `json:"admissionDate"`
}

// handleCreateAdmission stores a new admission so fee updates can be
// imported against its id.
func (s *Server) handleCreateAdmission(w http.ResponseWriter, r *http.Request) {
	var req admissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	a, err := s.roster.AddAdmission(roster.Admission{
		FullName:      req.FullName,
		FatherName:    req.FatherName,
		ClassLevel:    req.ClassLevel,
		StudentPhone:  core.NormalizePhone(req.StudentPhone),
		ParentPhone:   core.NormalizePhone(req.ParentPhone),
		AdmissionDate: req.AdmissionDate,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, a)
}
