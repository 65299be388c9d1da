// Package roster is the in-memory store behind the console screens: students,
// daily attendance, admissions with their fee checklists, and the contact
// list used for bulk messages.
//
// All methods are safe for concurrent use.
package roster

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Section is one of the two programs.
type Section string

const (
	SectionHifz Section = "Hifz-ul-Quran"
	SectionDars Section = "Dars-e-Nizami"
)

// HifzClasses are the classes of the Hifz-ul-Quran program.
var HifzClasses = []string{"Hifz A", "Hifz B", "Hifz C"}

// DarsClasses are the classes of the Dars-e-Nizami program, in order.
var DarsClasses = []string{
	"Mutawassitah",
	"Ama Awwal",
	"Ama Dom",
	"Khasa Awwal",
	"Khasa Dom",
	"Aliyah Awwal",
	"Aliyah Dom",
	"Alamiyah Awwal",
	"Alamiyah Dom",
}

// ParseSection matches a section by name, ignoring case and surrounding space.
// "Hifz" and "Dars" are accepted as short forms.
func ParseSection(s string) (Section, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hifz-ul-quran", "hifz":
		return SectionHifz, true
	case "dars-e-nizami", "dars":
		return SectionDars, true
	}
	return "", false
}

// Status is a daily attendance mark.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLeave   Status = "Leave"
)

// ParseStatus accepts only the exact status names.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPresent, StatusAbsent, StatusLeave:
		return st, true
	}
	return "", false
}

// DateLayout is the format of every date kept in the roster.
const DateLayout = "2006-01-02"

var (
	// ErrNotFound is returned when a student or admission does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned for records missing identifying fields.
	ErrInvalid = errors.New("invalid record")
)

// Student is an enrolled student. RollNumber is unique.
type Student struct {
	RollNumber    string  `json:"rollNumber"`
	Name          string  `json:"name"`
	FatherName    string  `json:"fatherName"`
	Class         string  `json:"class"`
	Section       Section `json:"section"`
	Phone         string  `json:"phone"`
	ParentPhone   string  `json:"parentPhone"`
	AdmissionDate string  `json:"admissionDate"`
}

// FeeItem is one line of an admission fee checklist.
type FeeItem struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Paid          bool    `json:"paid"`
	DateOfPayment string  `json:"dateOfPayment,omitempty"`
	Remarks       string  `json:"remarks,omitempty"`
	Verified      bool    `json:"verified"`
}

// DefaultFeeChecklist returns the fee items every new admission starts with.
func DefaultFeeChecklist() []FeeItem {
	return []FeeItem{
		{ID: "adm_fee", Name: "Admission Fee", Amount: 5000},
		{ID: "exam_fee", Name: "Examination Fee", Amount: 2500},
		{ID: "reg_fee", Name: "Registration Fee", Amount: 1000},
		{ID: "form_proc_fee", Name: "Form Processing Fee", Amount: 500},
	}
}

// Admission is an application with its fee checklist.
type Admission struct {
	ID            int       `json:"id"`
	FullName      string    `json:"fullName"`
	FatherName    string    `json:"fatherName"`
	ClassLevel    string    `json:"classLevel"`
	StudentPhone  string    `json:"studentPhone"`
	ParentPhone   string    `json:"parentPhone"`
	AdmissionDate string    `json:"admissionDate"`
	Status        string    `json:"admissionStatus"`
	FeeChecklist  []FeeItem `json:"feeChecklist"`
}

// FeeUpdate changes one fee item. Empty strings keep the current value.
type FeeUpdate struct {
	Paid          bool
	DateOfPayment string
	Remarks       string
}

// Contact is a bulk-message recipient. Phone is unique.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Group string `json:"group"`
}

// Roster holds all console records.
type Roster struct {
	mu sync.RWMutex

	students     map[string]Student
	studentOrder []string

	// date -> roll number -> status
	attendance map[string]map[string]Status

	admissions    map[int]*Admission
	nextAdmission int

	contacts     map[string]Contact
	contactOrder []string
}

// New returns an empty roster. Admission ids start at 1001.
func New() *Roster {
	return &Roster{
		students:      make(map[string]Student),
		attendance:    make(map[string]map[string]Status),
		admissions:    make(map[int]*Admission),
		nextAdmission: 1001,
		contacts:      make(map[string]Contact),
	}
}

// UpsertStudent adds a student or replaces the one with the same roll number.
// It reports whether an existing student was replaced.
func (r *Roster) UpsertStudent(s Student) (bool, error) {
	n, err := r.UpsertStudents([]Student{s})
	return n == 1, err
}

// UpsertStudents adds or replaces a batch of students and returns how many
// replaced an existing roll number. Every student is checked first; one
// invalid student leaves the roster untouched.
func (r *Roster) UpsertStudents(students []Student) (int, error) {
	batch := make([]Student, len(students))
	for i, s := range students {
		s.RollNumber = strings.TrimSpace(s.RollNumber)
		if s.RollNumber == "" || strings.TrimSpace(s.Name) == "" {
			return 0, fmt.Errorf("%w: student %d needs roll number and name", ErrInvalid, i+1)
		}
		batch[i] = s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := 0
	for _, s := range batch {
		if _, exists := r.students[s.RollNumber]; exists {
			replaced++
		} else {
			r.studentOrder = append(r.studentOrder, s.RollNumber)
		}
		r.students[s.RollNumber] = s
	}
	return replaced, nil
}

// Student returns the student with a roll number.
func (r *Roster) Student(roll string) (Student, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.students[roll]
	return s, ok
}

// Students returns every student in insertion order. An empty class matches all.
func (r *Roster) Students(class string) []Student {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Student, 0, len(r.studentOrder))
	for _, roll := range r.studentOrder {
		s := r.students[roll]
		if class == "" || s.Class == class {
			out = append(out, s)
		}
	}
	return out
}

// MarkAttendance records a status for a student on date. It reports whether
// an earlier mark for that day was overwritten.
func (r *Roster) MarkAttendance(date, roll string, status Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.students[roll]; !ok {
		return false, fmt.Errorf("%w: student %s", ErrNotFound, roll)
	}

	day, ok := r.attendance[date]
	if !ok {
		day = make(map[string]Status)
		r.attendance[date] = day
	}
	_, existed := day[roll]
	day[roll] = status
	return existed, nil
}

// AttendanceOn returns the status of a student on date. Students without a
// mark are Absent.
func (r *Roster) AttendanceOn(date, roll string) Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if st, ok := r.attendance[date][roll]; ok {
		return st
	}
	return StatusAbsent
}

// AddAdmission stores a new admission, assigning its id and, when none is
// given, the default fee checklist.
func (r *Roster) AddAdmission(a Admission) (Admission, error) {
	if strings.TrimSpace(a.FullName) == "" {
		return Admission{}, fmt.Errorf("%w: admission needs a full name", ErrInvalid)
	}
	if len(a.FeeChecklist) == 0 {
		a.FeeChecklist = DefaultFeeChecklist()
	}
	if a.Status == "" {
		a.Status = "Pending Review"
	}
	if a.AdmissionDate == "" {
		a.AdmissionDate = time.Now().Format(DateLayout)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = r.nextAdmission
	r.nextAdmission++

	stored := a
	stored.FeeChecklist = slices.Clone(a.FeeChecklist)
	r.admissions[a.ID] = &stored
	return a, nil
}

// Admission returns a copy of an admission.
func (r *Roster) Admission(id int) (Admission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admissions[id]
	if !ok {
		return Admission{}, false
	}
	out := *a
	out.FeeChecklist = slices.Clone(a.FeeChecklist)
	return out, true
}

// Admissions returns copies of every admission ordered by id.
func (r *Roster) Admissions() []Admission {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Admission, 0, len(r.admissions))
	for _, a := range r.admissions {
		c := *a
		c.FeeChecklist = slices.Clone(a.FeeChecklist)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Admission) int { return a.ID - b.ID })
	return out
}

// UpdateFee applies u to the fee item named feeName of admission id. Paying
// an item marks it verified; verification is never withdrawn.
func (r *Roster) UpdateFee(id int, feeName string, u FeeUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.admissions[id]
	if !ok {
		return fmt.Errorf("%w: admission %d", ErrNotFound, id)
	}

	for i := range a.FeeChecklist {
		item := &a.FeeChecklist[i]
		if item.Name != feeName {
			continue
		}
		item.Paid = u.Paid
		if u.DateOfPayment != "" {
			item.DateOfPayment = u.DateOfPayment
		}
		if u.Remarks != "" {
			item.Remarks = u.Remarks
		}
		item.Verified = u.Paid || item.Verified
		return nil
	}
	return fmt.Errorf("%w: fee item %q on admission %d", ErrNotFound, feeName, id)
}

// UpsertContact adds a contact or replaces the one with the same phone.
// It reports whether an existing contact was replaced.
func (r *Roster) UpsertContact(c Contact) (bool, error) {
	n, err := r.UpsertContacts([]Contact{c})
	return n == 1, err
}

// UpsertContacts adds or replaces a batch of contacts keyed by phone and
// returns how many replaced an existing entry, including earlier entries of
// the same batch. A contact without a phone rejects the whole batch.
func (r *Roster) UpsertContacts(contacts []Contact) (int, error) {
	for i, c := range contacts {
		if c.Phone == "" {
			return 0, fmt.Errorf("%w: contact %d needs a phone", ErrInvalid, i+1)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := 0
	for _, c := range contacts {
		if _, exists := r.contacts[c.Phone]; exists {
			replaced++
		} else {
			r.contactOrder = append(r.contactOrder, c.Phone)
		}
		r.contacts[c.Phone] = c
	}
	return replaced, nil
}

// Contacts returns contacts in insertion order. An empty group matches all.
func (r *Roster) Contacts(group string) []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Contact, 0, len(r.contactOrder))
	for _, phone := range r.contactOrder {
		c := r.contacts[phone]
		if group == "" || strings.EqualFold(c.Group, group) {
			out = append(out, c)
		}
	}
	return out
}

// ParseAdmissionID accepts an integer id written as text or a float.
func ParseAdmissionID(v any) (int, bool) {
	switch id := v.(type) {
	case float64:
		if id != float64(int(id)) {
			return 0, false
		}
		return int(id), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(id))
		return n, err == nil
	}
	return 0, false
}
