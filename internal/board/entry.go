package board

import (
	"encoding/json"
	"fmt"

	"CRMDashboard/internal/domain"
)

// Entry is one formatted drill-down row: either a plain Label or an
// EmployeeRef that the view can link to a work history.
type Entry interface {
	entry()
}

// Label is a display string.
type Label string

func (Label) entry() {}

// EmployeeRef points at an employee instead of describing it.
type EmployeeRef struct {
	ID   domain.Number
	Name string
}

func (EmployeeRef) entry() {}

func (e EmployeeRef) String() string {
	return fmt.Sprintf("Employee #%s — %s", e.ID, e.Name)
}

// MarshalJSON tags the record so clients can tell it from a label.
func (e EmployeeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string        `json:"type"`
		ID   domain.Number `json:"id"`
		Name string        `json:"name"`
	}{Type: "employee", ID: e.ID, Name: e.Name})
}

// EntryText renders any entry as text, for exports and plain views.
func EntryText(e Entry) string {
	switch v := e.(type) {
	case Label:
		return string(v)
	case EmployeeRef:
		return v.String()
	}
	return ""
}

func LeadEntry(l domain.Lead) Entry {
	status := l.Status.String()
	if status == "" {
		status = "unknown"
	}
	return Label(fmt.Sprintf("Lead #%s — %s (%s)", l.ID, l.Name, status))
}

func ProjectEntry(p domain.Project) Entry {
	progress := p.Progress.String()
	if progress == "" {
		progress = "0"
	}
	return Label(fmt.Sprintf("Project #%s — %s — %s%%", p.ID, p.Title, progress))
}

func ClientEntry(c domain.Client) Entry {
	return Label(fmt.Sprintf("Client #%s — %s", c.ID, c.Name))
}

func EmployeeEntry(e domain.Employee) Entry {
	return EmployeeRef{ID: e.ID, Name: e.Name.String()}
}

func AssignmentEntry(a domain.Assignment) Entry {
	employee := a.EmployeeID.String()
	if employee == "" {
		employee = "N/A"
	}
	return Label(fmt.Sprintf("Assignment #%s — %s:%s → Employee #%s", a.ID, a.WorkType, a.WorkID, employee))
}

func CallLogEntry(c domain.CallLogView) Entry {
	calledAt := c.CalledAt
	if calledAt == "" {
		calledAt = "-"
	}
	return Label(fmt.Sprintf("Call #%s — %s · %s · %s", c.ID, c.Name, c.Outcome, calledAt))
}

// Format maps records to entries in order.
func Format[T any](items []T, format func(T) Entry) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		out = append(out, format(it))
	}
	return out
}
