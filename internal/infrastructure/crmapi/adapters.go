package crmapi

import (
	"fmt"
	"math"
	"strings"
	"time"

	"CRMDashboard/internal/domain"
)

// wireAssignment carries every field name the assignment serializers have
// used. Precedence is resolved in toDomain.
type wireAssignment struct {
	ID              domain.Number `json:"id"`
	EmployeeIDCamel domain.Number `json:"employeeId"`
	Employee        domain.Number `json:"employee"`
	EmployeeID      domain.Number `json:"employee_id"`
	WorkTypeCamel   *domain.Text  `json:"workType"`
	WorkType        *domain.Text  `json:"work_type"`
	WorkIDCamel     domain.Number `json:"workId"`
	WorkID          domain.Number `json:"work_id"`
	Work            domain.Number `json:"work"`
	AssignedAt      domain.Text   `json:"assigned_at"`
	Notes           domain.Text   `json:"notes"`
}

// toDomain resolves employeeId > employee > employee_id, workType >
// work_type and workId > work_id > work. A field counts when it is present
// and not null.
func (w wireAssignment) toDomain() domain.Assignment {
	a := domain.Assignment{
		ID:         w.ID,
		EmployeeID: firstSet(w.EmployeeIDCamel, w.Employee, w.EmployeeID),
		WorkID:     firstSet(w.WorkIDCamel, w.WorkID, w.Work),
		AssignedAt: w.AssignedAt,
		Notes:      w.Notes,
	}
	switch {
	case w.WorkTypeCamel != nil:
		a.WorkType = w.WorkTypeCamel.String()
	case w.WorkType != nil:
		a.WorkType = w.WorkType.String()
	}
	return a
}

func adaptAssignments(wires []wireAssignment) []domain.Assignment {
	out := make([]domain.Assignment, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toDomain())
	}
	return out
}

func firstSet(values ...domain.Number) domain.Number {
	for _, v := range values {
		if v.IsSet() {
			return v
		}
	}
	return domain.Number{}
}

func firstNonEmpty(fallback string, values ...domain.Text) string {
	for _, v := range values {
		if v != "" {
			return v.String()
		}
	}
	return fallback
}

// NormalizeCallLogs builds display rows, resolving assignee names against
// employees.
func NormalizeCallLogs(calls []domain.CallLog, employees []domain.Employee) []domain.CallLogView {
	names := make(map[float64]string, len(employees))
	for _, e := range employees {
		if key, ok := e.ID.Key(); ok {
			if _, seen := names[key]; !seen {
				names[key] = e.Name.String()
			}
		}
	}

	out := make([]domain.CallLogView, 0, len(calls))
	for _, c := range calls {
		out = append(out, normalizeCallLog(c, names))
	}
	return out
}

func normalizeCallLog(c domain.CallLog, names map[float64]string) domain.CallLogView {
	assigned := c.AssignedDisplay.String()
	if assigned == "" {
		assigned = employeeName(c.Assigned.Or(c.AssignedTo), names)
	}

	return domain.CallLogView{
		ID:       c.ID,
		Name:     firstNonEmpty("Unknown", c.Name, c.LeadName, c.ClientName, c.LeadDisplay, c.ClientDisplay),
		Phone:    firstNonEmpty("-", c.Phone, c.PhoneNumber, c.Mobile, c.ToNumber, c.FromNumber, c.CallerPhone),
		Outcome:  outcomeDisplay(c.Outcome.String()),
		Duration: durationDisplay(c.DurationSeconds),
		CalledAt: timeDisplay(firstNonEmpty("", c.CalledAt, c.StartTime, c.CallTime, c.CreatedAt)),
		Assigned: assigned,
		FollowUp: c.FollowUp.Bool(),
		Raw:      c,
	}
}

func employeeName(id domain.Number, names map[float64]string) string {
	if id.String() == "" {
		return "-"
	}
	if key, ok := id.Key(); ok {
		if name, found := names[key]; found {
			return name
		}
	}
	return id.String()
}

func outcomeDisplay(outcome string) string {
	if outcome == "" {
		return "-"
	}
	return strings.Replace(outcome, "_", " ", 1)
}

// durationDisplay renders mm:ss, or hh:mm:ss from one hour on. Only bare
// JSON numbers are formatted; fractions are truncated.
func durationDisplay(n domain.Number) string {
	if !n.IsLiteral() || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return "-"
	}

	total := int64(n.Value)
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

var callTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeDisplay shortens known timestamp layouts and keeps anything else as sent.
func timeDisplay(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range callTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02 15:04")
		}
	}
	return value
}
