package board

import (
	"math"
	"strings"

	"CRMDashboard/internal/domain"
)

// LeadColor maps a lead status to its bucket. Unknown or missing statuses
// count as in progress.
func LeadColor(status string) Color {
	switch strings.ToLower(status) {
	case domain.LeadNew, domain.LeadLost:
		return Red
	case domain.LeadContacted, domain.LeadQualified:
		return Yellow
	case domain.LeadConverted, domain.LeadWon:
		return Green
	}
	return Yellow
}

// ProgressColor buckets a completion percentage: 0 and below (or NaN) is
// not started, 100 and above is done.
func ProgressColor(progress float64) Color {
	switch {
	case math.IsNaN(progress) || progress <= 0:
		return Red
	case progress < 100:
		return Yellow
	}
	return Green
}

// ProjectProgress reads progress, then progress_percent, then 0.
func ProjectProgress(p domain.Project) float64 {
	n := p.Progress.Or(p.ProgressPercent)
	if !n.IsSet() {
		return 0
	}
	return n.Value
}

// ProjectColor applies ProgressColor to ProjectProgress.
func ProjectColor(p domain.Project) Color {
	return ProgressColor(ProjectProgress(p))
}

// ClientColor is green when someone is assigned, red otherwise.
func ClientColor(c domain.Client) Color {
	if c.Assigned.IsSet() {
		return Green
	}
	return Red
}

// Leads partitions leads by status.
func Leads(leads []domain.Lead) Buckets[domain.Lead] {
	b := newBuckets[domain.Lead]()
	for _, l := range leads {
		b.put(LeadColor(l.Status.String()), l)
	}
	return b
}

// Projects partitions projects by progress.
func Projects(projects []domain.Project) Buckets[domain.Project] {
	b := newBuckets[domain.Project]()
	for _, p := range projects {
		b.put(ProjectColor(p), p)
	}
	return b
}

// Clients partitions clients by assignment; yellow stays empty.
func Clients(clients []domain.Client) Buckets[domain.Client] {
	b := newBuckets[domain.Client]()
	for _, c := range clients {
		b.put(ClientColor(c), c)
	}
	return b
}

// Employees puts every employee in green.
func Employees(employees []domain.Employee) Buckets[domain.Employee] {
	b := newBuckets[domain.Employee]()
	for _, e := range employees {
		b.put(Green, e)
	}
	return b
}

// Resolver looks up assignment targets by numeric id.
type Resolver struct {
	projects map[float64]domain.Project
	leads    map[float64]domain.Lead
}

// NewResolver indexes the collections; on duplicate ids the first record wins.
func NewResolver(projects []domain.Project, leads []domain.Lead) *Resolver {
	r := &Resolver{
		projects: make(map[float64]domain.Project, len(projects)),
		leads:    make(map[float64]domain.Lead, len(leads)),
	}
	for _, p := range projects {
		if key, ok := p.ID.Key(); ok {
			if _, seen := r.projects[key]; !seen {
				r.projects[key] = p
			}
		}
	}
	for _, l := range leads {
		if key, ok := l.ID.Key(); ok {
			if _, seen := r.leads[key]; !seen {
				r.leads[key] = l
			}
		}
	}
	return r
}

// Project resolves a project id.
func (r *Resolver) Project(id domain.Number) (domain.Project, bool) {
	key, ok := id.Key()
	if !ok {
		return domain.Project{}, false
	}
	p, found := r.projects[key]
	return p, found
}

// Lead resolves a lead id.
func (r *Resolver) Lead(id domain.Number) (domain.Lead, bool) {
	key, ok := id.Key()
	if !ok {
		return domain.Lead{}, false
	}
	l, found := r.leads[key]
	return l, found
}

// Color derives an assignment's bucket from the item it points at.
// Anything that cannot be resolved is in progress, never an error.
func (r *Resolver) Color(a domain.Assignment) Color {
	switch a.WorkType {
	case domain.WorkProject:
		p, ok := r.Project(a.WorkID)
		if !ok || !p.Progress.IsSet() {
			return Yellow
		}
		return ProgressColor(p.Progress.Value)
	case domain.WorkLead, domain.WorkLeads:
		l, ok := r.Lead(a.WorkID)
		if !ok {
			return Yellow
		}
		return LeadColor(l.Status.String())
	}
	return Yellow
}

// Assignments buckets assignments through their referenced work items.
// The lists hold the assignments themselves.
func Assignments(assignments []domain.Assignment, projects []domain.Project, leads []domain.Lead) Buckets[domain.Assignment] {
	r := NewResolver(projects, leads)
	b := newBuckets[domain.Assignment]()
	for _, a := range assignments {
		b.put(r.Color(a), a)
	}
	return b
}

// CallLogSummary is the exclusive tally shown in the call counters.
type CallLogSummary struct {
	Total     int `json:"total"`
	Missed    int `json:"missed"`
	Answered  int `json:"answered"`
	FollowUps int `json:"follow_ups"`
}

// IsMissed reports a no-answer or busy outcome.
func IsMissed(c domain.CallLogView) bool {
	o := c.Raw.Outcome.String()
	return o == domain.OutcomeNoAnswer || o == domain.OutcomeBusy
}

// IsCompleted reports a call that has a timestamp or a positive duration.
func IsCompleted(c domain.CallLogView) bool {
	return c.Raw.CalledAt != "" || c.Raw.DurationSeconds.Float() > 0
}

// SummarizeCallLogs counts answered as total minus missed.
func SummarizeCallLogs(calls []domain.CallLogView) CallLogSummary {
	s := CallLogSummary{Total: len(calls)}
	for _, c := range calls {
		if IsMissed(c) {
			s.Missed++
		}
		if c.FollowUp {
			s.FollowUps++
		}
	}
	s.Answered = s.Total - s.Missed
	return s
}

// CallLogs runs three independent filters, so one call can show up in
// several lists. The counts come from SummarizeCallLogs and are exclusive.
func CallLogs(calls []domain.CallLogView) Buckets[domain.CallLogView] {
	b := newBuckets[domain.CallLogView]()
	for _, c := range calls {
		if IsMissed(c) {
			b.RedList = append(b.RedList, c)
		}
		if c.FollowUp {
			b.YellowList = append(b.YellowList, c)
		}
		if IsCompleted(c) {
			b.GreenList = append(b.GreenList, c)
		}
	}

	s := SummarizeCallLogs(calls)
	b.Red, b.Yellow, b.Green = s.Missed, s.FollowUps, s.Answered
	return b
}
