package board

import (
	"fmt"

	"CRMDashboard/internal/domain"
)

// Metric is one dashboard card: how to count a snapshot collection,
// bucket it, and format a bucket for drill-down.
type Metric interface {
	Key() string
	Title() string
	Description() string
	Count(s domain.Snapshot) int
	Counts(s domain.Snapshot) Counts
	Entries(s domain.Snapshot, c Color) []Entry
}

type metric[T any] struct {
	key, title, desc string
	items            func(domain.Snapshot) []T
	classify         func(domain.Snapshot) Buckets[T]
	format           func(T) Entry
}

func (m metric[T]) Key() string         { return m.key }
func (m metric[T]) Title() string       { return m.title }
func (m metric[T]) Description() string { return m.desc }

func (m metric[T]) Count(s domain.Snapshot) int {
	return len(m.items(s))
}

func (m metric[T]) Counts(s domain.Snapshot) Counts {
	if m.classify == nil {
		return Counts{}
	}
	return m.classify(s).Counts()
}

func (m metric[T]) Entries(s domain.Snapshot, c Color) []Entry {
	if m.classify == nil || m.format == nil {
		return []Entry{}
	}
	return Format(m.classify(s).List(c), m.format)
}

// Registry keeps metrics by key in registration order.
type Registry struct {
	metrics map[string]Metric
	order   []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{metrics: map[string]Metric{}}
}

// DefaultRegistry registers every card of the dashboard.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(metric[domain.Employee]{
		key: "employees", title: "Employees", desc: "Manage employees and roles",
		items:    func(s domain.Snapshot) []domain.Employee { return s.Employees },
		classify: func(s domain.Snapshot) Buckets[domain.Employee] { return Employees(s.Employees) },
		format:   EmployeeEntry,
	})
	r.Register(metric[domain.Lead]{
		key: "leads", title: "Leads", desc: "Active leads in funnel",
		items:    func(s domain.Snapshot) []domain.Lead { return s.Leads },
		classify: func(s domain.Snapshot) Buckets[domain.Lead] { return Leads(s.Leads) },
		format:   LeadEntry,
	})
	r.Register(metric[domain.Client]{
		key: "clients", title: "Clients", desc: "Current clients",
		items:    func(s domain.Snapshot) []domain.Client { return s.Clients },
		classify: func(s domain.Snapshot) Buckets[domain.Client] { return Clients(s.Clients) },
		format:   ClientEntry,
	})
	r.Register(metric[domain.Project]{
		key: "projects", title: "Projects", desc: "Ongoing work",
		items:    func(s domain.Snapshot) []domain.Project { return s.Projects },
		classify: func(s domain.Snapshot) Buckets[domain.Project] { return Projects(s.Projects) },
		format:   ProjectEntry,
	})
	r.Register(metric[domain.Assignment]{
		key: "assignments", title: "Assignments", desc: "Work assigned to employees",
		items: func(s domain.Snapshot) []domain.Assignment { return s.Assignments },
		classify: func(s domain.Snapshot) Buckets[domain.Assignment] {
			return Assignments(s.Assignments, s.Projects, s.Leads)
		},
		format: AssignmentEntry,
	})
	r.Register(metric[domain.CallLogView]{
		key: "calllogs", title: "Call logs", desc: "Recent calls",
		items:    func(s domain.Snapshot) []domain.CallLogView { return s.CallLogs },
		classify: func(s domain.Snapshot) Buckets[domain.CallLogView] { return CallLogs(s.CallLogs) },
		format:   CallLogEntry,
	})
	r.Register(metric[domain.FollowUp]{
		key: "followups", title: "Follow ups", desc: "Pending follow ups",
		items: func(s domain.Snapshot) []domain.FollowUp { return s.FollowUps },
	})
	r.Register(metric[domain.TrackingEntry]{
		key: "tracking", title: "Tracking", desc: "Real-time tracking",
		items: func(s domain.Snapshot) []domain.TrackingEntry { return s.Tracking },
	})
	return r
}

// Register adds or replaces a metric implementation.
func (r *Registry) Register(m Metric) {
	if r.metrics == nil {
		r.metrics = map[string]Metric{}
	}
	if _, exists := r.metrics[m.Key()]; !exists {
		r.order = append(r.order, m.Key())
	}
	r.metrics[m.Key()] = m
}

// Resolve returns a metric by key or an error if it is absent.
func (r *Registry) Resolve(key string) (Metric, error) {
	if m, ok := r.metrics[key]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, key)
}

// Keys lists metric keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}
