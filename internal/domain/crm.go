package domain

import "time"

// Lead is a sales prospect as returned by the CRM API.
type Lead struct {
	ID       Number `json:"id"`
	Name     Text   `json:"name"`
	Status   Text   `json:"status"`
	Phone    Text   `json:"phone,omitempty"`
	Source   Text   `json:"source,omitempty"`
	Assigned Number `json:"assigned"`
}

// Lead statuses known to the backend. Matching is case-insensitive.
const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadQualified = "qualified"
	LeadLost      = "lost"
	LeadConverted = "converted"
	LeadWon       = "won"
)

// Client is a converted customer; only the assignment matters for status.
type Client struct {
	ID       Number `json:"id"`
	Name     Text   `json:"name"`
	Industry Text   `json:"industry,omitempty"`
	Assigned Number `json:"assigned"`
}

// Employee is a staff member that work can be assigned to.
type Employee struct {
	ID     Number `json:"id"`
	Name   Text   `json:"name"`
	Role   Text   `json:"role,omitempty"`
	Email  Text   `json:"email,omitempty"`
	Status Text   `json:"status,omitempty"`
}

// Project is client work tracked by completion percentage.
type Project struct {
	ID              Number `json:"id"`
	Title           Text   `json:"title"`
	Client          Number `json:"client"`
	Progress        Number `json:"progress"`
	ProgressPercent Number `json:"progress_percent"`
	SubmissionDate  Text   `json:"submission_date,omitempty"`
}

// Assignment links an employee to a work item in another collection.
type Assignment struct {
	ID         Number `json:"id"`
	EmployeeID Number `json:"employee_id"`
	WorkType   string `json:"work_type"`
	WorkID     Number `json:"work_id"`
	AssignedAt Text   `json:"assigned_at,omitempty"`
	Notes      Text   `json:"notes,omitempty"`
}

// Assignment work types accepted by the backend.
const (
	WorkLead       = "lead"
	WorkLeads      = "leads"
	WorkClient     = "client"
	WorkProject    = "project"
	WorkInvoice    = "invoice"
	WorkAssignment = "assignment"
)

// CallLog is the raw call record exactly as the API sent it, including
// the alternative field names older serializers used.
type CallLog struct {
	ID              Number `json:"id"`
	Name            Text   `json:"name,omitempty"`
	LeadName        Text   `json:"lead_name,omitempty"`
	ClientName      Text   `json:"client_name,omitempty"`
	LeadDisplay     Text   `json:"lead_display,omitempty"`
	ClientDisplay   Text   `json:"client_display,omitempty"`
	Phone           Text   `json:"phone,omitempty"`
	PhoneNumber     Text   `json:"phone_number,omitempty"`
	Mobile          Text   `json:"mobile,omitempty"`
	ToNumber        Text   `json:"to_number,omitempty"`
	FromNumber      Text   `json:"from_number,omitempty"`
	CallerPhone     Text   `json:"caller_phone,omitempty"`
	CallType        Text   `json:"call_type,omitempty"`
	Outcome         Text   `json:"outcome"`
	CalledAt        Text   `json:"called_at,omitempty"`
	StartTime       Text   `json:"start_time,omitempty"`
	CallTime        Text   `json:"call_time,omitempty"`
	CreatedAt       Text   `json:"created_at,omitempty"`
	DurationSeconds Number `json:"duration_seconds"`
	FollowUp        Flag   `json:"follow_up"`
	Notes           Text   `json:"notes,omitempty"`
	Assigned        Number `json:"assigned"`
	AssignedTo      Number `json:"assigned_to"`
	AssignedDisplay Text   `json:"assigned_display,omitempty"`
}

// Call outcomes.
const (
	OutcomeConnected = "connected"
	OutcomeVoicemail = "voicemail"
	OutcomeNoAnswer  = "no_answer"
	OutcomeBusy      = "busy"
	OutcomeOther     = "other"
)

// CallLogView is the display-ready call record. Raw keeps the original so
// rules can look at fields the view reformats.
type CallLogView struct {
	ID       Number  `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Outcome  string  `json:"outcome"`
	Duration string  `json:"duration"`
	CalledAt string  `json:"called_at"`
	Assigned string  `json:"assigned"`
	FollowUp bool    `json:"follow_up"`
	Raw      CallLog `json:"raw"`
}

// FollowUp is a scheduled touchpoint on a lead or client.
type FollowUp struct {
	ID          Number `json:"id"`
	LinkedID    Number `json:"linked_id"`
	LinkedName  Text   `json:"linked_name,omitempty"`
	DateTime    Text   `json:"date_time,omitempty"`
	Purpose     Text   `json:"purpose,omitempty"`
	Status      Text   `json:"status"`
	AssignedTo  Number `json:"assigned_to"`
	CreatedAt   Text   `json:"created_at,omitempty"`
	CompletedAt Text   `json:"completed_at,omitempty"`
}

// TrackingEntry is a monthly finance row from the tracking collection.
type TrackingEntry struct {
	ID              Number `json:"id"`
	Month           Text   `json:"month"`
	TotalRevenue    Number `json:"total_revenue"`
	EmployeesActive Number `json:"employees_active"`
	Receivables     Number `json:"receivables"`
	CashBalance     Number `json:"cash_balance"`
}

// Task is an item on the tracking page task list.
type Task struct {
	ID       Number `json:"id"`
	Title    Text   `json:"title"`
	Owner    Text   `json:"owner"`
	Priority Text   `json:"priority"`
	Due      Text   `json:"due"`
	Progress Number `json:"progress"`
	Status   Text   `json:"status"`
	Notes    Text   `json:"notes,omitempty"`
}

// WorkGiven is one entry of an employee's work history.
type WorkGiven struct {
	ID             Number `json:"id"`
	Employee       Number `json:"employee"`
	Title          Text   `json:"title"`
	Description    Text   `json:"description,omitempty"`
	SubmissionDate Text   `json:"submission_date"`
	GivenOn        Text   `json:"given_on,omitempty"`
	Priority       Text   `json:"priority"`
	Status         Text   `json:"status"`
}

// TrackingSummary holds the KPI tiles of the tracking page.
type TrackingSummary struct {
	TotalRevenue        Text   `json:"total_revenue"`
	TotalRevenuePercent Number `json:"total_revenue_percent"`
	EmployeesActive     Number `json:"employees_active"`
	EmployeesPending    Number `json:"employees_pending"`
	Receivables         Text   `json:"receivables"`
	ReceivablesNote     Text   `json:"receivables_note"`
	CashBalance         Text   `json:"cash_balance"`
	CashNote            Text   `json:"cash_note"`
}

// Snapshot is one complete fetch of every collection the dashboard reads.
// It is replaced wholesale on the next fetch.
type Snapshot struct {
	Employees   []Employee      `json:"employees"`
	Clients     []Client        `json:"clients"`
	Leads       []Lead          `json:"leads"`
	Projects    []Project       `json:"projects"`
	Assignments []Assignment    `json:"assignments"`
	CallLogs    []CallLogView   `json:"call_logs"`
	FollowUps   []FollowUp      `json:"follow_ups"`
	Tracking    []TrackingEntry `json:"tracking"`
	Tasks       []Task          `json:"tasks"`
	Failed      []string        `json:"failed,omitempty"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// DefaultTrackingSummary is shown until the backend reports its own KPIs.
func DefaultTrackingSummary() TrackingSummary {
	return TrackingSummary{
		TotalRevenue:        "₹ 8.9 L",
		TotalRevenuePercent: Num(58),
		EmployeesActive:     Num(12),
		EmployeesPending:    Num(31),
		Receivables:         "₹1,20,450",
		ReceivablesNote:     "Current / Overdue",
		CashBalance:         "₹2,34,000",
		CashNote:            "Available",
	}
}
