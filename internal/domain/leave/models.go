package leave

import "time"

const (
	TypeVacation  = "vacation"
	TypeSick      = "sick"
	TypePersonal  = "personal"
	TypeMaternity = "maternity"
	TypeEmergency = "emergency"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	Types    = []string{TypeVacation, TypeSick, TypePersonal, TypeMaternity, TypeEmergency}
	Statuses = []string{StatusPending, StatusApproved, StatusRejected}
)

type Leave struct {
	ID          string     `json:"id"`
	OwnerEmail  string     `json:"ownerEmail"`
	Type        string     `json:"type"`
	FromDate    time.Time  `json:"fromDate"`
	ToDate      time.Time  `json:"toDate"`
	Days        float64    `json:"days"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	AppliedDate time.Time  `json:"appliedDate"`
	DecidedBy   string     `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}

type Input struct {
	Type     string
	FromDate time.Time
	ToDate   time.Time
	Reason   string
}

type Filter struct {
	OwnerEmail string
	Status     string
	Limit      int
	Offset     int
}

type Balance struct {
	Total     float64 `json:"total"`
	Used      float64 `json:"used"`
	Pending   float64 `json:"pending"`
	Remaining float64 `json:"remaining"`
}

type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
