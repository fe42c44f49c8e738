package tickets

import "time"

const (
	CategoryTechnical = "technical"
	CategoryHR        = "hr"
	CategoryEquipment = "equipment"
	CategoryWorkplace = "workplace"
	CategoryOther     = "other"
)

const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

const (
	StatusPending  = "pending"
	StatusInReview = "in-review"
	StatusResolved = "resolved"
)

var (
	Categories = []string{CategoryTechnical, CategoryHR, CategoryEquipment, CategoryWorkplace, CategoryOther}
	Urgencies  = []string{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}
	Statuses   = []string{StatusPending, StatusInReview, StatusResolved}
)

type Ticket struct {
	ID          string     `json:"id"`
	OwnerEmail  string     `json:"ownerEmail"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Urgency     string     `json:"urgency"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	Response    string     `json:"response,omitempty"`
}

type Input struct {
	Title       string
	Description string
	Category    string
	Urgency     string
}

type Filter struct {
	OwnerEmail string
	Status     string
	Limit      int
	Offset     int
}

type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	InReview int `json:"inReview"`
	Resolved int `json:"resolved"`
	// CriticalOpen counts unresolved tickets with critical urgency.
	CriticalOpen int `json:"criticalOpen"`
}
