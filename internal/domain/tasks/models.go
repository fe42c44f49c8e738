package tasks

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

var (
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	Statuses   = []string{StatusTodo, StatusInProgress, StatusCompleted}
)

type Task struct {
	ID          string    `json:"id"`
	OwnerEmail  string    `json:"ownerEmail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Input carries the editable fields of a task.
type Input struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    string
	Status      string
}

type Filter struct {
	OwnerEmail string
	Status     string
	Limit      int
	Offset     int
}

type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Todo       int `json:"todo"`
}
