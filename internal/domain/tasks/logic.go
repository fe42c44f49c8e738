package tasks

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrTitleRequired   = errors.New("task title required")
	ErrDueDateRequired = errors.New("task due date required")
)

// Normalize trims the input and applies the medium/todo defaults.
func Normalize(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))

	if in.Title == "" {
		return in, ErrTitleRequired
	}
	if in.DueDate.IsZero() {
		return in, ErrDueDateRequired
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !slices.Contains(Priorities, in.Priority) {
		return in, ErrInvalidPriority
	}
	if !ValidStatus(in.Status) {
		return in, ErrInvalidStatus
	}
	return in, nil
}

func ValidStatus(status string) bool {
	return slices.Contains(Statuses, status)
}

func ComputeStats(list []Task) Stats {
	stats := Stats{Total: len(list)}
	for _, task := range list {
		switch task.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusInProgress:
			stats.InProgress++
		case StatusTodo:
			stats.Todo++
		}
	}
	return stats
}

// Newest returns up to n tasks by creation time, newest first. n <= 0 keeps all.
func Newest(list []Task, n int) []Task {
	out := slices.Clone(list)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Task) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
