package tickets

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrNotFound         = errors.New("ticket not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidCategory  = errors.New("invalid ticket category")
	ErrInvalidUrgency   = errors.New("invalid ticket urgency")
	ErrInvalidStatus    = errors.New("invalid ticket status")
	ErrTitleRequired    = errors.New("ticket title required")
	ErrResponseRequired = errors.New("resolution response required")
)

func Normalize(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Urgency = strings.ToLower(strings.TrimSpace(in.Urgency))
	if in.Title == "" {
		return in, ErrTitleRequired
	}
	if in.Category == "" {
		in.Category = CategoryOther
	}
	if in.Urgency == "" {
		in.Urgency = UrgencyMedium
	}
	if !slices.Contains(Categories, in.Category) {
		return in, ErrInvalidCategory
	}
	if !slices.Contains(Urgencies, in.Urgency) {
		return in, ErrInvalidUrgency
	}
	return in, nil
}

func ValidStatus(status string) bool {
	return slices.Contains(Statuses, status)
}

// CanTransition reports whether a ticket may move from one status to another.
// Tickets only move forward.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusInReview || to == StatusResolved
	case StatusInReview:
		return to == StatusResolved
	default:
		return false
	}
}

func ComputeStats(list []Ticket) Stats {
	stats := Stats{Total: len(list)}
	for _, t := range list {
		switch t.Status {
		case StatusPending:
			stats.Pending++
		case StatusInReview:
			stats.InReview++
		case StatusResolved:
			stats.Resolved++
		}
		if t.Urgency == UrgencyCritical && t.Status != StatusResolved {
			stats.CriticalOpen++
		}
	}
	return stats
}

// Critical returns up to n unresolved high or critical tickets, most urgent
// first and newest first within an urgency.
func Critical(list []Ticket, n int) []Ticket {
	out := []Ticket{}
	for i := len(list) - 1; i >= 0; i-- {
		t := list[i]
		if t.Status != StatusResolved && (t.Urgency == UrgencyHigh || t.Urgency == UrgencyCritical) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b Ticket) int {
		if d := slices.Index(Urgencies, b.Urgency) - slices.Index(Urgencies, a.Urgency); d != 0 {
			return d
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
