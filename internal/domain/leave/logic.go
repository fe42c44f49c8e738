package leave

import (
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("leave not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrInvalidType   = errors.New("invalid leave type")
	ErrInvalidStatus = errors.New("invalid leave status")
	ErrInvalidRange  = errors.New("end date before start date")
	ErrDatesRequired = errors.New("leave dates required")
	ErrTooLong       = errors.New("leave spans more than a year")
)

// MaxDays bounds a single application.
const MaxDays = 366

const secondsPerDay = 24 * 60 * 60

// CalculateDays returns the inclusive calendar-day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	from := truncateDay(start).Unix() / secondsPerDay
	to := truncateDay(end).Unix() / secondsPerDay
	if to < from {
		return 0, ErrInvalidRange
	}
	return float64(to - from + 1), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize checks an application and returns it with its day count.
func Normalize(in Input) (Input, float64, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Type == "" {
		in.Type = TypeVacation
	}
	if !slices.Contains(Types, in.Type) {
		return in, 0, ErrInvalidType
	}
	if in.FromDate.IsZero() || in.ToDate.IsZero() {
		return in, 0, ErrDatesRequired
	}
	in.FromDate, in.ToDate = truncateDay(in.FromDate), truncateDay(in.ToDate)
	days, err := CalculateDays(in.FromDate, in.ToDate)
	if err != nil {
		return in, 0, err
	}
	if days > MaxDays {
		return in, 0, ErrTooLong
	}
	return in, days, nil
}

func ValidStatus(status string) bool {
	return slices.Contains(Statuses, status)
}

// ComputeBalance charges approved days against the allowance; pending days
// are reported but not deducted.
func ComputeBalance(list []Leave, allowance float64) Balance {
	balance := Balance{Total: allowance}
	for _, l := range list {
		switch l.Status {
		case StatusApproved:
			balance.Used += l.Days
		case StatusPending:
			balance.Pending += l.Days
		}
	}
	balance.Remaining = balance.Total - balance.Used
	return balance
}

func CountByStatus(list []Leave) StatusCounts {
	var counts StatusCounts
	for _, l := range list {
		switch l.Status {
		case StatusPending:
			counts.Pending++
		case StatusApproved:
			counts.Approved++
		case StatusRejected:
			counts.Rejected++
		}
	}
	return counts
}

// Newest returns up to n applications by applied date, newest first.
func Newest(list []Leave, n int) []Leave {
	out := slices.Clone(list)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Leave) int { return b.AppliedDate.Compare(a.AppliedDate) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
