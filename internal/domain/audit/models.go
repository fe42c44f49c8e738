package audit

import (
	"encoding/json"
	"time"
)

const (
	ActionLogin         = "auth.login"
	ActionLogout        = "auth.logout"
	ActionLeaveApply    = "leave.apply"
	ActionLeaveApprove  = "leave.approve"
	ActionLeaveReject   = "leave.reject"
	ActionLeaveWithdraw = "leave.withdraw"
	ActionTicketCreate  = "ticket.create"
	ActionTicketReview  = "ticket.review"
	ActionTicketResolve = "ticket.resolve"
)

const (
	EntitySession = "session"
	EntityLeave   = "leave"
	EntityTicket  = "ticket"
)

type Event struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	Actor      string
	Limit      int
	Offset     int
}
