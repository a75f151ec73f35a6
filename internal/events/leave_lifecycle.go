package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	LeaveApplied   = "leave_applied"
	LeaveApproved  = "leave_approved"
	LeaveRejected  = "leave_rejected"
	LeaveCancelled = "leave_cancelled"
)

const LeaveAggregateType = "leave_application"

type LeaveLifecycleEvent struct {
	EventType     string    `json:"event_type"`
	ApplicationID int64     `json:"application_id"`
	EmployeeID    int64     `json:"employee_id"`
	LeaveTypeID   int64     `json:"leave_type_id"`
	FromStatus    string    `json:"from_status,omitempty"`
	ToStatus      string    `json:"to_status"`
	ActorID       int64     `json:"actor_id"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	DayCount      int       `json:"day_count"`
	BalanceAfter  *int      `json:"balance_after,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
