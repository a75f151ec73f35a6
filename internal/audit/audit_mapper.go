package audit

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/events"
)

type leaveSnapshot struct {
	Status       string `json:"status"`
	EmployeeID   int64  `json:"employee_id,omitempty"`
	LeaveTypeID  int64  `json:"leave_type_id,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	DayCount     int    `json:"day_count,omitempty"`
	ApproverID   int64  `json:"approver_id,omitempty"`
	BalanceAfter *int   `json:"balance_after,omitempty"`
}

// EntryFromLeaveEvent builds the audit row for one lifecycle event.
func EntryFromLeaveEvent(eventID string, ev events.LeaveLifecycleEvent) (Entry, error) {
	if eventID == "" {
		return Entry{}, errors.New("event id is required")
	}
	if ev.ApplicationID <= 0 {
		return Entry{}, fmt.Errorf("invalid application id %d", ev.ApplicationID)
	}

	action := ActionUpdate
	if ev.EventType == events.LeaveApplied {
		action = ActionCreate
	}

	next := leaveSnapshot{
		Status:       ev.ToStatus,
		EmployeeID:   ev.EmployeeID,
		LeaveTypeID:  ev.LeaveTypeID,
		StartDate:    ev.StartDate,
		EndDate:      ev.EndDate,
		DayCount:     ev.DayCount,
		BalanceAfter: ev.BalanceAfter,
	}
	if ev.EventType == events.LeaveApproved || ev.EventType == events.LeaveRejected {
		next.ApproverID = ev.ActorID
	}
	newValues, err := json.Marshal(next)
	if err != nil {
		return Entry{}, err
	}

	var oldValues []byte
	if ev.FromStatus != "" {
		if oldValues, err = json.Marshal(leaveSnapshot{Status: ev.FromStatus}); err != nil {
			return Entry{}, err
		}
	}

	return Entry{
		EventID:   eventID,
		ActorID:   ev.ActorID,
		Action:    action,
		Entity:    EntityLeaveApplications,
		EntityID:  ev.ApplicationID,
		OldValues: oldValues,
		NewValues: newValues,
		RequestID: ev.RequestID,
		CreatedAt: ev.OccurredAt.UTC(),
	}, nil
}
