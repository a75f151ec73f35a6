package leave

import (
	"strings"
	"time"

	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

var allStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

// ParseStatus accepts any letter case and rejects values outside the closed set.
func ParseStatus(v string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	for _, known := range allStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// IsDecision reports whether s is an approver outcome.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo is the whole state machine: PENDING moves to any terminal state once.
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusPending && target.IsTerminal()
}

// transition is the only writer of Status, ApproverID and BalanceAfter.
func (a *LeaveApplication) transition(target Status, approverID *int64, balanceAfter *int, now time.Time) error {
	if !a.Status.CanTransitionTo(target) {
		return leaveerrors.ErrInvalidStatusTransition
	}

	switch target {
	case StatusApproved:
		if approverID == nil || balanceAfter == nil {
			return leaveerrors.ErrInvalidApproverID
		}
		a.ApproverID = approverID
		a.BalanceAfter = balanceAfter
	case StatusRejected:
		if approverID == nil {
			return leaveerrors.ErrInvalidApproverID
		}
		a.ApproverID = approverID
	}

	a.Status = target
	a.UpdatedAt = now
	return nil
}
