package leave

import (
	"context"

	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"
)

// getBalance reads the ledger row without locking it.
func getBalance(ctx context.Context, repo Repository, employeeID, leaveTypeID int64) (*LeaveBalance, error) {
	bal, err := repo.FindBalance(ctx, employeeID, leaveTypeID)
	if err != nil {
		return nil, mapRepositoryError(err, leaveerrors.ErrLeaveBalanceNotFound)
	}
	return bal, nil
}

// debit subtracts days from the ledger row and returns the new balance. qtx must
// be bound to the transaction that also writes the application status: the row
// stays locked until that transaction ends.
func debit(ctx context.Context, qtx Repository, employeeID, leaveTypeID int64, days int) (int, error) {
	bal, err := qtx.FindBalanceForUpdate(ctx, employeeID, leaveTypeID)
	if err != nil {
		return 0, mapRepositoryError(err, leaveerrors.ErrBalanceMissingAtApproval)
	}
	if bal.Balance < days {
		return 0, leaveerrors.ErrInsufficientBalance
	}

	ok, err := qtx.DebitBalance(ctx, bal.ID, days)
	if err != nil {
		return 0, mapRepositoryError(err, leaveerrors.ErrBalanceMissingAtApproval)
	}
	if !ok {
		return 0, leaveerrors.ErrInsufficientBalance
	}
	return bal.Balance - days, nil
}

func listForEmployee(ctx context.Context, repo Repository, employeeID int64) ([]BalanceView, error) {
	rows, err := repo.FindBalancesByEmployee(ctx, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err, leaveerrors.ErrLeaveBalanceNotFound)
	}
	return rows, nil
}
