package leave

import (
	"errors"
	"strings"

	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	constraintBalanceEmployeeType = "uq_leave_balance_employee_type"
	constraintBalanceNonNegative  = "chk_leave_balance_non_negative"
)

// mapRepositoryError turns storage errors into leave errors. notFound is returned
// for gorm.ErrRecordNotFound so callers pick the right entity.
func mapRepositoryError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if pgErr.ConstraintName == constraintBalanceEmployeeType {
				return leaveerrors.ErrDuplicateLeaveBalance
			}
		case "23514":
			if pgErr.ConstraintName == constraintBalanceNonNegative {
				return leaveerrors.ErrInsufficientBalance
			}
		case "23503":
			if strings.Contains(pgErr.ConstraintName, "leave_type") {
				return leaveerrors.ErrLeaveTypeNotFound
			}
		}
	}

	return apperror.Internal(err)
}
