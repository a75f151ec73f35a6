package leaveerrors

import (
	"net/http"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"
)

// Validation
var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"employee_id must be a positive integer",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type_id must be a positive integer",
		http.StatusBadRequest,
	)
	ErrInvalidApplicationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave application id",
		http.StatusBadRequest,
	)
	ErrInvalidApproverID = apperror.New(
		apperror.CodeInvalidInput,
		"approver_id must be a positive integer",
		http.StatusBadRequest,
	)
	ErrStartDateRequired = apperror.New(
		apperror.CodeInvalidInput,
		"start_date is required",
		http.StatusBadRequest,
	)
	ErrEndDateRequired = apperror.New(
		apperror.CodeInvalidInput,
		"end_date is required",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidDecisionStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be APPROVED or REJECTED",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave status",
		http.StatusBadRequest,
	)
	ErrInvalidSortField = apperror.New(
		apperror.CodeInvalidInput,
		"unsupported sort field",
		http.StatusBadRequest,
	)
	ErrInvalidSortOrder = apperror.New(
		apperror.CodeInvalidInput,
		"sort order must be ASC or DESC",
		http.StatusBadRequest,
	)
	ErrInvalidPagination = apperror.New(
		apperror.CodeInvalidInput,
		"page and page_size must be integers",
		http.StatusBadRequest,
	)
)

// Not found
var (
	ErrLeaveApplicationNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave application not found",
		http.StatusNotFound,
	)
	ErrLeaveBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found for this employee and leave type",
		http.StatusNotFound,
	)
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
)

// Business rules
var (
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave status transition",
		http.StatusConflict,
	)
	ErrNotApplicationOwner = apperror.New(
		apperror.CodeForbidden,
		"only the applicant can cancel this leave application",
		http.StatusForbidden,
	)
	ErrDuplicateLeaveBalance = apperror.New(
		apperror.CodeConflict,
		"leave balance already exists for this employee and leave type",
		http.StatusConflict,
	)
)

// Integrity
var (
	ErrBalanceMissingAtApproval = apperror.New(
		apperror.CodeInternalError,
		"leave balance disappeared before approval",
		http.StatusInternalServerError,
	)
)
