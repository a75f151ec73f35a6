package leave

import (
	"time"
)

// LeaveType is reference data maintained by administrators.
type LeaveType struct {
	ID          int64   `gorm:"primaryKey"`
	Name        string  `gorm:"type:varchar(50);not null;uniqueIndex:uq_leave_types_name"`
	Description *string `gorm:"type:text"`
	MaxDays     int     `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// LeaveBalance is the ledger row for one (employee, leave type) pair.
type LeaveBalance struct {
	ID          int64 `gorm:"primaryKey"`
	EmployeeID  int64 `gorm:"not null;uniqueIndex:uq_leave_balance_employee_type,priority:1"`
	LeaveTypeID int64 `gorm:"not null;uniqueIndex:uq_leave_balance_employee_type,priority:2"`
	Balance     int   `gorm:"not null;default:0;check:chk_leave_balance_non_negative,balance >= 0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	LeaveType *LeaveType `gorm:"foreignKey:LeaveTypeID"`
}

func (LeaveBalance) TableName() string {
	return "employee_leave_balances"
}

type LeaveApplication struct {
	ID           int64     `gorm:"primaryKey"`
	EmployeeID   int64     `gorm:"not null;index:idx_leave_applications_employee"`
	LeaveTypeID  int64     `gorm:"not null;index:idx_leave_applications_type"`
	StartDate    time.Time `gorm:"type:date;not null;index:idx_leave_applications_dates,priority:1"`
	EndDate      time.Time `gorm:"type:date;not null;index:idx_leave_applications_dates,priority:2"`
	Status       Status    `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_applications_status"`
	ApproverID   *int64
	Reason       *string `gorm:"type:text"`
	BalanceAfter *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (LeaveApplication) TableName() string {
	return "leave_applications"
}

// DayCount is the inclusive number of leave days the application covers.
func (a LeaveApplication) DayCount() int {
	return DayCount(a.StartDate, a.EndDate)
}

// ApplicationView is a LeaveApplication with display names joined in.
// Names are nil when the referenced employee or leave type is missing.
type ApplicationView struct {
	LeaveApplication `gorm:"embedded"`
	EmployeeName     *string
	LeaveTypeName    *string
}

// BalanceView is a ledger row joined with its leave type for display.
type BalanceView struct {
	ID            int64
	LeaveTypeID   int64
	LeaveTypeName *string
	Balance       int
	MaxDays       *int
}

type LeaveTypeCount struct {
	LeaveTypeName *string
	Count         int64
}

type Statistics struct {
	PendingApplications   int64
	ApprovedThisMonth     int64
	LeaveTypeDistribution []LeaveTypeCount
}
