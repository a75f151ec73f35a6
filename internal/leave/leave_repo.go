package leave

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindBalance(ctx context.Context, employeeID, leaveTypeID int64) (*LeaveBalance, error)
	FindBalanceForUpdate(ctx context.Context, employeeID, leaveTypeID int64) (*LeaveBalance, error)
	DebitBalance(ctx context.Context, balanceID int64, days int) (bool, error)
	FindBalancesByEmployee(ctx context.Context, employeeID int64) ([]BalanceView, error)

	CreateApplication(ctx context.Context, a *LeaveApplication) error
	FindApplicationByID(ctx context.Context, id int64) (*ApplicationView, error)
	FindApplicationForUpdate(ctx context.Context, id int64) (*LeaveApplication, error)
	UpdateApplicationStatus(ctx context.Context, a *LeaveApplication) error
	ListApplications(ctx context.Context, q ListQuery) ([]ApplicationView, int64, error)
	FindApprovedInRange(ctx context.Context, from, to time.Time) ([]ApplicationView, error)

	CountByStatus(ctx context.Context, status Status) (int64, error)
	CountApprovedOverlapping(ctx context.Context, from, to time.Time) (int64, error)
	CountApprovedByLeaveType(ctx context.Context) ([]LeaveTypeCount, error)

	FindLeaveTypes(ctx context.Context) ([]LeaveType, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to tx; every statement then runs inside it.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindBalance(ctx context.Context, employeeID, leaveTypeID int64) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND leave_type_id = ?", employeeID, leaveTypeID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindBalanceForUpdate(ctx context.Context, employeeID, leaveTypeID int64) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND leave_type_id = ?", employeeID, leaveTypeID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DebitBalance never lets the balance go below zero. It reports false when the
// guard rejected the update.
func (r *repository) DebitBalance(ctx context.Context, balanceID int64, days int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("id = ? AND balance >= ?", balanceID, days).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", days),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindBalancesByEmployee(ctx context.Context, employeeID int64) ([]BalanceView, error) {
	var rows []BalanceView
	err := r.db.WithContext(ctx).
		Table("employee_leave_balances").
		Select(`employee_leave_balances.id,
			employee_leave_balances.leave_type_id,
			leave_types.name AS leave_type_name,
			employee_leave_balances.balance,
			leave_types.max_days`).
		Joins("LEFT JOIN leave_types ON leave_types.id = employee_leave_balances.leave_type_id").
		Where("employee_leave_balances.employee_id = ?", employeeID).
		Order("employee_leave_balances.leave_type_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CreateApplication(ctx context.Context, a *LeaveApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindApplicationByID(ctx context.Context, id int64) (*ApplicationView, error) {
	var v ApplicationView
	res := r.viewQuery(ctx).
		Where("leave_applications.id = ?", id).
		Limit(1).
		Scan(&v)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (r *repository) FindApplicationForUpdate(ctx context.Context, id int64) (*LeaveApplication, error) {
	var a LeaveApplication
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) UpdateApplicationStatus(ctx context.Context, a *LeaveApplication) error {
	res := r.db.WithContext(ctx).
		Model(a).
		Select("status", "approver_id", "balance_after", "updated_at").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListApplications(ctx context.Context, q ListQuery) ([]ApplicationView, int64, error) {
	var total int64
	err := applyListFilter(r.db.WithContext(ctx).Model(&LeaveApplication{}), q.Filter).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []ApplicationView{}, 0, nil
	}

	tx := applyListFilter(r.viewQuery(ctx), q.Filter).
		Order(clause.OrderByColumn{
			Column: clause.Column{Table: "leave_applications", Name: q.Sort.Column()},
			Desc:   q.Sort.Desc,
		})
	if q.Sort.Column() != "id" {
		tx = tx.Order("leave_applications.id DESC")
	}

	var views []ApplicationView
	err = tx.Limit(q.PageSize).Offset(q.Offset()).Scan(&views).Error
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// FindApprovedInRange returns approved leave overlapping [from, to).
func (r *repository) FindApprovedInRange(ctx context.Context, from, to time.Time) ([]ApplicationView, error) {
	var views []ApplicationView
	err := r.viewQuery(ctx).
		Where("leave_applications.status = ?", StatusApproved).
		Where("leave_applications.start_date < ? AND leave_applications.end_date >= ?", to, from).
		Order("leave_applications.start_date ASC").
		Order("leave_applications.id ASC").
		Scan(&views).Error
	return views, err
}

func (r *repository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&LeaveApplication{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

// CountApprovedOverlapping counts approved leave touching [from, to], both inclusive.
func (r *repository) CountApprovedOverlapping(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&LeaveApplication{}).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Count(&n).Error
	return n, err
}

func (r *repository) CountApprovedByLeaveType(ctx context.Context) ([]LeaveTypeCount, error) {
	var rows []LeaveTypeCount
	err := r.db.WithContext(ctx).
		Table("leave_applications").
		Select("leave_types.name AS leave_type_name, COUNT(leave_applications.id) AS count").
		Joins("LEFT JOIN leave_types ON leave_types.id = leave_applications.leave_type_id").
		Where("leave_applications.status = ?", StatusApproved).
		Group("leave_types.name").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) FindLeaveTypes(ctx context.Context) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}

// viewQuery selects applications with employee and leave type names. A missing
// employee or leave type leaves the name NULL.
const applicationViewColumns = "leave_applications.*, " +
	"employees.first_name || ' ' || employees.last_name AS employee_name, " +
	"leave_types.name AS leave_type_name"

func (r *repository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("leave_applications").
		Select(applicationViewColumns).
		Joins("LEFT JOIN employees ON employees.id = leave_applications.employee_id").
		Joins("LEFT JOIN leave_types ON leave_types.id = leave_applications.leave_type_id")
}

func applyListFilter(tx *gorm.DB, f ListFilter) *gorm.DB {
	if f.Status != nil {
		tx = tx.Where("leave_applications.status = ?", *f.Status)
	}
	if f.EmployeeID != nil {
		tx = tx.Where("leave_applications.employee_id = ?", *f.EmployeeID)
	}
	if f.LeaveTypeID != nil {
		tx = tx.Where("leave_applications.leave_type_id = ?", *f.LeaveTypeID)
	}
	if f.StartFrom != nil {
		tx = tx.Where("leave_applications.start_date >= ?", *f.StartFrom)
	}
	if f.EndBefore != nil {
		tx = tx.Where("leave_applications.end_date < ?", *f.EndBefore)
	}
	return tx
}
