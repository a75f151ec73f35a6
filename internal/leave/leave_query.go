package leave

import (
	"math"
	"strconv"
	"strings"
	"time"

	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"
)

// ListFilter predicates are ANDed; a nil field means no constraint.
type ListFilter struct {
	Status      *Status
	EmployeeID  *int64
	LeaveTypeID *int64
	StartFrom   *time.Time // start_date >= StartFrom
	EndBefore   *time.Time // end_date < EndBefore
}

// Sort can only be built from the allow-list below.
type Sort struct {
	column string
	Desc   bool
}

func (s Sort) Column() string {
	return s.column
}

var defaultSort = Sort{column: "created_at", Desc: true}

var sortableColumns = map[string]string{
	"id":            "id",
	"employeeid":    "employee_id",
	"employee_id":   "employee_id",
	"leavetypeid":   "leave_type_id",
	"leave_type_id": "leave_type_id",
	"startdate":     "start_date",
	"start_date":    "start_date",
	"enddate":       "end_date",
	"end_date":      "end_date",
	"status":        "status",
	"approverid":    "approver_id",
	"approver_id":   "approver_id",
	"balanceafter":  "balance_after",
	"balance_after": "balance_after",
	"createdat":     "created_at",
	"created_at":    "created_at",
	"updatedat":     "updated_at",
	"updated_at":    "updated_at",
}

// ParseSort defaults to created_at DESC when field is empty. An explicit field
// without an order sorts ascending.
func ParseSort(field, order string) (Sort, error) {
	field = strings.TrimSpace(field)
	order = strings.ToUpper(strings.TrimSpace(order))

	if field == "" {
		if order == "" {
			return defaultSort, nil
		}
		field = defaultSort.column
	}

	column, ok := sortableColumns[strings.ToLower(field)]
	if !ok {
		return Sort{}, leaveerrors.ErrInvalidSortField
	}

	switch order {
	case "", "ASC":
		return Sort{column: column}, nil
	case "DESC":
		return Sort{column: column, Desc: true}, nil
	default:
		return Sort{}, leaveerrors.ErrInvalidSortOrder
	}
}

type ListQuery struct {
	Filter   ListFilter
	Page     int
	PageSize int
	Sort     Sort
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type ListResult struct {
	Items      []ApplicationView
	TotalCount int64
	Page       int
	PageSize   int
	PageCount  int
}

func newListResult(items []ApplicationView, total int64, q ListQuery) ListResult {
	pageCount := 0
	if q.PageSize > 0 {
		pageCount = int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	}
	return ListResult{
		Items:      items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		PageCount:  pageCount,
	}
}

type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

var DefaultPageLimits = PageLimits{DefaultSize: 10, MaxSize: 100}

// ParseListQuery validates raw query parameters into a typed ListQuery.
func ParseListQuery(p ListLeaveParams, limits PageLimits) (ListQuery, error) {
	var q ListQuery

	if p.Status != "" {
		s, ok := ParseStatus(p.Status)
		if !ok {
			return ListQuery{}, leaveerrors.ErrInvalidStatusFilter
		}
		q.Filter.Status = &s
	}
	if p.EmployeeID != "" {
		id, err := parsePositiveID(p.EmployeeID)
		if err != nil {
			return ListQuery{}, leaveerrors.ErrInvalidEmployeeID
		}
		q.Filter.EmployeeID = &id
	}
	if p.LeaveTypeID != "" {
		id, err := parsePositiveID(p.LeaveTypeID)
		if err != nil {
			return ListQuery{}, leaveerrors.ErrInvalidLeaveTypeID
		}
		q.Filter.LeaveTypeID = &id
	}
	if p.StartDate != "" {
		t, err := parseDate(p.StartDate)
		if err != nil {
			return ListQuery{}, err
		}
		q.Filter.StartFrom = &t
	}
	if p.EndDate != "" {
		t, err := parseDate(p.EndDate)
		if err != nil {
			return ListQuery{}, err
		}
		q.Filter.EndBefore = &t
	}

	page, size, err := parsePage(p.Page, p.PageSize, limits)
	if err != nil {
		return ListQuery{}, err
	}
	q.Page, q.PageSize = page, size

	q.Sort, err = ParseSort(p.SortBy, p.SortOrder)
	if err != nil {
		return ListQuery{}, err
	}
	return q, nil
}

func parsePage(rawPage, rawSize string, limits PageLimits) (int, int, error) {
	page, size := 1, limits.DefaultSize
	var err error
	if rawPage != "" {
		if page, err = strconv.Atoi(rawPage); err != nil {
			return 0, 0, leaveerrors.ErrInvalidPagination
		}
	}
	if rawSize != "" {
		if size, err = strconv.Atoi(rawSize); err != nil {
			return 0, 0, leaveerrors.ErrInvalidPagination
		}
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = limits.DefaultSize
	}
	if size > limits.MaxSize {
		size = limits.MaxSize
	}
	// Offset is (page-1)*size and must fit in an int.
	if page-1 > math.MaxInt/size {
		return 0, 0, leaveerrors.ErrInvalidPagination
	}
	return page, size, nil
}

func parsePositiveID(v string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return 0, leaveerrors.ErrInvalidApplicationID
	}
	return id, nil
}
