package leave

import "time"

type ApplyLeaveRequest struct {
	LeaveTypeID int64   `json:"leave_type_id" binding:"required,gt=0"`
	StartDate   string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason      *string `json:"reason" binding:"omitempty,max=1000"`
}

type UpdateLeaveStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// ListLeaveParams are the raw query parameters of the list endpoint.
type ListLeaveParams struct {
	Status      string `form:"status"`
	EmployeeID  string `form:"employee_id"`
	LeaveTypeID string `form:"leave_type_id"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	Page        string `form:"page"`
	PageSize    string `form:"page_size"`
	SortBy      string `form:"sort_by"`
	SortOrder   string `form:"sort_order"`
}

type CalendarParams struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

type LeaveApplicationResponse struct {
	ID            int64   `json:"id"`
	EmployeeID    int64   `json:"employee_id"`
	EmployeeName  *string `json:"employee_name"`
	LeaveTypeID   int64   `json:"leave_type_id"`
	LeaveTypeName *string `json:"leave_type_name"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalDays     int     `json:"total_days"`
	Status        Status  `json:"status"`
	ApproverID    *int64  `json:"approver_id"`
	Reason        *string `json:"reason"`
	BalanceAfter  *int    `json:"balance_after"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type LeaveBalanceResponse struct {
	ID            int64   `json:"id"`
	LeaveTypeID   int64   `json:"leave_type_id"`
	LeaveTypeName *string `json:"leave_type_name"`
	Balance       int     `json:"balance"`
	MaxDays       *int    `json:"max_days"`
}

type LeaveTypeResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	MaxDays     int     `json:"max_days"`
}

type LeaveTypeCountResponse struct {
	LeaveTypeName *string `json:"leave_type_name"`
	Count         int64   `json:"count"`
}

type LeaveStatisticsResponse struct {
	PendingApplications   int64                    `json:"pending_applications"`
	ApprovedThisMonth     int64                    `json:"approved_this_month"`
	LeaveTypeDistribution []LeaveTypeCountResponse `json:"leave_type_distribution"`
}

type ListLeaveResponse struct {
	Items      []LeaveApplicationResponse `json:"items"`
	TotalCount int64                      `json:"total_count"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	PageCount  int                        `json:"page_count"`
}

func mapToResponse(v ApplicationView) LeaveApplicationResponse {
	a := v.LeaveApplication
	return LeaveApplicationResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		EmployeeName:  v.EmployeeName,
		LeaveTypeID:   a.LeaveTypeID,
		LeaveTypeName: v.LeaveTypeName,
		StartDate:     a.StartDate.Format(dateLayout),
		EndDate:       a.EndDate.Format(dateLayout),
		TotalDays:     a.DayCount(),
		Status:        a.Status,
		ApproverID:    a.ApproverID,
		Reason:        a.Reason,
		BalanceAfter:  a.BalanceAfter,
		CreatedAt:     formatTimestamp(a.CreatedAt),
		UpdatedAt:     formatTimestamp(a.UpdatedAt),
	}
}

func mapApplicationToResponse(a LeaveApplication) LeaveApplicationResponse {
	return mapToResponse(ApplicationView{LeaveApplication: a})
}

func mapToListResponse(views []ApplicationView) []LeaveApplicationResponse {
	resp := make([]LeaveApplicationResponse, len(views))
	for i, v := range views {
		resp[i] = mapToResponse(v)
	}
	return resp
}

func mapBalancesToResponse(rows []BalanceView) []LeaveBalanceResponse {
	resp := make([]LeaveBalanceResponse, len(rows))
	for i, b := range rows {
		resp[i] = LeaveBalanceResponse{
			ID:            b.ID,
			LeaveTypeID:   b.LeaveTypeID,
			LeaveTypeName: b.LeaveTypeName,
			Balance:       b.Balance,
			MaxDays:       b.MaxDays,
		}
	}
	return resp
}

func mapStatisticsToResponse(s Statistics) LeaveStatisticsResponse {
	dist := make([]LeaveTypeCountResponse, len(s.LeaveTypeDistribution))
	for i, d := range s.LeaveTypeDistribution {
		dist[i] = LeaveTypeCountResponse{LeaveTypeName: d.LeaveTypeName, Count: d.Count}
	}
	return LeaveStatisticsResponse{
		PendingApplications:   s.PendingApplications,
		ApprovedThisMonth:     s.ApprovedThisMonth,
		LeaveTypeDistribution: dist,
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
