package leave_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave"
	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  *apiMeta        `json:"meta"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

type fakeLeaveService struct {
	applyFn        func(ctx context.Context, employeeID int64, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error)
	updateStatusFn func(ctx context.Context, id, approverID int64, req leave.UpdateLeaveStatusRequest) (leave.LeaveApplicationResponse, error)
	cancelFn       func(ctx context.Context, id, employeeID int64) (leave.LeaveApplicationResponse, error)
	balancesFn     func(ctx context.Context, employeeID int64) ([]leave.LeaveBalanceResponse, error)
	listFn         func(ctx context.Context, q leave.ListQuery) (leave.ListLeaveResponse, error)
	getByIDFn      func(ctx context.Context, id int64) (leave.LeaveApplicationResponse, error)
	statisticsFn   func(ctx context.Context) (leave.LeaveStatisticsResponse, error)
	upcomingFn     func(ctx context.Context, from, to string) ([]leave.LeaveApplicationResponse, error)
	leaveTypesFn   func(ctx context.Context) ([]leave.LeaveTypeResponse, error)
}

func (f *fakeLeaveService) Apply(ctx context.Context, employeeID int64, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
	return f.applyFn(ctx, employeeID, req)
}

func (f *fakeLeaveService) UpdateStatus(ctx context.Context, id, approverID int64, req leave.UpdateLeaveStatusRequest) (leave.LeaveApplicationResponse, error) {
	return f.updateStatusFn(ctx, id, approverID, req)
}

func (f *fakeLeaveService) Cancel(ctx context.Context, id, employeeID int64) (leave.LeaveApplicationResponse, error) {
	return f.cancelFn(ctx, id, employeeID)
}

func (f *fakeLeaveService) GetEmployeeBalances(ctx context.Context, employeeID int64) ([]leave.LeaveBalanceResponse, error) {
	return f.balancesFn(ctx, employeeID)
}

func (f *fakeLeaveService) List(ctx context.Context, q leave.ListQuery) (leave.ListLeaveResponse, error) {
	return f.listFn(ctx, q)
}

func (f *fakeLeaveService) GetByID(ctx context.Context, id int64) (leave.LeaveApplicationResponse, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeLeaveService) GetStatistics(ctx context.Context) (leave.LeaveStatisticsResponse, error) {
	return f.statisticsFn(ctx)
}

func (f *fakeLeaveService) GetUpcoming(ctx context.Context, from, to string) ([]leave.LeaveApplicationResponse, error) {
	return f.upcomingFn(ctx, from, to)
}

func (f *fakeLeaveService) ListLeaveTypes(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
	return f.leaveTypesFn(ctx)
}

func withEmployee(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("employee_id", id)
		c.Next()
	}
}

func newLeaveRouter(h *leave.Handler, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/leaves", append([]gin.HandlerFunc{withEmployee(7)}, mw...)...)
	g.POST("/apply", h.Apply)
	g.GET("/my-balances", h.MyBalances)
	g.GET("/types", h.LeaveTypes)
	g.GET("", h.List)
	g.GET("/statistics", h.Statistics)
	g.GET("/calendar", h.Calendar)
	g.GET("/:id", h.GetByID)
	g.PATCH("/:id/cancel", h.Cancel)
	g.PATCH("/:id/status", h.UpdateStatus)
	r.GET("/employees/:employeeId/leave-balances", h.EmployeeBalances)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Apply(t *testing.T) {
	svc := &fakeLeaveService{
		applyFn: func(ctx context.Context, employeeID int64, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
			assert.Equal(t, int64(7), employeeID)
			assert.Equal(t, int64(2), req.LeaveTypeID)
			assert.Equal(t, "2026-03-10", req.StartDate)
			return leave.LeaveApplicationResponse{ID: 1, EmployeeID: employeeID, Status: leave.StatusPending, TotalDays: 3}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	w := serve(r, http.MethodPost, "/leaves/apply", `{"leave_type_id":2,"start_date":"2026-03-10","end_date":"2026-03-12"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
	var data leave.LeaveApplicationResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, leave.StatusPending, data.Status)
	assert.Equal(t, 3, data.TotalDays)
}

func TestHandler_Apply_BindingError(t *testing.T) {
	svc := &fakeLeaveService{
		applyFn: func(ctx context.Context, employeeID int64, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
			t.Fatal("service must not be called")
			return leave.LeaveApplicationResponse{}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"leave_type_id":`},
		{"missing start date", `{"leave_type_id":2,"end_date":"2026-03-12"}`},
		{"bad date layout", `{"leave_type_id":2,"start_date":"10/03/2026","end_date":"2026-03-12"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/leaves/apply", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w.Body.Bytes())
			assert.False(t, env.Ok)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		})
	}
}

func TestHandler_Apply_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"insufficient balance", leaveerrors.ErrInsufficientBalance, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"},
		{"balance not found", leaveerrors.ErrLeaveBalanceNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"date range", leaveerrors.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeLeaveService{
				applyFn: func(ctx context.Context, employeeID int64, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
					return leave.LeaveApplicationResponse{}, tt.err
				},
			}
			r := newLeaveRouter(leave.NewHandler(svc))

			w := serve(r, http.MethodPost, "/leaves/apply", `{"leave_type_id":2,"start_date":"2026-03-10","end_date":"2026-03-12"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decodeEnvelope(t, w.Body.Bytes())
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}

func TestHandler_Apply_StoresIdempotentResponse(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	resp := leave.LeaveApplicationResponse{ID: 9, EmployeeID: 7, Status: leave.StatusPending, TotalDays: 1}
	payload, err := middleware.EncodeIdempotentResponse(http.StatusCreated, resp)
	require.NoError(t, err)

	svc := &fakeLeaveService{
		applyFn: func(ctx context.Context, employeeID int64, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
			return resp, nil
		},
	}
	keys := func(c *gin.Context) {
		c.Set(middleware.ContextIdempotencyCacheKey, "idemp:/leaves/apply:1:abc")
		c.Set(middleware.ContextIdempotencyLockKey, "idemp:/leaves/apply:1:abc:lock")
		c.Next()
	}
	r := newLeaveRouter(leave.NewHandlerWithRedis(svc, rdb, leave.DefaultPageLimits), keys)

	rmock.ExpectSet("idemp:/leaves/apply:1:abc", payload, 24*time.Hour).SetVal("OK")
	rmock.ExpectDel("idemp:/leaves/apply:1:abc:lock").SetVal(1)

	w := serve(r, http.MethodPost, "/leaves/apply", `{"leave_type_id":2,"start_date":"2026-03-10","end_date":"2026-03-10"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestHandler_Apply_ReleasesLockOnFailure(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	svc := &fakeLeaveService{
		applyFn: func(ctx context.Context, employeeID int64, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
			return leave.LeaveApplicationResponse{}, leaveerrors.ErrInsufficientBalance
		},
	}
	keys := func(c *gin.Context) {
		c.Set(middleware.ContextIdempotencyCacheKey, "idemp:k")
		c.Set(middleware.ContextIdempotencyLockKey, "idemp:k:lock")
		c.Next()
	}
	r := newLeaveRouter(leave.NewHandlerWithRedis(svc, rdb, leave.DefaultPageLimits), keys)

	rmock.ExpectDel("idemp:k:lock").SetVal(1)

	w := serve(r, http.MethodPost, "/leaves/apply", `{"leave_type_id":2,"start_date":"2026-03-10","end_date":"2026-03-10"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

// ctxHook answers every command itself and records whether the caller's
// context was already done.
type ctxHook struct {
	ctxErr map[string]error
}

func (h *ctxHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *ctxHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.ctxErr[cmd.Name()] = ctx.Err()
		return nil
	}
}

func (h *ctxHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestHandler_Apply_StoresAndUnlocksAfterClientGone(t *testing.T) {
	hook := &ctxHook{ctxErr: map[string]error{}}
	rdb := redis.NewClient(&redis.Options{MaxRetries: -1})
	rdb.AddHook(hook)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	svc := &fakeLeaveService{
		applyFn: func(_ context.Context, employeeID int64, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
			cancel()
			return leave.LeaveApplicationResponse{ID: 9, Status: leave.StatusPending}, nil
		},
	}
	keys := func(c *gin.Context) {
		c.Set(middleware.ContextIdempotencyCacheKey, "idemp:k")
		c.Set(middleware.ContextIdempotencyLockKey, "idemp:k:lock")
		c.Next()
	}
	r := newLeaveRouter(leave.NewHandlerWithRedis(svc, rdb, leave.DefaultPageLimits), keys)

	req := httptest.NewRequest(http.MethodPost, "/leaves/apply",
		strings.NewReader(`{"leave_type_id":2,"start_date":"2026-03-10","end_date":"2026-03-10"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Contains(t, hook.ctxErr, "set")
	require.Contains(t, hook.ctxErr, "del")
	assert.NoError(t, hook.ctxErr["set"])
	assert.NoError(t, hook.ctxErr["del"])
}

func TestHandler_UpdateStatus(t *testing.T) {
	svc := &fakeLeaveService{
		updateStatusFn: func(ctx context.Context, id, approverID int64, req leave.UpdateLeaveStatusRequest) (leave.LeaveApplicationResponse, error) {
			assert.Equal(t, int64(5), id)
			assert.Equal(t, int64(7), approverID)
			assert.Equal(t, "APPROVED", req.Status)
			after := 7
			return leave.LeaveApplicationResponse{ID: id, Status: leave.StatusApproved, ApproverID: &approverID, BalanceAfter: &after}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	w := serve(r, http.MethodPatch, "/leaves/5/status", `{"status":"APPROVED"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var data leave.LeaveApplicationResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &data))
	require.NotNil(t, data.BalanceAfter)
	assert.Equal(t, 7, *data.BalanceAfter)
}

func TestHandler_UpdateStatus_RejectsOtherStatuses(t *testing.T) {
	r := newLeaveRouter(leave.NewHandler(&fakeLeaveService{}))

	w := serve(r, http.MethodPatch, "/leaves/5/status", `{"status":"CANCELLED"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
}

func TestHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	svc := &fakeLeaveService{
		updateStatusFn: func(ctx context.Context, id, approverID int64, req leave.UpdateLeaveStatusRequest) (leave.LeaveApplicationResponse, error) {
			return leave.LeaveApplicationResponse{}, leaveerrors.ErrInvalidStatusTransition
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	w := serve(r, http.MethodPatch, "/leaves/5/status", `{"status":"REJECTED"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
}

func TestHandler_Cancel(t *testing.T) {
	svc := &fakeLeaveService{
		cancelFn: func(ctx context.Context, id, employeeID int64) (leave.LeaveApplicationResponse, error) {
			assert.Equal(t, int64(12), id)
			assert.Equal(t, int64(7), employeeID)
			return leave.LeaveApplicationResponse{ID: id, Status: leave.StatusCancelled}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	w := serve(r, http.MethodPatch, "/leaves/12/cancel", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPatch, "/leaves/abc/cancel", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
}

func TestHandler_Cancel_NotOwner(t *testing.T) {
	svc := &fakeLeaveService{
		cancelFn: func(ctx context.Context, id, employeeID int64) (leave.LeaveApplicationResponse, error) {
			return leave.LeaveApplicationResponse{}, leaveerrors.ErrNotApplicationOwner
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	w := serve(r, http.MethodPatch, "/leaves/12/cancel", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
}

func TestHandler_List(t *testing.T) {
	svc := &fakeLeaveService{
		listFn: func(ctx context.Context, q leave.ListQuery) (leave.ListLeaveResponse, error) {
			require.NotNil(t, q.Filter.Status)
			assert.Equal(t, leave.StatusPending, *q.Filter.Status)
			require.NotNil(t, q.Filter.EmployeeID)
			assert.Equal(t, int64(7), *q.Filter.EmployeeID)
			assert.Equal(t, 2, q.Page)
			assert.Equal(t, 100, q.PageSize)
			assert.Equal(t, "start_date", q.Sort.Column())
			assert.False(t, q.Sort.Desc)
			return leave.ListLeaveResponse{
				Items:      []leave.LeaveApplicationResponse{{ID: 1}, {ID: 2}},
				TotalCount: 102,
				Page:       q.Page,
				PageSize:   q.PageSize,
				PageCount:  2,
			}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	w := serve(r, http.MethodGet, "/leaves?status=pending&employee_id=7&page=2&page_size=500&sort_by=startDate&sort_order=asc", "")

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	var items []leave.LeaveApplicationResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
	require.NotNil(t, env.Meta)
	assert.Equal(t, apiMeta{Total: 102, TotalPages: 2, Page: 2, PageSize: 100}, *env.Meta)
}

func TestHandler_List_InvalidQuery(t *testing.T) {
	r := newLeaveRouter(leave.NewHandler(&fakeLeaveService{}))

	tests := []struct {
		name  string
		query string
	}{
		{"unknown status", "status=ON_HOLD"},
		{"unknown sort field", "sort_by=password"},
		{"bad sort order", "sort_by=id&sort_order=sideways"},
		{"non numeric page", "page=two"},
		{"bad employee id", "employee_id=-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/leaves?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_GetByID(t *testing.T) {
	svc := &fakeLeaveService{
		getByIDFn: func(ctx context.Context, id int64) (leave.LeaveApplicationResponse, error) {
			if id == 404 {
				return leave.LeaveApplicationResponse{}, leaveerrors.ErrLeaveApplicationNotFound
			}
			return leave.LeaveApplicationResponse{ID: id}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/leaves/3", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/leaves/404", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/leaves/0", "").Code)
}

func TestHandler_Balances(t *testing.T) {
	var got []int64
	svc := &fakeLeaveService{
		balancesFn: func(ctx context.Context, employeeID int64) ([]leave.LeaveBalanceResponse, error) {
			got = append(got, employeeID)
			return []leave.LeaveBalanceResponse{{ID: 1, LeaveTypeID: 2, Balance: 10}}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/leaves/my-balances", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/employees/42/leave-balances", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/employees/x/leave-balances", "").Code)
	assert.Equal(t, []int64{7, 42}, got)
}

func TestHandler_Statistics(t *testing.T) {
	svc := &fakeLeaveService{
		statisticsFn: func(ctx context.Context) (leave.LeaveStatisticsResponse, error) {
			return leave.LeaveStatisticsResponse{
				PendingApplications:   3,
				ApprovedThisMonth:     1,
				LeaveTypeDistribution: []leave.LeaveTypeCountResponse{},
			}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	w := serve(r, http.MethodGet, "/leaves/statistics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"pending_applications":3,"approved_this_month":1,"leave_type_distribution":[]}`,
		string(decodeEnvelope(t, w.Body.Bytes()).Data),
	)
}

func TestHandler_Calendar(t *testing.T) {
	svc := &fakeLeaveService{
		upcomingFn: func(ctx context.Context, from, to string) ([]leave.LeaveApplicationResponse, error) {
			assert.Equal(t, "2026-07-01", from)
			assert.Equal(t, "2026-07-31", to)
			return []leave.LeaveApplicationResponse{}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/leaves/calendar?from=2026-07-01&to=2026-07-31", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/leaves/calendar?from=2026-07-01", "").Code)
}

func TestHandler_LeaveTypes(t *testing.T) {
	svc := &fakeLeaveService{
		leaveTypesFn: func(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
			return []leave.LeaveTypeResponse{{ID: 1, Name: "Annual", MaxDays: 20}}, nil
		},
	}
	r := newLeaveRouter(leave.NewHandler(svc))

	w := serve(r, http.MethodGet, "/leaves/types", "")

	require.Equal(t, http.StatusOK, w.Code)
	var types []leave.LeaveTypeResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &types))
	assert.Equal(t, "Annual", types[0].Name)
}
