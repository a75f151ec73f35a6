package leave

import (
	"context"
	"net/http"
	"strconv"
	"time"

	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/middleware"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

type Handler struct {
	service Service
	rdb     *redis.Client
	limits  PageLimits
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	return NewHandlerWithRedis(service, nil, DefaultPageLimits, logger...)
}

// NewHandlerWithRedis stores apply responses under the idempotency key set by
// middleware.Idempotency.
func NewHandlerWithRedis(service Service, rdb *redis.Client, limits PageLimits, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	if limits.DefaultSize < 1 || limits.MaxSize < limits.DefaultSize {
		limits = DefaultPageLimits
	}
	return &Handler{service: service, rdb: rdb, limits: limits, logger: l}
}

// getActorID returns the verified employee id set by middleware.AuthMiddleware.
func getActorID(c *gin.Context) int64 {
	return c.GetInt64("employee_id")
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, op string, err error) {
	h.logger.Warn("http "+op+" validation failed", zap.Error(err))
	mapped := apperror.MapValidationError(err)
	response.Error(c, http.StatusBadRequest, apperror.CodeValidation, mapped.Message, err.Error())
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, leaveerrors.ErrInvalidApplicationID
	}
	return id, nil
}

func (h *Handler) Apply(c *gin.Context) {
	ctx := c.Request.Context()
	actorID := getActorID(c)
	h.logger.Debug("http apply leave", zap.Int64("employee_id", actorID))

	lockKey := c.GetString(middleware.ContextIdempotencyLockKey)
	cacheKey := c.GetString(middleware.ContextIdempotencyCacheKey)
	// Storing and unlocking must finish even if the client has gone away.
	storeCtx := context.WithoutCancel(ctx)
	if h.rdb != nil && lockKey != "" {
		defer h.rdb.Del(storeCtx, lockKey)
	}

	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "apply leave", err)
		return
	}

	resp, err := h.service.Apply(ctx, actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.rdb != nil && cacheKey != "" {
		if payload, err := middleware.EncodeIdempotentResponse(http.StatusCreated, resp); err == nil {
			if err := h.rdb.Set(storeCtx, cacheKey, payload, idempotencyTTL).Err(); err != nil {
				h.logger.Warn("store idempotent response failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) MyBalances(c *gin.Context) {
	resp, err := h.service.GetEmployeeBalances(c.Request.Context(), getActorID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) EmployeeBalances(c *gin.Context) {
	employeeID, err := strconv.ParseInt(c.Param("employeeId"), 10, 64)
	if err != nil || employeeID <= 0 {
		h.writeServiceError(c, leaveerrors.ErrInvalidEmployeeID)
		return
	}

	resp, err := h.service.GetEmployeeBalances(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req UpdateLeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "update leave status", err)
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), id, getActorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	var params ListLeaveParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.writeBindError(c, "list leaves", err)
		return
	}

	q, err := ParseListQuery(params, h.limits)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(resp.TotalCount, resp.Page, resp.PageSize)
	response.Success(c, http.StatusOK, resp.Items, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Statistics(c *gin.Context) {
	resp, err := h.service.GetStatistics(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Calendar(c *gin.Context) {
	var params CalendarParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.writeBindError(c, "leave calendar", err)
		return
	}

	resp, err := h.service.GetUpcoming(c.Request.Context(), params.From, params.To)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) LeaveTypes(c *gin.Context) {
	resp, err := h.service.ListLeaveTypes(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
