package audit

import (
	"net/http"
	"strconv"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	repo   Repository
	logger *zap.Logger
}

func NewHandler(repo Repository, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("audit.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.handler")
	}
	return &Handler{repo: repo, logger: l}
}

// LeaveTrail lists the audit rows of one leave application, oldest first.
func (h *Handler) LeaveTrail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid leave application id", nil)
		return
	}

	entries, err := h.repo.ListByEntity(c.Request.Context(), EntityLeaveApplications, id)
	if err != nil {
		h.logger.Error("list leave audit trail failed", zap.Int64("application_id", id), zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, mapEntriesToResponse(entries), nil)
}
