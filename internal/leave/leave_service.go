package leave

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/events"
	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/messaging/kafka"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	StatisticsCacheKey        = "leave:statistics"
	StatisticsVersionKey      = "leave:statistics:version"
	DefaultStatisticsCacheTTL = 5 * time.Minute

	statisticsLoadTimeout = 10 * time.Second
)

// StatisticsCacheKeyFor names the snapshot cached for one statistics version.
// Writes bump the version, so a snapshot loaded before a write is never read.
func StatisticsCacheKeyFor(version int64) string {
	return StatisticsCacheKey + ":v" + strconv.FormatInt(version, 10)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, employeeID int64, req ApplyLeaveRequest) (LeaveApplicationResponse, error)
	UpdateStatus(ctx context.Context, id, approverID int64, req UpdateLeaveStatusRequest) (LeaveApplicationResponse, error)
	Cancel(ctx context.Context, id, employeeID int64) (LeaveApplicationResponse, error)
	GetEmployeeBalances(ctx context.Context, employeeID int64) ([]LeaveBalanceResponse, error)
	List(ctx context.Context, q ListQuery) (ListLeaveResponse, error)
	GetByID(ctx context.Context, id int64) (LeaveApplicationResponse, error)
	GetStatistics(ctx context.Context) (LeaveStatisticsResponse, error)
	GetUpcoming(ctx context.Context, from, to string) ([]LeaveApplicationResponse, error)
	ListLeaveTypes(ctx context.Context) ([]LeaveTypeResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	rdb      *redis.Client
	sf       *singleflight.Group
	statsTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, nil, DefaultStatisticsCacheTTL, logger...)
}

// NewServiceWithOutbox enables lifecycle events and the statistics cache. Either
// outbox or rdb may be nil.
func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	statsTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if statsTTL <= 0 {
		statsTTL = DefaultStatisticsCacheTTL
	}
	return &service{
		db:       db,
		repo:     repo,
		outbox:   outbox,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		statsTTL: statsTTL,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) Apply(ctx context.Context, employeeID int64, req ApplyLeaveRequest) (LeaveApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply leave requested",
		zap.String("request_id", rid),
		zap.Int64("employee_id", employeeID),
		zap.Int64("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	startDate, endDate, err := validateApplyRequest(employeeID, req)
	if err != nil {
		s.logger.Warn("apply leave validation failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveApplicationResponse{}, err
	}
	days := DayCount(startDate, endDate)

	var created LeaveApplication
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		bal, err := getBalance(ctx, qtx, employeeID, req.LeaveTypeID)
		if err != nil {
			return err
		}
		if bal.Balance < days {
			s.logger.Warn("apply leave insufficient balance",
				zap.String("request_id", rid),
				zap.Int64("employee_id", employeeID),
				zap.Int("balance", bal.Balance),
				zap.Int("days", days),
			)
			return leaveerrors.ErrInsufficientBalance
		}

		created = LeaveApplication{
			EmployeeID:  employeeID,
			LeaveTypeID: req.LeaveTypeID,
			StartDate:   startDate,
			EndDate:     endDate,
			Status:      StatusPending,
			Reason:      normalizeReason(req.Reason),
		}
		if err := qtx.CreateApplication(ctx, &created); err != nil {
			return mapRepositoryError(err, leaveerrors.ErrLeaveBalanceNotFound)
		}

		return s.enqueueEvent(ctx, tx, events.LeaveApplied, created, "", employeeID)
	})
	if err != nil {
		s.logger.Error("apply leave failed",
			zap.String("request_id", rid),
			zap.Int64("employee_id", employeeID),
			zap.Error(err),
		)
		return LeaveApplicationResponse{}, asServiceError(err)
	}

	s.invalidateStatistics(ctx)
	s.logger.Info("apply leave success",
		zap.String("request_id", rid),
		zap.Int64("leave_id", created.ID),
		zap.Int64("employee_id", employeeID),
		zap.Int("days", days),
	)
	return mapApplicationToResponse(created), nil
}

func (s *service) UpdateStatus(ctx context.Context, id, approverID int64, req UpdateLeaveStatusRequest) (LeaveApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave status requested",
		zap.String("request_id", rid),
		zap.Int64("leave_id", id),
		zap.Int64("approver_id", approverID),
		zap.String("target_status", req.Status),
	)

	target, ok := ParseStatus(req.Status)
	if !ok || !target.IsDecision() {
		return LeaveApplicationResponse{}, leaveerrors.ErrInvalidDecisionStatus
	}
	if id <= 0 {
		return LeaveApplicationResponse{}, leaveerrors.ErrInvalidApplicationID
	}
	if approverID <= 0 {
		return LeaveApplicationResponse{}, leaveerrors.ErrInvalidApproverID
	}

	var updated LeaveApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		app, err := qtx.FindApplicationForUpdate(ctx, id)
		if err != nil {
			return mapRepositoryError(err, leaveerrors.ErrLeaveApplicationNotFound)
		}
		from := app.Status
		if !from.CanTransitionTo(target) {
			s.logger.Warn("update leave status invalid transition",
				zap.String("request_id", rid),
				zap.Int64("leave_id", id),
				zap.String("from_status", from.String()),
				zap.String("to_status", target.String()),
			)
			return leaveerrors.ErrInvalidStatusTransition
		}

		var balanceAfter *int
		if target == StatusApproved {
			newBalance, err := debit(ctx, qtx, app.EmployeeID, app.LeaveTypeID, app.DayCount())
			if err != nil {
				return err
			}
			balanceAfter = &newBalance
		}

		if err := app.transition(target, &approverID, balanceAfter, s.now()); err != nil {
			return err
		}
		if err := qtx.UpdateApplicationStatus(ctx, app); err != nil {
			return mapRepositoryError(err, leaveerrors.ErrLeaveApplicationNotFound)
		}

		updated = *app
		return s.enqueueEvent(ctx, tx, eventTypeFor(target), *app, from, approverID)
	})
	if err != nil {
		s.logger.Error("update leave status failed",
			zap.String("request_id", rid),
			zap.Int64("leave_id", id),
			zap.String("target_status", target.String()),
			zap.Error(err),
		)
		return LeaveApplicationResponse{}, asServiceError(err)
	}

	s.invalidateStatistics(ctx)
	fields := []zap.Field{
		zap.String("request_id", rid),
		zap.Int64("leave_id", id),
		zap.String("status", updated.Status.String()),
	}
	if updated.BalanceAfter != nil {
		fields = append(fields, zap.Int("balance_after", *updated.BalanceAfter))
	}
	s.logger.Info("update leave status success", fields...)
	return mapApplicationToResponse(updated), nil
}

func (s *service) Cancel(ctx context.Context, id, employeeID int64) (LeaveApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("cancel leave requested",
		zap.String("request_id", rid),
		zap.Int64("leave_id", id),
		zap.Int64("employee_id", employeeID),
	)

	if id <= 0 {
		return LeaveApplicationResponse{}, leaveerrors.ErrInvalidApplicationID
	}
	if employeeID <= 0 {
		return LeaveApplicationResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	var cancelled LeaveApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		app, err := qtx.FindApplicationForUpdate(ctx, id)
		if err != nil {
			return mapRepositoryError(err, leaveerrors.ErrLeaveApplicationNotFound)
		}
		// Ownership is checked before status.
		if app.EmployeeID != employeeID {
			return leaveerrors.ErrNotApplicationOwner
		}

		from := app.Status
		if err := app.transition(StatusCancelled, nil, nil, s.now()); err != nil {
			return err
		}
		if err := qtx.UpdateApplicationStatus(ctx, app); err != nil {
			return mapRepositoryError(err, leaveerrors.ErrLeaveApplicationNotFound)
		}

		cancelled = *app
		return s.enqueueEvent(ctx, tx, events.LeaveCancelled, *app, from, employeeID)
	})
	if err != nil {
		s.logger.Warn("cancel leave failed",
			zap.String("request_id", rid),
			zap.Int64("leave_id", id),
			zap.Error(err),
		)
		return LeaveApplicationResponse{}, asServiceError(err)
	}

	s.invalidateStatistics(ctx)
	s.logger.Info("cancel leave success", zap.String("request_id", rid), zap.Int64("leave_id", id))
	return mapApplicationToResponse(cancelled), nil
}

func (s *service) GetEmployeeBalances(ctx context.Context, employeeID int64) ([]LeaveBalanceResponse, error) {
	if employeeID <= 0 {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}
	rows, err := listForEmployee(ctx, s.repo, employeeID)
	if err != nil {
		s.logger.Error("get leave balances failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return mapBalancesToResponse(rows), nil
}

func (s *service) List(ctx context.Context, q ListQuery) (ListLeaveResponse, error) {
	if q.Page < 1 || q.PageSize < 1 {
		return ListLeaveResponse{}, leaveerrors.ErrInvalidPagination
	}
	if q.Sort.Column() == "" {
		q.Sort = defaultSort
	}

	views, total, err := s.repo.ListApplications(ctx, q)
	if err != nil {
		s.logger.Error("list leave applications failed", zap.Error(err))
		return ListLeaveResponse{}, mapRepositoryError(err, leaveerrors.ErrLeaveApplicationNotFound)
	}

	result := newListResult(views, total, q)
	return ListLeaveResponse{
		Items:      mapToListResponse(result.Items),
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
		PageCount:  result.PageCount,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (LeaveApplicationResponse, error) {
	if id <= 0 {
		return LeaveApplicationResponse{}, leaveerrors.ErrInvalidApplicationID
	}
	v, err := s.repo.FindApplicationByID(ctx, id)
	if err != nil {
		return LeaveApplicationResponse{}, mapRepositoryError(err, leaveerrors.ErrLeaveApplicationNotFound)
	}
	return mapToResponse(*v), nil
}

func (s *service) GetStatistics(ctx context.Context) (LeaveStatisticsResponse, error) {
	version, cacheable := s.statisticsVersion(ctx)
	key := StatisticsCacheKeyFor(version)
	if cacheable {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var resp LeaveStatisticsResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Waiters share this load, so it must not die with the first caller.
	v, err, _ := s.sf.Do(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statisticsLoadTimeout)
		defer cancel()

		stats, err := s.loadStatistics(loadCtx)
		if err != nil {
			return nil, err
		}
		resp := mapStatisticsToResponse(stats)

		if cacheable {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(loadCtx, key, data, s.statsTTL).Err(); err != nil {
					s.logger.Warn("cache leave statistics failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get leave statistics failed", zap.Error(err))
		return LeaveStatisticsResponse{}, err
	}
	return v.(LeaveStatisticsResponse), nil
}

// statisticsVersion must be read before the load starts. A missing key is
// version 0; a Redis error disables the cache for this call.
func (s *service) statisticsVersion(ctx context.Context) (int64, bool) {
	if s.rdb == nil {
		return 0, false
	}
	version, err := s.rdb.Get(ctx, StatisticsVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn("read leave statistics version failed", zap.Error(err))
		return 0, false
	}
	return version, true
}

func (s *service) loadStatistics(ctx context.Context) (Statistics, error) {
	pending, err := s.repo.CountByStatus(ctx, StatusPending)
	if err != nil {
		return Statistics{}, apperror.Internal(err)
	}

	first, last := monthBounds(s.now())
	approved, err := s.repo.CountApprovedOverlapping(ctx, first, last)
	if err != nil {
		return Statistics{}, apperror.Internal(err)
	}

	dist, err := s.repo.CountApprovedByLeaveType(ctx)
	if err != nil {
		return Statistics{}, apperror.Internal(err)
	}
	if dist == nil {
		dist = []LeaveTypeCount{}
	}

	return Statistics{
		PendingApplications:   pending,
		ApprovedThisMonth:     approved,
		LeaveTypeDistribution: dist,
	}, nil
}

// GetUpcoming lists approved leave overlapping the calendar days from..to, both inclusive.
func (s *service) GetUpcoming(ctx context.Context, from, to string) ([]LeaveApplicationResponse, error) {
	fromDate, toDate, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	views, err := s.repo.FindApprovedInRange(ctx, fromDate, toDate.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("get upcoming leaves failed", zap.Error(err))
		return nil, mapRepositoryError(err, leaveerrors.ErrLeaveApplicationNotFound)
	}
	return mapToListResponse(views), nil
}

func (s *service) ListLeaveTypes(ctx context.Context) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindLeaveTypes(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, leaveerrors.ErrLeaveTypeNotFound)
	}
	resp := make([]LeaveTypeResponse, len(types))
	for i, t := range types {
		resp[i] = LeaveTypeResponse{ID: t.ID, Name: t.Name, Description: t.Description, MaxDays: t.MaxDays}
	}
	return resp, nil
}

// enqueueEvent writes the lifecycle event through tx so it commits or rolls back
// together with the state change.
func (s *service) enqueueEvent(ctx context.Context, tx *gorm.DB, eventType string, app LeaveApplication, from Status, actorID int64) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	payload := events.LeaveLifecycleEvent{
		EventType:     eventType,
		ApplicationID: app.ID,
		EmployeeID:    app.EmployeeID,
		LeaveTypeID:   app.LeaveTypeID,
		FromStatus:    from.String(),
		ToStatus:      app.Status.String(),
		ActorID:       actorID,
		StartDate:     app.StartDate.Format(dateLayout),
		EndDate:       app.EndDate.Format(dateLayout),
		DayCount:      app.DayCount(),
		BalanceAfter:  app.BalanceAfter,
		RequestID:     rid,
		OccurredAt:    s.now(),
	}
	event, err := kafka.NewOutboxEvent(
		events.LeaveLifecycleTopic,
		events.LeaveAggregateType,
		strconv.FormatInt(app.ID, 10),
		eventType,
		rid,
		payload,
	)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("enqueue leave event failed",
			zap.String("request_id", rid),
			zap.String("event_type", eventType),
			zap.Int64("leave_id", app.ID),
			zap.Error(err),
		)
		return apperror.Internal(err)
	}
	return nil
}

func (s *service) invalidateStatistics(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	// Runs after commit; a dropped client must not leave the old version live.
	if err := s.rdb.Incr(context.WithoutCancel(ctx), StatisticsVersionKey).Err(); err != nil {
		s.logger.Warn("invalidate leave statistics cache failed",
			zap.String("key", StatisticsVersionKey),
			zap.Error(err),
		)
	}
}

func eventTypeFor(target Status) string {
	switch target {
	case StatusApproved:
		return events.LeaveApproved
	case StatusRejected:
		return events.LeaveRejected
	default:
		return events.LeaveCancelled
	}
}

func validateApplyRequest(employeeID int64, req ApplyLeaveRequest) (time.Time, time.Time, error) {
	if employeeID <= 0 {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidEmployeeID
	}
	if req.LeaveTypeID <= 0 {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveTypeID
	}
	return parseDateRange(req.StartDate, req.EndDate)
}

func normalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	v := strings.TrimSpace(*reason)
	if v == "" {
		return nil
	}
	return &v
}

// asServiceError keeps typed errors and wraps everything else, such as a failed
// commit, as an internal error.
func asServiceError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}
