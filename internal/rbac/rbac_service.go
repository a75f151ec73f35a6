package rbac

import (
	"context"
	"strings"
	"sync"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleHR       = "HR"
)

const (
	ResourceLeave = "leave"

	ActionCreate  = "create"
	ActionReadOwn = "read_own"
	ActionReadAll = "read_all"
	ActionApprove = "approve"
)

// DefaultPermissions is loaded before any role_permissions rows.
var DefaultPermissions = []RolePermissionRow{
	{Role: RoleEmployee, Resource: ResourceLeave, Action: ActionCreate},
	{Role: RoleEmployee, Resource: ResourceLeave, Action: ActionReadOwn},
	{Role: RoleManager, Resource: ResourceLeave, Action: ActionReadAll},
	{Role: RoleManager, Resource: ResourceLeave, Action: ActionApprove},
	{Role: RoleHR, Resource: ResourceLeave, Action: ActionReadAll},
	{Role: RoleHR, Resource: ResourceLeave, Action: ActionApprove},
}

var DefaultParents = []RoleParentRow{
	{Role: RoleManager, Parent: RoleEmployee},
	{Role: RoleHR, Parent: RoleEmployee},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(req domain.EnforceRequest) (bool, error)
	PermissionsForRole(role string) ([]Permission, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewService loads the built-in policy immediately. repo may be nil, in which
// case LoadPolicy only reloads the defaults.
func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	s := &service{repo: repo, enforcer: enforcer, logger: l}
	if err := s.loadUnlocked(nil, nil); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) LoadPolicy(ctx context.Context) error {
	var (
		perms   []RolePermissionRow
		parents []RoleParentRow
		err     error
	)
	if s.repo != nil {
		if perms, err = s.repo.ListRolePermissions(ctx); err != nil {
			return err
		}
		if parents, err = s.repo.ListRoleParents(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked(perms, parents)
}

func (s *service) loadUnlocked(extraPerms []RolePermissionRow, extraParents []RoleParentRow) error {
	s.enforcer.ClearPolicy()

	for _, gp := range append(append([]RoleParentRow{}, DefaultParents...), extraParents...) {
		if _, err := s.enforcer.AddGroupingPolicy(normalizeRole(gp.Role), normalizeRole(gp.Parent)); err != nil {
			return err
		}
	}
	for _, p := range append(append([]RolePermissionRow{}, DefaultPermissions...), extraPerms...) {
		if _, err := s.enforcer.AddPolicy(normalizeRole(p.Role), p.Resource, p.Action); err != nil {
			return err
		}
	}

	s.logger.Info("rbac policy loaded",
		zap.Int("role_permissions", len(DefaultPermissions)+len(extraPerms)),
		zap.Int("role_parents", len(DefaultParents)+len(extraParents)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role := normalizeRole(req.Role)
	allowed, err := s.enforcer.Enforce(role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) PermissionsForRole(role string) ([]Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.enforcer.GetImplicitPermissionsForUser(normalizeRole(role))
	if err != nil {
		return nil, err
	}

	perms := make([]Permission, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		perms = append(perms, Permission{Resource: rule[1], Action: rule[2]})
	}
	return perms, nil
}

func normalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}
