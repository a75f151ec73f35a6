package audit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrDuplicateEvent = errors.New("audit entry for event already exists")

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	ListByEntity(ctx context.Context, entity string, entityID int64) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create returns ErrDuplicateEvent when the event id was already recorded.
func (r *repository) Create(ctx context.Context, entry *Entry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if isDuplicateEvent(err) {
		return ErrDuplicateEvent
	}
	return err
}

func (r *repository) ListByEntity(ctx context.Context, entity string, entityID int64) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func isDuplicateEvent(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_audit_logs_event_id"
	}
	return false
}
