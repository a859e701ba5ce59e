package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulseboard/backend/internal/entity"
)

// OwnerKarma is one aggregation row: a content owner's net delta inside the
// window.
type OwnerKarma struct {
	UserID   uuid.UUID
	Username string
	Karma    int64
}

type KarmaRepository interface {
	// TopOwners sums deltas per owner for events at or after since, drops
	// non-positive totals, and orders by total desc, earliest qualifying
	// event asc, username asc.
	TopOwners(ctx context.Context, since time.Time, limit int) ([]OwnerKarma, error)
	// EvictBefore deletes events older than cutoff; they can no longer
	// influence any query.
	EvictBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type karmaRepository struct {
	db *gorm.DB
}

func NewKarmaRepository(db *gorm.DB) KarmaRepository {
	return &karmaRepository{db: db}
}

func (r *karmaRepository) TopOwners(ctx context.Context, since time.Time, limit int) ([]OwnerKarma, error) {
	var rows []OwnerKarma

	err := r.db.WithContext(ctx).
		Model(&entity.KarmaEvent{}).
		Select("karma_events.user_id AS user_id, users.username AS username, SUM(karma_events.delta) AS karma").
		Joins("JOIN users ON users.id = karma_events.user_id").
		Where("karma_events.created_at >= ?", since).
		Group("karma_events.user_id, users.username").
		Having("SUM(karma_events.delta) > 0").
		Order("karma DESC").
		Order("MIN(karma_events.created_at) ASC").
		Order("users.username ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *karmaRepository) EvictBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&entity.KarmaEvent{})
	return res.RowsAffected, res.Error
}
