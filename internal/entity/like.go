package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TargetKind discriminates what a Like (or KarmaEvent) points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Like is a pure existence relation: at most one row per (user, target),
// enforced by the composite unique index. The toggle service relies on
// INSERT .. ON CONFLICT DO NOTHING against that index for exactly-once
// increments under concurrent requests.
type Like struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_target,priority:1" json:"user_id"`
	User       User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TargetType TargetKind `gorm:"size:20;not null;uniqueIndex:idx_likes_user_target,priority:2;index:idx_likes_target,priority:1" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_target,priority:3;index:idx_likes_target,priority:2" json:"target_id"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
