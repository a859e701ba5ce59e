package entity

import (
	"time"

	"github.com/google/uuid"
)

// KarmaEvent credits the owner of liked content. Rows are written inside the
// same transaction as the like/unlike state change (delta +1 or -1) and are
// disposable once older than the ranking window; a cron job evicts them.
// Self-likes never produce an event.
type KarmaEvent struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_karma_user_time,priority:1" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null" json:"actor_id"`
	TargetType TargetKind `gorm:"size:20;not null" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null" json:"target_id"`
	Delta      int        `gorm:"not null" json:"delta"`
	CreatedAt  time.Time  `gorm:"index:idx_karma_user_time,priority:2;index" json:"created_at"`
}
