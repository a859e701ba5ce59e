package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post content is immutable after creation. LikeCount and CommentCount are
// denormalized counters written only inside the transactions that create the
// rows they count (likes, comments), never by the post module itself.
type Post struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	LikeCount    int64     `gorm:"not null;default:0" json:"like_count"`
	CommentCount int64     `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		// V7 is time-ordered, so "id DESC" agrees with creation order on ties.
		p.ID, err = uuid.NewV7()
	}
	return
}
