package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment rows form a forest per post: ParentID nil means top-level. A parent
// must already exist at insertion time, so cycles cannot occur. The nested
// reply tree is assembled on read, never stored.
type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"post_id"`
	Post      Post       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User      User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	LikeCount int64      `gorm:"not null;default:0" json:"like_count"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
