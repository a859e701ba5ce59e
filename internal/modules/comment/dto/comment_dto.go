package dto

import (
	"time"

	"github.com/google/uuid"

	userDto "github.com/pulseboard/backend/internal/modules/user/dto"
)

type CreateCommentRequest struct {
	Post    string  `json:"post" binding:"required"`
	Content string  `json:"content" binding:"required,max=5000"`
	Parent  *string `json:"parent"`
}

// CommentNode is one node of the assembled reply tree. Replies is always
// non-nil so the wire shape stays a JSON array even for leaves.
type CommentNode struct {
	ID        uuid.UUID            `json:"id"`
	Author    userDto.UserResponse `json:"author"`
	Content   string               `json:"content"`
	CreatedAt time.Time            `json:"created_at"`
	Parent    *uuid.UUID           `json:"parent"`
	LikeCount int64                `json:"like_count"`
	IsLiked   bool                 `json:"is_liked"`
	Replies   []*CommentNode       `json:"replies"`
}
