package dto

import (
	"time"

	"github.com/google/uuid"

	commentDto "github.com/pulseboard/backend/internal/modules/comment/dto"
	userDto "github.com/pulseboard/backend/internal/modules/user/dto"
)

type CreatePostRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

type PostResponse struct {
	ID           uuid.UUID            `json:"id"`
	Author       userDto.UserResponse `json:"author"`
	Content      string               `json:"content"`
	CreatedAt    time.Time            `json:"created_at"`
	LikeCount    int64                `json:"like_count"`
	IsLiked      bool                 `json:"is_liked"`
	CommentCount int64                `json:"comment_count"`
}

// PostDetailResponse extends the feed view with the assembled comment tree.
type PostDetailResponse struct {
	PostResponse
	Comments []*commentDto.CommentNode `json:"comments"`
}
