package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulseboard/backend/internal/entity"
	like "github.com/pulseboard/backend/internal/modules/like/service"
	"github.com/pulseboard/backend/pkg/apperror"
	"github.com/pulseboard/backend/pkg/response"
)

type LikeHandler struct {
	service like.LikeService
}

func NewLikeHandler(service like.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

func (h *LikeHandler) LikePost(c *gin.Context) {
	h.toggle(c, entity.TargetPost, true)
}

func (h *LikeHandler) UnlikePost(c *gin.Context) {
	h.toggle(c, entity.TargetPost, false)
}

func (h *LikeHandler) LikeComment(c *gin.Context) {
	h.toggle(c, entity.TargetComment, true)
}

func (h *LikeHandler) UnlikeComment(c *gin.Context) {
	h.toggle(c, entity.TargetComment, false)
}

func (h *LikeHandler) toggle(c *gin.Context, kind entity.TargetKind, liked bool) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.WithMessage(apperror.ErrValidation, "invalid id"))
		return
	}

	userID, err := response.UserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if liked {
		_, err = h.service.Like(c.Request.Context(), userID, kind, targetID)
	} else {
		_, err = h.service.Unlike(c.Request.Context(), userID, kind, targetID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}
