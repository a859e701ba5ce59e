package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	commentDto "github.com/pulseboard/backend/internal/modules/comment/dto"
	comment "github.com/pulseboard/backend/internal/modules/comment/service"
	"github.com/pulseboard/backend/pkg/apperror"
	"github.com/pulseboard/backend/pkg/response"
	"github.com/pulseboard/backend/pkg/validator"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req commentDto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.WithMessage(apperror.ErrValidation, validator.FormatValidationError(err)))
		return
	}

	userID, err := response.UserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
