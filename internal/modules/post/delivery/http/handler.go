package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	postDto "github.com/pulseboard/backend/internal/modules/post/dto"
	post "github.com/pulseboard/backend/internal/modules/post/service"
	"github.com/pulseboard/backend/pkg/apperror"
	"github.com/pulseboard/backend/pkg/ratelimiter"
	"github.com/pulseboard/backend/pkg/response"
	"github.com/pulseboard/backend/pkg/validator"
)

type PostHandler struct {
	service post.PostService
}

func NewPostHandler(service post.PostService) *PostHandler {
	return &PostHandler{service: service}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postDto.CreatePostRequest
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
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitErr.Message, "code": "rate_limited"})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.service.List(c.Request.Context(), response.OptionalUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.WithMessage(apperror.ErrValidation, "invalid post id"))
		return
	}

	resp, err := h.service.Get(c.Request.Context(), postID, response.OptionalUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
