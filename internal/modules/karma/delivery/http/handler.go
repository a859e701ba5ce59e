package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	karma "github.com/pulseboard/backend/internal/modules/karma/service"
	"github.com/pulseboard/backend/pkg/response"
)

type LeaderboardHandler struct {
	service karma.KarmaService
}

func NewLeaderboardHandler(service karma.KarmaService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, err := h.service.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Bare array; the client maps over the body directly.
	c.JSON(http.StatusOK, entries)
}
