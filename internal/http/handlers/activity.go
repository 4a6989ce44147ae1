package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
	"github.com/yungbote/levelup-backend/internal/services"
)

type ActivityHandler struct {
	log      *logger.Logger
	overview services.OverviewService
}

func NewActivityHandler(log *logger.Logger, overview services.OverviewService) *ActivityHandler {
	return &ActivityHandler{
		log:      log.With("handler", "ActivityHandler"),
		overview: overview,
	}
}

// GET /api/levels
func (h *ActivityHandler) ListLevels(c *gin.Context) {
	levels, err := h.overview.ListLevels(c.Request.Context())
	if err != nil {
		h.fail(c, "ListLevels", err)
		return
	}
	response.RespondOK(c, gin.H{"levels": levels})
}

// GET /api/levels/:levelId/activities/:activityId
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	levelID, ok := parseUintParam(c, "levelId", "invalid_level_id")
	if !ok {
		return
	}
	activityID, ok := parseUintParam(c, "activityId", "invalid_activity_id")
	if !ok {
		return
	}
	view, err := h.overview.GetActivity(c.Request.Context(), levelID, activityID)
	if err != nil {
		h.fail(c, "GetActivity", err)
		return
	}
	response.RespondOK(c, view)
}

func (h *ActivityHandler) fail(c *gin.Context, op string, err error) {
	if status, _ := response.StatusFor(err); status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", "error", err)
	}
	response.RespondErr(c, err)
}
