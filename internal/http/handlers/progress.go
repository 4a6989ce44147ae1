package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
	"github.com/yungbote/levelup-backend/internal/services"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:      log.With("handler", "ProgressHandler"),
		progress: progress,
	}
}

type submitProgressRequest struct {
	IsCompleted  *bool           `json:"isCompleted" binding:"required"`
	Score        *float64        `json:"score" binding:"omitempty,gte=0,lte=100"`
	PointsEarned *int            `json:"pointsEarned" binding:"omitempty,gte=0"`
	Answers      json.RawMessage `json:"answers"`
}

type grantedAchievementResponse struct {
	ID   uint   `json:"id"`
	Key  string `json:"key"`
	Type string `json:"type"`
}

type submitProgressResponse struct {
	Success      bool `json:"success"`
	IsCompleted  bool `json:"isCompleted"`
	PointsEarned int  `json:"pointsEarned"`

	Action           string `json:"action"`
	Attempts         int    `json:"attempts"`
	BestPointsEarned int    `json:"bestPointsEarned"`
	PointsAwarded    int    `json:"pointsAwarded"`
	TotalPoints      int    `json:"totalPoints"`
	CurrentLevel     int    `json:"currentLevel"`

	LevelCompleted        bool                         `json:"levelCompleted"`
	LevelNewlyCompleted   bool                         `json:"levelNewlyCompleted"`
	GrantedAchievementIDs []uint                       `json:"grantedAchievementIds"`
	GrantedAchievements   []grantedAchievementResponse `json:"grantedAchievements"`
}

// POST /api/activities/:activityId/progress
func (h *ProgressHandler) SubmitProgress(c *gin.Context) {
	activityID, ok := parseUintParam(c, "activityId", "invalid_activity_id")
	if !ok {
		return
	}
	var req submitProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	out, err := h.progress.Submit(c.Request.Context(), services.SubmitInput{
		ActivityID:     activityID,
		IsCompleted:    *req.IsCompleted,
		ScorePercent:   req.Score,
		ExplicitPoints: req.PointsEarned,
		Answers:        req.Answers,
	})
	if err != nil {
		status, code := response.StatusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("SubmitProgress failed", "error", err, "activity_id", activityID, "code", code)
		}
		response.RespondErr(c, err)
		return
	}

	res := submitProgressResponse{
		Success:               true,
		IsCompleted:           out.IsCompleted,
		PointsEarned:          out.PointsEarned,
		Action:                out.Action,
		Attempts:              out.Attempts,
		BestPointsEarned:      out.BestPointsEarned,
		PointsAwarded:         out.PointsAwarded,
		TotalPoints:           out.TotalPoints,
		CurrentLevel:          out.CurrentLevel,
		LevelCompleted:        out.LevelCompleted,
		LevelNewlyCompleted:   out.LevelNewlyCompleted,
		GrantedAchievementIDs: out.GrantedAchievementIDs,
		GrantedAchievements:   make([]grantedAchievementResponse, 0, len(out.GrantedAchievements)),
	}
	if res.GrantedAchievementIDs == nil {
		res.GrantedAchievementIDs = []uint{}
	}
	for _, a := range out.GrantedAchievements {
		res.GrantedAchievements = append(res.GrantedAchievements, grantedAchievementResponse{ID: a.ID, Key: a.Key, Type: a.Type})
	}
	response.RespondOK(c, res)
}
