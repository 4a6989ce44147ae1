package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/levelup-backend/internal/domain/aggregates"
	"github.com/yungbote/levelup-backend/internal/http/response"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
	"github.com/yungbote/levelup-backend/internal/services"
)

type UserHandler struct {
	log        *logger.Logger
	onboarding services.OnboardingService
	overview   services.OverviewService
}

func NewUserHandler(log *logger.Logger, onboarding services.OnboardingService, overview services.OverviewService) *UserHandler {
	return &UserHandler{
		log:        log.With("handler", "UserHandler"),
		onboarding: onboarding,
		overview:   overview,
	}
}

type provisionUserRequest struct {
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

// POST /api/users
// body (optional): { "email", "firstName", "lastName", "username" }
func (h *UserHandler) Provision(c *gin.Context) {
	var req provisionUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.onboarding.Provision(c.Request.Context(), domainagg.UserProfile{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	})
	if err != nil {
		if status, _ := response.StatusFor(err); status >= http.StatusInternalServerError {
			h.log.Error("Provision failed", "error", err)
		}
		response.RespondErr(c, err)
		return
	}
	status := http.StatusOK
	message := "User already exists"
	if out.Created {
		status = http.StatusCreated
		message = "User created"
	}
	granted := make([]grantedAchievementResponse, 0, len(out.GrantedAchievements))
	for _, a := range out.GrantedAchievements {
		granted = append(granted, grantedAchievementResponse{ID: a.ID, Key: a.Key, Type: a.Type})
	}
	c.JSON(status, gin.H{
		"message":             message,
		"created":             out.Created,
		"userId":              out.UserID,
		"totalPoints":         out.TotalPoints,
		"currentLevel":        out.CurrentLevel,
		"grantedAchievements": granted,
	})
}

// GET /api/me/progress
func (h *UserHandler) GetProgress(c *gin.Context) {
	ov, err := h.overview.Overview(c.Request.Context())
	if err != nil {
		if status, _ := response.StatusFor(err); status >= http.StatusInternalServerError {
			h.log.Error("GetProgress failed", "error", err)
		}
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, ov)
}

// GET /api/me/achievements
func (h *UserHandler) ListAchievements(c *gin.Context) {
	list, err := h.overview.ListAchievements(c.Request.Context())
	if err != nil {
		if status, _ := response.StatusFor(err); status >= http.StatusInternalServerError {
			h.log.Error("ListAchievements failed", "error", err)
		}
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": list})
}
