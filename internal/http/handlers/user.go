package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/healthwhisperer-backend/internal/http/response"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
)

type UserHandler struct {
	userService    services.UserService
	profileService services.ProfileService
}

func NewUserHandler(userService services.UserService, profileService services.ProfileService) *UserHandler {
	return &UserHandler{userService: userService, profileService: profileService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "get_me_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me
// body: { "name": "..." }
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	me, err := uh.userService.UpdateName(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondServiceError(c, "update_me_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /api/me/preferences
func (uh *UserHandler) GetPreferences(c *gin.Context) {
	prefs, err := uh.userService.GetPreferences(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "get_preferences_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// PATCH /api/me/preferences
// body: any subset of the preference keys
func (uh *UserHandler) PatchPreferences(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	prefs, err := uh.userService.UpdatePreferences(c.Request.Context(), patch)
	if err != nil {
		response.RespondServiceError(c, "update_preferences_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// GET /api/me/profile
func (uh *UserHandler) GetProfile(c *gin.Context) {
	p, summary, err := uh.profileService.Get(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "get_profile_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p, "summary": summary})
}

// PUT /api/me/profile
func (uh *UserHandler) PutProfile(c *gin.Context) {
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	p, summary, err := uh.profileService.Update(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, "update_profile_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p, "summary": summary})
}
