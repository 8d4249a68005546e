package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nikhilmurali32/SafeBites/internal/services"
	"github.com/nikhilmurali32/SafeBites/internal/store"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the current user, creating the record on first visit.
func (uh *UserHandler) GetMe(c *gin.Context) {
	user, err := uh.userService.GetOrCreate(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	RespondOK(c, gin.H{"user": user})
}

type preferencesRequest struct {
	Allergies        *[]string `json:"allergies"`
	DietGoals        *[]string `json:"dietGoals"`
	AvoidIngredients *[]string `json:"avoidIngredients"`
}

// UpdatePreferences applies a partial update: fields absent from the body
// are left untouched, fields present (even empty) replace the stored value.
func (uh *UserHandler) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	prefs := store.Preferences{}
	if req.Allergies != nil {
		prefs.Allergies = ensureSlice(*req.Allergies)
	}
	if req.DietGoals != nil {
		prefs.DietGoals = ensureSlice(*req.DietGoals)
	}
	if req.AvoidIngredients != nil {
		prefs.AvoidIngredients = ensureSlice(*req.AvoidIngredients)
	}

	user, err := uh.userService.UpdatePreferences(c.Request.Context(), prefs)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if user == nil {
		RespondError(c, http.StatusNotFound, "User not found")
		return
	}
	RespondOK(c, gin.H{"success": true, "user": user})
}

func (uh *UserHandler) GetStats(c *gin.Context) {
	stats, err := uh.userService.GetStats(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if stats == nil {
		RespondError(c, http.StatusNotFound, "User not found")
		return
	}
	RespondOK(c, gin.H{"stats": stats})
}

// ensureSlice keeps an explicitly supplied empty list distinguishable from
// an absent field after JSON decoding.
func ensureSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
