package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nikhilmurali32/SafeBites/internal/services"
	"github.com/nikhilmurali32/SafeBites/internal/types"
)

type ScanHandler struct {
	userService services.UserService
}

func NewScanHandler(userService services.UserService) *ScanHandler {
	return &ScanHandler{userService: userService}
}

// List returns the current user's scans, most recent first, optionally
// truncated by ?limit=N. A missing user and an empty history both read as
// an empty list.
func (sh *ScanHandler) List(c *gin.Context) {
	limit := 0
	if q := c.Query("limit"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	scans, err := sh.userService.ListScans(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	RespondOK(c, gin.H{"scans": scans})
}

// Add stores a scan for the current user. Scan id and timestamp are
// defaulted when absent; the user must already exist.
func (sh *ScanHandler) Add(c *gin.Context) {
	var scan types.Scan
	if err := c.ShouldBindJSON(&scan); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	stored, err := sh.userService.AddScan(c.Request.Context(), scan)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if stored == nil {
		RespondError(c, http.StatusNotFound, "User not found")
		return
	}
	RespondOK(c, gin.H{"success": true, "scan": stored})
}
