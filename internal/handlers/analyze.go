package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nikhilmurali32/SafeBites/internal/logger"
	"github.com/nikhilmurali32/SafeBites/internal/requestdata"
	"github.com/nikhilmurali32/SafeBites/internal/services"
)

// maxImageBytes caps the uploaded product photo; anything larger than this
// is not a label photo.
const maxImageBytes = 15 << 20

type AnalysisHandler struct {
	log             *logger.Logger
	client          services.AnalysisClient
	recommendations *services.RecommendationService
}

func NewAnalysisHandler(log *logger.Logger, client services.AnalysisClient, recommendations *services.RecommendationService) *AnalysisHandler {
	handlerLog := log.With("handler", "AnalysisHandler")
	return &AnalysisHandler{log: handlerLog, client: client, recommendations: recommendations}
}

// Analyze forwards the uploaded image to the analysis backend together
// with the authenticated user id, so the backend can weigh the user's
// stated allergies and goals.
func (ah *AnalysisHandler) Analyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Image file required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Could not read image")
		return
	}
	if len(image) > maxImageBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}

	userID := ""
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		userID = rd.UserID
	}

	result, err := ah.client.Analyze(c.Request.Context(), image, header.Filename, userID)
	if err != nil {
		ah.log.Error("Analysis request failed", "error", err)
		RespondError(c, http.StatusBadGateway, "Analysis backend unavailable")
		return
	}
	RespondOK(c, result)
}

// Recommendations returns healthier alternatives for a scanned product.
func (ah *AnalysisHandler) Recommendations(c *gin.Context) {
	productName := c.Param("product")
	score, err := strconv.ParseFloat(c.Param("score"), 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid score")
		return
	}

	result, err := ah.recommendations.Get(c.Request.Context(), productName, score)
	if err != nil {
		ah.log.Error("Recommendation request failed", "product", productName, "error", err)
		RespondError(c, http.StatusBadGateway, "Analysis backend unavailable")
		return
	}
	RespondOK(c, result)
}
