package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nikhilmurali32/SafeBites/internal/logger"
	"github.com/nikhilmurali32/SafeBites/internal/utils"
)

// AnalysisClient talks to the external analysis backend: the AI engine that
// turns a product image into ingredient-level safety judgments and serves
// recommended alternatives. All scoring lives over there; this is transport
// only.
type AnalysisClient interface {
	Health(ctx context.Context) error
	Analyze(ctx context.Context, image []byte, filename, userID string) (*AnalysisResult, error)
	Recommendations(ctx context.Context, productName string, score float64) (*RecommendationResult, error)
}

// IngredientScore mirrors one entry of the backend's ingredient_scores
// array. SafetyScore is the backend's coarse band: low, medium or high.
type IngredientScore struct {
	IngredientName string `json:"ingredient_name"`
	SafetyScore    string `json:"safety_score"`
	Reasoning      string `json:"reasoning"`
}

type AnalysisResult struct {
	OverallScore     float64           `json:"overall_score"`
	IngredientScores []IngredientScore `json:"ingredient_scores"`
}

type Recommendation struct {
	ProductName string `json:"product_name"`
	HealthScore string `json:"health_score"`
	Reason      string `json:"reason"`
}

type RecommendationResult struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// The backend wraps its agent outputs as JSON-encoded strings inside the
// response envelope.
type analyzeEnvelope struct {
	ScoringData json.RawMessage `json:"scoring_data"`
}

type recommendationEnvelope struct {
	ReccomenderData json.RawMessage `json:"reccomender_data"`
}

type analysisClient struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

func NewAnalysisClient(log *logger.Logger) AnalysisClient {
	clientLog := log.With("service", "AnalysisClient")
	baseURL := utils.GetEnv("ANALYSIS_BASE_URL", "http://127.0.0.1:8000", log)
	timeoutSec := utils.GetEnvAsInt("ANALYSIS_TIMEOUT_SECONDS", 120, log)
	maxRetries := utils.GetEnvAsInt("ANALYSIS_MAX_RETRIES", 3, log)
	return &analysisClient{
		log:        clientLog,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}
}

type analysisHTTPError struct {
	StatusCode int
	Body       string
}

func (e *analysisHTTPError) Error() string {
	return fmt.Sprintf("analysis backend http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *analysisHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	// +/- 20%
	low := base.Seconds() * 0.8
	high := base.Seconds() * 1.2
	return time.Duration((low + rand.Float64()*(high-low)) * float64(time.Second))
}

func (c *analysisClient) doOnce(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &analysisHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (c *analysisClient) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		raw, err := c.doOnce(ctx, method, path, contentType, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("analysis backend decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}
		if !isRetryableErr(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := backoff
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		c.log.Warn("Analysis backend request retrying",
			"method", method, "path", path, "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitterSleep(sleepFor)):
		}
		backoff *= 2
	}
	return nil
}

func (c *analysisClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", "", nil, nil)
}

func (c *analysisClient) Analyze(ctx context.Context, image []byte, filename, userID string) (*AnalysisResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if filename == "" {
		filename = "scan.jpg"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if userID != "" {
		if err := writer.WriteField("user_id", userID); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var envelope analyzeEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/analyze", writer.FormDataContentType(), buf.Bytes(), &envelope); err != nil {
		return nil, err
	}

	var result AnalysisResult
	if err := decodeWrapped(envelope.ScoringData, &result); err != nil {
		return nil, fmt.Errorf("invalid scoring_data: %w", err)
	}
	return &result, nil
}

func (c *analysisClient) Recommendations(ctx context.Context, productName string, score float64) (*RecommendationResult, error) {
	if productName == "" {
		return nil, fmt.Errorf("product name required")
	}
	// The backend spells the route "reccomendations"; kept as-is for
	// compatibility.
	path := fmt.Sprintf("/api/reccomendations/%s/%g", url.PathEscape(productName), score)

	var envelope recommendationEnvelope
	if err := c.do(ctx, http.MethodGet, path, "", nil, &envelope); err != nil {
		return nil, err
	}

	var result RecommendationResult
	if err := decodeWrapped(envelope.ReccomenderData, &result); err != nil {
		return nil, fmt.Errorf("invalid reccomender_data: %w", err)
	}
	return &result, nil
}

// decodeWrapped unmarshals a payload that the backend serves either as a
// JSON object or as a JSON-encoded string holding the object.
func decodeWrapped(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		return json.Unmarshal([]byte(inner), out)
	}
	return json.Unmarshal(raw, out)
}
