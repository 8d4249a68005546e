package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nikhilmurali32/SafeBites/internal/clients/rediscache"
	"github.com/nikhilmurali32/SafeBites/internal/logger"
)

// RecommendationService fronts the analysis backend's recommendation
// endpoint with an optional cache. Recommendations for a given product and
// score are stable enough to reuse, and the backend call is slow.
type RecommendationService struct {
	log    *logger.Logger
	client AnalysisClient
	cache  rediscache.Cache
}

// NewRecommendationService accepts a nil cache; every lookup then goes to
// the backend.
func NewRecommendationService(log *logger.Logger, client AnalysisClient, cache rediscache.Cache) *RecommendationService {
	serviceLog := log.With("service", "RecommendationService")
	return &RecommendationService{log: serviceLog, client: client, cache: cache}
}

func recommendationKey(productName string, score float64) string {
	return fmt.Sprintf("reco:%s:%g", productName, score)
}

func (rs *RecommendationService) Get(ctx context.Context, productName string, score float64) (*RecommendationResult, error) {
	key := recommendationKey(productName, score)

	if rs.cache != nil {
		if raw, ok := rs.cache.Get(ctx, key); ok {
			var cached RecommendationResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				rs.log.Debug("Recommendation cache hit", "product", productName)
				return &cached, nil
			}
			rs.log.Warn("Discarding undecodable cache entry", "key", key)
		}
	}

	result, err := rs.client.Recommendations(ctx, productName, score)
	if err != nil {
		return nil, err
	}

	if rs.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			rs.cache.Set(ctx, key, raw)
		}
	}
	return result, nil
}
