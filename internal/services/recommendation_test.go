package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nikhilmurali32/SafeBites/internal/logger"
)

type fakeCache struct {
	entries map[string][]byte
	sets    int
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	raw, ok := f.entries[key]
	return raw, ok
}

func (f *fakeCache) Set(_ context.Context, key string, payload []byte) {
	f.entries[key] = payload
	f.sets++
}

func (f *fakeCache) Close() error { return nil }

type fakeAnalysisClient struct {
	calls  int
	result *RecommendationResult
	err    error
}

func (f *fakeAnalysisClient) Health(context.Context) error { return nil }

func (f *fakeAnalysisClient) Analyze(context.Context, []byte, string, string) (*AnalysisResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeAnalysisClient) Recommendations(context.Context, string, float64) (*RecommendationResult, error) {
	f.calls++
	return f.result, f.err
}

func TestRecommendationServiceCachesResults(t *testing.T) {
	log, err := logger.New("development")
	require.NoError(t, err)

	client := &fakeAnalysisClient{result: &RecommendationResult{
		Recommendations: []Recommendation{{ProductName: "Dark Choco", HealthScore: "82", Reason: "less sugar"}},
	}}
	cache := &fakeCache{entries: map[string][]byte{}}
	svc := NewRecommendationService(log, client, cache)

	first, err := svc.Get(context.Background(), "Choco Bar", 42)
	require.NoError(t, err)
	require.Len(t, first.Recommendations, 1)
	require.Equal(t, 1, client.calls)
	require.Equal(t, 1, cache.sets)

	// Second lookup is served from the cache.
	second, err := svc.Get(context.Background(), "Choco Bar", 42)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, client.calls)
}

func TestRecommendationServiceIgnoresCorruptCacheEntry(t *testing.T) {
	log, err := logger.New("development")
	require.NoError(t, err)

	client := &fakeAnalysisClient{result: &RecommendationResult{}}
	cache := &fakeCache{entries: map[string][]byte{
		recommendationKey("Choco Bar", 42): []byte("{broken"),
	}}
	svc := NewRecommendationService(log, client, cache)

	_, err = svc.Get(context.Background(), "Choco Bar", 42)
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)
}

func TestRecommendationServiceWithoutCache(t *testing.T) {
	log, err := logger.New("development")
	require.NoError(t, err)

	client := &fakeAnalysisClient{result: &RecommendationResult{}}
	svc := NewRecommendationService(log, client, nil)

	_, err = svc.Get(context.Background(), "Choco Bar", 42)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "Choco Bar", 42)
	require.NoError(t, err)
	require.Equal(t, 2, client.calls)
}
