package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikhilmurali32/SafeBites/internal/logger"
	"github.com/nikhilmurali32/SafeBites/internal/requestdata"
	"github.com/nikhilmurali32/SafeBites/internal/store"
	"github.com/nikhilmurali32/SafeBites/internal/types"
)

func newTestUserService(t *testing.T) UserService {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)
	userStore := store.NewFileStore(filepath.Join(t.TempDir(), "users.json"), log)
	return NewUserService(log, userStore)
}

func authedCtx(rd *requestdata.RequestData) context.Context {
	return requestdata.WithRequestData(context.Background(), rd)
}

func TestGetOrCreateRequiresIdentity(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.GetOrCreate(context.Background())
	require.Error(t, err)

	_, err = svc.GetOrCreate(authedCtx(&requestdata.RequestData{Email: "x@example.com"}))
	require.Error(t, err)
}

func TestGetOrCreateCreatesOnce(t *testing.T) {
	svc := newTestUserService(t)
	ctx := authedCtx(&requestdata.RequestData{
		UserID:  "auth0|42",
		Email:   "ana@example.com",
		Name:    "Ana",
		Picture: "https://img.example/ana.png",
	})

	first, err := svc.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, "auth0|42", first.ID)
	require.Equal(t, "Ana", first.Name)
	require.Equal(t, "https://img.example/ana.png", first.Picture)

	second, err := svc.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestGetOrCreateFallsBackToEmail(t *testing.T) {
	svc := newTestUserService(t)

	// Record created under the provider's old subject id.
	_, err := svc.GetOrCreate(authedCtx(&requestdata.RequestData{
		UserID: "google-oauth2|old",
		Email:  "ana@example.com",
		Name:   "Ana",
	}))
	require.NoError(t, err)

	// Same email, new subject id: must resolve to the existing record.
	found, err := svc.GetOrCreate(authedCtx(&requestdata.RequestData{
		UserID: "auth0|new",
		Email:  "ana@example.com",
		Name:   "Ana",
	}))
	require.NoError(t, err)
	require.Equal(t, "google-oauth2|old", found.ID)
}

func TestGetOrCreateDefaultsName(t *testing.T) {
	svc := newTestUserService(t)

	user, err := svc.GetOrCreate(authedCtx(&requestdata.RequestData{UserID: "u1", Email: "u1@example.com"}))
	require.NoError(t, err)
	require.Equal(t, "User", user.Name)
}

func TestAddScanDefaultsIDAndTimestamp(t *testing.T) {
	svc := newTestUserService(t)
	ctx := authedCtx(&requestdata.RequestData{UserID: "u1", Email: "u1@example.com", Name: "Ana"})

	_, err := svc.GetOrCreate(ctx)
	require.NoError(t, err)

	stored, err := svc.AddScan(ctx, types.Scan{ProductName: "Choco Bar", SafetyScore: 55})
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.True(t, strings.HasPrefix(stored.ID, "scan_"))

	_, parseErr := time.Parse(time.RFC3339, stored.Timestamp)
	require.NoError(t, parseErr)
}

func TestAddScanKeepsCallerFields(t *testing.T) {
	svc := newTestUserService(t)
	ctx := authedCtx(&requestdata.RequestData{UserID: "u1", Email: "u1@example.com", Name: "Ana"})

	_, err := svc.GetOrCreate(ctx)
	require.NoError(t, err)

	scan := types.Scan{ID: "scan_custom", Timestamp: "2026-08-01T10:00:00Z", ProductName: "Choco Bar"}
	stored, err := svc.AddScan(ctx, scan)
	require.NoError(t, err)
	require.Equal(t, "scan_custom", stored.ID)
	require.Equal(t, "2026-08-01T10:00:00Z", stored.Timestamp)
}

func TestAddScanMissingUser(t *testing.T) {
	svc := newTestUserService(t)
	ctx := authedCtx(&requestdata.RequestData{UserID: "ghost", Email: "ghost@example.com"})

	stored, err := svc.AddScan(ctx, types.Scan{ProductName: "Choco Bar"})
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestStatsAndScansFlow(t *testing.T) {
	svc := newTestUserService(t)
	ctx := authedCtx(&requestdata.RequestData{UserID: "u1", Email: "u1@example.com", Name: "Ana"})

	_, err := svc.GetOrCreate(ctx)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.AddScan(ctx, types.Scan{ID: id, SafetyScore: 90, IsSafe: true})
		require.NoError(t, err)
	}

	scans, err := svc.ListScans(ctx, 2)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	require.Equal(t, "c", scans[0].ID)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats)
	require.Equal(t, 3, stats.TotalScans)
	require.Equal(t, 90, stats.AverageScore)
}

func TestUpdatePreferencesMissingUser(t *testing.T) {
	svc := newTestUserService(t)
	ctx := authedCtx(&requestdata.RequestData{UserID: "ghost", Email: "ghost@example.com"})

	user, err := svc.UpdatePreferences(ctx, store.Preferences{Allergies: []string{"soy"}})
	require.NoError(t, err)
	require.Nil(t, user)
}
