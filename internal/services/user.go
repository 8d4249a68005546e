package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nikhilmurali32/SafeBites/internal/logger"
	"github.com/nikhilmurali32/SafeBites/internal/requestdata"
	"github.com/nikhilmurali32/SafeBites/internal/store"
	"github.com/nikhilmurali32/SafeBites/internal/types"
)

// UserService operates on the current authenticated user. Methods return
// (nil, nil) when the user record is absent; errors only signal a missing
// or unusable identity on the context.
type UserService interface {
	GetOrCreate(ctx context.Context) (*types.User, error)
	UpdatePreferences(ctx context.Context, prefs store.Preferences) (*types.User, error)
	ListScans(ctx context.Context, limit int) ([]types.Scan, error)
	AddScan(ctx context.Context, scan types.Scan) (*types.Scan, error)
	GetStats(ctx context.Context) (*types.Stats, error)
}

type userService struct {
	log       *logger.Logger
	userStore store.UserStore
}

func NewUserService(log *logger.Logger, userStore store.UserStore) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{log: serviceLog, userStore: userStore}
}

func (us *userService) identity(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		us.log.Warn("Request data not set in context")
		return nil, fmt.Errorf("request data not set in context")
	}
	if rd.UserID == "" {
		us.log.Warn("User id not set in request data")
		return nil, fmt.Errorf("user id not set in request data")
	}
	return rd, nil
}

// GetOrCreate resolves the current user: by subject id first, then by
// email (records created before the provider migrated subject ids), and
// finally creates the record from the provider claims. Idempotent.
func (us *userService) GetOrCreate(ctx context.Context) (*types.User, error) {
	rd, err := us.identity(ctx)
	if err != nil {
		return nil, err
	}

	if user := us.userStore.GetByID(rd.UserID); user != nil {
		return user, nil
	}
	if rd.Email != "" {
		if user := us.userStore.GetByEmail(rd.Email); user != nil {
			return user, nil
		}
	}

	name := rd.Name
	if name == "" {
		name = "User"
	}
	user := us.userStore.Upsert(store.UpsertParams{
		ID:      rd.UserID,
		Email:   rd.Email,
		Name:    name,
		Picture: rd.Picture,
	})
	us.log.Info("Created user record", "user_id", rd.UserID)
	return user, nil
}

func (us *userService) UpdatePreferences(ctx context.Context, prefs store.Preferences) (*types.User, error) {
	rd, err := us.identity(ctx)
	if err != nil {
		return nil, err
	}
	return us.userStore.UpdatePreferences(rd.UserID, prefs), nil
}

func (us *userService) ListScans(ctx context.Context, limit int) ([]types.Scan, error) {
	rd, err := us.identity(ctx)
	if err != nil {
		return nil, err
	}
	return us.userStore.ListScans(rd.UserID, limit), nil
}

// AddScan stores a scan for the current user, defaulting the id and
// timestamp when the caller left them out. The user must already exist;
// a scan never creates its owner.
func (us *userService) AddScan(ctx context.Context, scan types.Scan) (*types.Scan, error) {
	rd, err := us.identity(ctx)
	if err != nil {
		return nil, err
	}

	if scan.ID == "" {
		scan.ID = fmt.Sprintf("scan_%d", time.Now().UnixMilli())
	}
	if scan.Timestamp == "" {
		scan.Timestamp = time.Now().Format(time.RFC3339)
	}

	if user := us.userStore.AppendScan(rd.UserID, scan); user == nil {
		return nil, nil
	}
	return &scan, nil
}

func (us *userService) GetStats(ctx context.Context) (*types.Stats, error) {
	rd, err := us.identity(ctx)
	if err != nil {
		return nil, err
	}
	return us.userStore.GetStats(rd.UserID), nil
}
