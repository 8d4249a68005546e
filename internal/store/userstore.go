package store

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nikhilmurali32/SafeBites/internal/logger"
	"github.com/nikhilmurali32/SafeBites/internal/types"
)

// UserStore persists the whole user database as one JSON document. Every
// operation loads a fresh snapshot of the file; every mutation writes the
// full document back. Absence of a user is a normal result (nil), never an
// error.
type UserStore interface {
	GetByID(id string) *types.User
	GetByEmail(email string) *types.User
	Upsert(params UpsertParams) *types.User
	AppendScan(userID string, scan types.Scan) *types.User
	ListScans(userID string, limit int) []types.Scan
	UpdatePreferences(userID string, prefs Preferences) *types.User
	GetStats(userID string) *types.Stats
}

// UpsertParams carries the fields merged over an existing record. ID and
// Email are required. Name and Picture overwrite only when non-empty, the
// preference slices only when non-nil. Scans, when non-nil, replaces the
// stored history outright; CreatedAt is always kept from the existing record.
type UpsertParams struct {
	ID               string
	Email            string
	Name             string
	Picture          string
	Allergies        []string
	DietGoals        []string
	AvoidIngredients []string
	Scans            []types.Scan
}

// Preferences is a partial update: nil fields are left untouched, non-nil
// fields (including empty slices) replace the stored value.
type Preferences struct {
	Allergies        []string
	DietGoals        []string
	AvoidIngredients []string
}

type fileStore struct {
	path string
	log  *logger.Logger

	// Serializes callers within this process. The file itself has no
	// cross-process arbitration; two processes can still lose updates.
	mu sync.Mutex
}

func NewFileStore(path string, baseLog *logger.Logger) UserStore {
	storeLog := baseLog.With("store", "UserStore", "path", path)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			storeLog.Warn("Could not create data directory", "error", err)
		}
	}
	return &fileStore{path: path, log: storeLog}
}

// readDatabase loads the backing file. Any failure, including a missing
// file on first run and malformed JSON, degrades to an empty database so
// the store stays available.
func (fs *fileStore) readDatabase() *types.Database {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.log.Warn("Error reading database, starting empty", "error", err)
		}
		return types.NewDatabase()
	}
	var db types.Database
	if err := json.Unmarshal(data, &db); err != nil {
		fs.log.Warn("Error decoding database, starting empty", "error", err)
		return types.NewDatabase()
	}
	if db.Users == nil {
		db.Users = map[string]*types.User{}
	}
	return &db
}

// writeDatabase overwrites the backing file with the full document. Write
// failures are logged and swallowed; callers still get the in-memory result.
func (fs *fileStore) writeDatabase(db *types.Database) {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		fs.log.Error("Error encoding database", "error", err)
		return
	}
	if err := os.WriteFile(fs.path, data, 0o644); err != nil {
		fs.log.Error("Error writing database", "error", err)
	}
}

func (fs *fileStore) GetByID(id string) *types.User {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.readDatabase().Users[id]
}

func (fs *fileStore) GetByEmail(email string) *types.User {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	// Linear scan, first match. Email uniqueness is assumed, not enforced;
	// fine while the user count stays small.
	for _, user := range fs.readDatabase().Users {
		if user.Email == email {
			return user
		}
	}
	return nil
}

func (fs *fileStore) Upsert(params UpsertParams) *types.User {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	db := fs.readDatabase()
	existing := db.Users[params.ID]

	user := &types.User{
		ID:        params.ID,
		Email:     params.Email,
		CreatedAt: time.Now().Format(time.RFC3339),
		Scans:     []types.Scan{},
	}
	if existing != nil {
		*user = *existing
		user.ID = params.ID
		user.Email = params.Email
		if user.CreatedAt == "" {
			user.CreatedAt = time.Now().Format(time.RFC3339)
		}
	}
	if params.Name != "" {
		user.Name = params.Name
	}
	if params.Picture != "" {
		user.Picture = params.Picture
	}
	if params.Allergies != nil {
		user.Allergies = params.Allergies
	}
	if params.DietGoals != nil {
		user.DietGoals = params.DietGoals
	}
	if params.AvoidIngredients != nil {
		user.AvoidIngredients = params.AvoidIngredients
	}
	if params.Scans != nil {
		user.Scans = params.Scans
	}
	if user.Scans == nil {
		user.Scans = []types.Scan{}
	}

	db.Users[params.ID] = user
	fs.writeDatabase(db)
	return user
}

func (fs *fileStore) AppendScan(userID string, scan types.Scan) *types.User {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	db := fs.readDatabase()
	user := db.Users[userID]
	if user == nil {
		return nil
	}

	// Most recent first.
	user.Scans = append([]types.Scan{scan}, user.Scans...)

	db.Users[userID] = user
	fs.writeDatabase(db)
	return user
}

func (fs *fileStore) ListScans(userID string, limit int) []types.Scan {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	user := fs.readDatabase().Users[userID]
	if user == nil {
		return []types.Scan{}
	}
	if limit > 0 && limit < len(user.Scans) {
		return user.Scans[:limit]
	}
	return user.Scans
}

func (fs *fileStore) UpdatePreferences(userID string, prefs Preferences) *types.User {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	db := fs.readDatabase()
	user := db.Users[userID]
	if user == nil {
		return nil
	}

	if prefs.Allergies != nil {
		user.Allergies = prefs.Allergies
	}
	if prefs.DietGoals != nil {
		user.DietGoals = prefs.DietGoals
	}
	if prefs.AvoidIngredients != nil {
		user.AvoidIngredients = prefs.AvoidIngredients
	}

	db.Users[userID] = user
	fs.writeDatabase(db)
	return user
}

func (fs *fileStore) GetStats(userID string) *types.Stats {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	user := fs.readDatabase().Users[userID]
	if user == nil {
		return nil
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &types.Stats{TotalScans: len(user.Scans)}
	totalScore := 0
	for _, scan := range user.Scans {
		totalScore += scan.SafetyScore
		ts, err := time.Parse(time.RFC3339, scan.Timestamp)
		if err != nil {
			continue
		}
		if ts.In(now.Location()).Before(todayStart) {
			continue
		}
		stats.TodayScans++
		if scan.IsSafe {
			stats.SafeToday++
		} else {
			stats.RiskyToday++
		}
	}
	if len(user.Scans) > 0 {
		stats.AverageScore = int(math.Round(float64(totalScore) / float64(len(user.Scans))))
	}
	return stats
}
