package types

// Database is the root aggregate persisted as a single JSON document.
// Every user is keyed by its own ID.
type Database struct {
	Users map[string]*User `json:"users"`
}

func NewDatabase() *Database {
	return &Database{Users: map[string]*User{}}
}
