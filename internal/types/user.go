package types

// User is the stored aggregate for one identity: profile claims from the
// identity provider, onboarding preferences, and scan history.
type User struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	Picture          string   `json:"picture,omitempty"`
	Allergies        []string `json:"allergies,omitempty"`
	DietGoals        []string `json:"dietGoals,omitempty"`
	AvoidIngredients []string `json:"avoidIngredients,omitempty"`
	// CreatedAt is set on first create and never mutated afterwards.
	CreatedAt string `json:"createdAt"`
	// Scans is kept most-recent-first; new scans are always prepended.
	Scans []Scan `json:"scans"`
}
