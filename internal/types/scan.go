package types

const (
	IngredientStatusSafe     = "safe"
	IngredientStatusModerate = "moderate"
	IngredientStatusRisky    = "risky"
)

type Ingredient struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Scan is one completed product analysis. SafetyScore is 0-100; IsSafe is
// supplied by the caller and stored as-is, the store never derives it from
// the score.
type Scan struct {
	ID          string       `json:"id"`
	ProductName string       `json:"productName"`
	Brand       string       `json:"brand"`
	Image       string       `json:"image"`
	SafetyScore int          `json:"safetyScore"`
	IsSafe      bool         `json:"isSafe"`
	Timestamp   string       `json:"timestamp"`
	Ingredients []Ingredient `json:"ingredients"`
}
