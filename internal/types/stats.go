package types

// Stats is the dashboard summary derived from a user's scan history.
// AverageScore is the rounded mean over all scans, not just today's.
type Stats struct {
	TotalScans   int `json:"totalScans"`
	TodayScans   int `json:"todayScans"`
	SafeToday    int `json:"safeToday"`
	RiskyToday   int `json:"riskyToday"`
	AverageScore int `json:"averageScore"`
}
