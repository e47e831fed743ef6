package models

// MonthlyStats aggregates task activity for one month.
type MonthlyStats struct {
	Month             string               `json:"month"` // YYYY-MM
	TotalTasks        int                  `json:"totalTasks"`
	CompletedTasks    int                  `json:"completedTasks"`
	CompletionRate    float64              `json:"completionRate"`
	CategoryBreakdown map[Category]int     `json:"categoryBreakdown"`
	DailyCompletion   []DailyCompletionRow `json:"dailyCompletion"`
}

type DailyCompletionRow struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AIInsights is produced by an insights generator from MonthlyStats.
type AIInsights struct {
	Summary           string   `json:"summary"`
	Recommendations   []string `json:"recommendations"`
	ProductivityScore int      `json:"productivityScore"`
}
