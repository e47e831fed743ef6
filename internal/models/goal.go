package models

import "fmt"

type GoalType string

const (
	GoalMonthly GoalType = "monthly"
	GoalYearly  GoalType = "yearly"
)

// ParseGoalType validates a goal type string.
func ParseGoalType(s string) (GoalType, error) {
	switch GoalType(s) {
	case GoalMonthly, GoalYearly:
		return GoalType(s), nil
	}
	return "", fmt.Errorf("unknown goal type %q (expected monthly or yearly)", s)
}

type Goal struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Description string    `json:"description"`
	Type        GoalType  `json:"type"`
	Completed   bool      `json:"completed"`
	CreatedAt   string    `json:"createdAt"`
	Subtasks    []Subtask `json:"subtasks"`
}

// Progress returns the completion percentage. With subtasks it is the completed
// ratio; without, 0 or 100 from the completion flag.
func (g Goal) Progress() float64 {
	if len(g.Subtasks) == 0 {
		if g.Completed {
			return 100
		}
		return 0
	}
	return float64(CompletedSubtasks(g.Subtasks)) / float64(len(g.Subtasks)) * 100
}

// DocumentID implements Identifiable.
func (g Goal) DocumentID() string { return g.ID }
