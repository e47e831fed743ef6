// Package stats derives dashboard figures from the tracked state.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/utils"
)

// Monthly aggregates the tasks logged in one calendar month. The category
// breakdown counts completed tasks only; DailyCompletion has one row per day.
func Monthly(logs models.Logs, year int, month time.Month) models.MonthlyStats {
	key := utils.MonthKey(year, month)
	st := models.MonthlyStats{
		Month:             key,
		CategoryBreakdown: make(map[models.Category]int, len(models.Categories)),
	}
	for _, c := range models.Categories {
		st.CategoryBreakdown[c] = 0
	}

	days := utils.DaysInMonth(year, month)
	st.DailyCompletion = make([]models.DailyCompletionRow, days)
	for d := 1; d <= days; d++ {
		st.DailyCompletion[d-1].Date = utils.FormatDate(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
	}

	for date, log := range logs {
		if !strings.HasPrefix(date, key+"-") {
			continue
		}
		t, err := utils.ParseDate(date)
		if err != nil {
			continue
		}
		for _, task := range log.Tasks {
			st.TotalTasks++
			if !task.Completed {
				continue
			}
			st.CompletedTasks++
			st.CategoryBreakdown[task.Category]++
			st.DailyCompletion[t.Day()-1].Count++
		}
	}
	if st.TotalTasks > 0 {
		st.CompletionRate = float64(st.CompletedTasks) / float64(st.TotalTasks) * 100
	}
	return st
}

// DayProgress is one cell of the activity heatmap.
type DayProgress struct {
	Date      string
	Completed int
	Total     int
	Progress  float64
}

func (d DayProgress) HasTasks() bool { return d.Total > 0 }

// LastNDays returns the n days ending at today, oldest first.
func LastNDays(logs models.Logs, today string, n int) ([]DayProgress, error) {
	out := make([]DayProgress, 0, n)
	for i := n - 1; i >= 0; i-- {
		date, err := utils.ShiftDate(today, -i)
		if err != nil {
			return nil, err
		}
		day := DayProgress{Date: date}
		for _, t := range logs[date].Tasks {
			day.Total++
			if t.Completed {
				day.Completed++
			}
		}
		if day.Total > 0 {
			day.Progress = float64(day.Completed) / float64(day.Total) * 100
		}
		out = append(out, day)
	}
	return out, nil
}

// Summary holds the all-time counters shown on the dashboard.
type Summary struct {
	TotalTasks            int
	CompletedTasks        int
	CategoryBreakdown     map[models.Category]int
	MonthlyGoals          int
	MonthlyGoalsCompleted int
	YearlyGoals           int
	YearlyGoalsCompleted  int
	// ActiveGoals lists up to three incomplete goals in creation order.
	ActiveGoals         []models.Goal
	ActiveChallenges    int
	CompletedChallenges int
	ActiveHabits        int
}

const maxActiveGoals = 3

func Overview(state models.State) Summary {
	s := Summary{CategoryBreakdown: map[models.Category]int{}}
	for _, log := range state.Logs {
		for _, t := range log.Tasks {
			s.TotalTasks++
			if t.Completed {
				s.CompletedTasks++
				s.CategoryBreakdown[t.Category]++
			}
		}
	}
	for _, g := range state.Goals {
		switch g.Type {
		case models.GoalMonthly:
			s.MonthlyGoals++
			if g.Completed {
				s.MonthlyGoalsCompleted++
			}
		case models.GoalYearly:
			s.YearlyGoals++
			if g.Completed {
				s.YearlyGoalsCompleted++
			}
		}
		if !g.Completed && len(s.ActiveGoals) < maxActiveGoals {
			s.ActiveGoals = append(s.ActiveGoals, g)
		}
	}
	for _, c := range state.Challenges {
		switch c.Status {
		case models.ChallengeActive:
			s.ActiveChallenges++
		case models.ChallengeCompleted:
			s.CompletedChallenges++
		}
	}
	s.ActiveHabits = len(state.Habits)
	return s
}

// Match is a task found by SearchTasks.
type Match struct {
	Date string
	Task models.Task
}

// SearchTasks finds tasks whose text contains term, ignoring case. Results are
// ordered newest date first, then by position within the day.
func SearchTasks(logs models.Logs, term string) []Match {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	dates := make([]string, 0, len(logs))
	for date := range logs {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	var out []Match
	for _, date := range dates {
		for _, t := range logs[date].Tasks {
			if strings.Contains(strings.ToLower(t.Text), term) {
				out = append(out, Match{Date: date, Task: t})
			}
		}
	}
	return out
}

// HabitMonthCount counts the habit's completions within the month.
func HabitMonthCount(h models.MonthlyHabit, year int, month time.Month) int {
	return h.CompletionsInMonth(utils.MonthKey(year, month))
}

// ChallengeDaysReached counts the dates on which every rule was met.
func ChallengeDaysReached(c models.Challenge) int {
	return c.DaysReached()
}
