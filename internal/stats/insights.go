package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/utils"
)

// Insighter turns monthly statistics into a summary, recommendations and a
// 0-100 productivity score.
type Insighter interface {
	Insights(ctx context.Context, st models.MonthlyStats) (models.AIInsights, error)
}

// HeuristicInsighter derives insights from fixed thresholds without any
// external service.
type HeuristicInsighter struct {
	// Now bounds the days counted for consistency in the current month.
	Now func() time.Time
}

var _ Insighter = HeuristicInsighter{}

const (
	strongRate      = 80.0
	weakRate        = 50.0
	urgentShare     = 40.0
	consistencyGoal = 50.0
)

func (h HeuristicInsighter) Insights(ctx context.Context, st models.MonthlyStats) (models.AIInsights, error) {
	if err := ctx.Err(); err != nil {
		return models.AIInsights{}, err
	}
	if st.TotalTasks == 0 {
		return models.AIInsights{
			Summary:         fmt.Sprintf("No tasks were logged in %s.", st.Month),
			Recommendations: []string{"Start with one small task for today and build from there."},
		}, nil
	}

	consistency := h.consistency(st)
	score := int(math.Round((st.CompletionRate*7 + consistency*3) / 10))

	var recs []string
	summary := fmt.Sprintf("You completed %d of %d tasks (%.0f%%) in %s.",
		st.CompletedTasks, st.TotalTasks, st.CompletionRate, st.Month)
	switch {
	case st.CompletionRate >= strongRate:
		summary += " A strong month: keep the rhythm going."
	case st.CompletionRate < weakRate:
		summary += " Many tasks were left open."
		recs = append(recs, "Plan fewer tasks per day so each one gets finished.")
	}

	if st.CompletedTasks > 0 {
		urgent := float64(st.CategoryBreakdown[models.CategoryUrgent]) / float64(st.CompletedTasks) * 100
		if urgent > urgentShare {
			recs = append(recs, fmt.Sprintf("%.0f%% of finished work was urgent; schedule important tasks before they become urgent.", urgent))
		}
	}
	if st.CategoryBreakdown[models.CategoryHealth] == 0 {
		recs = append(recs, "No health tasks were completed; add one short health task to your week.")
	}
	if consistency < consistencyGoal {
		recs = append(recs, fmt.Sprintf("Tasks were completed on %.0f%% of days; a daily habit helps keep momentum.", consistency))
	}
	if len(recs) == 0 {
		recs = append(recs, "Raise the bar with a new monthly goal.")
	}

	return models.AIInsights{Summary: summary, Recommendations: recs, ProductivityScore: score}, nil
}

// consistency is the share of elapsed days with at least one completed task.
func (h HeuristicInsighter) consistency(st models.MonthlyStats) float64 {
	days := len(st.DailyCompletion)
	if h.Now != nil {
		if today := utils.FormatDate(h.Now()); today[:7] == st.Month {
			if t, err := utils.ParseDate(today); err == nil {
				days = t.Day()
			}
		}
	}
	if days == 0 {
		return 0
	}
	active := 0
	for i, row := range st.DailyCompletion {
		if i >= days {
			break
		}
		if row.Count > 0 {
			active++
		}
	}
	return float64(active) / float64(days) * 100
}
