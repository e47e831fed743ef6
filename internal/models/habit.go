package models

import "strings"

// MonthlyHabit tracks completion dates across all months. Completions is a set.
type MonthlyHabit struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Category    Category `json:"category"`
	Completions []string `json:"completions"` // YYYY-MM-DD, no duplicates
	CreatedAt   string   `json:"createdAt"`
}

// HasCompletion reports whether date is in the completion set.
func (h MonthlyHabit) HasCompletion(date string) bool {
	for _, d := range h.Completions {
		if d == date {
			return true
		}
	}
	return false
}

// ToggleCompletion returns a copy of h with date added to or removed from the
// completion set. Any duplicate entries already present are collapsed.
func (h MonthlyHabit) ToggleCompletion(date string) MonthlyHabit {
	present := h.HasCompletion(date)
	seen := make(map[string]bool, len(h.Completions))
	next := make([]string, 0, len(h.Completions)+1)
	for _, d := range h.Completions {
		if seen[d] || (present && d == date) {
			continue
		}
		seen[d] = true
		next = append(next, d)
	}
	if !present {
		next = append(next, date)
	}
	h.Completions = next
	return h
}

// CompletionsInMonth counts completions whose date starts with month (YYYY-MM).
func (h MonthlyHabit) CompletionsInMonth(month string) int {
	n := 0
	for _, d := range h.Completions {
		if strings.HasPrefix(d, month+"-") {
			n++
		}
	}
	return n
}

// DocumentID implements Identifiable.
func (h MonthlyHabit) DocumentID() string { return h.ID }
