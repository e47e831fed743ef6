package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/utils"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Username checks the format of a username and returns its stored form.
func Username(raw string) (string, error) {
	name := models.NormalizeUsername(raw)
	if len(name) < constants.UsernameMinLength {
		return "", errors.Validation("username", "must be at least %d characters", constants.UsernameMinLength)
	}
	if !usernamePattern.MatchString(name) {
		return "", errors.Validation("username", "may only contain letters, numbers, underscores and hyphens")
	}
	return name, nil
}

// RequiredText trims s and rejects empty or oversized values.
func RequiredText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.Validation(field, "is required")
	}
	if len(s) > constants.MaxTextLength {
		return "", errors.Validation(field, "must be at most %d characters", constants.MaxTextLength)
	}
	return s, nil
}

// Date rejects anything that is not a YYYY-MM-DD date.
func Date(field, s string) error {
	if !utils.ValidateDateFormat(s) {
		return errors.Validation(field, "%q is not a YYYY-MM-DD date", s)
	}
	return nil
}

// Theme checks s against the known theme keys.
func Theme(s string) error {
	for _, t := range constants.Themes {
		if t == s {
			return nil
		}
	}
	return errors.Validation("theme", "%q is not one of %s", s, strings.Join(constants.Themes, ", "))
}

// Duration requires a positive day count.
func Duration(days int) error {
	if days <= 0 {
		return errors.Validation("duration", "must be at least 1 day")
	}
	return nil
}

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateID         ConflictType = "duplicate_id"
	ConflictDuplicateCompletion ConflictType = "duplicate_completion"
	ConflictInvalidDate         ConflictType = "invalid_date"
	ConflictMismatchedLogDate   ConflictType = "mismatched_log_date"
	ConflictMissingID           ConflictType = "missing_id"
	ConflictEmptyRules          ConflictType = "empty_rules"
)

// Conflict represents a detected problem in a snapshot
type Conflict struct {
	Type        ConflictType
	Kind        models.Kind
	Description string
	IDs         []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- [%s] %s\n", conflict.Kind, conflict.Description)
	}
	return b.String()
}

// Validator checks snapshots before they are imported.
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateSnapshot reports structural problems in every category present in snap.
func (v *Validator) ValidateSnapshot(snap models.Snapshot) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	dates := make([]string, 0, len(snap.Logs))
	for date := range snap.Logs {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	taskIDs := map[string][]string{}
	for _, date := range dates {
		log := snap.Logs[date]
		if !utils.ValidateDateFormat(date) {
			result.add(ConflictInvalidDate, models.KindLogs, fmt.Sprintf("Log key %q is not a date", date), date)
		}
		if log.Date != "" && log.Date != date {
			result.add(ConflictMismatchedLogDate, models.KindLogs,
				fmt.Sprintf("Log %s carries date %s", date, log.Date), date)
		}
		for _, t := range log.Tasks {
			if t.ID == "" {
				result.add(ConflictMissingID, models.KindLogs, fmt.Sprintf("Task %q on %s has no id", t.Text, date))
				continue
			}
			taskIDs[t.ID] = append(taskIDs[t.ID], date)
		}
	}
	for _, id := range sortedKeys(taskIDs) {
		if len(taskIDs[id]) > 1 {
			result.add(ConflictDuplicateID, models.KindLogs,
				fmt.Sprintf("Task id %s appears %d times (%v)", id, len(taskIDs[id]), taskIDs[id]), id)
		}
	}

	habitIDs := make([]string, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		habitIDs = append(habitIDs, h.ID)
		seen := map[string]bool{}
		for _, d := range h.Completions {
			if seen[d] {
				result.add(ConflictDuplicateCompletion, models.KindHabits,
					fmt.Sprintf("Habit %q lists %s more than once", h.Text, d), h.ID)
				break
			}
			seen[d] = true
		}
	}
	result.checkIDs(models.KindHabits, habitIDs)

	goalIDs := make([]string, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		goalIDs = append(goalIDs, g.ID)
	}
	result.checkIDs(models.KindGoals, goalIDs)

	challengeIDs := make([]string, 0, len(snap.Challenges))
	for _, c := range snap.Challenges {
		challengeIDs = append(challengeIDs, c.ID)
		if len(c.Subtasks) == 0 {
			result.add(ConflictEmptyRules, models.KindChallenges,
				fmt.Sprintf("Challenge %q has no rules", c.Title), c.ID)
		}
		if c.StartDate != "" && !utils.ValidateDateFormat(c.StartDate) {
			result.add(ConflictInvalidDate, models.KindChallenges,
				fmt.Sprintf("Challenge %q start date %q is not a date", c.Title, c.StartDate), c.ID)
		}
	}
	result.checkIDs(models.KindChallenges, challengeIDs)

	return result
}

func (vr *ValidationResult) add(t ConflictType, kind models.Kind, desc string, ids ...string) {
	vr.Conflicts = append(vr.Conflicts, Conflict{Type: t, Kind: kind, Description: desc, IDs: ids})
}

func (vr *ValidationResult) checkIDs(kind models.Kind, ids []string) {
	count := map[string]int{}
	for _, id := range ids {
		if id == "" {
			vr.add(ConflictMissingID, kind, fmt.Sprintf("A %s entry has no id", kind))
			continue
		}
		count[id]++
	}
	for _, id := range sortedKeys(count) {
		if count[id] > 1 {
			vr.add(ConflictDuplicateID, kind, fmt.Sprintf("Id %s appears %d times", id, count[id]), id)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AutoFix repairs what can be repaired without guessing: duplicate habit
// completions are collapsed and repeated ids keep their first occurrence.
// It returns the fixed snapshot and the actions taken.
func AutoFix(conflicts []Conflict, snap models.Snapshot) (models.Snapshot, []FixAction) {
	actions := []FixAction{}
	if snap.Habits != nil {
		snap.Habits = append([]models.MonthlyHabit{}, snap.Habits...)
	}
	for _, conflict := range conflicts {
		switch {
		case conflict.Type == ConflictDuplicateCompletion:
			for i, h := range snap.Habits {
				if h.ID != conflict.IDs[0] {
					continue
				}
				before := len(h.Completions)
				snap.Habits[i].Completions = dedupe(h.Completions)
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Removed %d duplicate completion(s) from habit %q", before-len(snap.Habits[i].Completions), h.Text),
					SourceConflict: conflict,
				})
				break
			}
		case conflict.Type == ConflictDuplicateID && conflict.Kind == models.KindHabits:
			snap.Habits = keepFirst(snap.Habits, func(h models.MonthlyHabit) string { return h.ID })
			actions = append(actions, FixAction{Action: fmt.Sprintf("Kept first habit with id %s", conflict.IDs[0]), SourceConflict: conflict})
		case conflict.Type == ConflictDuplicateID && conflict.Kind == models.KindGoals:
			snap.Goals = keepFirst(snap.Goals, func(g models.Goal) string { return g.ID })
			actions = append(actions, FixAction{Action: fmt.Sprintf("Kept first goal with id %s", conflict.IDs[0]), SourceConflict: conflict})
		case conflict.Type == ConflictDuplicateID && conflict.Kind == models.KindChallenges:
			snap.Challenges = keepFirst(snap.Challenges, func(c models.Challenge) string { return c.ID })
			actions = append(actions, FixAction{Action: fmt.Sprintf("Kept first challenge with id %s", conflict.IDs[0]), SourceConflict: conflict})
		}
	}
	return snap, actions
}

func dedupe(dates []string) []string {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func keepFirst[T any](items []T, id func(T) string) []T {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := id(item)
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
