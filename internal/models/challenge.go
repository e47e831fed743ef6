package models

type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	// ChallengeFailed is never entered by the current rules.
	ChallengeFailed ChallengeStatus = "failed"
)

// ChallengeCompletion records one date's progress. Checked holds the rule IDs
// ticked on that date.
type ChallengeCompletion struct {
	Date     string   `json:"date"`
	Progress float64  `json:"progress"` // 0 to 100
	Checked  []string `json:"checked,omitempty"`
}

// Challenge is a fixed-length commitment ("duel") with an immutable daily rule set.
type Challenge struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	DurationDays int                   `json:"durationDays"`
	StartDate    string                `json:"startDate"`
	Completions  []ChallengeCompletion `json:"completions"`
	Status       ChallengeStatus       `json:"status"`
	CreatedAt    string                `json:"createdAt"`
	Subtasks     []Subtask             `json:"subtasks"` // rules
}

// DocumentID implements Identifiable.
func (c Challenge) DocumentID() string { return c.ID }

// DaysReached counts dates whose progress is 100.
func (c Challenge) DaysReached() int {
	n := 0
	for _, comp := range c.Completions {
		if comp.Progress == 100 {
			n++
		}
	}
	return n
}

// CompletionFor returns the record for date.
func (c Challenge) CompletionFor(date string) (ChallengeCompletion, bool) {
	for _, comp := range c.Completions {
		if comp.Date == date {
			return comp, true
		}
	}
	return ChallengeCompletion{}, false
}

// NextStatus applies the status transitions for the current completion records.
// Failed is left untouched.
func (c Challenge) NextStatus() ChallengeStatus {
	reached := c.DaysReached()
	switch {
	case c.Status == ChallengeFailed:
		return c.Status
	case reached >= c.DurationDays:
		return ChallengeCompleted
	case c.Status == ChallengeCompleted:
		return ChallengeActive
	}
	return c.Status
}

// ToggleRule flips rule ruleID for date, recomputes that date's progress, mirrors
// the rule flags to the date's state and re-evaluates the status. The second
// result is false when ruleID is not one of the challenge's rules.
func (c Challenge) ToggleRule(ruleID, date string) (Challenge, bool) {
	if findSubtask(c.Subtasks, ruleID) < 0 {
		return c, false
	}

	idx := -1
	for i, comp := range c.Completions {
		if comp.Date == date {
			idx = i
			break
		}
	}

	var checked map[string]bool
	if idx >= 0 {
		checked = c.checkedSet(c.Completions[idx])
	} else {
		checked = map[string]bool{}
	}
	checked[ruleID] = !checked[ruleID]

	done := 0
	ids := make([]string, 0, len(c.Subtasks))
	rules := cloneSubtasks(c.Subtasks)
	for i, r := range rules {
		rules[i].Completed = checked[r.ID]
		if checked[r.ID] {
			done++
			ids = append(ids, r.ID)
		}
	}

	var progress float64
	if len(rules) > 0 {
		progress = float64(done) / float64(len(rules)) * 100
	}

	completions := make([]ChallengeCompletion, len(c.Completions))
	copy(completions, c.Completions)
	record := ChallengeCompletion{Date: date, Progress: progress, Checked: ids}
	if idx >= 0 {
		completions[idx] = record
	} else {
		completions = append(completions, record)
	}

	c.Subtasks = rules
	c.Completions = completions
	c.Status = c.NextStatus()
	return c, true
}

// checkedSet reconstructs the ticked rules for a record. Records written before
// per-date checks existed are seeded from their progress or the rule flags.
func (c Challenge) checkedSet(comp ChallengeCompletion) map[string]bool {
	set := make(map[string]bool, len(c.Subtasks))
	switch {
	case comp.Checked != nil:
		for _, id := range comp.Checked {
			set[id] = true
		}
	case comp.Progress <= 0:
	case comp.Progress >= 100:
		for _, r := range c.Subtasks {
			set[r.ID] = true
		}
	default:
		for _, r := range c.Subtasks {
			if r.Completed {
				set[r.ID] = true
			}
		}
	}
	return set
}
