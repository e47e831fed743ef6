package tracker

import (
	"fmt"
	"strings"

	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/validation"
)

func (t *Tracker) Challenges() []models.Challenge {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Challenge(nil), t.state.Challenges...)
}

func (t *Tracker) challengeIndex(id string) int {
	for i, c := range t.state.Challenges {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// StartChallenge creates an active challenge starting today. Blank rules are
// ignored; at least one rule is required.
func (t *Tracker) StartChallenge(title, description string, durationDays int, rules []string) (models.Challenge, error) {
	title, err := validation.RequiredText("title", title)
	if err != nil {
		return models.Challenge{}, err
	}
	if err := validation.Duration(durationDays); err != nil {
		return models.Challenge{}, err
	}
	var texts []string
	for _, r := range rules {
		if r = strings.TrimSpace(r); r != "" {
			texts = append(texts, r)
		}
	}
	if len(texts) == 0 {
		return models.Challenge{}, errors.Validation("rules", "at least one rule is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = fmt.Sprintf("Commit to %s for %d days.", title, durationDays)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	subtasks := make([]models.Subtask, 0, len(texts))
	for _, text := range texts {
		subtasks = append(subtasks, models.Subtask{ID: t.newID(), Text: text})
	}
	c := models.Challenge{
		ID:           t.newID(),
		Title:        title,
		Description:  description,
		DurationDays: durationDays,
		StartDate:    t.today(),
		Completions:  []models.ChallengeCompletion{},
		Status:       models.ChallengeActive,
		CreatedAt:    t.timestamp(),
		Subtasks:     subtasks,
	}
	t.state.Challenges = append(append([]models.Challenge{}, t.state.Challenges...), c)
	t.commit(models.KindChallenges)
	return c, nil
}

// ToggleChallengeRule flips ruleID for date and re-evaluates the challenge status.
func (t *Tracker) ToggleChallengeRule(id, ruleID, date string) (models.Challenge, error) {
	if err := validation.Date("date", date); err != nil {
		return models.Challenge{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.challengeIndex(id)
	if i < 0 {
		return models.Challenge{}, notFound("challenge", id)
	}
	c, ok := t.state.Challenges[i].ToggleRule(ruleID, date)
	if !ok {
		return models.Challenge{}, notFound("rule", ruleID)
	}
	challenges := append([]models.Challenge{}, t.state.Challenges...)
	challenges[i] = c
	t.state.Challenges = challenges
	t.commit(models.KindChallenges)
	return c, nil
}

// DeleteChallenge removes a challenge. Completed challenges require the deletion policy.
func (t *Tracker) DeleteChallenge(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.challengeIndex(id)
	if i < 0 {
		return notFound("challenge", id)
	}
	if t.state.Challenges[i].Status == models.ChallengeCompleted && !t.state.Profile.AllowCompletedDeletion {
		return t.refuse("challenge", "Deletion of completed duels is disabled in your profile settings.")
	}
	t.state.Challenges = removeAt(t.state.Challenges, i)
	t.commit(models.KindChallenges)
	return nil
}
