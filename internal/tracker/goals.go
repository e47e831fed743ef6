package tracker

import (
	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/validation"
)

// GoalEdit carries the editable goal fields; nil fields are kept.
type GoalEdit struct {
	Text        *string
	Description *string
}

func (t *Tracker) Goals() []models.Goal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Goal(nil), t.state.Goals...)
}

func (t *Tracker) goalIndex(id string) int {
	for i, g := range t.state.Goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// updateGoal applies fn to a copy of goal id and commits. mu must be held.
func (t *Tracker) updateGoal(id string, fn func(models.Goal) (models.Goal, error)) (models.Goal, error) {
	i := t.goalIndex(id)
	if i < 0 {
		return models.Goal{}, notFound("goal", id)
	}
	g, err := fn(t.state.Goals[i])
	if err != nil {
		return models.Goal{}, err
	}
	goals := append([]models.Goal{}, t.state.Goals...)
	goals[i] = g
	t.state.Goals = goals
	t.commit(models.KindGoals)
	return g, nil
}

func (t *Tracker) AddGoal(text string, goalType models.GoalType, description string) (models.Goal, error) {
	text, err := validation.RequiredText("text", text)
	if err != nil {
		return models.Goal{}, err
	}
	if goalType == "" {
		goalType = models.GoalMonthly
	}
	if goalType, err = models.ParseGoalType(string(goalType)); err != nil {
		return models.Goal{}, errors.Validation("type", "%v", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	g := models.Goal{
		ID:          t.newID(),
		Text:        text,
		Description: description,
		Type:        goalType,
		CreatedAt:   t.timestamp(),
		Subtasks:    []models.Subtask{},
	}
	t.state.Goals = append(append([]models.Goal{}, t.state.Goals...), g)
	t.commit(models.KindGoals)
	return g, nil
}

func (t *Tracker) EditGoal(id string, edit GoalEdit) (models.Goal, error) {
	var text string
	if edit.Text != nil {
		var err error
		if text, err = validation.RequiredText("text", *edit.Text); err != nil {
			return models.Goal{}, err
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateGoal(id, func(g models.Goal) (models.Goal, error) {
		if edit.Text != nil {
			g.Text = text
		}
		if edit.Description != nil {
			g.Description = *edit.Description
		}
		return g, nil
	})
}

func (t *Tracker) ToggleGoal(id string) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateGoal(id, func(g models.Goal) (models.Goal, error) {
		g.Completed = !g.Completed
		return g, nil
	})
}

// GoalProgress returns the completion percentage of goal id.
func (t *Tracker) GoalProgress(id string) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.goalIndex(id)
	if i < 0 {
		return 0, notFound("goal", id)
	}
	return t.state.Goals[i].Progress(), nil
}

// DeleteGoal removes a goal. Completed goals require the deletion policy.
func (t *Tracker) DeleteGoal(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.goalIndex(id)
	if i < 0 {
		return notFound("goal", id)
	}
	if t.state.Goals[i].Completed && !t.state.Profile.AllowCompletedDeletion {
		return t.refuse("goal", "Deletion of completed goals is disabled in your profile settings.")
	}
	t.state.Goals = removeAt(t.state.Goals, i)
	t.commit(models.KindGoals)
	return nil
}

func (t *Tracker) AddGoalSubtask(goalID, text string) (models.Subtask, error) {
	text, err := validation.RequiredText("text", text)
	if err != nil {
		return models.Subtask{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	sub := models.Subtask{ID: t.newID(), Text: text}
	_, err = t.updateGoal(goalID, func(g models.Goal) (models.Goal, error) {
		g.Subtasks = append(append([]models.Subtask{}, g.Subtasks...), sub)
		return g, nil
	})
	return sub, err
}

func (t *Tracker) ToggleGoalSubtask(goalID, subID string) (models.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateGoal(goalID, func(g models.Goal) (models.Goal, error) {
		subtasks, ok := models.ToggleSubtask(g.Subtasks, subID)
		if !ok {
			return g, notFound("subtask", subID)
		}
		g.Subtasks = subtasks
		return g, nil
	})
}

// DeleteGoalSubtask removes a step. Completed steps require the deletion policy.
func (t *Tracker) DeleteGoalSubtask(goalID, subID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.updateGoal(goalID, func(g models.Goal) (models.Goal, error) {
		sub, ok := findSubtask(g.Subtasks, subID)
		if !ok {
			return g, notFound("subtask", subID)
		}
		if sub.Completed && !t.state.Profile.AllowCompletedDeletion {
			return g, t.refuse("step", "Deletion of completed steps is disabled in your profile settings.")
		}
		g.Subtasks, _ = models.RemoveSubtask(g.Subtasks, subID)
		return g, nil
	})
	return err
}
