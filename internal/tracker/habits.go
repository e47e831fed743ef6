package tracker

import (
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/validation"
)

func (t *Tracker) Habits() []models.MonthlyHabit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.MonthlyHabit(nil), t.state.Habits...)
}

func (t *Tracker) habitIndex(id string) int {
	for i, h := range t.state.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) AddHabit(text string, category models.Category) (models.MonthlyHabit, error) {
	text, err := validation.RequiredText("text", text)
	if err != nil {
		return models.MonthlyHabit{}, err
	}
	if category, err = parseCategory(category); err != nil {
		return models.MonthlyHabit{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	h := models.MonthlyHabit{
		ID:          t.newID(),
		Text:        text,
		Category:    category,
		Completions: []string{},
		CreatedAt:   t.timestamp(),
	}
	t.state.Habits = append(append([]models.MonthlyHabit{}, t.state.Habits...), h)
	t.commit(models.KindHabits)
	return h, nil
}

// ToggleHabit adds date to the habit's completion set or removes it.
func (t *Tracker) ToggleHabit(id, date string) (models.MonthlyHabit, error) {
	if err := validation.Date("date", date); err != nil {
		return models.MonthlyHabit{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.habitIndex(id)
	if i < 0 {
		return models.MonthlyHabit{}, notFound("habit", id)
	}
	habits := append([]models.MonthlyHabit{}, t.state.Habits...)
	habits[i] = habits[i].ToggleCompletion(date)
	t.state.Habits = habits
	t.commit(models.KindHabits)
	return habits[i], nil
}

// DeleteHabit removes a habit. A habit with any completion requires the
// deletion policy.
func (t *Tracker) DeleteHabit(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.habitIndex(id)
	if i < 0 {
		return notFound("habit", id)
	}
	if len(t.state.Habits[i].Completions) > 0 && !t.state.Profile.AllowCompletedDeletion {
		return t.refuse("habit", "Deletion of habits with active completions is disabled in your profile settings.")
	}
	t.state.Habits = removeAt(t.state.Habits, i)
	t.commit(models.KindHabits)
	return nil
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
