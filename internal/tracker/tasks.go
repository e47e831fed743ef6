package tracker

import (
	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/validation"
)

// TaskEdit carries the editable task fields; nil fields are kept.
type TaskEdit struct {
	Text     *string
	Category *models.Category
	// DueDate may be set to "" to clear it.
	DueDate *string
}

func parseCategory(c models.Category) (models.Category, error) {
	if c == "" {
		return models.CategoryOther, nil
	}
	parsed, err := models.ParseCategory(string(c))
	if err != nil {
		return "", errors.Validation("category", "%v", err)
	}
	return parsed, nil
}

func validateDueDate(due string) error {
	if due == "" {
		return nil
	}
	return validation.Date("due date", due)
}

// Tasks returns the tasks logged on date.
func (t *Tracker) Tasks(date string) []models.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Task(nil), t.state.Logs.Clone().Tasks(date)...)
}

// AddTask appends a task to date's log, creating the log when needed.
func (t *Tracker) AddTask(date, text string, category models.Category, dueDate string) (models.Task, error) {
	if err := validation.Date("date", date); err != nil {
		return models.Task{}, err
	}
	text, err := validation.RequiredText("text", text)
	if err != nil {
		return models.Task{}, err
	}
	category, err = parseCategory(category)
	if err != nil {
		return models.Task{}, err
	}
	if err := validateDueDate(dueDate); err != nil {
		return models.Task{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	task := models.Task{
		ID:        t.newID(),
		Text:      text,
		Category:  category,
		CreatedAt: t.timestamp(),
		DueDate:   dueDate,
		Subtasks:  []models.Subtask{},
	}
	t.state.Logs = t.state.Logs.WithTask(date, task)
	t.commit(models.KindLogs)
	return task, nil
}

// updateTask applies fn to a task and commits. mu must be held.
func (t *Tracker) updateTask(date, id string, fn func(models.Task) models.Task) (models.Task, error) {
	logs, ok := t.state.Logs.UpdateTask(date, id, fn)
	if !ok {
		return models.Task{}, notFound("task", id)
	}
	t.state.Logs = logs
	t.commit(models.KindLogs)
	task, _ := logs.FindTask(date, id)
	return task, nil
}

func (t *Tracker) ToggleTask(date, id string) (models.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.timestamp()
	return t.updateTask(date, id, func(task models.Task) models.Task { return task.Toggle(now) })
}

func (t *Tracker) EditTask(date, id string, edit TaskEdit) (models.Task, error) {
	var (
		text     string
		category models.Category
		err      error
	)
	if edit.Text != nil {
		if text, err = validation.RequiredText("text", *edit.Text); err != nil {
			return models.Task{}, err
		}
	}
	if edit.Category != nil {
		if category, err = parseCategory(*edit.Category); err != nil {
			return models.Task{}, err
		}
	}
	if edit.DueDate != nil {
		if err := validateDueDate(*edit.DueDate); err != nil {
			return models.Task{}, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateTask(date, id, func(task models.Task) models.Task {
		if edit.Text != nil {
			task.Text = text
		}
		if edit.Category != nil {
			task.Category = category
		}
		if edit.DueDate != nil {
			task.DueDate = *edit.DueDate
		}
		return task
	})
}

// MoveTask moves a task to another date's log and sets its due date to it.
func (t *Tracker) MoveTask(id, from, to string) (models.Task, error) {
	if err := validation.Date("target date", to); err != nil {
		return models.Task{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	logs, ok := t.state.Logs.MoveTask(id, from, to)
	if !ok {
		return models.Task{}, notFound("task", id)
	}
	t.state.Logs = logs
	t.commit(models.KindLogs)
	task, _ := logs.FindTask(to, id)
	return task, nil
}

// DeleteTask removes a task. Completed tasks require the deletion policy.
func (t *Tracker) DeleteTask(date, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.state.Logs.FindTask(date, id)
	if !ok {
		return notFound("task", id)
	}
	if task.Completed && !t.state.Profile.AllowCompletedDeletion {
		return t.refuse("task", "Deletion of completed tasks is disabled in your profile settings.")
	}
	t.state.Logs, _ = t.state.Logs.RemoveTask(date, id)
	t.commit(models.KindLogs)
	return nil
}

func (t *Tracker) AddTaskSubtask(date, taskID, text string) (models.Subtask, error) {
	text, err := validation.RequiredText("text", text)
	if err != nil {
		return models.Subtask{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	sub := models.Subtask{ID: t.newID(), Text: text}
	_, err = t.updateTask(date, taskID, func(task models.Task) models.Task {
		task.Subtasks = append(task.Subtasks, sub)
		return task
	})
	return sub, err
}

func (t *Tracker) ToggleTaskSubtask(date, taskID, subID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.state.Logs.FindTask(date, taskID)
	if !ok {
		return notFound("task", taskID)
	}
	subtasks, ok := models.ToggleSubtask(task.Subtasks, subID)
	if !ok {
		return notFound("subtask", subID)
	}
	_, err := t.updateTask(date, taskID, func(task models.Task) models.Task {
		task.Subtasks = subtasks
		return task
	})
	return err
}

// DeleteTaskSubtask removes a subtask. Completed subtasks require the deletion policy.
func (t *Tracker) DeleteTaskSubtask(date, taskID, subID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.state.Logs.FindTask(date, taskID)
	if !ok {
		return notFound("task", taskID)
	}
	if sub, ok := findSubtask(task.Subtasks, subID); ok && sub.Completed && !t.state.Profile.AllowCompletedDeletion {
		return t.refuse("subtask", "Deletion of completed items is disabled.")
	}
	subtasks, ok := models.RemoveSubtask(task.Subtasks, subID)
	if !ok {
		return notFound("subtask", subID)
	}
	_, err := t.updateTask(date, taskID, func(task models.Task) models.Task {
		task.Subtasks = subtasks
		return task
	})
	return err
}

func findSubtask(subtasks []models.Subtask, id string) (models.Subtask, bool) {
	for _, s := range subtasks {
		if s.ID == id {
			return s, true
		}
	}
	return models.Subtask{}, false
}
