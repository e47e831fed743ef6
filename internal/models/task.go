package models

import (
	"fmt"
	"sort"
	"strings"
)

// Category tags tasks and habits.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryHealth   Category = "Health"
	CategoryUrgent   Category = "Urgent"
	CategoryOther    Category = "Other"
)

// Categories lists the valid categories in display order.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryUrgent, CategoryOther}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Task struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	Category    Category  `json:"category"`
	CreatedAt   string    `json:"createdAt"`             // RFC3339
	CompletedAt string    `json:"completedAt,omitempty"` // RFC3339
	DueDate     string    `json:"dueDate,omitempty"`     // YYYY-MM-DD
	Subtasks    []Subtask `json:"subtasks"`
}

// Toggle flips completion, stamping or clearing CompletedAt.
func (t Task) Toggle(now string) Task {
	t.Completed = !t.Completed
	if t.Completed {
		t.CompletedAt = now
	} else {
		t.CompletedAt = ""
	}
	return t
}

// DayLog holds the tasks of a single calendar date.
type DayLog struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Tasks []Task `json:"tasks"`
}

// Logs maps a date to its log.
type Logs map[string]DayLog

// Clone returns a copy whose task slices can be modified independently.
func (l Logs) Clone() Logs {
	out := make(Logs, len(l))
	for date, log := range l {
		tasks := make([]Task, len(log.Tasks))
		for i, t := range log.Tasks {
			t.Subtasks = cloneSubtasks(t.Subtasks)
			tasks[i] = t
		}
		out[date] = DayLog{Date: log.Date, Tasks: tasks}
	}
	return out
}

// Tasks returns the tasks for date, or nil if no log exists.
func (l Logs) Tasks(date string) []Task {
	return l[date].Tasks
}

// FindTask locates a task within date's log.
func (l Logs) FindTask(date, id string) (Task, bool) {
	for _, t := range l[date].Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// WithTask returns a copy of l with task appended to date's log, creating the
// log if needed.
func (l Logs) WithTask(date string, task Task) Logs {
	out := l.Clone()
	log := out[date]
	log.Date = date
	log.Tasks = append(log.Tasks, task)
	out[date] = log
	return out
}

// UpdateTask applies fn to the task id within date's log.
func (l Logs) UpdateTask(date, id string, fn func(Task) Task) (Logs, bool) {
	log, ok := l[date]
	if !ok {
		return l, false
	}
	for i, t := range log.Tasks {
		if t.ID != id {
			continue
		}
		out := l.Clone()
		out[date].Tasks[i] = fn(out[date].Tasks[i])
		return out, true
	}
	return l, false
}

// RemoveTask returns a copy of l without task id in date's log. The log itself is
// kept even when it becomes empty.
func (l Logs) RemoveTask(date, id string) (Logs, bool) {
	if _, ok := l.FindTask(date, id); !ok {
		return l, false
	}
	out := l.Clone()
	log := out[date]
	kept := make([]Task, 0, len(log.Tasks))
	for _, t := range log.Tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	log.Tasks = kept
	out[date] = log
	return out, true
}

// MoveTask moves task id from one date's log to another, setting its due date to
// the destination.
func (l Logs) MoveTask(id, from, to string) (Logs, bool) {
	task, ok := l.FindTask(from, id)
	if !ok {
		return l, false
	}
	if from == to {
		return l, true
	}
	out, _ := l.RemoveTask(from, id)
	task.DueDate = to
	return out.WithTask(to, task), true
}

// DatesWithOpenTasks returns the dates having at least one incomplete task.
func (l Logs) DatesWithOpenTasks() []string {
	var dates []string
	for date, log := range l {
		for _, t := range log.Tasks {
			if !t.Completed {
				dates = append(dates, date)
				break
			}
		}
	}
	sort.Strings(dates)
	return dates
}
