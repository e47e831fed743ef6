package models

// Subtask is the checklist item shared by tasks, goals and challenges.
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func cloneSubtasks(in []Subtask) []Subtask {
	out := make([]Subtask, len(in))
	copy(out, in)
	return out
}

func findSubtask(subtasks []Subtask, id string) int {
	for i, s := range subtasks {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// ToggleSubtask returns a copy of subtasks with the completion of id flipped.
// The second result is false when id is not present.
func ToggleSubtask(subtasks []Subtask, id string) ([]Subtask, bool) {
	i := findSubtask(subtasks, id)
	if i < 0 {
		return subtasks, false
	}
	out := cloneSubtasks(subtasks)
	out[i].Completed = !out[i].Completed
	return out, true
}

// RemoveSubtask returns a copy of subtasks without id.
func RemoveSubtask(subtasks []Subtask, id string) ([]Subtask, bool) {
	i := findSubtask(subtasks, id)
	if i < 0 {
		return subtasks, false
	}
	out := make([]Subtask, 0, len(subtasks)-1)
	out = append(out, subtasks[:i]...)
	return append(out, subtasks[i+1:]...), true
}

// CompletedSubtasks counts completed entries.
func CompletedSubtasks(subtasks []Subtask) int {
	n := 0
	for _, s := range subtasks {
		if s.Completed {
			n++
		}
	}
	return n
}
