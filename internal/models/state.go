package models

// State is the full in-memory data set of one session.
type State struct {
	Logs       Logs
	Habits     []MonthlyHabit
	Goals      []Goal
	Challenges []Challenge
	Profile    UserProfile
}

// DefaultState returns empty collections and the given profile.
func DefaultState(profile UserProfile) State {
	return State{
		Logs:       Logs{},
		Habits:     []MonthlyHabit{},
		Goals:      []Goal{},
		Challenges: []Challenge{},
		Profile:    profile,
	}
}

// Snapshot is the export/import document. Nil fields are absent from an import.
type Snapshot struct {
	Logs       Logs           `json:"logs"`
	Habits     []MonthlyHabit `json:"habits"`
	Goals      []Goal         `json:"goals"`
	Challenges []Challenge    `json:"challenges"`
	Profile    *UserProfile   `json:"profile"`
}

// Snapshot captures the state in export form.
func (s State) Snapshot() Snapshot {
	profile := s.Profile
	return Snapshot{
		Logs:       nonNilLogs(s.Logs),
		Habits:     nonNil(s.Habits),
		Goals:      nonNil(s.Goals),
		Challenges: nonNil(s.Challenges),
		Profile:    &profile,
	}
}

// Apply replaces every category present in snap and returns the kinds changed.
func (s State) Apply(snap Snapshot) (State, []Kind) {
	var changed []Kind
	if snap.Logs != nil {
		s.Logs = snap.Logs.Clone()
		changed = append(changed, KindLogs)
	}
	if snap.Habits != nil {
		s.Habits = append([]MonthlyHabit{}, snap.Habits...)
		changed = append(changed, KindHabits)
	}
	if snap.Goals != nil {
		s.Goals = append([]Goal{}, snap.Goals...)
		changed = append(changed, KindGoals)
	}
	if snap.Challenges != nil {
		s.Challenges = append([]Challenge{}, snap.Challenges...)
		changed = append(changed, KindChallenges)
	}
	if snap.Profile != nil {
		s.Profile = *snap.Profile
		changed = append(changed, KindProfile)
	}
	return s, changed
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func nonNilLogs(in Logs) Logs {
	if in == nil {
		return Logs{}
	}
	return in
}
