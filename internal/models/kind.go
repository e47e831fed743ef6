package models

import "fmt"

// Kind names one of the five persisted data categories.
type Kind string

const (
	KindLogs       Kind = "logs"
	KindHabits     Kind = "habits"
	KindGoals      Kind = "goals"
	KindChallenges Kind = "challenges"
	KindProfile    Kind = "profile"
)

// AllKinds lists every category in load/sync order.
var AllKinds = []Kind{KindLogs, KindHabits, KindGoals, KindChallenges, KindProfile}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown data kind %q", s)
}

// IsCollection reports whether the kind is stored remotely as a sub-collection
// of per-entity documents (as opposed to the single profile document).
func (k Kind) IsCollection() bool {
	return k != KindProfile
}
