// Package sync keeps the remote store in step with local state: reconciliation,
// debounced write-back and the bootstrap loader.
package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
)

// Snapshot is the captured value of one category. The variant set is closed:
// every variant dispatches to its own Handler method.
type Snapshot interface {
	Kind() models.Kind
	// Value returns the category value in its local storage shape.
	Value() any
	dispatch(ctx context.Context, userID string, h Handler) error
}

// Handler has one method per Snapshot variant.
type Handler interface {
	Logs(ctx context.Context, userID string, logs models.Logs) error
	Habits(ctx context.Context, userID string, habits []models.MonthlyHabit) error
	Goals(ctx context.Context, userID string, goals []models.Goal) error
	Challenges(ctx context.Context, userID string, challenges []models.Challenge) error
	Profile(ctx context.Context, userID string, profile models.UserProfile) error
}

type LogsSnapshot struct{ Logs models.Logs }
type HabitsSnapshot struct{ Habits []models.MonthlyHabit }
type GoalsSnapshot struct{ Goals []models.Goal }
type ChallengesSnapshot struct{ Challenges []models.Challenge }
type ProfileSnapshot struct{ Profile models.UserProfile }

func (LogsSnapshot) Kind() models.Kind       { return models.KindLogs }
func (HabitsSnapshot) Kind() models.Kind     { return models.KindHabits }
func (GoalsSnapshot) Kind() models.Kind      { return models.KindGoals }
func (ChallengesSnapshot) Kind() models.Kind { return models.KindChallenges }
func (ProfileSnapshot) Kind() models.Kind    { return models.KindProfile }

func (s LogsSnapshot) Value() any       { return s.Logs }
func (s HabitsSnapshot) Value() any     { return s.Habits }
func (s GoalsSnapshot) Value() any      { return s.Goals }
func (s ChallengesSnapshot) Value() any { return s.Challenges }
func (s ProfileSnapshot) Value() any    { return s.Profile }

func (s LogsSnapshot) dispatch(ctx context.Context, uid string, h Handler) error {
	return h.Logs(ctx, uid, s.Logs)
}

func (s HabitsSnapshot) dispatch(ctx context.Context, uid string, h Handler) error {
	return h.Habits(ctx, uid, s.Habits)
}

func (s GoalsSnapshot) dispatch(ctx context.Context, uid string, h Handler) error {
	return h.Goals(ctx, uid, s.Goals)
}

func (s ChallengesSnapshot) dispatch(ctx context.Context, uid string, h Handler) error {
	return h.Challenges(ctx, uid, s.Challenges)
}

func (s ProfileSnapshot) dispatch(ctx context.Context, uid string, h Handler) error {
	return h.Profile(ctx, uid, s.Profile)
}

// SnapshotOf captures one category of state. Collections are copied so later
// mutations of state do not leak into a pending write.
func SnapshotOf(state models.State, kind models.Kind) (Snapshot, error) {
	switch kind {
	case models.KindLogs:
		return LogsSnapshot{Logs: state.Logs.Clone()}, nil
	case models.KindHabits:
		return HabitsSnapshot{Habits: append([]models.MonthlyHabit{}, state.Habits...)}, nil
	case models.KindGoals:
		return GoalsSnapshot{Goals: append([]models.Goal{}, state.Goals...)}, nil
	case models.KindChallenges:
		return ChallengesSnapshot{Challenges: append([]models.Challenge{}, state.Challenges...)}, nil
	case models.KindProfile:
		return ProfileSnapshot{Profile: state.Profile}, nil
	}
	return nil, fmt.Errorf("unknown data kind %q", kind)
}

// WriteLocal stores snap under namespace. Encoding failures are logged.
func WriteLocal(local storage.Local, namespace string, snap Snapshot) {
	raw, err := json.Marshal(snap.Value())
	if err != nil {
		logger.Error("Failed to encode local value", "kind", snap.Kind(), "error", err)
		return
	}
	local.Write(namespace, snap.Kind(), raw)
}

// ReadLocal decodes the stored value of kind into dst. Missing or unreadable
// values report false.
func ReadLocal(local storage.Local, namespace string, kind models.Kind, dst any) bool {
	raw, ok := local.Read(namespace, kind)
	if !ok || len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("Ignoring unreadable local value", "namespace", namespace, "kind", kind, "error", err)
		return false
	}
	return true
}
