package sync

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/models"
)

// RemoteStatus is what the bootstrap fetch learned about one category.
type RemoteStatus int

const (
	// RemoteUnknown means the fetch failed; the category is never migrated.
	RemoteUnknown RemoteStatus = iota
	RemoteEmpty
	RemotePresent
)

func (s RemoteStatus) String() string {
	switch s {
	case RemoteEmpty:
		return "empty"
	case RemotePresent:
		return "present"
	}
	return "unknown"
}

// MigrationPlan says, per category, whether local data is pushed to the remote
// store on first authenticated load.
type MigrationPlan struct {
	Policy        constants.MigrationPolicy
	ShouldMigrate map[models.Kind]bool
}

// Kinds returns the marked categories in load order.
func (p MigrationPlan) Kinds() []models.Kind {
	var out []models.Kind
	for _, k := range models.AllKinds {
		if p.ShouldMigrate[k] {
			out = append(out, k)
		}
	}
	return out
}

// Any reports whether at least one category is marked.
func (p MigrationPlan) Any() bool {
	return len(p.Kinds()) > 0
}

// ParseMigrationPolicy validates a configured policy name; "" selects the default.
func ParseMigrationPolicy(s string) (constants.MigrationPolicy, error) {
	switch constants.MigrationPolicy(s) {
	case "":
		return constants.MigrationLogsSignal, nil
	case constants.MigrationLogsSignal, constants.MigrationPerCategory:
		return constants.MigrationPolicy(s), nil
	}
	return "", fmt.Errorf("unknown migration policy %q (expected %s or %s)",
		s, constants.MigrationLogsSignal, constants.MigrationPerCategory)
}

// PlanMigration decides which categories to migrate.
//
// logs-signal: when local logs exist and remote logs are empty, every category
// whose remote state is known is marked. per-category: a category is marked when
// its remote copy is empty and its local copy is present.
func PlanMigration(policy constants.MigrationPolicy, remote map[models.Kind]RemoteStatus, localPresent map[models.Kind]bool) MigrationPlan {
	plan := MigrationPlan{Policy: policy, ShouldMigrate: make(map[models.Kind]bool, len(models.AllKinds))}

	switch policy {
	case constants.MigrationPerCategory:
		for _, k := range models.AllKinds {
			plan.ShouldMigrate[k] = remote[k] == RemoteEmpty && localPresent[k]
		}
	default:
		plan.Policy = constants.MigrationLogsSignal
		trigger := localPresent[models.KindLogs] && remote[models.KindLogs] == RemoteEmpty
		for _, k := range models.AllKinds {
			plan.ShouldMigrate[k] = trigger && remote[k] != RemoteUnknown
		}
	}
	return plan
}
