package compatibility

import (
	"fmt"

	"github.com/emberhaus/hotswap/pkg/version"
)

// Classification is the outcome of comparing a required version against an
// available one.
type Classification int

const (
	Compatible Classification = iota
	MigrationRequired
	MajorBreaking
	Deprecated
	UnknownFlags
)

func (c Classification) String() string {
	return []string{
		"COMPATIBLE", "MIGRATION_REQUIRED", "MAJOR_BREAKING",
		"DEPRECATED", "UNKNOWN_FLAGS",
	}[c]
}

// OK reports whether the classification permits a swap, possibly after
// migration.
func (c Classification) OK() bool {
	return c == Compatible || c == MigrationRequired
}

// ActionSet is a bitmask of recommended actions accompanying a
// classification.
type ActionSet uint32

const (
	ActionBackup ActionSet = 1 << iota
	ActionMigrate
	ActionRollback
	ActionNotifyUser
	ActionRestartRequired
	ActionForceCompatible
	ActionSkipValidation
	ActionLogWarning
	ActionManualMigration
)

// Has reports whether every bit in a is set.
func (s ActionSet) Has(a ActionSet) bool {
	return s&a == a
}

var actionNames = []struct {
	action ActionSet
	name   string
}{
	{ActionBackup, "backup"},
	{ActionMigrate, "migrate"},
	{ActionRollback, "rollback"},
	{ActionNotifyUser, "notify_user"},
	{ActionRestartRequired, "restart_required"},
	{ActionForceCompatible, "force_compatible"},
	{ActionSkipValidation, "skip_validation"},
	{ActionLogWarning, "log_warning"},
	{ActionManualMigration, "manual_migration"},
}

func (s ActionSet) String() string {
	if s == 0 {
		return "none"
	}
	out := ""
	for _, an := range actionNames {
		if s.Has(an.action) {
			if out != "" {
				out += "|"
			}
			out += an.name
		}
	}
	return out
}

// Result is the pure output of a compatibility check.
type Result struct {
	Classification Classification
	Reason         string
	Actions        ActionSet
}

// Check classifies swapping the available version in where required is
// expected. Rules apply in priority order: flag problems first, then major,
// minor, and patch deltas. Downgrades always carry a rollback
// recommendation on top of whatever else applies.
func Check(required, available version.Version) Result {
	res := checkOrdered(required, available)
	if available.Less(required) && !res.Actions.Has(ActionRollback) {
		res.Actions |= ActionRollback
	}
	return res
}

func checkOrdered(required, available version.Version) Result {
	if available.Flags.HasUnknown() {
		return Result{
			Classification: UnknownFlags,
			Reason:         fmt.Sprintf("available version %s carries unrecognized flag bits", available),
			Actions:        ActionNotifyUser | ActionLogWarning,
		}
	}

	if available.Flags.Has(version.FlagDeprecated) {
		return Result{
			Classification: Deprecated,
			Reason:         fmt.Sprintf("available version %s is deprecated", available),
			Actions:        ActionNotifyUser | ActionLogWarning,
		}
	}

	if available.Major != required.Major {
		actions := ActionBackup | ActionNotifyUser | ActionRestartRequired
		if available.Less(required) {
			actions |= ActionRollback
		} else {
			actions |= ActionManualMigration
		}
		return Result{
			Classification: MajorBreaking,
			Reason: fmt.Sprintf("major version mismatch: required %d, available %d",
				required.Major, available.Major),
			Actions: actions,
		}
	}

	if available.Minor != required.Minor {
		actions := ActionBackup | ActionMigrate
		// A multi-minor jump is more likely to need attention.
		if delta := minorDelta(required, available); delta > 1 {
			actions |= ActionLogWarning
		}
		return Result{
			Classification: MigrationRequired,
			Reason: fmt.Sprintf("minor version delta within major %d: required %s, available %s",
				required.Major, required, available),
			Actions: actions,
		}
	}

	if available.Patch != required.Patch || available.Build != required.Build {
		return Result{
			Classification: Compatible,
			Reason:         fmt.Sprintf("patch-level difference: required %s, available %s", required, available),
		}
	}

	return Result{
		Classification: Compatible,
		Reason:         "exact version match",
	}
}

func minorDelta(a, b version.Version) uint32 {
	if a.Minor > b.Minor {
		return a.Minor - b.Minor
	}
	return b.Minor - a.Minor
}
