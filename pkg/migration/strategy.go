package migration

import "github.com/emberhaus/hotswap/pkg/version"

// Strategy selects how module state is carried across a version transition.
type Strategy int

const (
	// StrategyNone performs no transformation.
	StrategyNone Strategy = iota
	// StrategyAuto rewrites the payload in place; it succeeds unless the
	// timeout expires or the transition is incompatible.
	StrategyAuto
	// StrategyManual requires external confirmation; the engine only
	// validates preconditions.
	StrategyManual
	// StrategyRollback restores a previously saved snapshot.
	StrategyRollback
	// StrategyForce applies Auto semantics while bypassing compatibility
	// classification.
	StrategyForce
	// StrategyCustom invokes the caller-supplied handler.
	StrategyCustom
)

func (s Strategy) String() string {
	names := []string{"none", "auto", "manual", "rollback", "force", "custom"}
	if s < 0 || int(s) >= len(names) {
		return "unknown"
	}
	return names[s]
}

// DetermineStrategy picks the default strategy for a transition: downgrades
// roll back, same-major upgrades migrate automatically, cross-major
// transitions need a human. Callers that explicitly override safety use
// StrategyForce instead.
func DetermineStrategy(from, to version.Version) Strategy {
	switch {
	case to.Equal(from):
		return StrategyNone
	case to.Less(from):
		return StrategyRollback
	case to.Major == from.Major:
		return StrategyAuto
	default:
		return StrategyManual
	}
}
