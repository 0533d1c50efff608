package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emberhaus/hotswap/pkg/compatibility"
	"github.com/emberhaus/hotswap/pkg/observability"
	"github.com/emberhaus/hotswap/pkg/rollback"
	"github.com/emberhaus/hotswap/pkg/version"
)

var (
	// ErrInvalidArgument is returned for malformed migration contexts.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTimeout is returned when execution exceeds the context timeout.
	ErrTimeout = errors.New("migration timeout")

	// ErrPendingManualAction is returned by the Manual strategy once
	// preconditions validate; the migration waits on external confirmation.
	ErrPendingManualAction = errors.New("pending manual action")

	// ErrIncompatible is returned when Auto refuses a transition its
	// compatibility classification forbids. Force bypasses this.
	ErrIncompatible = errors.New("incompatible version transition")

	// ErrNoHandler is returned for StrategyCustom without a handler.
	ErrNoHandler = errors.New("custom strategy requires a handler")
)

// DefaultTimeout bounds a migration attempt when the Context carries none.
const DefaultTimeout = 30 * time.Second

// Handler is a caller-supplied transform for StrategyCustom. It must honor
// ctx or return promptly; the engine cannot preempt it.
type Handler func(ctx context.Context, from, to version.Version, payload []byte) ([]byte, error)

// Context describes one migration attempt. It is created per attempt and
// discarded afterward.
type Context struct {
	// ID tags the attempt in logs. Assigned automatically when empty.
	ID string

	From     version.Version
	To       version.Version
	Strategy Strategy

	// Payload is the opaque module state being migrated.
	Payload []byte

	Timeout    time.Duration
	RetryCount int

	// Handler runs for StrategyCustom.
	Handler Handler

	// RollbackHandle names the snapshot StrategyRollback restores.
	RollbackHandle rollback.HandleID
}

// Engine executes migrations. It holds no state between attempts beyond its
// collaborators.
type Engine struct {
	rollbacks *rollback.Manager
	log       *logrus.Logger
}

// NewEngine creates a migration engine. The rollback manager backs
// StrategyRollback; the logger may be nil.
func NewEngine(rollbacks *rollback.Manager, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{rollbacks: rollbacks, log: log}
}

// Execute runs one migration attempt and returns the migrated payload.
// Exceeding the timeout yields ErrTimeout, never a panic; on any failure the
// caller is expected to restore its pre-migration snapshot.
func (e *Engine) Execute(ctx context.Context, mc Context) ([]byte, error) {
	if err := validate(mc); err != nil {
		return nil, err
	}
	if mc.ID == "" {
		mc.ID = uuid.NewString()
	}

	timeout := mc.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := e.log.WithFields(logrus.Fields{
		"migration_id": mc.ID,
		"from":         mc.From.String(),
		"to":           mc.To.String(),
		"strategy":     mc.Strategy.String(),
	})
	if module := observability.GetModule(ctx); module != "" {
		log = log.WithField("module", module)
	}
	log.Debug("executing migration")

	out, err := e.run(ctx, mc)
	if err != nil {
		if errors.Is(err, ErrPendingManualAction) {
			log.Info("migration awaiting manual confirmation")
		} else {
			log.WithError(err).Warn("migration failed")
		}
		return nil, err
	}

	log.Info("migration complete")
	return out, nil
}

func (e *Engine) run(ctx context.Context, mc Context) ([]byte, error) {
	switch mc.Strategy {
	case StrategyNone:
		return mc.Payload, nil

	case StrategyAuto:
		res := compatibility.Check(mc.From, mc.To)
		if !res.Classification.OK() {
			return nil, fmt.Errorf("%w: %s (%s)", ErrIncompatible, res.Classification, res.Reason)
		}
		return e.retry(ctx, mc, e.autoTransform)

	case StrategyForce:
		// Same transform as Auto with the classification gate removed.
		return e.retry(ctx, mc, e.autoTransform)

	case StrategyManual:
		if mc.From.Equal(mc.To) {
			return nil, fmt.Errorf("%w: manual migration between identical versions", ErrInvalidArgument)
		}
		return nil, ErrPendingManualAction

	case StrategyRollback:
		if e.rollbacks == nil {
			return nil, fmt.Errorf("%w: no rollback manager configured", ErrInvalidArgument)
		}
		return e.rollbacks.Restore(mc.RollbackHandle)

	case StrategyCustom:
		if mc.Handler == nil {
			return nil, ErrNoHandler
		}
		return e.retry(ctx, mc, func(ctx context.Context, mc Context) ([]byte, error) {
			return mc.Handler(ctx, mc.From, mc.To, mc.Payload)
		})

	default:
		return nil, fmt.Errorf("%w: unknown strategy %d", ErrInvalidArgument, mc.Strategy)
	}
}

type transformFunc func(ctx context.Context, mc Context) ([]byte, error)

// retry runs the transform up to 1+RetryCount times, honoring the deadline
// between attempts. Cancellation is cooperative only; the transform itself
// must watch ctx.
func (e *Engine) retry(ctx context.Context, mc Context, fn transformFunc) ([]byte, error) {
	attempts := mc.RetryCount + 1
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrTimeout, i, lastErr)
		}
		out, err := fn(ctx, mc)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}
	return nil, lastErr
}

// autoTransform rewrites only the embedded version field of a JSON payload,
// leaving every other field byte-for-byte intact at the value level. Payloads
// that are not JSON objects pass through unchanged: their version is tracked
// externally.
func (e *Engine) autoTransform(ctx context.Context, mc Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var state map[string]json.RawMessage
	if err := json.Unmarshal(mc.Payload, &state); err != nil {
		out := make([]byte, len(mc.Payload))
		copy(out, mc.Payload)
		return out, nil
	}

	ver, err := json.Marshal(mc.To.String())
	if err != nil {
		return nil, err
	}
	state["version"] = ver

	return json.Marshal(state)
}

// CanMigrate reports whether a transition has any viable non-force strategy.
func CanMigrate(from, to version.Version) bool {
	switch DetermineStrategy(from, to) {
	case StrategyAuto, StrategyNone, StrategyRollback:
		return true
	default:
		return false
	}
}

func validate(mc Context) error {
	if err := mc.From.Validate(); err != nil {
		return fmt.Errorf("%w: from version: %v", ErrInvalidArgument, err)
	}
	if err := mc.To.Validate(); err != nil {
		return fmt.Errorf("%w: to version: %v", ErrInvalidArgument, err)
	}
	if mc.RetryCount < 0 {
		return fmt.Errorf("%w: negative retry count", ErrInvalidArgument)
	}
	return nil
}
