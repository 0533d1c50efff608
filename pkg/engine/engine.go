package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emberhaus/hotswap/pkg/compatibility"
	"github.com/emberhaus/hotswap/pkg/config"
	"github.com/emberhaus/hotswap/pkg/graph"
	"github.com/emberhaus/hotswap/pkg/migration"
	"github.com/emberhaus/hotswap/pkg/observability"
	"github.com/emberhaus/hotswap/pkg/registry"
	"github.com/emberhaus/hotswap/pkg/rollback"
	"github.com/emberhaus/hotswap/pkg/version"
	"github.com/emberhaus/hotswap/pkg/watcher"
)

// ErrClosed is returned by operations on a shut-down engine.
var ErrClosed = errors.New("engine is closed")

// Engine owns one instance of the hot-swap pipeline.
type Engine struct {
	cfg     *config.Config
	log     *logrus.Logger
	metrics *observability.Metrics

	graph      *graph.Graph
	registry   *registry.Registry
	rollbacks  *rollback.Manager
	migrations *migration.Engine

	mu sync.Mutex
	// current tracks the version the loader has live for each module.
	current map[string]version.Version
	// lastSnapshot remembers the newest rollback handle per module.
	lastSnapshot map[string]rollback.HandleID
	closed       bool
}

// New constructs an engine from configuration. The logger may be nil; the
// metrics may be nil when metrics are disabled.
func New(cfg *config.Config, log *logrus.Logger, metrics *observability.Metrics) *Engine {
	if log == nil {
		log = logrus.New()
	}
	rollbacks := rollback.NewManager(cfg.Rollback.PoolCapacity)
	return &Engine{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		graph: graph.New(graph.Config{
			Capacity:          cfg.Graph.NodeCapacity,
			MaxTraversalDepth: cfg.Graph.MaxTraversalDepth,
		}),
		registry: registry.New(registry.Config{
			HistoryLimit:    cfg.Registry.HistoryLimit,
			CompatCacheSize: cfg.Registry.CompatCacheSize,
			CompatCacheTTL:  cfg.Registry.CompatCacheTTL,
		}),
		rollbacks:    rollbacks,
		migrations:   migration.NewEngine(rollbacks, log),
		current:      make(map[string]version.Version),
		lastSnapshot: make(map[string]rollback.HandleID),
	}
}

// Close shuts the engine down. Subsequent operations fail with ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.current = nil
	e.lastSnapshot = nil
}

// Graph exposes the dependency graph for direct edge management.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// AddDependency records that dependent needs dependency, tracking the edge
// operation in the engine's metrics.
func (e *Engine) AddDependency(dependent, dependency string, critical bool) error {
	err := e.graph.AddDependency(dependent, dependency, critical)
	if e.metrics != nil {
		e.metrics.DependencyChecksTotal.Inc()
	}
	return err
}

// RemoveDependency drops an edge previously added with AddDependency.
func (e *Engine) RemoveDependency(dependent, dependency string) error {
	err := e.graph.RemoveDependency(dependent, dependency)
	if e.metrics != nil {
		e.metrics.DependencyChecksTotal.Inc()
	}
	return err
}

// Registry exposes the version registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Rollbacks exposes the rollback pool.
func (e *Engine) Rollbacks() *rollback.Manager { return e.rollbacks }

// SetCurrentVersion records the version the loader has live for a module.
func (e *Engine) SetCurrentVersion(module string, v version.Version) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.current[module] = v
	return nil
}

// CurrentVersion returns the live version recorded for a module.
func (e *Engine) CurrentVersion(module string) (version.Version, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.current[module]
	return v, ok
}

// Step is one entry of a reload plan: what the loader should reload, in
// order, and how.
type Step struct {
	Path    string
	Kind    graph.AssetKind
	Current version.Version
	Target  version.Version

	// HasTarget is false when no version is registered for the path; the
	// loader reloads from disk without a version transition.
	HasTarget bool

	Compatibility compatibility.Result
	Strategy      migration.Strategy
}

// ReloadPlan is the ordered reload sequence handed to the module loader.
type ReloadPlan struct {
	ID      string
	Changed string
	Steps   []Step

	// Truncated marks a best-effort prefix: the cascade hit the configured
	// cap and may be incomplete.
	Truncated bool
}

// HandleAssetEvent reacts to a watcher event. Only modified, created,
// deleted, and renamed changes produce a plan.
func (e *Engine) HandleAssetEvent(ev watcher.Event) (*ReloadPlan, error) {
	switch ev.Status {
	case watcher.Modified, watcher.Created, watcher.Deleted, watcher.Renamed:
	default:
		return nil, nil
	}

	e.log.WithFields(logrus.Fields{
		"path":   ev.Path,
		"kind":   ev.Kind.String(),
		"status": ev.Status.String(),
	}).Debug("asset change event")

	return e.PlanReload(ev.Path)
}

// PlanReload computes the cascade reload plan for a changed path. A cycle
// anywhere in the graph blocks planning; the caller must fix the graph
// before any reload proceeds.
func (e *Engine) PlanReload(changed string) (*ReloadPlan, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	e.mu.Unlock()

	// ReloadOrder runs one whole-graph cycle check before traversing.
	if e.metrics != nil {
		e.metrics.CycleChecksTotal.Inc()
	}
	order, truncated, err := e.graph.ReloadOrder(changed, e.cfg.Graph.ReloadOrderCap)
	if err != nil {
		if errors.Is(err, graph.ErrCycleDetected) && e.metrics != nil {
			e.metrics.CyclesDetectedTotal.Inc()
		}
		return nil, fmt.Errorf("plan reload for %q: %w", changed, err)
	}

	plan := &ReloadPlan{
		ID:        uuid.NewString(),
		Changed:   changed,
		Steps:     make([]Step, 0, len(order)),
		Truncated: truncated,
	}

	for _, path := range order {
		plan.Steps = append(plan.Steps, e.planStep(path))
	}

	if e.metrics != nil {
		e.metrics.CascadeReloadsTotal.Inc()
		if plan.Truncated {
			e.metrics.ReloadOrderTruncated.Inc()
		}
		stats := e.graph.Stats()
		e.metrics.GraphNodes.Set(float64(stats.Nodes))
		e.metrics.GraphEdges.Set(float64(stats.Edges))
	}

	e.log.WithFields(logrus.Fields{
		"plan_id":   plan.ID,
		"changed":   changed,
		"steps":     len(plan.Steps),
		"truncated": plan.Truncated,
	}).Info("reload plan computed")

	return plan, nil
}

func (e *Engine) planStep(path string) Step {
	step := Step{Path: path, Strategy: migration.StrategyNone}
	if node := e.graph.Lookup(path); node != nil {
		step.Kind = node.Kind
	}

	e.mu.Lock()
	current, haveCurrent := e.current[path]
	e.mu.Unlock()
	step.Current = current

	var target version.Version
	var ok bool
	if haveCurrent {
		target, ok = e.registry.FindCompatible(path, current)
	}
	if !ok {
		target, ok = e.registry.Latest(path)
	}
	if !ok {
		return step
	}

	step.Target = target
	step.HasTarget = true

	if haveCurrent {
		step.Compatibility = e.CheckCompatibility(current, target)
		step.Strategy = migration.DetermineStrategy(current, target)
	} else {
		step.Strategy = migration.StrategyNone
	}
	return step
}

// CheckCompatibility classifies a transition and records the outcome in the
// engine's metrics.
func (e *Engine) CheckCompatibility(required, available version.Version) compatibility.Result {
	res := compatibility.Check(required, available)
	if e.metrics != nil {
		e.metrics.CompatChecksTotal.WithLabelValues(res.Classification.String()).Inc()
	}
	return res
}

// ApplyMigration migrates a module's state from one version to another,
// bracketed by a rollback snapshot. On failure the pre-migration state is
// restored automatically; the returned payload is then the restored bytes
// and the error describes the failed migration.
func (e *Engine) ApplyMigration(ctx context.Context, module string, from, to version.Version, payload []byte) ([]byte, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	e.mu.Unlock()

	handle, err := e.rollbacks.Snapshot(from, payload)
	if err != nil {
		return nil, fmt.Errorf("pre-migration snapshot: %w", err)
	}
	if e.metrics != nil {
		e.metrics.SnapshotsTotal.Inc()
		e.metrics.SnapshotsRetained.Set(float64(e.rollbacks.Len()))
	}

	// Close can race the snapshot above; re-check before touching the maps.
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	prevSnapshot, hadPrev := e.lastSnapshot[module]
	e.lastSnapshot[module] = handle.ID
	e.mu.Unlock()

	attemptID := uuid.NewString()

	// Custom handlers pull a contextual logger via observability.FromContext.
	ctx = observability.WithModule(ctx, module)
	ctx = observability.WithReloadID(ctx, attemptID)

	strategy := migration.DetermineStrategy(from, to)
	mc := migration.Context{
		ID:         attemptID,
		From:       from,
		To:         to,
		Strategy:   strategy,
		Payload:    payload,
		Timeout:    e.cfg.Migration.Timeout,
		RetryCount: e.cfg.Migration.RetryCount,
	}
	if strategy == migration.StrategyRollback {
		// Downgrade: restore the previous state for this module if one is
		// retained, otherwise the snapshot just taken.
		mc.RollbackHandle = handle.ID
		if hadPrev {
			mc.RollbackHandle = prevSnapshot
		}
	}

	start := time.Now()
	out, err := e.migrations.Execute(ctx, mc)
	if e.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "failure"
			if errors.Is(err, migration.ErrPendingManualAction) {
				outcome = "pending"
			}
		}
		e.metrics.MigrationsTotal.WithLabelValues(strategy.String(), outcome).Inc()
		e.metrics.MigrationDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if errors.Is(err, migration.ErrPendingManualAction) {
			return nil, err
		}
		restored, rerr := e.rollbacks.Restore(handle.ID)
		if e.metrics != nil {
			outcome := "success"
			if rerr != nil {
				outcome = "failure"
			}
			e.metrics.RestoresTotal.WithLabelValues(outcome).Inc()
		}
		if rerr != nil {
			e.log.WithError(rerr).WithField("module", module).Error("automatic rollback failed")
			return nil, fmt.Errorf("migration failed and rollback failed (%v): %w", rerr, err)
		}
		e.log.WithField("module", module).Warn("migration failed, state restored")
		return restored, fmt.Errorf("migration failed, state restored: %w", err)
	}

	e.mu.Lock()
	if e.current != nil {
		e.current[module] = to
	}
	e.mu.Unlock()

	// Load accounting is best-effort: the version may not be registered.
	if rerr := e.registry.RecordLoad(module, to); rerr != nil && !errors.Is(rerr, registry.ErrNotFound) {
		e.log.WithError(rerr).WithField("module", module).Warn("load count update failed")
	}

	if e.metrics != nil {
		e.metrics.VersionsRegistered.Set(float64(e.registry.Len()))
	}
	return out, nil
}

// ValidateIntegrity runs a graph integrity scan and records the violation
// count.
func (e *Engine) ValidateIntegrity() []graph.IntegrityViolation {
	violations := e.graph.ValidateIntegrity()
	if e.metrics != nil {
		e.metrics.IntegrityViolations.Set(float64(len(violations)))
	}
	for _, v := range violations {
		e.log.WithFields(logrus.Fields{
			"kind": v.Kind.String(),
			"from": v.From,
			"to":   v.To,
		}).Error("dependency integrity violation")
	}
	return violations
}
