package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the engine
type Metrics struct {
	// Dependency graph metrics
	DependencyChecksTotal prometheus.Counter
	CycleChecksTotal      prometheus.Counter
	CyclesDetectedTotal   prometheus.Counter
	CascadeReloadsTotal   prometheus.Counter
	ReloadOrderTruncated  prometheus.Counter
	IntegrityViolations   prometheus.Gauge
	GraphNodes            prometheus.Gauge
	GraphEdges            prometheus.Gauge

	// Version registry metrics
	VersionsRegistered prometheus.Gauge
	CompatChecksTotal  *prometheus.CounterVec

	// Migration metrics
	MigrationsTotal   *prometheus.CounterVec
	MigrationDuration prometheus.Histogram

	// Rollback metrics
	SnapshotsTotal    prometheus.Counter
	RestoresTotal     *prometheus.CounterVec
	SnapshotsRetained prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		DependencyChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotswap_dependency_checks_total",
			Help: "Total number of dependency edge operations",
		}),
		CycleChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotswap_cycle_checks_total",
			Help: "Total number of whole-graph cycle checks",
		}),
		CyclesDetectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotswap_cycles_detected_total",
			Help: "Total number of cycle checks that found a cycle",
		}),
		CascadeReloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotswap_cascade_reloads_total",
			Help: "Total number of cascade reload orders computed",
		}),
		ReloadOrderTruncated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotswap_reload_order_truncated_total",
			Help: "Total number of reload orders truncated at the caller cap",
		}),
		IntegrityViolations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hotswap_integrity_violations",
			Help: "Violations found by the most recent integrity validation",
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hotswap_graph_nodes",
			Help: "Current number of nodes in the dependency graph",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hotswap_graph_edges",
			Help: "Current number of edges in the dependency graph",
		}),
		VersionsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hotswap_versions_registered",
			Help: "Current number of registered module versions",
		}),
		CompatChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotswap_compatibility_checks_total",
				Help: "Total compatibility checks by classification",
			},
			[]string{"classification"},
		),
		MigrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotswap_migrations_total",
				Help: "Total migrations by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		MigrationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hotswap_migration_duration_seconds",
			Help:    "Migration execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotswap_rollback_snapshots_total",
			Help: "Total rollback snapshots taken",
		}),
		RestoresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotswap_rollback_restores_total",
				Help: "Total rollback restores by outcome",
			},
			[]string{"outcome"},
		),
		SnapshotsRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hotswap_rollback_snapshots_retained",
			Help: "Snapshots currently retained in the rollback pool",
		}),
	}

	if registry != nil {
		registry.MustRegister(
			m.DependencyChecksTotal,
			m.CycleChecksTotal,
			m.CyclesDetectedTotal,
			m.CascadeReloadsTotal,
			m.ReloadOrderTruncated,
			m.IntegrityViolations,
			m.GraphNodes,
			m.GraphEdges,
			m.VersionsRegistered,
			m.CompatChecksTotal,
			m.MigrationsTotal,
			m.MigrationDuration,
			m.SnapshotsTotal,
			m.RestoresTotal,
			m.SnapshotsRetained,
		)
	}

	return m
}
