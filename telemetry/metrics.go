package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds the tracking collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	cfg      MetricsConfig
	registry *prometheus.Registry

	ticks         prometheus.Counter
	syncPasses    *prometheus.CounterVec
	syncDuration  prometheus.Histogram
	roleUpdates   *prometheus.CounterVec
	roleSkips     *prometheus.CounterVec
	adopted       prometheus.Counter
	hierarchyDiag *prometheus.CounterVec
	framesPub     prometheus.Counter
}

// NewMetrics creates the collectors on a private registry. It returns nil when
// metrics are disabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	ns := cfg.Namespace
	m := &Metrics{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "ticks_total",
			Help:      "Scheduler ticks executed.",
		}),
		syncPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "sync_passes_total",
			Help:      "Pose synchronization passes by outcome.",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "sync_duration_seconds",
			Help:      "Duration of pose synchronization passes.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),
		roleUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "role_updates_total",
			Help:      "Tracked entity transform writes by role.",
		}, []string{"role"}),
		roleSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "role_skips_total",
			Help:      "Skipped role updates by role and reason.",
		}, []string{"role", "reason"}),
		adopted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "trackers_adopted_total",
			Help:      "Trackers parented under the tracking root.",
		}),
		hierarchyDiag: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "hierarchy_diagnostics_total",
			Help:      "Tracking root lookups that found zero or several roots.",
		}, []string{"kind"}),
		framesPub: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "frames_published_total",
			Help:      "Frame states published by the runtime driver.",
		}),
	}
	m.registry.MustRegister(
		m.ticks, m.syncPasses, m.syncDuration, m.roleUpdates, m.roleSkips,
		m.adopted, m.hierarchyDiag, m.framesPub,
	)
	return m
}

// Registry returns the underlying registry, or nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Tick() {
	if m != nil {
		m.ticks.Inc()
	}
}

func (m *Metrics) FramePublished() {
	if m != nil {
		m.framesPub.Inc()
	}
}

// SyncPass records one synchronization pass.
func (m *Metrics) SyncPass(skipped bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if skipped {
		outcome = "skipped"
	}
	m.syncPasses.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(d.Seconds())
}

func (m *Metrics) RoleUpdated(role string) {
	if m != nil {
		m.roleUpdates.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) RoleSkipped(role, reason string) {
	if m != nil {
		m.roleSkips.WithLabelValues(role, reason).Inc()
	}
}

func (m *Metrics) TrackersAdopted(n int) {
	if m != nil && n > 0 {
		m.adopted.Add(float64(n))
	}
}

func (m *Metrics) HierarchyDiagnostic(kind string) {
	if m != nil {
		m.hierarchyDiag.WithLabelValues(kind).Inc()
	}
}

// Serve exposes the registry over HTTP until ctx is done.
func (m *Metrics) Serve(ctx context.Context, log zerolog.Logger) error {
	if m == nil {
		return nil
	}
	path := m.cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: m.cfg.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", m.cfg.Listen).Str("path", path).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
