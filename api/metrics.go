/*
metrics.go - Prometheus instrumentation

Counters are incremented inline by the handlers; gauges describing the quota
and capital state are refreshed periodically by MetricsJob, which the
scheduler runs on the configured cron expression. Gauges are therefore
eventually consistent with the store, never transactional with it.
*/
package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	ProfilesCreated prometheus.Counter

	ObjectivesOpen      prometheus.Gauge
	ObjectivesCompleted prometheus.Gauge
	ObjectivesOverdue   prometheus.Gauge
	ProfilesPending     prometheus.Gauge

	ActiveProfiles prometheus.Gauge
	ActiveCapital  prometheus.Gauge
	VolumeToday    prometheus.Gauge
}

// NewMetrics registers all collectors on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		ProfilesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "redviva_profiles_created_total",
			Help: "Betting profiles registered since process start",
		}),
		ObjectivesOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redviva_objectives_open",
			Help: "Profile creation objectives not yet complete",
		}),
		ObjectivesCompleted: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redviva_objectives_completed",
			Help: "Profile creation objectives fully met",
		}),
		ObjectivesOverdue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redviva_objectives_overdue",
			Help: "Open objectives past their deadline",
		}),
		ProfilesPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redviva_profiles_pending",
			Help: "Profiles still owed across open objectives",
		}),
		ActiveProfiles: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redviva_active_profiles",
			Help: "Profiles ready to operate",
		}),
		ActiveCapital: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redviva_active_capital",
			Help: "Capital deployed across betting houses",
		}),
		VolumeToday: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redviva_volume_today",
			Help: "Stake volume recorded during the operational day",
		}),
	}
}

// MetricsJob refreshes the state gauges from the store.
type MetricsJob struct {
	handler *Handler
	log     zerolog.Logger
}

func NewMetricsJob(h *Handler, log zerolog.Logger) *MetricsJob {
	return &MetricsJob{handler: h, log: log.With().Str("job", "metrics").Logger()}
}

func (j *MetricsJob) Name() string { return "metrics-refresh" }

func (j *MetricsJob) Run(ctx context.Context) error {
	h := j.handler

	ledgers, err := h.Store.List(ctx)
	if err != nil {
		return err
	}
	today := h.Clock.Today()
	var open, completed, overdue, pending int
	for _, l := range ledgers {
		if l.Complete {
			completed++
			continue
		}
		open++
		pending += l.Remaining()
		if today.After(l.Deadline) {
			overdue++
		}
	}
	h.Metrics.ObjectivesOpen.Set(float64(open))
	h.Metrics.ObjectivesCompleted.Set(float64(completed))
	h.Metrics.ObjectivesOverdue.Set(float64(overdue))
	h.Metrics.ProfilesPending.Set(float64(pending))

	snap, err := h.snapshot(ctx)
	if err != nil {
		return err
	}
	h.Metrics.ActiveProfiles.Set(float64(snap.ActiveProfiles))
	h.Metrics.ActiveCapital.Set(snap.ActiveCapital.InexactFloat64())
	h.Metrics.VolumeToday.Set(snap.VolumeToday.InexactFloat64())

	j.log.Debug().Int("open", open).Int("overdue", overdue).Msg("gauges refreshed")
	return nil
}
