// Package metrics exposes match engine counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/Dosada05/league-simulator/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "league"

// Recorder counts what happens on the pitch. A nil Recorder is valid and
// records nothing, so tests and tools can skip metrics entirely.
type Recorder struct {
	occurrences   *prometheus.CounterVec
	pauses        *prometheus.CounterVec
	matches       prometheus.Counter
	seasons       prometheus.Counter
	attendance    prometheus.Histogram
	roundDuration prometheus.Histogram
	registry      *prometheus.Registry
}

// NewRecorder registers every collector on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		occurrences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occurrences_total",
			Help:      "Match occurrences by type.",
		}, []string{"type"}),
		pauses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pauses_total",
			Help:      "Fixtures paused for a manager decision, by reason.",
		}, []string{"reason"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Fixtures played to full time and persisted.",
		}),
		seasons: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seasons_closed_total",
			Help:      "Seasons closed by the post-season step.",
		}),
		attendance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_attendance",
			Help:      "Attendance per persisted fixture.",
			Buckets:   prometheus.ExponentialBuckets(500, 2, 8),
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Wall time from round start to the last fixture persisted.",
			Buckets:   prometheus.DefBuckets,
		}),
		registry: reg,
	}
	reg.MustRegister(r.occurrences, r.pauses, r.matches, r.seasons, r.attendance, r.roundDuration)
	return r
}

func (r *Recorder) RecordOccurrence(o models.Occurrence) {
	if r == nil {
		return
	}
	r.occurrences.WithLabelValues(string(o.Type)).Inc()
}

func (r *Recorder) RecordPause(reason string) {
	if r == nil {
		return
	}
	r.pauses.WithLabelValues(reason).Inc()
}

// RecordMatch counts one persisted fixture and its attendance.
func (r *Recorder) RecordMatch(attendance int) {
	if r == nil {
		return
	}
	r.matches.Inc()
	r.attendance.Observe(float64(attendance))
}

func (r *Recorder) RecordRound(d time.Duration) {
	if r == nil {
		return
	}
	r.roundDuration.Observe(d.Seconds())
}

func (r *Recorder) RecordSeason() {
	if r == nil {
		return
	}
	r.seasons.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
