// Package metrics exposes Prometheus instruments for conversions.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/flatcsv"
)

const namespace = "flatcsv"

// Outcome labels that are not validation error kinds.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the conversion instruments. Source labels name the entry
// point, for example "http" or "cli".
type Metrics struct {
	Conversions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Rows        *prometheus.HistogramVec
	InputBytes  *prometheus.HistogramVec
}

// NewMetrics creates unregistered instruments.
func NewMetrics() *Metrics {
	return &Metrics{
		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "conversions",
				Name:      "total",
				Help:      "Total number of conversions by outcome (ok, error or validation error kind)",
			},
			[]string{"source", "outcome"},
		),

		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "conversion",
				Name:      "duration_seconds",
				Help:      "Conversion duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		Rows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "conversion",
				Name:      "rows",
				Help:      "Rows produced per successful conversion",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"source"},
		),

		InputBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "conversion",
				Name:      "input_bytes",
				Help:      "Size of the JSON input in bytes",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
			},
			[]string{"source"},
		),
	}
}

// Register adds every instrument to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Conversions, m.Duration, m.Rows, m.InputBytes} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Observe records one conversion that started at start. ds is nil on failure.
func (m *Metrics) Observe(source string, start time.Time, inputBytes int, ds *flatcsv.Dataset, err error) {
	if m == nil {
		return
	}
	m.Duration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	m.InputBytes.WithLabelValues(source).Observe(float64(inputBytes))
	m.Conversions.WithLabelValues(source, Outcome(err)).Inc()
	if err == nil && ds != nil {
		m.Rows.WithLabelValues(source).Observe(float64(len(ds.Rows)))
	}
}

// Outcome maps a conversion error to its label value.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var ve *flatcsv.ValidationError
	if errors.As(err, &ve) {
		return string(ve.Kind)
	}
	return OutcomeError
}
