// Package metrics records Prometheus counters for session events.
// A nil *Recorder is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "payouts"

// Import results used as the "result" label.
const (
	ImportApplied  = "applied"
	ImportRejected = "rejected"
)

// Recorder holds the session's collectors.
type Recorder struct {
	recipients  prometheus.Gauge
	dropped     *prometheus.CounterVec
	truncations prometheus.Counter
	imports     *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		recipients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recipients",
			Help:      "Number of live recipients.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_dropped_total",
			Help:      "Records dropped by validation, by record type.",
		}, []string{"record"}),
		truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capacity_truncations_total",
			Help:      "Adds truncated by the recipient limits.",
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "CSV imports, by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{r.recipients, r.dropped, r.truncations, r.imports} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SetRecipients records the live recipient count.
func (r *Recorder) SetRecipients(n int) {
	if r == nil {
		return
	}
	r.recipients.Set(float64(n))
}

// Dropped counts n records of the given type ("recipient" or "group") dropped by validation.
func (r *Recorder) Dropped(record string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.dropped.WithLabelValues(record).Add(float64(n))
}

// Truncated counts one truncated add.
func (r *Recorder) Truncated() {
	if r == nil {
		return
	}
	r.truncations.Inc()
}

// Import counts one import with the given result.
func (r *Recorder) Import(result string) {
	if r == nil {
		return
	}
	r.imports.WithLabelValues(result).Inc()
}
