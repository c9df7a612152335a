package predictor

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded in prediction_runs_total.
const (
	OutcomeOK       = "ok"
	OutcomeExit     = "exit_error"
	OutcomeTimeout  = "timeout"
	OutcomeStartErr = "error"
)

// InstrumentedRunner records the outcome and duration of every run of the wrapped Runner.
type InstrumentedRunner struct {
	next     Runner
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewInstrumentedRunner(next Runner, reg prometheus.Registerer) (*InstrumentedRunner, error) {
	r := &InstrumentedRunner{
		next: next,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_runs_total",
			Help: "Prediction program runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "Wall time of prediction program runs.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
	}
	for _, c := range []prometheus.Collector{r.runs, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *InstrumentedRunner) Run(ctx context.Context, query string) (*Result, error) {
	start := time.Now()
	res, err := r.next.Run(ctx, query)
	r.duration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		r.runs.WithLabelValues(OutcomeTimeout).Inc()
	case err != nil:
		r.runs.WithLabelValues(OutcomeStartErr).Inc()
	case res.ExitCode != 0:
		r.runs.WithLabelValues(OutcomeExit).Inc()
	default:
		r.runs.WithLabelValues(OutcomeOK).Inc()
	}
	return res, err
}
