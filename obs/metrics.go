package obs

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	calcOnce sync.Once

	// CalculationsTotal counts quote calculations by outcome.
	CalculationsTotal *prometheus.CounterVec
	// CalculationDuration records calculation latency in milliseconds.
	CalculationDuration prometheus.Histogram
)

// MustRegisterCalcMetrics initialises and registers the engine's Prometheus
// collectors. Safe to call more than once; an already-registered collector
// is reused.
func MustRegisterCalcMetrics(namespace string, reg prometheus.Registerer) {
	calcOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_calculations_total",
			Help:      "Count of quote calculation outcomes.",
		}, []string{"result"})
		CalculationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_calculation_duration_ms",
			Help:      "Latency of quote calculations in milliseconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		})

		mustRegisterCollector(reg, CalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, CalculationDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CalculationDuration = v
			}
		})
	})
}

// ObserveCalculation records one calculation outcome. Nil-safe: it is a
// no-op until MustRegisterCalcMetrics has run, so the engine works without
// metrics wired.
func ObserveCalculation(result string, duration time.Duration) {
	if CalculationsTotal != nil {
		CalculationsTotal.WithLabelValues(result).Inc()
	}
	if CalculationDuration != nil {
		CalculationDuration.Observe(float64(duration.Microseconds()) / 1000.0)
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register calc metric: %w", err))
	}
}
