package shuffler

import "github.com/prometheus/client_golang/prometheus"

var (
	rotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shufflerd",
		Subsystem: "pipeline",
		Name:      "rotations_total",
		Help:      "Stock buffers rotated into the flip slots",
	})

	refillsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shufflerd",
		Subsystem: "pipeline",
		Name:      "refills_total",
		Help:      "Cheap source copies banked onto the stock queue",
	})

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shufflerd",
			Subsystem: "pipeline",
			Name:      "generations_total",
			Help:      "Resolved generations by result",
		},
		[]string{"result"},
	)

	generationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shufflerd",
		Subsystem: "pipeline",
		Name:      "generation_duration_seconds",
		Help:      "Wall time of generations, start to resolution",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
	})

	bufferGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "shufflerd",
			Subsystem: "pipeline",
			Name:      "buffers",
			Help:      "Buffers by current owner",
		},
		[]string{"owner"},
	)

	invariantTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shufflerd",
		Subsystem: "pipeline",
		Name:      "invariant_violations_total",
		Help:      "Scheduling invariant violations that aborted a pipeline",
	})
)

func init() {
	prometheus.MustRegister(rotationsTotal, refillsTotal, generationsTotal, generationDuration, bufferGauge, invariantTotal)
}

func observeCensus(c Census) {
	bufferGauge.WithLabelValues("free").Set(float64(c.Free))
	bufferGauge.WithLabelValues("stock").Set(float64(c.Stock))
	bufferGauge.WithLabelValues("slots").Set(float64(c.Slots))
	bufferGauge.WithLabelValues("inflight").Set(float64(c.InFlight))
}
