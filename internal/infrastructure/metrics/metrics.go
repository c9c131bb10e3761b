package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the batch engine.
type Metrics struct {
	// Engine metrics
	TransactionsProcessed prometheus.Counter
	TransactionsFailed    prometheus.Counter
	BatchesSubmitted      prometheus.Counter
	BatchesCompleted      prometheus.Counter
	BatchDuration         prometheus.Histogram
	BatchSize             prometheus.Histogram
	QueueDepth            prometheus.Gauge

	// Audit trail metrics
	BlocksAppended    prometheus.Counter
	ChainVerification *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TransactionsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "batchledger_transactions_processed_total",
			Help: "Total number of transactions accepted into the audit trail",
		}),
		TransactionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "batchledger_transactions_failed_total",
			Help: "Total number of transactions rejected by the processor",
		}),
		BatchesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "batchledger_batches_submitted_total",
			Help: "Total number of batches submitted",
		}),
		BatchesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "batchledger_batches_completed_total",
			Help: "Total number of batches completed",
		}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "batchledger_batch_duration_seconds",
			Help:    "Duration of batch processing",
			Buckets: prometheus.DefBuckets,
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "batchledger_batch_size",
			Help:    "Number of transactions per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "batchledger_queue_depth",
			Help: "Number of batches waiting in the work queue",
		}),
		BlocksAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "batchledger_blocks_appended_total",
			Help: "Total number of audit blocks appended",
		}),
		ChainVerification: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "batchledger_chain_verifications_total",
				Help: "Total audit chain verifications by result",
			},
			[]string{"result"},
		),
	}
}
