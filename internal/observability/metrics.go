package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// training pipeline and the prediction service.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	RunsCompleted   *prometheus.CounterVec // labels: outcome={success,error}
	RowsLoaded      prometheus.Counter
	RowsCancelled   prometheus.Counter

	// Per-family training metrics.
	TrainDuration *prometheus.HistogramVec // labels: family
	ModelScore    *prometheus.GaugeVec     // labels: family, metric={mae,rmse,r2}

	// Artifact persistence metrics.
	ArtifactErrors    prometheus.Counter
	ArtifactsUploaded prometheus.Counter

	// Prediction service metrics.
	ModelLoads         *prometheus.CounterVec // labels: model, outcome={success,error}
	ModelCache         *prometheus.CounterVec // labels: result={hit,miss}
	Predictions        *prometheus.CounterVec // labels: model, outcome={success,error}
	PredictionDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flight_delay",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		RunsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "rows_loaded_total",
			Help:      "Raw flight records read from the source.",
		}),
		RowsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "rows_cancelled_total",
			Help:      "Raw flight records dropped as cancelled.",
		}),
		TrainDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flight_delay",
			Name:      "train_duration_seconds",
			Help:      "Time spent fitting one model family.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"family"}),
		ModelScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "flight_delay",
			Name:      "model_score",
			Help:      "Evaluation metrics of the latest run by model family.",
		}, []string{"family", "metric"}),
		ArtifactErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "artifact_errors_total",
			Help:      "Artifacts that failed to persist or upload.",
		}),
		ArtifactsUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "artifacts_uploaded_total",
			Help:      "Artifact files uploaded to object storage.",
		}),
		ModelLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "model_loads_total",
			Help:      "Model bundle loads from object storage by model and outcome.",
		}, []string{"model", "outcome"}),
		ModelCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "model_cache_total",
			Help:      "Model cache lookups by result.",
		}, []string{"result"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flight_delay",
			Name:      "predictions_total",
			Help:      "Predictions served by model and outcome.",
		}, []string{"model", "outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flight_delay",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a single prediction request.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}

	prometheus.MustRegister(
		m.PipelineRunning,
		m.RunsCompleted,
		m.RowsLoaded,
		m.RowsCancelled,
		m.TrainDuration,
		m.ModelScore,
		m.ArtifactErrors,
		m.ArtifactsUploaded,
		m.ModelLoads,
		m.ModelCache,
		m.Predictions,
		m.PredictionDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flight_delay", Name: "pipeline_running"}),
		RunsCompleted:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flight_delay", Name: "pipeline_runs_total"}, []string{"outcome"}),
		RowsLoaded:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flight_delay", Name: "rows_loaded_total"}),
		RowsCancelled:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flight_delay", Name: "rows_cancelled_total"}),
		TrainDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "flight_delay", Name: "train_duration_seconds"}, []string{"family"}),
		ModelScore:         prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "flight_delay", Name: "model_score"}, []string{"family", "metric"}),
		ArtifactErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flight_delay", Name: "artifact_errors_total"}),
		ArtifactsUploaded:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flight_delay", Name: "artifacts_uploaded_total"}),
		ModelLoads:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flight_delay", Name: "model_loads_total"}, []string{"model", "outcome"}),
		ModelCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flight_delay", Name: "model_cache_total"}, []string{"result"}),
		Predictions:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flight_delay", Name: "predictions_total"}, []string{"model", "outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flight_delay", Name: "prediction_duration_seconds"}),
	}
}
