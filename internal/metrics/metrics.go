package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the process metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	ensembles   *prometheus.CounterVec
	requests    *prometheus.CounterVec
	modelsReady prometheus.Gauge
	datasetRows prometheus.Gauge
}

// New registers every collector on a private registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardiorisk",
			Name:      "predictions_total",
			Help:      "Model predictions by model and outcome.",
		}, []string{"model", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cardiorisk",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent in a single model prediction.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"model"}),
		ensembles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardiorisk",
			Name:      "ensemble_assessments_total",
			Help:      "Final assessments by majority label.",
		}, []string{"label"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardiorisk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by server, route and status code.",
		}, []string{"server", "route", "code"}),
		modelsReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cardiorisk",
			Name:      "models_loaded",
			Help:      "Number of classifiers loaded at startup.",
		}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cardiorisk",
			Name:      "dataset_records",
			Help:      "Rows in the loaded dataset.",
		}),
	}
	r.registry.MustRegister(
		r.predictions, r.latency, r.ensembles, r.requests, r.modelsReady, r.datasetRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObservePrediction records one model call
func (r *Recorder) ObservePrediction(model string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.predictions.WithLabelValues(model, outcome).Inc()
	r.latency.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveEnsemble records one final assessment
func (r *Recorder) ObserveEnsemble(highRisk bool) {
	if r == nil {
		return
	}
	label := "no_disease"
	if highRisk {
		label = "disease"
	}
	r.ensembles.WithLabelValues(label).Inc()
}

// ObserveRequest records one HTTP response
func (r *Recorder) ObserveRequest(server, route, code string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(server, route, code).Inc()
}

// SetModelsLoaded reports how many classifiers are available
func (r *Recorder) SetModelsLoaded(n int) {
	if r == nil {
		return
	}
	r.modelsReady.Set(float64(n))
}

// SetDatasetRecords reports the dataset size
func (r *Recorder) SetDatasetRecords(n int) {
	if r == nil {
		return
	}
	r.datasetRows.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
