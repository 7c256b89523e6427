// Package metrics exposes Prometheus instrumentation for the prediction path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symptomdx_predictions_total",
			Help: "Total number of successful predictions by disease",
		},
		[]string{"disease"},
	)

	PredictionFaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symptomdx_prediction_faults_total",
			Help: "Total number of failed predictions by fault kind",
		},
		[]string{"kind"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "symptomdx_prediction_duration_seconds",
			Help: "Duration of a single pipeline prediction in seconds",
			// Single booster inference: tens of microseconds to a few milliseconds.
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
	)

	PredictionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "symptomdx_prediction_confidence_percent",
			Help:    "Confidence of successful predictions, in percent",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	DoctorLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symptomdx_doctor_lookups_total",
			Help: "Total number of doctor directory lookups by outcome",
		},
		[]string{"outcome"},
	)

	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "symptomdx_model_info",
			Help: "Shape of the loaded model; value is the count for each dimension",
		},
		[]string{"dimension"},
	)
)

func RecordPrediction(disease string, confidence float64, d time.Duration) {
	PredictionsTotal.WithLabelValues(disease).Inc()
	PredictionConfidence.Observe(confidence)
	PredictionDuration.Observe(d.Seconds())
}

func RecordFault(kind string, d time.Duration) {
	PredictionFaultsTotal.WithLabelValues(kind).Inc()
	PredictionDuration.Observe(d.Seconds())
}

func RecordDoctorLookup(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DoctorLookupsTotal.WithLabelValues(outcome).Inc()
}

func SetModelShape(symptoms, diseases, specializations int) {
	ModelInfo.WithLabelValues("symptoms").Set(float64(symptoms))
	ModelInfo.WithLabelValues("diseases").Set(float64(diseases))
	ModelInfo.WithLabelValues("specializations").Set(float64(specializations))
}
