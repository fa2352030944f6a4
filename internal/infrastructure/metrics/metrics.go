// Package metrics provides Prometheus metrics for the transcript pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "transcript_intel"

// Metrics holds all Prometheus collectors for the service
type Metrics struct {
	// Pipeline metrics
	TranscriptsProcessed *prometheus.CounterVec
	ProcessingDuration   *prometheus.HistogramVec
	SegmentsProduced     prometheus.Counter
	NormalizeStrategy    *prometheus.CounterVec
	QualityWarnings      prometheus.Counter

	// Recognition metrics
	NamesDetected   *prometheus.CounterVec
	ProfilesCreated prometheus.Counter
	ProfilesMatched prometheus.Counter
	Unresolved      prometheus.Counter

	// Event publish metrics
	EventPublishTotal   *prometheus.CounterVec
	EventPublishErrors  *prometheus.CounterVec
	EventPublishLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TranscriptsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_processed_total",
			Help:      "Total number of transcripts run through the pipeline",
		}, []string{"source", "status"}),
		ProcessingDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "End-to-end pipeline latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"source"}),
		SegmentsProduced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_produced_total",
			Help:      "Total number of normalized speaker segments",
		}),
		NormalizeStrategy: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_strategy_total",
			Help:      "Normalizations by segmentation source",
		}, []string{"strategy"}),
		QualityWarnings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quality_warnings_total",
			Help:      "Transcripts flagged for low average confidence",
		}),
		NamesDetected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "names_detected_total",
			Help:      "Introduction detections by pattern",
		}, []string{"pattern_id"}),
		ProfilesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_profiles_created_total",
			Help:      "Voice profiles created from introductions",
		}),
		ProfilesMatched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_profiles_matched_total",
			Help:      "Existing voice profiles matched from introductions",
		}),
		Unresolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speakers_unresolved_total",
			Help:      "Speakers left without a name",
		}),
		EventPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Total number of events published",
		}, []string{"topic"}),
		EventPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Total number of event publish errors",
		}, []string{"topic"}),
		EventPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_publish_latency_seconds",
			Help:      "Event publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordProcessed records one pipeline run
func (m *Metrics) RecordProcessed(source string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.TranscriptsProcessed.WithLabelValues(source, status).Inc()
	m.ProcessingDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordNormalization records segment output of the normalizer
func (m *Metrics) RecordNormalization(strategy string, segments int, qualityWarning bool) {
	if m == nil {
		return
	}
	m.NormalizeStrategy.WithLabelValues(strategy).Inc()
	m.SegmentsProduced.Add(float64(segments))
	if qualityWarning {
		m.QualityWarnings.Inc()
	}
}

// RecordRecognition records speaker recognition outcomes
func (m *Metrics) RecordRecognition(patternIDs []string, created, matched, unresolved int) {
	if m == nil {
		return
	}
	for _, id := range patternIDs {
		m.NamesDetected.WithLabelValues(id).Inc()
	}
	m.ProfilesCreated.Add(float64(created))
	m.ProfilesMatched.Add(float64(matched))
	m.Unresolved.Add(float64(unresolved))
}

// RecordEventPublish records an event publish attempt
func (m *Metrics) RecordEventPublish(topic string, err error, latencySeconds float64) {
	if m == nil {
		return
	}
	m.EventPublishTotal.WithLabelValues(topic).Inc()
	m.EventPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.EventPublishErrors.WithLabelValues(topic).Inc()
	}
}
