package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the producer and consumer instruments. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	published       *prometheus.CounterVec
	publishErrors   *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec

	received       *prometheus.CounterVec
	processed      *prometheus.CounterVec
	failed         *prometheus.CounterVec
	duplicate      *prometheus.CounterVec
	deadLetter     *prometheus.CounterVec
	handleDuration *prometheus.HistogramVec
}

// NewMetrics registers the kafka instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	consumerLabels := []string{"topic", "consumer_group"}
	return &Metrics{
		published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Total number of Kafka messages published",
		}, []string{"topic"}),
		publishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Total number of Kafka publish errors",
		}, []string{"topic"}),
		publishDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Duration of Kafka publish operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
		received: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_received_total",
			Help: "Total number of Kafka messages fetched from the broker",
		}, consumerLabels),
		processed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_processed_total",
			Help: "Total number of successfully processed Kafka messages",
		}, consumerLabels),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_failed_total",
			Help: "Total number of Kafka messages that failed all retries",
		}, consumerLabels),
		duplicate: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_duplicate_total",
			Help: "Total number of duplicate Kafka messages skipped",
		}, consumerLabels),
		deadLetter: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_dlq_published_total",
			Help: "Total number of messages published to the dead-letter topic",
		}, consumerLabels),
		handleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_consumer_processing_duration_seconds",
			Help:    "Duration of Kafka message processing in seconds",
			Buckets: prometheus.DefBuckets,
		}, consumerLabels),
	}
}

func (m *Metrics) observePublish(topic string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.publishDuration.WithLabelValues(topic).Observe(seconds)
	if err != nil {
		m.publishErrors.WithLabelValues(topic).Inc()
		return
	}
	m.published.WithLabelValues(topic).Inc()
}

func (m *Metrics) incReceived(topic, group string) {
	if m != nil {
		m.received.WithLabelValues(topic, group).Inc()
	}
}

func (m *Metrics) observeHandled(topic, group string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.handleDuration.WithLabelValues(topic, group).Observe(seconds)
	if err != nil {
		m.failed.WithLabelValues(topic, group).Inc()
		return
	}
	m.processed.WithLabelValues(topic, group).Inc()
}

func (m *Metrics) incDuplicate(topic, group string) {
	if m != nil {
		m.duplicate.WithLabelValues(topic, group).Inc()
	}
}

func (m *Metrics) incDeadLetter(topic, group string) {
	if m != nil {
		m.deadLetter.WithLabelValues(topic, group).Inc()
	}
}
