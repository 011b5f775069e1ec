package monitoring

import (
	"peerlink/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements ports.MetricsRecorder.
type PrometheusCollector struct {
	publishedTotal *prometheus.CounterVec
	consumedTotal  *prometheus.CounterVec
	deliveredTotal *prometheus.CounterVec
	fallbackTotal  *prometheus.CounterVec
	roomsEnsured   prometheus.Counter
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		publishedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peerlink_messages_published_total",
			Help: "Signaling payloads accepted by the relay, by kind and serving backend",
		}, []string{"kind", "mode"}),

		consumedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peerlink_consume_requests_total",
			Help: "Destructive fetch operations, by kind and serving backend",
		}, []string{"kind", "mode"}),

		deliveredTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peerlink_messages_delivered_total",
			Help: "Payloads handed to consumers, by kind",
		}, []string{"kind"}),

		fallbackTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peerlink_mailbox_fallback_total",
			Help: "Mailbox operations that fell back to the volatile backend",
		}, []string{"op"}),

		roomsEnsured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peerlink_rooms_ensured_total",
			Help: "Room registry upserts",
		}),
	}
}

func (p *PrometheusCollector) RecordPublish(kind domain.MessageKind, mode domain.BackendMode) {
	p.publishedTotal.WithLabelValues(string(kind), string(mode)).Inc()
}

func (p *PrometheusCollector) RecordConsume(kind domain.MessageKind, mode domain.BackendMode, delivered int) {
	p.consumedTotal.WithLabelValues(string(kind), string(mode)).Inc()
	if delivered > 0 {
		p.deliveredTotal.WithLabelValues(string(kind)).Add(float64(delivered))
	}
}

func (p *PrometheusCollector) RecordFallback(op string) {
	p.fallbackTotal.WithLabelValues(op).Inc()
}

func (p *PrometheusCollector) RecordRoomEnsured() {
	p.roomsEnsured.Inc()
}
