// Package monitoring, Prometheus metriklerini toplar.
//
// Metrics iki kaynaktan beslenir: events.Dispatcher üzerinden gelen yaşam
// döngüsü olayları (satın alma, kapasite reddi, onay, tarama) ve HTTP
// middleware'i (istek sayısı ve süresi). Her Metrics kendi Registry'sini
// taşır; testlerde global registry kirlenmez.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/pkg/events"
)

const namespace = "ticketbox"

type Metrics struct {
	registry *prometheus.Registry

	lifecycleEvents *prometheus.CounterVec
	ticketsSold     prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// PurchaseSummary, order.purchased olayının payload'ında taşınan ve
// metriklerin okuduğu alanlar.
type PurchaseSummary interface {
	PurchasedQuantity() int64
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		lifecycleEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_events_total",
				Help:      "Lifecycle events dispatched by the services, by event name",
			},
			[]string{"event"},
		),
		ticketsSold: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tickets_sold_total",
				Help:      "Ticket units committed by purchases",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// Handle, events.Listener implementasyonu.
func (m *Metrics) Handle(event events.Event) error {
	m.lifecycleEvents.WithLabelValues(event.Name()).Inc()

	if event.Name() == events.EventOrderPurchased {
		if summary, ok := event.Payload().(PurchaseSummary); ok {
			m.ticketsSold.Add(float64(summary.PurchasedQuantity()))
		}
	}
	return nil
}

// Middleware, her isteğin durum kodunu ve süresini kaydeder.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := response.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.Status)).Inc()
		m.httpDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler, /metrics endpoint'i.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
