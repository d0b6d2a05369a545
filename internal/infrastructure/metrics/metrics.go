package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry registro dedicado de la API; no se usa el registro global.
	Registry = prometheus.NewRegistry()

	// HTTPRequests solicitudes por método, ruta y estado.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration duración de las solicitudes en segundos.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Submissions envíos de borradores por tipo (create, update) y resultado (ok, invalid, error).
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shipment_submissions_total", Help: "Shipment draft submissions by kind and result."},
		[]string{"kind", "result"},
	)
	// UpstreamLatency latencia de las llamadas al servicio de envíos en segundos.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "upstream_request_duration_seconds", Help: "Shipment service call latency in seconds.", Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15}},
		[]string{"operation", "outcome"},
	)
)

var regOnce sync.Once

// RegisterDefault registra los colectores en Registry. Es idempotente.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Submissions)
		Registry.MustRegister(UpstreamLatency)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Recorder adapta los colectores a los puertos de la aplicación y del cliente upstream.
type Recorder struct{}

// NewRecorder registra los colectores y devuelve el adaptador.
func NewRecorder() *Recorder {
	RegisterDefault()
	return &Recorder{}
}

// ObserveSubmission implementa draft.MetricsRecorder.
func (*Recorder) ObserveSubmission(kind, result string) {
	Submissions.WithLabelValues(kind, result).Inc()
}

// ObserveUpstream implementa upstream.Observer.
func (*Recorder) ObserveUpstream(operation, outcome string, elapsed time.Duration) {
	UpstreamLatency.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

// Middleware cuenta y mide cada solicitud. Usa la ruta registrada, no la URL, para acotar la cardinalidad.
func Middleware() fiber.Handler {
	RegisterDefault()
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < 400 {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(status)
		HTTPRequests.WithLabelValues(c.Method(), path, code).Inc()
		HTTPDuration.WithLabelValues(c.Method(), path, code).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone Registry en formato Prometheus.
func Handler() fiber.Handler {
	RegisterDefault()
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
