package metrics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	prometheus_metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	ginmiddleware "github.com/slok/go-http-metrics/middleware/gin"
)

const (
	metricsNamespace = "emargement"
	metricsSubsystem = "signature"
	resultLabel      = "result"
	roleLabel        = "role"
)

// Service は Prometheus レジストリと HTTP 計測ミドルウェアをまとめたもの
type Service struct {
	registry    *prometheus.Registry
	middleware  middleware.Middleware
	submitCount *prometheus.CounterVec
	queryCount  *prometheus.CounterVec
}

func NewService() *Service {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	submitCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "submit_total",
			Help:      "Signature submissions by outcome",
		},
		[]string{resultLabel, roleLabel},
	)
	reg.MustRegister(submitCount)

	queryCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "query_total",
			Help:      "Signature list/validate queries by outcome",
		},
		[]string{"kind", resultLabel},
	)
	reg.MustRegister(queryCount)

	return &Service{
		registry: reg,
		middleware: middleware.New(middleware.Config{
			Service: metricsNamespace,
			Recorder: prometheus_metrics.NewRecorder(prometheus_metrics.Config{
				Registry: reg,
			}),
		}),
		submitCount: submitCount,
		queryCount:  queryCount,
	}
}

// Middleware: handlerID を空にするとリクエストパスがラベルになる
func (s *Service) Middleware() gin.HandlerFunc {
	return ginmiddleware.Handler("", s.middleware)
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

func (s *Service) ObserveSubmission(result, role string) {
	s.submitCount.With(prometheus.Labels{resultLabel: result, roleLabel: role}).Inc()
}

func (s *Service) ObserveQuery(kind, result string) {
	s.queryCount.With(prometheus.Labels{"kind": kind, resultLabel: result}).Inc()
}

func (s *Service) Registry() *prometheus.Registry { return s.registry }
