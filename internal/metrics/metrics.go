// Package metrics registra las métricas Prometheus del servicio: HTTP, resultados
// de autenticación y pool de Postgres. Todos los métodos son nil-safe para que
// los servicios puedan construirse sin métricas (tests, CLI).
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	loginTotal     *prometheus.CounterVec
	twoFactorTotal *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec
	usersCreated   *prometheus.CounterVec
	sessionsEnded  *prometheus.CounterVec
}

// New crea y registra las métricas en reg. Si reg es nil usa un registry propio.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"}),
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Intentos de login por resultado",
		}, []string{"outcome"}), // ok|2fa_required|invalid_credentials|rate_limited|error
		twoFactorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_2fa_total",
			Help: "Operaciones 2FA por tipo y resultado",
		}, []string{"op", "outcome"}), // op: verify|setup|enable|disable
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		}, []string{"scope"}), // session|shared|2fa|http
		usersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_users_created_total",
			Help: "Usuarios creados por rol",
		}, []string{"role"}),
		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_sessions_ended_total",
			Help: "Sesiones terminadas por motivo",
		}, []string{"reason"}), // logout|expired
	}

	for _, c := range []prometheus.Collector{
		m.httpRequestsTotal, m.httpRequestDuration, m.httpInflight,
		m.loginTotal, m.twoFactorTotal, m.rateLimited, m.usersCreated, m.sessionsEnded,
	} {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler expone /metrics para el registry de m.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RegisterPool agrega gauges del pool de Postgres.
func (m *Metrics) RegisterPool(reg prometheus.Registerer, pool *pgxpool.Pool) error {
	if m == nil || pool == nil {
		return nil
	}
	return registerCollector(reg, newPoolCollector(pool))
}

// ---- HTTP ----

// TrackInflight incrementa el gauge y devuelve la función que lo decrementa.
func (m *Metrics) TrackInflight(method, path string) func() {
	if m == nil {
		return func() {}
	}
	g := m.httpInflight.WithLabelValues(strings.ToUpper(method), path)
	g.Inc()
	return g.Dec
}

// ObserveRequest registra status y latencia de un request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	method = strings.ToUpper(method)
	if status == 0 {
		status = http.StatusOK
	}
	m.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// ---- Auth ----

func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.loginTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) TwoFactor(op, outcome string) {
	if m != nil {
		m.twoFactorTotal.WithLabelValues(op, outcome).Inc()
	}
}

func (m *Metrics) RateLimited(scope string) {
	if m != nil {
		m.rateLimited.WithLabelValues(scope).Inc()
	}
}

func (m *Metrics) UserCreated(role string) {
	if m != nil {
		m.usersCreated.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) SessionEnded(reason string) {
	if m != nil {
		m.sessionsEnded.WithLabelValues(reason).Inc()
	}
}

// registerCollector registra el collector, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
