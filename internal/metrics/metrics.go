package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the application's Prometheus collectors. A nil *Manager is
// valid and records nothing.
type Manager struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	OTPIssuedTotal      *prometheus.CounterVec
	EmailFailuresTotal  *prometheus.CounterVec
	OrdersCreatedTotal  prometheus.Counter
	OrderStatusTotal    *prometheus.CounterVec
	RefundsTotal        prometheus.Counter
	WithdrawalsTotal    *prometheus.CounterVec
	OnlineUsers         prometheus.Gauge
}

// New registers every collector on a private registry.
func New(namespace string) *Manager {
	m := &Manager{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		OTPIssuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_issued_total",
			Help:      "One-time passcodes issued by purpose.",
		}, []string{"purpose"}),
		EmailFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_failures_total",
			Help:      "Transactional emails that could not be sent, by kind.",
		}, []string{"kind"}),
		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders placed.",
		}),
		OrderStatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Order status transitions by target status.",
		}, []string{"status"}),
		RefundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_approved_total",
			Help:      "Refunds approved by sellers.",
		}),
		WithdrawalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawals_total",
			Help:      "Withdraw requests by status.",
		}, []string{"status"}),
		OnlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_online_users",
			Help:      "Users with at least one open realtime connection on this instance.",
		}),
	}

	m.Registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OTPIssuedTotal,
		m.EmailFailuresTotal,
		m.OrdersCreatedTotal,
		m.OrderStatusTotal,
		m.RefundsTotal,
		m.WithdrawalsTotal,
		m.OnlineUsers,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Manager) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Manager) OTPIssued(purpose string) {
	if m == nil {
		return
	}
	m.OTPIssuedTotal.WithLabelValues(purpose).Inc()
}

func (m *Manager) EmailFailed(kind string) {
	if m == nil {
		return
	}
	m.EmailFailuresTotal.WithLabelValues(kind).Inc()
}

func (m *Manager) OrderCreated() {
	if m == nil {
		return
	}
	m.OrdersCreatedTotal.Inc()
}

func (m *Manager) OrderStatusChanged(status string) {
	if m == nil {
		return
	}
	m.OrderStatusTotal.WithLabelValues(status).Inc()
}

func (m *Manager) RefundApproved() {
	if m == nil {
		return
	}
	m.RefundsTotal.Inc()
}

func (m *Manager) Withdrawal(status string) {
	if m == nil {
		return
	}
	m.WithdrawalsTotal.WithLabelValues(status).Inc()
}

func (m *Manager) SetOnlineUsers(n int) {
	if m == nil {
		return
	}
	m.OnlineUsers.Set(float64(n))
}
