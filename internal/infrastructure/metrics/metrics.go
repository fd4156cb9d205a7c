// Package metrics expone los collectors de Prometheus del PDV y los observers que los alimentan.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics agrupa los collectors sobre un registry propio (uno por proceso, uno por test).
type Metrics struct {
	reg *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	salesRecorded       prometheus.Counter
	salesRevenue        prometheus.Counter
	salePayments        *prometheus.CounterVec
	salesCancelled      prometheus.Counter
	periodsClosed       prometheus.Counter
	commissionAccrued   prometheus.Counter
	storageDuration     *prometheus.HistogramVec
}

// New registra los collectors del PDV más los de runtime Go y proceso.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pdv_http_requests_total",
			Help: "Total de requisições HTTP",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdv_http_request_duration_seconds",
			Help:    "Duração das requisições HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		salesRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "pdv_sales_recorded_total",
			Help: "Vendas registradas",
		}),
		salesRevenue: f.NewCounter(prometheus.CounterOpts{
			Name: "pdv_sales_revenue_reais_total",
			Help: "Soma dos totais das vendas registradas, em reais",
		}),
		salePayments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pdv_sale_payments_total",
			Help: "Pagamentos por forma de pagamento",
		}, []string{"method"}),
		salesCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "pdv_sales_cancelled_total",
			Help: "Vendas canceladas",
		}),
		periodsClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "pdv_periods_closed_total",
			Help: "Períodos de vendas fechados",
		}),
		commissionAccrued: f.NewCounter(prometheus.CounterOpts{
			Name: "pdv_commission_accrued_reais_total",
			Help: "Comissão acumulada nos fechamentos, em reais",
		}),
		storageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdv_storage_operation_duration_seconds",
			Help:    "Duração das operações no storage de fotos",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op", "result"}),
	}
}

// Registry acceso al registry (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware mide cada request por ruta registrada (no por path crudo, para acotar cardinalidad).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "desconhecida"
		}
		m.ObserveHTTPRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}

// ObserveHTTPRequest registra una request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	s := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, route, s).Inc()
	m.httpRequestDuration.WithLabelValues(method, route, s).Observe(d.Seconds())
}

// SaleRecorded observer del ledger.
func (m *Metrics) SaleRecorded(total decimal.Decimal, methods []string) {
	m.salesRecorded.Inc()
	m.salesRevenue.Add(total.InexactFloat64())
	for _, method := range methods {
		m.salePayments.WithLabelValues(method).Inc()
	}
}

// SaleCancelled observer del ledger.
func (m *Metrics) SaleCancelled() {
	m.salesCancelled.Inc()
}

// PeriodClosed observer del motor de períodos.
func (m *Metrics) PeriodClosed(_, commission decimal.Decimal) {
	m.periodsClosed.Inc()
	m.commissionAccrued.Add(commission.InexactFloat64())
}

// ObserveStorage duración de una operación del storage de fotos.
func (m *Metrics) ObserveStorage(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storageDuration.WithLabelValues(op, result).Observe(d.Seconds())
}
