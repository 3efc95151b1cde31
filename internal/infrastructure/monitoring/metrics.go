package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomersRegisteredTotal prometheus.Counter
	LoansApprovedTotal       prometheus.Counter
	LoansRejectedTotal       prometheus.Counter
	CreditScoreComputed      prometheus.Histogram
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_engine_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_customers_registered_total",
				Help: "Total number of customers successfully registered.",
			},
		),
		LoansApprovedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_loans_approved_total",
				Help: "Total number of loan applications approved.",
			},
		),
		LoansRejectedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_loans_rejected_total",
				Help: "Total number of loan applications rejected.",
			},
		),
		CreditScoreComputed: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_engine_credit_score",
				Help:    "Distribution of computed credit scores.",
				Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCustomerRegistered() {
	Business.CustomersRegisteredTotal.Inc()
}

func RecordLoanDecision(approved bool) {
	if approved {
		Business.LoansApprovedTotal.Inc()
	} else {
		Business.LoansRejectedTotal.Inc()
	}
}

func RecordCreditScore(score int) {
	Business.CreditScoreComputed.Observe(float64(score))
}
