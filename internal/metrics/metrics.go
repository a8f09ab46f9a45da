package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the payment/fulfillment events worth alerting on.
// Verification failures are the security-critical series.
type Metrics struct {
	verificationFailures prometheus.Counter
	gatewayErrors        prometheus.Counter
	transitions          *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		verificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_payment_verification_failures_total",
			Help: "Payment confirmations rejected because of a bad signature",
		}),
		gatewayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_gateway_errors_total",
			Help: "Failed payment gateway order-create calls",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_lifecycle_transitions_total",
			Help: "Successful order lifecycle transitions by kind",
		}, []string{"transition"}),
	}
	reg.MustRegister(m.verificationFailures, m.gatewayErrors, m.transitions)
	return m
}

func (m *Metrics) VerificationFailed() { m.verificationFailures.Inc() }

func (m *Metrics) GatewayError() { m.gatewayErrors.Inc() }

func (m *Metrics) Transition(kind string) { m.transitions.WithLabelValues(kind).Inc() }
