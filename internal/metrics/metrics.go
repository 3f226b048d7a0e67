package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	deployAttemptsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slotflare_deploy_attempts_total",
		Help: "Total number of deploy orchestration attempts recorded",
	})
	deployErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slotflare_deploy_errors_total",
		Help: "Total number of deploy orchestration attempts that failed",
	})
	alertsReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slotflare_alerts_received_total",
		Help: "Total number of alert callbacks received from deployed workers",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(deployAttemptsTotal, deployErrorsTotal, alertsReceivedTotal)
}

// IncDeployAttempt increments the deploy attempts counter.
func IncDeployAttempt() { deployAttemptsTotal.Inc() }

// IncDeployError increments the failed deploys counter.
func IncDeployError() { deployErrorsTotal.Inc() }

// IncAlertReceived increments the received alerts counter.
func IncAlertReceived() { alertsReceivedTotal.Inc() }
