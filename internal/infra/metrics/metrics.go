package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores de domínio do fluxo de recuperação. Ficam num pacote próprio
// para que adapters fora do HTTP (fila, IA, gateway) não dependam da camada web.
var (
	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of platform webhook events received",
		},
		[]string{"platform", "event"},
	)

	messagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recovery_messages_sent_total",
			Help: "Total number of recovery messages delivered",
		},
	)

	generatorFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "generator_fallbacks_total",
			Help: "Total number of turns answered with the fallback template",
		},
	)

	leadsByOutcome = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_outcome_total",
			Help: "Leads per lifecycle outcome",
		},
		[]string{"outcome"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func RecordWebhookEvent(platform, event string) {
	webhookEvents.WithLabelValues(platform, event).Inc()
}

func RecordMessageSent() {
	messagesSent.Inc()
}

func RecordGeneratorFallback() {
	generatorFallbacks.Inc()
}

func RecordLeadOutcome(outcome string) {
	leadsByOutcome.WithLabelValues(outcome).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
