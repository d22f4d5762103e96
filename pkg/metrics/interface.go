package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus ou Logging sem alterar os handlers.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas emitidas pelo emulador.
const (
	MetricRequests      = "requests"
	MetricLatency       = "request.latency_ms"
	MetricBytesSent     = "apk.bytes_sent"
	MetricStreamAborted = "stream.aborted"
)
