package metrics

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Recorder traduz eventos do emulador em chamadas ao Provider. Falhas de
// envio só são logadas em debug. Um *Recorder nil descarta tudo.
type Recorder struct {
	provider Provider
	logger   zerolog.Logger
}

func NewRecorder(provider Provider, logger zerolog.Logger) *Recorder {
	return &Recorder{provider: provider, logger: logger}
}

// Request registra uma requisição concluída.
func (r *Recorder) Request(route string, status int, latency time.Duration) {
	if r == nil {
		return
	}
	tags := []string{"route:" + route, "status:" + strconv.Itoa(status)}
	r.check(MetricRequests, r.provider.Count(MetricRequests, 1, tags))
	r.check(MetricLatency, r.provider.Histogram(MetricLatency, float64(latency.Milliseconds()), tags))
}

// BytesSent registra quantos bytes do APK foram entregues.
func (r *Recorder) BytesSent(route string, n int64) {
	if r == nil {
		return
	}
	r.check(MetricBytesSent, r.provider.Count(MetricBytesSent, float64(n), []string{"route:" + route}))
}

// StreamAborted registra um download interrompido (ex: cliente desconectou).
func (r *Recorder) StreamAborted(route string) {
	if r == nil {
		return
	}
	r.check(MetricStreamAborted, r.provider.Count(MetricStreamAborted, 1, []string{"route:" + route}))
}

func (r *Recorder) check(name string, err error) {
	if err != nil {
		r.logger.Debug().Err(err).Str("metric", name).Msg("falha ao enviar métrica")
	}
}
