package responder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/raywall/update-emulator/pkg/config"
	"github.com/raywall/update-emulator/pkg/metrics"
	"github.com/raywall/update-emulator/pkg/routes"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countProvider struct {
	mu     sync.Mutex
	counts map[string]float64
}

func newCountProvider() *countProvider {
	return &countProvider{counts: map[string]float64{}}
}

func (p *countProvider) Count(name string, v float64, tags []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[name] += v
	return nil
}
func (p *countProvider) Gauge(string, float64, []string) error     { return nil }
func (p *countProvider) Histogram(string, float64, []string) error { return nil }

// brokenPipeWriter aceita `okWrites` escritas e depois falha como um socket fechado.
type brokenPipeWriter struct {
	*httptest.ResponseRecorder
	okWrites int
	calls    int
}

func (b *brokenPipeWriter) Write(p []byte) (int, error) {
	b.calls++
	if b.calls > b.okWrites {
		return 0, syscall.EPIPE
	}
	return b.ResponseRecorder.Write(p)
}

func TestServeAPK_ClientDisconnectAbortsStream(t *testing.T) {
	path, data := writeAPK(t, "abort.apk", 10*1024)
	cfg := serverConfig(path)
	cfg.SlowChunkSize = 1024
	cfg.SlowDelay = time.Millisecond

	provider := newCountProvider()
	e := NewEmitter(cfg, config.DefaultRelease(), WithRecorder(metrics.NewRecorder(provider, zerolog.Nop())))

	w := &brokenPipeWriter{ResponseRecorder: httptest.NewRecorder(), okWrites: 2}
	req := httptest.NewRequest(http.MethodGet, "/apk-slow", nil)

	assert.NotPanics(t, func() { e.ServeHTTP(w, req) })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, w.calls, "deveria parar na primeira falha de escrita")
	assert.Equal(t, data[:2048], w.Body.Bytes())
	assert.Equal(t, 2048.0, provider.counts[metrics.MetricBytesSent])
	assert.Equal(t, 1.0, provider.counts[metrics.MetricStreamAborted])
}

func TestServeAPK_MetricsOnSuccess(t *testing.T) {
	path, data := writeAPK(t, "ok.apk", 3000)
	provider := newCountProvider()
	e := NewEmitter(serverConfig(path), config.DefaultRelease(), WithRecorder(metrics.NewRecorder(provider, zerolog.Nop())))

	rr := do(e, "/apk")
	assert.Equal(t, data, rr.Body.Bytes())
	assert.Equal(t, 3000.0, provider.counts[metrics.MetricBytesSent])
	assert.Zero(t, provider.counts[metrics.MetricStreamAborted])
}

func TestSendBlocks_ContextCancelStopsWaiting(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 4096)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	rr := httptest.NewRecorder()
	start := time.Now()
	written, err := sendBlocks(ctx, rr, bytes.NewReader(data), int64(len(data)),
		throttle{block: 1024, delay: 10 * time.Second, flush: true})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int64(1024), written)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSendBlocks_NoDelayAfterLastBlock(t *testing.T) {
	data := bytes.Repeat([]byte{1}, 2048)

	rr := httptest.NewRecorder()
	start := time.Now()
	written, err := sendBlocks(context.Background(), rr, bytes.NewReader(data), int64(len(data)),
		throttle{block: 1024, delay: 300 * time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, int64(2048), written)
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.Less(t, elapsed, 600*time.Millisecond)
}

func TestSendBlocks_ShortSource(t *testing.T) {
	// Arquivo encolheu depois do stat: o corpo fica menor que o Content-Length
	rr := httptest.NewRecorder()
	written, err := sendBlocks(context.Background(), rr, bytes.NewReader(make([]byte, 100)), 200,
		throttle{block: 64})

	assert.Equal(t, int64(100), written)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStreamError(t *testing.T) {
	err := &StreamError{Decision: routes.APKSlow, Written: 10, Err: syscall.EPIPE}
	assert.ErrorIs(t, err, syscall.EPIPE)
	assert.Contains(t, err.Error(), "apk_slow")
	assert.Contains(t, err.Error(), "10 bytes")
}
