package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/update-emulator/pkg/metrics"
	"github.com/raywall/update-emulator/pkg/routes"
	"github.com/rs/zerolog"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"

	shutdownTimeout = 5 * time.Second
)

type ctxKey string

const ContextKeyCorrID ctxKey = "correlation_id"

// NewHandler monta o roteador do emulador. Todo GET vai para o emitter, que
// decide a rota pelo path exato; outros verbos recebem o 405 do mux.
func NewHandler(emitter http.Handler, logger zerolog.Logger, recorder *metrics.Recorder) http.Handler {
	router := mux.NewRouter()
	router.SkipClean(true)
	router.PathPrefix("/").Handler(emitter).Methods(http.MethodGet)

	return ObservabilityMiddleware(router, logger, recorder)
}

// Server encapsula o http.Server e seu ciclo de vida.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer escuta em todas as interfaces na porta informada. Não há
// WriteTimeout: downloads lentos são longos por definição.
func NewServer(port int, handler http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Run abre o listener e serve até ctx ser cancelado. Falha ao abrir a porta
// é devolvida imediatamente.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("falha ao escutar em %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve atende conexões de ln até ctx ser cancelado e então faz shutdown
// gracioso, aguardando downloads em andamento por até shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Servidor HTTP ouvindo")
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("encerrando servidor")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("shutdown expirou, fechando conexões")
		return s.httpServer.Close()
	}
	return nil
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap permite que http.ResponseController alcance o Flush do writer original.
func (rw *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func ObservabilityMiddleware(next http.Handler, base zerolog.Logger, recorder *metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		corrID := r.Header.Get(HeaderCorrelationID)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, corrID)

		route := routes.Decide(r.URL.Path).String()
		logger := base.With().Str("correlation_id", corrID).Str("route", route).Logger()
		ctx := logger.WithContext(r.Context())
		ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			startTime:      start,
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		latency := time.Since(start)
		recorder.Request(route, wrapper.statusCode, latency)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Int64("latency_ms", latency.Milliseconds()).
			Msg("request completed")
	})
}
