package responder

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/raywall/update-emulator/pkg/routes"
	"github.com/rs/zerolog/log"
)

var typeByExtension = mime.TypeByExtension

// throttle descreve como os blocos são enviados.
type throttle struct {
	block int
	delay time.Duration
	flush bool
}

func (e *Emitter) throttleFor(d routes.Decision) throttle {
	if d == routes.APKSlow {
		return throttle{block: e.cfg.SlowChunkSize, delay: e.cfg.SlowDelay, flush: true}
	}
	return throttle{block: e.blockSize}
}

// statAPK verifica a pré-condição de /apk e /apk-slow. Sem caminho
// configurado o disco não é tocado.
func (e *Emitter) statAPK() (fs.FileInfo, error) {
	if !e.cfg.HasAPK() {
		return nil, ErrAPKNotConfigured
	}
	info, err := e.fsys.Stat(e.cfg.APKPath)
	if err != nil || !info.Mode().IsRegular() {
		return nil, ErrAPKNotFound
	}
	return info, nil
}

func (e *Emitter) serveAPK(w http.ResponseWriter, r *http.Request, d routes.Decision) {
	logger := log.Ctx(r.Context())

	info, err := e.statAPK()
	if err != nil {
		logger.Warn().Err(err).Str("apk_path", e.cfg.APKPath).Msg("download solicitado sem APK disponível")
		writeBody(w, r, http.StatusInternalServerError, textPlain, missingAPKBody)
		return
	}

	f, err := e.fsys.Open(e.cfg.APKPath)
	if err != nil {
		logger.Warn().Err(err).Str("apk_path", e.cfg.APKPath).Msg("falha ao abrir APK")
		writeBody(w, r, http.StatusInternalServerError, textPlain, missingAPKBody)
		return
	}
	defer f.Close()

	// O tamanho vem do único stat feito no início; o corpo nunca passa dele.
	size := info.Size()
	h := w.Header()
	h.Set("Content-Type", ContentTypeFor(e.cfg.APKPath))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)

	t := e.throttleFor(d)
	written, err := sendBlocks(r.Context(), w, io.LimitReader(f, size), size, t)
	e.recorder.BytesSent(d.String(), written)

	if err != nil {
		streamErr := &StreamError{Decision: d, Written: written, Err: err}
		logger.Warn().Err(streamErr).Int64("size", size).Msg("download abortado")
		e.recorder.StreamAborted(d.String())
		return
	}

	logger.Debug().
		Str("route", d.String()).
		Int64("bytes", written).
		Int("block", t.block).
		Dur("delay", t.delay).
		Msg("download concluído")
}

// sendBlocks copia src para w em blocos de exatamente t.block bytes (o
// último pode ser menor). Com delay > 0 a goroutine da requisição espera
// entre blocos; o cancelamento do contexto encerra a espera.
func sendBlocks(ctx context.Context, w http.ResponseWriter, src io.Reader, size int64, t throttle) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, t.block)

	var written int64
	for written < size {
		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)

			if t.flush {
				if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
					return written, err
				}
			}
		}

		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return written, rerr
		}

		if t.delay > 0 && written < size {
			if err := wait(ctx, t.delay); err != nil {
				return written, err
			}
		}
	}

	if written < size {
		return written, io.ErrUnexpectedEOF
	}
	return written, nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
