package responder

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raywall/update-emulator/pkg/config"
	"github.com/raywall/update-emulator/pkg/metrics"
	"github.com/raywall/update-emulator/pkg/routes"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBlockSize é o tamanho do bloco em /apk (sem throttling).
	DefaultBlockSize = 256 * 1024

	// FallbackAPKName é usado no Content-Disposition quando nenhum APK foi configurado.
	FallbackAPKName = "VishnuCast-latest.apk"

	// AndroidPackageType é o Content-Type dos downloads de APK.
	AndroidPackageType = "application/vnd.android.package-archive"
	textPlain          = "text/plain; charset=utf-8"
	octetStream        = "application/octet-stream"
)

var (
	simulated500Body = []byte("Internal Server Error (simulated)")
	missingAPKBody   = []byte("APK file not found on server. Start the server with -apk <path-to-apk>")
	infoBody         = []byte("Mock update server is running.\n" +
		"Endpoints: /apk, /apk-slow, /apk-redirect, /apk-404, /apk-500, /releases/latest.json\n")
)

// FileSystem é a fonte de bytes do APK. Em produção é o disco local.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	Open(name string) (fs.File, error)
}

type osFS struct{}

func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (osFS) Open(name string) (fs.File, error)     { return os.Open(name) }

// Emitter escreve a resposta de cada Decision. Não guarda estado entre
// requisições: a configuração é copiada na construção e apenas lida.
type Emitter struct {
	cfg       config.ServerConfig
	release   config.ReleaseMetadata
	recorder  *metrics.Recorder
	fsys      FileSystem
	blockSize int
}

// Option configura um Emitter na construção.
type Option func(*Emitter)

// WithRecorder liga o envio de métricas de download.
func WithRecorder(r *metrics.Recorder) Option {
	return func(e *Emitter) { e.recorder = r }
}

// WithFileSystem troca a origem do APK (usado em testes).
func WithFileSystem(fsys FileSystem) Option {
	return func(e *Emitter) { e.fsys = fsys }
}

// WithBlockSize altera o bloco usado em /apk. Valores <= 0 são ignorados.
func WithBlockSize(n int) Option {
	return func(e *Emitter) {
		if n > 0 {
			e.blockSize = n
		}
	}
}

// NewEmitter cria um Emitter com a configuração imutável do servidor.
func NewEmitter(cfg config.ServerConfig, release config.ReleaseMetadata, opts ...Option) *Emitter {
	e := &Emitter{
		cfg:       cfg,
		release:   release,
		fsys:      osFS{},
		blockSize: DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ServeHTTP decide a rota pelo path e emite a resposta.
func (e *Emitter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Emit(w, r, routes.Decide(r.URL.Path))
}

// Emit escreve status, headers e body para a decisão informada.
func (e *Emitter) Emit(w http.ResponseWriter, r *http.Request, d routes.Decision) {
	// Regra por prefixo: cobre inclusive /apk-404, /apk-500 e o 500 de APK ausente.
	if strings.HasPrefix(r.URL.Path, routes.PathAPK) {
		w.Header().Set("Content-Disposition", `attachment; filename="`+e.AttachmentName()+`"`)
	}

	switch d {
	case routes.ReleaseJSON:
		e.releaseJSON(w, r)
	case routes.APKRedirect:
		w.Header().Set("Content-Type", octetStream)
		w.Header().Set("Location", routes.PathAPK)
		w.WriteHeader(http.StatusFound)
	case routes.APK404:
		w.Header().Set("Content-Type", octetStream)
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusNotFound)
	case routes.APK500:
		writeBody(w, r, http.StatusInternalServerError, textPlain, simulated500Body)
	case routes.APKNormal, routes.APKSlow:
		e.serveAPK(w, r, d)
	default:
		writeBody(w, r, http.StatusOK, textPlain, infoBody)
	}
}

// AttachmentName é o nome do arquivo anunciado no Content-Disposition.
func (e *Emitter) AttachmentName() string {
	if !e.cfg.HasAPK() {
		return FallbackAPKName
	}
	return filepath.Base(e.cfg.APKPath)
}

// Release devolve os metadados publicados, com assetName igual ao nome do
// APK configurado.
func (e *Emitter) Release() config.ReleaseMetadata {
	rel := e.release
	if e.cfg.HasAPK() {
		rel.AssetName = filepath.Base(e.cfg.APKPath)
	}
	return rel
}

// MarshalRelease serializa os metadados em JSON compacto, sem escape de HTML
// e sem quebra de linha final.
func MarshalRelease(rel config.ReleaseMetadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rel); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (e *Emitter) releaseJSON(w http.ResponseWriter, r *http.Request) {
	body, err := MarshalRelease(e.Release())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("falha ao serializar release")
		http.Error(w, "release serialization failed", http.StatusInternalServerError)
		return
	}
	writeBody(w, r, http.StatusOK, "application/json", body)
}

// ContentTypeFor infere o tipo pela extensão e força o tipo de pacote
// Android quando a inferência não aponta para um.
func ContentTypeFor(path string) string {
	ctype := typeByExtension(filepath.Ext(path))
	if !strings.Contains(ctype, "android") {
		return AndroidPackageType
	}
	return ctype
}

func writeBody(w http.ResponseWriter, r *http.Request, status int, ctype string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", ctype)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("cliente desconectou antes do fim da resposta")
	}
}
