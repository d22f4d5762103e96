package responder

import (
	"errors"
	"fmt"

	"github.com/raywall/update-emulator/pkg/routes"
)

// Falhas de configuração: viram um 500 explicativo para o cliente.
var (
	ErrAPKNotConfigured = errors.New("caminho do APK não configurado")
	ErrAPKNotFound      = errors.New("arquivo APK não encontrado")
)

// StreamError indica que o envio do APK foi interrompido no meio, tipicamente
// porque o cliente desconectou. Afeta apenas a resposta em andamento.
type StreamError struct {
	Decision routes.Decision
	Written  int64
	Err      error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s: stream interrompido após %d bytes: %v", e.Decision, e.Written, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
