package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *EmulatorConfig) error {
	if cfg == nil {
		return errors.New("configuração nula")
	}

	if err := cv.validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *EmulatorConfig) error {
	// O caminho do APK é checado a cada requisição, não aqui: o operador pode
	// gerar o arquivo depois que o servidor já está no ar.
	if strings.ContainsRune(cfg.Server.APKPath, 0) {
		return fmt.Errorf("apk_path contém byte nulo")
	}

	if cfg.Logging.File.Path != "" && strings.HasSuffix(cfg.Logging.File.Path, "/") {
		return fmt.Errorf("logging.file.path deve apontar para um arquivo, recebido diretório '%s'", cfg.Logging.File.Path)
	}

	return nil
}
