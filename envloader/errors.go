// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package envloader

import (
	"fmt"
	"reflect"
)

// InvalidConfigError indica que Load não recebeu um ponteiro não nulo para struct.
type InvalidConfigError struct {
	Value reflect.Type
}

func (e *InvalidConfigError) Error() string {
	if e.Value == nil {
		return "envloader: config must be a non-nil pointer to struct, got nil"
	}
	if e.Value.Kind() == reflect.Ptr {
		return fmt.Sprintf("envloader: config must be a non-nil pointer to struct, got pointer to %s", e.Value.Elem().Kind())
	}
	return fmt.Sprintf("envloader: config must be a non-nil pointer to struct, got %s", e.Value.Kind())
}

// FieldError encapsula a falha de conversão de uma variável para o campo.
//
// Exemplo: "envloader: error setting field Port from env APP_PORT=abc: ..."
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("envloader: error setting field %s from env %s=%s: %v",
		e.FieldName, e.EnvVar, e.Value, e.Err)
}

// Unwrap expõe o erro de conversão original (ex: *strconv.NumError).
func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError é retornado para campos sem conversão (map, slice, interface).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("envloader: unsupported type %s", e.Type)
}

// DurationError é retornado quando o valor não é nem duração Go nem segundos.
type DurationError struct {
	Value string
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("envloader: invalid duration %q (use 250ms, 1.5s or seconds as a number)", e.Value)
}
