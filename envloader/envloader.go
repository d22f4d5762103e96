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
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// LookupFunc resolve o valor de uma variável. O segundo retorno indica
// se a variável existe.
type LookupFunc func(key string) (string, bool)

// Option ajusta o comportamento do Load.
type Option func(*loader)

type loader struct {
	prefix string
	lookup LookupFunc
}

// WithPrefix prefixa todas as chaves das tags `env` (ex: "APP_" + "PORT").
func WithPrefix(prefix string) Option {
	return func(l *loader) { l.prefix = prefix }
}

// WithLookup substitui os.LookupEnv. Útil em testes.
func WithLookup(fn LookupFunc) Option {
	return func(l *loader) { l.lookup = fn }
}

// Load preenche uma struct a partir de variáveis de ambiente, usando as
// tags "env" e "envDefault". Campos cuja variável não existe (e sem
// default) mantêm o valor atual, o que permite sobrepor uma configuração
// já carregada de arquivo.
func Load(config interface{}, opts ...Option) error {
	l := &loader{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}

	val := reflect.ValueOf(config)
	if val.Kind() != reflect.Ptr || val.IsNil() || val.Elem().Kind() != reflect.Struct {
		return &InvalidConfigError{Value: reflect.TypeOf(config)}
	}

	return l.walk(val.Elem())
}

// MustLoad é como Load, mas entra em panic no erro.
func MustLoad(config interface{}, opts ...Option) {
	if err := Load(config, opts...); err != nil {
		panic(err)
	}
}

func (l *loader) walk(val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		meta := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		switch {
		case field.Kind() == reflect.Struct:
			if err := l.walk(field); err != nil {
				return err
			}
			continue
		case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			if err := l.walk(field.Elem()); err != nil {
				return err
			}
			continue
		}

		key := meta.Tag.Get("env")
		if key == "" {
			continue
		}
		key = l.prefix + key

		raw, ok := l.lookup(key)
		if !ok || raw == "" {
			raw = meta.Tag.Get("envDefault")
		}
		if raw == "" {
			continue
		}

		if err := assign(field, raw); err != nil {
			return &FieldError{FieldName: meta.Name, EnvVar: key, Value: raw, Err: err}
		}
	}

	return nil
}

func assign(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := parseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)

	default:
		return &UnsupportedTypeError{Type: field.Type()}
	}

	return nil
}

// parseDuration aceita "250ms", "1.5s" ou um número puro em segundos ("0.2").
func parseDuration(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &DurationError{Value: raw}
	}
	return time.Duration(secs * float64(time.Second)), nil
}
