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
//
// Package envloader carrega variáveis de ambiente em campos de uma struct
// através das tags `env` e `envDefault`.
//
// Visão Geral:
// No emulador de atualização ele é a camada de override: a configuração é
// montada a partir dos defaults e do arquivo YAML, e em seguida Load aplica
// somente as variáveis que existem no ambiente. Campos sem variável
// definida permanecem intactos.
//
// Tipos Suportados:
//   - string, int*, uint*, bool, float*
//   - time.Duration, aceitando "250ms", "1.5s" ou segundos como número ("0.2")
//   - structs aninhadas e ponteiros para struct
//
// Exemplo:
//
//	type Server struct {
//		Port      int           `env:"PORT" envDefault:"8000"`
//		SlowDelay time.Duration `env:"SLOW_DELAY"`
//	}
//
//	var s Server
//	if err := envloader.Load(&s, envloader.WithPrefix("UPDATE_EMULATOR_")); err != nil {
//		log.Fatal(err)
//	}
package envloader
