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
// Package updateemulator é um servidor HTTP de mentira para testar o fluxo
// de atualização in-app de um aplicativo Android sem depender do GitHub ou
// de um servidor de releases real.
//
// Visão Geral:
// O binário cmd/update-emulator publica metadados de release e entrega um
// APK local por rotas fixas, cada uma simulando uma condição de rede:
//
//   - /releases/latest.json: metadados da versão (JSON compacto)
//   - /apk: download em velocidade máxima
//   - /apk-slow: download em blocos com espera entre eles
//   - /apk-redirect: 302 para /apk
//   - /apk-404 e /apk-500: falhas simuladas
//   - qualquer outro path: texto informativo
//
// Sub-Pacotes Principais:
//
// 1. pkg/routes:
//   - Classificação pura do path em uma Decision.
//
// 2. pkg/responder:
//   - Emissão de status, headers e corpo para cada Decision.
//   - Streaming em blocos com throttling cancelável.
//
// 3. pkg/config e envloader:
//   - Defaults, arquivo YAML (local, S3 ou DynamoDB), variáveis de ambiente
//     e flags, nessa ordem de precedência.
//   - Referências ${env.X}, ${ssm./path} e ${secret.id#campo} no arquivo.
//
// 4. pkg/transport:
//   - Roteador gorilla/mux com middleware de correlação e latência.
//   - Servidor HTTP com shutdown gracioso e adaptador para AWS Lambda.
//
// 5. pkg/logger, pkg/metrics e pkg/observability:
//   - zerolog com rotação opcional em arquivo e métricas DogStatsD.
package updateemulator
