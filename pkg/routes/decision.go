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

package routes

// Decision identifica qual comportamento simulado atende a requisição.
type Decision int

const (
	Info Decision = iota
	ReleaseJSON
	APKNormal
	APKSlow
	APKRedirect
	APK404
	APK500
)

// Caminhos conhecidos pelo emulador. Qualquer outro cai em Info.
const (
	PathReleaseJSON = "/releases/latest.json"
	PathAPK         = "/apk"
	PathAPKSlow     = "/apk-slow"
	PathAPKRedirect = "/apk-redirect"
	PathAPK404      = "/apk-404"
	PathAPK500      = "/apk-500"
)

var table = map[string]Decision{
	PathReleaseJSON: ReleaseJSON,
	PathAPKRedirect: APKRedirect,
	PathAPK404:      APK404,
	PathAPK500:      APK500,
	PathAPK:         APKNormal,
	PathAPKSlow:     APKSlow,
}

// Decide mapeia o path da URL (sem query string) para uma Decision.
// O match é exato: sem prefixo, sem normalização.
func Decide(path string) Decision {
	if d, ok := table[path]; ok {
		return d
	}
	return Info
}

// String retorna o nome usado em logs e tags de métricas.
func (d Decision) String() string {
	switch d {
	case ReleaseJSON:
		return "release_json"
	case APKNormal:
		return "apk_normal"
	case APKSlow:
		return "apk_slow"
	case APKRedirect:
		return "apk_redirect"
	case APK404:
		return "apk_404"
	case APK500:
		return "apk_500"
	default:
		return "info"
	}
}

// IsDownload indica se a decisão transmite o arquivo APK.
func (d Decision) IsDownload() bool {
	return d == APKNormal || d == APKSlow
}
