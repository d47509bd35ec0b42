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
// Package envloader aplica variáveis de ambiente e valores padrão sobre uma
// struct de configuração já preenchida (tipicamente decodificada do YAML).
//
// Regras:
//   - `env:"VAR"`: se VAR estiver definida, seu valor sobrescreve o campo.
//   - `envDefault:"valor"`: aplicado somente quando o campo ainda está com
//     o valor zero, para não desfazer o que veio do arquivo.
//   - Structs aninhadas e ponteiros para struct são percorridos.
//   - Tipos suportados: string, int*, uint*, bool, float*, time.Duration e
//     []string (valores separados por vírgula).
//
// Exemplo:
//
//	type Config struct {
//	    Port    int           `yaml:"port" env:"MOCK_PORT" envDefault:"8080"`
//	    Timeout time.Duration `yaml:"timeout" envDefault:"30s"`
//	}
//
//	var cfg Config
//	_ = yaml.Unmarshal(data, &cfg)
//	if err := envloader.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
package envloader
