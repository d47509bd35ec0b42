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
// Package fastmockserver serve coleções de registros JSON como uma API REST
// consultável, pensada para testes de integração que precisam de um backend
// falso com schema validado.
//
// Visão Geral:
// Cada coleção é um array de registros no documento db.json, com a chave
// identificadora declarada em identifiers.json e, opcionalmente, um JSON
// Schema em schemas.json. Sem schema externo, o schema é inferido dos
// próprios registros.
//
// Sub-Pacotes Principais:
//
// 1. pkg/schema:
//   - Inferência, validação e conversão de tipos a partir de JSON Schema.
//
// 2. pkg/collection e pkg/store:
//   - Coleções em memória com escrita síncrona no DocumentStore
//     (arquivo, memória, Redis, S3, DynamoDB, SQLite ou Postgres).
//
// 3. pkg/query:
//   - Filtros (campo_op=valor), _sort/_order, _page/_limit com cabeçalho
//     Link, _embed/_expand, busca _q e expressões CEL em _where.
//
// 4. pkg/negotiation:
//   - Negociação de Accept/Content-Type e codecs JSON, XML e CSV.
//
// 5. pkg/transport e pkg/engine:
//   - Roteador HTTP, adaptador Lambda, recarga via SQS e a montagem do
//     servidor a partir do YAML.
//
// Exemplo de Consulta:
//
//	GET /books?genre_like=fiction&published.year_gte=1960&_sort=title&_page=1&_limit=5
//	GET /books/1?_embed=loans
//	GET /loans?_expand=book
//
// Exemplo de Configuração:
//
//	version: "1.0"
//	service:
//	  name: "library-mock"
//	  port: 8080
//	  logging:
//	    enabled: true
//	    format: "console"
//	storage:
//	  backend: "file"
//	  dir: "./data"
//	graphql:
//	  enabled: true
//
// Uso:
//
//	mockserver validate --config config.yaml
//	mockserver serve --config config.yaml
package fastmockserver
