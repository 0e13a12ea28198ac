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
// Package simulator é um simulador de serviços HTTP orientado a cenários. Cada
// requisição recebida é associada a um cenário nomeado, declarado no YAML de
// configuração ou sintetizado a partir de um documento Swagger 2.0 / OpenAPI 3.
//
// Visão Geral:
// O módulo é dividido em pacotes pequenos, cada um com uma responsabilidade:
//  1. routing: padrões de rota, ranking por especificidade e casamento de requisições.
//  2. scenario: registro em gerações atômicas e o Mapper (exato, padrão, default).
//  3. openapi: leitura do documento e síntese de um cenário por operação.
//  4. payload: compilação de schemas em regras de validação (CEL) e de geração.
//  5. engine: orquestra carga, recarga a quente e execução dos cenários.
//  6. transport: HTTP (gorilla/mux), Lambda (API Gateway) e sinais de recarga via SQS/Redis.
//
// Resolução de Cenários:
// O Mapper tenta, nesta ordem:
//   - Exato: o path da requisição é literalmente o path declarado.
//   - Padrão: o primeiro cenário, na ordem de especificidade, cujo padrão casa.
//   - Default: o cenário configurado em simulator.default_scenario.
//
// A resposta informa o cenário escolhido no cabeçalho X-Simulator-Scenario.
//
// Exemplo de Configuração (simulator.yaml):
//
//	simulator:
//	  default_scenario: fallback
//	  swagger:
//	    api: s3://specs/orders.yaml
//	    context_path: /sim
//	  scenarios:
//	    - name: fallback
//	      response:
//	        status: 503
//	        body: {"message": "indisponível"}
//	    - name: pedido-cancelado
//	      methods: [GET]
//	      path: /orders/{id}/cancel
//	      response:
//	        status: 200
//	        body: {"status": "CANCELLED"}
//	server:
//	  runtime: local
//	  port: 8080
//
// Executando:
//
//	simctl validate -file simulator.yaml
//	CONFIG_FILE_PATH=simulator.yaml simulator
package simulator
