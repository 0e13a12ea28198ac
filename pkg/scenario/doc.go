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
// Package scenario mantém o catálogo de cenários do simulador e decide qual
// cenário atende cada requisição.
//
// Um Registry publica gerações imutáveis: cada Publish valida a unicidade dos
// nomes, ordena os cenários por especificidade de rota e troca a geração
// corrente de forma atômica. Leitores nunca observam uma geração parcial.
//
// O Mapper resolve em três camadas:
//   - Exato: path literal idêntico ao da requisição; vence a primeira declaração.
//   - Padrão: primeira rota, em ordem de especificidade, cujo padrão casa.
//   - Default: nome configurado, quando o mapeamento padrão está habilitado.
//
// Sem cenário, Resolve devolve *NoMatchError (errors.Is com ErrNoMatchingScenario).
//
// Cenários são registrados por um Builder, que implementa Sink e DefinitionSink.
// Definições adiadas só são instanciadas em Build, o que permite ao sintetizador
// abortar o lote inteiro antes de qualquer publicação.
package scenario
