package routing

import (
	"sort"
	"strings"
)

// ComparePatterns ordena dois patterns pelo grau de especificidade: o mais específico vem
// primeiro (resultado negativo). Patterns nulos são os menos específicos; dois nulos são iguais.
//
// A política, em ordem:
//  1. mais segmentos vence;
//  2. com a mesma contagem, no primeiro índice em que apenas um lado é variável, o literal vence;
//  3. sem divergência, comparação lexicográfica do texto bruto.
func ComparePatterns(a, b *Pattern) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if len(a.segments) != len(b.segments) {
		if len(a.segments) > len(b.segments) {
			return -1
		}
		return 1
	}

	for i := range a.variable {
		if a.variable[i] == b.variable[i] {
			continue
		}
		if !a.variable[i] {
			return -1
		}
		return 1
	}

	return strings.Compare(a.raw, b.raw)
}

// Compare aplica ComparePatterns sobre o texto das rotas. String vazia equivale a rota ausente.
func Compare(a, b string) int {
	return ComparePatterns(patternOrNil(a), patternOrNil(b))
}

// SortRoutes ordena as rotas do mais para o menos específico. A ordenação é estável,
// preservando a ordem de declaração entre rotas equivalentes.
func SortRoutes(routes []*Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		return ComparePatterns(routes[i].patternOrNil(), routes[j].patternOrNil()) < 0
	})
}

func patternOrNil(raw string) *Pattern {
	if raw == "" {
		return nil
	}
	return NewPattern(raw)
}
