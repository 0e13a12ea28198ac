package routing

import (
	"net/http"
	"strings"
)

// Request é a visão mínima de uma requisição recebida pelo adaptador de transporte.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string][]string
	Body    []byte
}

// Route agrupa as restrições de roteamento declaradas por um cenário.
// Pattern nulo significa "qualquer path" no matching por pattern e nunca casa no exato.
type Route struct {
	Pattern     *Pattern
	Methods     []string
	QueryParams []string
	Headers     []string
}

// NewRoute cria a rota normalizando os métodos para maiúsculas.
func NewRoute(path string, methods []string, queryParams []string, headers []string) *Route {
	normalized := make([]string, 0, len(methods))
	for _, m := range methods {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			normalized = append(normalized, m)
		}
	}
	return &Route{
		Pattern:     patternOrNil(path),
		Methods:     normalized,
		QueryParams: append([]string(nil), queryParams...),
		Headers:     append([]string(nil), headers...),
	}
}

// Path retorna o texto do pattern ou "" quando ausente.
func (r *Route) Path() string {
	return r.Pattern.String()
}

func (r *Route) patternOrNil() *Pattern {
	if r == nil {
		return nil
	}
	return r.Pattern
}

// Matches avalia os três predicados (path, método e query params obrigatórios).
// Com exact=true o path da requisição deve ser idêntico ao texto declarado; caso contrário
// aplica-se o matching estilo Ant.
func Matches(req Request, route *Route, exact bool) bool {
	if route == nil {
		return false
	}
	return matchesPath(req.Path, route.Pattern, exact) &&
		matchesMethod(req.Method, route.Methods) &&
		matchesQuery(req.Query, route.QueryParams) &&
		matchesHeaders(req.Headers, route.Headers)
}

func matchesPath(path string, pattern *Pattern, exact bool) bool {
	if pattern == nil {
		return !exact
	}
	if exact {
		return path == pattern.raw
	}
	return pattern.Match(path)
}

// Sem métodos declarados, qualquer método é aceito.
func matchesMethod(method string, declared []string) bool {
	if len(declared) == 0 {
		return true
	}
	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}
	for _, m := range declared {
		if m == method {
			return true
		}
	}
	return false
}

// Apenas a presença da chave é verificada; valores não são comparados.
func matchesQuery(query map[string][]string, required []string) bool {
	for _, name := range required {
		if _, ok := query[name]; !ok {
			return false
		}
	}
	return true
}

func matchesHeaders(headers map[string]string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	present := make(map[string]struct{}, len(headers))
	for k := range headers {
		present[http.CanonicalHeaderKey(k)] = struct{}{}
	}
	for _, name := range required {
		if _, ok := present[http.CanonicalHeaderKey(name)]; !ok {
			return false
		}
	}
	return true
}

// Match aplica o matching Ant: "*" dentro de um segmento, "**" através de segmentos
// e "{nome}" para um segmento não vazio.
func (p *Pattern) Match(path string) bool {
	if strings.HasPrefix(path, "/") != strings.HasPrefix(p.raw, "/") {
		return false
	}

	tokens := tokenize(path)
	if !p.matchTokens(tokens) {
		return false
	}

	endsWithDoubleStar := len(p.tokens) > 0 && p.tokens[len(p.tokens)-1] == "**"
	if !endsWithDoubleStar && len(tokens) > 0 && strings.HasSuffix(p.raw, "/") != strings.HasSuffix(path, "/") {
		return false
	}
	return true
}

// matchTokens usa o algoritmo clássico de curinga com retrocesso para o último "**" visto.
func (p *Pattern) matchTokens(path []string) bool {
	pi, si := 0, 0
	starIdx, starMatch := -1, 0

	for si < len(path) {
		switch {
		case pi < len(p.tokens) && p.tokens[pi] == "**":
			starIdx = pi
			starMatch = si
			pi++
		case pi < len(p.tokens) && p.matchToken(pi, path[si]):
			pi++
			si++
		case starIdx >= 0:
			pi = starIdx + 1
			starMatch++
			si = starMatch
		default:
			return false
		}
	}

	for pi < len(p.tokens) && p.tokens[pi] == "**" {
		pi++
	}
	return pi == len(p.tokens)
}

func (p *Pattern) matchToken(i int, segment string) bool {
	if m := p.matchers[i]; m != nil {
		return m.MatchString(segment)
	}
	return p.tokens[i] == segment
}
