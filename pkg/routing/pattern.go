package routing

import (
	"regexp"
	"strings"
)

// segmentSplitter separa um path em segmentos; sequências de "/" contam como um único separador.
var segmentSplitter = regexp.MustCompile(`/+`)

// Pattern é um template de rota imutável (ex: /users/{id}, /files/**).
// Os segmentos e os marcadores de variável são calculados uma única vez na criação.
type Pattern struct {
	raw      string
	segments []string
	variable []bool
	tokens   []string
	matchers []*regexp.Regexp
}

// NewPattern cria um Pattern a partir do texto bruto. Nenhuma normalização é aplicada.
func NewPattern(raw string) *Pattern {
	segments := SplitSegments(raw)
	variable := make([]bool, len(segments))
	for i, s := range segments {
		variable[i] = IsVariableSegment(s)
	}

	tokens := tokenize(raw)
	matchers := make([]*regexp.Regexp, len(tokens))
	for i, tok := range tokens {
		if tok == "**" || !isGlob(tok) {
			continue
		}
		matchers[i] = compileSegment(tok)
	}

	return &Pattern{
		raw:      raw,
		segments: segments,
		variable: variable,
		tokens:   tokens,
		matchers: matchers,
	}
}

// String retorna o texto original do pattern.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.raw
}

// Segments retorna uma cópia dos segmentos usados na comparação de especificidade.
func (p *Pattern) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// SegmentCount é fixo desde a criação do pattern.
func (p *Pattern) SegmentCount() int {
	return len(p.segments)
}

// IsLiteral indica que nenhum segmento é variável ou curinga.
func (p *Pattern) IsLiteral() bool {
	for _, v := range p.variable {
		if v {
			return false
		}
	}
	return !strings.Contains(p.raw, "?")
}

// SplitSegments divide o path em sequências de "/". O segmento vazio inicial (path absoluto)
// e o final (barra no fim) são preservados.
func SplitSegments(path string) []string {
	return segmentSplitter.Split(path, -1)
}

// IsVariableSegment: começa com "{" ou contém "*".
func IsVariableSegment(segment string) bool {
	return strings.HasPrefix(segment, "{") || strings.Contains(segment, "*")
}

// tokenize gera os tokens usados no matching Ant (sem segmentos vazios).
func tokenize(path string) []string {
	parts := segmentSplitter.Split(path, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func isGlob(token string) bool {
	return strings.ContainsAny(token, "*?{")
}

// compileSegment converte um segmento com curingas em regex ancorada:
// "*" casa qualquer texto, "?" um caractere e "{nome}" texto não vazio.
func compileSegment(token string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	literalStart := 0
	flush := func(end int) {
		if end > literalStart {
			b.WriteString(regexp.QuoteMeta(token[literalStart:end]))
		}
	}

	for i := 0; i < len(token); i++ {
		switch token[i] {
		case '*':
			flush(i)
			b.WriteString(`[^/]*`)
			literalStart = i + 1
		case '?':
			flush(i)
			b.WriteString(`[^/]`)
			literalStart = i + 1
		case '{':
			end := strings.IndexByte(token[i:], '}')
			if end < 0 {
				// chave sem fechamento é tratada como literal
				continue
			}
			flush(i)
			b.WriteString(`[^/]+`)
			i += end
			literalStart = i + 1
		}
	}
	flush(len(token))
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
