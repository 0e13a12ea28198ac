package scenario

import (
	"strings"

	"github.com/raywall/fast-service-simulator/pkg/payload"
	"github.com/raywall/fast-service-simulator/pkg/payload/dictionary"
	"github.com/raywall/fast-service-simulator/pkg/routing"
)

// Request é a requisição recebida pelo adaptador de transporte.
type Request = routing.Request

// Response é a resposta roteirizada de um cenário declarado estaticamente.
type Response struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    interface{}       `json:"body,omitempty"`
}

// Descriptor identifica um cenário simulável. É imutável depois de publicado em uma geração.
type Descriptor struct {
	Name string

	// Route é nil quando o cenário não declara metadados de roteamento; nesse caso
	// ele só pode ser alcançado como cenário padrão.
	Route *routing.Route

	// Generated indica que o cenário foi sintetizado a partir de uma especificação.
	Generated bool

	// Response é usada pelos cenários estáticos.
	Response *Response

	// Campos preenchidos pela síntese.
	OperationID string
	Source      string
	Rules       *payload.RuleSet
	Inbound     *dictionary.Dictionary
	Outbound    *dictionary.Dictionary
}

// New cria um cenário estático a partir dos metadados de rota.
func New(name string, meta *RouteMetadata, resp *Response) *Descriptor {
	return &Descriptor{
		Name:     name,
		Route:    meta.Build(),
		Response: resp,
	}
}

// Path retorna o pattern declarado ou "" quando ausente.
func (d *Descriptor) Path() string {
	if d.Route == nil {
		return ""
	}
	return d.Route.Path()
}

// Methods retorna os métodos aceitos; vazio significa qualquer método.
func (d *Descriptor) Methods() []string {
	if d.Route == nil {
		return nil
	}
	return d.Route.Methods
}

func (d *Descriptor) String() string {
	methods := strings.Join(d.Methods(), ",")
	if methods == "" {
		methods = "*"
	}
	return d.Name + "{" + methods + " " + d.Path() + "}"
}

// RouteMetadata declara explicitamente o roteamento de um handler, no lugar de
// descoberta por reflexão.
//
//	scenario.NewRoute().Methods("GET", "DELETE").Path("/issues/{name}").QueryParams("expand")
type RouteMetadata struct {
	path        string
	methods     []string
	queryParams []string
	headers     []string
}

// NewRoute inicia a declaração de uma rota.
func NewRoute() *RouteMetadata {
	return &RouteMetadata{}
}

func (m *RouteMetadata) Path(path string) *RouteMetadata {
	m.path = path
	return m
}

func (m *RouteMetadata) Methods(methods ...string) *RouteMetadata {
	m.methods = append(m.methods, methods...)
	return m
}

func (m *RouteMetadata) QueryParams(names ...string) *RouteMetadata {
	m.queryParams = append(m.queryParams, names...)
	return m
}

func (m *RouteMetadata) Headers(names ...string) *RouteMetadata {
	m.headers = append(m.headers, names...)
	return m
}

// Build produz a rota imutável. RouteMetadata nil produz um cenário sem roteamento.
func (m *RouteMetadata) Build() *routing.Route {
	if m == nil {
		return nil
	}
	return routing.NewRoute(m.path, m.methods, m.queryParams, m.headers)
}
