package openapi

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"github.com/raywall/fast-service-simulator/pkg/payload"
	"gopkg.in/yaml.v3"
)

// methodOrder fixa a ordem das operações de um mesmo path.
var methodOrder = []string{
	http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete,
	http.MethodOptions, http.MethodHead, http.MethodPatch, http.MethodTrace,
}

// Document é a visão da especificação usada pela síntese.
type Document struct {
	// Version é o valor de "swagger" ou "openapi" declarado no documento.
	Version string
	// BasePath é o basePath (2.0) ou o path do primeiro server (3.x), sem barra final.
	BasePath   string
	Models     payload.Models
	Operations []Operation
}

// Operation é uma operação documentada. Operações seguem a ordem lexicográfica dos paths
// e, dentro de um path, a ordem de methodOrder.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Parameters  []Parameter

	RequestBody        *payload.SchemaNode
	RequestContentType string

	// Responses mapeia o código de status (ou "default") para a resposta documentada.
	Responses map[string]Response
}

type Parameter struct {
	Name     string
	In       string
	Required bool
	Schema   *payload.SchemaNode
}

type Response struct {
	Schema      *payload.SchemaNode
	ContentType string
}

// Name retorna o operationId declarado ou "<MÉTODO>_<path>".
func (o Operation) Name() string {
	if o.OperationID != "" {
		return o.OperationID
	}
	return o.Method + "_" + o.Path
}

// RequiredParameters lista, em ordem, os nomes dos parâmetros obrigatórios na localização.
func (o Operation) RequiredParameters(in string) []string {
	var names []string
	for _, p := range o.Parameters {
		if p.Required && p.In == in {
			names = append(names, p.Name)
		}
	}
	return names
}

// SuccessResponse escolhe "200"; na ausência, o menor 2xx; senão a primeira resposta
// em ordem lexicográfica.
func (o Operation) SuccessResponse() (string, Response, bool) {
	if len(o.Responses) == 0 {
		return "", Response{}, false
	}
	if r, ok := o.Responses["200"]; ok {
		return "200", r, true
	}

	codes := make([]string, 0, len(o.Responses))
	for code := range o.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if strings.HasPrefix(code, "2") {
			return code, o.Responses[code], true
		}
	}
	return codes[0], o.Responses[codes[0]], true
}

// StatusCode converte o código documentado; "default" e faixas ("2XX") viram 200.
func StatusCode(code string) int {
	n, err := strconv.Atoi(code)
	if err != nil || n < 100 || n > 599 {
		return http.StatusOK
	}
	return n
}

// Parse interpreta um documento Swagger 2.0 ou OpenAPI 3.x, em JSON ou YAML.
// Referências não são resolvidas: viram nós Reference, validados na compilação.
func Parse(data []byte) (*Document, error) {
	raw, err := decode(data)
	if err != nil {
		return nil, err
	}

	var basePath, version string
	switch {
	case raw["swagger"] != nil:
		version = fmt.Sprint(raw["swagger"])
		if !strings.HasPrefix(version, "2") {
			return nil, fmt.Errorf("versão swagger não suportada: %s", version)
		}
		if raw, basePath, err = convertSwagger2(raw); err != nil {
			return nil, err
		}
	case raw["openapi"] != nil:
		version = fmt.Sprint(raw["openapi"])
		if !strings.HasPrefix(version, "3") {
			return nil, fmt.Errorf("versão openapi não suportada: %s", version)
		}
	default:
		return nil, fmt.Errorf("documento não declara 'swagger' nem 'openapi'")
	}

	// Garante Components e Paths não nulos após o unmarshal.
	components := mapOf(raw["components"])
	for _, key := range []string{"schemas", "parameters", "responses", "requestBodies"} {
		if _, ok := components[key]; !ok {
			components[key] = map[string]interface{}{}
		}
	}
	raw["components"] = components
	if _, ok := raw["paths"]; !ok {
		raw["paths"] = map[string]interface{}{}
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("erro ao normalizar documento: %w", err)
	}

	var spec openapi3.T
	if err := spec.UnmarshalJSON(normalized); err != nil {
		return nil, fmt.Errorf("documento OpenAPI inválido: %w", err)
	}
	if basePath == "" {
		basePath = serverBasePath(spec.Servers)
	}

	b := &builder{spec: &spec}
	ops, err := b.operations()
	if err != nil {
		return nil, err
	}

	return &Document{
		Version:    version,
		BasePath:   strings.TrimSuffix(basePath, "/"),
		Models:     b.models(),
		Operations: ops,
	}, nil
}

func decode(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("documento vazio")
	}

	var raw map[string]interface{}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("JSON malformado: %w", err)
		}
		return raw, nil
	}

	var doc interface{}
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}
	raw, ok := sanitize(doc).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("documento não é um objeto")
	}
	return raw, nil
}

// sanitize converte mapas com chaves não-string (ex: códigos de status em YAML) para
// map[string]interface{}.
func sanitize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = sanitize(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = sanitize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = sanitize(val)
		}
		return out
	default:
		return v
	}
}

// serverBasePath extrai o path do primeiro server, aceitando URLs relativas e variáveis.
func serverBasePath(servers openapi3.Servers) string {
	if len(servers) == 0 || servers[0] == nil {
		return ""
	}
	u := servers[0].URL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
		if j := strings.Index(u, "/"); j >= 0 {
			u = u[j:]
		} else {
			u = ""
		}
	}
	return u
}

type builder struct {
	spec *openapi3.T
}

func (b *builder) models() payload.Models {
	models := payload.Models{}
	for name, ref := range b.spec.Components.Schemas {
		models[name] = convertSchema(ref)
	}
	return models
}

func (b *builder) operations() ([]Operation, error) {
	if b.spec.Paths == nil {
		return nil, nil
	}
	items := b.spec.Paths.Map()

	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var ops []Operation
	for _, path := range paths {
		item := items[path]
		if item == nil {
			continue
		}
		byMethod := map[string]*openapi3.Operation{
			http.MethodGet: item.Get, http.MethodPut: item.Put, http.MethodPost: item.Post,
			http.MethodDelete: item.Delete, http.MethodOptions: item.Options, http.MethodHead: item.Head,
			http.MethodPatch: item.Patch, http.MethodTrace: item.Trace,
		}
		for _, method := range methodOrder {
			op := byMethod[method]
			if op == nil {
				continue
			}
			converted, err := b.operation(path, method, item.Parameters, op)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			ops = append(ops, converted)
		}
	}
	return ops, nil
}

func (b *builder) operation(path, method string, shared openapi3.Parameters, op *openapi3.Operation) (Operation, error) {
	out := Operation{
		Path:        path,
		Method:      method,
		OperationID: op.OperationID,
		Responses:   map[string]Response{},
	}

	// Parâmetros da operação sobrescrevem os do path com mesmo nome e localização.
	index := map[string]int{}
	for _, list := range []openapi3.Parameters{shared, op.Parameters} {
		for _, ref := range list {
			p, err := b.parameter(ref)
			if err != nil {
				return Operation{}, err
			}
			if p == nil {
				continue
			}
			param := Parameter{Name: p.Name, In: p.In, Required: p.Required, Schema: convertSchema(p.Schema)}
			key := p.In + ":" + p.Name
			if i, exists := index[key]; exists {
				out.Parameters[i] = param
				continue
			}
			index[key] = len(out.Parameters)
			out.Parameters = append(out.Parameters, param)
		}
	}

	if op.RequestBody != nil {
		body, err := b.requestBody(op.RequestBody)
		if err != nil {
			return Operation{}, err
		}
		if body != nil {
			out.RequestContentType, out.RequestBody = pickContent(body.Content)
		}
	}

	if op.Responses != nil {
		for code, ref := range op.Responses.Map() {
			resp, err := b.response(ref)
			if err != nil {
				return Operation{}, err
			}
			var r Response
			if resp != nil {
				r.ContentType, r.Schema = pickContent(resp.Content)
			}
			out.Responses[code] = r
		}
	}
	return out, nil
}

func (b *builder) parameter(ref *openapi3.ParameterRef) (*openapi3.Parameter, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.Ref == "" {
		return ref.Value, nil
	}
	target, ok := b.spec.Components.Parameters[payload.RefName(ref.Ref)]
	if !ok || target == nil || target.Value == nil {
		return nil, &payload.ReferenceError{Ref: ref.Ref}
	}
	return target.Value, nil
}

func (b *builder) requestBody(ref *openapi3.RequestBodyRef) (*openapi3.RequestBody, error) {
	if ref.Ref == "" {
		return ref.Value, nil
	}
	target, ok := b.spec.Components.RequestBodies[payload.RefName(ref.Ref)]
	if !ok || target == nil || target.Value == nil {
		return nil, &payload.ReferenceError{Ref: ref.Ref}
	}
	return target.Value, nil
}

func (b *builder) response(ref *openapi3.ResponseRef) (*openapi3.Response, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.Ref == "" {
		return ref.Value, nil
	}
	target, ok := b.spec.Components.Responses[payload.RefName(ref.Ref)]
	if !ok || target == nil || target.Value == nil {
		return nil, &payload.ReferenceError{Ref: ref.Ref}
	}
	return target.Value, nil
}

// pickContent prefere um media type JSON; senão usa o primeiro em ordem lexicográfica.
func pickContent(content openapi3.Content) (string, *payload.SchemaNode) {
	if len(content) == 0 {
		return "", nil
	}
	types := make([]string, 0, len(content))
	for t := range content {
		types = append(types, t)
	}
	sort.Strings(types)

	chosen := types[0]
	for _, t := range types {
		if strings.Contains(t, "json") {
			chosen = t
			break
		}
	}
	media := content[chosen]
	if media == nil {
		return chosen, nil
	}
	return chosen, convertSchema(media.Schema)
}

// convertSchema traduz o schema do documento para a união SchemaNode.
// Composições (allOf/oneOf/anyOf) usam o primeiro membro.
func convertSchema(ref *openapi3.SchemaRef) *payload.SchemaNode {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return payload.Reference(ref.Ref)
	}
	s := ref.Value
	if s == nil {
		return nil
	}

	kind := schemaType(s)
	switch {
	case kind == "array" || (kind == "" && s.Items != nil):
		return payload.Array(convertSchema(s.Items))

	case kind == "object" || (kind == "" && len(s.Properties) > 0):
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		node := payload.Object()
		for _, name := range names {
			node.Properties = append(node.Properties, payload.Property{Name: name, Schema: convertSchema(s.Properties[name])})
		}
		node.Required = append([]string(nil), s.Required...)
		return node

	case kind != "":
		node := payload.Primitive(kind, s.Format)
		node.Pattern = s.Pattern
		for _, v := range s.Enum {
			if v != nil {
				node.Enum = append(node.Enum, fmt.Sprint(v))
			}
		}
		node.MinLength = int(s.MinLength)
		if s.MaxLength != nil {
			node.MaxLength = int(*s.MaxLength)
		}
		return node
	}

	for _, group := range []openapi3.SchemaRefs{s.AllOf, s.OneOf, s.AnyOf} {
		if len(group) > 0 {
			return convertSchema(group[0])
		}
	}
	return &payload.SchemaNode{Kind: payload.KindUnknown}
}

func schemaType(s *openapi3.Schema) string {
	if s.Type == nil {
		return ""
	}
	for _, t := range *s.Type {
		if t != "null" {
			return t
		}
	}
	return ""
}
