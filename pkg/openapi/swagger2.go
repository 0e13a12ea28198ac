package openapi

import (
	"fmt"
	"strings"

	"github.com/raywall/fast-service-simulator/pkg/payload"
)

const defaultContentType = "application/json"

// Prefixos de $ref reescritos da versão 2 para a 3.
var refRewrites = []struct{ from, to string }{
	{"#/definitions/", "#/components/schemas/"},
	{"#/parameters/", "#/components/parameters/"},
	{"#/responses/", "#/components/responses/"},
}

// convertSwagger2 reescreve um documento Swagger 2.0 (já decodificado) na estrutura
// OpenAPI 3 equivalente. Referências não são resolvidas aqui; apenas reescritas, para que
// referências pendentes continuem sendo detectadas pelo compilador.
func convertSwagger2(doc map[string]interface{}) (map[string]interface{}, string, error) {
	basePath, _ := doc["basePath"].(string)
	produces := stringList(doc["produces"])

	components := map[string]interface{}{
		"schemas":    rewriteRefs(mapOf(doc["definitions"])),
		"parameters": map[string]interface{}{},
		"responses":  map[string]interface{}{},
	}

	globalParams := mapOf(doc["parameters"])
	for name, raw := range globalParams {
		p := mapOf(raw)
		if p["in"] == "body" || p["in"] == "formData" {
			continue
		}
		components["parameters"].(map[string]interface{})[name] = convertParameter(p)
	}
	globalResponses := mapOf(doc["responses"])
	for name, raw := range globalResponses {
		components["responses"].(map[string]interface{})[name] = convertResponse(mapOf(raw), produces)
	}

	paths := map[string]interface{}{}
	for path, rawItem := range mapOf(doc["paths"]) {
		item := mapOf(rawItem)
		outItem := map[string]interface{}{}

		if params, _, err := convertParameters(item["parameters"], globalParams); err != nil {
			return nil, "", fmt.Errorf("path '%s': %w", path, err)
		} else if len(params) > 0 {
			outItem["parameters"] = params
		}

		for _, method := range methodOrder {
			rawOp, ok := item[strings.ToLower(method)]
			if !ok {
				continue
			}
			op, err := convertOperation(mapOf(rawOp), item["parameters"], globalParams, produces)
			if err != nil {
				return nil, "", fmt.Errorf("%s %s: %w", method, path, err)
			}
			outItem[strings.ToLower(method)] = op
		}
		paths[path] = outItem
	}

	out := map[string]interface{}{
		"openapi":    "3.0.0",
		"paths":      paths,
		"components": components,
	}
	if info, ok := doc["info"]; ok {
		out["info"] = info
	}
	return out, basePath, nil
}

func convertOperation(op map[string]interface{}, pathParams interface{}, global map[string]interface{}, produces []string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if id, ok := op["operationId"].(string); ok {
		out["operationId"] = id
	}

	params, body, err := convertParameters(op["parameters"], global)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		out["parameters"] = params
	}
	if body == nil {
		// Corpo declarado apenas no nível do path.
		_, body, _ = convertParameters(pathParams, global)
	}
	if body != nil {
		out["requestBody"] = map[string]interface{}{
			"required": body["required"] == true,
			"content": map[string]interface{}{
				firstOr(stringList(op["consumes"]), defaultContentType): map[string]interface{}{"schema": rewriteRefs(body["schema"])},
			},
		}
	}

	if p := stringList(op["produces"]); len(p) > 0 {
		produces = p
	}
	responses := map[string]interface{}{}
	for code, raw := range mapOf(op["responses"]) {
		resp := mapOf(raw)
		if ref, ok := resp["$ref"].(string); ok {
			responses[code] = map[string]interface{}{"$ref": rewriteRef(ref)}
			continue
		}
		responses[code] = convertResponse(resp, produces)
	}
	out["responses"] = responses
	return out, nil
}

// convertParameters separa o parâmetro "in: body" dos demais. Referências a parâmetros
// globais de corpo são expandidas, pois não existem como componente na versão 3.
func convertParameters(raw interface{}, global map[string]interface{}) ([]interface{}, map[string]interface{}, error) {
	var params []interface{}
	var body map[string]interface{}

	for _, item := range listOf(raw) {
		p := mapOf(item)
		if ref, ok := p["$ref"].(string); ok {
			name := strings.TrimPrefix(ref, "#/parameters/")
			target, exists := global[name]
			if !exists {
				return nil, nil, &payload.ReferenceError{Ref: ref}
			}
			if tp := mapOf(target); tp["in"] == "body" {
				body = tp
				continue
			}
			params = append(params, map[string]interface{}{"$ref": rewriteRef(ref)})
			continue
		}

		switch p["in"] {
		case "body":
			body = p
		case "formData":
			// Formulários não têm schema JSON; não participam da validação.
		default:
			params = append(params, convertParameter(p))
		}
	}
	return params, body, nil
}

func convertParameter(p map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{}
	for _, key := range []string{"type", "format", "enum", "pattern", "minLength", "maxLength", "items"} {
		if v, ok := p[key]; ok {
			schema[key] = rewriteRefs(v)
		}
	}
	out := map[string]interface{}{
		"name":     p["name"],
		"in":       p["in"],
		"required": p["required"] == true,
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

func convertResponse(resp map[string]interface{}, produces []string) map[string]interface{} {
	description, _ := resp["description"].(string)
	out := map[string]interface{}{"description": description}
	if schema, ok := resp["schema"]; ok {
		out["content"] = map[string]interface{}{
			firstOr(produces, defaultContentType): map[string]interface{}{"schema": rewriteRefs(schema)},
		}
	}
	return out
}

// rewriteRefs percorre o valor reescrevendo todo "$ref" para o formato da versão 3.
func rewriteRefs(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if s, ok := val.(string); ok && k == "$ref" {
				out[k] = rewriteRef(s)
				continue
			}
			out[k] = rewriteRefs(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = rewriteRefs(val)
		}
		return out
	default:
		return v
	}
}

func rewriteRef(ref string) string {
	for _, r := range refRewrites {
		if strings.HasPrefix(ref, r.from) {
			return r.to + strings.TrimPrefix(ref, r.from)
		}
	}
	return ref
}

func mapOf(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func listOf(v interface{}) []interface{} {
	l, _ := v.([]interface{})
	return l
}

func stringList(v interface{}) []string {
	var out []string
	for _, item := range listOf(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstOr(values []string, fallback string) string {
	for _, v := range values {
		if strings.Contains(v, "json") {
			return v
		}
	}
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}
