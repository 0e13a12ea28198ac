package payload

import "strings"

// NodeKind identifica a variante de um SchemaNode.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindReference
	KindArray
	KindPrimitive
	KindObject
)

func (k NodeKind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindArray:
		return "array"
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// SchemaNode é uma união etiquetada: apenas os campos da variante indicada por Kind são usados.
//
//	Reference: Ref
//	Array:     Items
//	Primitive: Type, Format, Pattern, Enum, MinLength, MaxLength
//	Object:    Properties, Required
type SchemaNode struct {
	Kind NodeKind

	Ref string

	Items *SchemaNode

	Type      string
	Format    string
	Pattern   string
	Enum      []string
	MinLength int
	MaxLength int

	Properties []Property
	Required   []string
}

// Property preserva a ordem de declaração dos campos de um objeto.
type Property struct {
	Name   string
	Schema *SchemaNode
}

// Models mapeia o nome de um modelo (definitions / components.schemas) para seu schema.
type Models map[string]*SchemaNode

// Reference cria um nó de referência para o modelo nomeado.
func Reference(ref string) *SchemaNode {
	return &SchemaNode{Kind: KindReference, Ref: ref}
}

// Array cria um nó de array.
func Array(items *SchemaNode) *SchemaNode {
	return &SchemaNode{Kind: KindArray, Items: items}
}

// Primitive cria um nó primitivo com o tipo e formato informados.
func Primitive(kind, format string) *SchemaNode {
	return &SchemaNode{Kind: KindPrimitive, Type: kind, Format: format}
}

// Object cria um nó de objeto com as propriedades na ordem informada.
func Object(properties ...Property) *SchemaNode {
	return &SchemaNode{Kind: KindObject, Properties: properties}
}

// RefName extrai o nome do modelo de um $ref (#/definitions/Pet, #/components/schemas/Pet ou Pet).
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func (n *SchemaNode) isRequired(name string) bool {
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}
