package payload

import (
	"errors"
	"fmt"
)

// ErrUnresolvableReference indica um $ref sem definição correspondente.
var ErrUnresolvableReference = errors.New("referência de schema não resolvida")

// ReferenceError detalha a referência pendente. Unwrap retorna ErrUnresolvableReference.
type ReferenceError struct {
	// Ref é o texto original da referência (ex: "#/definitions/Pet").
	Ref string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnresolvableReference.Error(), e.Ref)
}

func (e *ReferenceError) Unwrap() error {
	return ErrUnresolvableReference
}
