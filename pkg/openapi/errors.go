package openapi

import (
	"errors"
	"fmt"
)

// ErrSpecificationUnreadable indica que o documento não pôde ser lido ou interpretado.
var ErrSpecificationUnreadable = errors.New("especificação ilegível")

// UnreadableError associa a falha à localização do documento.
// errors.Is reconhece tanto ErrSpecificationUnreadable quanto a causa original.
type UnreadableError struct {
	Location string
	Err      error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrSpecificationUnreadable.Error(), e.Location, e.Err)
}

func (e *UnreadableError) Unwrap() []error {
	return []error{ErrSpecificationUnreadable, e.Err}
}
