package scenario

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatchingScenario indica que nenhum cenário atende à requisição e o mapeamento
	// padrão está desabilitado.
	ErrNoMatchingScenario = errors.New("nenhum cenário corresponde à requisição")

	// ErrDuplicateScenario indica que uma geração teria dois cenários com o mesmo nome.
	ErrDuplicateScenario = errors.New("nome de cenário duplicado")
)

// NoMatchError carrega a requisição que não pôde ser resolvida.
type NoMatchError struct {
	Method string
	Path   string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrNoMatchingScenario.Error(), e.Method, e.Path)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatchingScenario
}

func duplicateError(name string) error {
	return fmt.Errorf("%w: '%s'", ErrDuplicateScenario, name)
}
