package dictionary

import (
	"fmt"
	"strconv"
	"strings"
)

// segment é uma parte de um caminho de dicionário: campo de objeto ou índice de array.
type segment struct {
	field   string
	isIndex bool
	index   int
}

// parsePath converte "cliente.enderecos[0].cep" em segmentos. O prefixo "$" é opcional,
// de modo que os caminhos das violações de validação também são aceitos.
func parsePath(path string) ([]segment, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return nil, fmt.Errorf("caminho vazio")
	}

	var segments []segment
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("caminho '%s' contém segmento vazio", path)
		}

		for part != "" {
			open := strings.Index(part, "[")
			if open == -1 {
				segments = append(segments, segment{field: part})
				break
			}
			if open > 0 {
				segments = append(segments, segment{field: part[:open]})
			}

			end := strings.Index(part, "]")
			if end < open {
				return nil, fmt.Errorf("colchete não fechado em '%s'", path)
			}
			idx, err := strconv.Atoi(part[open+1 : end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("índice inválido em '%s'", path)
			}
			segments = append(segments, segment{isIndex: true, index: idx})
			part = part[end+1:]
		}
	}
	return segments, nil
}
