package routing

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSegments_Conformance(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/a/b", []string{"", "a", "b"}},
		{"a/b", []string{"a", "b"}},
		{"/a//b", []string{"", "a", "b"}},
		{"/a/b/", []string{"", "a", "b", ""}},
		{"//a", []string{"", "a"}},
		{"/", []string{"", ""}},
		{"", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSegments(tt.path))
		})
	}
}

func TestComparePatterns_SegmentCountDominates(t *testing.T) {
	assert.Equal(t, -1, Compare("/a/b/c", "/a/b"))
	assert.Equal(t, 1, Compare("/a/b", "/a/b/c"))
	assert.Equal(t, -1, Compare("/{x}/{y}/{z}", "/a/b"), "contagem vence mesmo com variáveis")
	assert.Equal(t, -1, Compare("/a/b/", "/a/b"), "barra final gera um segmento extra")
}

func TestComparePatterns_LiteralBeatsVariable(t *testing.T) {
	literal := "/path/to/resource"
	variable := "/path/{variable}/resource"

	assert.Equal(t, -1, Compare(literal, variable))
	assert.Equal(t, 1, Compare(variable, literal))

	assert.Equal(t, -1, Compare("/path/to/*", "/path/*/resource"), "primeira divergência decide")
	assert.Equal(t, -1, Compare("/files/a.txt", "/files/*.txt"))
}

func TestComparePatterns_LexicographicFallback(t *testing.T) {
	assert.Equal(t, -1, Compare("/a/b", "/a/c"))
	assert.Equal(t, 1, Compare("/a/{z}", "/a/{b}"))
	assert.Equal(t, 0, Compare("/same/{id}", "/same/{id}"))
}

func TestComparePatterns_NilPaths(t *testing.T) {
	concrete := NewPattern("/issues/foo")

	assert.Equal(t, 1, ComparePatterns(nil, concrete))
	assert.Equal(t, -1, ComparePatterns(concrete, nil))
	assert.Equal(t, 0, ComparePatterns(nil, nil))
	assert.Equal(t, 1, Compare("", "/x"))
}

func TestComparePatterns_StrictWeakOrder(t *testing.T) {
	paths := []string{
		"/a", "/a/b", "/a/b/c", "/a/{b}", "/{a}/b", "/a/*", "/a/**", "/a/b/{c}",
		"/x/y/z", "/{x}/{y}/{z}", "/a/b/", "a/b", "", "/issues/foo", "/issues/{name}",
	}
	patterns := make([]*Pattern, len(paths))
	for i, p := range paths {
		patterns[i] = patternOrNil(p)
	}

	for _, a := range patterns {
		assert.Equal(t, 0, ComparePatterns(a, a), "reflexividade para %q", a.String())
		for _, b := range patterns {
			assert.Equal(t, -ComparePatterns(b, a), ComparePatterns(a, b), "antissimetria %q/%q", a.String(), b.String())
			for _, c := range patterns {
				if ComparePatterns(a, b) < 0 && ComparePatterns(b, c) < 0 {
					assert.Negative(t, ComparePatterns(a, c), "transitividade %q < %q < %q", a.String(), b.String(), c.String())
				}
			}
		}
	}
}

func TestSortRoutes(t *testing.T) {
	routes := []*Route{
		NewRoute("/issues/{name}", []string{"GET"}, nil, nil),
		NewRoute("", []string{"GET"}, nil, nil),
		NewRoute("/issues", []string{"GET"}, nil, nil),
		NewRoute("/issues/foo", []string{"GET"}, nil, nil),
		NewRoute("/issues/foo/{id}", []string{"GET"}, nil, nil),
	}

	SortRoutes(routes)

	got := make([]string, len(routes))
	for i, r := range routes {
		got[i] = r.Path()
	}
	assert.Equal(t, []string{"/issues/foo/{id}", "/issues/foo", "/issues/{name}", "/issues", ""}, got)
	assert.True(t, sort.SliceIsSorted(routes, func(i, j int) bool {
		return ComparePatterns(routes[i].Pattern, routes[j].Pattern) < 0
	}))
}
