package scenario

import (
	"errors"
	"testing"

	"github.com/raywall/fast-service-simulator/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	counts map[string]int
}

func (c *countingProvider) Count(name string, _ float64, tags []string) error {
	key := name
	for _, t := range tags {
		key += "|" + t
	}
	c.counts[key]++
	return nil
}
func (c *countingProvider) Gauge(string, float64, []string) error     { return nil }
func (c *countingProvider) Histogram(string, float64, []string) error { return nil }

func publish(t *testing.T, reg *Registry, scenarios ...*Descriptor) *Generation {
	t.Helper()
	gen, err := reg.Publish(scenarios)
	require.NoError(t, err)
	return gen
}

func issuesRegistry(t *testing.T) *Registry {
	reg := NewRegistry()
	publish(t, reg,
		New("GetFoo", NewRoute().Methods("GET").Path("/issues/foo"), nil),
		New("PutFoo", NewRoute().Methods("PUT").Path("/issues/foo"), nil),
		New("Issue", NewRoute().Methods("GET", "DELETE").Path("/issues/{name}"), nil),
	)
	return reg
}

func TestMapper_TieredResolution(t *testing.T) {
	mapper := NewMapper(issuesRegistry(t), WithDefaultMapping("default", true))

	tests := []struct {
		method, path string
		want         string
		tier         Tier
	}{
		{"GET", "/issues/foo", "GetFoo", TierExact},
		{"PUT", "/issues/foo", "PutFoo", TierExact},
		{"GET", "/issues/bar", "Issue", TierPattern},
		{"DELETE", "/issues/bar", "Issue", TierPattern},
		{"PUT", "/issues/bar", "default", TierDefault},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			res, err := mapper.ResolveDetailed(Request{Method: tt.method, Path: tt.path})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Name)
			assert.Equal(t, tt.tier, res.Tier)
		})
	}
}

func TestMapper_NoDefaultMapping(t *testing.T) {
	mapper := NewMapper(issuesRegistry(t), WithDefaultMapping("default", false))

	_, err := mapper.Resolve(Request{Method: "PUT", Path: "/issues/bar"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatchingScenario))

	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, "PUT", noMatch.Method)
	assert.Equal(t, "/issues/bar", noMatch.Path)
}

func TestMapper_ExactBeatsPattern(t *testing.T) {
	reg := NewRegistry()
	publish(t, reg,
		New("fooList", NewRoute().Methods("GET").Path("/issues/foos"), nil),
		New("fooDetail", NewRoute().Methods("GET").Path("/issues/foo/{id}"), nil),
	)
	mapper := NewMapper(reg)

	name, err := mapper.Resolve(Request{Method: "GET", Path: "/issues/foos"})
	require.NoError(t, err)
	assert.Equal(t, "fooList", name)

	name, err = mapper.Resolve(Request{Method: "GET", Path: "/issues/foo/42"})
	require.NoError(t, err)
	assert.Equal(t, "fooDetail", name)
}

func TestMapper_PatternSpecificity(t *testing.T) {
	reg := NewRegistry()
	// Declarados do menos para o mais específico: a ordenação decide.
	publish(t, reg,
		New("catchAll", NewRoute().Path("/**"), nil),
		New("anyItem", NewRoute().Path("/api/{resource}/{id}"), nil),
		New("orderItem", NewRoute().Path("/api/orders/{id}"), nil),
	)
	mapper := NewMapper(reg)

	name, _ := mapper.Resolve(Request{Method: "GET", Path: "/api/orders/1"})
	assert.Equal(t, "orderItem", name)

	name, _ = mapper.Resolve(Request{Method: "GET", Path: "/api/users/1"})
	assert.Equal(t, "anyItem", name)

	name, _ = mapper.Resolve(Request{Method: "GET", Path: "/health"})
	assert.Equal(t, "catchAll", name)
}

func TestMapper_ExactTierFirstDeclarationWins(t *testing.T) {
	reg := NewRegistry()
	publish(t, reg,
		New("first", NewRoute().Path("/dup"), nil),
		New("second", NewRoute().Methods("GET").Path("/dup"), nil),
	)
	mapper := NewMapper(reg)

	for i := 0; i < 10; i++ {
		name, err := mapper.Resolve(Request{Method: "GET", Path: "/dup"})
		require.NoError(t, err)
		assert.Equal(t, "first", name)
	}
}

func TestMapper_QueryAndHeaders(t *testing.T) {
	reg := NewRegistry()
	publish(t, reg,
		New("withQuery", NewRoute().Methods("GET").Path("/search").QueryParams("q"), nil),
		New("withHeader", NewRoute().Methods("GET").Path("/search").Headers("X-Tenant"), nil),
	)
	mapper := NewMapper(reg, WithDefaultMapping("", false))

	name, err := mapper.Resolve(Request{Method: "GET", Path: "/search", Query: map[string][]string{"q": {""}}})
	require.NoError(t, err)
	assert.Equal(t, "withQuery", name)

	name, err = mapper.Resolve(Request{Method: "GET", Path: "/search", Headers: map[string]string{"x-tenant": "a"}})
	require.NoError(t, err)
	assert.Equal(t, "withHeader", name)

	_, err = mapper.Resolve(Request{Method: "GET", Path: "/search"})
	assert.ErrorIs(t, err, ErrNoMatchingScenario)
}

func TestMapper_ScenarioWithoutRoute(t *testing.T) {
	reg := NewRegistry()
	publish(t, reg, &Descriptor{Name: "default", Response: &Response{Status: 418}})
	mapper := NewMapper(reg)

	res, err := mapper.ResolveDetailed(Request{Method: "GET", Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, TierDefault, res.Tier)
	require.NotNil(t, res.Descriptor)
	assert.Equal(t, 418, res.Descriptor.Response.Status)
}

func TestMapper_ObservesReload(t *testing.T) {
	reg := issuesRegistry(t)
	mapper := NewMapper(reg)

	name, _ := mapper.Resolve(Request{Method: "GET", Path: "/issues/foo"})
	assert.Equal(t, "GetFoo", name)

	publish(t, reg, New("Replaced", NewRoute().Path("/issues/foo"), nil))

	res, err := mapper.ResolveDetailed(Request{Method: "GET", Path: "/issues/foo"})
	require.NoError(t, err)
	assert.Equal(t, "Replaced", res.Name)
	assert.Equal(t, uint64(2), res.Generation)
}

func TestMapper_ResolveInPinnedGeneration(t *testing.T) {
	reg := issuesRegistry(t)
	mapper := NewMapper(reg, WithDefaultMapping("default", false))
	pinned := reg.Snapshot()

	publish(t, reg, New("Replaced", NewRoute().Path("/issues/foo"), nil))

	res, err := mapper.ResolveIn(pinned, Request{Method: "GET", Path: "/issues/foo"})
	require.NoError(t, err)
	assert.Equal(t, "GetFoo", res.Name)
	assert.Equal(t, uint64(1), res.Generation)

	res, err = mapper.ResolveIn(reg.Snapshot(), Request{Method: "GET", Path: "/issues/foo"})
	require.NoError(t, err)
	assert.Equal(t, "Replaced", res.Name)
}

func TestMapper_Metrics(t *testing.T) {
	provider := &countingProvider{counts: map[string]int{}}
	mapper := NewMapper(issuesRegistry(t),
		WithDefaultMapping("default", false),
		WithRecorder(metrics.NewRecorder(provider)),
	)

	_, _ = mapper.Resolve(Request{Method: "GET", Path: "/issues/foo"})
	_, _ = mapper.Resolve(Request{Method: "GET", Path: "/issues/bar"})
	_, _ = mapper.Resolve(Request{Method: "PATCH", Path: "/nada"})

	assert.Equal(t, 1, provider.counts["scenario.resolved|tier:exact"])
	assert.Equal(t, 1, provider.counts["scenario.resolved|tier:pattern"])
	assert.Equal(t, 1, provider.counts["scenario.unmatched"])
}
