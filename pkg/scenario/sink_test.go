package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_RegisterAndDefinePreserveOrder(t *testing.T) {
	b := NewBuilder()

	require.NoError(t, b.Register("static", New("static", NewRoute().Path("/s"), nil)))
	require.NoError(t, b.Define(Definition{
		Path:       "/v1/pets",
		ScenarioID: "listPets",
		Spec:       "petstore.yaml",
		New: func(def Definition) (*Descriptor, error) {
			d := New(def.ScenarioID, NewRoute().Methods("GET").Path(def.Path), nil)
			d.Generated = true
			d.Source = def.Spec
			return d, nil
		},
	}))
	assert.Equal(t, 2, b.Len())

	scenarios, err := b.Build()
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "static", scenarios[0].Name)
	assert.Equal(t, "listPets", scenarios[1].Name)
	assert.True(t, scenarios[1].Generated)
	assert.Equal(t, "petstore.yaml", scenarios[1].Source)
	assert.Equal(t, "/v1/pets", scenarios[1].Path())
}

func TestBuilder_Duplicates(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Register("a", &Descriptor{}))

	err := b.Register("a", &Descriptor{})
	assert.ErrorIs(t, err, ErrDuplicateScenario)

	err = b.Define(Definition{ScenarioID: "a", New: func(Definition) (*Descriptor, error) { return nil, nil }})
	assert.ErrorIs(t, err, ErrDuplicateScenario)
}

func TestBuilder_InvalidEntries(t *testing.T) {
	b := NewBuilder()

	assert.Error(t, b.Register("x", nil))
	assert.Error(t, b.Register("", &Descriptor{}))
	assert.Error(t, b.Register("y", &Descriptor{Name: "z"}))
	assert.Error(t, b.Define(Definition{ScenarioID: "semConstrutor"}))
}

func TestBuilder_DefinitionFailure(t *testing.T) {
	b := NewBuilder()
	boom := errors.New("boom")
	require.NoError(t, b.Define(Definition{ScenarioID: "x", New: func(Definition) (*Descriptor, error) { return nil, boom }}))

	_, err := b.Build()
	assert.ErrorIs(t, err, boom)
}

func TestRouteMetadata_Build(t *testing.T) {
	route := NewRoute().Methods("get", "Delete").Path("/issues/{name}").QueryParams("expand").Headers("X-Id").Build()

	assert.Equal(t, []string{"GET", "DELETE"}, route.Methods)
	assert.Equal(t, "/issues/{name}", route.Path())
	assert.Equal(t, []string{"expand"}, route.QueryParams)
	assert.Equal(t, []string{"X-Id"}, route.Headers)

	var nilMeta *RouteMetadata
	assert.Nil(t, nilMeta.Build())
}

func TestDescriptor_String(t *testing.T) {
	assert.Equal(t, "Issue{GET,DELETE /issues/{name}}", New("Issue", NewRoute().Methods("GET", "DELETE").Path("/issues/{name}"), nil).String())
	assert.Equal(t, "x{* }", (&Descriptor{Name: "x"}).String())
}
