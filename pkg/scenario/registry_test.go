package scenario

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_EmptyGeneration(t *testing.T) {
	reg := NewRegistry()

	gen := reg.Snapshot()
	require.NotNil(t, gen)
	assert.Equal(t, uint64(0), gen.Number)
	assert.Equal(t, 0, gen.Len())
}

func TestRegistry_PublishOrdersAndNumbers(t *testing.T) {
	reg := NewRegistry()

	gen := publish(t, reg,
		New("short", NewRoute().Path("/a"), nil),
		&Descriptor{Name: "noRoute"},
		New("long", NewRoute().Path("/a/b/c"), nil),
		New("var", NewRoute().Path("/a/{x}/c"), nil),
	)

	assert.Equal(t, uint64(1), gen.Number)
	assert.Equal(t, 4, gen.Len())

	var declared, ranked []string
	for _, d := range gen.Scenarios() {
		declared = append(declared, d.Name)
	}
	for _, d := range gen.Ranked() {
		ranked = append(ranked, d.Name)
	}
	assert.Equal(t, []string{"short", "noRoute", "long", "var"}, declared)
	assert.Equal(t, []string{"long", "var", "short"}, ranked)

	d, ok := gen.Lookup("var")
	require.True(t, ok)
	assert.Equal(t, "/a/{x}/c", d.Path())

	second := publish(t, reg)
	assert.Equal(t, uint64(2), second.Number)
}

func TestRegistry_DuplicateKeepsPreviousGeneration(t *testing.T) {
	reg := NewRegistry()
	before := publish(t, reg, New("a", NewRoute().Path("/a"), nil))

	_, err := reg.Publish([]*Descriptor{
		New("b", NewRoute().Path("/b"), nil),
		New("b", NewRoute().Path("/c"), nil),
	})
	require.ErrorIs(t, err, ErrDuplicateScenario)
	assert.Same(t, before, reg.Snapshot())

	// A numeração não avança com uma publicação rejeitada.
	next := publish(t, reg)
	assert.Equal(t, uint64(2), next.Number)
}

func TestRegistry_Subscribe(t *testing.T) {
	reg := NewRegistry()
	var seen []uint64
	reg.Subscribe(func(g *Generation) { seen = append(seen, g.Number) })

	publish(t, reg)
	publish(t, reg)
	_, _ = reg.Publish([]*Descriptor{{Name: "x"}, {Name: "x"}})

	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestRegistry_AtomicReload(t *testing.T) {
	reg := NewRegistry()
	mapper := NewMapper(reg, WithDefaultMapping("", false))

	generationSet := func(tag string) []*Descriptor {
		out := make([]*Descriptor, 0, 20)
		for i := 0; i < 20; i++ {
			out = append(out, New(tag+string(rune('a'+i)), NewRoute().Path("/"+tag+"/"+string(rune('a'+i))), nil))
		}
		return out
	}
	publish(t, reg, generationSet("old")...)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				gen := reg.Snapshot()
				prefix := ""
				for _, d := range gen.Scenarios() {
					p := d.Name[:3]
					if prefix == "" {
						prefix = p
					}
					if p != prefix {
						t.Errorf("geração %d mistura cenários %s e %s", gen.Number, prefix, p)
						return
					}
				}
				_, _ = mapper.Resolve(Request{Method: "GET", Path: "/old/a"})
			}
		}()
	}

	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			_, _ = reg.Publish(generationSet("new"))
		} else {
			_, _ = reg.Publish(generationSet("old"))
		}
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, uint64(201), reg.Snapshot().Number)
}
