package compiler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_NoCacheStillProducesEvents(t *testing.T) {
	ct := Compile(nil, "<div>{{ name }}</div>", [2]string{"{{", "}}"})
	require.NotEmpty(t, ct.Events)
	assert.Equal(t, "start", ct.Events[0].Kind)
	assert.Equal(t, "div", ct.Events[0].Tag)

	var charsEvent *CompiledEvent
	for i := range ct.Events {
		if ct.Events[i].Kind == "chars" {
			charsEvent = &ct.Events[i]
		}
	}
	require.NotNil(t, charsEvent)
	assert.Equal(t, `_s(name)`, charsEvent.Expression)
}

func TestCompile_InMemoryCacheHitReturnsSameTemplate(t *testing.T) {
	cache := NewCache("", "test")
	first := Compile(cache, "<div>hi</div>", [2]string{"{{", "}}"})
	second := Compile(cache, "<div>hi</div>", [2]string{"{{", "}}"})
	assert.Same(t, first, second)
}

func TestCache_PutThenGetInMemory(t *testing.T) {
	cache := NewCache("", "test")
	ct := &CompiledTemplate{Source: "x", Delimiters: [2]string{"{{", "}}"}}
	require.NoError(t, cache.Put("x", [2]string{"{{", "}}"}, ct))

	got, ok := cache.Get("x", [2]string{"{{", "}}"})
	assert.True(t, ok)
	assert.Same(t, ct, got)
}

func TestCache_GetMissWhenUncached(t *testing.T) {
	cache := NewCache("", "test")
	_, ok := cache.Get("never-put", [2]string{"{{", "}}"})
	assert.False(t, ok)
}

func TestCache_DifferentDelimitersAreDifferentKeys(t *testing.T) {
	cache := NewCache("", "test")
	a := &CompiledTemplate{Source: "x"}
	require.NoError(t, cache.Put("x", [2]string{"{{", "}}"}, a))

	_, ok := cache.Get("x", [2]string{"[[", "]]"})
	assert.False(t, ok, "a delimiter change must not hit the cache entry keyed by the old delimiters")
}

func TestCache_OnDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, "disk")
	ct := &CompiledTemplate{
		Source:     "<div>hi</div>",
		Delimiters: [2]string{"{{", "}}"},
		Events:     []CompiledEvent{{Kind: "start", Tag: "div"}},
	}
	require.NoError(t, cache.Put("<div>hi</div>", [2]string{"{{", "}}"}, ct))

	fresh := NewCache(dir, "disk")
	got, ok := fresh.Get("<div>hi</div>", [2]string{"{{", "}}"})
	require.True(t, ok, "a fresh Cache pointed at the same dir must hit the on-disk blob")
	assert.Equal(t, ct.Source, got.Source)
	assert.Equal(t, ct.Events, got.Events)
}

func TestCache_EntryPathUsesHashedKey(t *testing.T) {
	cache := NewCache("/tmp/whatever", "n")
	key := cacheKey("src", [2]string{"{{", "}}"})
	assert.Equal(t, filepath.Join("/tmp/whatever", key+".msgpack"), cache.entryPath(key))
}

func TestCompile_CachesCompiledOutputAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, "tmpl")
	first := Compile(cache, "<div>{{ x }}</div>", [2]string{"{{", "}}"})

	fresh := NewCache(dir, "tmpl")
	second := Compile(fresh, "<div>{{ x }}</div>", [2]string{"{{", "}}"})
	assert.Equal(t, first.Events, second.Events)
}
