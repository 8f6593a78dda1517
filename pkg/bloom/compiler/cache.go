package compiler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bloomui/bloom/internal/metrics"
)

// CompiledTemplate is the cacheable output of parsing a template (the
// optimizer is not run on it): the flat token stream text_parser.go/html_parser.go would
// feed to an (out-of-scope) code generator, kept here as the
// serializable unit instead of the ElementNode tree itself (a tree of
// interface-typed Node values doesn't round-trip through msgpack
// without a registered concrete-type scheme, so the cache stores the
// pre-codegen event/token stream, which does).
type CompiledTemplate struct {
	Source     string
	Delimiters [2]string
	Events     []CompiledEvent
}

// CompiledEvent mirrors one HTMLParse callback invocation, flattened
// into a serializable record.
type CompiledEvent struct {
	Kind       string // "start" | "end" | "chars" | "comment"
	Tag        string
	Attrs      []Attr
	Unary      bool
	Text       string
	Expression string
	Start, End int
}

// Cache is a two-level compiled-template cache: an in-memory map
// backed by an optional on-disk msgpack blob per entry, keyed by a
// hash of the source + delimiters so an edited template always misses
// rather than returning stale output.
type Cache struct {
	mu   sync.RWMutex
	mem  map[string]*CompiledTemplate
	dir  string
	name string
}

// NewCache builds a Cache. dir may be empty, in which case entries
// live only in memory for the process lifetime.
func NewCache(dir, name string) *Cache {
	return &Cache{mem: make(map[string]*CompiledTemplate), dir: dir, name: name}
}

func cacheKey(source string, delimiters [2]string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte(delimiters[0]))
	h.Write([]byte(delimiters[1]))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a previously compiled template for source, checking the
// in-memory map first and falling back to the on-disk blob (populating
// the in-memory map on a disk hit).
func (c *Cache) Get(source string, delimiters [2]string) (*CompiledTemplate, bool) {
	key := cacheKey(source, delimiters)

	c.mu.RLock()
	if ct, ok := c.mem[key]; ok {
		c.mu.RUnlock()
		metrics.Global().RecordCacheHit(c.name)
		return ct, true
	}
	c.mu.RUnlock()

	if c.dir == "" {
		metrics.Global().RecordCacheMiss(c.name)
		return nil, false
	}

	b, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		metrics.Global().RecordCacheMiss(c.name)
		return nil, false
	}
	var ct CompiledTemplate
	if err := msgpack.NewDecoder(bytes.NewReader(b)).Decode(&ct); err != nil {
		metrics.Global().RecordCacheMiss(c.name)
		return nil, false
	}
	c.mu.Lock()
	c.mem[key] = &ct
	c.mu.Unlock()
	metrics.Global().RecordCacheHit(c.name)
	return &ct, true
}

// Put stores ct for source, writing through to disk if a cache
// directory was configured.
func (c *Cache) Put(source string, delimiters [2]string, ct *CompiledTemplate) error {
	key := cacheKey(source, delimiters)
	c.mu.Lock()
	c.mem[key] = ct
	c.mu.Unlock()

	if c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(ct); err != nil {
		return err
	}
	return os.WriteFile(c.entryPath(key), buf.Bytes(), 0o644)
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".msgpack")
}

// Compile parses source with HTMLParse (recording the flat event
// stream) and ParseText for every chars event, returning the cached
// result on a repeat call with identical source+delimiters.
func Compile(cache *Cache, source string, delimiters [2]string) *CompiledTemplate {
	if cache != nil {
		if ct, ok := cache.Get(source, delimiters); ok {
			return ct
		}
	}

	ct := &CompiledTemplate{Source: source, Delimiters: delimiters}
	HTMLParse(source, ParserOptions{
		ExpectHTML:        true,
		ShouldKeepComment: false,
		Start: func(tag string, attrs []Attr, unary bool, start, end int) {
			ct.Events = append(ct.Events, CompiledEvent{Kind: "start", Tag: tag, Attrs: attrs, Unary: unary, Start: start, End: end})
		},
		End: func(tag string, start, end int) {
			ct.Events = append(ct.Events, CompiledEvent{Kind: "end", Tag: tag, Start: start, End: end})
		},
		Chars: func(text string, start, end int) {
			ev := CompiledEvent{Kind: "chars", Text: text, Start: start, End: end}
			if parsed := ParseText(text, delimiters); parsed != nil {
				ev.Expression = parsed.Expression
			}
			ct.Events = append(ct.Events, ev)
		},
		Comment: func(text string, start, end int) {
			ct.Events = append(ct.Events, CompiledEvent{Kind: "comment", Text: text, Start: start, End: end})
		},
		Warn: func(msg string, start int) {
			metrics.Global().RecordParserWarning("scanner: " + msg)
		},
	})

	if cache != nil {
		_ = cache.Put(source, delimiters, ct)
	}
	return ct
}
