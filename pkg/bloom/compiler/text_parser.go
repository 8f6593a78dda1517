package compiler

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// RawToken is one entry of ParseText's structured token list: either a
// literal text run or a `{'@binding': expr}` interpolation marker,
// interleaved in source order (spec §4.10's "parallel rawTokens list,
// for structured consumers").
type RawToken struct {
	Literal   string
	Binding   string
	IsBinding bool
}

// TextParseResult is ParseText's output: expression is a Go-free
// stand-in for the generated render-function source the spec's
// `_s(expr)` convention would normally produce, and Tokens is the
// parallel structured list.
type TextParseResult struct {
	Expression string
	Tokens     []RawToken
}

var (
	delimiterCacheMu sync.Mutex
	delimiterCache   = map[[2]string]*regexp.Regexp{}
)

// defaultDelimiters are the "{{ }}" delimiters used when the caller
// passes an empty pair.
var defaultDelimiters = [2]string{"{{", "}}"}

// delimiterRegexp returns the (cached) regexp matching open...close,
// non-greedy and allowing any inner content.
func delimiterRegexp(delimiters [2]string) *regexp.Regexp {
	delimiterCacheMu.Lock()
	defer delimiterCacheMu.Unlock()
	if re, ok := delimiterCache[delimiters]; ok {
		return re
	}
	open, close_ := regexp.QuoteMeta(delimiters[0]), regexp.QuoteMeta(delimiters[1])
	re := regexp.MustCompile(open + `((?:.|\n)+?)` + close_)
	delimiterCache[delimiters] = re
	return re
}

// ParseText scans text for delimiter-bounded interpolations, returning
// nil if none are found (spec: "or undefined if no interpolation").
// The returned Expression concatenates JSON-encoded literal runs with
// `_s(expr)` calls exactly as the spec's generated-code convention
// describes, joined by "+".
func ParseText(text string, delimiters [2]string) *TextParseResult {
	if delimiters == ([2]string{}) {
		delimiters = defaultDelimiters
	}
	re := delimiterRegexp(delimiters)
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return nil
	}

	var exprParts []string
	var tokens []RawToken
	lastEnd := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		exprStart, exprEnd := m[2], m[3]
		if start > lastEnd {
			literal := text[lastEnd:start]
			exprParts = append(exprParts, jsonEncode(literal))
			tokens = append(tokens, RawToken{Literal: literal})
		}
		raw := strings.TrimSpace(text[exprStart:exprEnd])
		filtered := applyFilters(raw)
		exprParts = append(exprParts, "_s("+filtered+")")
		tokens = append(tokens, RawToken{Binding: filtered, IsBinding: true})
		lastEnd = end
	}
	if lastEnd < len(text) {
		literal := text[lastEnd:]
		exprParts = append(exprParts, jsonEncode(literal))
		tokens = append(tokens, RawToken{Literal: literal})
	}

	return &TextParseResult{
		Expression: strings.Join(exprParts, "+"),
		Tokens:     tokens,
	}
}

// applyFilters rewrites "expr | name(args)" chains into nested
// `_f("name")(acc, args...)` calls, left to right, matching the
// spec's `_f("f")(b)` example for `b|f`.
func applyFilters(expr string) string {
	parts := splitFilterChain(expr)
	acc := strings.TrimSpace(parts[0])
	for _, filter := range parts[1:] {
		filter = strings.TrimSpace(filter)
		name, args := filter, ""
		if i := strings.IndexByte(filter, '('); i >= 0 && strings.HasSuffix(filter, ")") {
			name = filter[:i]
			args = filter[i+1 : len(filter)-1]
		}
		if args == "" {
			acc = fmt.Sprintf(`_f(%q)(%s)`, name, acc)
		} else {
			acc = fmt.Sprintf(`_f(%q)(%s,%s)`, name, acc, args)
		}
	}
	return acc
}

// splitFilterChain splits on top-level '|' only, ignoring pipes inside
// quotes so a string literal argument containing '|' isn't mistaken
// for a filter separator.
func splitFilterChain(expr string) []string {
	var parts []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote && (i == 0 || expr[i-1] != '\\') {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '|' && depth == 0:
			if i+1 < len(expr) && expr[i+1] == '|' {
				i++
				continue
			}
			parts = append(parts, expr[last:i])
			last = i + 1
		}
	}
	parts = append(parts, expr[last:])
	return parts
}

func jsonEncode(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
