package bloom

import "strings"

// ArrayMutatorMethods lists the seven array operations that must route
// through ReactiveArray rather than a direct slice append/index write
// for their mutation to be observed (spec §4.3's "seven methods").
var ArrayMutatorMethods = []string{"push", "pop", "shift", "unshift", "splice", "sort", "reverse"}

// builtinTags mirrors the handful of HTML5 tags a component/directive
// name must never shadow (spec §4.4's "reject reserved/built-in
// tags"); this is a representative subset, not the full HTML element
// list, since the compiler's own reserved-tag table (compiler package)
// is the authoritative source for parsing decisions.
var builtinTags = map[string]bool{
	"html": true, "head": true, "body": true, "div": true, "span": true,
	"a": true, "p": true, "ul": true, "ol": true, "li": true, "table": true,
	"slot": true, "component": true, "template": true, "script": true,
	"style": true, "input": true, "button": true, "form": true,
}

// isValidComponentName reports whether name is a syntactically valid
// custom-element name (HTML5 custom-element grammar: lowercase,
// hyphen-containing, not a reserved/built-in tag) per spec §4.4.
func isValidComponentName(name string) bool {
	if name == "" || builtinTags[strings.ToLower(name)] {
		return false
	}
	if !strings.Contains(name, "-") {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}

// isReservedKey reports whether key would collide with the instance's
// internal `_`/`$`-prefixed namespace (spec §4.5 step 8's methods
// collision check).
func isReservedKey(key string) bool {
	return strings.HasPrefix(key, "_") || strings.HasPrefix(key, "$")
}
