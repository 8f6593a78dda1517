package compiler

import (
	"regexp"
	"strings"

	"github.com/bloomui/bloom/internal/metrics"
)

// ParserOptions configures HTMLParse's callback-driven scan (spec
// §4.9). A zero value uses sane defaults (HTML mode on, newlines not
// decoded, comments dropped).
type ParserOptions struct {
	// ExpectHTML enables paragraph/li/option auto-closing heuristics.
	ExpectHTML bool
	// ShouldKeepComment controls whether Comment fires at all.
	ShouldKeepComment bool
	// ShouldDecodeNewlines/ShouldDecodeNewlinesForHref gate the extra
	// &#10;/&#9; decoding rules for attribute values in general vs
	// specifically href/src-like attributes (IE compatibility quirks
	// the original scanner carried; preserved here bit-for-bit).
	ShouldDecodeNewlines        bool
	ShouldDecodeNewlinesForHref bool

	Start   func(tag string, attrs []Attr, unary bool, start, end int)
	End     func(tag string, start, end int)
	Chars   func(text string, start, end int)
	Comment func(text string, start, end int)
	Warn    func(msg string, start int)
}

var (
	ncname        = `[a-zA-Z_][\-\.0-9_a-zA-Z]*`
	qname         = `(?:` + ncname + `\:)?` + ncname
	startTagOpen  = regexp.MustCompile(`^<(` + qname + `)`)
	startTagClose = regexp.MustCompile(`^\s*(/?)>`)
	endTag        = regexp.MustCompile(`^</(` + qname + `)[^>]*>`)
	doctypeRe     = regexp.MustCompile(`(?i)^<!DOCTYPE [^>]+>`)
	commentRe     = regexp.MustCompile(`^<!--`)
	commentEndRe  = regexp.MustCompile(`-->`)
	conditionalRe = regexp.MustCompile(`^<!\[`)
	conditionalEndRe = regexp.MustCompile(`\]>`)

	attributeRe = regexp.MustCompile(`^\s*([^\s"'<>/=]+)(?:\s*(=)\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+)))?`)
	dynamicArgAttributeRe = regexp.MustCompile(`^\s*((?:v-[\w-]+:|@|:|#)\[[^=]+][^\s"'<>/=]*)(?:\s*(=)\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+)))?`)
)

// plainTextTags short-circuit the scanner: everything up to their
// closing tag is one text chunk, matching the spec's <script>/<style>/
// <textarea> carve-out.
var plainTextTags = map[string]*regexp.Regexp{
	"script":   regexp.MustCompile(`(?is)([\s\S]*?)</script[^>]*>`),
	"style":    regexp.MustCompile(`(?is)([\s\S]*?)</style[^>]*>`),
	"textarea": regexp.MustCompile(`(?is)([\s\S]*?)</textarea[^>]*>`),
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<", "&gt;", ">", "&quot;", `"`, "&amp;", "&", "&#39;", "'",
)
var entityReplacerWithNewlines = strings.NewReplacer(
	"&lt;", "<", "&gt;", ">", "&quot;", `"`, "&amp;", "&", "&#39;", "'",
	"&#10;", "\n", "&#9;", "\t",
)

func decodeAttrValue(v string, decodeNewlines bool) string {
	if decodeNewlines {
		return entityReplacerWithNewlines.Replace(v)
	}
	return entityReplacer.Replace(v)
}

// HTMLParse runs the single-pass scanner over html, invoking opts'
// callbacks. It never panics on malformed input: a stuck cursor is
// resolved by emitting the remainder as text (spec's "no advance ⇒
// emit remainder, warn, stop" termination rule).
func HTMLParse(html string, opts ParserOptions) {
	var stack []string
	index := 0
	rest := html
	lastTag := ""

	advance := func(n int) {
		index += n
		rest = rest[n:]
	}

	for rest != "" {
		if lastTag != "" && isPlainTextTag(lastTag) {
			re := plainTextTags[strings.ToLower(lastTag)]
			loc := re.FindStringSubmatchIndex(rest)
			if loc == nil {
				// No closing tag found: consume everything as text.
				emitChars(opts, rest, index, index+len(rest))
				advance(len(rest))
				lastTag = ""
				continue
			}
			text := rest[loc[2]:loc[3]]
			text = stripCDATAAndComments(text)
			emitChars(opts, text, index, index+loc[3])
			parseEndTag(&stack, opts, lastTag, index+loc[3], index+loc[1])
			advance(loc[1])
			lastTag = ""
			continue
		}

		var textEnd = strings.IndexByte(rest, '<')
		if textEnd == 0 {
			if commentRe.MatchString(rest) {
				if end := commentEndRe.FindStringIndex(rest); end != nil {
					if opts.ShouldKeepComment && opts.Comment != nil {
						opts.Comment(rest[4:end[0]], index, index+end[1])
					}
					advance(end[1])
					continue
				}
				// Unterminated comment: treat rest as text (termination rule).
				emitChars(opts, rest, index, index+len(rest))
				if opts.Warn != nil {
					opts.Warn("mal-formatted tag at end of template", index)
				}
				advance(len(rest))
				continue
			}
			if conditionalRe.MatchString(rest) {
				if end := conditionalEndRe.FindStringIndex(rest); end != nil {
					advance(end[1])
					continue
				}
				// Unterminated conditional comment: same termination rule.
				emitChars(opts, rest, index, index+len(rest))
				if opts.Warn != nil {
					opts.Warn("mal-formatted tag at end of template", index)
				}
				advance(len(rest))
				continue
			}
			if loc := doctypeRe.FindStringIndex(rest); loc != nil {
				advance(loc[1])
				continue
			}
			if loc := endTag.FindStringSubmatchIndex(rest); loc != nil {
				tag := rest[loc[2]:loc[3]]
				curIndex := index
				advance(loc[1])
				parseEndTag(&stack, opts, tag, curIndex, curIndex+loc[1])
				continue
			}
			if tag, consumed, ok := parseStartTag(rest, opts); ok {
				curIndex := index
				advance(consumed)
				handleStartTag(&stack, opts, tag, curIndex, curIndex+consumed)
				if !tag.unary {
					lastTag = tag.name
				}
				continue
			}
		}

		if textEnd >= 0 {
			// A '<' was found but (at textEnd==0, having fallen through
			// every construct check above) doesn't begin a recognizable
			// tag/comment/doctype/end-tag at this position: keep
			// extending the text run past further stray '<' runes until
			// one does, mirroring Vue's re-scanning scanner so input
			// like "a<b</div>" merges into one chars("a<b") run instead
			// of splitting into two at the first bare '<'.
			for {
				tail := rest[textEnd:]
				if endTag.MatchString(tail) || commentRe.MatchString(tail) ||
					conditionalRe.MatchString(tail) || doctypeRe.MatchString(tail) {
					break
				}
				// startTagOpen alone only tests the "<name" prefix, which
				// "<b</div>" also matches; parse it fully so a tag that
				// never reaches a closing '>' (malformed) falls through
				// to the stray-'<' case below instead of stopping here.
				if _, _, ok := parseStartTag(tail, opts); ok {
					break
				}
				next := strings.IndexByte(tail[1:], '<')
				if next < 0 {
					textEnd = -1
					break
				}
				textEnd += next + 1
			}
		}

		if textEnd < 0 {
			textEnd = len(rest)
		}

		text := rest[:textEnd]
		emitChars(opts, text, index, index+textEnd)
		advance(textEnd)
	}

	// EOF: close anything still open.
	parseEndTag(&stack, opts, "", index, index)
}

func isPlainTextTag(tag string) bool {
	_, ok := plainTextTags[strings.ToLower(tag)]
	return ok
}

func emitChars(opts ParserOptions, text string, start, end int) {
	if text == "" || opts.Chars == nil {
		return
	}
	opts.Chars(text, start, end)
}

func stripCDATAAndComments(s string) string {
	s = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)]]>`).ReplaceAllString(s, "$1")
	s = regexp.MustCompile(`(?s)<!--(.*?)-->`).ReplaceAllString(s, "$1")
	return s
}

type parsedStartTag struct {
	name  string
	attrs []Attr
	unary bool
}

// parseStartTag matches `<tagname` then alternates ordinary/dynamic-
// argument attribute patterns until startTagClose, returning how many
// bytes of rest it consumed.
func parseStartTag(rest string, opts ParserOptions) (parsedStartTag, int, bool) {
	m := startTagOpen.FindStringSubmatchIndex(rest)
	if m == nil {
		return parsedStartTag{}, 0, false
	}
	tag := parsedStartTag{name: rest[m[2]:m[3]]}
	pos := m[1]

	for {
		remaining := rest[pos:]
		if loc := startTagClose.FindStringSubmatchIndex(remaining); loc != nil {
			tag.unary = remaining[loc[2]:loc[3]] == "/"
			pos += loc[1]
			return tag, pos, true
		}
		var attrLoc []int
		dynamic := false
		if loc := dynamicArgAttributeRe.FindStringSubmatchIndex(remaining); loc != nil && loc[0] == 0 {
			attrLoc = loc
			dynamic = true
		} else if loc := attributeRe.FindStringSubmatchIndex(remaining); loc != nil && loc[0] == 0 {
			attrLoc = loc
		}
		if attrLoc == nil {
			// Malformed tag: bail, caller's termination rule applies.
			return parsedStartTag{}, 0, false
		}
		_ = dynamic
		name := remaining[attrLoc[2]:attrLoc[3]]
		value := ""
		if attrLoc[4] != -1 { // '=' present
			switch {
			case attrLoc[6] != -1:
				value = remaining[attrLoc[6]:attrLoc[7]]
			case attrLoc[8] != -1:
				value = remaining[attrLoc[8]:attrLoc[9]]
			case attrLoc[10] != -1:
				value = remaining[attrLoc[10]:attrLoc[11]]
			}
		}
		decodeNL := shouldDecodeNewlinesForAttr(name, opts)
		tag.attrs = append(tag.attrs, Attr{Name: name, Value: decodeAttrValue(value, decodeNL)})
		pos += attrLoc[1]
	}
}

// shouldDecodeNewlinesForAttr implements the attribute-specific
// &#10;/&#9; decoding gate: href/src attributes use the Href flag,
// everything else the general flag (spec §4.9's decoding table).
func shouldDecodeNewlinesForAttr(name string, opts ParserOptions) bool {
	if name == "href" || name == "src" {
		return opts.ShouldDecodeNewlinesForHref
	}
	return opts.ShouldDecodeNewlines
}

// handleStartTag pushes a stack frame (unless unary) and fires
// opts.Start, applying expectHTML's paragraph/li-style auto-close
// heuristics first.
func handleStartTag(stack *[]string, opts ParserOptions, tag parsedStartTag, start, end int) {
	if opts.ExpectHTML {
		if len(*stack) > 0 && (*stack)[len(*stack)-1] == "p" && isNonPhrasingTag(tag.name) {
			parseEndTag(stack, opts, "p", start, start)
		}
		if isLeftOpenClosingTag(tag.name) && len(*stack) > 0 && (*stack)[len(*stack)-1] == tag.name {
			parseEndTag(stack, opts, tag.name, start, start)
		}
	}
	if !tag.unary {
		*stack = append(*stack, tag.name)
	}
	if opts.Start != nil {
		opts.Start(tag.name, tag.attrs, tag.unary, start, end)
	}
}

var nonPhrasingTags = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true, "blockquote": true,
	"body": true, "caption": true, "col": true, "colgroup": true, "dd": true,
	"details": true, "dialog": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "head": true, "header": true, "hgroup": true,
	"hr": true, "html": true, "legend": true, "li": true, "menuitem": true, "meta": true,
	"optgroup": true, "option": true, "param": true, "rp": true, "rt": true, "section": true,
	"source": true, "style": true, "summary": true, "tbody": true, "td": true, "tfoot": true,
	"th": true, "thead": true, "title": true, "tr": true, "track": true,
}

func isNonPhrasingTag(tag string) bool { return nonPhrasingTags[tag] }

var leftOpenTags = map[string]bool{"p": true, "li": true, "option": true, "tr": true, "td": true, "th": true}

func isLeftOpenClosingTag(tag string) bool { return leftOpenTags[tag] }

// parseEndTag walks stack from the top looking for tag; every frame
// above the match fires a mismatched-tag warning plus opts.End, then
// the stack is truncated. A call with tag == "" closes everything
// still open (EOF behavior). `</br>` rewrites to a start-only `<br>`;
// `</p>` with no open `<p>` auto-generates both start and end.
func parseEndTag(stack *[]string, opts ParserOptions, tag string, start, end int) {
	if tag == "br" {
		if opts.Start != nil {
			opts.Start("br", nil, true, start, end)
		}
		return
	}
	if tag == "p" {
		found := false
		for _, t := range *stack {
			if t == "p" {
				found = true
				break
			}
		}
		if !found {
			if opts.Start != nil {
				opts.Start("p", nil, false, start, start)
			}
			if opts.End != nil {
				opts.End("p", start, end)
			}
			return
		}
	}

	lowerTag := strings.ToLower(tag)
	pos := -1
	if tag != "" {
		for i := len(*stack) - 1; i >= 0; i-- {
			if strings.ToLower((*stack)[i]) == lowerTag {
				pos = i
				break
			}
		}
	} else {
		pos = 0
	}

	if pos < 0 {
		if tag != "" {
			metrics.Global().RecordParserWarning("unmatched-end-tag")
			if opts.Warn != nil {
				opts.Warn("tag <"+tag+"> has no matching start tag", start)
			}
		}
		return
	}

	for i := len(*stack) - 1; i >= pos; i-- {
		if i > pos || tag == "" {
			metrics.Global().RecordParserWarning("unclosed-tag")
			if opts.Warn != nil {
				opts.Warn("tag <"+(*stack)[i]+"> was left unclosed", start)
			}
		}
		if opts.End != nil {
			opts.End((*stack)[i], start, end)
		}
	}
	*stack = (*stack)[:pos]
}
