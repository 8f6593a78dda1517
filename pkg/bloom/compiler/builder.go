package compiler

// Parse runs the HTML scanner and assembles the resulting tag/text
// events into an ElementNode tree, then runs both optimizer passes
// over it. The AST builder's attribute-to-directive decoding (v-if,
// v-for, v-pre) is treated as in-scope "enough structure for the
// optimizer to operate on," per spec §4.11's note that the full AST
// builder is assumed upstream — this is a minimal stand-in sufficient
// to drive and test Optimize.
func Parse(source string, opts ParserOptions) *ElementNode {
	root := &ElementNode{Tag: "", Plain: true}
	cur := root
	var delimiters = [2]string{"{{", "}}"}

	wrapped := opts
	wrapped.Start = func(tag string, attrs []Attr, unary bool, start, end int) {
		el := &ElementNode{
			Tag:       tag,
			AttrsList: attrs,
			Parent:    cur,
			Plain:     len(attrs) == 0,
			Start:     start,
			End:       end,
		}
		el.AttrsMap = make(map[string]string, len(attrs))
		for _, a := range attrs {
			el.AttrsMap[a.Name] = a.Value
		}
		el.RawAttrsMap = el.AttrsMap
		applyDirectives(el)
		cur.Children = append(cur.Children, el)
		if !unary {
			cur = el
		}
		if opts.Start != nil {
			opts.Start(tag, attrs, unary, start, end)
		}
	}
	wrapped.End = func(tag string, start, end int) {
		if cur.Parent != nil {
			cur.End = end
			cur = cur.Parent
		}
		if opts.End != nil {
			opts.End(tag, start, end)
		}
	}
	wrapped.Chars = func(text string, start, end int) {
		parsed := ParseText(text, delimiters)
		t := &TextNode{Text: text, Parent: cur, Start: start, End: end}
		if parsed != nil {
			t.Interpolated = true
			t.Expression = parsed.Expression
			t.Tokens = parsed.Tokens
		}
		cur.Children = append(cur.Children, t)
		if opts.Chars != nil {
			opts.Chars(text, start, end)
		}
	}
	wrapped.Comment = func(text string, start, end int) {
		cur.Children = append(cur.Children, &CommentNode{Text: text, Parent: cur, Start: start, End: end})
		if opts.Comment != nil {
			opts.Comment(text, start, end)
		}
	}

	HTMLParse(source, wrapped)
	linkIfConditions(root)
	Optimize(root)
	return root
}

// applyDirectives extracts v-if/v-else-if/v-else/v-for/v-pre from an
// element's attribute map into the dedicated AST fields, leaving the
// attribute itself in AttrsMap for a downstream code generator (out of
// scope here) to still see.
func applyDirectives(el *ElementNode) {
	if _, ok := el.AttrsMap["v-pre"]; ok {
		el.Pre = true
	}
	if expr, ok := el.AttrsMap["v-if"]; ok {
		el.If = expr
	}
	if expr, ok := el.AttrsMap["v-for"]; ok {
		el.For = expr
	}
}

// linkIfConditions walks the finished tree wiring each v-else-if/
// v-else sibling into the IfConditions slice of the element that
// started its v-if chain, removing the standalone siblings from the
// parent's Children (they are rendered as part of the v-if chain, not
// as independent nodes).
func linkIfConditions(node Node) {
	el, ok := node.(*ElementNode)
	if !ok {
		return
	}
	var kept []Node
	var openChain *ElementNode
	for _, child := range el.Children {
		ce, isElement := child.(*ElementNode)
		switch {
		case isElement && ce.If != "":
			ce.IfConditions = append(ce.IfConditions, IfCondition{Expr: ce.If, Block: ce})
			openChain = ce
			kept = append(kept, child)
		case isElement && hasAttr(ce, "v-else-if") && openChain != nil:
			openChain.IfConditions = append(openChain.IfConditions, IfCondition{Expr: ce.AttrsMap["v-else-if"], Block: ce})
		case isElement && hasAttr(ce, "v-else") && openChain != nil:
			openChain.IfConditions = append(openChain.IfConditions, IfCondition{Block: ce})
			openChain = nil
		default:
			openChain = nil
			kept = append(kept, child)
		}
	}
	el.Children = kept
	for _, child := range el.Children {
		linkIfConditions(child)
	}
}

func hasAttr(el *ElementNode, name string) bool {
	_, ok := el.AttrsMap[name]
	return ok
}
