package compiler

// knownStaticKeys are the ElementNode fields isStatic's "every own key
// is in the known-static set" clause refers to; Go has no dynamic
// property enumeration, so this only documents the set the spec names
// (the Go struct has no extra dynamic keys to worry about, but callers
// supplying extra annotations via node metadata should extend this
// list rather than assume it).
var knownStaticKeys = map[string]bool{
	"type": true, "tag": true, "attrsList": true, "attrsMap": true,
	"plain": true, "parent": true, "children": true, "attrs": true,
	"start": true, "end": true, "rawAttrsMap": true,
}

// builtInTags are never promoted to static even with no bindings,
// since their runtime behavior depends on what they're given at
// render time.
var builtInTags = map[string]bool{"slot": true, "component": true}

// Optimize runs both static-marking passes over root in place,
// matching spec §4.11 exactly.
func Optimize(root *ElementNode) {
	markStatic(root)
	markStaticRoots(root, false)
}

// markStatic implements pass 1: a node is static when it is plain
// text, or (for elements) has no dynamic bindings/control-flow, isn't
// a built-in tag, isn't inside a `template` with v-for, and its own
// fields are all in the known-static set. Any non-static child forces
// its parent non-static too (monotonic: never re-flips true→false
// within the same pass only in the forward direction described by
// spec property 11 — non-static never becomes static later).
func markStatic(node Node) bool {
	switch n := node.(type) {
	case *TextNode:
		n.Static = !n.Interpolated
		return n.Static
	case *CommentNode:
		n.Static = true
		return true
	case *ElementNode:
		if n.Pre {
			n.Static = true
			return true
		}
		static := isStaticElement(n)
		for _, child := range n.Children {
			childStatic := markStatic(child)
			if !childStatic {
				static = false
			}
		}
		for _, cond := range n.IfConditions {
			if cond.Block != nil {
				if !markStatic(cond.Block) {
					static = false
				}
			}
		}
		n.Static = static
		return static
	default:
		return false
	}
}

func isStaticElement(n *ElementNode) bool {
	if len(n.AttrsList) > 0 && !n.Plain {
		return false
	}
	if n.If != "" || n.For != "" || len(n.IfConditions) > 0 {
		return false
	}
	if builtInTags[n.Tag] {
		return false
	}
	if !isPlatformReservedTag(n.Tag) {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Tag == "template" && p.For != "" {
			return false
		}
	}
	return true
}

// isPlatformReservedTag reports whether tag is a plain HTML element
// rather than a user component — anything not in this set is assumed
// to be a component and is never marked static, since a component's
// own render output may vary independent of its call-site bindings.
func isPlatformReservedTag(tag string) bool {
	return htmlTags[tag] || svgTags[tag]
}

// markStaticRoots implements pass 2: hoist a static element as a
// "static root" unless its only child is a single plain-text node (the
// spec's cost/benefit carve-out — hoisting a single text child costs
// more than it saves). Static roots stop recursion; everything else
// recurses into children and if-branches, propagating isInFor so any
// static node nested in a v-for is flagged StaticInFor (needed because
// a static node rendered once per loop iteration cannot share a single
// hoisted instance across iterations the way a true static root can).
func markStaticRoots(node Node, isInFor bool) {
	el, ok := node.(*ElementNode)
	if !ok {
		return
	}
	if el.Static {
		el.StaticInFor = isInFor
	}
	if el.Static && len(el.Children) > 0 && !isSingleStaticTextChild(el) {
		el.StaticRoot = true
		return
	}
	el.StaticRoot = false

	childIsInFor := isInFor || el.For != ""
	for _, child := range el.Children {
		markStaticRoots(child, childIsInFor)
	}
	for _, cond := range el.IfConditions {
		if cond.Block != nil {
			markStaticRoots(cond.Block, childIsInFor)
		}
	}
}

func isSingleStaticTextChild(el *ElementNode) bool {
	if len(el.Children) != 1 {
		return false
	}
	t, ok := el.Children[0].(*TextNode)
	return ok && !t.Interpolated
}
