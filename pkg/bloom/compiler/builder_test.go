package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_SimpleTreeShape(t *testing.T) {
	root := Parse("<div><span>hi</span></div>", ParserOptions{})
	assert.Len(t, root.Children, 1)
	div := root.Children[0].(*ElementNode)
	assert.Equal(t, "div", div.Tag)
	assert.Len(t, div.Children, 1)
	span := div.Children[0].(*ElementNode)
	assert.Equal(t, "span", span.Tag)
	text := span.Children[0].(*TextNode)
	assert.Equal(t, "hi", text.Text)
}

func TestParse_InterpolatedTextGetsExpression(t *testing.T) {
	root := Parse("<div>{{ name }}</div>", ParserOptions{})
	div := root.Children[0].(*ElementNode)
	text := div.Children[0].(*TextNode)
	assert.True(t, text.Interpolated)
	assert.Equal(t, `_s(name)`, text.Expression)
}

func TestParse_VIfExtractedFromAttrs(t *testing.T) {
	root := Parse(`<div v-if="shown">x</div>`, ParserOptions{})
	div := root.Children[0].(*ElementNode)
	assert.Equal(t, "shown", div.If)
}

func TestParse_VForExtractedFromAttrs(t *testing.T) {
	root := Parse(`<li v-for="item in items">x</li>`, ParserOptions{})
	li := root.Children[0].(*ElementNode)
	assert.Equal(t, "item in items", li.For)
}

func TestParse_VPreExtractedFromAttrs(t *testing.T) {
	root := Parse(`<div v-pre>{{ notInterpolated }}</div>`, ParserOptions{})
	div := root.Children[0].(*ElementNode)
	assert.True(t, div.Pre)
}

func TestParse_RunsOptimizerMarkingStaticNodes(t *testing.T) {
	root := Parse("<div><span>a</span><span>b</span></div>", ParserOptions{})
	div := root.Children[0].(*ElementNode)
	assert.True(t, div.Static)
}

func TestParse_LinksVElseIfAndVElseIntoIfConditions(t *testing.T) {
	root := Parse(`<div v-if="a">A</div><div v-else-if="b">B</div><div v-else>C</div>`, ParserOptions{})
	assert.Len(t, root.Children, 1, "else-if/else siblings are folded into the v-if chain, not kept standalone")

	first := root.Children[0].(*ElementNode)
	assert.Len(t, first.IfConditions, 3)
	assert.Equal(t, "a", first.IfConditions[0].Expr)
	assert.Equal(t, "b", first.IfConditions[1].Expr)
	assert.Equal(t, "", first.IfConditions[2].Expr)
}

func TestParse_PlainElementHasNoAttrs(t *testing.T) {
	root := Parse("<div></div>", ParserOptions{})
	div := root.Children[0].(*ElementNode)
	assert.True(t, div.Plain)
}

func TestParse_ElementWithAttrsIsNotPlain(t *testing.T) {
	root := Parse(`<div id="x"></div>`, ParserOptions{})
	div := root.Children[0].(*ElementNode)
	assert.False(t, div.Plain)
	assert.Equal(t, "x", div.AttrsMap["id"])
}
