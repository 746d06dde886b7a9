package markdown

import (
	"regexp"
	"strings"
)

// Rule is one matcher/renderer pair in the rewrite table. Render receives the
// already-rendered markdown of the node's children plus the node itself.
type Rule struct {
	Match  func(n *Node) bool
	Render func(content string, n *Node) string
}

type namedRule struct {
	name string
	rule Rule
}

// Engine turns a parsed node tree into markdown text by walking the tree
// bottom-up and applying the first matching rule to each element.
//
// Rules are checked front-to-back, and AddRule inserts at the front, so the
// most recently added rule for a node type wins over built-ins and over
// earlier custom rules. Rendering touches no network or filesystem state:
// identical tree + identical rule list always produces identical output.
//
// The rule list is mutable only at configuration time, before any Render
// call is in flight.
type Engine struct {
	rules        []namedRule
	keepImagesIn map[string]bool
}

// NewEngine creates an engine with the built-in rule set installed.
func NewEngine() *Engine {
	e := &Engine{keepImagesIn: make(map[string]bool)}
	e.installBuiltins()
	return e
}

// AddRule inserts a rule at the front of the active list, overriding any
// built-in or previously added rule that matches the same nodes.
func (e *Engine) AddRule(name string, r Rule) {
	e.rules = append([]namedRule{{name: name, rule: r}}, e.rules...)
}

// KeepInlineImagesIn opts specific parent tags into inline image output.
// Images whose immediate parent is not listed render as their alt text only.
func (e *Engine) KeepInlineImagesIn(tags ...string) {
	for _, t := range tags {
		e.keepImagesIn[strings.ToLower(t)] = true
	}
}

// Render converts the tree rooted at n into markdown text.
func (e *Engine) Render(n *Node) string {
	return tidy(e.renderNode(n))
}

// RenderNodes renders a sequence of sibling nodes and joins their output.
// Used by the section segmenter to flush buffered top-level children.
func (e *Engine) RenderNodes(nodes []*Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(e.renderNode(n))
	}
	return tidy(sb.String())
}

func (e *Engine) renderNode(n *Node) string {
	if n.IsText() {
		return escapeText(collapseWhitespace(n.Text))
	}

	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(e.renderNode(c))
	}
	content := sb.String()

	if n.TagName == "" {
		// document wrapper
		return content
	}

	for _, nr := range e.rules {
		if nr.rule.Match(n) {
			return nr.rule.Render(content, n)
		}
	}
	return fallback(content, n)
}

// fallback handles elements no rule claims: structural wrappers vanish,
// block-level elements get surrounding newlines so consecutive blocks do not
// glue together, inline elements pass their content through.
func fallback(content string, n *Node) string {
	if isBlockTag(n.TagName) {
		c := strings.TrimSpace(content)
		if c == "" {
			return ""
		}
		return "\n" + c + "\n"
	}
	return content
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "div": true,
	"dl": true, "dd": true, "dt": true, "fieldset": true, "figure": true,
	"figcaption": true, "footer": true, "form": true, "header": true,
	"main": true, "nav": true, "p": true, "section": true, "tbody": true,
	"thead": true, "tfoot": true, "details": true, "summary": true,
}

func isBlockTag(tag string) bool {
	return blockTags[tag]
}

var (
	wsRun        = regexp.MustCompile(`[ \t\r\n]+`)
	trailingWS   = regexp.MustCompile(`[ \t]+\n`)
	newlineRuns  = regexp.MustCompile(`\n{3,}`)
	textEscaper  = strings.NewReplacer(`*`, `\*`, `_`, `\_`)
)

func collapseWhitespace(s string) string {
	return wsRun.ReplaceAllString(s, " ")
}

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// tidy removes trailing whitespace per line, collapses runs of blank lines
// and trims the document edges. Applied once per top-level render so rule
// outputs can join blocks with single newlines without accumulating gaps.
func tidy(s string) string {
	s = trailingWS.ReplaceAllString(s, "\n")
	s = newlineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
