package markdown

import (
	"fmt"
	"net/url"
	"strings"
)

// droppedTags never contribute output, content included.
var droppedTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
	"meta": true, "link": true, "noscript": true, "template": true,
	"iframe": true, "object": true, "svg": true,
}

// installBuiltins registers the default rule set. Order here only matters
// for overlapping matchers; each built-in matches a disjoint tag set.
func (e *Engine) installBuiltins() {
	e.addBuiltin("drop", matchTags(droppedTags), func(string, *Node) string {
		return ""
	})
	e.addBuiltin("heading", func(n *Node) bool {
		return headingLevel(n.TagName) > 0
	}, renderHeading)
	e.addBuiltin("link", matchTag("a"), renderLink)
	e.addBuiltin("image", matchTag("img"), e.renderImage)
	e.addBuiltin("strong", matchTags(map[string]bool{"strong": true, "b": true}),
		wrapInline("**"))
	e.addBuiltin("emphasis", matchTags(map[string]bool{"em": true, "i": true}),
		wrapInline("*"))
	e.addBuiltin("strikethrough", matchTags(map[string]bool{"del": true, "s": true, "strike": true}),
		wrapInline("~~"))
	e.addBuiltin("code", func(n *Node) bool {
		inline := n.TagName == "code" || n.TagName == "kbd" || n.TagName == "samp"
		return inline && (n.Parent == nil || n.Parent.TagName != "pre")
	}, renderInlineCode)
	e.addBuiltin("pre", matchTag("pre"), renderPre)
	e.addBuiltin("blockquote", matchTag("blockquote"), renderBlockquote)
	e.addBuiltin("list", matchTags(map[string]bool{"ul": true, "ol": true}), renderList)
	e.addBuiltin("listitem", matchTag("li"), renderListItem)
	e.addBuiltin("table", matchTag("table"), e.renderTable)
	e.addBuiltin("linebreak", matchTag("br"), func(string, *Node) string {
		return "\n"
	})
	e.addBuiltin("rule", matchTag("hr"), func(string, *Node) string {
		return "\n---\n"
	})
}

// addBuiltin appends (built-ins sit behind every AddRule insertion).
func (e *Engine) addBuiltin(name string, match func(*Node) bool, render func(string, *Node) string) {
	e.rules = append(e.rules, namedRule{name: name, rule: Rule{Match: match, Render: render}})
}

func matchTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.TagName == tag }
}

func matchTags(tags map[string]bool) func(*Node) bool {
	return func(n *Node) bool { return tags[n.TagName] }
}

func renderHeading(content string, n *Node) string {
	level := headingLevel(n.TagName)
	return "\n" + strings.Repeat("#", level) + " " + strings.TrimSpace(content) + "\n"
}

// renderLink emits markdown links with a defensive href policy: only http,
// https and file schemes survive (relative references have no scheme and
// pass). Anything else, javascript: URLs included, degrades to the link text.
func renderLink(content string, n *Node) string {
	text := strings.TrimSpace(content)
	if text == "" {
		return ""
	}

	href := strings.TrimSpace(n.Attr("href"))
	u, err := url.Parse(href)
	if err != nil {
		return text
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "file":
	default:
		return text
	}

	// Re-encode the path from its decoded form so already-encoded hrefs do
	// not get double-encoded.
	u.RawPath = ""
	href = u.String()

	title := n.Attr("title")
	if title == "" && strings.ReplaceAll(text, `\_`, "_") == href {
		return "<" + href + ">"
	}
	if title != "" {
		return fmt.Sprintf("[%s](%s \"%s\")", text, href, strings.ReplaceAll(title, `"`, `\"`))
	}
	return fmt.Sprintf("[%s](%s)", text, href)
}

// renderImage keeps only the alt text unless the image's immediate parent is
// whitelisted via KeepInlineImagesIn. Data URIs are truncated to their
// scheme+mime prefix so large payloads never land in text output.
func (e *Engine) renderImage(_ string, n *Node) string {
	alt := collapseWhitespace(n.Attr("alt"))
	if n.Parent == nil || !e.keepImagesIn[n.Parent.TagName] {
		return alt
	}

	src := n.Attr("src")
	if strings.HasPrefix(src, "data:") {
		if i := strings.Index(src, ","); i >= 0 {
			src = src[:i]
		}
		src += "..."
	}

	if title := n.Attr("title"); title != "" {
		return fmt.Sprintf("![%s](%s \"%s\")", alt, src, strings.ReplaceAll(title, `"`, `\"`))
	}
	return fmt.Sprintf("![%s](%s)", alt, src)
}

func wrapInline(marker string) func(string, *Node) string {
	return func(content string, _ *Node) string {
		t := strings.TrimSpace(content)
		if t == "" {
			return ""
		}
		return marker + t + marker
	}
}

func renderInlineCode(_ string, n *Node) string {
	t := collapseWhitespace(n.TextContent())
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	return "`" + t + "`"
}

func renderPre(_ string, n *Node) string {
	lang := ""
	if code := n.Find("code"); code != nil {
		for _, class := range strings.Fields(code.Attr("class")) {
			if l, ok := strings.CutPrefix(class, "language-"); ok {
				lang = l
				break
			}
		}
	}
	body := strings.Trim(n.TextContent(), "\n")
	return "\n```" + lang + "\n" + body + "\n```\n"
}

func renderBlockquote(content string, _ *Node) string {
	t := strings.TrimSpace(content)
	if t == "" {
		return ""
	}
	lines := strings.Split(t, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return "\n" + strings.Join(lines, "\n") + "\n"
}

func renderList(content string, n *Node) string {
	// Nested lists are emitted by their parent <li>; only top-level lists
	// add block separation.
	if listDepth(n) > 0 {
		return "\n" + strings.TrimRight(content, "\n") + "\n"
	}
	return "\n" + strings.TrimSpace(content) + "\n"
}

func renderListItem(content string, n *Node) string {
	marker := "-"
	if n.Parent != nil && n.Parent.TagName == "ol" {
		idx := 1
		for _, sib := range n.Parent.Children {
			if sib == n {
				break
			}
			if sib.TagName == "li" {
				idx++
			}
		}
		marker = fmt.Sprintf("%d.", idx)
	}

	indent := strings.Repeat("  ", listDepth(n.Parent))
	return indent + marker + " " + strings.TrimSpace(content) + "\n"
}

// listDepth counts enclosing ul/ol ancestors above n.
func listDepth(n *Node) int {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		if p.Parent != nil && (p.Parent.TagName == "ul" || p.Parent.TagName == "ol") {
			depth++
		}
	}
	return depth
}

// renderTable emits a GitHub pipe table. Cell text is the collapsed raw text
// of each cell; rich content inside cells is flattened, which is the best a
// pipe table can represent.
func (e *Engine) renderTable(_ string, n *Node) string {
	rows := n.FindAll(func(tag string) bool { return tag == "tr" })
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for i, row := range rows {
		cells := row.FindAll(func(tag string) bool { return tag == "th" || tag == "td" })
		texts := make([]string, 0, len(cells))
		for _, cell := range cells {
			texts = append(texts, strings.TrimSpace(collapseWhitespace(cell.TextContent())))
		}
		sb.WriteString("| " + strings.Join(texts, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", len(texts)) + "\n")
		}
	}
	return sb.String()
}
