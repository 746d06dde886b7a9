package markdown

import (
	"regexp"
	"strings"
)

// Section is a contiguous document region bounded by heading markers.
type Section struct {
	Title    string
	Level    int
	AnchorID string
	Content  string
}

var nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives an anchor id from a heading title: lowercased, with runs of
// non-alphanumeric characters collapsed to single hyphens.
func Slug(title string) string {
	s := strings.ToLower(title)
	s = nonAlnumRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Segment splits the tree at heading boundaries and renders each region
// through the engine. Content preceding the first heading becomes an
// implicit "Introduction" section (level 2, anchor "introduction") when it
// renders non-empty; each heading then opens a section carrying the heading
// text, its numeric level and a computed anchor id.
func (e *Engine) Segment(root *Node) []Section {
	var sections []Section
	var buf []*Node

	current := Section{Title: "Introduction", Level: 2, AnchorID: "introduction"}
	sawHeading := false

	// The leading implicit section only exists when it has content;
	// explicit heading sections are kept even when their body is empty.
	flush := func() {
		content := e.RenderNodes(buf)
		buf = nil
		if !sawHeading && content == "" {
			return
		}
		current.Content = content
		sections = append(sections, current)
	}

	for _, child := range root.Children {
		level := headingLevel(child.TagName)
		if level == 0 {
			buf = append(buf, child)
			continue
		}
		flush()
		title := strings.TrimSpace(collapseWhitespace(child.TextContent()))
		current = Section{Title: title, Level: level, AnchorID: Slug(title)}
		sawHeading = true
	}
	flush()

	return sections
}

// TableOfContents renders a nested markdown list linking to every heading in
// the original tree, in document order.
//
// Known limitation: indentation distinguishes only two depths. Headings at
// level 1 and 2 sit at the top level and anything deeper is nested exactly
// one step, so documents with deeper structure render a flattened ToC.
func (e *Engine) TableOfContents(root *Node) string {
	headings := root.FindAll(func(tag string) bool { return headingLevel(tag) > 0 })
	if len(headings) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, h := range headings {
		title := strings.TrimSpace(collapseWhitespace(h.TextContent()))
		if title == "" {
			continue
		}
		indent := ""
		if headingLevel(h.TagName) > 2 {
			indent = "  "
		}
		sb.WriteString(indent + "- [" + title + "](#" + Slug(title) + ")\n")
	}
	return sb.String()
}
