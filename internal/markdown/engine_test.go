package markdown

import (
	"strings"
	"testing"
)

func parseBody(t *testing.T, fragment string) *Node {
	t.Helper()
	root, err := Parse(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return Body(root)
}

func render(t *testing.T, fragment string) string {
	t.Helper()
	return NewEngine().Render(parseBody(t, fragment))
}

func TestRenderHeadingThenParagraph(t *testing.T) {
	out := render(t, "<h1>Hello</h1><p>World</p>")

	hi := strings.Index(out, "# Hello")
	wi := strings.Index(out, "World")
	if hi < 0 || wi < 0 {
		t.Fatalf("missing heading or paragraph in output: %q", out)
	}
	if hi > wi {
		t.Errorf("heading must precede paragraph, got: %q", out)
	}
}

func TestRenderAllHeadingLevels(t *testing.T) {
	for level, tag := range map[int]string{1: "h1", 2: "h2", 3: "h3", 4: "h4", 5: "h5", 6: "h6"} {
		out := render(t, "<"+tag+">  Title  </"+tag+">")
		want := strings.Repeat("#", level) + " Title"
		if out != want {
			t.Errorf("%s: got %q, want %q", tag, out, want)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	node := parseBody(t, "<h1>Hi</h1><p>Some <b>bold</b> and <a href='https://x.test/a'>a link</a>.</p>")
	engine := NewEngine()

	first := engine.Render(node)
	for i := 0; i < 5; i++ {
		if got := engine.Render(node); got != first {
			t.Fatalf("render %d differed:\n%q\nvs\n%q", i, got, first)
		}
	}
}

func TestLinkScriptSchemeDegradesToText(t *testing.T) {
	out := render(t, `<a href="javascript:alert(1)">x</a>`)
	if out != "x" {
		t.Errorf("got %q, want plain %q", out, "x")
	}
	if strings.Contains(out, "](") || strings.Contains(out, "javascript") {
		t.Errorf("script link must not survive: %q", out)
	}
}

func TestLinkSchemes(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"https", `<a href="https://example.com/p">text</a>`, "[text](https://example.com/p)"},
		{"file", `<a href="file:///tmp/x">text</a>`, "[text](file:///tmp/x)"},
		{"relative", `<a href="/docs/intro">text</a>`, "[text](/docs/intro)"},
		{"data scheme dropped", `<a href="data:text/html,hi">text</a>`, "text"},
		{"empty content dropped", `<a href="https://example.com"></a>`, ""},
		{"with title", `<a href="https://example.com" title="Say &quot;hi&quot;">text</a>`, `[text](https://example.com "Say \"hi\"")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.html); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLinkAutolinkForm(t *testing.T) {
	out := render(t, `<a href="https://example.com/page">https://example.com/page</a>`)
	if out != "<https://example.com/page>" {
		t.Errorf("got %q, want autolink form", out)
	}
}

func TestLinkAutolinkIgnoresEscapedUnderscores(t *testing.T) {
	out := render(t, `<a href="https://example.com/a_b">https://example.com/a_b</a>`)
	if out != "<https://example.com/a_b>" {
		t.Errorf("got %q, want autolink despite escaped underscore", out)
	}
}

func TestLinkPathNotDoubleEncoded(t *testing.T) {
	out := render(t, `<a href="https://example.com/a%20b">text</a>`)
	if !strings.Contains(out, "a%20b") || strings.Contains(out, "%2520") {
		t.Errorf("path was double-encoded: %q", out)
	}
}

func TestImageDroppedToAltByDefault(t *testing.T) {
	out := render(t, `<p><img src="pic.png" alt="a cat"></p>`)
	if out != "a cat" {
		t.Errorf("got %q, want alt text only", out)
	}
}

func TestImageKeptWithWhitelistedParent(t *testing.T) {
	engine := NewEngine()
	engine.KeepInlineImagesIn("figure")

	out := engine.Render(parseBody(t, `<figure><img src="pic.png" alt="a cat"></figure>`))
	if out != "![a cat](pic.png)" {
		t.Errorf("got %q, want inline image", out)
	}

	out = engine.Render(parseBody(t, `<p><img src="pic.png" alt="a cat"></p>`))
	if out != "a cat" {
		t.Errorf("non-whitelisted parent: got %q, want alt only", out)
	}
}

func TestImageDataURITruncated(t *testing.T) {
	engine := NewEngine()
	engine.KeepInlineImagesIn("figure")

	payload := strings.Repeat("A", 4096)
	out := engine.Render(parseBody(t,
		`<figure><img src="data:image/png;base64,`+payload+`" alt="x"></figure>`))

	if !strings.Contains(out, "data:image/png;base64...") {
		t.Errorf("missing truncated prefix: %q", out)
	}
	if strings.Contains(out, payload[:64]) {
		t.Errorf("payload leaked into output: %q", out[:min(len(out), 120)])
	}
}

func TestAddRuleOverridesBuiltin(t *testing.T) {
	engine := NewEngine()
	engine.AddRule("shout-headings", Rule{
		Match: func(n *Node) bool { return n.TagName == "h1" },
		Render: func(content string, n *Node) string {
			return "\n# " + strings.ToUpper(strings.TrimSpace(content)) + "\n"
		},
	})

	out := engine.Render(parseBody(t, "<h1>quiet</h1>"))
	if out != "# QUIET" {
		t.Errorf("custom rule did not win: %q", out)
	}
}

func TestAddRuleMostRecentWins(t *testing.T) {
	engine := NewEngine()
	mark := func(tag string) Rule {
		return Rule{
			Match:  func(n *Node) bool { return n.TagName == "p" },
			Render: func(content string, n *Node) string { return tag },
		}
	}
	engine.AddRule("first", mark("first"))
	engine.AddRule("second", mark("second"))

	if out := engine.Render(parseBody(t, "<p>x</p>")); out != "second" {
		t.Errorf("got %q, want most recently added rule to win", out)
	}
}

func TestInlineFormatting(t *testing.T) {
	tests := []struct {
		html string
		want string
	}{
		{"<b>bold</b>", "**bold**"},
		{"<strong>bold</strong>", "**bold**"},
		{"<em>it</em>", "*it*"},
		{"<del>gone</del>", "~~gone~~"},
		{"<code>x := 1</code>", "`x := 1`"},
		{"<hr>", "---"},
	}
	for _, tt := range tests {
		if got := render(t, tt.html); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.html, got, tt.want)
		}
	}
}

func TestUnderscoresEscapedInText(t *testing.T) {
	out := render(t, "<p>snake_case</p>")
	if out != `snake\_case` {
		t.Errorf("got %q, want escaped underscore", out)
	}
}

func TestPreRendersFencedBlock(t *testing.T) {
	out := render(t, `<pre><code class="language-go">a := b_c()</code></pre>`)
	if !strings.HasPrefix(out, "```go\n") || !strings.HasSuffix(out, "\n```") {
		t.Fatalf("not a fenced block: %q", out)
	}
	if !strings.Contains(out, "a := b_c()") {
		t.Errorf("code body must stay unescaped: %q", out)
	}
}

func TestBlockquote(t *testing.T) {
	out := render(t, "<blockquote><p>one</p><p>two</p></blockquote>")
	for _, line := range strings.Split(out, "\n") {
		if line != "" && !strings.HasPrefix(line, ">") {
			t.Errorf("unprefixed blockquote line %q in %q", line, out)
		}
	}
}

func TestLists(t *testing.T) {
	out := render(t, "<ul><li>a</li><li>b</li></ul>")
	if out != "- a\n- b" {
		t.Errorf("unordered list: got %q", out)
	}

	out = render(t, "<ol><li>a</li><li>b</li></ol>")
	if out != "1. a\n2. b" {
		t.Errorf("ordered list: got %q", out)
	}

	out = render(t, "<ul><li>a<ul><li>nested</li></ul></li></ul>")
	if !strings.Contains(out, "- a\n  - nested") {
		t.Errorf("nested list: got %q", out)
	}
}

func TestTable(t *testing.T) {
	out := render(t, "<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>")
	want := "| A | B |\n| --- | --- |\n| 1 | 2 |"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestScriptAndStyleDropped(t *testing.T) {
	out := render(t, "<p>keep</p><script>alert(1)</script><style>p{}</style>")
	if out != "keep" {
		t.Errorf("got %q, want dropped script/style", out)
	}
}

func TestStructuralWrappersVanish(t *testing.T) {
	out := render(t, "<div><section><p>content</p></section></div>")
	if out != "content" {
		t.Errorf("got %q, want bare content", out)
	}
}

func TestConsecutiveBlocksDoNotGlue(t *testing.T) {
	out := render(t, "<p>one</p><p>two</p>")
	if out != "one\n\ntwo" {
		t.Errorf("got %q, want blank-line separated blocks", out)
	}
}
