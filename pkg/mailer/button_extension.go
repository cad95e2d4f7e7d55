package mailer

import (
	stdhtml "html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultButtonStyle is the inline style of call-to-action buttons.
// Most email clients drop <style> blocks, so buttons carry their own.
const DefaultButtonStyle = "display:inline-block;padding:12px 24px;background-color:#1f2937;" +
	"color:#ffffff;text-decoration:none;border-radius:6px;font-weight:600"

// ButtonNode represents a call-to-action link in the AST.
type ButtonNode struct {
	ast.BaseInline
	URL   []byte
	Label []byte
}

func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":   string(n.URL),
		"Label": string(n.Label),
	}, nil)
}

// KindButton is the node kind for ButtonNode.
var KindButton = ast.NewNodeKind("Button")

// buttonPrefix is the syntax prefix that triggers button parsing.
const buttonPrefix = "[!button|"

func (n *ButtonNode) Kind() ast.NodeKind {
	return KindButton
}

// buttonParser parses button syntax: [!button|Label](URL).
type buttonParser struct{}

// NewButtonParser creates a new button inline parser.
func NewButtonParser() parser.InlineParser {
	return &buttonParser{}
}

func (s *buttonParser) Trigger() []byte {
	return []byte{'['}
}

func (s *buttonParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < len(buttonPrefix) || string(line[:len(buttonPrefix)]) != buttonPrefix {
		return nil
	}

	rest := line[len(buttonPrefix):]
	textEnd := indexUnescaped(rest, ']')
	if textEnd == -1 || textEnd+1 >= len(rest) || rest[textEnd+1] != '(' {
		return nil
	}

	urlPart := rest[textEnd+2:]
	urlEnd := indexUnescaped(urlPart, ')')
	if urlEnd == -1 {
		return nil
	}

	block.Advance(len(buttonPrefix) + textEnd + 2 + urlEnd + 1)

	return &ButtonNode{
		URL:   util.TrimRightSpace(util.TrimLeftSpace(urlPart[:urlEnd])),
		Label: rest[:textEnd],
	}
}

// indexUnescaped returns the index of the first c in b not preceded by a backslash, or -1.
func indexUnescaped(b []byte, c byte) int {
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case c:
			return i
		}
	}
	return -1
}

// ButtonOption configures the button renderer.
type ButtonOption func(*buttonRenderer)

// WithButtonStyle replaces the inline style of rendered buttons.
func WithButtonStyle(style string) ButtonOption {
	return func(r *buttonRenderer) {
		r.style = style
	}
}

// WithButtonClass sets the class attribute of rendered buttons. Default: "btn".
func WithButtonClass(class string) ButtonOption {
	return func(r *buttonRenderer) {
		r.class = class
	}
}

// buttonRenderer renders ButtonNode to HTML.
type buttonRenderer struct {
	html.Config
	style string
	class string
}

// NewButtonRenderer creates a new button node renderer.
func NewButtonRenderer(opts ...ButtonOption) renderer.NodeRenderer {
	r := &buttonRenderer{
		Config: html.NewConfig(),
		style:  DefaultButtonStyle,
		class:  "btn",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, r.renderButton)
}

func (r *buttonRenderer) renderButton(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ButtonNode)

	// Labels and URLs may carry backslash escapes and entities from placeholder escaping.
	url := []byte(stdhtml.UnescapeString(string(util.UnescapePunctuations(n.URL))))
	if html.IsDangerousURL(url) {
		url = []byte("#")
	}
	label := []byte(stdhtml.UnescapeString(string(util.UnescapePunctuations(n.Label))))

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(url))
	_, _ = w.WriteString(`"`)
	if r.class != "" {
		_, _ = w.WriteString(` class="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.class)))
		_, _ = w.WriteString(`"`)
	}
	if r.style != "" {
		_, _ = w.WriteString(` style="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.style)))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(`>`)
	_, _ = w.Write(util.EscapeHTML(label))
	_, _ = w.WriteString(`</a>`)

	return ast.WalkContinue, nil
}

// ButtonExtension is a goldmark extension for call-to-action buttons.
type ButtonExtension struct {
	options []ButtonOption
}

func (e *ButtonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewButtonParser(), 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewButtonRenderer(e.options...), 50),
	))
}

// NewButtonExtension creates a new button extension for goldmark.
func NewButtonExtension(opts ...ButtonOption) goldmark.Extender {
	return &ButtonExtension{options: opts}
}
