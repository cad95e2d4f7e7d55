package interpolate

import (
	"io"
	"log/slog"
	"strings"
)

// Renderer interpolates templates. The zero value is not usable; use NewRenderer.
// A Renderer holds no per-render state and is safe for concurrent use.
type Renderer struct {
	formatter *Formatter
	logger    *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFormatter sets the value formatter.
func WithFormatter(f *Formatter) Option {
	return func(r *Renderer) {
		if f != nil {
			r.formatter = f
		}
	}
}

// WithLogger sets the logger used to report tokens that failed to render.
// Default: discards logs.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		formatter: NewFormatter(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// Render interpolates tpl using the default en-US renderer. Values are HTML-escaped.
func Render(tpl string, ctx Context, vars []Variable) string {
	return defaultRenderer.Render(tpl, ctx, vars)
}

// RenderText interpolates tpl using the default renderer without HTML escaping.
func RenderText(tpl string, ctx Context, vars []Variable) string {
	return defaultRenderer.RenderText(tpl, ctx, vars)
}

// escapeMode selects how substituted values are escaped.
type escapeMode uint8

const (
	escapeNone escapeMode = iota
	escapeHTML
	escapeMarkdown
)

// htmlEscaper replaces the five HTML-special characters with their entities.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// markdownPunct is the ASCII punctuation CommonMark allows to be backslash-escaped.
const markdownPunct = "!#$%()*+,-./:;=?@[\\]^_`{|}~"

// Render interpolates tpl against ctx and HTML-escapes every substituted value.
// Literal template text is never escaped.
func (r *Renderer) Render(tpl string, ctx Context, vars []Variable) string {
	return r.render(tpl, ctx, vars, escapeHTML)
}

// RenderMarkdown is Render for markdown sources. Values are HTML-escaped and
// their markdown punctuation is backslash-escaped, so a value always converts
// to plain text and never to links, images or emphasis.
func (r *Renderer) RenderMarkdown(tpl string, ctx Context, vars []Variable) string {
	return r.render(tpl, ctx, vars, escapeMarkdown)
}

// RenderText is Render without escaping, for subjects and plain-text bodies.
func (r *Renderer) RenderText(tpl string, ctx Context, vars []Variable) string {
	return r.render(tpl, ctx, vars, escapeNone)
}

// EscapeMarkdown escapes s the way RenderMarkdown escapes substituted values.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&', '<', '>', '"', '\'':
			b.WriteString(htmlEscaper.Replace(string(c)))
		default:
			if strings.IndexByte(markdownPunct, c) >= 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (r *Renderer) render(tpl string, ctx Context, vars []Variable, mode escapeMode) string {
	if !strings.Contains(tpl, "{{") {
		return tpl
	}

	st := &state{
		ctx:  ctx,
		idx:  Index(vars),
		mode: mode,
	}
	var b strings.Builder
	b.Grow(len(tpl))
	r.write(&b, parse(tpl), st)
	return b.String()
}

type state struct {
	ctx  Context
	idx  map[string]Variable
	mode escapeMode
}

func (r *Renderer) write(b *strings.Builder, nodes []*node, st *state) {
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			b.WriteString(n.raw)
		case nodeVar:
			b.WriteString(r.value(n.path, st))
		case nodeIf:
			if !n.closed {
				// Unclosed block: keep markers as text, render contents.
				b.WriteString(n.raw)
				r.write(b, n.then, st)
				if n.hasElse {
					b.WriteString(n.elseRaw)
					r.write(b, n.els, st)
				}
				continue
			}
			if r.condition(n.path, st) {
				r.write(b, n.then, st)
			} else {
				r.write(b, n.els, st)
			}
		}
	}
}

func (r *Renderer) condition(path string, st *state) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("interpolate: condition failed", slog.String("path", path), slog.Any("panic", rec))
			ok = false
		}
	}()

	v, found := Resolve(st.ctx, path)
	return found && Truthy(v)
}

func (r *Renderer) value(path string, st *state) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("interpolate: variable failed", slog.String("path", path), slog.Any("panic", rec))
			out = ""
		}
	}()

	meta, hasMeta := st.idx[path]

	var s string
	if v, ok := Resolve(st.ctx, path); ok && v != nil {
		dt := DataTypeText
		if hasMeta {
			dt = meta.DataType
		}
		s = r.formatter.Format(v, dt)
	}
	if s == "" && hasMeta {
		s = meta.Default()
	}
	switch st.mode {
	case escapeHTML:
		s = htmlEscaper.Replace(s)
	case escapeMarkdown:
		s = EscapeMarkdown(s)
	}
	return s
}
