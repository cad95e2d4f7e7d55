package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/sunday4k/sunday4k/pkg/interpolate"
	"github.com/sunday4k/sunday4k/pkg/sanitizer"
)

// Renderer turns a stored Template into subject, HTML and plain-text parts.
//
// Placeholders are interpolated first (values escaped in the body, raw in the
// subject), markdown bodies are then converted to HTML and sanitized, and the
// result is wrapped in a layout read from the renderer's filesystem.
type Renderer struct {
	fs     fs.FS
	md     goldmark.Markdown
	interp *interpolate.Renderer

	// Parsed layouts, never rendered output.
	layoutCache map[string]*template.Template
	layoutDir   string

	mu sync.RWMutex
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	Interpolator  *interpolate.Renderer // Default: interpolate.NewRenderer()
	LayoutDir     string                // Default: "layouts"
	ButtonOptions []ButtonOption
}

// NewRenderer creates a new renderer with default config.
func NewRenderer(layouts fs.FS) *Renderer {
	return NewRendererWithConfig(layouts, RendererConfig{})
}

// NewRendererWithConfig creates a new renderer with custom config.
func NewRendererWithConfig(layouts fs.FS, opts RendererConfig) *Renderer {
	if opts.LayoutDir == "" {
		opts.LayoutDir = "layouts"
	}
	if opts.Interpolator == nil {
		opts.Interpolator = interpolate.NewRenderer()
	}

	return &Renderer{
		fs:        layouts,
		layoutDir: opts.LayoutDir,
		interp:    opts.Interpolator,
		md: goldmark.New(
			goldmark.WithExtensions(NewButtonExtension(opts.ButtonOptions...)),
			// Markdown bodies may mix in HTML; the converted output is sanitized.
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		layoutCache: make(map[string]*template.Template),
	}
}

// RenderResult contains the rendered parts of an email.
type RenderResult struct {
	Subject   string
	Preheader string
	Body      string // HTML body before the layout is applied
	HTML      string // Final HTML document
	Text      string // Plain-text alternative
}

// layoutData is what layouts can reference.
type layoutData struct {
	Content        template.HTML
	Subject        string
	Preheader      string
	AppURL         string
	UnsubscribeURL string
	PreferencesURL string
}

// Render renders tpl against ctx. An empty layout name skips the layout.
func (r *Renderer) Render(layout string, tpl *Template, ctx interpolate.Context, vars []interpolate.Variable) (*RenderResult, error) {
	if tpl == nil || strings.TrimSpace(tpl.Body) == "" {
		return nil, ErrNoContent
	}

	result := &RenderResult{
		Subject:   strings.TrimSpace(r.interp.RenderText(tpl.Subject, ctx, vars)),
		Preheader: strings.TrimSpace(r.interp.RenderText(tpl.Preheader, ctx, vars)),
	}

	switch tpl.Format {
	case FormatMarkdown, "":
		var out bytes.Buffer
		source := r.interp.RenderMarkdown(tpl.Body, ctx, vars)
		if err := r.md.Convert([]byte(source), &out); err != nil {
			return nil, fmt.Errorf("%w: failed to convert markdown: %v", ErrRenderFailed, err)
		}
		result.Body = sanitizer.SanitizeEmailHTML(out.String())
		// Plain text is the interpolated markdown itself.
		result.Text = strings.TrimSpace(r.interp.RenderText(tpl.Body, ctx, vars))
	case FormatHTML:
		result.Body = r.interp.Render(tpl.Body, ctx, vars)
		result.Text = sanitizer.StripHTML(result.Body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, tpl.Format)
	}

	if strings.TrimSpace(result.Body) == "" {
		return nil, ErrNoContent
	}

	if layout == "" {
		result.HTML = result.Body
		return result, nil
	}

	layoutTmpl, err := r.getLayout(layout)
	if err != nil {
		return nil, err
	}

	data := layoutData{
		Content:        template.HTML(result.Body), //nolint:gosec // body values are escaped during interpolation
		Subject:        result.Subject,
		Preheader:      result.Preheader,
		AppURL:         lookup(ctx, "system.app_url"),
		UnsubscribeURL: lookup(ctx, "system.unsubscribe_url"),
		PreferencesURL: lookup(ctx, "system.preferences_url"),
	}

	var finalHTML bytes.Buffer
	if err := layoutTmpl.Execute(&finalHTML, data); err != nil {
		return nil, fmt.Errorf("%w: failed to execute layout: %v", ErrRenderFailed, err)
	}
	result.HTML = finalHTML.String()

	return result, nil
}

// lookup returns the string form of a context value, or "".
func lookup(ctx interpolate.Context, p string) string {
	v, ok := interpolate.Resolve(ctx, p)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// getLayout returns a cached layout template or parses and caches it.
func (r *Renderer) getLayout(name string) (*template.Template, error) {
	r.mu.RLock()
	if cached, ok := r.layoutCache[name]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if cached, ok := r.layoutCache[name]; ok {
		return cached, nil
	}

	if r.fs == nil {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	layoutTmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse layout: %v", ErrRenderFailed, err)
	}

	r.layoutCache[name] = layoutTmpl
	return layoutTmpl, nil
}
