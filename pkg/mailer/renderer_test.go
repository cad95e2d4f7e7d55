package mailer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/sunday4k/sunday4k/pkg/interpolate"
)

func layoutFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`<html><head><title>{{.Subject}}</title></head><body><span class="preheader">{{.Preheader}}</span>{{.Content}}<a href="{{.UnsubscribeURL}}">Unsubscribe</a></body></html>`),
		},
	}
}

func quoteContext(author string) interpolate.Context {
	return interpolate.Context{
		"quote":   map[string]any{"quote": "Carpe diem", "author": author},
		"contact": map[string]any{"firstname": "ann"},
		"system":  map[string]any{"unsubscribe_url": "https://sunday4k.com/unsubscribe?email=ann%40example.com"},
	}
}

func TestRenderer_Render_Markdown(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(layoutFS())
	tpl := &Template{
		Subject:   "{{quote.author}} & you",
		Preheader: "Hi {{contact.firstname}}",
		Format:    FormatMarkdown,
		Body:      "Hello **{{contact.firstname}}**!\n\n{{#if quote}}> {{quote.quote}} ({{quote.author}}){{/if}}\n",
	}

	result, err := renderer.Render("base.html", tpl, quoteContext("Horace"), nil)
	require.NoError(t, err)

	require.Equal(t, "Horace & you", result.Subject)
	require.Equal(t, "Hi ann", result.Preheader)
	require.Contains(t, result.Body, "<strong>ann</strong>")
	require.Contains(t, result.Body, "<blockquote>")
	require.Contains(t, result.HTML, "<title>Horace &amp; you</title>")
	require.Contains(t, result.HTML, `href="https://sunday4k.com/unsubscribe?email=ann%40example.com"`)
	require.Contains(t, result.Text, "Hello **ann**!")
	require.Contains(t, result.Text, "> Carpe diem (Horace)")
	require.NotContains(t, result.Text, "<strong>")
}

func TestRenderer_Render_HTML(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(nil)
	tpl := &Template{
		Format: FormatHTML,
		Body:   `<h1>Hi {{contact.firstname}}</h1><p>{{quote.quote}} by {{quote.author}}</p>`,
	}

	result, err := renderer.Render("", tpl, quoteContext("<b>Horace</b>"), nil)
	require.NoError(t, err)

	require.Equal(t, result.Body, result.HTML, "empty layout returns the body")
	require.Contains(t, result.HTML, "&lt;b&gt;Horace&lt;/b&gt;")
	require.Equal(t, "Hi ann\nCarpe diem by <b>Horace</b>", result.Text)
}

func TestRenderer_Render_MarkdownValuesStayText(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(nil)
	tpl := &Template{Format: FormatMarkdown, Body: "Hello {{contact.firstname}}, welcome."}
	name := "[claim prize](javascript:alert(document.cookie)) ![](https://tracker.example/p.gif)"
	ctx := interpolate.Context{"contact": map[string]any{"firstname": name}}

	result, err := renderer.Render("", tpl, ctx, nil)
	require.NoError(t, err)

	require.NotContains(t, result.HTML, "<a")
	require.NotContains(t, result.HTML, "<img")
	require.NotContains(t, result.HTML, "href=")
	require.Contains(t, result.HTML, "Hello "+name+", welcome.")
	require.Equal(t, "Hello "+name+", welcome.", result.Text)
}

func TestRenderer_Render_MarkdownEmphasisInValues(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(nil)
	tpl := &Template{Format: FormatMarkdown, Body: "Hi {{contact.firstname}}"}
	ctx := interpolate.Context{"contact": map[string]any{"firstname": "**bold** _it_ <b>x</b>"}}

	result, err := renderer.Render("", tpl, ctx, nil)
	require.NoError(t, err)

	require.NotContains(t, result.HTML, "<strong>")
	require.NotContains(t, result.HTML, "<em>")
	require.NotContains(t, result.HTML, "<b>")
	require.Contains(t, result.HTML, "**bold** _it_ &lt;b&gt;x&lt;/b&gt;")
}

func TestRenderer_Render_SanitizesMarkdownHTML(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(nil)
	tpl := &Template{
		Format: FormatMarkdown,
		Body:   "Hi\n\n<script>alert(1)</script><img src=\"x\" onerror=\"alert(1)\">\n\n[site](javascript:alert(1)) [home](https://sunday4k.com)",
	}

	result, err := renderer.Render("", tpl, nil, nil)
	require.NoError(t, err)

	require.NotContains(t, result.HTML, "<script")
	require.NotContains(t, result.HTML, "onerror")
	require.NotContains(t, result.HTML, "javascript:")
	require.Contains(t, result.HTML, `href="https://sunday4k.com"`)
}

func TestRenderer_Render_MarkdownButtonURLWithEscapes(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(nil)
	tpl := &Template{Format: FormatMarkdown, Body: "[!button|Preferences]({{system.preferences_url}})"}
	ctx := interpolate.Context{
		"system": map[string]any{"preferences_url": "https://sunday4k.com/preferences?email=ann%40example.com&ref=mail_(1)"},
	}

	result, err := renderer.Render("", tpl, ctx, nil)
	require.NoError(t, err)

	require.Contains(t, result.HTML, `href="https://sunday4k.com/preferences?email=ann%40example.com&amp;ref=mail_(1)"`)
	require.Contains(t, result.HTML, ">Preferences</a>")
}

func TestRenderer_Render_Errors(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(layoutFS())

	_, err := renderer.Render("base.html", nil, nil, nil)
	require.ErrorIs(t, err, ErrNoContent)

	_, err = renderer.Render("base.html", &Template{Body: "  "}, nil, nil)
	require.ErrorIs(t, err, ErrNoContent)

	_, err = renderer.Render("missing.html", &Template{Body: "x"}, nil, nil)
	require.ErrorIs(t, err, ErrLayoutNotFound)

	_, err = renderer.Render("base.html", &Template{Body: "x", Format: "mjml"}, nil, nil)
	require.ErrorIs(t, err, ErrUnknownFormat)

	// A body that only holds a false conditional renders nothing.
	_, err = renderer.Render("", &Template{Body: "{{#if resource}}x{{/if}}", Format: FormatHTML}, nil, nil)
	require.ErrorIs(t, err, ErrNoContent)
}

func TestRenderer_Render_InvalidLayout(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(fstest.MapFS{
		"layouts/broken.html": &fstest.MapFile{Data: []byte(`{{.Content`)},
	})

	_, err := renderer.Render("broken.html", &Template{Body: "x"}, nil, nil)
	require.ErrorIs(t, err, ErrRenderFailed)
}

func TestRenderer_Render_UsesCatalog(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(nil)
	vars := []interpolate.Variable{
		{Name: "resource.url", DataType: interpolate.DataTypeURL},
		{Name: "contact.firstname", DataType: interpolate.DataTypeText, DefaultValue: strPtr("friend")},
	}
	tpl := &Template{Format: FormatMarkdown, Body: "Hi {{contact.firstname}}\n\n[!button|Open]({{resource.url}})"}
	ctx := interpolate.Context{"resource": map[string]any{"url": "example.com/r"}}

	result, err := renderer.Render("", tpl, ctx, vars)
	require.NoError(t, err)
	require.Contains(t, result.HTML, "Hi friend")
	require.Contains(t, result.HTML, `href="https://example.com/r"`)
}

func strPtr(s string) *string { return &s }

func TestRenderer_Render_CachesLayouts(t *testing.T) {
	t.Parallel()

	var openCount atomic.Int32

	cfs := &countingFS{
		MapFS: fstest.MapFS{
			"layouts/default.html": &fstest.MapFile{Data: []byte(`<html>{{.Content}}</html>`)},
			"layouts/other.html":   &fstest.MapFile{Data: []byte(`<div>{{.Content}}</div>`)},
		},
		openCount: &openCount,
	}

	renderer := NewRendererWithConfig(cfs, RendererConfig{LayoutDir: "layouts"})
	tpl := &Template{Subject: "Test", Body: "Hello {{name}}"}

	_, err := renderer.Render("default.html", tpl, interpolate.Context{"name": "Alice"}, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), openCount.Load())

	_, err = renderer.Render("default.html", tpl, interpolate.Context{"name": "Bob"}, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), openCount.Load(), "layout should be cached")

	_, err = renderer.Render("other.html", tpl, interpolate.Context{"name": "Charlie"}, nil)
	require.NoError(t, err)
	require.Equal(t, int32(2), openCount.Load())
}

func TestRenderer_Render_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(layoutFS())
	tpl := &Template{Subject: "Test", Body: "Hello {{id}}"}

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := range 100 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			result, err := renderer.Render("base.html", tpl, interpolate.Context{"id": id}, nil)
			if err != nil {
				errs <- err
				return
			}
			if want := fmt.Sprintf("Hello %d", id); result.Text != want {
				errs <- fmt.Errorf("got %q, want %q", result.Text, want)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render failed: %v", err)
	}
}

// countingFS wraps MapFS and counts ReadFile calls.
type countingFS struct {
	fstest.MapFS
	openCount *atomic.Int32
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.openCount.Add(1)
	return c.MapFS.ReadFile(name)
}
