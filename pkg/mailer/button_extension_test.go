package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
)

func convert(t *testing.T, source string, opts ...ButtonOption) string {
	t.Helper()

	md := goldmark.New(goldmark.WithExtensions(NewButtonExtension(opts...)))

	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte(source), &buf))
	return buf.String()
}

func TestButtonExtension_RendersButton(t *testing.T) {
	t.Parallel()

	result := convert(t, `[!button|Read the article](https://sunday4k.com/r/deep-work)`)

	require.Contains(t, result, `<a href="https://sunday4k.com/r/deep-work" class="btn" style="`+DefaultButtonStyle+`">Read the article</a>`)
}

func TestButtonExtension_CustomStyleAndClass(t *testing.T) {
	t.Parallel()

	result := convert(t, `[!button|Go](https://example.com)`, WithButtonStyle(""), WithButtonClass("cta"))

	require.Contains(t, result, `<a href="https://example.com" class="cta">Go</a>`)
}

func TestButtonExtension_EscapesHTML(t *testing.T) {
	t.Parallel()

	result := convert(t, `[!button|<script>alert("xss")</script>](javascript:alert("xss"))`)

	require.NotContains(t, result, "<script>")
	require.NotContains(t, result, "javascript:")
	require.Contains(t, result, "&lt;script&gt;")
	require.Contains(t, result, `href="#"`)
}

func TestButtonExtension_DoesNotDoubleEscapeInterpolatedValues(t *testing.T) {
	t.Parallel()

	// Interpolated values arrive HTML-escaped.
	result := convert(t, `[!button|Tips &amp; Tricks](https://example.com/?a=1&amp;b=2)`, WithButtonStyle(""))

	require.Contains(t, result, `<a href="https://example.com/?a=1&amp;b=2" class="btn">Tips &amp; Tricks</a>`)
}

func TestButtonExtension_WithMarkdownSurrounding(t *testing.T) {
	t.Parallel()

	result := convert(t, `# Your Sunday quote

Take a minute with this week's resource:

[!button|Open resource](https://example.com/r)

See you next week!`, WithButtonStyle(""))

	require.Contains(t, result, "<h1>Your Sunday quote</h1>")
	require.Contains(t, result, `<a href="https://example.com/r" class="btn">Open resource</a>`)
	require.Contains(t, result, "See you next week!")
}

func TestButtonExtension_MultipleButtons(t *testing.T) {
	t.Parallel()

	result := convert(t, "[!button|Keep](https://example.com/keep)\n[!button|Unsubscribe](https://example.com/unsub)", WithButtonStyle(""))

	require.Contains(t, result, `<a href="https://example.com/keep" class="btn">Keep</a>`)
	require.Contains(t, result, `<a href="https://example.com/unsub" class="btn">Unsubscribe</a>`)
}

func TestButtonExtension_IgnoresRegularLinks(t *testing.T) {
	t.Parallel()

	result := convert(t, `[Regular Link](https://example.com)`)

	require.NotContains(t, result, `class="btn"`)
	require.Contains(t, result, `<a href="https://example.com">Regular Link</a>`)
}

func TestButtonExtension_IgnoresIncompleteButton(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{name: "missing URL", source: `[!button|Click Me]`},
		{name: "missing closing bracket", source: `[!button|Click Me(https://example.com)`},
		{name: "missing closing paren", source: `[!button|Click Me](https://example.com`},
		{name: "wrong prefix", source: `[button|Click Me](https://example.com)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.NotContains(t, convert(t, tt.source), `class="btn"`)
		})
	}
}

func TestButtonExtension_EmptyLabel(t *testing.T) {
	t.Parallel()

	result := convert(t, `[!button|](https://example.com)`)

	require.Contains(t, result, `class="btn"`)
	require.Contains(t, result, `href="https://example.com"`)
}

func TestButtonExtension_SpecialCharactersInLabel(t *testing.T) {
	t.Parallel()

	result := convert(t, `[!button|Accept & Continue](https://example.com)`)

	require.Contains(t, result, "Accept &amp; Continue")
}

func TestButtonNode(t *testing.T) {
	t.Parallel()

	node := &ButtonNode{URL: []byte("https://example.com"), Label: []byte("Test")}

	require.Equal(t, KindButton, node.Kind())
	require.NotPanics(t, func() {
		node.Dump([]byte("source"), 0)
	})
	require.Equal(t, []byte{'['}, NewButtonParser().Trigger())
}
