package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunday4k/sunday4k/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "script dropped", input: `<p>Hello</p><script>alert('xss')</script>`, expected: "Hello"},
		{name: "inline tags removed", input: `<p>Good morning <strong>Ann</strong></p>`, expected: "Good morning Ann"},
		{name: "image only", input: `<img src="https://cdn.example.com/logo.png" alt="logo">`, expected: ""},
		{name: "link keeps its label", input: `<a href="https://sunday4k.com/unsubscribe">Unsubscribe</a>`, expected: "Unsubscribe"},
		{name: "nested tags", input: `<div><p>Read <span>Deep Work</span></p></div>`, expected: "Read Deep Work"},
		{name: "style content dropped", input: `Hello <STYLE>.x{color:red}</STYLE>World`, expected: "Hello World"},
		{name: "entities decoded", input: `Tom &amp; Jerry &lt;3`, expected: "Tom & Jerry <3"},
		{name: "plain text", input: "normal text without HTML", expected: "normal text without HTML"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestStripHTML_KeepsLineStructure(t *testing.T) {
	t.Parallel()

	input := `<h1>Sunday Quote</h1><p>Carpe diem &amp; more</p><ul><li>one</li><li>two</li></ul>line1<br/>line2`

	assert.Equal(t, "Sunday Quote\nCarpe diem & more\none\ntwo\n\nline1\nline2", sanitizer.StripHTML(input))
}

func TestSanitizeEmailHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "keeps table layout",
			input:    `<table width="100%" cellpadding="0"><tr><td align="center">Hi</td></tr></table>`,
			expected: `<table width="100%" cellpadding="0"><tr><td align="center">Hi</td></tr></table>`,
		},
		{
			name:     "keeps inline styles",
			input:    `<p style="color: #333">text</p>`,
			expected: `<p style="color: #333">text</p>`,
		},
		{
			name:     "strips script",
			input:    `<p>Hello</p><script>alert('xss')</script>`,
			expected: `<p>Hello</p>`,
		},
		{
			name:     "strips event handlers",
			input:    `<img src="https://cdn.example.com/a.png" onerror="alert(1)">`,
			expected: `<img src="https://cdn.example.com/a.png">`,
		},
		{
			name:     "strips javascript links",
			input:    `<a href="javascript:alert(1)">x</a>`,
			expected: `x`,
		},
		{
			name:     "preserves placeholder links",
			input:    `<a href="{{system.unsubscribe_url}}">Unsubscribe</a>`,
			expected: `<a href="{{system.unsubscribe_url}}">Unsubscribe</a>`,
		},
		{
			name:     "preserves placeholders and blocks in text",
			input:    `{{#if quote}}<blockquote>{{quote.quote}}</blockquote>{{/if}}`,
			expected: `{{#if quote}}<blockquote>{{quote.quote}}</blockquote>{{/if}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.SanitizeEmailHTML(tt.input))
		})
	}
}

// Admin-authored bodies are rendered into every subscriber's inbox, so
// the usual injection vectors must not survive a save.
func TestSanitizeEmailHTML_InjectionVectors(t *testing.T) {
	t.Parallel()

	vectors := map[string]string{
		"script tag":          `<script>alert('XSS')</script>`,
		"script src":          `<script src="https://evil.com/xss.js"></script>`,
		"img onerror":         `<img src="https://cdn.example.com/x.png" onerror="alert('XSS')">`,
		"img onload":          `<img src="https://cdn.example.com/x.png" onload="alert('XSS')">`,
		"svg onload":          `<svg onload="alert('XSS')">`,
		"javascript link":     `<a href="javascript:alert('XSS')">click</a>`,
		"mixed case scheme":   `<a href="JaVaScRiPt:alert('XSS')">click</a>`,
		"vbscript link":       `<a href="vbscript:msgbox('XSS')">click</a>`,
		"iframe":              `<iframe src="javascript:alert('XSS')"></iframe>`,
		"embed":               `<embed src="javascript:alert('XSS')">`,
		"form action":         `<form action="javascript:alert('XSS')"><input type="submit"></form>`,
		"input onfocus":       `<input onfocus="alert('XSS')" autofocus>`,
		"placeholder handler": `<a href="{{system.app_url}}" onclick="alert('XSS')">home</a>`,
	}

	for name, input := range vectors {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out := sanitizer.SanitizeEmailHTML(input)
			assert.NotContains(t, out, "<script")
			assert.NotContains(t, out, "javascript:")
			assert.NotContains(t, out, "onerror=")
			assert.NotContains(t, out, "onload=")
			assert.NotContains(t, out, "onclick=")
			assert.NotContains(t, out, "alert(")
		})
	}
}
