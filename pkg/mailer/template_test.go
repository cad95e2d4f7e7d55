package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTemplate_WithFrontmatter(t *testing.T) {
	t.Parallel()

	content := []byte(`---
name: weekly_quote
subject: "Your Sunday quote: {{quote.author}}"
preheader: A thought for the week
layout: base.html
tags: [weekly, quote]
---
# Hello {{contact.firstname}}

{{quote.quote}}
`)

	tmpl, err := ParseTemplate(content)
	require.NoError(t, err)
	require.Equal(t, "weekly_quote", tmpl.Name)
	require.Equal(t, "Your Sunday quote: {{quote.author}}", tmpl.Subject)
	require.Equal(t, "A thought for the week", tmpl.Preheader)
	require.Equal(t, "base.html", tmpl.Layout)
	require.Equal(t, FormatMarkdown, tmpl.Format)
	require.Equal(t, []string{"weekly", "quote"}, tmpl.Tags)
	require.Equal(t, "# Hello {{contact.firstname}}\n\n{{quote.quote}}\n", tmpl.Body)
}

func TestParseTemplate_HTMLFormat(t *testing.T) {
	t.Parallel()

	tmpl, err := ParseTemplate([]byte("---\nsubject: Hi\nformat: html\n---\n<p>Hi</p>"))
	require.NoError(t, err)
	require.Equal(t, FormatHTML, tmpl.Format)
	require.Equal(t, "<p>Hi</p>", tmpl.Body)
}

func TestParseTemplate_UnknownFormat(t *testing.T) {
	t.Parallel()

	tmpl, err := ParseTemplate([]byte("---\nformat: mjml\n---\nBody"))
	require.ErrorIs(t, err, ErrInvalidFrontmatter)
	require.ErrorIs(t, err, ErrUnknownFormat)
	require.Nil(t, tmpl)
}

func TestParseTemplate_WithoutFrontmatter(t *testing.T) {
	t.Parallel()

	content := []byte(`# Hello World

This is just plain markdown.`)

	tmpl, err := ParseTemplate(content)
	require.NoError(t, err)
	require.Empty(t, tmpl.Subject)
	require.Equal(t, FormatMarkdown, tmpl.Format)
	require.Equal(t, string(content), tmpl.Body)
}

func TestParseTemplate_EmptyFrontmatter(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"---\n---\nBody content.", "---\n\n---\nBody content."} {
		tmpl, err := ParseTemplate([]byte(content))
		require.NoError(t, err)
		require.Empty(t, tmpl.Subject)
		require.Equal(t, "Body content.", tmpl.Body)
	}
}

func TestParseTemplate_InvalidFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "missing closing delimiter", content: "---\nsubject: Test\nBody without closing delimiter"},
		{name: "no content after opening", content: "---"},
		{name: "invalid yaml", content: "---\nsubject: Test\ntags: [unclosed\n---\nBody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := ParseTemplate([]byte(tt.content))
			require.ErrorIs(t, err, ErrInvalidFrontmatter)
			require.Nil(t, tmpl)
		})
	}
}

func TestParseTemplate_LineEndings(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"---\nsubject: Test\n---\nBody", "---\r\nsubject: Test\r\n---\r\nBody"} {
		tmpl, err := ParseTemplate([]byte(content))
		require.NoError(t, err)
		require.Equal(t, "Test", tmpl.Subject)
		require.Equal(t, "Body", tmpl.Body)
	}
}

func TestParseTemplate_EmptyContent(t *testing.T) {
	t.Parallel()

	tmpl, err := ParseTemplate(nil)
	require.NoError(t, err)
	require.Empty(t, tmpl.Body)
}
