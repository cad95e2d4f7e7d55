// Package sanitizer cleans admin-authored email HTML with bluemonday and
// derives the plain-text alternative of rendered emails.
package sanitizer

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	emailPolicy  *bluemonday.Policy
	initOnce     sync.Once
)

// templateToken keeps {{...}} placeholders intact inside attribute values.
var templateToken = regexp.MustCompile(`\{\{[^}]+\}\}`)

// blockBoundary matches tags after which plain text should break a line.
var blockBoundary = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|blockquote|pre|table|ul|ol)\s*>`)

var (
	spaceRun = regexp.MustCompile(`[ \t\f\v]+`)
	lineRun  = regexp.MustCompile(`\n{3,}`)
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// The email policy keeps the table layouts and inline styles email clients need.
		emailPolicy = bluemonday.UGCPolicy()
		emailPolicy.AllowStyling()
		emailPolicy.AllowAttrs("style").Globally()
		emailPolicy.AllowElements("center", "font", "span", "div", "hr")
		emailPolicy.AllowAttrs("align", "valign", "bgcolor", "width", "height", "border",
			"cellpadding", "cellspacing", "role").OnElements("table", "tr", "td", "th", "tbody", "thead", "img", "div")
		emailPolicy.AllowAttrs("color", "face", "size").OnElements("font")
		emailPolicy.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
		emailPolicy.AllowURLSchemes("mailto", "http", "https")
		emailPolicy.AllowRelativeURLs(false)
		emailPolicy.RequireNoFollowOnLinks(false)
	})
}

// SanitizeEmailHTML cleans an admin-authored email template body.
// Tables, inline styles, images and links survive; scripts, event handlers and
// unsafe URL schemes do not. Placeholders such as {{system.unsubscribe_url}} used
// as link targets are preserved.
func SanitizeEmailHTML(s string) string {
	initPolicies()

	// Swap placeholders for URL-safe markers so href/src validation keeps them.
	var tokens []string
	masked := templateToken.ReplaceAllStringFunc(s, func(tok string) string {
		tokens = append(tokens, tok)
		return placeholder(len(tokens) - 1)
	})

	out := emailPolicy.Sanitize(masked)
	for i := len(tokens) - 1; i >= 0; i-- {
		out = strings.ReplaceAll(out, placeholder(i), tokens[i])
	}
	return out
}

func placeholder(i int) string {
	return "https://sunday4k-token-" + strconv.Itoa(i) + ".invalid"
}

// StripHTML removes every tag and returns readable plain text.
// Block-level boundaries become line breaks and entities are decoded.
func StripHTML(s string) string {
	initPolicies()

	s = blockBoundary.ReplaceAllStringFunc(s, func(tag string) string {
		return tag + "\n"
	})
	text := html.UnescapeString(strictPolicy.Sanitize(s))

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(lineRun.ReplaceAllString(text, "\n\n"))
}
