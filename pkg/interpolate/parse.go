package interpolate

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenPattern matches {{...}} regions that contain no closing brace.
var tokenPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

type nodeKind uint8

const (
	nodeText nodeKind = iota
	nodeVar
	nodeIf
)

// node is one element of a parsed template.
// For nodeIf, raw holds the opening marker so an unclosed block can be emitted verbatim.
type node struct {
	raw     string
	path    string
	elseRaw string
	then    []*node
	els     []*node
	kind    nodeKind
	hasElse bool
	closed  bool
}

// parse splits a template into a tree of literal, variable and conditional nodes.
// Markers that cannot be paired become literal text.
func parse(tpl string) []*node {
	var (
		root  []*node
		stack []*node
	)

	add := func(n *node) {
		if len(stack) == 0 {
			root = append(root, n)
			return
		}
		top := stack[len(stack)-1]
		if top.hasElse {
			top.els = append(top.els, n)
		} else {
			top.then = append(top.then, n)
		}
	}
	literal := func(s string) {
		if s != "" {
			add(&node{kind: nodeText, raw: s})
		}
	}

	last := 0
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(tpl, -1) {
		literal(tpl[last:m[0]])
		last = m[1]

		raw := tpl[m[0]:m[1]]
		inner := strings.TrimSpace(tpl[m[2]:m[3]])

		if path, ok := ifPath(inner); ok {
			n := &node{kind: nodeIf, raw: raw, path: path}
			add(n)
			stack = append(stack, n)
			continue
		}

		switch {
		case inner == "else" && len(stack) > 0 && !stack[len(stack)-1].hasElse:
			top := stack[len(stack)-1]
			top.hasElse = true
			top.elseRaw = raw
		case inner == "/if" && len(stack) > 0:
			stack[len(stack)-1].closed = true
			stack = stack[:len(stack)-1]
		case inner == "else", inner == "/if":
			literal(raw)
		default:
			// Any other directive, such as {{#each x}}, is looked up as a path like any token.
			add(&node{kind: nodeVar, raw: raw, path: inner})
		}
	}
	literal(tpl[last:])

	return root
}

// ifPath extracts the condition path from a trimmed "#if path" token.
func ifPath(inner string) (string, bool) {
	rest, ok := strings.CutPrefix(inner, "#if")
	if !ok || rest == "" || !unicode.IsSpace(rune(rest[0])) {
		return "", false
	}
	path := strings.TrimSpace(rest)
	return path, path != ""
}

// isDirective reports whether path looks like a block marker rather than a variable.
func isDirective(path string) bool {
	return strings.HasPrefix(path, "#") || strings.HasPrefix(path, "/")
}

// Tokens returns the distinct variable paths referenced by tpl in order of first use.
// Condition paths of {{#if}} blocks and unsupported directives are not included.
func Tokens(tpl string) []string {
	seen := make(map[string]struct{})
	var out []string

	var walk func(nodes []*node)
	walk = func(nodes []*node) {
		for _, n := range nodes {
			switch n.kind {
			case nodeVar:
				if isDirective(n.path) {
					continue
				}
				if _, ok := seen[n.path]; !ok && n.path != "" {
					seen[n.path] = struct{}{}
					out = append(out, n.path)
				}
			case nodeIf:
				walk(n.then)
				walk(n.els)
			}
		}
	}
	walk(parse(tpl))

	return out
}
