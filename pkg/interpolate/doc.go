// Package interpolate renders {{dotted.path}} placeholders and {{#if path}} blocks
// in email templates against a nested data context.
//
// # Template syntax
//
//	Hello {{contact.firstname}},
//	{{#if quote}}<blockquote>{{quote.quote}} ({{quote.author}})</blockquote>{{/if}}
//	{{#if resource}}Read {{resource.title}}{{else}}See you next Sunday{{/if}}
//
// A token is any {{...}} region without a closing brace inside it. Tokens whose
// trimmed content is "#if <path>", "else" or "/if" form conditional blocks; every
// other token is a variable path. Blocks may be nested. Markers that cannot be
// paired are emitted unchanged.
//
// # Rendering
//
// For each variable token the renderer:
//
//  1. resolves the path against the context (see Resolve);
//  2. formats the value using the data type declared in the variable catalog,
//     or as text when the path has no catalog entry (see Formatter);
//  3. substitutes the catalog default when the result is empty;
//  4. HTML-escapes the result (Render) or leaves it raw (RenderText).
//
// A block body is kept when its path resolves to a truthy value (see Truthy)
// and dropped together with its delimiters otherwise.
//
// Rendering never fails. Unresolvable paths render as the catalog default or
// the empty string, and a value that cannot be formatted degrades to a best
// effort string. The context is read-only to the renderer.
//
// # Usage
//
//	ctx := interpolate.Context{
//		"user":  map[string]any{"email": "a@b.com"},
//		"quote": map[string]any{"quote": "Carpe diem", "author": "Horace"},
//	}
//	html := interpolate.Render("Hello {{user.email}}: {{quote.quote}}", ctx, nil)
package interpolate
