// Package mailer renders stored email templates and hands them to a provider.
//
// The package separates delivery (Sender) from rendering (Renderer), so the
// provider can be swapped without touching templates.
//
// # Architecture
//
//   - Sender: interface that email providers implement (see the resend subpackage)
//   - Renderer: interpolates a Template, converts markdown, applies a layout
//   - Mailer: combines both and applies subject, layout and reply-to fallbacks
//
// # Templates
//
// A Template has a subject, an optional preheader and a body in markdown or HTML.
// All three may use {{dotted.path}} placeholders and {{#if path}} blocks; see
// package interpolate for the syntax. Templates are usually stored in the database;
// ParseTemplate reads the file form used for seeding:
//
//	---
//	name: welcome
//	subject: "Welcome to Sunday4K, {{contact.firstname}}"
//	preheader: One quote every Sunday
//	layout: base.html
//	tags: [welcome]
//	---
//	Hi {{contact.firstname}},
//
//	[!button|Set your preferences]({{system.preferences_url}})
//
// Subjects containing placeholders must be quoted in YAML.
//
// # Buttons
//
// Markdown bodies support call-to-action buttons:
//
//	[!button|Read it](https://example.com)
//
// rendered as an anchor with inline styles, since most clients ignore <style>.
//
// # Layouts
//
// Layouts are html/template files read from an fs.FS (default directory "layouts").
// They can reference .Content, .Subject, .Preheader, .AppURL, .UnsubscribeURL and
// .PreferencesURL. Parsed layouts are cached.
//
// # Usage
//
//	sender := resend.New(cfg.Resend)
//	renderer := mailer.NewRenderer(seed.Layouts)
//	m := mailer.New(sender, renderer, cfg.Mailer)
//
//	_, err := m.Send(ctx, mailer.SendParams{
//		To:        "user@example.com",
//		Template:  tpl,
//		Context:   builder.Build(quote, nil, "user@example.com"),
//		Variables: catalog,
//	})
package mailer
