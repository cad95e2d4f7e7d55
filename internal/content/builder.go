package content

import (
	"net/url"
	"strings"
	"time"

	"github.com/sunday4k/sunday4k/pkg/interpolate"
)

// Builder assembles the render context for one email.
// It performs no I/O; the only non-input it reads is the clock.
type Builder struct {
	Now    func() time.Time
	AppURL string
}

// NewBuilder creates a Builder for the public site at appURL.
func NewBuilder(appURL string) *Builder {
	return &Builder{
		AppURL: strings.TrimRight(appURL, "/"),
		Now:    time.Now,
	}
}

// Input is everything a context can be built from. All fields are optional.
type Input struct {
	Quote     *Quote
	Resource  *Resource
	Email     string
	FirstName string
}

// Build assembles a context from an optional quote, resource and recipient address.
func (b *Builder) Build(q *Quote, r *Resource, email string) interpolate.Context {
	return b.BuildInput(Input{Quote: q, Resource: r, Email: email})
}

// BuildInput assembles a context. Keys for absent inputs are left out so
// {{#if quote}} style blocks can test for them; present records have every
// field set, using "" for missing values.
func (b *Builder) BuildInput(in Input) interpolate.Context {
	email := strings.TrimSpace(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	if firstName == "" {
		firstName = LocalPart(email)
	}

	ctx := interpolate.Context{
		"system": b.system(email),
	}

	custom := map[string]any{
		"quote_text":        "",
		"quote_author":      "",
		"resource_title":    "",
		"resource_url":      "",
		"resource_category": "",
		"first_name":        firstName,
	}

	if q := in.Quote; q != nil {
		ctx["quote"] = map[string]any{
			"quote":  q.Quote,
			"author": q.Author,
			"source": q.Source,
		}
		custom["quote_text"] = q.Quote
		custom["quote_author"] = q.Author
	}

	if r := in.Resource; r != nil {
		link := r.LinkURL()
		ctx["resource"] = map[string]any{
			"title":              r.Title,
			"description":        r.Description,
			"url":                link,
			"type":               r.Type,
			"how_resource_helps": r.HowResourceHelps,
			"category": map[string]any{
				"title":     r.Category.Title,
				"icon_name": r.Category.IconName,
			},
		}
		custom["resource_title"] = r.Title
		custom["resource_url"] = link
		custom["resource_category"] = r.Category.Title
	}

	if email != "" {
		ctx["user"] = map[string]any{"email": email}
		ctx["contact"] = map[string]any{
			"email":     email,
			"firstname": firstName,
		}
	}

	ctx["custom"] = custom
	return ctx
}

func (b *Builder) system(email string) map[string]any {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	app := strings.TrimRight(b.AppURL, "/")

	return map[string]any{
		"current_date":    now().Format(time.DateOnly),
		"app_url":         app,
		"unsubscribe_url": withEmail(app+"/unsubscribe", email),
		"preferences_url": withEmail(app+"/settings/notifications", email),
	}
}

func withEmail(base, email string) string {
	if email == "" {
		return base
	}
	return base + "?email=" + url.QueryEscape(email)
}

// LocalPart returns the part of an address before the first "@".
// An address without "@" is returned whole.
func LocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
