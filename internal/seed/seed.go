// Package seed embeds the default variable catalog, system templates, email
// layouts and starter quotes, and writes them to the database.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sunday4k/sunday4k/internal/content"
	"github.com/sunday4k/sunday4k/pkg/interpolate"
	"github.com/sunday4k/sunday4k/pkg/logger"
	"github.com/sunday4k/sunday4k/pkg/mailer"
)

//go:embed catalog.yaml quotes.yaml templates/*.md layouts/*.html
var files embed.FS

// Layouts holds the email layouts under "layouts/", as mailer.NewRenderer expects.
var Layouts fs.FS = files

// ErrInvalidSeed is returned when an embedded file cannot be parsed.
var ErrInvalidSeed = errors.New("seed: invalid embedded data")

// Store is what Run writes to. *repository.Repository implements it.
type Store interface {
	UpsertVariable(ctx context.Context, v interpolate.Variable) (interpolate.Variable, error)
	UpsertTemplate(ctx context.Context, t mailer.Template) (*mailer.Template, error)
	CreateQuote(ctx context.Context, q content.Quote) (bool, error)
}

// Report counts what Run wrote.
type Report struct {
	Variables int
	Templates int
	Quotes    int
}

// Run upserts the catalog and templates and inserts missing quotes.
// It is safe to run repeatedly.
func Run(ctx context.Context, store Store, log *slog.Logger) (*Report, error) {
	if log == nil {
		log = logger.NewNope()
	}

	vars, err := Catalog()
	if err != nil {
		return nil, err
	}
	tpls, err := Templates()
	if err != nil {
		return nil, err
	}
	quotes, err := Quotes()
	if err != nil {
		return nil, err
	}

	report := &Report{}

	for _, v := range vars {
		if _, err := store.UpsertVariable(ctx, v); err != nil {
			return report, fmt.Errorf("seed variable %s: %w", v.Name, err)
		}
		report.Variables++
	}

	for _, t := range tpls {
		if _, err := store.UpsertTemplate(ctx, t); err != nil {
			return report, fmt.Errorf("seed template %s: %w", t.Name, err)
		}
		report.Templates++
	}

	for _, q := range quotes {
		inserted, err := store.CreateQuote(ctx, q)
		if err != nil {
			return report, fmt.Errorf("seed quote by %s: %w", q.Author, err)
		}
		if inserted {
			report.Quotes++
		}
	}

	log.InfoContext(ctx, "seed completed",
		slog.Int("variables", report.Variables),
		slog.Int("templates", report.Templates),
		slog.Int("quotes", report.Quotes),
	)
	return report, nil
}

// Catalog returns the default variable catalog.
func Catalog() ([]interpolate.Variable, error) {
	var vars []interpolate.Variable
	if err := decodeYAML("catalog.yaml", &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

// Templates returns the system templates. The file name is used when the
// frontmatter has no name.
func Templates() ([]mailer.Template, error) {
	entries, err := fs.Glob(files, "templates/*.md")
	if err != nil {
		return nil, err
	}

	tpls := make([]mailer.Template, 0, len(entries))
	for _, name := range entries {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		tpl, err := mailer.ParseTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSeed, name, err)
		}
		if tpl.Name == "" {
			tpl.Name = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		tpls = append(tpls, *tpl)
	}
	return tpls, nil
}

type quoteFile struct {
	Quote  string `yaml:"quote"`
	Author string `yaml:"author"`
	Source string `yaml:"source"`
}

// Quotes returns the starter quotes, all active.
func Quotes() ([]content.Quote, error) {
	var raw []quoteFile
	if err := decodeYAML("quotes.yaml", &raw); err != nil {
		return nil, err
	}

	quotes := make([]content.Quote, 0, len(raw))
	for _, q := range raw {
		quotes = append(quotes, content.Quote{
			Quote:    q.Quote,
			Author:   q.Author,
			Source:   q.Source,
			IsActive: true,
		})
	}
	return quotes, nil
}

func decodeYAML(name string, v any) error {
	data, err := files.ReadFile(name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSeed, name, err)
	}
	return nil
}
