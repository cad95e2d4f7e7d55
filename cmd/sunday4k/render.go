package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sunday4k/sunday4k/internal/content"
	"github.com/sunday4k/sunday4k/internal/seed"
	"github.com/sunday4k/sunday4k/pkg/interpolate"
	"github.com/sunday4k/sunday4k/pkg/locale"
	"github.com/sunday4k/sunday4k/pkg/mailer"
)

type renderOptions struct {
	template  string
	context   string
	variables string
	layout    string
	locale    string
	email     string
	appURL    string
	asJSON    bool
}

var renderOpts renderOptions

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a template file offline",
	Long: `Render a template file without touching the database or the email
provider. The file uses the same frontmatter format as the seeded templates.

Without --context the context is built for --email with no quote or
resource, the way the weekly email looks when nothing is scheduled.
Without --variables the default catalog supplies data types and defaults.`,
	Example: `  sunday4k render --template welcome.md --email ann@example.com
  sunday4k render --template weekly.md --context ctx.json --layout base.html --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return renderTemplate(cmd.OutOrStdout(), renderOpts)
	},
}

func renderTemplate(w io.Writer, opts renderOptions) error {
	raw, err := os.ReadFile(opts.template)
	if err != nil {
		return err
	}
	tpl, err := mailer.ParseTemplate(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.template, err)
	}

	var ctx interpolate.Context
	if opts.context != "" {
		data, err := os.ReadFile(opts.context)
		if err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&ctx); err != nil {
			return fmt.Errorf("decode context %s: %w", opts.context, err)
		}
	} else {
		ctx = content.NewBuilder(opts.appURL).Build(nil, nil, opts.email)
	}

	var vars []interpolate.Variable
	if opts.variables != "" {
		data, err := os.ReadFile(opts.variables)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &vars); err != nil {
			return fmt.Errorf("decode variables %s: %w", opts.variables, err)
		}
	} else if vars, err = seed.Catalog(); err != nil {
		return err
	}

	interp := interpolate.NewRenderer(
		interpolate.WithFormatter(interpolate.NewFormatter(interpolate.WithLocale(locale.ForTag(opts.locale)))),
	)
	renderer := mailer.NewRendererWithConfig(seed.Layouts, mailer.RendererConfig{Interpolator: interp})

	result, err := renderer.Render(opts.layout, tpl, ctx, vars)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"subject":   result.Subject,
			"preheader": result.Preheader,
			"html":      result.HTML,
			"text":      result.Text,
		})
	}
	_, err = fmt.Fprintf(w, "Subject: %s\n\n%s\n", result.Subject, result.HTML)
	return err
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOpts.template, "template", "t", "", "template file with frontmatter")
	f.StringVarP(&renderOpts.context, "context", "c", "", "JSON file holding the render context")
	f.StringVar(&renderOpts.variables, "variables", "", "YAML file holding the variable catalog")
	f.StringVarP(&renderOpts.layout, "layout", "l", "", "layout to wrap the body in, e.g. base.html")
	f.StringVar(&renderOpts.locale, "locale", "en-US", "locale for numbers and dates")
	f.StringVar(&renderOpts.email, "email", "subscriber@example.com", "recipient used to build the default context")
	f.StringVar(&renderOpts.appURL, "app-url", "https://sunday4k.com", "public URL used to build the default context")
	f.BoolVar(&renderOpts.asJSON, "json", false, "print every rendered part as JSON")
	_ = renderCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(renderCmd)
}
