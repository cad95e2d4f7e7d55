package repository

import (
	"context"
	"fmt"

	"github.com/sunday4k/sunday4k/pkg/mailer"
)

const templateColumns = `name, description, subject, preheader, body, format, layout, tags, updated_at`

func (r *Repository) GetTemplate(ctx context.Context, name string) (*mailer.Template, error) {
	rows, err := r.db.Query(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	t, err := collectOne[mailer.Template](rows)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) ListTemplates(ctx context.Context) ([]mailer.Template, error) {
	rows, err := r.db.Query(ctx, `SELECT `+templateColumns+` FROM email_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return collectAll[mailer.Template](rows)
}

// UpsertTemplate creates or replaces a template by name. The body is stored as given;
// sanitizing it is the caller's job.
func (r *Repository) UpsertTemplate(ctx context.Context, t mailer.Template) (*mailer.Template, error) {
	t, err := normalizeTemplate(t)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO email_templates (name, description, subject, preheader, body, format, layout, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			subject     = EXCLUDED.subject,
			preheader   = EXCLUDED.preheader,
			body        = EXCLUDED.body,
			format      = EXCLUDED.format,
			layout      = EXCLUDED.layout,
			tags        = EXCLUDED.tags,
			updated_at  = now()
		RETURNING `+templateColumns,
		t.Name, t.Description, t.Subject, t.Preheader, t.Body, t.Format, t.Layout, t.Tags,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert template: %w", err)
	}
	saved, err := collectOne[mailer.Template](rows)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *Repository) DeleteTemplate(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM email_templates WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
