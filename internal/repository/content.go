package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunday4k/sunday4k/internal/content"
)

const quoteColumns = `id, quote, author, source, is_active, display_count, last_displayed_at, created_at`

func (r *Repository) GetQuote(ctx context.Context, id uuid.UUID) (*content.Quote, error) {
	rows, err := r.db.Query(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	q, err := collectOne[content.Quote](rows)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// NextQuote rotates to the active quote displayed least recently and marks it
// displayed. It returns ErrNotFound when no quote is active.
func (r *Repository) NextQuote(ctx context.Context) (*content.Quote, error) {
	rows, err := r.db.Query(ctx, `SELECT `+quoteColumns+` FROM next_display_quote()`)
	if err != nil {
		return nil, fmt.Errorf("next quote: %w", err)
	}
	q, err := collectOne[content.Quote](rows)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// QuoteDisplayedSince returns the quote most recently marked displayed at or
// after since. It returns ErrNotFound when none was.
func (r *Repository) QuoteDisplayedSince(ctx context.Context, since time.Time) (*content.Quote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		 WHERE last_displayed_at >= $1
		 ORDER BY last_displayed_at DESC
		 LIMIT 1`, since)
	if err != nil {
		return nil, fmt.Errorf("quote displayed since: %w", err)
	}
	q, err := collectOne[content.Quote](rows)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQuote inserts a quote unless the same text by the same author exists.
// It reports whether a row was inserted.
func (r *Repository) CreateQuote(ctx context.Context, q content.Quote) (bool, error) {
	if strings.TrimSpace(q.Quote) == "" {
		return false, fmt.Errorf("%w: quote text is empty", ErrInvalidInput)
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO quotes (quote, author, source, is_active)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (SELECT 1 FROM quotes WHERE quote = $1 AND author = $2)`,
		q.Quote, q.Author, q.Source, q.IsActive,
	)
	if err != nil {
		return false, fmt.Errorf("create quote: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Resources linked to a category row carry it as an object; older rows only
// have a free-form label, returned as a JSON string.
const resourceSelect = `
	SELECT r.id, r.title, r.description, r.url, r.affiliate_url, r.has_affiliate,
	       r.type, r.how_resource_helps, r.created_at,
	       CASE WHEN c.id IS NOT NULL
	            THEN jsonb_build_object('title', c.title, 'icon_name', c.icon_name)
	            ELSE to_jsonb(r.category_label)
	       END AS category
	  FROM resources r
	  LEFT JOIN resource_categories c ON c.id = r.category_id`

func (r *Repository) GetResource(ctx context.Context, id uuid.UUID) (*content.Resource, error) {
	rows, err := r.db.Query(ctx, resourceSelect+` WHERE r.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	res, err := collectOne[content.Resource](rows)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
