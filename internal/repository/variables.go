package repository

import (
	"context"
	"fmt"

	"github.com/sunday4k/sunday4k/pkg/interpolate"
)

const variableColumns = `variable_name, display_name, description, category, data_type, default_value, is_system, is_active`

// ListActiveVariables returns the catalog used for rendering.
func (r *Repository) ListActiveVariables(ctx context.Context) ([]interpolate.Variable, error) {
	rows, err := r.db.Query(ctx, `SELECT `+variableColumns+` FROM template_variables
		WHERE is_active ORDER BY category, variable_name`)
	if err != nil {
		return nil, fmt.Errorf("list active variables: %w", err)
	}
	return collectAll[interpolate.Variable](rows)
}

// ListVariables returns every catalog entry, inactive ones included.
func (r *Repository) ListVariables(ctx context.Context) ([]interpolate.Variable, error) {
	rows, err := r.db.Query(ctx, `SELECT `+variableColumns+` FROM template_variables
		ORDER BY category, variable_name`)
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	return collectAll[interpolate.Variable](rows)
}

func (r *Repository) GetVariable(ctx context.Context, name string) (interpolate.Variable, error) {
	rows, err := r.db.Query(ctx, `SELECT `+variableColumns+` FROM template_variables
		WHERE variable_name = $1`, name)
	if err != nil {
		return interpolate.Variable{}, fmt.Errorf("get variable: %w", err)
	}
	return collectOne[interpolate.Variable](rows)
}

// UpsertVariable creates or replaces a catalog entry by name.
func (r *Repository) UpsertVariable(ctx context.Context, v interpolate.Variable) (interpolate.Variable, error) {
	v, err := normalizeVariable(v)
	if err != nil {
		return v, err
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO template_variables (`+variableColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (variable_name) DO UPDATE SET
			display_name  = EXCLUDED.display_name,
			description   = EXCLUDED.description,
			category      = EXCLUDED.category,
			data_type     = EXCLUDED.data_type,
			default_value = EXCLUDED.default_value,
			is_system     = EXCLUDED.is_system,
			is_active     = EXCLUDED.is_active,
			updated_at    = now()
		RETURNING `+variableColumns,
		v.Name, v.DisplayName, v.Description, v.Category, v.DataType, v.DefaultValue, v.IsSystem, v.IsActive,
	)
	if err != nil {
		return v, fmt.Errorf("upsert variable: %w", err)
	}
	return collectOne[interpolate.Variable](rows)
}

// DeleteVariable removes a non-system catalog entry.
func (r *Repository) DeleteVariable(ctx context.Context, name string) error {
	var isSystem bool
	err := r.db.QueryRow(ctx, `SELECT is_system FROM template_variables WHERE variable_name = $1`, name).Scan(&isSystem)
	if err != nil {
		return notFound(err)
	}
	if isSystem {
		return fmt.Errorf("%w: %s", ErrSystemVariable, name)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM template_variables WHERE variable_name = $1 AND NOT is_system`, name); err != nil {
		return fmt.Errorf("delete variable: %w", err)
	}
	return nil
}
