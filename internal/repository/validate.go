package repository

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sunday4k/sunday4k/pkg/interpolate"
	"github.com/sunday4k/sunday4k/pkg/mailer"
)

var (
	variableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	templateNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// normalizeVariable fills defaults and rejects entries the renderer cannot use.
func normalizeVariable(v interpolate.Variable) (interpolate.Variable, error) {
	v.Name = strings.TrimSpace(v.Name)
	if !variableNameRe.MatchString(v.Name) {
		return v, fmt.Errorf("%w: variable name %q must be a dotted path", ErrInvalidInput, v.Name)
	}

	if v.DataType == "" {
		v.DataType = interpolate.DataTypeText
	}
	if !v.DataType.Valid() {
		return v, fmt.Errorf("%w: unknown data type %q", ErrInvalidInput, v.DataType)
	}

	if v.Category == "" {
		v.Category = interpolate.CategoryCustom
	}
	if !v.Category.Valid() {
		return v, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, v.Category)
	}

	if strings.TrimSpace(v.DisplayName) == "" {
		v.DisplayName = v.Name
	}
	return v, nil
}

func normalizeTemplate(t mailer.Template) (mailer.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	if !templateNameRe.MatchString(t.Name) {
		return t, fmt.Errorf("%w: template name %q must be lowercase letters, digits, '-' or '_'", ErrInvalidInput, t.Name)
	}
	if strings.TrimSpace(t.Body) == "" {
		return t, fmt.Errorf("%w: template body is empty", ErrInvalidInput)
	}

	if t.Format == "" {
		t.Format = mailer.FormatMarkdown
	}
	if !t.Format.Valid() {
		return t, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, t.Format)
	}

	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
