package content

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned when a category is neither a string nor an object.
var ErrInvalidCategory = errors.New("content: invalid category")

// Category is a resource category. Upstream data carries it either as a bare
// title string or as {"title": ..., "icon_name": ...}; both decode into this
// type so nothing downstream needs to check the shape again.
type Category struct {
	Title    string `json:"title"`
	IconName string `json:"icon_name,omitempty"`
}

// PlainCategory returns a category with only a title.
func PlainCategory(title string) Category {
	return Category{Title: title}
}

// IsZero reports whether the category has no title.
func (c Category) IsZero() bool {
	return strings.TrimSpace(c.Title) == ""
}

// Detailed reports whether the category carries more than a title.
func (c Category) Detailed() bool {
	return c.IconName != ""
}

// String returns the category title.
func (c Category) String() string {
	return c.Title
}

// UnmarshalJSON accepts a JSON string, an object with title/icon_name, or null.
func (c *Category) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Category{}
		return nil
	}

	switch data[0] {
	case '"':
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return errors.Join(ErrInvalidCategory, err)
		}
		*c = PlainCategory(title)
		return nil
	case '{':
		var obj struct {
			Title    string `json:"title"`
			Name     string `json:"name"`
			IconName string `json:"icon_name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return errors.Join(ErrInvalidCategory, err)
		}
		title := obj.Title
		if title == "" {
			title = obj.Name
		}
		*c = Category{Title: title, IconName: obj.IconName}
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidCategory, data)
}

// MarshalJSON always writes the object form.
func (c Category) MarshalJSON() ([]byte, error) {
	type plain Category
	return json.Marshal(plain(c))
}

// Scan implements sql.Scanner for jsonb, json and text columns.
func (c *Category) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Category{}
		return nil
	case []byte:
		return c.scanText(v)
	case string:
		return c.scanText([]byte(v))
	case map[string]any:
		// pgx decodes json/jsonb into map[string]any when scanning into any.
		data, err := json.Marshal(v)
		if err != nil {
			return errors.Join(ErrInvalidCategory, err)
		}
		return c.UnmarshalJSON(data)
	}
	return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidCategory, src)
}

func (c *Category) scanText(b []byte) error {
	t := bytes.TrimSpace(b)
	if len(t) > 0 && (t[0] == '{' || t[0] == '"' || bytes.Equal(t, []byte("null"))) {
		return c.UnmarshalJSON(t)
	}
	*c = PlainCategory(string(b))
	return nil
}

// Value implements driver.Valuer and stores the object form.
func (c Category) Value() (driver.Value, error) {
	if c.IsZero() && c.IconName == "" {
		return nil, nil
	}
	return json.Marshal(c)
}
