package interpolate

// DataType controls how a resolved value is formatted.
type DataType string

const (
	DataTypeText    DataType = "text"
	DataTypeURL     DataType = "url"
	DataTypeDate    DataType = "date"
	DataTypeBoolean DataType = "boolean"
	DataTypeNumber  DataType = "number"
)

// Valid reports whether dt is one of the known data types.
func (dt DataType) Valid() bool {
	switch dt {
	case DataTypeText, DataTypeURL, DataTypeDate, DataTypeBoolean, DataTypeNumber:
		return true
	}
	return false
}

// Category classifies a variable for the admin catalog. It has no effect on rendering.
type Category string

const (
	CategorySystem  Category = "system"
	CategoryUser    Category = "user"
	CategoryContent Category = "content"
	CategoryCustom  Category = "custom"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySystem, CategoryUser, CategoryContent, CategoryCustom:
		return true
	}
	return false
}

// Variable is one entry of the template variable catalog.
// Only Name, DataType and DefaultValue affect rendering.
type Variable struct {
	DefaultValue *string  `json:"default_value,omitempty" yaml:"default_value,omitempty" db:"default_value"`
	Name         string   `json:"variable_name" yaml:"variable_name" db:"variable_name"`
	DisplayName  string   `json:"display_name" yaml:"display_name" db:"display_name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	Category     Category `json:"category" yaml:"category" db:"category"`
	DataType     DataType `json:"data_type" yaml:"data_type" db:"data_type"`
	IsSystem     bool     `json:"is_system" yaml:"is_system" db:"is_system"`
	IsActive     bool     `json:"is_active" yaml:"is_active" db:"is_active"`
}

// Default returns the default value, or "" when none is configured.
func (v Variable) Default() string {
	if v.DefaultValue == nil {
		return ""
	}
	return *v.DefaultValue
}

// Index maps variable names to their catalog entries.
// Later entries win when names repeat.
func Index(vars []Variable) map[string]Variable {
	idx := make(map[string]Variable, len(vars))
	for _, v := range vars {
		idx[v.Name] = v
	}
	return idx
}

// Context is the data a template is rendered against.
// Values may be primitives, nested maps, structs, slices or nil.
type Context map[string]any
