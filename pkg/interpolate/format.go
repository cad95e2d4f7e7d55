package interpolate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/sunday4k/sunday4k/pkg/locale"
)

// DefaultDisplayFields are the object fields, in order, that text formatting
// prefers over a JSON dump when a variable resolves to an object.
var DefaultDisplayFields = []string{"title", "name"}

// DefaultDateLayouts are the layouts tried, in order, when a date variable holds a string.
var DefaultDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// Formatter turns resolved values into display strings.
// It is immutable after construction and safe for concurrent use.
type Formatter struct {
	locale        *locale.Format
	displayFields []string
	dateLayouts   []string
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithLocale sets the locale used for numbers and dates. Default: en-US.
func WithLocale(l *locale.Format) FormatterOption {
	return func(f *Formatter) {
		if l != nil {
			f.locale = l
		}
	}
}

// WithDisplayFields replaces the ordered list of object fields used by text formatting.
// An empty list makes objects always render as JSON.
func WithDisplayFields(fields ...string) FormatterOption {
	return func(f *Formatter) {
		f.displayFields = append([]string(nil), fields...)
	}
}

// WithDateLayouts replaces the layouts used to parse date strings.
func WithDateLayouts(layouts ...string) FormatterOption {
	return func(f *Formatter) {
		if len(layouts) > 0 {
			f.dateLayouts = append([]string(nil), layouts...)
		}
	}
}

// NewFormatter creates a Formatter.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		locale:        locale.EnUS(),
		displayFields: DefaultDisplayFields,
		dateLayouts:   DefaultDateLayouts,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders value according to dt. Unknown data types format as text.
// A nil value formats as "". Format never panics.
func (f *Formatter) Format(value any, dt DataType) (out string) {
	if value == nil {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprint(value)
		}
	}()

	switch dt {
	case DataTypeDate:
		return f.date(value)
	case DataTypeURL:
		return f.url(value)
	case DataTypeBoolean:
		if jsTruthy(value) {
			return "Yes"
		}
		return "No"
	case DataTypeNumber:
		return f.number(value)
	default:
		return f.text(value)
	}
}

func (f *Formatter) date(value any) string {
	switch v := value.(type) {
	case time.Time:
		return f.locale.FormatDate(v)
	case *time.Time:
		if v == nil {
			return ""
		}
		return f.locale.FormatDate(*v)
	}

	// Numbers are milliseconds since the epoch.
	if n, ok := toFloat(value); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return f.text(value)
		}
		return f.locale.FormatDate(time.UnixMilli(int64(n)).UTC())
	}

	s := f.text(value)
	trimmed := strings.TrimSpace(s)
	for _, layout := range f.dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return f.locale.FormatDate(t)
		}
	}
	return s
}

func (f *Formatter) url(value any) string {
	s := f.text(value)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "https://" + s
}

func (f *Formatter) number(value any) string {
	if n, ok := toFloat(value); ok {
		return f.locale.FormatNumber(n)
	}
	if s, ok := value.(string); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return f.locale.FormatNumber(n)
		}
	}
	return f.text(value)
}

func (f *Formatter) text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}

	if isObject(value) {
		for _, name := range f.displayFields {
			if fv, ok := field(value, name); ok && fv != nil && !isObject(fv) {
				return f.text(fv)
			}
		}
		data, err := json.Marshal(value)
		if err == nil {
			return string(data)
		}
	}

	return fmt.Sprint(value)
}

// toFloat converts Go numeric kinds to float64.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// jsTruthy follows JavaScript truthiness: false, 0, NaN, "" and nil are falsy,
// everything else, including empty objects and arrays, is truthy.
func jsTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	if n, ok := toFloat(value); ok {
		return n != 0 && !math.IsNaN(n)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return !rv.IsNil()
	}
	return true
}
