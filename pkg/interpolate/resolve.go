package interpolate

import (
	"reflect"
	"strings"
)

// Resolve walks a dotted path such as "resource.category.title" through ctx.
//
// Each step descends only into maps with string keys and structs (by json tag,
// then field name). The second result is false when any segment is empty or
// missing, or when the walk reaches a value that cannot be descended into
// (a string, a slice, nil). A found value may still be zero, false or "".
func Resolve(ctx Context, path string) (any, bool) {
	if path == "" || ctx == nil {
		return nil, false
	}

	var current any = map[string]any(ctx)
	for segment := range strings.SplitSeq(path, ".") {
		if segment == "" {
			return nil, false
		}
		next, ok := field(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// field returns the own key or field named name of an object value.
func field(obj any, name string) (any, bool) {
	switch m := obj.(type) {
	case map[string]any:
		v, ok := m[name]
		return v, ok
	case Context:
		v, ok := m[name]
		return v, ok
	case map[string]string:
		v, ok := m[name]
		return v, ok
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		return structField(rv, name)
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (any, bool) {
	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if fieldName(sf) == name {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

// fieldName mirrors encoding/json naming: the tag name when present, the Go name otherwise.
func fieldName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if n, _, _ := strings.Cut(tag, ","); n != "" {
		return n
	}
	return sf.Name
}

// isObject reports whether v is a map, struct, slice or array.
func isObject(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	}
	return false
}
