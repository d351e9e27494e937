// Package fields maps loosely keyed inventory records onto canonical
// catalog fields.
//
// Upstream sheets mix Russian and English column names, with and without
// abbreviation, so every canonical field is looked up through an ordered list
// of aliases. The first alias holding a non-empty value wins.
package fields

import (
	"reflect"
	"strconv"
	"strings"

	"partsbot/internal"
)

// ResolveField returns the trimmed string form of the first key in keys that
// holds a non-empty value, or def when none does. It never mutates record.
func ResolveField(record internal.Record, keys []string, def string) string {
	if record == nil {
		return def
	}
	for _, key := range keys {
		v, ok := record[key]
		if !ok {
			continue
		}
		if s := Stringify(v); s != "" {
			return s
		}
	}
	return def
}

// Stringify renders a scalar value trimmed. nil, nil pointers and
// unsupported kinds give "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}

	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return ""
	}
	if s, ok := v.(interface{ String() string }); ok {
		return stringerValue(s)
	}
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
	return ""
}

// stringerValue calls String and treats a panic as an empty value.
func stringerValue(s interface{ String() string }) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	return strings.TrimSpace(s.String())
}
