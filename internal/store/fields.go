package store

import (
	"reflect"
	"time"
)

// TimeLayout - формат времени фиксированной ширины, строки в нем сортируются хронологически
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Fields - содержимое документа
type Fields map[string]any

func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case nil:
		return ""
	}
	if rv := reflect.ValueOf(f[key]); rv.Kind() == reflect.String {
		return rv.String()
	}
	return ""
}

// BoolOr возвращает значение поля или def, если поле не задано
func (f Fields) BoolOr(key string, def bool) bool {
	if v, ok := f[key].(bool); ok {
		return v
	}
	return def
}

func (f Fields) Float(key string) float64 {
	if n, ok := normalize(f[key]).(float64); ok {
		return n
	}
	return 0
}

func (f Fields) Int(key string) int {
	return int(f.Float(key))
}

// Time читает время, сохраненное как time.Time или как строка RFC 3339
func (f Fields) Time(key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// Strings читает список строк; отсутствующее поле дает пустой список
func (f Fields) Strings(key string) []string {
	out := []string{}
	for _, item := range toSlice(f[key]) {
		if s, ok := normalize(item).(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Clone возвращает глубокую копию полей
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		return map[string]any(Fields(t).Clone())
	case Fields:
		return t.Clone()
	}
	return v
}
