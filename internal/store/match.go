package store

import (
	"reflect"
	"sort"
	"strings"
	"time"
)

// Matches сообщает, удовлетворяют ли поля всем предикатам
func Matches(f Fields, predicates []Predicate) bool {
	for _, p := range predicates {
		if !matchPredicate(f, p) {
			return false
		}
	}
	return true
}

func matchPredicate(f Fields, p Predicate) bool {
	v, ok := f[p.Field]
	if !ok {
		return false
	}

	switch p.Op {
	case OpEqual:
		return equalValues(v, p.Value)
	case OpArrayContains:
		for _, item := range toSlice(v) {
			if equalValues(item, p.Value) {
				return true
			}
		}
	case OpIn:
		for _, candidate := range toSlice(p.Value) {
			if equalValues(v, candidate) {
				return true
			}
		}
	}
	return false
}

// normalize приводит именованные строковые и числовые типы к string и float64
func normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64, time.Time:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func equalValues(a, b any) bool {
	return compareValues(a, b) == 0 && typeRank(normalize(a)) == typeRank(normalize(b))
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	case time.Time:
		return 4
	}
	return 5
}

// compareValues упорядочивает значения; nil меньше любого значения
func compareValues(a, b any) int {
	a, b = normalize(a), normalize(b)
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		return strings.Compare(av, b.(string))
	case time.Time:
		return av.Compare(b.(time.Time))
	}

	if reflect.DeepEqual(a, b) {
		return 0
	}
	return -1
}

// sortDocuments сортирует документы по полю, при равенстве - по id
func sortDocuments(docs []Document, order *OrderBy) {
	sort.SliceStable(docs, func(i, j int) bool {
		if order != nil {
			c := compareValues(docs[i].Fields[order.Field], docs[j].Fields[order.Field])
			if c != 0 {
				if order.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return docs[i].ID < docs[j].ID
	})
}
