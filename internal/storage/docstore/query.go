package docstore

import (
	"fmt"
	"maps"
	"reflect"
)

// canonicalID приводит значение идентификатора к каноническому строковому
// представлению: идентификаторы всегда хранятся строками, а в запросах могут
// приходить в виде специализированных типов.
func canonicalID(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// normalizeQuery возвращает копию запроса, в которой значения поля "_id"
// (включая список оператора $in) приведены к каноническим строкам.
func normalizeQuery(query Query) Query {
	if query == nil {
		return nil
	}
	normalized := maps.Clone(query)
	idValue, ok := normalized[idField]
	if !ok {
		return normalized
	}
	switch v := idValue.(type) {
	case map[string]any:
		cond := maps.Clone(v)
		if list, ok := cond["$in"]; ok {
			cond["$in"] = normalizeIDList(list)
		}
		normalized[idField] = cond
	case Query:
		cond := maps.Clone(map[string]any(v))
		if list, ok := cond["$in"]; ok {
			cond["$in"] = normalizeIDList(list)
		}
		normalized[idField] = cond
	default:
		normalized[idField] = canonicalID(idValue)
	}
	return normalized
}

func normalizeIDList(list any) []any {
	value := reflect.ValueOf(list)
	if value.Kind() != reflect.Slice {
		return []any{canonicalID(list)}
	}
	normalized := make([]any, 0, value.Len())
	for i := 0; i < value.Len(); i++ {
		normalized = append(normalized, canonicalID(value.Index(i).Interface()))
	}
	return normalized
}

// matchDocument проверяет, подходит ли документ под нормализованный запрос.
// Пустой запрос совпадает с любым документом.
func matchDocument(doc Document, query Query) bool {
	for field, cond := range query {
		if !matchField(doc[field], cond) {
			return false
		}
	}
	return true
}

func matchField(docValue, cond any) bool {
	switch c := cond.(type) {
	case map[string]any:
		if list, ok := c["$in"]; ok {
			return matchIn(docValue, list)
		}
		return equalValues(docValue, c)
	case Query:
		if list, ok := c["$in"]; ok {
			return matchIn(docValue, list)
		}
		return equalValues(docValue, map[string]any(c))
	default:
		return equalValues(docValue, cond)
	}
}

func matchIn(docValue, list any) bool {
	value := reflect.ValueOf(list)
	if value.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < value.Len(); i++ {
		if equalValues(docValue, value.Index(i).Interface()) {
			return true
		}
	}
	return false
}

// equalValues сравнивает значения с учётом того, что после JSON-раунда
// все числа становятся float64.
func equalValues(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
