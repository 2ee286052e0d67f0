package status

import (
	"encoding/json"
	"fmt"
)

// Homework is one work item of the snapshot.
type Homework struct {
	Name   string
	Status string
}

// Result is a validated snapshot.
type Result struct {
	// Homeworks keeps the order supplied by the API. May be empty.
	Homeworks []Homework
	// CursorHint is the snapshot's current_date, when present and well-typed.
	CursorHint *int64
}

// Validate checks the structure of a decoded snapshot.
func Validate(raw RawSnapshot) (Result, error) {
	if raw == nil {
		return Result{}, &SchemaError{Field: "response", Reason: "empty response"}
	}
	v, ok := raw["homeworks"]
	if !ok {
		return Result{}, &SchemaError{Field: "homeworks", Reason: "key is missing"}
	}
	if v == nil {
		return Result{}, &SchemaError{Field: "homeworks", Reason: "value is null"}
	}
	list, ok := v.([]any)
	if !ok {
		return Result{}, &SchemaError{Field: "homeworks", Reason: fmt.Sprintf("expected a list, got %s", typeName(v))}
	}

	out := Result{Homeworks: make([]Homework, 0, len(list))}
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return Result{}, &SchemaError{Field: fmt.Sprintf("homeworks[%d]", i), Reason: fmt.Sprintf("expected an object, got %s", typeName(item))}
		}
		name, err := requiredString(obj, i, "homework_name")
		if err != nil {
			return Result{}, err
		}
		st, err := requiredString(obj, i, "status")
		if err != nil {
			return Result{}, err
		}
		out.Homeworks = append(out.Homeworks, Homework{Name: name, Status: st})
	}

	out.CursorHint = cursorHint(raw["current_date"])
	return out, nil
}

func requiredString(obj map[string]any, idx int, key string) (string, error) {
	field := fmt.Sprintf("homeworks[%d].%s", idx, key)
	v, ok := obj[key]
	if !ok || v == nil {
		return "", &SchemaError{Field: field, Reason: "key is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Field: field, Reason: fmt.Sprintf("expected a string, got %s", typeName(v))}
	}
	return s, nil
}

func cursorHint(v any) *int64 {
	var n int64
	switch x := v.(type) {
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil
		}
		n = i
	case float64:
		// Snapshots built without UseNumber.
		if x != float64(int64(x)) {
			return nil
		}
		n = int64(x)
	case int64:
		n = x
	case int:
		n = int64(x)
	default:
		return nil
	}
	if n < 0 {
		return nil
	}
	return &n
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
