package jsondoc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a decoded JSON tree. Only the field matching kind is meaningful.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	array  []Value
	object map[string]Value
}

func Null() Value { return Value{kind: KindNull} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Array(items ...Value) Value { return Value{kind: KindArray, array: items} }
func Object(fields map[string]Value) Value { return Value{kind: KindObject, object: fields} }

// ParseValue decodes any JSON text into a tree. Numbers are held as float64.
func ParseValue(body string) (Value, error) {
	if strings.TrimSpace(body) == "" {
		return Value{}, fmt.Errorf("invalid json document: empty body")
	}
	var raw any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Value{}, fmt.Errorf("invalid json document: %w", err)
	}
	return fromRaw(raw), nil
}

func fromRaw(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case string:
		return String(v)
	case []any:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, fromRaw(item))
		}
		return Array(items...)
	case map[string]any:
		fields := make(map[string]Value, len(v))
		for key, item := range v {
			fields[key] = fromRaw(item)
		}
		return Object(fields)
	default:
		return Null()
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Field looks up key on an object value
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	field, ok := v.object[key]
	return field, ok
}

// Keys returns the object's keys sorted, or nil for any other kind
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.object))
	for key := range v.object {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.array
}

// The Try accessors are strict: they only succeed on their own kind.

func (v Value) TryBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) TryNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

func (v Value) TryString() (string, bool) {
	return v.s, v.kind == KindString
}

// The As accessors coerce between scalar kinds and report false when no sensible conversion exists.

func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindNumber:
		return v.n != 0, true
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.s)) {
		case "true", "yes", "on", "1":
			return true, true
		case "false", "no", "off", "0":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// Interface converts the tree back into plain Go values, the shape encoding/json would produce
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		items := make([]any, 0, len(v.array))
		for _, item := range v.array {
			items = append(items, item.Interface())
		}
		return items
	case KindObject:
		fields := make(map[string]any, len(v.object))
		for key, item := range v.object {
			fields[key] = item.Interface()
		}
		return fields
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
