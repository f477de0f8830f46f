package jsondoc

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported response format")

// Document is a parsed response body whose root, when present, is a JSON object.
// Every accessor on an invalid document, and every missing or mistyped key, yields the zero value.
type Document struct {
	root  Value
	valid bool
}

// Parse never fails: a syntax error or a non-object root produces an invalid Document.
func Parse(body string) Document {
	root, err := ParseValue(body)
	if err != nil || root.Kind() != KindObject {
		return Document{}
	}
	return Document{root: root, valid: true}
}

// Decode parses body according to contentType. An empty content type is read as JSON.
func Decode(contentType, body string) (Document, error) {
	if strings.TrimSpace(contentType) == "" {
		return Parse(body), nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
	if !isJSONMediaType(mediaType) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
	}
	return Parse(body), nil
}

func isJSONMediaType(mediaType string) bool {
	switch mediaType {
	case "application/json", "text/json", "application/x-json":
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}

func FromValue(v Value) Document {
	if v.Kind() != KindObject {
		return Document{}
	}
	return Document{root: v, valid: true}
}

func (d Document) Valid() bool {
	return d.valid
}

// Root returns the underlying object, or a null value for an invalid document
func (d Document) Root() Value {
	if !d.valid {
		return Null()
	}
	return d.root
}

func (d Document) Has(key string) bool {
	_, ok := d.field(key)
	return ok
}

func (d Document) field(key string) (Value, bool) {
	if !d.valid {
		return Value{}, false
	}
	return d.root.Field(key)
}

func (d Document) Object(key string) Document {
	v, ok := d.field(key)
	if !ok {
		return Document{}
	}
	return FromValue(v)
}

// ObjectArray keeps one entry per element; elements that are not objects come back invalid.
func (d Document) ObjectArray(key string) []Document {
	v, ok := d.field(key)
	if !ok || v.Kind() != KindArray {
		return []Document{}
	}
	out := make([]Document, 0, len(v.Items()))
	for _, item := range v.Items() {
		out = append(out, FromValue(item))
	}
	return out
}

func (d Document) StringArray(key string) []string {
	return collect(d, key, Value.AsString)
}

func (d Document) NumberArray(key string) []float64 {
	return collect(d, key, Value.AsNumber)
}

func (d Document) BoolArray(key string) []bool {
	return collect(d, key, Value.AsBool)
}

// collect coerces each element with as, dropping the ones that cannot be converted
func collect[T any](d Document, key string, as func(Value) (T, bool)) []T {
	v, ok := d.field(key)
	if !ok || v.Kind() != KindArray {
		return []T{}
	}
	out := make([]T, 0, len(v.Items()))
	for _, item := range v.Items() {
		if converted, ok := as(item); ok {
			out = append(out, converted)
		}
	}
	return out
}

func (d Document) String(key string) string {
	v, _ := d.field(key)
	s, _ := v.TryString()
	return s
}

func (d Document) Number(key string) float64 {
	v, _ := d.field(key)
	n, _ := v.TryNumber()
	return n
}

func (d Document) Bool(key string) bool {
	v, _ := d.field(key)
	b, _ := v.TryBool()
	return b
}
