package service

import (
	"errors"
	"fmt"
	"strings"

	"courier/internal/jsondoc"
)

var ErrUnknownFieldType = errors.New("unknown field type")

// FieldType selects the accessor used by ExtractField
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBool    FieldType = "bool"
	FieldObject  FieldType = "object"
	FieldObjects FieldType = "objects"
	FieldStrings FieldType = "strings"
	FieldNumbers FieldType = "numbers"
	FieldBools   FieldType = "bools"
)

type FieldValue struct {
	Key   string    `json:"key"`
	Type  FieldType `json:"type"`
	Found bool      `json:"found"`
	Value any       `json:"value"`
}

// ExtractField decodes body and reads key as fieldType. A missing or mismatched key, or a body that does not
// parse to a JSON object, yields the type's zero value with Found false. Only non-JSON media types are errors.
func ExtractField(contentType, body, key string, fieldType FieldType) (FieldValue, error) {
	doc, err := jsondoc.Decode(contentType, body)
	if err != nil {
		return FieldValue{}, err
	}

	out := FieldValue{Key: key, Type: FieldType(strings.ToLower(string(fieldType))), Found: doc.Has(key)}
	switch out.Type {
	case FieldString:
		out.Value = doc.String(key)
	case FieldNumber:
		out.Value = doc.Number(key)
	case FieldBool:
		out.Value = doc.Bool(key)
	case FieldObject:
		out.Value = doc.Object(key).Root().Interface()
	case FieldObjects:
		objects := doc.ObjectArray(key)
		values := make([]any, 0, len(objects))
		for _, o := range objects {
			values = append(values, o.Root().Interface())
		}
		out.Value = values
	case FieldStrings:
		out.Value = doc.StringArray(key)
	case FieldNumbers:
		out.Value = doc.NumberArray(key)
	case FieldBools:
		out.Value = doc.BoolArray(key)
	default:
		return FieldValue{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, fieldType)
	}
	return out, nil
}
