package jsondoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_InvalidBodiesYieldZeroValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"truncated object", "{invalid"},
		{"array root", "[1,2,3]"},
		{"scalar root", "42"},
		{"trailing garbage", `{"a":1} x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.body)

			assert.False(t, doc.Valid())
			assert.False(t, doc.Object("a").Valid())
			assert.Empty(t, doc.ObjectArray("a"))
			assert.Empty(t, doc.StringArray("a"))
			assert.Empty(t, doc.NumberArray("a"))
			assert.Empty(t, doc.BoolArray("a"))
			assert.Equal(t, "", doc.String("a"))
			assert.Equal(t, float64(0), doc.Number("a"))
			assert.False(t, doc.Bool("a"))
			assert.True(t, doc.Root().IsNull())
		})
	}
}

func TestParse_FieldAccess(t *testing.T) {
	doc := Parse(`{"a":1,"b":[1,2,3],"c":"x"}`)
	require.True(t, doc.Valid())

	assert.Equal(t, float64(1), doc.Number("a"))
	assert.Equal(t, []float64{1, 2, 3}, doc.NumberArray("b"))
	assert.Equal(t, "x", doc.String("c"))
	assert.Equal(t, "", doc.String("missing"))
}

func TestParse_ScalarMismatchYieldsZero(t *testing.T) {
	doc := Parse(`{"n":"12","s":12,"b":"true","o":[]}`)
	require.True(t, doc.Valid())

	assert.Equal(t, float64(0), doc.Number("n"))
	assert.Equal(t, "", doc.String("s"))
	assert.False(t, doc.Bool("b"))
	assert.False(t, doc.Object("o").Valid())
	assert.Empty(t, doc.NumberArray("s"), "a scalar is not an array")
}

func TestParse_NestedObjects(t *testing.T) {
	doc := Parse(`{"user":{"name":"ada","address":{"city":"London","zip":"N1"}},"active":true}`)

	assert.Equal(t, "ada", doc.Object("user").String("name"))
	assert.Equal(t, "London", doc.Object("user").Object("address").String("city"))
	assert.Equal(t, "", doc.Object("user").String("city"), "lookup is per level, not recursive")
	assert.True(t, doc.Bool("active"))
	assert.True(t, doc.Has("user"))
	assert.False(t, doc.Has("city"))
}

func TestParse_ArrayCoercion(t *testing.T) {
	doc := Parse(`{
		"mixed_numbers": [1, "2.5", true, null, "abc", {"x":1}],
		"mixed_bools": [true, 0, 3, "yes", "no", "maybe", null],
		"mixed_strings": ["a", 1.5, false, null, [1]],
		"objects": [{"id":1}, 2, {"id":3}]
	}`)
	require.True(t, doc.Valid())

	assert.Equal(t, []float64{1, 2.5, 1}, doc.NumberArray("mixed_numbers"))
	assert.Equal(t, []bool{true, false, true, true, false}, doc.BoolArray("mixed_bools"))
	assert.Equal(t, []string{"a", "1.5", "false"}, doc.StringArray("mixed_strings"))

	objects := doc.ObjectArray("objects")
	require.Len(t, objects, 3)
	assert.Equal(t, float64(1), objects[0].Number("id"))
	assert.False(t, objects[1].Valid())
	assert.Equal(t, float64(0), objects[1].Number("id"))
	assert.Equal(t, float64(3), objects[2].Number("id"))
}

func TestParse_NumbersAreFloat(t *testing.T) {
	doc := Parse(`{"i":10,"f":2.75,"e":1e3}`)

	assert.Equal(t, float64(10), doc.Number("i"))
	assert.Equal(t, 2.75, doc.Number("f"))
	assert.Equal(t, float64(1000), doc.Number("e"))
}

func TestDecode_ContentTypes(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{"plain json", "application/json", false},
		{"json with charset", "application/json; charset=utf-8", false},
		{"vendor json", "application/vnd.github+json", false},
		{"text json", "text/json", false},
		{"no content type", "", false},
		{"html", "text/html; charset=utf-8", true},
		{"xml", "application/xml", true},
		{"malformed", ";;", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode(tt.contentType, `{"ok":true}`)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				assert.False(t, doc.Valid())
				return
			}
			require.NoError(t, err)
			assert.True(t, doc.Bool("ok"))
		})
	}
}

func TestParseValue_Tree(t *testing.T) {
	v, err := ParseValue(`[null, true, 3, "s", [], {"k":"v"}]`)
	require.NoError(t, err)
	require.Equal(t, KindArray, v.Kind())

	kinds := make([]Kind, 0, len(v.Items()))
	for _, item := range v.Items() {
		kinds = append(kinds, item.Kind())
	}
	assert.Equal(t, []Kind{KindNull, KindBool, KindNumber, KindString, KindArray, KindObject}, kinds)

	obj := v.Items()[5]
	assert.Equal(t, []string{"k"}, obj.Keys())
	field, ok := obj.Field("k")
	require.True(t, ok)
	s, ok := field.TryString()
	assert.True(t, ok)
	assert.Equal(t, "v", s)

	_, err = ParseValue("{")
	assert.Error(t, err)
}

func TestValue_MarshalJSON(t *testing.T) {
	v, err := ParseValue(`{"a":[1,"two",false,null]}`)
	require.NoError(t, err)

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,"two",false,null]}`, string(out))
}
