package firestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindNumber
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one typed document field. The zero Value is null.
//
// Numbers are always written as doubleValue, so integers read back as
// float64 and lose precision beyond 2^53.
type Value struct {
	kind Kind
	s    string
	b    bool
	n    float64
	m    Fields
	l    []Value
}

// Fields is a document's field set.
type Fields map[string]Value

func Null() Value               { return Value{} }
func String(s string) Value     { return Value{kind: KindString, s: s} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Number(n float64) Value    { return Value{kind: KindNumber, n: n} }
func Map(m Fields) Value        { return Value{kind: KindMap, m: m} }
func List(items ...Value) Value { return Value{kind: KindList, l: items} }

func (v Value) Kind() Kind { return v.kind }

// Native converts v into the Go value encoding/json would produce for the
// same data: nil, string, bool, float64, map[string]any or []any.
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindMap:
		return v.m.Native()
	case KindList:
		out := make([]any, len(v.l))
		for i, item := range v.l {
			out[i] = item.Native()
		}
		return out
	}
	return nil
}

// Native converts every field with Value.Native.
func (f Fields) Native() map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v.Native()
	}
	return out
}

// ErrUnsupportedType is returned by FromNative for values with no
// document representation.
var ErrUnsupportedType = errors.New("unsupported value type")

// FromNative converts a Go value into a Value. Supported inputs are nil,
// strings, bools, integer and float kinds, json.Number, time.Time (stored
// as an RFC 3339 string), maps with string keys, slices and arrays, and
// Value/Fields themselves.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case Fields:
		return Map(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %q: %w", t, err)
		}
		return Number(n), nil
	case time.Time:
		return String(t.UTC().Format(time.RFC3339Nano)), nil
	case map[string]any:
		return fieldsValue(t)
	case []any:
		return listValue(len(t), func(i int) any { return t[i] })
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromNative(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		return listValue(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return fieldsValue(m)
	}

	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, x)
}

// FieldsFromNative converts a map into a field set.
func FieldsFromNative(m map[string]any) (Fields, error) {
	v, err := fieldsValue(m)
	if err != nil {
		return nil, err
	}
	return v.m, nil
}

func fieldsValue(m map[string]any) (Value, error) {
	out := make(Fields, len(m))
	for k, item := range m {
		v, err := FromNative(item)
		if err != nil {
			return Value{}, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = v
	}
	return Map(out), nil
}

func listValue(n int, at func(int) any) (Value, error) {
	items := make([]Value, n)
	for i := 0; i < n; i++ {
		v, err := FromNative(at(i))
		if err != nil {
			return Value{}, fmt.Errorf("item %d: %w", i, err)
		}
		items[i] = v
	}
	return List(items...), nil
}

// Encode converts any JSON-serialisable value (usually a model struct)
// into fields, using its JSON field names.
func Encode(src any) (Fields, error) {
	b, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return FieldsFromNative(m)
}

// Decode is the inverse of Encode.
func (f Fields) Decode(dst any) error {
	b, err := json.Marshal(f.Native())
	if err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}

type wireMap struct {
	Fields Fields `json:"fields"`
}

type wireList struct {
	Values []Value `json:"values"`
}

// MarshalJSON writes the REST representation, e.g. {"stringValue":"x"}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte(`{"nullValue":null}`), nil
	case KindString:
		return json.Marshal(map[string]string{"stringValue": v.s})
	case KindBool:
		return json.Marshal(map[string]bool{"booleanValue": v.b})
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return nil, fmt.Errorf("number %v has no JSON form", v.n)
		}
		return json.Marshal(map[string]float64{"doubleValue": v.n})
	case KindMap:
		m := v.m
		if m == nil {
			m = Fields{}
		}
		return json.Marshal(map[string]wireMap{"mapValue": {Fields: m}})
	case KindList:
		l := v.l
		if l == nil {
			l = []Value{}
		}
		return json.Marshal(map[string]wireList{"arrayValue": {Values: l}})
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalJSON reads the REST representation. integerValue becomes a
// number, timestampValue and referenceValue become strings. Other kinds
// (bytes, geo points) are rejected.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if len(raw) != 1 {
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("value: expected exactly one kind, got %v", keys)
	}

	for kind, body := range raw {
		switch kind {
		case "nullValue":
			*v = Null()
		case "stringValue", "timestampValue", "referenceValue":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			*v = String(s)
		case "booleanValue":
			var x bool
			if err := json.Unmarshal(body, &x); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			*v = Bool(x)
		case "doubleValue":
			n, err := decodeDouble(body)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			*v = Number(n)
		case "integerValue":
			// int64 travels as a decimal string; tolerate a bare number too
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				s = string(body)
			}
			i, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			*v = Number(float64(i))
		case "mapValue":
			var m wireMap
			if err := json.Unmarshal(body, &m); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			if m.Fields == nil {
				m.Fields = Fields{}
			}
			*v = Map(m.Fields)
		case "arrayValue":
			var l wireList
			if err := json.Unmarshal(body, &l); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			*v = List(l.Values...)
		default:
			return fmt.Errorf("value: %w: %s", ErrUnsupportedType, kind)
		}
	}
	return nil
}

// decodeDouble accepts JSON numbers and the string forms used for
// non-finite doubles.
func decodeDouble(body []byte) (float64, error) {
	var n float64
	if err := json.Unmarshal(body, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		return 0, err
	}
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}
