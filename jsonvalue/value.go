// Package jsonvalue implements the protocol Value sum type described by the
// DAP core spec: a JSON-shaped value over {null, bool, integer, float,
// numeric-string, string, array, object}, with an order-preserving object
// representation and opt-in arbitrary-precision number preservation.
//
// go-dap already supplies strongly-typed Go structs for every concrete DAP
// message (see the conn package) — jsonvalue exists for the place the
// protocol is deliberately untyped: merging caller-supplied launch/attach
// configuration into a request's arguments (requests.LaunchConfig.Arguments).
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Kind tags which alternative of the sum type a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindNumericString
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
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindNumericString:
		return "numeric-string"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the sum type. The zero Value is KindNull.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string // string payload, or the verbatim token for KindNumericString
	arr  []Value
	obj  *Object
}

func Null() Value                 { return Value{kind: KindNull} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func Int(i int64) Value           { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value       { return Value{kind: KindFloat, f: f} }
func String(s string) Value       { return Value{kind: KindString, s: s} }
func NumericString(tok string) Value {
	return Value{kind: KindNumericString, s: tok}
}
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }
func FromObject(o *Object) Value { return Value{kind: KindObject, obj: o} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) Int() (int64, bool)     { return v.i, v.kind == KindInteger }
func (v Value) Float() (float64, bool) {
	if v.kind == KindFloat {
		return v.f, true
	}
	if v.kind == KindInteger {
		return float64(v.i), true
	}
	return 0, false
}
func (v Value) String() (string, bool) {
	switch v.kind {
	case KindString, KindNumericString:
		return v.s, true
	default:
		return "", false
	}
}
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }
func (v Value) Object() (*Object, bool) {
	return v.obj, v.kind == KindObject
}

// Object is an order-preserving string-keyed map. Keys are unique: Set
// overwrites an existing key's value in place without moving it to the end.
type Object struct {
	keys []string
	vals map[string]Value
}

func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

func (o *Object) Len() int { return len(o.keys) }

func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

func (o *Object) Set(key string, v Value) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Delete(key string) {
	if _, exists := o.vals[key]; !exists {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Clone deep-copies the object.
func (o *Object) Clone() *Object {
	clone := NewObject()
	for _, k := range o.keys {
		clone.Set(k, o.vals[k].Clone())
	}
	return clone
}

// Clone deep-copies v, recursing through arrays and objects.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.Clone()
		}
		return Value{kind: KindArray, arr: items}
	case KindObject:
		if v.obj == nil {
			return v
		}
		return FromObject(v.obj.Clone())
	default:
		return v
	}
}

// DecodeOptions controls number classification during Decode.
type DecodeOptions struct {
	// PreferNumericString, when true, keeps every JSON number as
	// KindNumericString rather than classifying it into KindInteger/KindFloat.
	// Used when a caller needs bit-exact round-trip of adapter-supplied
	// numeric tokens it does not intend to do arithmetic on (e.g. memory
	// addresses serialized as numbers larger than i64).
	PreferNumericString bool
}

// Decode parses data as a single JSON value, preserving object key order and
// classifying numbers per opts.
func Decode(data []byte, opts DecodeOptions) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec, opts)
	if err != nil {
		return Value{}, errors.Wrap(err, "jsonvalue: decode")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, opts DecodeOptions) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok, opts)
}

func decodeToken(dec *json.Decoder, tok json.Token, opts DecodeOptions) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return classifyNumber(t, opts), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				item, err := decodeValue(dec, opts)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return Value{kind: KindArray, arr: items}, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, errors.Errorf("jsonvalue: object key token %v is not a string", keyTok)
				}
				val, err := decodeValue(dec, opts)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return FromObject(obj), nil
		default:
			return Value{}, errors.Errorf("jsonvalue: unexpected delimiter %v", t)
		}
	default:
		return Value{}, errors.Errorf("jsonvalue: unexpected token %T", tok)
	}
}

func classifyNumber(n json.Number, opts DecodeOptions) Value {
	if opts.PreferNumericString {
		return NumericString(n.String())
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return Int(i)
	}
	f, err := n.Float64()
	if err != nil {
		// Not representable as int64 or float64 (arbitrary precision token);
		// preserve verbatim rather than losing data.
		return NumericString(n.String())
	}
	return Float(f)
}

// Encode serializes v back to JSON bytes, preserving object key order and
// emitting numeric-string values as their verbatim token.
func (v Value) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, errors.Wrap(err, "jsonvalue: encode")
	}
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInteger:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		buf.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindNumericString:
		buf.WriteString(v.s)
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		if v.obj != nil {
			for i, k := range v.obj.keys {
				if i > 0 {
					buf.WriteByte(',')
				}
				kb, err := json.Marshal(k)
				if err != nil {
					return err
				}
				buf.Write(kb)
				buf.WriteByte(':')
				if err := v.obj.vals[k].appendJSON(buf); err != nil {
					return err
				}
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// MarshalJSON satisfies json.Marshaler, so a Value can sit inside a struct
// that round-trips through encoding/json (e.g. embedding into a
// json.RawMessage field via Encode first).
func (v Value) MarshalJSON() ([]byte, error) { return v.Encode() }

// UnmarshalJSON satisfies json.Unmarshaler using default (non-numeric-string)
// number classification.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data, DecodeOptions{})
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// Path walks a dot-free sequence of object keys, returning ok=false as soon
// as an intermediate value is missing or not an object. This is the
// "structural introspection (get field by path)" contract of spec.md §4.1.
func (v Value) Path(keys ...string) (Value, bool) {
	cur := v
	for _, k := range keys {
		obj, ok := cur.Object()
		if !ok {
			return Value{}, false
		}
		cur, ok = obj.Get(k)
		if !ok {
			return Value{}, false
		}
	}
	return cur, true
}
