package jsonvalue

import "github.com/pkg/errors"

// MergeAt composes caller-supplied overrides into root: descend root
// along path (creating empty objects for any missing intermediate segment),
// then set every key of overrides into the object found/created there,
// overwriting any key overrides also supplies. root is not mutated; a new
// Value is returned.
//
// This is how a caller's opaque launch/attach configuration (spec.md §6.3)
// gets merged into a DAP request's "arguments" object without the core
// hardcoding the launch config's schema.
func MergeAt(root Value, path []string, overrides *Object) (Value, error) {
	if overrides == nil || overrides.Len() == 0 {
		return root.Clone(), nil
	}
	return mergeAt(root.Clone(), path, overrides)
}

func mergeAt(cur Value, path []string, overrides *Object) (Value, error) {
	if len(path) == 0 {
		obj, ok := cur.Object()
		if !ok {
			if cur.IsNull() {
				obj = NewObject()
			} else {
				return Value{}, errors.Errorf("jsonvalue: merge target is a %s, not an object", cur.Kind())
			}
		}
		merged := obj.Clone()
		for _, k := range overrides.Keys() {
			v, _ := overrides.Get(k)
			merged.Set(k, v)
		}
		return FromObject(merged), nil
	}

	head, rest := path[0], path[1:]
	obj, ok := cur.Object()
	if !ok {
		if !cur.IsNull() {
			return Value{}, errors.Errorf("jsonvalue: merge path segment %q: parent is a %s, not an object", head, cur.Kind())
		}
		obj = NewObject()
	} else {
		obj = obj.Clone()
	}
	child, _ := obj.Get(head)
	mergedChild, err := mergeAt(child, rest, overrides)
	if err != nil {
		return Value{}, err
	}
	obj.Set(head, mergedChild)
	return FromObject(obj), nil
}

// FromAny converts a plain Go value (as produced by an INI/JSON config
// reader: map[string]any, []any, string, bool, nil, and numeric primitives)
// into a Value tree. It is the entry point a configuration collaborator
// uses to hand the core a launch configuration object (spec.md §6.3)
// without that collaborator depending on this package's internals.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Array(items...)
	case map[string]any:
		obj := NewObject()
		for k, item := range t {
			obj.Set(k, FromAny(item))
		}
		return FromObject(obj)
	default:
		return Null()
	}
}

// ToAny converts a Value back into plain Go types (map[string]any, []any,
// string, bool, int64, float64, nil), the inverse of FromAny. Used when a
// jsonvalue tree needs to cross into code that only understands encoding/json
// native types (e.g. logging a field with slog.Any).
func (v Value) ToAny() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindNumericString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		for _, k := range v.obj.Keys() {
			val, _ := v.obj.Get(k)
			out[k] = val.ToAny()
		}
		return out
	default:
		return nil
	}
}
