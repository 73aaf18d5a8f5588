package bser

import (
	"bytes"
	"math"
)

// Value is one decoded BSER value. The zero Value is invalid; use Null() for
// an explicit null.
//
// Values produced by Loads own all of their memory unless the Reader that
// produced them had zero-copy enabled, in which case bytestrings and object
// keys alias the input buffer.
type Value struct {
	typ Type
	n   uint64 // bool, int64 or float64 bits
	b   []byte
	arr []Value
	obj *Object
}

// Null returns the null value.
func Null() Value { return Value{typ: NullType} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{typ: BoolType, n: n}
}

// Int returns an integer value.
func Int(v int64) Value { return Value{typ: IntType, n: uint64(v)} }

// Real returns a real value.
func Real(v float64) Value { return Value{typ: RealType, n: math.Float64bits(v)} }

// Bytestring returns a bytestring value that holds b without copying it.
func Bytestring(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{typ: BytestringType, b: b}
}

// String returns a bytestring value holding the bytes of s.
func String(s string) Value { return Value{typ: BytestringType, b: []byte(s)} }

// Array returns an array value holding vs.
func Array(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{typ: ArrayType, arr: vs}
}

// ObjectValue returns an object value. A nil o is an empty object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject(0)
	}
	return Value{typ: ObjectType, obj: o}
}

// Type returns the kind of v. Templates decode to ArrayType.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.typ == NullType }

// Bool returns the boolean held by v and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.n != 0, v.typ == BoolType }

// Int returns the integer held by v and whether v is an integer.
func (v Value) Int() (int64, bool) {
	if v.typ != IntType {
		return 0, false
	}
	return int64(v.n), true
}

// Real returns the real held by v and whether v is a real.
func (v Value) Real() (float64, bool) {
	if v.typ != RealType {
		return 0, false
	}
	return math.Float64frombits(v.n), true
}

// Bytes returns the bytestring held by v and whether v is a bytestring.
func (v Value) Bytes() ([]byte, bool) {
	if v.typ != BytestringType {
		return nil, false
	}
	return v.b, true
}

// Array returns the elements held by v and whether v is an array.
func (v Value) Array() ([]Value, bool) {
	if v.typ != ArrayType {
		return nil, false
	}
	return v.arr, true
}

// Object returns the object held by v and whether v is an object.
func (v Value) Object() (*Object, bool) {
	if v.typ != ObjectType {
		return nil, false
	}
	return v.obj, true
}

// Interface converts v to plain Go values: nil, bool, int64, float64,
// []byte, []any and map[string]any. Object key order is not preserved.
func (v Value) Interface() any {
	switch v.typ {
	case BoolType:
		return v.n != 0
	case IntType:
		return int64(v.n)
	case RealType:
		return math.Float64frombits(v.n)
	case BytestringType:
		return v.b
	case ArrayType:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case ObjectType:
		out := make(map[string]any, v.obj.Len())
		for _, p := range v.obj.pairs {
			out[string(p.Key)] = p.Value.Interface()
		}
		return out
	}
	return nil
}

// Equal reports whether v and o hold the same tree. Object key order matters
// and reals compare by bit pattern, so NaN equals itself.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case BytestringType:
		return bytes.Equal(v.b, o.b)
	case ArrayType:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case ObjectType:
		return v.obj.Equal(o.obj)
	}
	return v.n == o.n
}

// String renders v in diagnostic notation.
func (v Value) String() string {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	diagValue(bb, v)
	return string(bb.Bytes())
}

// Pair is one key/value entry of an Object.
type Pair struct {
	Key   []byte
	Value Value
}

// Object is an ordered mapping from bytestring keys to values. Keys are
// unique; setting an existing key replaces its value in place.
//
// Small objects are searched linearly. The key index is only built once an
// object grows past objectIndexMin pairs.
type Object struct {
	pairs []Pair
	index map[string]int
}

const objectIndexMin = 8

// NewObject returns an empty object with room for n pairs.
func NewObject(n int) *Object {
	return &Object{pairs: make([]Pair, 0, n)}
}

// Set stores a copy of key with v. A key that is already present keeps its
// position and takes the new value.
func (o *Object) Set(key []byte, v Value) {
	o.set(bytes.Clone(key), v)
}

// set is Set without the key copy. key must not be modified afterwards; the
// index aliases it.
func (o *Object) set(key []byte, v Value) {
	if i := o.find(UnsafeString(key)); i >= 0 {
		o.pairs[i].Value = v
		return
	}
	o.pairs = append(o.pairs, Pair{Key: key, Value: v})
	switch {
	case o.index != nil:
		o.index[UnsafeString(key)] = len(o.pairs) - 1
	case len(o.pairs) > objectIndexMin:
		o.index = make(map[string]int, len(o.pairs))
		for i, p := range o.pairs {
			o.index[UnsafeString(p.Key)] = i
		}
	}
}

// find returns the position of key, or -1.
func (o *Object) find(key string) int {
	if o.index != nil {
		if i, ok := o.index[key]; ok {
			return i
		}
		return -1
	}
	for i := range o.pairs {
		if string(o.pairs[i].Key) == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i := o.find(key)
	if i < 0 {
		return Value{}, false
	}
	return o.pairs[i].Value, true
}

// Len returns the number of pairs.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.pairs)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	for _, p := range o.Pairs() {
		keys = append(keys, string(p.Key))
	}
	return keys
}

// Pairs returns the pairs in insertion order. Neither the slice nor the keys
// may be modified: keys can be shared between objects or alias the input.
func (o *Object) Pairs() []Pair {
	if o == nil {
		return nil
	}
	return o.pairs
}

// Range calls fn for each pair in insertion order until fn returns false.
func (o *Object) Range(fn func(key []byte, v Value) bool) {
	for _, p := range o.Pairs() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// Equal reports whether o and p hold the same pairs in the same order.
func (o *Object) Equal(p *Object) bool {
	if o.Len() != p.Len() {
		return false
	}
	op, pp := o.Pairs(), p.Pairs()
	for i := range op {
		if !bytes.Equal(op[i].Key, pp[i].Key) || !op[i].Value.Equal(pp[i].Value) {
			return false
		}
	}
	return true
}
