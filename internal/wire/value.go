// Package wire implements the RESP2 framing codec: decoding a growing byte
// buffer into records and encoding replies back into bytes.
package wire

import "bytes"

// Kind identifies which of the five RESP2 record shapes a Value holds. Nil
// bulk strings and nil arrays are flagged within KindBulk and KindArray.
type Kind int

const (
	// KindSimple is a "+..." simple string.
	KindSimple Kind = iota
	// KindError is a "-TAG message" error reply.
	KindError
	// KindInteger is a ":<n>" integer reply.
	KindInteger
	// KindBulk is a "$<len>\r\n<bytes>\r\n" bulk string, or a nil bulk ($-1).
	KindBulk
	// KindArray is a "*<n>\r\n..." array, or a nil array (*-1).
	KindArray
)

// Value is a closed sum type over the five RESP2 record kinds.
type Value struct {
	Kind Kind

	Str string // payload for KindSimple

	ErrTag string // short tag for KindError, e.g. "ERR", "WRONGTYPE"
	ErrMsg string // human-readable message for KindError

	Int int64 // payload for KindInteger

	Bulk    []byte // payload for KindBulk; nil together with BulkNil set means $-1
	BulkNil bool

	Array   []Value // payload for KindArray; nil together with ArrayNil means *-1
	ArrayNil bool
}

// Simple returns a simple-string Value.
func Simple(s string) Value { return Value{Kind: KindSimple, Str: s} }

// Err returns a tagged error Value. An empty tag encodes as a bare message,
// matching how Redis renders "-ERR ..." vs certain untagged errors.
func Err(tag, msg string) Value { return Value{Kind: KindError, ErrTag: tag, ErrMsg: msg} }

// Int64 returns an integer Value.
func Int64(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// Bool encodes a boolean as the conventional RESP2 integer 0/1.
func Bool(b bool) Value {
	if b {
		return Int64(1)
	}

	return Int64(0)
}

// Bulk returns a bulk-string Value. A nil slice distinguishes from an empty
// bulk string; use NilBulk() for an explicit $-1.
func Bulk(b []byte) Value {
	if b == nil {
		return Value{Kind: KindBulk, BulkNil: true}
	}

	return Value{Kind: KindBulk, Bulk: b}
}

// BulkString is a convenience wrapper around Bulk for string payloads.
func BulkString(s string) Value { return Bulk([]byte(s)) }

// NilBulk returns the RESP2 nil bulk string ($-1).
func NilBulk() Value { return Value{Kind: KindBulk, BulkNil: true} }

// Array returns an array Value. A nil slice encodes as an empty array; use
// NilArray() for an explicit *-1.
func Array(vs []Value) Value {
	if vs == nil {
		vs = []Value{}
	}

	return Value{Kind: KindArray, Array: vs}
}

// NilArray returns the RESP2 nil array (*-1).
func NilArray() Value { return Value{Kind: KindArray, ArrayNil: true} }

// BulkArray builds an array of bulk strings, the shape every client command
// and every AOF record takes.
func BulkArray(items ...[]byte) Value {
	vs := make([]Value, len(items))
	for i, it := range items {
		vs[i] = Bulk(it)
	}

	return Array(vs)
}

// IsNil reports whether the value is a nil bulk string or nil array.
func (v Value) IsNil() bool {
	return (v.Kind == KindBulk && v.BulkNil) || (v.Kind == KindArray && v.ArrayNil)
}

// Equal reports deep equality between two Values, used by codec round-trip tests.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}

	switch v.Kind {
	case KindSimple:
		return v.Str == o.Str
	case KindError:
		return v.ErrTag == o.ErrTag && v.ErrMsg == o.ErrMsg
	case KindInteger:
		return v.Int == o.Int
	case KindBulk:
		if v.BulkNil != o.BulkNil {
			return false
		}

		return bytes.Equal(v.Bulk, o.Bulk)
	case KindArray:
		if v.ArrayNil != o.ArrayNil {
			return false
		}

		if len(v.Array) != len(o.Array) {
			return false
		}

		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// StringArgs extracts a command's arguments as [][]byte, assuming the Value
// is an array of bulk strings (the only shape a command may take on the wire).
func (v Value) StringArgs() ([][]byte, bool) {
	if v.Kind != KindArray || v.ArrayNil {
		return nil, false
	}

	out := make([][]byte, len(v.Array))

	for i, item := range v.Array {
		if item.Kind != KindBulk || item.BulkNil {
			return nil, false
		}

		out[i] = item.Bulk
	}

	return out, true
}
