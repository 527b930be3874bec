package core

import (
	"bytes"
	"sort"
	"strconv"
)

// Params is a task's named parameter bag.
//
// Values must be plain data: strings, bools, integers, floats, sequences of
// those, or nested string-keyed maps. Canonicalization normalizes every
// representation of the same value to the same bytes (fixed-size tuples and
// slices encode identically, map keys are sorted, integer widths collapse)
// so that two tasks constructed with equal parameters always share an
// identity. Anything else (pointers, channels, structs) is rejected with
// ErrInvalidParameter: parameter values must behave as value types.
type Params map[string]any

// Clone returns a shallow copy. Values are expected to be immutable.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Canonical returns the deterministic byte encoding of the parameter bag.
//
// Encoding rules:
//   - every field is length-prefixed (8-byte big-endian) to avoid ambiguity
//   - each value carries a one-byte type marker before its payload
//   - maps (including the bag itself) are encoded in sorted key order
//   - sequences keep their order; a [3]int and a []int with the same
//     elements encode identically
func (p Params) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeMap(&buf, map[string]any(p)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	markString = 's'
	markBool   = 'b'
	markInt    = 'i'
	markFloat  = 'f'
	markList   = 'l'
	markMap    = 'm'
)

func writeField(buf *bytes.Buffer, data []byte) {
	length := uint64(len(data))
	buf.Write([]byte{
		byte(length >> 56),
		byte(length >> 48),
		byte(length >> 40),
		byte(length >> 32),
		byte(length >> 24),
		byte(length >> 16),
		byte(length >> 8),
		byte(length),
	})
	buf.Write(data)
}

func encodeMap(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte(markMap)
	writeField(buf, []byte(strconv.Itoa(len(keys))))
	for _, k := range keys {
		writeField(buf, []byte(k))
		if err := encodeValue(buf, k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func encodeList(buf *bytes.Buffer, name string, values []any) error {
	buf.WriteByte(markList)
	writeField(buf, []byte(strconv.Itoa(len(values))))
	for _, v := range values {
		if err := encodeValue(buf, name, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeValue(buf *bytes.Buffer, name string, v any) error {
	switch val := v.(type) {
	case string:
		buf.WriteByte(markString)
		writeField(buf, []byte(val))
	case bool:
		buf.WriteByte(markBool)
		if val {
			writeField(buf, []byte{1})
		} else {
			writeField(buf, []byte{0})
		}
	case int:
		encodeInt(buf, int64(val))
	case int32:
		encodeInt(buf, int64(val))
	case int64:
		encodeInt(buf, val)
	case float32:
		encodeFloat(buf, float64(val))
	case float64:
		encodeFloat(buf, val)
	case [2]int:
		return encodeList(buf, name, []any{val[0], val[1]})
	case [3]int:
		return encodeList(buf, name, []any{val[0], val[1], val[2]})
	case [3]float64:
		return encodeList(buf, name, []any{val[0], val[1], val[2]})
	case []int:
		items := make([]any, len(val))
		for i, x := range val {
			items[i] = x
		}
		return encodeList(buf, name, items)
	case []float64:
		items := make([]any, len(val))
		for i, x := range val {
			items[i] = x
		}
		return encodeList(buf, name, items)
	case []string:
		items := make([]any, len(val))
		for i, x := range val {
			items[i] = x
		}
		return encodeList(buf, name, items)
	case []any:
		return encodeList(buf, name, val)
	case map[string]any:
		return encodeMap(buf, val)
	case Params:
		return encodeMap(buf, map[string]any(val))
	case nil:
		return InvalidParameterf("parameter %q is nil", name)
	default:
		return InvalidParameterf("parameter %q has unsupported type %T", name, v)
	}
	return nil
}

func encodeInt(buf *bytes.Buffer, v int64) {
	buf.WriteByte(markInt)
	writeField(buf, []byte(strconv.FormatInt(v, 10)))
}

func encodeFloat(buf *bytes.Buffer, v float64) {
	// Integral floats collapse to the integer encoding so values that pass
	// through YAML or JSON (which may widen 7 to 7.0) keep their identity.
	if v == float64(int64(v)) {
		encodeInt(buf, int64(v))
		return
	}
	buf.WriteByte(markFloat)
	writeField(buf, []byte(strconv.FormatFloat(v, 'g', -1, 64)))
}
