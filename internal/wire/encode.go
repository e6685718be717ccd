package wire

import (
	"io"
	"strconv"
)

// Encode writes v's RESP2 wire representation to w.
func (v Value) Encode(w io.Writer) error {
	buf := make([]byte, 0, 64)
	buf = v.appendTo(buf)
	_, err := w.Write(buf)

	return err
}

// Bytes returns v's RESP2 wire representation.
func (v Value) Bytes() []byte {
	return v.appendTo(make([]byte, 0, 64))
}

func (v Value) appendTo(buf []byte) []byte {
	switch v.Kind {
	case KindSimple:
		buf = append(buf, '+')
		buf = append(buf, v.Str...)
		buf = append(buf, '\r', '\n')
	case KindError:
		buf = append(buf, '-')

		if v.ErrTag != "" {
			buf = append(buf, v.ErrTag...)
			buf = append(buf, ' ')
		}

		buf = append(buf, v.ErrMsg...)
		buf = append(buf, '\r', '\n')
	case KindInteger:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, v.Int, 10)
		buf = append(buf, '\r', '\n')
	case KindBulk:
		if v.BulkNil {
			buf = append(buf, '$', '-', '1', '\r', '\n')
			break
		}

		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(v.Bulk)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, v.Bulk...)
		buf = append(buf, '\r', '\n')
	case KindArray:
		if v.ArrayNil {
			buf = append(buf, '*', '-', '1', '\r', '\n')
			break
		}

		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(v.Array)), 10)
		buf = append(buf, '\r', '\n')

		for _, item := range v.Array {
			buf = item.appendTo(buf)
		}
	}

	return buf
}
