package log

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

type fieldType int

const (
	fieldUnknown fieldType = iota
	fieldBool
	fieldString
	fieldHex8
	fieldHex16
	fieldHex32
	fieldInt
	fieldUint
	fieldError
	fieldBlob
)

// zfield is one key/value pair buffered in an EntryZ chain. Only the member
// matching Type is populated.
type zfield struct {
	typ fieldType
	key string

	str  string
	num  uint64
	err  error
	bl   bool
	blob []byte
}

func (f *zfield) value() string {
	switch f.typ {
	case fieldBool:
		if f.bl {
			return "true"
		}
		return "false"
	case fieldString:
		return f.str
	case fieldUint:
		return strconv.FormatUint(f.num, 10)
	case fieldInt:
		return strconv.FormatInt(int64(f.num), 10)
	case fieldHex8:
		return fmt.Sprintf("%02x", uint8(f.num))
	case fieldHex16:
		return fmt.Sprintf("%04x", uint16(f.num))
	case fieldHex32:
		return fmt.Sprintf("%08x", uint32(f.num))
	case fieldError:
		if f.err == nil {
			return "<nil>"
		}
		return f.err.Error()
	case fieldBlob:
		return hex.Dump(f.blob)
	}
	return ""
}
