package log

import "gopkg.in/Sirupsen/logrus.v0"

// EntryZ is a chain-style log entry. Calls like Hex16 buffer a field without
// formatting it; nothing is assembled into a logrus.Fields or written out
// until End() is called, so a disabled level costs only the nil check in
// Module.logz.
type EntryZ struct {
	mod Module
	lvl Level
	msg string

	buf [8]zfield
	n   int
}

func newEntryZ() *EntryZ {
	return &EntryZ{}
}

func (e *EntryZ) push(f zfield) *EntryZ {
	if e == nil {
		return nil
	}
	if e.n < len(e.buf) {
		e.buf[e.n] = f
		e.n++
	}
	return e
}

func (e *EntryZ) Hex8(key string, v uint8) *EntryZ {
	return e.push(zfield{typ: fieldHex8, key: key, num: uint64(v)})
}

func (e *EntryZ) Hex16(key string, v uint16) *EntryZ {
	return e.push(zfield{typ: fieldHex16, key: key, num: uint64(v)})
}

func (e *EntryZ) Hex32(key string, v uint32) *EntryZ {
	return e.push(zfield{typ: fieldHex32, key: key, num: uint64(v)})
}

func (e *EntryZ) Str(key, v string) *EntryZ {
	return e.push(zfield{typ: fieldString, key: key, str: v})
}

func (e *EntryZ) Err(key string, v error) *EntryZ {
	return e.push(zfield{typ: fieldError, key: key, err: v})
}

func (e *EntryZ) Bool(key string, v bool) *EntryZ {
	return e.push(zfield{typ: fieldBool, key: key, bl: v})
}

func (e *EntryZ) Uint(key string, v uint64) *EntryZ {
	return e.push(zfield{typ: fieldUint, key: key, num: v})
}

func (e *EntryZ) Int(key string, v int64) *EntryZ {
	return e.push(zfield{typ: fieldInt, key: key, num: uint64(v)})
}

func (e *EntryZ) Blob(key string, v []byte) *EntryZ {
	return e.push(zfield{typ: fieldBlob, key: key, blob: v})
}

// End flushes the buffered fields to the logrus backend. It is a no-op on a
// nil receiver, which is what ModXZ(...) returns when the level is disabled.
func (e *EntryZ) End() {
	if e == nil {
		return
	}
	fields := make(logrus.Fields, e.n+1)
	fields["mod"] = e.mod.String()
	for i := 0; i < e.n; i++ {
		fields[e.buf[i].key] = e.buf[i].value()
	}
	entry := logrus.StandardLogger().WithFields(fields)
	switch e.lvl {
	case DebugLevel:
		entry.Debug(e.msg)
	case InfoLevel:
		entry.Info(e.msg)
	case WarnLevel:
		entry.Warn(e.msg)
	case ErrorLevel:
		entry.Error(e.msg)
	case FatalLevel:
		entry.Fatal(e.msg)
	case PanicLevel:
		entry.Panic(e.msg)
	}
}
