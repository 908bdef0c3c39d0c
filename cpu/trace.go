package cpu

import (
	"io"

	"github.com/go-faster/jx"
)

// JSONTraceWriter turns a stream of CallbackEvents into JSON Lines, one
// object per event, suitable for piping to a file a host analyzes offline.
type JSONTraceWriter struct {
	out io.Writer
}

// NewJSONTraceWriter wraps out; Callback() returns the Callback to register
// with CPU.SetCallback.
func NewJSONTraceWriter(out io.Writer) *JSONTraceWriter {
	return &JSONTraceWriter{out: out}
}

// Callback adapts the writer to the cpu.Callback signature. Each call
// encodes one event and appends a newline, so the output file is valid
// JSON Lines.
func (t *JSONTraceWriter) Callback() Callback {
	return func(ev CallbackEvent) {
		var w jx.Writer
		ev.EncodeJSON(&w)
		w.Buf = append(w.Buf, '\n')
		_, _ = t.out.Write(w.Buf)
	}
}
