package cpu

import "github.com/go-faster/jx"

// EventKind enumerates the callback surface the engine raises. A host that
// wants a structured trace file registers a Callback and gets one call per
// event, synchronously, on the CPU's own goroutine.
type EventKind int

const (
	EventRead EventKind = iota
	EventWrite
	EventExec
	EventReset
	EventIrq
	EventNmi
	EventInvalidOpcode
	EventTrap
)

func (k EventKind) String() string {
	switch k {
	case EventRead:
		return "read"
	case EventWrite:
		return "write"
	case EventExec:
		return "exec"
	case EventReset:
		return "reset"
	case EventIrq:
		return "irq"
	case EventNmi:
		return "nmi"
	case EventInvalidOpcode:
		return "invalid_opcode"
	case EventTrap:
		return "trap"
	default:
		return "?"
	}
}

// CallbackEvent is the value passed to a registered Callback. Addr is
// meaningful for Read/Write/Exec/Trap, Value for Read/Write; Opcode is
// meaningful for Exec and InvalidOpcode.
type CallbackEvent struct {
	Kind   EventKind
	Addr   uint16
	Value  uint8
	Opcode uint8
}

// Callback is invoked synchronously on the CPU's goroutine. It must not
// re-enter the CPU; behavior is undefined if it does.
type Callback func(CallbackEvent)

// EncodeJSON renders the event as a single JSON object, for a host that
// wants to pipe a structured trace to a file: one Callback writing each
// event through jx.Writer produces JSON Lines without per-event allocation.
func (e CallbackEvent) EncodeJSON(w *jx.Writer) {
	w.ObjStart()
	w.FieldStart("kind")
	w.Str(e.Kind.String())
	w.FieldStart("addr")
	w.UInt32(uint32(e.Addr))
	w.FieldStart("value")
	w.UInt32(uint32(e.Value))
	w.FieldStart("opcode")
	w.UInt32(uint32(e.Opcode))
	w.ObjEnd()
}
