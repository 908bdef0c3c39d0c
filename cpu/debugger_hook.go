package cpu

// Debugger observes and can halt a running CPU. The engine calls into it on
// every bus access and at a handful of named events; the debugger package
// implements this interface so that cpu never imports debugger.
type Debugger interface {
	// OnAccess is called before (exec) or as part of (read/write) a bus
	// transaction. Returning a non-empty hit name with stop=true tells the
	// engine to return control to the debugger loop instead of finishing
	// the step.
	OnAccess(kind AccessKind, addr uint16, c *CPU) (hit string, stop bool)

	// OnInterrupt is called once an NMI or IRQ has been serviced (the
	// vector has been loaded into PC). Returning a non-empty hit name with
	// stop=true tells the engine to return control to the debugger loop.
	OnInterrupt(prevPC, curPC uint16, isNMI bool) (hit string, stop bool)

	// OnInvalidOpcode is called before InvalidOpcode is returned to the
	// host, in case the debugger wants to log or break instead of abort.
	OnInvalidOpcode(opcode uint8, pc uint16)
}

// nopDebugger is attached by default; none of its hooks ever stop the CPU.
type nopDebugger struct{}

func (nopDebugger) OnAccess(AccessKind, uint16, *CPU) (string, bool) { return "", false }
func (nopDebugger) OnInterrupt(uint16, uint16, bool) (string, bool)  { return "", false }
func (nopDebugger) OnInvalidOpcode(uint8, uint16)                    {}
