package cpu

import (
	"github.com/go-faster/errors"

	"mos65/log"
)

// Vector addresses, little-endian, consulted on reset/NMI/IRQ.
const (
	NMIVector   = 0xFFFA
	ResetVector = 0xFFFC
	IRQVector   = 0xFFFE
)

// CPU is the canonical 6502/65C02 register file plus everything the
// execution engine needs to step it: the bus it reads/writes through, the
// attached debugger hook, and an optional host callback.
type CPU struct {
	bus Bus

	A, X, Y, S uint8
	PC         uint16
	P          P
	Cycles     uint64

	Variant Variant

	pendingNMI bool
	pendingIRQ bool
	waiting    bool // WAI: halted until an interrupt is latched
	stopped    bool // STP: halted until an external Reset

	dbg      Debugger
	callback Callback

	stopFlag bool // polled between steps; set externally to cancel Run
}

// New creates a CPU at power-up register values, bound to bus. The variant
// defaults to MOS6502; call SetVariant before the first Reset to change it.
func New(bus Bus) *CPU {
	return &CPU{
		bus:     bus,
		S:       0xFD,
		dbg:     nopDebugger{},
		Variant: MOS6502,
	}
}

// SetDebugger attaches a Debugger; a nil argument restores the no-op
// default.
func (c *CPU) SetDebugger(dbg Debugger) {
	if dbg == nil {
		dbg = nopDebugger{}
	}
	c.dbg = dbg
}

// SetCallback registers the host's structured-event sink. A nil callback
// disables event delivery.
func (c *CPU) SetCallback(cb Callback) { c.callback = cb }

// SetVariant switches opcode table and BCD behavior. Only safe to call
// immediately before Reset: switching mid-run can leave PC pointing at a
// slot that decodes differently on the other variant.
func (c *CPU) SetVariant(v Variant) { c.Variant = v }

// Stop requests that Run return at the next step boundary.
func (c *CPU) Stop() { c.stopFlag = true }

// Bus returns the attached bus, for hosts and the debugger that need direct
// memory access outside the CPU's own read/write path.
func (c *CPU) Bus() Bus { return c.bus }

func (c *CPU) emit(ev CallbackEvent) {
	if c.callback != nil {
		c.callback(ev)
	}
}

// Reset sets A=X=Y=0, S=0xFD, P=0x24, cycles=7, clears latched interrupts,
// and loads PC either from startAddr or from the reset vector.
func (c *CPU) Reset(startAddr *uint16) error {
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0xFD
	c.P = 0x24
	c.Cycles = 7
	c.pendingNMI = false
	c.pendingIRQ = false
	c.waiting = false
	c.stopped = false

	if startAddr != nil {
		c.PC = *startAddr
	} else {
		pc, err := c.read16Checked(ResetVector)
		if err != nil {
			return err
		}
		c.PC = pc
	}
	c.emit(CallbackEvent{Kind: EventReset})
	log.ModCPU.InfoZ("reset").Hex16("pc", c.PC).End()
	return nil
}

// RequestNMI latches a non-maskable interrupt, edge-triggered: it fires
// once per assertion regardless of how many steps pass before it's
// serviced.
func (c *CPU) RequestNMI() { c.pendingNMI = true }

// RequestIRQ asserts the level-triggered IRQ line. It stays pending until
// serviced; servicing itself is inhibited while I=1.
func (c *CPU) RequestIRQ() { c.pendingIRQ = true }

// ClearIRQ deasserts the IRQ line, e.g. once the device that raised it has
// been acknowledged.
func (c *CPU) ClearIRQ() { c.pendingIRQ = false }

// Run steps the CPU until cyclesBudget cycles have elapsed (0 means
// unbounded), a breakpoint returns control, or an error aborts the run.
// One instruction is always allowed to complete before the budget is
// rechecked, matching "one instruction = one step".
func (c *CPU) Run(cyclesBudget uint64) error {
	start := c.Cycles
	for {
		if c.stopFlag {
			c.stopFlag = false
			return nil
		}
		if cyclesBudget > 0 && c.Cycles-start >= cyclesBudget {
			return nil
		}
		stop, err := c.Step()
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// Step executes exactly one instruction (or services one interrupt, or
// advances a halted WAI/STP state) and returns whether the debugger asked
// to stop or the CPU is halted by STP.
func (c *CPU) Step() (stop bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*debuggerStop); ok {
				stop = true
				return
			}
			if e, ok := r.(error); ok {
				if _, isMem := e.(*MemoryAccessError); isMem {
					err = wrapCpuError(e, c.PC)
					return
				}
				err = e
				return
			}
			panic(r)
		}
	}()

	if c.stopped {
		return true, nil
	}

	if c.pendingNMI {
		c.pendingNMI = false
		c.serviceInterrupt(NMIVector, true)
		return false, nil
	}
	if c.pendingIRQ && !c.P.I() {
		c.serviceInterrupt(IRQVector, false)
		return false, nil
	}

	if c.waiting {
		if !c.pendingIRQ {
			// WAI: nothing to do until an interrupt line is asserted again.
			return false, nil
		}
		// An IRQ masked by I=1 still ends WAI; execution continues with the
		// next instruction without servicing it.
		c.waiting = false
	}

	if hit, doStop := c.dbg.OnAccess(AccessExec, c.PC, c); hit != "" {
		_ = hit
		if doStop {
			return true, nil
		}
	}

	pc := c.PC
	opcode := c.fetchOpcode()
	desc := Table(c.Variant)[opcode]
	if !desc.Valid {
		c.emit(CallbackEvent{Kind: EventInvalidOpcode, Opcode: opcode})
		c.dbg.OnInvalidOpcode(opcode, pc)
		if other := Table(c.Variant.other())[opcode]; other.Valid && other.Mnemonic != "NOP" {
			return false, &InvalidVariantOpcodeError{Opcode: opcode, PC: pc, Variant: c.Variant}
		}
		return false, &InvalidOpcodeError{Opcode: opcode, PC: pc}
	}

	c.execute(desc, pc)
	return false, nil
}

func (c *CPU) fetchOpcode() uint8 {
	v, err := c.bus.Read8(c.PC)
	if err != nil {
		panic(err)
	}
	c.emit(CallbackEvent{Kind: EventExec, Addr: c.PC, Opcode: v})
	c.PC++
	return v
}

// read performs a tagged, debugger-visible memory read. Cycle accounting is
// centralized in execute, driven by the opcode descriptor, rather than
// ticked per bus access.
func (c *CPU) read(addr uint16) uint8 {
	v, err := c.bus.Read8(addr)
	if err != nil {
		panic(err)
	}
	if hit, stop := c.dbg.OnAccess(AccessRead, addr, c); hit != "" && stop {
		panic(&debuggerStop{})
	}
	c.emit(CallbackEvent{Kind: EventRead, Addr: addr, Value: v})
	return v
}

// write performs a tagged, debugger-visible memory write.
func (c *CPU) write(addr uint16, v uint8) {
	if err := c.bus.Write8(addr, v); err != nil {
		panic(err)
	}
	if hit, stop := c.dbg.OnAccess(AccessWrite, addr, c); hit != "" && stop {
		panic(&debuggerStop{})
	}
	c.emit(CallbackEvent{Kind: EventWrite, Addr: addr, Value: v})
}

// debuggerStop is panicked by read/write when a watchpoint asks to halt
// mid-instruction; Step recovers it and reports a clean stop rather than an
// error.
type debuggerStop struct{}

func (c *CPU) read16Checked(addr uint16) (uint16, error) {
	lo, err := c.bus.Read8(addr)
	if err != nil {
		return 0, err
	}
	hi, err := c.bus.Read8(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) push8(v uint8) {
	c.write(0x0100|uint16(c.S), v)
	c.S--
}

func (c *CPU) pull8() uint8 {
	c.S++
	return c.read(0x0100 | uint16(c.S))
}

func (c *CPU) push16(v uint16) {
	c.push8(uint8(v >> 8))
	c.push8(uint8(v))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

// serviceInterrupt implements the shared NMI/IRQ sequence: push PC, push P
// with B=0/bit5=1, set I, load the vector. Latency is 7 cycles end to end,
// modeled here as a flat addition rather than cycle-by-cycle bus noise.
func (c *CPU) serviceInterrupt(vector uint16, isNMI bool) {
	prevPC := c.PC
	c.waiting = false

	c.push16(c.PC)
	p := c.P
	p.writeBit(FlagB, false)
	p.writeBit(FlagU, true)
	c.push8(uint8(p))
	c.P.writeBit(FlagI, true)

	addr, err := c.read16Checked(vector)
	if err != nil {
		panic(err)
	}
	c.PC = addr
	c.Cycles += 7

	if isNMI {
		c.emit(CallbackEvent{Kind: EventNmi})
		log.ModCPU.DebugZ("nmi serviced").Hex16("pc", c.PC).End()
	} else {
		c.emit(CallbackEvent{Kind: EventIrq})
		log.ModCPU.DebugZ("irq serviced").Hex16("pc", c.PC).End()
	}

	if hit, stop := c.dbg.OnInterrupt(prevPC, c.PC, isNMI); hit != "" && stop {
		panic(&debuggerStop{})
	}
}

// wrapCpuError gives go-faster/errors a chance to annotate a bus error with
// the instruction context before it reaches the host.
func wrapCpuError(err error, pc uint16) error {
	return errors.Wrapf(err, "at PC=$%04X", pc)
}
