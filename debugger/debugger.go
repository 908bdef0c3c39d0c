// Package debugger implements the conditional-breakpoint engine and
// command grammar that sits on top of package cpu. It never imports cpu in
// a way that would create a cycle the other direction: cpu only knows
// about debugger through the cpu.Debugger hook interface, which this
// package implements.
package debugger

import (
	"io"
	"strconv"

	"mos65/config"
	"mos65/cpu"
	"mos65/log"
)

// Mode is the debugger's run state.
type Mode int

const (
	ModeHalted Mode = iota
	ModeRunning
	ModeStepping
)

// Debugger holds breakpoints, symbols, and stepping state for one CPU. It
// implements cpu.Debugger so the engine can call into it on every access.
type Debugger struct {
	CPU *cpu.CPU
	Out io.Writer

	breakpoints []*Breakpoint
	nextID      int

	symbols map[string]uint16

	mode Mode

	showRegsBeforeOp bool
	cpuLogEnabled    bool

	lastHit string
	variant cpu.Variant

	asmActive bool
	asmBuf    asmState

	runErr error
}

// LastError is the error (if any) that aborted the most recent "g" run.
// An embedding CLI consults this to pick its exit code.
func (d *Debugger) LastError() error { return d.runErr }

// ApplyConfig installs one breakpoint from a loaded Config's startup list.
func (d *Debugger) ApplyConfig(bc config.BreakpointConfig) {
	var conds []Condition
	for reg, val := range bc.Conditions {
		if r, ok := condRegFromName(reg); ok {
			conds = append(conds, Condition{Reg: r, Value: val})
		}
	}
	bp := d.addBreakpoint(parseKindName(bc.Kind), bc.Address, conds)
	bp.Enabled = bc.Enabled
}

// New creates a Debugger bound to c, attached via c.SetDebugger.
func New(c *cpu.CPU, out io.Writer) *Debugger {
	d := &Debugger{
		CPU:     c,
		Out:     out,
		symbols: map[string]uint16{},
		nextID:  1,
		mode:    ModeHalted,
	}
	c.SetDebugger(d)
	return d
}

// OnAccess implements cpu.Debugger: it evaluates every enabled breakpoint
// against the access and returns the first hit.
func (d *Debugger) OnAccess(kind cpu.AccessKind, addr uint16, c *cpu.CPU) (string, bool) {
	snap := snapshotOf(c)
	for _, bp := range d.breakpoints {
		if bp.Fires(kind, addr, snap) {
			d.lastHit = bp.label()
			if d.cpuLogEnabled {
				log.ModDbg.InfoZ("breakpoint hit").Int("id", int64(bp.ID)).Hex16("addr", addr).End()
			}
			return d.lastHit, true
		}
	}
	return "", false
}

// OnInterrupt implements cpu.Debugger: it fires nmi/irq-kind breakpoints
// against the interrupt actually being serviced, and can ask the engine to
// stop.
func (d *Debugger) OnInterrupt(prevPC, curPC uint16, isNMI bool) (string, bool) {
	if d.cpuLogEnabled {
		log.ModDbg.InfoZ("interrupt").Hex16("from", prevPC).Hex16("to", curPC).Bool("nmi", isNMI).End()
	}
	snap := snapshotOf(d.CPU)
	for _, bp := range d.breakpoints {
		if bp.FiresOnInterrupt(isNMI, snap) {
			d.lastHit = bp.label()
			if d.cpuLogEnabled {
				log.ModDbg.InfoZ("breakpoint hit").Int("id", int64(bp.ID)).End()
			}
			return d.lastHit, true
		}
	}
	return "", false
}

// OnInvalidOpcode implements cpu.Debugger.
func (d *Debugger) OnInvalidOpcode(opcode uint8, pc uint16) {
	log.ModDbg.WarnZ("invalid opcode").Hex8("opcode", opcode).Hex16("pc", pc).End()
}

// label identifies bp by its stable ID, the form lastHit and cmdGo's
// "stopped:" message report back to the user.
func (bp *Breakpoint) label() string {
	return strconv.Itoa(bp.ID)
}

// addBreakpoint assigns the next ID and appends bp to the table.
func (d *Debugger) addBreakpoint(kind Kind, addr uint16, conds []Condition) *Breakpoint {
	bp := &Breakpoint{ID: d.nextID, Kind: kind, Address: addr, Conditions: conds, Enabled: true}
	d.nextID++
	d.breakpoints = append(d.breakpoints, bp)
	return bp
}

func (d *Debugger) findBreakpoint(id int) *Breakpoint {
	for _, bp := range d.breakpoints {
		if bp.ID == id {
			return bp
		}
	}
	return nil
}

func (d *Debugger) deleteBreakpoint(id int) bool {
	for i, bp := range d.breakpoints {
		if bp.ID == id {
			d.breakpoints = append(d.breakpoints[:i], d.breakpoints[i+1:]...)
			return true
		}
	}
	return false
}
