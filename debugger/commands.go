package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"mos65/asm"
	"mos65/config"
	"mos65/cpu"
	"mos65/disasm"
	"mos65/log"
)

const helpText = `a <addr>              enter assembler mode (empty line exits)
bx/br/bw/brw/bn/bq [addr] [c,...]   add breakpoint (exec/read/write/read_write/nmi/irq)
bl                     list breakpoints
be n / bd n / bdel n / bc           enable / disable / delete / clear all
c <6502|65C02>         switch variant
d <count> [addr]       disassemble
e <v> [v...] <addr>    poke bytes
g / p / rst / q        go / step / reset / quit
l <addr> <path> / s <len> <addr> <path>   load / save binary
lg / o                 toggle CPU log / register-before-opcode display
r / ss                 show registers / stack window
tn / tq                trigger NMI / IRQ
v <reg> <value>        set register
x <len> <addr>         hexdump
h                      this help
sym <label> <addr> / uns <label>   define / remove a symbol
save <path> / load <path>          save / load debugger session`

// ParseCmd parses and executes one debugger command line, writing its
// result to d.Out. Parse errors are recovered locally and reported, per
// the policy that the debugger never aborts on a bad command.
func (d *Debugger) ParseCmd(line string) error {
	line = strings.TrimSpace(line)

	if d.asmActive {
		return d.continueAssemble(line)
	}

	if line == "" {
		return nil
	}
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "a":
		return d.cmdBeginAssemble(args)
	case "bx":
		return d.cmdBreak(KindExec, args)
	case "br":
		return d.cmdBreak(KindRead, args)
	case "bw":
		return d.cmdBreak(KindWrite, args)
	case "brw":
		return d.cmdBreak(KindReadWrite, args)
	case "bn":
		return d.cmdBreak(KindNMI, args)
	case "bq":
		return d.cmdBreak(KindIRQ, args)
	case "bl":
		return d.cmdListBreak()
	case "be":
		return d.cmdToggleBreak(args, true)
	case "bd":
		return d.cmdToggleBreak(args, false)
	case "bdel":
		if len(args) != 1 {
			return &cpu.ParseError{Token: "bdel", Context: "usage: bdel <id>"}
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return &cpu.ParseError{Token: args[0], Context: "expected breakpoint id"}
		}
		if !d.deleteBreakpoint(id) {
			fmt.Fprintf(d.Out, "no such breakpoint: %d\n", id)
			return nil
		}
		fmt.Fprintf(d.Out, "breakpoint %d deleted\n", id)
		return nil
	case "bc":
		d.breakpoints = nil
		fmt.Fprintln(d.Out, "all breakpoints cleared")
		return nil
	case "c":
		return d.cmdVariant(args)
	case "d":
		return d.cmdDisasm(args)
	case "e":
		return d.cmdPoke(args)
	case "g":
		return d.cmdGo()
	case "p":
		return d.cmdStep()
	case "rst":
		return d.cmdReset(args)
	case "q":
		d.mode = ModeHalted
		return nil
	case "l":
		return d.cmdLoad(args)
	case "s":
		return d.cmdSave(args)
	case "lg":
		d.cpuLogEnabled = !d.cpuLogEnabled
		fmt.Fprintf(d.Out, "cpu log: %v\n", d.cpuLogEnabled)
		return nil
	case "o":
		d.showRegsBeforeOp = !d.showRegsBeforeOp
		fmt.Fprintf(d.Out, "register-before-opcode: %v\n", d.showRegsBeforeOp)
		return nil
	case "r":
		return d.cmdRegisters()
	case "ss":
		return d.cmdStackWindow()
	case "tn":
		d.CPU.RequestNMI()
		fmt.Fprintln(d.Out, "nmi latched")
		return nil
	case "tq":
		d.CPU.RequestIRQ()
		fmt.Fprintln(d.Out, "irq asserted")
		return nil
	case "v":
		return d.cmdSetReg(args)
	case "x":
		return d.cmdHexdump(args)
	case "h":
		fmt.Fprintln(d.Out, helpText)
		return nil
	case "sym":
		return d.cmdSym(args)
	case "uns":
		return d.cmdUnsym(args)
	case "save":
		return d.cmdSaveSession(args)
	case "load":
		return d.cmdLoadSession(args)
	default:
		return &cpu.ParseError{Token: cmd, Context: "unknown command"}
	}
}

// parseHex accepts a hex literal, optionally "$"-prefixed.
func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, &cpu.ParseError{Token: s, Context: "expected hex number"}
	}
	return v, nil
}

func parseAddr(s string) (uint16, error) {
	v, err := parseHex(s)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF {
		return 0, &cpu.OperandRangeError{Reason: "address exceeds 16 bits"}
	}
	return uint16(v), nil
}

// --- assembler mode ---

type asmState struct {
	addr  uint16
	lines []string
}

func (d *Debugger) cmdBeginAssemble(args []string) error {
	if len(args) != 1 {
		return &cpu.ParseError{Token: "a", Context: "usage: a <addr>"}
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	d.asmActive = true
	d.asmBuf = asmState{addr: addr}
	fmt.Fprintf(d.Out, "assembling at $%04X, empty line to finish\n", addr)
	return nil
}

func (d *Debugger) continueAssemble(line string) error {
	if line == "" {
		d.asmActive = false
		enc, _, err := asm.AssembleProgram(d.asmBuf.lines, d.asmBuf.addr, d.CPU.Variant)
		if err != nil {
			fmt.Fprintf(d.Out, "assemble error: %v\n", err)
			return nil
		}
		addr := d.asmBuf.addr
		for _, b := range enc {
			if err := d.CPU.Bus().Write8(addr, b); err != nil {
				fmt.Fprintf(d.Out, "write error: %v\n", err)
				return nil
			}
			addr++
		}
		fmt.Fprintf(d.Out, "assembled %d bytes\n", len(enc))
		return nil
	}
	d.asmBuf.lines = append(d.asmBuf.lines, line)
	return nil
}

// --- breakpoints ---

func (d *Debugger) cmdBreak(kind Kind, args []string) error {
	var addr uint16
	var condArgs []string
	if kind != KindNMI && kind != KindIRQ {
		if len(args) == 0 {
			return &cpu.ParseError{Token: "b", Context: "usage: b? <addr> [c,...]"}
		}
		a, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		addr = a
		condArgs = args[1:]
	} else {
		condArgs = args
	}

	var conds []Condition
	for _, tok := range condArgs {
		for _, part := range strings.Split(tok, ",") {
			if part == "" {
				continue
			}
			c, err := parseCondition(part)
			if err != nil {
				return err
			}
			conds = append(conds, c)
		}
	}

	bp := d.addBreakpoint(kind, addr, conds)
	fmt.Fprintf(d.Out, "breakpoint %d: %s $%04X\n", bp.ID, bp.Kind, bp.Address)
	return nil
}

func parseCondition(part string) (Condition, error) {
	kv := strings.SplitN(part, "=", 2)
	if len(kv) != 2 {
		return Condition{}, &cpu.ParseError{Token: part, Context: "expected reg=value"}
	}
	v, err := parseHex(kv[1])
	if err != nil {
		return Condition{}, err
	}
	var reg CondReg
	switch strings.ToLower(kv[0]) {
	case "a":
		reg = CondA
	case "x":
		reg = CondX
	case "y":
		reg = CondY
	case "s":
		reg = CondS
	case "p":
		reg = CondP
	case "cycles":
		reg = CondCycles
	case "pc":
		reg = CondPC
	default:
		return Condition{}, &cpu.ParseError{Token: kv[0], Context: "unknown condition register"}
	}
	return Condition{Reg: reg, Value: v}, nil
}

func (d *Debugger) cmdListBreak() error {
	if len(d.breakpoints) == 0 {
		fmt.Fprintln(d.Out, "no breakpoints")
		return nil
	}
	for _, bp := range d.breakpoints {
		state := "enabled"
		if !bp.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(d.Out, "%d: %s $%04X %s\n", bp.ID, bp.Kind, bp.Address, state)
	}
	return nil
}

func (d *Debugger) cmdToggleBreak(args []string, enable bool) error {
	if len(args) != 1 {
		return &cpu.ParseError{Token: "be/bd", Context: "usage: be|bd <id>"}
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return &cpu.ParseError{Token: args[0], Context: "expected breakpoint id"}
	}
	bp := d.findBreakpoint(id)
	if bp == nil {
		fmt.Fprintf(d.Out, "no such breakpoint: %d\n", id)
		return nil
	}
	bp.Enabled = enable
	fmt.Fprintf(d.Out, "breakpoint %d: enabled=%v\n", id, bp.Enabled)
	return nil
}

// --- variant, go/step/reset ---

func (d *Debugger) cmdVariant(args []string) error {
	if len(args) != 1 {
		return &cpu.ParseError{Token: "c", Context: "usage: c <6502|65C02>"}
	}
	v, ok := cpu.ParseVariant(args[0])
	if !ok {
		return &cpu.ParseError{Token: args[0], Context: "unknown variant"}
	}
	d.CPU.SetVariant(v)
	fmt.Fprintf(d.Out, "variant: %s\n", v)
	return nil
}

func (d *Debugger) cmdGo() error {
	d.mode = ModeRunning
	err := d.CPU.Run(0)
	d.mode = ModeHalted
	d.runErr = err
	if err != nil {
		fmt.Fprintf(d.Out, "run stopped: %v\n", err)
		return nil
	}
	if d.lastHit != "" {
		fmt.Fprintf(d.Out, "stopped: breakpoint %s\n", d.lastHit)
		d.lastHit = ""
	}
	return nil
}

func (d *Debugger) cmdStep() error {
	d.mode = ModeStepping
	if d.showRegsBeforeOp {
		d.printRegisters()
	}
	_, err := d.CPU.Step()
	d.mode = ModeHalted
	if err != nil {
		fmt.Fprintf(d.Out, "step error: %v\n", err)
		return nil
	}
	return nil
}

func (d *Debugger) cmdReset(args []string) error {
	var startAddr *uint16
	if len(args) == 1 {
		a, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		startAddr = &a
	}
	if err := d.CPU.Reset(startAddr); err != nil {
		fmt.Fprintf(d.Out, "reset error: %v\n", err)
		return nil
	}
	fmt.Fprintln(d.Out, "reset")
	return nil
}

// --- memory inspection/mutation ---

func (d *Debugger) cmdDisasm(args []string) error {
	if len(args) < 1 {
		return &cpu.ParseError{Token: "d", Context: "usage: d <count> [addr]"}
	}
	count, err := strconv.Atoi(args[0])
	if err != nil {
		return &cpu.ParseError{Token: args[0], Context: "expected count"}
	}
	addr := d.CPU.PC
	if len(args) >= 2 {
		addr, err = parseAddr(args[1])
		if err != nil {
			return err
		}
	}
	lines, err := disasm.N(d.CPU.Bus(), addr, count, d.CPU.Variant)
	for _, l := range lines {
		fmt.Fprintln(d.Out, d.renderLine(l))
	}
	if err != nil {
		fmt.Fprintf(d.Out, "disasm error: %v\n", err)
	}
	return nil
}

func (d *Debugger) renderLine(l disasm.Line) string {
	for label, a := range d.symbols {
		if a == l.Addr {
			return fmt.Sprintf("%s (%s)", l.String(), label)
		}
	}
	return l.String()
}

func (d *Debugger) cmdPoke(args []string) error {
	if len(args) < 2 {
		return &cpu.ParseError{Token: "e", Context: "usage: e <v> [v...] <addr>"}
	}
	addr, err := parseAddr(args[len(args)-1])
	if err != nil {
		return err
	}
	for i, tok := range args[:len(args)-1] {
		v, err := parseHex(tok)
		if err != nil {
			return err
		}
		if err := d.CPU.Bus().Write8(addr+uint16(i), uint8(v)); err != nil {
			return err
		}
	}
	fmt.Fprintf(d.Out, "poked %d byte(s) at $%04X\n", len(args)-1, addr)
	return nil
}

func (d *Debugger) cmdLoad(args []string) error {
	if len(args) != 2 {
		return &cpu.ParseError{Token: "l", Context: "usage: l <addr> <path>"}
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	if err := d.CPU.Bus().Memory().Load(args[1], addr); err != nil {
		fmt.Fprintf(d.Out, "load error: %v\n", err)
		return nil
	}
	fmt.Fprintf(d.Out, "loaded %s at $%04X\n", args[1], addr)
	return nil
}

func (d *Debugger) cmdSave(args []string) error {
	if len(args) != 3 {
		return &cpu.ParseError{Token: "s", Context: "usage: s <len> <addr> <path>"}
	}
	length, err := strconv.Atoi(args[0])
	if err != nil {
		return &cpu.ParseError{Token: args[0], Context: "expected length"}
	}
	addr, err := parseAddr(args[1])
	if err != nil {
		return err
	}
	if err := d.CPU.Bus().Memory().Save(args[2], addr, length); err != nil {
		fmt.Fprintf(d.Out, "save error: %v\n", err)
		return nil
	}
	fmt.Fprintf(d.Out, "saved %d byte(s) from $%04X to %s\n", length, addr, args[2])
	return nil
}

func (d *Debugger) cmdHexdump(args []string) error {
	if len(args) != 2 {
		return &cpu.ParseError{Token: "x", Context: "usage: x <len> <addr>"}
	}
	length, err := strconv.Atoi(args[0])
	if err != nil {
		return &cpu.ParseError{Token: args[0], Context: "expected length"}
	}
	addr, err := parseAddr(args[1])
	if err != nil {
		return err
	}
	for i := 0; i < length; i += 16 {
		fmt.Fprintf(d.Out, "$%04X: ", addr+uint16(i))
		for j := 0; j < 16 && i+j < length; j++ {
			v, err := d.CPU.Bus().Peek8(addr + uint16(i+j))
			if err != nil {
				fmt.Fprintf(d.Out, "\nhexdump error: %v\n", err)
				return nil
			}
			fmt.Fprintf(d.Out, "%02X ", v)
		}
		fmt.Fprintln(d.Out)
	}
	return nil
}

// --- registers ---

func (d *Debugger) cmdRegisters() error {
	d.printRegisters()
	return nil
}

func (d *Debugger) printRegisters() {
	c := d.CPU
	fmt.Fprintf(d.Out, "PC=$%04X A=$%02X X=$%02X Y=$%02X S=$%02X P=%s cycles=%d\n",
		c.PC, c.A, c.X, c.Y, c.S, c.P, c.Cycles)
}

func (d *Debugger) cmdStackWindow() error {
	fmt.Fprint(d.Out, "$01F0: ")
	for addr := uint16(0x01F0); addr <= 0x01FF; addr++ {
		v, err := d.CPU.Bus().Peek8(addr)
		if err != nil {
			fmt.Fprintf(d.Out, "\nstack read error: %v\n", err)
			return nil
		}
		fmt.Fprintf(d.Out, "%02X ", v)
	}
	fmt.Fprintln(d.Out)
	return nil
}

func (d *Debugger) cmdSetReg(args []string) error {
	if len(args) != 2 {
		return &cpu.ParseError{Token: "v", Context: "usage: v <reg> <value>"}
	}
	v, err := parseHex(args[1])
	if err != nil {
		return err
	}
	switch strings.ToLower(args[0]) {
	case "a":
		d.CPU.A = uint8(v)
	case "x":
		d.CPU.X = uint8(v)
	case "y":
		d.CPU.Y = uint8(v)
	case "s":
		d.CPU.S = uint8(v)
	case "p":
		d.CPU.P = cpu.P(uint8(v))
	case "pc":
		d.CPU.PC = uint16(v)
	default:
		return &cpu.ParseError{Token: args[0], Context: "unknown register"}
	}
	fmt.Fprintf(d.Out, "%s = $%X\n", strings.ToUpper(args[0]), v)
	return nil
}

// --- symbols and session ---

func (d *Debugger) cmdSym(args []string) error {
	if len(args) != 2 {
		return &cpu.ParseError{Token: "sym", Context: "usage: sym <label> <addr>"}
	}
	addr, err := parseAddr(args[1])
	if err != nil {
		return err
	}
	d.symbols[args[0]] = addr
	fmt.Fprintf(d.Out, "%s = $%04X\n", args[0], addr)
	return nil
}

func (d *Debugger) cmdUnsym(args []string) error {
	if len(args) != 1 {
		return &cpu.ParseError{Token: "uns", Context: "usage: uns <label>"}
	}
	delete(d.symbols, args[0])
	fmt.Fprintf(d.Out, "%s removed\n", args[0])
	return nil
}

func (d *Debugger) cmdSaveSession(args []string) error {
	if len(args) != 1 {
		return &cpu.ParseError{Token: "save", Context: "usage: save <path>"}
	}
	sess := config.Session{Symbols: d.symbols}
	for _, bp := range d.breakpoints {
		conds := map[string]uint64{}
		for _, c := range bp.Conditions {
			conds[condRegName(c.Reg)] = c.Value
		}
		sess.Breakpoints = append(sess.Breakpoints, config.BreakpointConfig{
			Kind: bp.Kind.String(), Address: bp.Address, Conditions: conds, Enabled: bp.Enabled,
		})
	}
	if err := config.SaveSession(sess, args[0]); err != nil {
		fmt.Fprintf(d.Out, "save error: %v\n", err)
		return nil
	}
	fmt.Fprintf(d.Out, "session saved to %s\n", args[0])
	return nil
}

func (d *Debugger) cmdLoadSession(args []string) error {
	if len(args) != 1 {
		return &cpu.ParseError{Token: "load", Context: "usage: load <path>"}
	}
	sess, err := config.LoadSession(args[0])
	if err != nil {
		fmt.Fprintf(d.Out, "load error: %v\n", err)
		return nil
	}
	d.symbols = sess.Symbols
	if d.symbols == nil {
		d.symbols = map[string]uint16{}
	}
	var breakpoints []*Breakpoint
	for _, bc := range sess.Breakpoints {
		kind := parseKindName(bc.Kind)
		var conds []Condition
		for reg, val := range bc.Conditions {
			r, ok := condRegFromName(reg)
			if !ok {
				return &cpu.ParseError{Token: reg, Context: "unknown condition register in session file"}
			}
			conds = append(conds, Condition{Reg: r, Value: val})
		}
		breakpoints = append(breakpoints, &Breakpoint{Kind: kind, Address: bc.Address, Conditions: conds, Enabled: bc.Enabled})
	}
	d.breakpoints = nil
	for _, bp := range breakpoints {
		nb := d.addBreakpoint(bp.Kind, bp.Address, bp.Conditions)
		nb.Enabled = bp.Enabled
	}
	fmt.Fprintf(d.Out, "session loaded from %s\n", args[0])
	log.ModDbg.InfoZ("session loaded").Str("path", args[0]).End()
	return nil
}

func condRegName(r CondReg) string {
	switch r {
	case CondA:
		return "a"
	case CondX:
		return "x"
	case CondY:
		return "y"
	case CondS:
		return "s"
	case CondP:
		return "p"
	case CondCycles:
		return "cycles"
	case CondPC:
		return "pc"
	default:
		return "?"
	}
}

func condRegFromName(s string) (CondReg, bool) {
	switch s {
	case "a":
		return CondA, true
	case "x":
		return CondX, true
	case "y":
		return CondY, true
	case "s":
		return CondS, true
	case "p":
		return CondP, true
	case "cycles":
		return CondCycles, true
	case "pc":
		return CondPC, true
	default:
		return 0, false
	}
}

func parseKindName(s string) Kind {
	switch s {
	case "exec":
		return KindExec
	case "read":
		return KindRead
	case "write":
		return KindWrite
	case "read_write":
		return KindReadWrite
	case "nmi":
		return KindNMI
	case "irq":
		return KindIRQ
	default:
		return KindExec
	}
}
