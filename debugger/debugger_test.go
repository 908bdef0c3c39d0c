package debugger

import (
	"bytes"
	"strings"
	"testing"

	"mos65/cpu"
)

func newTestDebugger(t *testing.T) (*Debugger, *cpu.CPU, *bytes.Buffer) {
	t.Helper()
	mem := cpu.NewMemory(0x10000)
	c := cpu.New(mem)
	start := uint16(0x0600)
	if err := c.Reset(&start); err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	d := New(c, out)
	return d, c, out
}

func pokeCPU(t *testing.T, c *cpu.CPU, addr uint16, bytes ...uint8) {
	t.Helper()
	for i, b := range bytes {
		if err := c.Bus().Write8(addr+uint16(i), b); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExecBreakpointStopsRun(t *testing.T) {
	d, c, _ := newTestDebugger(t)
	pokeCPU(t, c, 0x0600, 0xA9, 0x01, 0xA9, 0x02, 0xA9, 0x03) // three LDA #imm

	if err := d.ParseCmd("bx 0604"); err != nil {
		t.Fatal(err)
	}
	if err := d.ParseCmd("g"); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x0604 {
		t.Errorf("PC = $%04X, want $0604", c.PC)
	}
	if c.A != 0x02 {
		t.Errorf("A = $%02X, want $02 (third LDA not yet executed)", c.A)
	}
}

func TestConditionalBreakpointOnlyFiresWhenSatisfied(t *testing.T) {
	d, c, _ := newTestDebugger(t)
	// LDX #$01; LDX #$02; LDX #$03 at $0600,$0602,$0604
	pokeCPU(t, c, 0x0600, 0xA2, 0x01, 0xA2, 0x02, 0xA2, 0x03)

	if err := d.ParseCmd("bx 0604 x=2"); err != nil {
		t.Fatal(err)
	}
	if err := d.ParseCmd("g"); err != nil {
		t.Fatal(err)
	}
	// exec conditions are evaluated pre-step: by the time PC reaches $0604,
	// X already holds 2 from the instruction before it, so the breakpoint
	// trips there and the third LDX never executes.
	if c.PC != 0x0604 {
		t.Errorf("PC = $%04X, want $0604 (breakpoint fired on X==2)", c.PC)
	}
	if c.X != 2 {
		t.Errorf("X = $%02X, want $02 (third LDX not yet executed)", c.X)
	}
}

func TestConditionalWriteBreakpointReportsID(t *testing.T) {
	d, c, out := newTestDebugger(t)
	// LDA #$01; LDX #$09; STA $0200 (X=9, must not halt);
	// LDX #$10; STA $0200 (X=$10, must halt and report the breakpoint ID).
	// Condition values are hex, so "x=10" means X==$10.
	pokeCPU(t, c, 0x0600,
		0xA9, 0x01,
		0xA2, 0x09,
		0x8D, 0x00, 0x02,
		0xA2, 0x10,
		0x8D, 0x00, 0x02,
	)

	if err := d.ParseCmd("bw 0200 x=10"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := d.ParseCmd("g"); err != nil {
		t.Fatal(err)
	}
	if c.X != 0x10 {
		t.Errorf("X = $%02X, want $10 (halted on the second write, X==$10)", c.X)
	}
	if !strings.Contains(out.String(), "stopped: breakpoint 1") {
		t.Errorf("output = %q, want it to report the breakpoint ID", out.String())
	}
}

func TestBreakpointListEnableDisable(t *testing.T) {
	d, _, out := newTestDebugger(t)
	if err := d.ParseCmd("bx 0600"); err != nil {
		t.Fatal(err)
	}
	if err := d.ParseCmd("bw 0700"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := d.ParseCmd("bl"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1: exec") || !strings.Contains(out.String(), "2: write") {
		t.Errorf("bl output = %q", out.String())
	}

	if err := d.ParseCmd("bd 1"); err != nil {
		t.Fatal(err)
	}
	if d.findBreakpoint(1).Enabled {
		t.Error("breakpoint 1 should be disabled")
	}

	if err := d.ParseCmd("bc"); err != nil {
		t.Fatal(err)
	}
	if len(d.breakpoints) != 0 {
		t.Errorf("breakpoints = %v, want none after bc", d.breakpoints)
	}
}

func TestRegisterCommandSetsAndShows(t *testing.T) {
	d, c, out := newTestDebugger(t)
	if err := d.ParseCmd("v a 42"); err != nil {
		t.Fatal(err)
	}
	if c.A != 0x42 {
		t.Errorf("A = $%02X, want $42", c.A)
	}
	out.Reset()
	if err := d.ParseCmd("r"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "A=$42") {
		t.Errorf("r output = %q", out.String())
	}
}

func TestSymAndUnsym(t *testing.T) {
	d, _, _ := newTestDebugger(t)
	if err := d.ParseCmd("sym main 0600"); err != nil {
		t.Fatal(err)
	}
	if d.symbols["main"] != 0x0600 {
		t.Errorf("symbols[main] = $%04X, want $0600", d.symbols["main"])
	}
	if err := d.ParseCmd("uns main"); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.symbols["main"]; ok {
		t.Error("symbol main should have been removed")
	}
}

func TestAssemblerModeEntersAndAssembles(t *testing.T) {
	d, c, out := newTestDebugger(t)
	if err := d.ParseCmd("a 0600"); err != nil {
		t.Fatal(err)
	}
	if !d.asmActive {
		t.Fatal("assembler mode should be active")
	}
	if err := d.ParseCmd("LDA #$42"); err != nil {
		t.Fatal(err)
	}
	if err := d.ParseCmd("CLC"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := d.ParseCmd(""); err != nil { // empty line exits and assembles
		t.Fatal(err)
	}
	if d.asmActive {
		t.Fatal("assembler mode should have exited")
	}
	v, err := c.Bus().Peek8(0x0600)
	if err != nil || v != 0xA9 {
		t.Errorf("byte at $0600 = $%02X, err=%v, want $A9", v, err)
	}
	if !strings.Contains(out.String(), "assembled") {
		t.Errorf("output = %q", out.String())
	}
}

func TestHexdumpAndPoke(t *testing.T) {
	d, _, out := newTestDebugger(t)
	if err := d.ParseCmd("e 11 22 33 0600"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := d.ParseCmd("x 3 0600"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "11 22 33") {
		t.Errorf("hexdump = %q", out.String())
	}
}

func TestTriggerNMI(t *testing.T) {
	d, c, _ := newTestDebugger(t)
	pokeCPU(t, c, cpu.NMIVector, 0x00, 0x40)
	if err := d.ParseCmd("tn"); err != nil {
		t.Fatal(err)
	}
	if err := d.ParseCmd("p"); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x4000 {
		t.Errorf("PC = $%04X, want $4000 after NMI", c.PC)
	}
}

func TestUnknownCommandIsParseError(t *testing.T) {
	d, _, _ := newTestDebugger(t)
	err := d.ParseCmd("zzz")
	if _, ok := err.(*cpu.ParseError); !ok {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}
