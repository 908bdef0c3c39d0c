package cpu

import "testing"

func newTestCPU(t *testing.T) *CPU {
	t.Helper()
	mem := NewMemory(0x10000)
	return New(mem)
}

func poke(t *testing.T, c *CPU, addr uint16, bytes ...uint8) {
	t.Helper()
	for i, b := range bytes {
		if err := c.Bus().Write8(addr+uint16(i), b); err != nil {
			t.Fatalf("poke $%04X: %v", addr+uint16(i), err)
		}
	}
}

func wantRegs(t *testing.T, c *CPU, want map[string]uint64) {
	t.Helper()
	got := map[string]uint64{
		"A": uint64(c.A), "X": uint64(c.X), "Y": uint64(c.Y),
		"S": uint64(c.S), "PC": uint64(c.PC), "P": uint64(c.P),
		"cycles": c.Cycles,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = $%X, want $%X", k, got[k], v)
		}
	}
}

func TestResetLoadsVector(t *testing.T) {
	c := newTestCPU(t)
	poke(t, c, ResetVector, 0x00, 0x06)
	if err := c.Reset(nil); err != nil {
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x0600, "S": 0xFD, "cycles": 7})
}

func TestResetWithExplicitStart(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x1000)
	if err := c.Reset(&start); err != nil {
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x1000})
}

func TestLDAImmediateFlags(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)

	poke(t, c, 0x0600, 0xA9, 0x00) // LDA #$00
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"A": 0x00})
	if !c.P.Z() || c.P.N() {
		t.Errorf("P = %s, want Z set, N clear", c.P)
	}

	c.PC = 0x0602
	poke(t, c, 0x0602, 0xA9, 0x80) // LDA #$80
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.P.Z() || !c.P.N() {
		t.Errorf("P = %s, want Z clear, N set", c.P)
	}
}

func TestJmpIndirectMOSPageWrapBug(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)
	c.Variant = MOS6502

	poke(t, c, 0x0600, 0x6C, 0xFF, 0x30) // JMP ($30FF)
	poke(t, c, 0x30FF, 0x80)             // low byte of target
	poke(t, c, 0x3000, 0x12)             // wrapped high byte (the bug)
	poke(t, c, 0x3100, 0x34)             // correct high byte

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x1280, "cycles": 12}) // 7 reset + 5
}

func TestJmpIndirect65C02FixesPageWrap(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)
	c.SetVariant(WDC65C02)

	poke(t, c, 0x0600, 0x6C, 0xFF, 0x30)
	poke(t, c, 0x30FF, 0x80)
	poke(t, c, 0x3000, 0x12)
	poke(t, c, 0x3100, 0x34)

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x3480, "cycles": 13}) // 7 reset + 6
}

func TestJmpSelfLoopTraps(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)
	poke(t, c, 0x0600, 0x4C, 0x00, 0x06) // JMP $0600

	_, err := c.Step()
	if _, ok := err.(*TrapError); !ok {
		t.Fatalf("err = %v, want *TrapError", err)
	}
}

func TestBranchSelfLoopTraps(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)
	poke(t, c, 0x0600, 0xF0, 0xFE) // BEQ $0600 (offset -2: branch to itself)
	c.P.writeBit(FlagZ, true)

	_, err := c.Step()
	if _, ok := err.(*TrapError); !ok {
		t.Fatalf("err = %v, want *TrapError", err)
	}
}

func TestBranchTakenAndPageCrossCycles(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x06F0)
	c.Reset(&start)
	// BEQ forward across the $0700 page boundary: not-taken is 2 cycles,
	// taken is 3, taken-and-page-crossed is 4.
	poke(t, c, 0x06F0, 0xF0, 0x20) // BEQ +$20 -> target $0712, crosses page
	c.P.writeBit(FlagZ, true)

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x0712, "cycles": 11}) // 7 reset + 4
}

func TestJSR_RTS(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)

	poke(t, c, 0x0600, 0x20, 0x20, 0x06) // JSR $0620
	poke(t, c, 0x0620, 0xA9, 0x88, 0x60) // LDA #$88; RTS

	if _, err := c.Step(); err != nil { // JSR
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x0620})

	if _, err := c.Step(); err != nil { // LDA #$88
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"A": 0x88})

	preRTS := c.S
	if _, err := c.Step(); err != nil { // RTS
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x0603})
	if c.S != preRTS+2 {
		t.Errorf("S = $%02X, want $%02X (RTS pulls the 2 bytes JSR pushed)", c.S, preRTS+2)
	}
}

// TestJSRRTSRoundTrip is spec scenario 5: JSR immediately followed by RTS
// restores S to its pre-JSR value and costs exactly reset+JSR+RTS cycles.
func TestJSRRTSRoundTrip(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0400)
	c.Reset(&start)
	preJSR := c.S

	poke(t, c, 0x0400, 0x20, 0x10, 0x04) // JSR $0410
	poke(t, c, 0x0410, 0x60)             // RTS

	if _, err := c.Step(); err != nil { // JSR
		t.Fatal(err)
	}
	if _, err := c.Step(); err != nil { // RTS
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x0403, "cycles": 7 + 6 + 6})
	if c.S != preJSR {
		t.Errorf("S = $%02X, want $%02X (restored to pre-JSR value)", c.S, preJSR)
	}
}

func TestADCDecimalModeDivergesByVariant(t *testing.T) {
	t.Run("mos6502 reports binary N/Z in BCD mode", func(t *testing.T) {
		c := newTestCPU(t)
		start := uint16(0x0600)
		c.Reset(&start)
		c.Variant = MOS6502
		c.A = 0x99
		c.P.writeBit(FlagD, true)
		c.P.writeBit(FlagC, false)
		poke(t, c, 0x0600, 0x69, 0x01) // ADC #$01

		if _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
		if c.A != 0x00 {
			t.Errorf("A = $%02X, want $00", c.A)
		}
		if !c.P.C() {
			t.Error("carry not set after 99+1 BCD overflow")
		}
		// binary sum 0x99+0x01 = 0x9A: N set, Z clear, despite decimal result 0.
		if !c.P.N() || c.P.Z() {
			t.Errorf("P = %s, want N set (from binary sum) and Z clear", c.P)
		}
		wantRegs(t, c, map[string]uint64{"cycles": 9}) // 7 reset + 2 for ADC#
	})

	t.Run("65c02 reports decimal N/Z and spends one extra cycle", func(t *testing.T) {
		c := newTestCPU(t)
		start := uint16(0x0600)
		c.Reset(&start)
		c.SetVariant(WDC65C02)
		c.A = 0x99
		c.P.writeBit(FlagD, true)
		c.P.writeBit(FlagC, false)
		poke(t, c, 0x0600, 0x69, 0x01)

		if _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
		if c.A != 0x00 {
			t.Errorf("A = $%02X, want $00", c.A)
		}
		if c.P.N() || !c.P.Z() {
			t.Errorf("P = %s, want N clear and Z set (from decimal result)", c.P)
		}
		wantRegs(t, c, map[string]uint64{"cycles": 10}) // 7 reset + 2 base + 1 BCD extra
	})
}

func TestNMITakesPrecedenceOverIRQ(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)
	poke(t, c, NMIVector, 0x00, 0x40)
	poke(t, c, IRQVector, 0x00, 0x50)

	c.RequestNMI()
	c.RequestIRQ()

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x4000})
}

func TestWAIHaltsUntilInterrupt(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)
	c.SetVariant(WDC65C02)
	poke(t, c, 0x0600, 0xCB) // WAI
	poke(t, c, IRQVector, 0x00, 0x70)

	if _, err := c.Step(); err != nil { // executes WAI, now waiting
		t.Fatal(err)
	}
	if _, err := c.Step(); err != nil { // still waiting, no interrupt yet
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x0601})

	c.P.writeBit(FlagI, false) // Reset leaves I set; clear it so the IRQ is serviced
	c.RequestIRQ()
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	wantRegs(t, c, map[string]uint64{"PC": 0x7000})
}

func TestInvalidOpcodeIsAnError(t *testing.T) {
	c := newTestCPU(t)
	start := uint16(0x0600)
	c.Reset(&start)
	poke(t, c, 0x0600, 0x02) // JAM on NMOS
	c.Variant = MOS6502

	_, err := c.Step()
	if _, ok := err.(*InvalidOpcodeError); !ok {
		t.Fatalf("err = %v, want *InvalidOpcodeError", err)
	}
}

func TestMemoryAccessErrorAbortsRun(t *testing.T) {
	mem := NewMemory(0x200)
	c := New(mem)
	start := uint16(0x0100)
	c.Reset(&start)
	poke(t, c, 0x0100, 0xAD, 0x00, 0x10) // LDA $1000, out of range

	err := c.Run(0)
	if err == nil {
		t.Fatal("want error, got nil")
	}
}
