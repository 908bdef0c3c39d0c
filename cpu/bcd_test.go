package cpu

import "testing"

// TestSBCUndoesADCValue checks the part of the ADC/SBC inverse property that
// holds unconditionally: SBC(ADC(a, b, 0), b), with carry forced to 1
// (SEC) immediately before the SBC, restores A to a for every a, b in
// [0,255]. Carry forcing is what makes this a clean subtraction rather than
// a borrow; chaining ADC's own resulting carry into SBC instead does not
// restore a uniformly (see DESIGN.md).
func TestSBCUndoesADCValue(t *testing.T) {
	c := newTestCPU(t)
	for a := 0; a <= 0xFF; a++ {
		for b := 0; b <= 0xFF; b++ {
			c.A = uint8(a)
			c.P.writeBit(FlagC, false)
			c.adc(uint8(b))

			c.P.writeBit(FlagC, true)
			c.sbc(uint8(b))
			if c.A != uint8(a) {
				t.Fatalf("a=$%02X b=$%02X: A = $%02X after SEC; SBC(ADC(a,b,0),b), want $%02X", a, b, c.A, a)
			}
		}
	}
}

// TestSBCUndoesADCFlags checks the full named property from spec.md --
// A restored, C=1, V=0 -- on representative operand pairs that don't cross
// the unsigned-carry or signed-overflow boundaries where the flags stop
// being invariant (see DESIGN.md for why this is not asserted for every
// a,b pair).
func TestSBCUndoesADCFlags(t *testing.T) {
	pairs := [][2]uint8{
		{0x10, 0x05},
		{0x01, 0x01},
		{0x40, 0x20},
		{0xC8, 0x03},
		{0x00, 0x00},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		c := newTestCPU(t)
		c.A = a
		c.P.writeBit(FlagC, false)
		c.adc(b)

		c.P.writeBit(FlagC, true)
		c.sbc(b)

		if c.A != a {
			t.Errorf("a=$%02X b=$%02X: A = $%02X, want $%02X", a, b, c.A, a)
		}
		if !c.P.C() {
			t.Errorf("a=$%02X b=$%02X: C clear, want set", a, b)
		}
		if c.P.V() {
			t.Errorf("a=$%02X b=$%02X: V set, want clear", a, b)
		}
	}
}
