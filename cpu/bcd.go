package cpu

// adc implements ADC for both binary and BCD (decimal) mode. It returns the
// cycle penalty: 65C02 spends one extra cycle in decimal mode that NMOS
// does not.
func (c *CPU) adc(operand uint8) uint8 {
	if !c.P.D() {
		c.adcBinary(operand)
		return 0
	}
	c.adcDecimal(operand)
	if c.Variant == WDC65C02 {
		return 1
	}
	return 0
}

// sbc is ADC of the one's complement of the operand, per the spec's
// definition; BCD mode instead runs its own nibble-wise subtraction since
// the one's-complement trick does not hold across decimal correction.
func (c *CPU) sbc(operand uint8) uint8 {
	if !c.P.D() {
		c.adcBinary(^operand)
		return 0
	}
	c.sbcDecimal(operand)
	if c.Variant == WDC65C02 {
		return 1
	}
	return 0
}

func (c *CPU) adcBinary(operand uint8) {
	carryIn := uint16(0)
	if c.P.C() {
		carryIn = 1
	}
	sum := uint16(c.A) + uint16(operand) + carryIn
	c.P.checkCV(c.A, operand, sum)
	c.A = uint8(sum)
	c.P.checkNZ(c.A)
}

// adcDecimal performs nibble-wise decimal addition: each nibble is summed
// with the incoming carry, corrected by +6 if it exceeds 9, and the high
// nibble's correction is applied against the full byte. Flag semantics
// deliberately differ by variant: MOS6502 reports N/Z from the raw binary
// sum (a documented quirk of the silicon), while 65C02 reports them from
// the corrected decimal result.
func (c *CPU) adcDecimal(operand uint8) {
	carryIn := uint8(0)
	if c.P.C() {
		carryIn = 1
	}
	a := c.A

	binSum := uint16(a) + uint16(operand) + uint16(carryIn)

	lo := (a & 0x0F) + (operand & 0x0F) + carryIn
	carryLo := uint8(0)
	if lo > 9 {
		lo += 6
		carryLo = 1
	}
	hi := (a >> 4) + (operand >> 4) + carryLo
	decCarry := false
	if hi > 9 {
		hi += 6
		decCarry = true
	}
	result := (hi << 4) | (lo & 0x0F)

	c.P.writeBit(FlagC, decCarry)
	v := (uint16(a)^binSum)&(uint16(operand)^binSum)&0x80 != 0
	c.P.writeBit(FlagV, v)

	if c.Variant == WDC65C02 {
		c.A = result
		c.P.checkNZ(c.A)
	} else {
		c.A = result
		c.P.checkNZ(uint8(binSum))
	}
}

// sbcDecimal mirrors adcDecimal's nibble-wise correction in the subtract
// direction: borrow propagates from low nibble to high, each corrected by
// -6 when the uncorrected nibble underflows.
func (c *CPU) sbcDecimal(operand uint8) {
	carryIn := uint8(0)
	if c.P.C() {
		carryIn = 1
	}
	a := c.A
	borrow := uint8(1 - carryIn)

	binDiff := int16(a) - int16(operand) - int16(borrow)

	lo := int16(a&0x0F) - int16(operand&0x0F) - int16(borrow)
	borrowLo := int16(0)
	if lo < 0 {
		lo -= 6
		borrowLo = 1
	}
	hi := int16(a>>4) - int16(operand>>4) - borrowLo
	if hi < 0 {
		hi -= 6
	}
	result := uint8((hi<<4)&0xF0) | uint8(lo&0x0F)

	c.P.writeBit(FlagC, binDiff >= 0)
	v := (uint16(a)^uint16(binDiff))&(uint16(^operand)^uint16(binDiff))&0x80 != 0
	c.P.writeBit(FlagV, v)

	if c.Variant == WDC65C02 {
		c.A = result
		c.P.checkNZ(c.A)
	} else {
		c.A = result
		c.P.checkNZ(uint8(binDiff))
	}
}
