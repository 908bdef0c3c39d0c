package cpu

// AddrMode names one of the 6502/65C02 addressing modes. The effective
// address resolver below implements each one; the set of 13 classic modes
// is extended by three 65C02 additions.
type AddrMode int

const (
	AddrImplied AddrMode = iota
	AddrAccumulator
	AddrImmediate
	AddrZeroPage
	AddrZeroPageX
	AddrZeroPageY
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrIndirect
	AddrIndirectX // (zp,X)
	AddrIndirectY // (zp),Y
	AddrRelative
	AddrZeroPageIndirect  // 65C02 (zp)
	AddrAbsoluteIndirectX // 65C02 (abs,X), JMP only
	AddrZeroPageRel       // 65C02 BBR/BBS: zp operand plus a relative offset
)

// OperandLen is the number of operand bytes following the opcode byte.
func (m AddrMode) OperandLen() int {
	switch m {
	case AddrImplied, AddrAccumulator:
		return 0
	case AddrImmediate, AddrZeroPage, AddrZeroPageX, AddrZeroPageY,
		AddrIndirectX, AddrIndirectY, AddrRelative, AddrZeroPageIndirect:
		return 1
	case AddrAbsolute, AddrAbsoluteX, AddrAbsoluteY, AddrIndirect, AddrAbsoluteIndirectX:
		return 2
	case AddrZeroPageRel:
		return 2
	default:
		return 0
	}
}

// resolved carries the effective address (when the mode has one) and
// whether resolving it crossed a page boundary. For AddrZeroPageRel, addr is
// the zero-page operand to test and branchTarget is the relative target to
// jump to if the bit test succeeds.
type resolved struct {
	addr         uint16
	branchTarget uint16
	pageCrossed  bool
	hasAddr      bool
}

// resolveAddress advances PC past the operand bytes of the mode, issuing the
// bus reads that requires, and returns the effective address. For
// Implied/Accumulator there is no address; callers branch on hasAddr.
func (c *CPU) resolveAddress(mode AddrMode) resolved {
	switch mode {
	case AddrImplied, AddrAccumulator:
		return resolved{}

	case AddrImmediate:
		addr := c.PC
		c.PC++
		return resolved{addr: addr, hasAddr: true}

	case AddrZeroPage:
		addr := uint16(c.fetchOperand())
		return resolved{addr: addr, hasAddr: true}

	case AddrZeroPageX:
		base := c.fetchOperand()
		addr := uint16(base+c.X) & 0xFF
		return resolved{addr: addr, hasAddr: true}

	case AddrZeroPageY:
		base := c.fetchOperand()
		addr := uint16(base+c.Y) & 0xFF
		return resolved{addr: addr, hasAddr: true}

	case AddrAbsolute:
		addr := c.fetchOperand16()
		return resolved{addr: addr, hasAddr: true}

	case AddrAbsoluteX:
		base := c.fetchOperand16()
		addr := base + uint16(c.X)
		return resolved{addr: addr, hasAddr: true, pageCrossed: pageCrossed(base, addr)}

	case AddrAbsoluteY:
		base := c.fetchOperand16()
		addr := base + uint16(c.Y)
		return resolved{addr: addr, hasAddr: true, pageCrossed: pageCrossed(base, addr)}

	case AddrIndirect:
		ptr := c.fetchOperand16()
		addr := c.readIndirectVector(ptr)
		return resolved{addr: addr, hasAddr: true}

	case AddrAbsoluteIndirectX:
		base := c.fetchOperand16()
		ptr := base + uint16(c.X)
		lo := c.read(ptr)
		hi := c.read(ptr + 1)
		return resolved{addr: uint16(hi)<<8 | uint16(lo), hasAddr: true}

	case AddrIndirectX:
		base := c.fetchOperand()
		ptr := uint16(base+c.X) & 0xFF
		lo := c.read(ptr)
		hi := c.read((ptr + 1) & 0xFF)
		return resolved{addr: uint16(hi)<<8 | uint16(lo), hasAddr: true}

	case AddrIndirectY:
		ptr := uint16(c.fetchOperand())
		lo := c.read(ptr)
		hi := c.read((ptr + 1) & 0xFF)
		base := uint16(hi)<<8 | uint16(lo)
		addr := base + uint16(c.Y)
		return resolved{addr: addr, hasAddr: true, pageCrossed: pageCrossed(base, addr)}

	case AddrZeroPageIndirect:
		ptr := uint16(c.fetchOperand())
		lo := c.read(ptr)
		hi := c.read((ptr + 1) & 0xFF)
		return resolved{addr: uint16(hi)<<8 | uint16(lo), hasAddr: true}

	case AddrRelative:
		offset := int8(c.fetchOperand())
		addr := uint16(int32(c.PC) + int32(offset))
		return resolved{addr: addr, hasAddr: true, pageCrossed: pageCrossed(c.PC, addr)}

	case AddrZeroPageRel:
		zp := uint16(c.fetchOperand())
		offset := int8(c.fetchOperand())
		target := uint16(int32(c.PC) + int32(offset))
		return resolved{addr: zp, hasAddr: true, branchTarget: target}

	default:
		return resolved{}
	}
}

// readIndirectVector implements JMP ($addr), including the MOS6502 page-wrap
// bug: when the pointer's low byte is $FF, the high byte is fetched from
// $xx00 instead of the following page.
func (c *CPU) readIndirectVector(ptr uint16) uint16 {
	lo := c.read(ptr)
	var hiAddr uint16
	if c.Variant == MOS6502 && ptr&0xFF == 0xFF {
		hiAddr = ptr & 0xFF00
	} else {
		hiAddr = ptr + 1
	}
	hi := c.read(hiAddr)
	return uint16(hi)<<8 | uint16(lo)
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

func (c *CPU) fetchOperand() uint8 {
	v := c.read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetchOperand16() uint16 {
	lo := c.fetchOperand()
	hi := c.fetchOperand()
	return uint16(hi)<<8 | uint16(lo)
}
