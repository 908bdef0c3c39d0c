package cpu

// Descriptor is the canonical per-opcode metadata the spec calls for: one
// entry per opcode byte, per variant. The execution engine, the
// disassembler and the assembler all consult the same table so that the
// behavior lives in its contents, not in how it's dispatched.
type Descriptor struct {
	Mnemonic       string
	Mode           AddrMode
	Cycles         uint8
	PageCrossExtra bool // loads: +1 cycle if addressing crossed a page
	BranchExtra    bool // this is a branch; +1 taken, +1 more on page cross
	Valid          bool
}

func (d Descriptor) OperandLen() int { return d.Mode.OperandLen() }

func d(mnemonic string, mode AddrMode, cycles uint8) Descriptor {
	return Descriptor{Mnemonic: mnemonic, Mode: mode, Cycles: cycles, Valid: true}
}

func dpc(mnemonic string, mode AddrMode, cycles uint8) Descriptor {
	desc := d(mnemonic, mode, cycles)
	desc.PageCrossExtra = true
	return desc
}

func dbr(mnemonic string, cycles uint8) Descriptor {
	desc := d(mnemonic, AddrRelative, cycles)
	desc.BranchExtra = true
	return desc
}

var invalidDescriptor = Descriptor{Mnemonic: "???"}

// tableNMOS is the MOS6502/6510 table: the full documented instruction set
// plus the undocumented opcodes the legacy variant must implement per the
// NMOS decode-matrix "holes".
var tableNMOS = [256]Descriptor{
	0x00: d("BRK", AddrImplied, 7),
	0x01: d("ORA", AddrIndirectX, 6),
	0x02: invalidDescriptor, // JAM
	0x03: d("SLO", AddrIndirectX, 8),
	0x04: d("NOP", AddrZeroPage, 3),
	0x05: d("ORA", AddrZeroPage, 3),
	0x06: d("ASL", AddrZeroPage, 5),
	0x07: d("SLO", AddrZeroPage, 5),
	0x08: d("PHP", AddrImplied, 3),
	0x09: d("ORA", AddrImmediate, 2),
	0x0A: d("ASL", AddrAccumulator, 2),
	0x0B: d("ANC", AddrImmediate, 2),
	0x0C: d("NOP", AddrAbsolute, 4),
	0x0D: d("ORA", AddrAbsolute, 4),
	0x0E: d("ASL", AddrAbsolute, 6),
	0x0F: d("SLO", AddrAbsolute, 6),

	0x10: dbr("BPL", 2),
	0x11: dpc("ORA", AddrIndirectY, 5),
	0x12: invalidDescriptor, // JAM
	0x13: d("SLO", AddrIndirectY, 8),
	0x14: d("NOP", AddrZeroPageX, 4),
	0x15: d("ORA", AddrZeroPageX, 4),
	0x16: d("ASL", AddrZeroPageX, 6),
	0x17: d("SLO", AddrZeroPageX, 6),
	0x18: d("CLC", AddrImplied, 2),
	0x19: dpc("ORA", AddrAbsoluteY, 4),
	0x1A: d("NOP", AddrImplied, 2),
	0x1B: d("SLO", AddrAbsoluteY, 7),
	0x1C: dpc("NOP", AddrAbsoluteX, 4),
	0x1D: dpc("ORA", AddrAbsoluteX, 4),
	0x1E: d("ASL", AddrAbsoluteX, 7),
	0x1F: d("SLO", AddrAbsoluteX, 7),

	0x20: d("JSR", AddrAbsolute, 6),
	0x21: d("AND", AddrIndirectX, 6),
	0x22: invalidDescriptor, // JAM
	0x23: d("RLA", AddrIndirectX, 8),
	0x24: d("BIT", AddrZeroPage, 3),
	0x25: d("AND", AddrZeroPage, 3),
	0x26: d("ROL", AddrZeroPage, 5),
	0x27: d("RLA", AddrZeroPage, 5),
	0x28: d("PLP", AddrImplied, 4),
	0x29: d("AND", AddrImmediate, 2),
	0x2A: d("ROL", AddrAccumulator, 2),
	0x2B: d("ANC", AddrImmediate, 2),
	0x2C: d("BIT", AddrAbsolute, 4),
	0x2D: d("AND", AddrAbsolute, 4),
	0x2E: d("ROL", AddrAbsolute, 6),
	0x2F: d("RLA", AddrAbsolute, 6),

	0x30: dbr("BMI", 2),
	0x31: dpc("AND", AddrIndirectY, 5),
	0x32: invalidDescriptor, // JAM
	0x33: d("RLA", AddrIndirectY, 8),
	0x34: d("NOP", AddrZeroPageX, 4),
	0x35: d("AND", AddrZeroPageX, 4),
	0x36: d("ROL", AddrZeroPageX, 6),
	0x37: d("RLA", AddrZeroPageX, 6),
	0x38: d("SEC", AddrImplied, 2),
	0x39: dpc("AND", AddrAbsoluteY, 4),
	0x3A: d("NOP", AddrImplied, 2),
	0x3B: d("RLA", AddrAbsoluteY, 7),
	0x3C: dpc("NOP", AddrAbsoluteX, 4),
	0x3D: dpc("AND", AddrAbsoluteX, 4),
	0x3E: d("ROL", AddrAbsoluteX, 7),
	0x3F: d("RLA", AddrAbsoluteX, 7),

	0x40: d("RTI", AddrImplied, 6),
	0x41: d("EOR", AddrIndirectX, 6),
	0x42: invalidDescriptor, // JAM
	0x43: d("SRE", AddrIndirectX, 8),
	0x44: d("NOP", AddrZeroPage, 3),
	0x45: d("EOR", AddrZeroPage, 3),
	0x46: d("LSR", AddrZeroPage, 5),
	0x47: d("SRE", AddrZeroPage, 5),
	0x48: d("PHA", AddrImplied, 3),
	0x49: d("EOR", AddrImmediate, 2),
	0x4A: d("LSR", AddrAccumulator, 2),
	0x4B: d("ALR", AddrImmediate, 2),
	0x4C: d("JMP", AddrAbsolute, 3),
	0x4D: d("EOR", AddrAbsolute, 4),
	0x4E: d("LSR", AddrAbsolute, 6),
	0x4F: d("SRE", AddrAbsolute, 6),

	0x50: dbr("BVC", 2),
	0x51: dpc("EOR", AddrIndirectY, 5),
	0x52: invalidDescriptor, // JAM
	0x53: d("SRE", AddrIndirectY, 8),
	0x54: d("NOP", AddrZeroPageX, 4),
	0x55: d("EOR", AddrZeroPageX, 4),
	0x56: d("LSR", AddrZeroPageX, 6),
	0x57: d("SRE", AddrZeroPageX, 6),
	0x58: d("CLI", AddrImplied, 2),
	0x59: dpc("EOR", AddrAbsoluteY, 4),
	0x5A: d("NOP", AddrImplied, 2),
	0x5B: d("SRE", AddrAbsoluteY, 7),
	0x5C: dpc("NOP", AddrAbsoluteX, 4),
	0x5D: dpc("EOR", AddrAbsoluteX, 4),
	0x5E: d("LSR", AddrAbsoluteX, 7),
	0x5F: d("SRE", AddrAbsoluteX, 7),

	0x60: d("RTS", AddrImplied, 6),
	0x61: d("ADC", AddrIndirectX, 6),
	0x62: invalidDescriptor, // JAM
	0x63: d("RRA", AddrIndirectX, 8),
	0x64: d("NOP", AddrZeroPage, 3),
	0x65: d("ADC", AddrZeroPage, 3),
	0x66: d("ROR", AddrZeroPage, 5),
	0x67: d("RRA", AddrZeroPage, 5),
	0x68: d("PLA", AddrImplied, 4),
	0x69: d("ADC", AddrImmediate, 2),
	0x6A: d("ROR", AddrAccumulator, 2),
	0x6B: d("ARR", AddrImmediate, 2),
	0x6C: d("JMP", AddrIndirect, 5),
	0x6D: d("ADC", AddrAbsolute, 4),
	0x6E: d("ROR", AddrAbsolute, 6),
	0x6F: d("RRA", AddrAbsolute, 6),

	0x70: dbr("BVS", 2),
	0x71: dpc("ADC", AddrIndirectY, 5),
	0x72: invalidDescriptor, // JAM
	0x73: d("RRA", AddrIndirectY, 8),
	0x74: d("NOP", AddrZeroPageX, 4),
	0x75: d("ADC", AddrZeroPageX, 4),
	0x76: d("ROR", AddrZeroPageX, 6),
	0x77: d("RRA", AddrZeroPageX, 6),
	0x78: d("SEI", AddrImplied, 2),
	0x79: dpc("ADC", AddrAbsoluteY, 4),
	0x7A: d("NOP", AddrImplied, 2),
	0x7B: d("RRA", AddrAbsoluteY, 7),
	0x7C: dpc("NOP", AddrAbsoluteX, 4),
	0x7D: dpc("ADC", AddrAbsoluteX, 4),
	0x7E: d("ROR", AddrAbsoluteX, 7),
	0x7F: d("RRA", AddrAbsoluteX, 7),

	0x80: d("NOP", AddrImmediate, 2),
	0x81: d("STA", AddrIndirectX, 6),
	0x82: d("NOP", AddrImmediate, 2),
	0x83: d("SAX", AddrIndirectX, 6),
	0x84: d("STY", AddrZeroPage, 3),
	0x85: d("STA", AddrZeroPage, 3),
	0x86: d("STX", AddrZeroPage, 3),
	0x87: d("SAX", AddrZeroPage, 3),
	0x88: d("DEY", AddrImplied, 2),
	0x89: d("NOP", AddrImmediate, 2),
	0x8A: d("TXA", AddrImplied, 2),
	0x8B: d("XAA", AddrImmediate, 2), // unstable on real silicon; modeled per the $ef constant
	0x8C: d("STY", AddrAbsolute, 4),
	0x8D: d("STA", AddrAbsolute, 4),
	0x8E: d("STX", AddrAbsolute, 4),
	0x8F: d("SAX", AddrAbsolute, 4),

	0x90: dbr("BCC", 2),
	0x91: d("STA", AddrIndirectY, 6),
	0x92: invalidDescriptor, // JAM
	0x93: d("AHX", AddrIndirectY, 6), // unstable: A & X & (addr high byte + 1)
	0x94: d("STY", AddrZeroPageX, 4),
	0x95: d("STA", AddrZeroPageX, 4),
	0x96: d("STX", AddrZeroPageY, 4),
	0x97: d("SAX", AddrZeroPageY, 4),
	0x98: d("TYA", AddrImplied, 2),
	0x99: d("STA", AddrAbsoluteY, 5),
	0x9A: d("TXS", AddrImplied, 2),
	0x9B: d("TAS", AddrAbsoluteY, 5), // S = A & X; stores S & (addr high byte + 1)
	0x9C: d("SHY", AddrAbsoluteX, 5), // Y & (addr high byte + 1)
	0x9D: d("STA", AddrAbsoluteX, 5),
	0x9E: d("SHX", AddrAbsoluteY, 5), // X & (addr high byte + 1)
	0x9F: d("AHX", AddrAbsoluteY, 5), // unstable: A & X & (addr high byte + 1)

	0xA0: d("LDY", AddrImmediate, 2),
	0xA1: d("LDA", AddrIndirectX, 6),
	0xA2: d("LDX", AddrImmediate, 2),
	0xA3: d("LAX", AddrIndirectX, 6),
	0xA4: d("LDY", AddrZeroPage, 3),
	0xA5: d("LDA", AddrZeroPage, 3),
	0xA6: d("LDX", AddrZeroPage, 3),
	0xA7: d("LAX", AddrZeroPage, 3),
	0xA8: d("TAY", AddrImplied, 2),
	0xA9: d("LDA", AddrImmediate, 2),
	0xAA: d("TAX", AddrImplied, 2),
	0xAB: invalidDescriptor, // LXA, unreliable
	0xAC: d("LDY", AddrAbsolute, 4),
	0xAD: d("LDA", AddrAbsolute, 4),
	0xAE: d("LDX", AddrAbsolute, 4),
	0xAF: d("LAX", AddrAbsolute, 4),

	0xB0: dbr("BCS", 2),
	0xB1: dpc("LDA", AddrIndirectY, 5),
	0xB2: invalidDescriptor, // JAM
	0xB3: dpc("LAX", AddrIndirectY, 5),
	0xB4: d("LDY", AddrZeroPageX, 4),
	0xB5: d("LDA", AddrZeroPageX, 4),
	0xB6: d("LDX", AddrZeroPageY, 4),
	0xB7: d("LAX", AddrZeroPageY, 4),
	0xB8: d("CLV", AddrImplied, 2),
	0xB9: dpc("LDA", AddrAbsoluteY, 4),
	0xBA: d("TSX", AddrImplied, 2),
	0xBB: dpc("LAS", AddrAbsoluteY, 4),
	0xBC: dpc("LDY", AddrAbsoluteX, 4),
	0xBD: dpc("LDA", AddrAbsoluteX, 4),
	0xBE: dpc("LDX", AddrAbsoluteY, 4),
	0xBF: dpc("LAX", AddrAbsoluteY, 4),

	0xC0: d("CPY", AddrImmediate, 2),
	0xC1: d("CMP", AddrIndirectX, 6),
	0xC2: d("NOP", AddrImmediate, 2),
	0xC3: d("DCP", AddrIndirectX, 8),
	0xC4: d("CPY", AddrZeroPage, 3),
	0xC5: d("CMP", AddrZeroPage, 3),
	0xC6: d("DEC", AddrZeroPage, 5),
	0xC7: d("DCP", AddrZeroPage, 5),
	0xC8: d("INY", AddrImplied, 2),
	0xC9: d("CMP", AddrImmediate, 2),
	0xCA: d("DEX", AddrImplied, 2),
	0xCB: d("SBX", AddrImmediate, 2),
	0xCC: d("CPY", AddrAbsolute, 4),
	0xCD: d("CMP", AddrAbsolute, 4),
	0xCE: d("DEC", AddrAbsolute, 6),
	0xCF: d("DCP", AddrAbsolute, 6),

	0xD0: dbr("BNE", 2),
	0xD1: dpc("CMP", AddrIndirectY, 5),
	0xD2: invalidDescriptor, // JAM
	0xD3: d("DCP", AddrIndirectY, 8),
	0xD4: d("NOP", AddrZeroPageX, 4),
	0xD5: d("CMP", AddrZeroPageX, 4),
	0xD6: d("DEC", AddrZeroPageX, 6),
	0xD7: d("DCP", AddrZeroPageX, 6),
	0xD8: d("CLD", AddrImplied, 2),
	0xD9: dpc("CMP", AddrAbsoluteY, 4),
	0xDA: d("NOP", AddrImplied, 2),
	0xDB: d("DCP", AddrAbsoluteY, 7),
	0xDC: dpc("NOP", AddrAbsoluteX, 4),
	0xDD: dpc("CMP", AddrAbsoluteX, 4),
	0xDE: d("DEC", AddrAbsoluteX, 7),
	0xDF: d("DCP", AddrAbsoluteX, 7),

	0xE0: d("CPX", AddrImmediate, 2),
	0xE1: d("SBC", AddrIndirectX, 6),
	0xE2: d("NOP", AddrImmediate, 2),
	0xE3: d("ISC", AddrIndirectX, 8),
	0xE4: d("CPX", AddrZeroPage, 3),
	0xE5: d("SBC", AddrZeroPage, 3),
	0xE6: d("INC", AddrZeroPage, 5),
	0xE7: d("ISC", AddrZeroPage, 5),
	0xE8: d("INX", AddrImplied, 2),
	0xE9: d("SBC", AddrImmediate, 2),
	0xEA: d("NOP", AddrImplied, 2),
	0xEB: d("SBC", AddrImmediate, 2),
	0xEC: d("CPX", AddrAbsolute, 4),
	0xED: d("SBC", AddrAbsolute, 4),
	0xEE: d("INC", AddrAbsolute, 6),
	0xEF: d("ISC", AddrAbsolute, 6),

	0xF0: dbr("BEQ", 2),
	0xF1: dpc("SBC", AddrIndirectY, 5),
	0xF2: invalidDescriptor, // JAM
	0xF3: d("ISC", AddrIndirectY, 8),
	0xF4: d("NOP", AddrZeroPageX, 4),
	0xF5: d("SBC", AddrZeroPageX, 4),
	0xF6: d("INC", AddrZeroPageX, 6),
	0xF7: d("ISC", AddrZeroPageX, 6),
	0xF8: d("SED", AddrImplied, 2),
	0xF9: dpc("SBC", AddrAbsoluteY, 4),
	0xFA: d("NOP", AddrImplied, 2),
	0xFB: d("ISC", AddrAbsoluteY, 7),
	0xFC: dpc("NOP", AddrAbsoluteX, 4),
	0xFD: dpc("SBC", AddrAbsoluteX, 4),
	0xFE: d("INC", AddrAbsoluteX, 7),
	0xFF: d("ISC", AddrAbsoluteX, 7),
}

// table65C02 starts as a copy of the NMOS table (every documented opcode
// keeps its encoding) and then overrides the slots WDC repurposed: the old
// "jam" and undocumented-combo holes become BBR/BBS/RMB/SMB, the new (zp)
// addressing mode, and properly documented multi-byte NOPs.
var table65C02 = build65C02Table()

func build65C02Table() [256]Descriptor {
	t := tableNMOS

	// Former JAM slots used for 65C02's new (zp) addressing mode.
	t[0x12] = d("ORA", AddrZeroPageIndirect, 5)
	t[0x32] = d("AND", AddrZeroPageIndirect, 5)
	t[0x52] = d("EOR", AddrZeroPageIndirect, 5)
	t[0x72] = d("ADC", AddrZeroPageIndirect, 5)
	t[0x92] = d("STA", AddrZeroPageIndirect, 5)
	t[0xB2] = d("LDA", AddrZeroPageIndirect, 5)
	t[0xD2] = d("CMP", AddrZeroPageIndirect, 5)
	t[0xF2] = d("SBC", AddrZeroPageIndirect, 5)

	// Remaining JAM slots become documented 2-cycle NOPs.
	t[0x02] = d("NOP", AddrImmediate, 2)
	t[0x22] = d("NOP", AddrImmediate, 2)
	t[0x42] = d("NOP", AddrImmediate, 2)
	t[0x62] = d("NOP", AddrImmediate, 2)

	// RMB0-7 / BBR0-7 / SMB0-7 / BBS0-7, stepped by 0x10.
	for i := 0; i < 8; i++ {
		t[0x07+0x10*i] = d(rmbName(i), AddrZeroPage, 5)
		t[0x0F+0x10*i] = d(bbrName(i), AddrZeroPageRel, 5)
		t[0x87+0x10*i] = d(smbName(i), AddrZeroPage, 5)
		t[0x8F+0x10*i] = d(bbsName(i), AddrZeroPageRel, 5)
	}

	// New instructions and addressing-mode extensions.
	t[0x04] = d("TSB", AddrZeroPage, 5)
	t[0x0C] = d("TSB", AddrAbsolute, 6)
	t[0x14] = d("TRB", AddrZeroPage, 5)
	t[0x1A] = d("INC", AddrAccumulator, 2)
	t[0x1C] = d("TRB", AddrAbsolute, 6)
	t[0x34] = d("BIT", AddrZeroPageX, 4)
	t[0x3A] = d("DEC", AddrAccumulator, 2)
	t[0x3C] = dpc("BIT", AddrAbsoluteX, 4)
	t[0x5A] = d("PHY", AddrImplied, 3)
	t[0x64] = d("STZ", AddrZeroPage, 3)
	t[0x74] = d("STZ", AddrZeroPageX, 4)
	t[0x7A] = d("PLY", AddrImplied, 4)
	t[0x7C] = d("JMP", AddrAbsoluteIndirectX, 6)
	t[0x80] = dbr("BRA", 2)
	t[0x89] = d("BIT", AddrImmediate, 2)
	t[0x9C] = d("STZ", AddrAbsolute, 4)
	t[0x9E] = d("STZ", AddrAbsoluteX, 5)
	t[0xCB] = d("WAI", AddrImplied, 3)
	t[0xDA] = d("PHX", AddrImplied, 3)
	t[0xDB] = d("STP", AddrImplied, 3)
	t[0xFA] = d("PLX", AddrImplied, 4)

	// The classic JMP-indirect page-wrap bug is fixed on 65C02, at the
	// cost of one extra cycle (resolveAddress handles the address; the
	// cycle bump lives here in the table).
	t[0x6C] = d("JMP", AddrIndirect, 6)

	// Documented NOPs for the remaining NMOS-undocumented combo slots. Most
	// become one-byte NOPs; $0B/$2B/$4B/$6B and the $x4/$xC slots keep an
	// operand (immediate, zero-page or absolute) the same length as that of
	// the NMOS opcode they replace.
	docNOP := func(op uint8, mode AddrMode, cycles uint8) { t[op] = d("NOP", mode, cycles) }
	docNOP(0x03, AddrImplied, 1)
	docNOP(0x0B, AddrImmediate, 2)
	docNOP(0x13, AddrImplied, 1)
	docNOP(0x1B, AddrImplied, 1)
	docNOP(0x23, AddrImplied, 1)
	docNOP(0x2B, AddrImmediate, 2)
	docNOP(0x33, AddrImplied, 1)
	docNOP(0x3B, AddrImplied, 1)
	docNOP(0x43, AddrImplied, 1)
	docNOP(0x44, AddrZeroPage, 3)
	docNOP(0x4B, AddrImmediate, 2)
	docNOP(0x53, AddrImplied, 1)
	docNOP(0x54, AddrZeroPageX, 4)
	docNOP(0x5B, AddrImplied, 1)
	docNOP(0x5C, AddrAbsolute, 8)
	docNOP(0x63, AddrImplied, 1)
	docNOP(0x6B, AddrImmediate, 2)
	docNOP(0x73, AddrImplied, 1)
	docNOP(0x7B, AddrImplied, 1)
	docNOP(0x83, AddrImplied, 1)
	docNOP(0x8B, AddrImplied, 1)
	docNOP(0x93, AddrImplied, 1)
	docNOP(0x9B, AddrImplied, 1)
	docNOP(0x9F, AddrImplied, 1)
	docNOP(0xA3, AddrImplied, 1)
	docNOP(0xAB, AddrImplied, 1)
	docNOP(0xB3, AddrImplied, 1)
	docNOP(0xBB, AddrImplied, 1)
	docNOP(0xC3, AddrImplied, 1)
	docNOP(0xD3, AddrImplied, 1)
	docNOP(0xD4, AddrZeroPageX, 4)
	docNOP(0xDC, AddrAbsolute, 4)
	docNOP(0xE3, AddrImplied, 1)
	docNOP(0xEB, AddrImplied, 1)
	docNOP(0xF3, AddrImplied, 1)
	docNOP(0xF4, AddrZeroPageX, 4)
	docNOP(0xFC, AddrAbsolute, 4)
	docNOP(0xFB, AddrImplied, 1)

	return t
}

func rmbName(i int) string { return "RMB" + digit(i) }
func smbName(i int) string { return "SMB" + digit(i) }
func bbrName(i int) string { return "BBR" + digit(i) }
func bbsName(i int) string { return "BBS" + digit(i) }

func digit(i int) string { return string(rune('0' + i)) }

// Table returns the descriptor table for a variant.
func Table(v Variant) *[256]Descriptor {
	if v == WDC65C02 {
		return &table65C02
	}
	return &tableNMOS
}
