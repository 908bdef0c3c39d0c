package cpu

// execute runs the opcode named by desc, having already fetched the opcode
// byte. It resolves the effective address if the mode has one, dispatches
// to the mnemonic's handler, then accounts for cycles: base cycles from the
// descriptor, plus page-cross/branch-taken/BCD penalties.
func (c *CPU) execute(desc Descriptor, opcodePC uint16) {
	r := c.resolveAddress(desc.Mode)

	extra := uint8(0)
	fn, ok := execTable[desc.Mnemonic]
	if !ok {
		panic(&InvalidOpcodeError{PC: opcodePC})
	}
	extra += fn(c, desc, r, opcodePC)

	if desc.PageCrossExtra && r.pageCrossed {
		extra++
	}
	c.Cycles += uint64(desc.Cycles) + uint64(extra)
}

// execFunc implements one mnemonic across whichever addressing modes the
// table assigns it. It returns any cycle penalty beyond the descriptor's
// base (branch-taken, page-cross-on-branch, BCD decimal-mode extra).
type execFunc func(c *CPU, desc Descriptor, r resolved, opcodePC uint16) uint8

var execTable map[string]execFunc

func init() {
	execTable = map[string]execFunc{
		"LDA": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.A = c.read(r.addr)
			c.P.checkNZ(c.A)
			return 0
		},
		"LDX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.X = c.read(r.addr)
			c.P.checkNZ(c.X)
			return 0
		},
		"LDY": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.Y = c.read(r.addr)
			c.P.checkNZ(c.Y)
			return 0
		},
		"STA": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.write(r.addr, c.A)
			return 0
		},
		"STX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.write(r.addr, c.X)
			return 0
		},
		"STY": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.write(r.addr, c.Y)
			return 0
		},
		"STZ": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.write(r.addr, 0)
			return 0
		},

		"ADC": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			operand := c.read(r.addr)
			return c.adc(operand)
		},
		"SBC": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			operand := c.read(r.addr)
			return c.sbc(operand)
		},

		"AND": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.A &= c.read(r.addr)
			c.P.checkNZ(c.A)
			return 0
		},
		"ORA": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.A |= c.read(r.addr)
			c.P.checkNZ(c.A)
			return 0
		},
		"EOR": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.A ^= c.read(r.addr)
			c.P.checkNZ(c.A)
			return 0
		},
		"BIT": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			var v uint8
			if d.Mode == AddrImmediate {
				v = c.read(r.addr)
				c.P.checkZ(c.A & v)
				return 0
			}
			v = c.read(r.addr)
			c.P.checkZ(c.A & v)
			c.P.writeBit(FlagN, v&0x80 != 0)
			c.P.writeBit(FlagV, v&0x40 != 0)
			return 0
		},
		"TRB": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			v := c.read(r.addr)
			c.P.checkZ(c.A & v)
			c.write(r.addr, v&^c.A)
			return 0
		},
		"TSB": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			v := c.read(r.addr)
			c.P.checkZ(c.A & v)
			c.write(r.addr, v|c.A)
			return 0
		},

		"ASL": execShift(func(c *CPU, v uint8) uint8 {
			c.P.writeBit(FlagC, v&0x80 != 0)
			return v << 1
		}),
		"LSR": execShift(func(c *CPU, v uint8) uint8 {
			c.P.writeBit(FlagC, v&0x01 != 0)
			return v >> 1
		}),
		"ROL": execShift(func(c *CPU, v uint8) uint8 {
			carryIn := c.P.C()
			c.P.writeBit(FlagC, v&0x80 != 0)
			out := v << 1
			if carryIn {
				out |= 1
			}
			return out
		}),
		"ROR": execShift(func(c *CPU, v uint8) uint8 {
			carryIn := c.P.C()
			c.P.writeBit(FlagC, v&0x01 != 0)
			out := v >> 1
			if carryIn {
				out |= 0x80
			}
			return out
		}),

		"CMP": execCompare(func(c *CPU) uint8 { return c.A }),
		"CPX": execCompare(func(c *CPU) uint8 { return c.X }),
		"CPY": execCompare(func(c *CPU) uint8 { return c.Y }),

		"INC": execIncDec(+1),
		"DEC": execIncDec(-1),

		"INX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.X++
			c.P.checkNZ(c.X)
			return 0
		},
		"DEX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.X--
			c.P.checkNZ(c.X)
			return 0
		},
		"INY": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.Y++
			c.P.checkNZ(c.Y)
			return 0
		},
		"DEY": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.Y--
			c.P.checkNZ(c.Y)
			return 0
		},

		"CLC": execFlag(FlagC, false),
		"SEC": execFlag(FlagC, true),
		"CLD": execFlag(FlagD, false),
		"SED": execFlag(FlagD, true),
		"CLI": execFlag(FlagI, false),
		"SEI": execFlag(FlagI, true),
		"CLV": execFlag(FlagV, false),

		"TAX": execTransfer(func(c *CPU) *uint8 { return &c.A }, func(c *CPU) *uint8 { return &c.X }),
		"TXA": execTransfer(func(c *CPU) *uint8 { return &c.X }, func(c *CPU) *uint8 { return &c.A }),
		"TAY": execTransfer(func(c *CPU) *uint8 { return &c.A }, func(c *CPU) *uint8 { return &c.Y }),
		"TYA": execTransfer(func(c *CPU) *uint8 { return &c.Y }, func(c *CPU) *uint8 { return &c.A }),
		"TSX": execTransfer(func(c *CPU) *uint8 { return &c.S }, func(c *CPU) *uint8 { return &c.X }),
		"TXS": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.S = c.X // TXS does not touch flags
			return 0
		},

		"PHA": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 { c.push8(c.A); return 0 },
		"PHX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 { c.push8(c.X); return 0 },
		"PHY": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 { c.push8(c.Y); return 0 },
		"PHP": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			p := c.P | FlagB | FlagU
			c.push8(uint8(p))
			return 0
		},
		"PLA": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.A = c.pull8()
			c.P.checkNZ(c.A)
			return 0
		},
		"PLX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.X = c.pull8()
			c.P.checkNZ(c.X)
			return 0
		},
		"PLY": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.Y = c.pull8()
			c.P.checkNZ(c.Y)
			return 0
		},
		"PLP": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.P = P(c.pull8())
			c.P.writeBit(FlagU, true)
			return 0
		},

		"JMP": func(c *CPU, d Descriptor, r resolved, opcodePC uint16) uint8 {
			if r.addr == opcodePC {
				c.emit(CallbackEvent{Kind: EventTrap, Addr: opcodePC})
				panic(&TrapError{PC: opcodePC})
			}
			c.PC = r.addr
			return 0
		},
		"JSR": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.push16(c.PC - 1)
			c.PC = r.addr
			return 0
		},
		"RTS": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.PC = c.pull16() + 1
			return 0
		},
		"BRK": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.push16(c.PC + 1)
			p := c.P | FlagB | FlagU
			c.push8(uint8(p))
			c.P.writeBit(FlagI, true)
			addr, err := c.read16Checked(IRQVector)
			if err != nil {
				panic(err)
			}
			c.PC = addr
			return 0
		},
		"RTI": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.P = P(c.pull8())
			c.P.writeBit(FlagU, true)
			c.PC = c.pull16()
			return 0
		},
		"NOP": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			if d.Mode != AddrImplied && d.Mode != AddrAccumulator {
				_ = c.read(r.addr)
			}
			return 0
		},
		"WAI": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.waiting = true
			return 0
		},
		"STP": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.stopped = true
			return 0
		},

		"BPL": execBranch(func(c *CPU) bool { return !c.P.N() }),
		"BMI": execBranch(func(c *CPU) bool { return c.P.N() }),
		"BVC": execBranch(func(c *CPU) bool { return !c.P.V() }),
		"BVS": execBranch(func(c *CPU) bool { return c.P.V() }),
		"BCC": execBranch(func(c *CPU) bool { return !c.P.C() }),
		"BCS": execBranch(func(c *CPU) bool { return c.P.C() }),
		"BNE": execBranch(func(c *CPU) bool { return !c.P.Z() }),
		"BEQ": execBranch(func(c *CPU) bool { return c.P.Z() }),
		"BRA": execBranch(func(c *CPU) bool { return true }),

		"RMB0": execRMB(0), "RMB1": execRMB(1), "RMB2": execRMB(2), "RMB3": execRMB(3),
		"RMB4": execRMB(4), "RMB5": execRMB(5), "RMB6": execRMB(6), "RMB7": execRMB(7),
		"SMB0": execSMB(0), "SMB1": execSMB(1), "SMB2": execSMB(2), "SMB3": execSMB(3),
		"SMB4": execSMB(4), "SMB5": execSMB(5), "SMB6": execSMB(6), "SMB7": execSMB(7),
		"BBR0": execBBR(0), "BBR1": execBBR(1), "BBR2": execBBR(2), "BBR3": execBBR(3),
		"BBR4": execBBR(4), "BBR5": execBBR(5), "BBR6": execBBR(6), "BBR7": execBBR(7),
		"BBS0": execBBS(0), "BBS1": execBBS(1), "BBS2": execBBS(2), "BBS3": execBBS(3),
		"BBS4": execBBS(4), "BBS5": execBBS(5), "BBS6": execBBS(6), "BBS7": execBBS(7),

		// Undocumented NMOS combo opcodes.
		"SLO": execCombo(func(c *CPU, v *uint8) { *v = shiftASL(c, *v) }, opOR),
		"RLA": execCombo(func(c *CPU, v *uint8) { *v = shiftROL(c, *v) }, opAND),
		"SRE": execCombo(func(c *CPU, v *uint8) { *v = shiftLSR(c, *v) }, opEOR),
		"RRA": execCombo(func(c *CPU, v *uint8) { *v = shiftROR(c, *v) }, opADC),
		"DCP": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			v := c.read(r.addr) - 1
			c.write(r.addr, v)
			compareAgainst(c, c.A, v)
			return 0
		},
		"ISC": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			v := c.read(r.addr) + 1
			c.write(r.addr, v)
			return c.sbc(v)
		},
		"SAX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.write(r.addr, c.A&c.X)
			return 0
		},
		"LAX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			v := c.read(r.addr)
			c.A, c.X = v, v
			c.P.checkNZ(v)
			return 0
		},
		"ANC": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.A &= c.read(r.addr)
			c.P.checkNZ(c.A)
			c.P.writeBit(FlagC, c.P.N())
			return 0
		},
		"ALR": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.A &= c.read(r.addr)
			c.A = shiftLSR(c, c.A)
			return 0
		},
		"ARR": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.A &= c.read(r.addr)
			c.A = shiftROR(c, c.A)
			c.P.writeBit(FlagC, c.A&0x40 != 0)
			c.P.writeBit(FlagV, (c.A&0x40 != 0) != (c.A&0x20 != 0))
			return 0
		},
		"SBX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			v := c.read(r.addr)
			ax := c.A & c.X
			c.P.writeBit(FlagC, ax >= v)
			c.X = ax - v
			c.P.checkNZ(c.X)
			return 0
		},
		"LAS": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			v := c.read(r.addr) & c.S
			c.A, c.X, c.S = v, v, v
			c.P.checkNZ(v)
			return 0
		},
		"JAM": func(c *CPU, d Descriptor, r resolved, opcodePC uint16) uint8 {
			panic(&InvalidOpcodeError{PC: opcodePC})
		},
		"XAA": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			operand := c.read(r.addr)
			c.P.checkNZ(c.A)
			c.A = (c.A | 0xEF) & c.X & operand
			return 0
		},
		"AHX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			h := uint8(r.addr>>8) + 1
			c.write(r.addr, c.A&c.X&h)
			return 0
		},
		"SHX": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			h := uint8(r.addr>>8) + 1
			c.write(r.addr, c.X&h)
			return 0
		},
		"SHY": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			h := uint8(r.addr>>8) + 1
			c.write(r.addr, c.Y&h)
			return 0
		},
		"TAS": func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
			c.S = c.A & c.X
			h := uint8(r.addr>>8) + 1
			c.write(r.addr, c.S&h)
			return 0
		},
	}
}

func execShift(f func(c *CPU, v uint8) uint8) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		if d.Mode == AddrAccumulator {
			c.A = f(c, c.A)
			c.P.checkNZ(c.A)
			return 0
		}
		v := f(c, c.read(r.addr))
		c.write(r.addr, v)
		c.P.checkNZ(v)
		return 0
	}
}

func shiftASL(c *CPU, v uint8) uint8 {
	c.P.writeBit(FlagC, v&0x80 != 0)
	out := v << 1
	c.P.checkNZ(out)
	return out
}

func shiftLSR(c *CPU, v uint8) uint8 {
	c.P.writeBit(FlagC, v&0x01 != 0)
	out := v >> 1
	c.P.checkNZ(out)
	return out
}

func shiftROL(c *CPU, v uint8) uint8 {
	carryIn := c.P.C()
	c.P.writeBit(FlagC, v&0x80 != 0)
	out := v << 1
	if carryIn {
		out |= 1
	}
	c.P.checkNZ(out)
	return out
}

func shiftROR(c *CPU, v uint8) uint8 {
	carryIn := c.P.C()
	c.P.writeBit(FlagC, v&0x01 != 0)
	out := v >> 1
	if carryIn {
		out |= 0x80
	}
	c.P.checkNZ(out)
	return out
}

func compareAgainst(c *CPU, reg, v uint8) {
	c.P.writeBit(FlagC, reg >= v)
	c.P.checkNZ(reg - v)
}

func execCompare(reg func(c *CPU) uint8) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		v := c.read(r.addr)
		compareAgainst(c, reg(c), v)
		return 0
	}
}

func execIncDec(delta int) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		if d.Mode == AddrAccumulator {
			c.A = uint8(int(c.A) + delta)
			c.P.checkNZ(c.A)
			return 0
		}
		v := uint8(int(c.read(r.addr)) + delta)
		c.write(r.addr, v)
		c.P.checkNZ(v)
		return 0
	}
}

func execFlag(bit P, value bool) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		c.P.writeBit(bit, value)
		return 0
	}
}

func execTransfer(from, to func(c *CPU) *uint8) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		v := *from(c)
		*to(c) = v
		c.P.checkNZ(v)
		return 0
	}
}

// execBranch implements a conditional (or, for BRA, unconditional) relative
// branch: +1 cycle if taken, +1 more if the target crosses a page.
func execBranch(cond func(c *CPU) bool) execFunc {
	return func(c *CPU, d Descriptor, r resolved, opcodePC uint16) uint8 {
		if !cond(c) {
			return 0
		}
		if r.addr == opcodePC {
			c.emit(CallbackEvent{Kind: EventTrap, Addr: opcodePC})
			panic(&TrapError{PC: opcodePC})
		}
		extra := uint8(1)
		if r.pageCrossed {
			extra++
		}
		c.PC = r.addr
		return extra
	}
}

func execRMB(bit int) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		v := c.read(r.addr)
		c.write(r.addr, v&^(1<<bit))
		return 0
	}
}

func execSMB(bit int) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		v := c.read(r.addr)
		c.write(r.addr, v|(1<<bit))
		return 0
	}
}

func execBBR(bit int) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		v := c.read(r.addr)
		if v&(1<<bit) == 0 {
			c.PC = r.branchTarget
			return 1
		}
		return 0
	}
}

func execBBS(bit int) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		v := c.read(r.addr)
		if v&(1<<bit) != 0 {
			c.PC = r.branchTarget
			return 1
		}
		return 0
	}
}

// opXxx helpers give execCombo a uniform "apply the logical op to A" shape
// shared by SLO/RLA/SRE's accumulator half.
func opOR(c *CPU, v uint8) { c.A |= v; c.P.checkNZ(c.A) }
func opAND(c *CPU, v uint8) { c.A &= v; c.P.checkNZ(c.A) }
func opEOR(c *CPU, v uint8) { c.A ^= v; c.P.checkNZ(c.A) }
func opADC(c *CPU, v uint8) { c.adc(v) }

// execCombo implements the SLO/RLA/SRE/RRA family: a read-modify-write
// shift/rotate on memory, followed by combining the new value into A.
func execCombo(shiftRotate func(c *CPU, v *uint8), combine func(c *CPU, v uint8)) execFunc {
	return func(c *CPU, d Descriptor, r resolved, _ uint16) uint8 {
		v := c.read(r.addr)
		shiftRotate(c, &v)
		c.write(r.addr, v)
		combine(c, v)
		return 0
	}
}
