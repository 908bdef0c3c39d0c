// Package disasm renders opcode bytes back to the canonical textual syntax
// the assembler accepts. Re-assembling a rendered line gives back the same
// bytes except where several opcodes share one mnemonic and addressing mode
// (the extra NOP slots, NMOS $EB SBC), which re-assemble to the first such
// opcode in the table, and for an absolute operand below $0100, which the
// assembler encodes as zero page when the mnemonic has a zero-page form.
package disasm

import (
	"fmt"
	"strings"

	"mos65/cpu"
)

// Line is one disassembled instruction.
type Line struct {
	Addr     uint16
	Bytes    []byte
	Mnemonic string
	Operand  string
	Len      int
}

func (l Line) String() string {
	var hex strings.Builder
	for _, b := range l.Bytes {
		fmt.Fprintf(&hex, "%02X ", b)
	}
	text := l.Mnemonic
	if l.Operand != "" {
		text += " " + l.Operand
	}
	return fmt.Sprintf("%04X: %-9s %s", l.Addr, strings.TrimSpace(hex.String()), text)
}

// peeker is the minimal read capability disasm needs; cpu.Bus and
// cpu.Memory both satisfy it via Peek8, so disassembling never perturbs an
// MMIO-backed address the way a real Read8 might.
type peeker interface {
	Peek8(addr uint16) (uint8, error)
}

// One disassembles a single instruction at addr and returns it along with
// the number of bytes consumed.
func One(bus peeker, addr uint16, variant cpu.Variant) (Line, error) {
	opcode, err := bus.Peek8(addr)
	if err != nil {
		return Line{}, err
	}
	desc := cpu.Table(variant)[opcode]

	n := 1 + desc.OperandLen()
	raw := make([]byte, n)
	raw[0] = opcode
	for i := 1; i < n; i++ {
		b, err := bus.Peek8(addr + uint16(i))
		if err != nil {
			return Line{}, err
		}
		raw[i] = b
	}

	if !desc.Valid {
		return Line{
			Addr:     addr,
			Bytes:    raw[:1],
			Mnemonic: ".byte",
			Operand:  fmt.Sprintf("$%02X", opcode),
			Len:      1,
		}, nil
	}

	operand := formatOperand(desc, raw, addr)
	return Line{
		Addr:     addr,
		Bytes:    raw,
		Mnemonic: desc.Mnemonic,
		Operand:  operand,
		Len:      n,
	}, nil
}

// N disassembles count instructions starting at addr.
func N(bus peeker, addr uint16, count int, variant cpu.Variant) ([]Line, error) {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		line, err := One(bus, addr, variant)
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
		addr += uint16(line.Len)
	}
	return lines, nil
}

func formatOperand(desc cpu.Descriptor, raw []byte, addr uint16) string {
	switch desc.Mode {
	case cpu.AddrImplied:
		return ""
	case cpu.AddrAccumulator:
		return "A"
	case cpu.AddrImmediate:
		return fmt.Sprintf("#$%02X", raw[1])
	case cpu.AddrZeroPage:
		return fmt.Sprintf("$%02X", raw[1])
	case cpu.AddrZeroPageX:
		return fmt.Sprintf("$%02X,X", raw[1])
	case cpu.AddrZeroPageY:
		return fmt.Sprintf("$%02X,Y", raw[1])
	case cpu.AddrAbsolute:
		return fmt.Sprintf("$%04X", le16(raw))
	case cpu.AddrAbsoluteX:
		return fmt.Sprintf("$%04X,X", le16(raw))
	case cpu.AddrAbsoluteY:
		return fmt.Sprintf("$%04X,Y", le16(raw))
	case cpu.AddrIndirect:
		return fmt.Sprintf("($%04X)", le16(raw))
	case cpu.AddrAbsoluteIndirectX:
		return fmt.Sprintf("($%04X,X)", le16(raw))
	case cpu.AddrIndirectX:
		return fmt.Sprintf("($%02X,X)", raw[1])
	case cpu.AddrIndirectY:
		return fmt.Sprintf("($%02X),Y", raw[1])
	case cpu.AddrZeroPageIndirect:
		return fmt.Sprintf("($%02X)", raw[1])
	case cpu.AddrRelative:
		target := addr + 2 + uint16(int16(int8(raw[1])))
		return fmt.Sprintf("$%04X", target)
	case cpu.AddrZeroPageRel:
		target := addr + 3 + uint16(int16(int8(raw[2])))
		return fmt.Sprintf("$%02X,$%04X", raw[1], target)
	default:
		return ""
	}
}

func le16(raw []byte) uint16 {
	return uint16(raw[2])<<8 | uint16(raw[1])
}
