// Package asm assembles the canonical textual 6502/65C02 syntax into
// opcode bytes, the inverse of package disasm.
package asm

import (
	"regexp"
	"strconv"
	"strings"

	"mos65/cpu"
)

var operandPatterns = []struct {
	mode AddrKind
	re   *regexp.Regexp
}{
	{kindAccumulator, regexp.MustCompile(`^[Aa]$`)},
	{kindImmediate, regexp.MustCompile(`^#\$?([0-9A-Fa-f]{1,2})$`)},
	{kindIndirectX, regexp.MustCompile(`^\(\$?([0-9A-Fa-f]{1,2}),\s*[Xx]\)$`)},
	{kindIndirectY, regexp.MustCompile(`^\(\$?([0-9A-Fa-f]{1,2})\),\s*[Yy]$`)},
	{kindZeroPageIndirect, regexp.MustCompile(`^\(\$?([0-9A-Fa-f]{1,2})\)$`)},
	{kindAbsoluteIndirectX, regexp.MustCompile(`^\(\$?([0-9A-Fa-f]{3,4}),\s*[Xx]\)$`)},
	{kindIndirect, regexp.MustCompile(`^\(\$?([0-9A-Fa-f]{3,4})\)$`)},
	{kindZeroPageRel, regexp.MustCompile(`^\$?([0-9A-Fa-f]{1,2}),\s*\$([0-9A-Fa-f]{3,4})$`)},
	{kindZeroPageX, regexp.MustCompile(`^\$?([0-9A-Fa-f]{1,2}),\s*[Xx]$`)},
	{kindZeroPageY, regexp.MustCompile(`^\$?([0-9A-Fa-f]{1,2}),\s*[Yy]$`)},
	{kindAbsoluteX, regexp.MustCompile(`^\$?([0-9A-Fa-f]{3,4}),\s*[Xx]$`)},
	{kindAbsoluteY, regexp.MustCompile(`^\$?([0-9A-Fa-f]{3,4}),\s*[Yy]$`)},
	{kindRelativeOffset, regexp.MustCompile(`^\*([+-])(\d+)$`)},
	{kindZeroPage, regexp.MustCompile(`^\$([0-9A-Fa-f]{1,2})$`)},
	{kindAbsolute, regexp.MustCompile(`^\$([0-9A-Fa-f]{3,4})$`)},
	{kindLabel, regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)},
}

// AddrKind is the operand shape the parser extracted, before it's matched
// against the opcode table's addressing modes (which also distinguishes
// zero-page from absolute by value range, something the regex alone can't
// know for a label).
type AddrKind int

const (
	kindImplied AddrKind = iota
	kindAccumulator
	kindImmediate
	kindZeroPage
	kindZeroPageX
	kindZeroPageY
	kindAbsolute
	kindAbsoluteX
	kindAbsoluteY
	kindIndirect
	kindIndirectX
	kindIndirectY
	kindZeroPageIndirect
	kindAbsoluteIndirectX
	kindRelativeOffset
	kindZeroPageRel
	kindLabel
)

// parsedOperand is the intermediate result of tokenizing the operand.
type parsedOperand struct {
	kind   AddrKind
	value  uint16
	value2 uint16 // target address, for the zp,rel two-operand form
	label  string
}

// Assemble encodes a single line of the form "MNEMONIC [operand]" for the
// given variant, resolving addr-relative forms (branches, *+n/*-n) against
// the instruction's own address. labels, if non-nil, resolves bare label
// references to absolute addresses.
func Assemble(line string, addr uint16, variant cpu.Variant, labels map[string]uint16) ([]byte, error) {
	mnemonic, operandText, err := splitLine(line)
	if err != nil {
		return nil, err
	}

	if operandText == "" {
		return assembleNoOperand(mnemonic, variant)
	}

	op, err := parseOperand(operandText, labels)
	if err != nil {
		return nil, err
	}
	return assembleWithOperand(mnemonic, op, addr, variant)
}

func splitLine(line string) (mnemonic, operand string, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", &cpu.ParseError{Token: "", Context: "empty assembler line"}
	}
	fields := strings.Fields(line)
	mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		operand = strings.Join(fields[1:], "")
	}
	return mnemonic, operand, nil
}

func assembleNoOperand(mnemonic string, variant cpu.Variant) ([]byte, error) {
	for opcode, desc := range cpu.Table(variant) {
		if !desc.Valid || desc.Mnemonic != mnemonic {
			continue
		}
		if desc.Mode == cpu.AddrImplied {
			return []byte{uint8(opcode)}, nil
		}
	}
	return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
}

func parseOperand(text string, labels map[string]uint16) (parsedOperand, error) {
	for _, p := range operandPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch p.mode {
		case kindAccumulator:
			return parsedOperand{kind: kindAccumulator}, nil
		case kindZeroPageRel:
			zp, err := strconv.ParseUint(m[1], 16, 32)
			if err != nil {
				return parsedOperand{}, &cpu.InvalidOperandError{Operand: text}
			}
			target, err := strconv.ParseUint(m[2], 16, 32)
			if err != nil {
				return parsedOperand{}, &cpu.InvalidOperandError{Operand: text}
			}
			return parsedOperand{kind: kindZeroPageRel, value: uint16(zp), value2: uint16(target)}, nil
		case kindRelativeOffset:
			n, _ := strconv.ParseInt(m[2], 10, 32)
			if m[1] == "-" {
				n = -n
			}
			return parsedOperand{kind: kindRelativeOffset, value: uint16(int16(n))}, nil
		case kindLabel:
			if labels != nil {
				if a, ok := labels[text]; ok {
					return parsedOperand{kind: kindAbsolute, value: a, label: text}, nil
				}
			}
			return parsedOperand{kind: kindLabel, label: text}, nil
		default:
			v, err := strconv.ParseUint(m[1], 16, 32)
			if err != nil {
				return parsedOperand{}, &cpu.InvalidOperandError{Operand: text}
			}
			return parsedOperand{kind: p.mode, value: uint16(v)}, nil
		}
	}
	return parsedOperand{}, &cpu.InvalidOperandError{Operand: text}
}

func assembleWithOperand(mnemonic string, op parsedOperand, addr uint16, variant cpu.Variant) ([]byte, error) {
	table := cpu.Table(variant)

	isBranch := isBranchMnemonic(mnemonic)
	if isBranch || op.kind == kindRelativeOffset {
		var target uint16
		switch op.kind {
		case kindRelativeOffset:
			target = addr + 2 + op.value
		default:
			target = op.value
		}
		opcode, desc, ok := find(table, mnemonic, cpu.AddrRelative)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		offset := int32(target) - int32(addr) - 2
		if offset < -128 || offset > 127 {
			return nil, &cpu.OperandRangeError{Reason: "branch target out of range"}
		}
		_ = desc
		return []byte{opcode, uint8(int8(offset))}, nil
	}

	switch op.kind {
	case kindAccumulator:
		opcode, _, ok := find(table, mnemonic, cpu.AddrAccumulator)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		return []byte{opcode}, nil

	case kindImmediate:
		opcode, _, ok := find(table, mnemonic, cpu.AddrImmediate)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		if op.value > 0xFF {
			return nil, &cpu.OperandRangeError{Reason: "immediate operand too large"}
		}
		return []byte{opcode, uint8(op.value)}, nil

	case kindZeroPage, kindAbsolute, kindLabel:
		return assembleAddress(table, mnemonic, op)

	case kindZeroPageX:
		return assembleByModePair(table, mnemonic, op, cpu.AddrZeroPageX, cpu.AddrAbsoluteX)
	case kindZeroPageY:
		return assembleByModePair(table, mnemonic, op, cpu.AddrZeroPageY, cpu.AddrAbsoluteY)
	case kindAbsoluteX:
		opcode, _, ok := find(table, mnemonic, cpu.AddrAbsoluteX)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		return encode16(opcode, op.value), nil
	case kindAbsoluteY:
		opcode, _, ok := find(table, mnemonic, cpu.AddrAbsoluteY)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		return encode16(opcode, op.value), nil
	case kindIndirect:
		opcode, _, ok := find(table, mnemonic, cpu.AddrIndirect)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		return encode16(opcode, op.value), nil
	case kindAbsoluteIndirectX:
		opcode, _, ok := find(table, mnemonic, cpu.AddrAbsoluteIndirectX)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		return encode16(opcode, op.value), nil
	case kindIndirectX:
		opcode, _, ok := find(table, mnemonic, cpu.AddrIndirectX)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		return []byte{opcode, uint8(op.value)}, nil
	case kindIndirectY:
		opcode, _, ok := find(table, mnemonic, cpu.AddrIndirectY)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		return []byte{opcode, uint8(op.value)}, nil
	case kindZeroPageIndirect:
		opcode, _, ok := find(table, mnemonic, cpu.AddrZeroPageIndirect)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		return []byte{opcode, uint8(op.value)}, nil
	case kindZeroPageRel:
		opcode, _, ok := find(table, mnemonic, cpu.AddrZeroPageRel)
		if !ok {
			return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
		}
		offset := int32(op.value2) - int32(addr) - 3
		if offset < -128 || offset > 127 {
			return nil, &cpu.OperandRangeError{Reason: "BBRn/BBSn branch target out of range"}
		}
		return []byte{opcode, uint8(op.value), uint8(int8(offset))}, nil
	}

	return nil, &cpu.InvalidOperandError{Mnemonic: mnemonic}
}

// assembleAddress handles a bare $nn/$nnnn/label operand: prefer zero-page
// over absolute when the value fits, per the spec's resolution rule. A
// resolved label is always encoded as absolute.
func assembleAddress(table *[256]cpu.Descriptor, mnemonic string, op parsedOperand) ([]byte, error) {
	if op.kind == kindLabel {
		return nil, &cpu.InvalidOperandError{Mnemonic: mnemonic, Operand: op.label}
	}
	if op.value <= 0xFF && op.label == "" {
		if opcode, _, ok := find(table, mnemonic, cpu.AddrZeroPage); ok {
			return []byte{opcode, uint8(op.value)}, nil
		}
	}
	if opcode, _, ok := find(table, mnemonic, cpu.AddrAbsolute); ok {
		return encode16(opcode, op.value), nil
	}
	return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
}

func assembleByModePair(table *[256]cpu.Descriptor, mnemonic string, op parsedOperand, zp, abs cpu.AddrMode) ([]byte, error) {
	if op.value <= 0xFF {
		if opcode, _, ok := find(table, mnemonic, zp); ok {
			return []byte{opcode, uint8(op.value)}, nil
		}
	}
	if opcode, _, ok := find(table, mnemonic, abs); ok {
		return encode16(opcode, op.value), nil
	}
	return nil, &cpu.UnknownMnemonicError{Mnemonic: mnemonic}
}

func find(table *[256]cpu.Descriptor, mnemonic string, mode cpu.AddrMode) (uint8, cpu.Descriptor, bool) {
	for opcode, desc := range table {
		if desc.Valid && desc.Mnemonic == mnemonic && desc.Mode == mode {
			return uint8(opcode), desc, true
		}
	}
	return 0, cpu.Descriptor{}, false
}

func encode16(opcode uint8, v uint16) []byte {
	return []byte{opcode, uint8(v), uint8(v >> 8)}
}

func isBranchMnemonic(m string) bool {
	switch m {
	case "BPL", "BMI", "BVC", "BVS", "BCC", "BCS", "BNE", "BEQ", "BRA":
		return true
	default:
		return false
	}
}
