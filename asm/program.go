package asm

import (
	"strings"

	"mos65/cpu"
)

// AssembleProgram is a whole-program two-pass assembler: labels of the form
// "name:" may be defined anywhere and referenced, including forward, by any
// later or earlier line. The single-line Assemble in asm.go remains the
// primitive this builds on; AssembleProgram just resolves labels first.
func AssembleProgram(lines []string, startAddr uint16, variant cpu.Variant) ([]byte, map[string]uint16, error) {
	labels := map[string]uint16{}
	type stmt struct {
		addr uint16
		text string
	}
	var stmts []stmt

	addr := startAddr
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 && !strings.ContainsAny(line[:idx], " \t") {
			label := line[:idx]
			labels[label] = addr
			line = strings.TrimSpace(line[idx+1:])
			if line == "" {
				continue
			}
		}
		size, err := sizeOf(line, variant)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, stmt{addr: addr, text: line})
		addr += uint16(size)
	}

	var out []byte
	for _, s := range stmts {
		enc, err := Assemble(s.text, s.addr, variant, labels)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, enc...)
	}
	return out, labels, nil
}

// sizeOf assembles against a placeholder label table (zero-filled) purely
// to learn the instruction's byte length for the first pass; any label
// operand is sized as absolute (3 bytes) since forward references always
// resolve to a 16-bit address.
func sizeOf(line string, variant cpu.Variant) (int, error) {
	mnemonic, operand, err := splitLine(line)
	if err != nil {
		return 0, err
	}
	if operand == "" {
		enc, err := assembleNoOperand(mnemonic, variant)
		if err != nil {
			return 0, err
		}
		return len(enc), nil
	}
	if isBranchMnemonic(mnemonic) {
		// Every branch, taken or not, is a fixed 2-byte encoding; sizing it
		// never needs the real target address.
		return 2, nil
	}
	op, err := parseOperand(operand, nil)
	if err != nil {
		return 0, err
	}
	if op.kind == kindLabel {
		return 3, nil
	}
	enc, err := assembleWithOperand(mnemonic, op, 0, variant)
	if err != nil {
		return 0, err
	}
	return len(enc), nil
}
