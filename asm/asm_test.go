package asm

import (
	"testing"

	"mos65/cpu"
)

func assembleOne(t *testing.T, line string, addr uint16, variant cpu.Variant) []byte {
	t.Helper()
	enc, err := Assemble(line, addr, variant, nil)
	if err != nil {
		t.Fatalf("Assemble(%q): %v", line, err)
	}
	return enc
}

func wantBytes(t *testing.T, got []byte, want ...byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d bytes %v, want %d bytes %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = $%02X, want $%02X (got %v, want %v)", i, got[i], want[i], got, want)
		}
	}
}

func TestAssembleAddressingModes(t *testing.T) {
	tests := []struct {
		line string
		want []byte
	}{
		{"LDA #$10", []byte{0xA9, 0x10}},
		{"LDA $10", []byte{0xA5, 0x10}},
		{"LDA $1000", []byte{0xAD, 0x00, 0x10}},
		{"LDA $10,X", []byte{0xB5, 0x10}},
		{"LDA $1000,X", []byte{0xBD, 0x00, 0x10}},
		{"LDA $1000,Y", []byte{0xB9, 0x00, 0x10}},
		{"LDA ($10,X)", []byte{0xA1, 0x10}},
		{"LDA ($10),Y", []byte{0xB1, 0x10}},
		{"ASL A", []byte{0x0A}},
		{"CLC", []byte{0x18}},
		{"JMP ($1000)", []byte{0x6C, 0x00, 0x10}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := assembleOne(t, tt.line, 0x0600, cpu.MOS6502)
			wantBytes(t, got, tt.want...)
		})
	}
}

func Test65C02OnlyModes(t *testing.T) {
	tests := []struct {
		line string
		want []byte
	}{
		{"LDA ($10)", []byte{0xB2, 0x10}},
		{"JMP ($1000,X)", []byte{0x7C, 0x00, 0x10}},
		{"BRA $0610", []byte{0x80, 0x0E}},
		{"STZ $10", []byte{0x64, 0x10}},
		{"BBR0 $10,$0605", []byte{0x0F, 0x10, 0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := assembleOne(t, tt.line, 0x0600, cpu.WDC65C02)
			wantBytes(t, got, tt.want...)
		})
	}
}

func TestAssembleBranchRange(t *testing.T) {
	// Target two bytes past the branch itself: offset 0.
	got := assembleOne(t, "BEQ $0602", 0x0600, cpu.MOS6502)
	wantBytes(t, got, 0xF0, 0x00)

	_, err := Assemble("BEQ $0700", 0x0600, cpu.MOS6502, nil)
	if _, ok := err.(*cpu.OperandRangeError); !ok {
		t.Fatalf("err = %v, want *OperandRangeError", err)
	}
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	_, err := Assemble("FROB #$10", 0x0600, cpu.MOS6502, nil)
	if _, ok := err.(*cpu.UnknownMnemonicError); !ok {
		t.Fatalf("err = %v, want *UnknownMnemonicError", err)
	}
}

func TestAssembleProgramWithForwardLabel(t *testing.T) {
	lines := []string{
		"start:",
		"LDA #$01",
		"BEQ done",
		"LDA #$02",
		"done:",
		"STA $10",
	}
	enc, labels, err := AssembleProgram(lines, 0x0600, cpu.MOS6502)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0xA9, 0x01, // LDA #$01
		0xF0, 0x02, // BEQ done (skip the next 2-byte LDA)
		0xA9, 0x02, // LDA #$02
		0x85, 0x10, // STA $10
	}
	wantBytes(t, enc, want...)
	if labels["start"] != 0x0600 || labels["done"] != 0x0606 {
		t.Fatalf("labels = %v", labels)
	}
}
