package disasm

import (
	"testing"

	"mos65/asm"
	"mos65/cpu"
)

func memWith(t *testing.T, variant cpu.Variant, line string, addr uint16) *cpu.Memory {
	t.Helper()
	mem := cpu.NewMemory(0x10000)
	enc, err := asm.Assemble(line, addr, variant, nil)
	if err != nil {
		t.Fatalf("assemble %q: %v", line, err)
	}
	for i, b := range enc {
		if err := mem.Write8(addr+uint16(i), b); err != nil {
			t.Fatal(err)
		}
	}
	return mem
}

func TestRoundTrip(t *testing.T) {
	lines := []string{
		"LDA #$10",
		"LDA $10",
		"LDA $1000",
		"LDA $10,X",
		"LDA $1000,X",
		"LDA $1000,Y",
		"LDA ($10,X)",
		"LDA ($10),Y",
		"ASL A",
		"CLC",
		"JMP ($1000)",
		"BEQ $0602",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			mem := memWith(t, cpu.MOS6502, line, 0x0600)
			got, err := One(mem, 0x0600, cpu.MOS6502)
			if err != nil {
				t.Fatal(err)
			}
			reenc, err := asm.Assemble(got.Mnemonic+" "+got.Operand, 0x0600, cpu.MOS6502, nil)
			if err != nil {
				t.Fatalf("re-assembling %q: %v", got.String(), err)
			}
			if len(reenc) != len(got.Bytes) {
				t.Fatalf("round trip length mismatch: %v vs %v", reenc, got.Bytes)
			}
			for i := range reenc {
				if reenc[i] != got.Bytes[i] {
					t.Fatalf("round trip mismatch at byte %d: %v vs %v", i, reenc, got.Bytes)
				}
			}
		})
	}
}

func TestOneFormatsZeroPageRel(t *testing.T) {
	mem := cpu.NewMemory(0x10000)
	mem.Write8(0x0600, 0x0F) // BBR0 $10, $0605
	mem.Write8(0x0601, 0x10)
	mem.Write8(0x0602, 0x02)

	line, err := One(mem, 0x0600, cpu.WDC65C02)
	if err != nil {
		t.Fatal(err)
	}
	if line.Mnemonic != "BBR0" {
		t.Errorf("mnemonic = %s, want BBR0", line.Mnemonic)
	}
	if line.Operand != "$10,$0605" {
		t.Errorf("operand = %s, want $10,$0605", line.Operand)
	}
	if line.Len != 3 {
		t.Errorf("len = %d, want 3", line.Len)
	}
}

func TestNDisassemblesConsecutiveInstructions(t *testing.T) {
	mem := cpu.NewMemory(0x10000)
	mem.Write8(0x0600, 0xA9) // LDA #$01
	mem.Write8(0x0601, 0x01)
	mem.Write8(0x0602, 0x18) // CLC

	lines, err := N(mem, 0x0600, 2, cpu.MOS6502)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Mnemonic != "LDA" || lines[1].Mnemonic != "CLC" {
		t.Errorf("lines = %+v", lines)
	}
	if lines[1].Addr != 0x0602 {
		t.Errorf("second line addr = $%04X, want $0602", lines[1].Addr)
	}
}

func TestInvalidOpcodeDisassemblesAsByte(t *testing.T) {
	mem := cpu.NewMemory(0x10000)
	mem.Write8(0x0600, 0x02) // JAM on NMOS

	line, err := One(mem, 0x0600, cpu.MOS6502)
	if err != nil {
		t.Fatal(err)
	}
	if line.Mnemonic != ".byte" {
		t.Errorf("mnemonic = %s, want .byte", line.Mnemonic)
	}
}
