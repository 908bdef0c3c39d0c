package cpu

import (
	"os"

	"github.com/go-faster/errors"
)

// AccessKind tags a bus transaction for the debugger's breakpoint matching.
type AccessKind int

const (
	AccessExec AccessKind = iota
	AccessRead
	AccessWrite
)

func (k AccessKind) String() string {
	switch k {
	case AccessExec:
		return "exec"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "?"
	}
}

// Bus is the minimal polymorphic capability the CPU issues reads, writes and
// instruction fetches through. A downstream emulator (cartridge mapper,
// memory-mapped video) can implement Bus directly to intercept ranges
// without the CPU caring; the default implementation is Memory, a flat byte
// array.
type Bus interface {
	Read8(addr uint16) (uint8, error)
	Write8(addr uint16, val uint8) error
	Peek8(addr uint16) (uint8, error)
	Memory() *Memory
}

// Memory is a flat, contiguous byte array addressed 0..size-1. The reset,
// NMI and IRQ vectors live at their conventional offsets within it; a bus
// smaller than 64 KiB is legal, and an out-of-range access is a MemoryAccess
// error rather than a silent wrap.
type Memory struct {
	buf []byte
}

// NewMemory allocates a zero-filled image of the given size.
func NewMemory(size int) *Memory {
	return &Memory{buf: make([]byte, size)}
}

func (m *Memory) Size() int { return len(m.buf) }

func (m *Memory) inRange(addr uint16) bool {
	return int(addr) < len(m.buf)
}

func (m *Memory) Read8(addr uint16) (uint8, error) {
	if !m.inRange(addr) {
		return 0, &MemoryAccessError{Addr: addr, Op: AccessRead}
	}
	return m.buf[addr], nil
}

func (m *Memory) Write8(addr uint16, val uint8) error {
	if !m.inRange(addr) {
		return &MemoryAccessError{Addr: addr, Op: AccessWrite}
	}
	m.buf[addr] = val
	return nil
}

// Peek8 is a side-effect-free read used by the disassembler and the
// debugger's hexdump/disassemble commands, so that inspecting memory never
// perturbs an MMIO-backed bus the way a real Read8 might.
func (m *Memory) Peek8(addr uint16) (uint8, error) {
	return m.Read8(addr)
}

func (m *Memory) Memory() *Memory { return m }

// Load reads a file into memory starting at offset. It fails if the file
// length plus offset exceeds the memory size.
func (m *Memory) Load(path string, offset uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &IoError{Path: path, Cause: err}
	}
	if int(offset)+len(data) > len(m.buf) {
		return &IoError{Path: path, Cause: errors.New("file exceeds memory size at given offset")}
	}
	copy(m.buf[offset:], data)
	return nil
}

// Save writes length bytes starting at offset to path. length == 0 means
// "to end of memory".
func (m *Memory) Save(path string, offset uint16, length int) error {
	if length == 0 {
		length = len(m.buf) - int(offset)
	}
	if int(offset)+length > len(m.buf) || length < 0 {
		return &IoError{Path: path, Cause: errors.New("requested range exceeds memory size")}
	}
	if err := os.WriteFile(path, m.buf[offset:int(offset)+length], 0o644); err != nil {
		return &IoError{Path: path, Cause: err}
	}
	return nil
}

// Checksum is a CRC32 over the live image, handy for the debugger's session
// save/restore and for quickly comparing two runs' end states.
func (m *Memory) Checksum() uint32 {
	return crc32Of(m.buf)
}
