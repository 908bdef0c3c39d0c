// Package config loads the emulator's TOML configuration and the
// debugger's session save/load sidecar files, grounded on the teacher's
// emu/config.go use of BurntSushi/toml.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"mos65/cpu"
)

// Config is the top-level emulator configuration: variant, memory size,
// start address, log level, and a startup breakpoint list.
type Config struct {
	Variant      string             `toml:"variant"`
	MemSize      int                `toml:"mem_size"`
	StartAddr    *uint16            `toml:"start_addr"`
	LogLevel     string             `toml:"log_level"`
	TraceEnabled bool               `toml:"trace_enabled"`
	Breakpoints  []BreakpointConfig `toml:"breakpoints"`
}

// BreakpointConfig is the TOML-serializable shape of one debugger
// breakpoint, independent of package debugger so config has no import
// cycle back to it.
type BreakpointConfig struct {
	Kind       string            `toml:"kind"`
	Address    uint16            `toml:"address"`
	Conditions map[string]uint64 `toml:"conditions"`
	Enabled    bool              `toml:"enabled"`
}

// Default returns the power-up configuration: MOS6502, 64 KiB of memory,
// reset-vector start, warn-level logging.
func Default() Config {
	return Config{
		Variant:  cpu.MOS6502.String(),
		MemSize:  0x10000,
		LogLevel: "warn",
	}
}

// Load reads and decodes a TOML configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, &cpu.IoError{Path: path, Cause: err}
	}
	return cfg, nil
}

// Save encodes cfg as TOML and writes it to path.
func Save(cfg Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &cpu.IoError{Path: path, Cause: err}
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return &cpu.IoError{Path: path, Cause: err}
	}
	return nil
}

// Session is the debugger's own save/load unit: breakpoints plus symbol
// table, distinct from the memory-image l/s commands and from Config.
type Session struct {
	Breakpoints []BreakpointConfig `toml:"breakpoints"`
	Symbols     map[string]uint16  `toml:"symbols"`
}

// LoadSession reads a debugger session file.
func LoadSession(path string) (Session, error) {
	var s Session
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Session{}, &cpu.IoError{Path: path, Cause: err}
	}
	return s, nil
}

// SaveSession writes a debugger session file.
func SaveSession(s Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &cpu.IoError{Path: path, Cause: err}
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	if err := enc.Encode(s); err != nil {
		return &cpu.IoError{Path: path, Cause: err}
	}
	return nil
}
