// Command mos65dbg is an interactive command-line front end over packages
// cpu and debugger: load a raw memory image, pick a variant, and drive the
// machine through the debugger's line-oriented grammar.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"mos65/config"
	"mos65/cpu"
	"mos65/debugger"
	"mos65/log"
)

type CLI struct {
	Image    string  `arg:"" optional:"" name:"image" help:"Raw memory image loaded at --origin before starting." type:"existingfile"`
	Config   string  `name:"config" help:"TOML configuration file." type:"path"`
	Variant  string  `name:"variant" help:"CPU variant: 6502 or 65C02." default:"${default_variant}"`
	MemSize  int     `name:"mem-size" help:"Memory size in bytes." default:"${default_mem_size}"`
	Origin   uint16  `name:"origin" help:"Offset to load the image at."`
	Start    *uint16 `name:"start" help:"Explicit start address, overriding the reset vector."`
	LogLevel string  `name:"log-level" help:"panic|fatal|error|warn|info|debug." default:"${default_loglevel}"`
	Trace    string  `name:"trace" help:"Write a JSON Lines execution trace to this file." type:"path"`
}

var vars = kong.Vars{
	"default_variant":  "6502",
	"default_mem_size": "65536",
	"default_loglevel": "warn",
}

func main() {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("mos65dbg"),
		kong.Description("interactive 6502/65C02 debugger"),
		kong.UsageOnError(),
		vars)
	checkf(err, "failed to build command line parser")

	ctx, err := parser.Parse(os.Args[1:])
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cfg := config.Default()
	if cli.Config != "" {
		loaded, err := config.Load(cli.Config)
		checkf(err, "failed to load config")
		cfg = loaded
	}
	if cli.Variant != "" {
		cfg.Variant = cli.Variant
	}
	if cli.MemSize > 0 {
		cfg.MemSize = cli.MemSize
	}
	if cli.Start != nil {
		cfg.StartAddr = cli.Start
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}

	lvl, ok := log.ParseLevel(cfg.LogLevel)
	if !ok {
		lvl = log.WarnLevel
	}
	log.SetLevel(lvl)

	variant, ok := cpu.ParseVariant(cfg.Variant)
	if !ok {
		variant = cpu.MOS6502
	}

	mem := cpu.NewMemory(cfg.MemSize)
	c := cpu.New(mem)
	c.SetVariant(variant)

	if cli.Image != "" {
		checkf(mem.Load(cli.Image, cli.Origin), "failed to load image")
	}

	var traceFile *os.File
	if cli.Trace != "" {
		traceFile, err = os.Create(cli.Trace)
		checkf(err, "failed to open trace file")
		defer traceFile.Close()
		c.SetCallback(cpu.NewJSONTraceWriter(traceFile).Callback())
	}

	checkf(c.Reset(cfg.StartAddr), "reset failed")

	dbg := debugger.New(c, os.Stdout)
	for _, bc := range cfg.Breakpoints {
		dbg.ApplyConfig(bc)
	}

	runREPL(dbg)

	if dbg.LastError() != nil {
		os.Exit(1)
	}
}

func runREPL(dbg *debugger.Debugger) {
	fmt.Fprintln(os.Stdout, "mos65 debugger, 'h' for help, 'q' to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "q" {
			return
		}
		if err := dbg.ParseCmd(line); err != nil {
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
		}
	}
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s: %s\n", fmt.Sprintf(format, args...), err)
	os.Exit(1)
}
