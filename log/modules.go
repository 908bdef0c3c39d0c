package log

// Module identifies the subsystem that produced a log entry. The emulator
// predefines a small set of modules; hosts embedding the package are free to
// filter on them independently of level.
type Module uint

const (
	ModCPU Module = iota + 1
	ModMem
	ModBus
	ModAsm
	ModDisasm
	ModDbg

	endStandardMods
)

var modNames = []string{
	"<error>", "cpu", "mem", "bus", "asm", "disasm", "dbg",
}

func (mod Module) String() string {
	if int(mod) < len(modNames) {
		return modNames[mod]
	}
	return "<unknown>"
}

func (mod Module) Enabled(level Level) bool {
	return level <= current
}

func (mod Module) logz(lvl Level, msg string) *EntryZ {
	if !mod.Enabled(lvl) {
		return nil
	}
	e := newEntryZ()
	e.lvl = lvl
	e.msg = msg
	e.mod = mod
	return e
}

func (mod Module) DebugZ(msg string) *EntryZ { return mod.logz(DebugLevel, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.logz(InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.logz(WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.logz(ErrorLevel, msg) }
func (mod Module) FatalZ(msg string) *EntryZ { return mod.logz(FatalLevel, msg) }
