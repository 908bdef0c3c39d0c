package log

import "gopkg.in/Sirupsen/logrus.v0"

// Level mirrors logrus' level ordering, Panic lowest through Debug highest;
// SetLevel maps each value onto the matching logrus level.
type Level uint32

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

var current = WarnLevel

// ParseLevel accepts the debugger/config spelling of a level name.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "panic":
		return PanicLevel, true
	case "fatal":
		return FatalLevel, true
	case "error":
		return ErrorLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "info":
		return InfoLevel, true
	case "debug":
		return DebugLevel, true
	default:
		return 0, false
	}
}

// SetLevel raises or lowers the threshold below which WarnZ/InfoZ/etc calls
// are dropped before they allocate an EntryZ.
func SetLevel(lvl Level) {
	current = lvl
	switch lvl {
	case PanicLevel:
		logrus.SetLevel(logrus.PanicLevel)
	case FatalLevel:
		logrus.SetLevel(logrus.FatalLevel)
	case ErrorLevel:
		logrus.SetLevel(logrus.ErrorLevel)
	case WarnLevel:
		logrus.SetLevel(logrus.WarnLevel)
	case InfoLevel:
		logrus.SetLevel(logrus.InfoLevel)
	case DebugLevel:
		logrus.SetLevel(logrus.DebugLevel)
	}
}
