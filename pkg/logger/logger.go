package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ANSI color codes, used only for the decorative banner/section output
// below — the operational log lines are handled by logrus, which does
// its own level-appropriate formatting.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[37m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Log levels, kept for compatibility with call sites that select a
// level numerically.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSuccess
)

var defaultLogger = logrus.New()

func init() {
	defaultLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
	defaultLogger.SetLevel(logrus.InfoLevel)
	defaultLogger.ExitFunc = exitFunc
}

// SetLevel sets the minimum log level using this package's own level
// constants.
func SetLevel(level int) {
	switch level {
	case LevelDebug:
		defaultLogger.SetLevel(logrus.DebugLevel)
	case LevelWarn:
		defaultLogger.SetLevel(logrus.WarnLevel)
	case LevelError:
		defaultLogger.SetLevel(logrus.ErrorLevel)
	default:
		defaultLogger.SetLevel(logrus.InfoLevel)
	}
}

// Fields is a structured-logging field set, re-exported so call sites
// don't need to import logrus directly (peer id, sequence number,
// address — the things worth attaching to a dropped-packet log line).
type Fields = logrus.Fields

// Debug logs a debug-level message.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debugf(format, args...)
}

// Info logs an info-level message.
func Info(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

// Warn logs a warn-level message.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

// Error logs an error-level message.
func Error(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}

// Success logs an info-level message tagged as a success, for the
// handshake-completed / peer-connected style of event.
func Success(format string, args ...interface{}) {
	defaultLogger.WithField("result", "success").Infof(format, args...)
}

// Fatal logs a fatal message and exits the process.
func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatalf(format, args...)
}

// InfoCyan exists for call-site compatibility with the console-banner
// era of this logger; structured output no longer distinguishes it from
// Info.
func InfoCyan(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

// WithFields returns a structured entry, e.g.
// logger.WithFields(logger.Fields{"peer": id, "seq": seq}).Warn("dropped duplicate")
func WithFields(fields Fields) *logrus.Entry {
	return defaultLogger.WithFields(fields)
}

// Section prints a section header. Purely decorative console output,
// kept as direct fmt.Printf rather than routed through logrus, matching
// how the banner/section helpers were already treated as separate from
// the operational logging path.
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n%s╔%s╗%s\n", ColorCyan, border, ColorReset)
	fmt.Printf("%s║%s %-57s %s║%s\n", ColorCyan, ColorReset, title, ColorCyan, ColorReset)
	fmt.Printf("%s╚%s╝%s\n\n", ColorCyan, border, ColorReset)
}

// Banner prints the application banner.
func Banner(title, version string) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   ███╗   ██╗███████╗████████╗██████╗ ███████╗██╗         ║
║   ████╗  ██║██╔════╝╚══██╔══╝██╔══██╗██╔════╝██║         ║
║   ██╔██╗ ██║█████╗     ██║   ██████╔╝█████╗  ██║         ║
║   ██║╚██╗██║██╔══╝     ██║   ██╔══██╗██╔══╝  ██║         ║
║   ██║ ╚████║███████╗   ██║   ██║  ██║███████╗███████╗    ║
║   ╚═╝  ╚═══╝╚══════╝   ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝    ║
║                                                           ║
║              %s%-37s%s║
║                    %sVersion %-7s%s                      ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, ColorCyan, title, ColorReset, ColorGreen, version, ColorReset)
}

// exitFunc backs Fatal's process termination, wired into logrus's own
// ExitFunc hook in init so it actually fires on Fatal/Fatalf instead of
// logrus's default os.Exit(1) directly.
var exitFunc = os.Exit

// SetExitFunc overrides exitFunc, for tests that need to observe Fatal
// without terminating the test binary.
func SetExitFunc(fn func(int)) {
	exitFunc = fn
	defaultLogger.ExitFunc = fn
}
