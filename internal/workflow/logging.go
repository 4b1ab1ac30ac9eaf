package workflow

import (
	"io"
	"log"
	"os"
)

// stdout/stderr logging is the teacher's own choice throughout cmd/kilroy
// and internal/server (log.New(os.Stderr, ...), fmt.Fprintf(os.Stderr, ...))
// rather than a third-party structured logger — see DESIGN.md for why this
// one ambient concern stays on the standard library.
var defaultLogger = log.New(os.Stderr, "[workflow] ", log.LstdFlags)

// SetLogOutput redirects the package logger, mainly for tests that want to
// assert on warning text instead of letting it hit stderr.
func SetLogOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

func warnf(format string, args ...any) {
	defaultLogger.Printf("warn: "+format, args...)
}
