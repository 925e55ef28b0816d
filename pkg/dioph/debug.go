package dioph

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// debugChecks gates the engine's assertf checks (such as the E/L row
// desync check in fillEntry). They are off by default; enable with
// Settings.DebugChecks or DIOPH_DEBUG_CHECKS=1. checkInvariants is not
// gated by it and is called only by the tests.
var debugChecks atomic.Bool

func init() {
	if os.Getenv("DIOPH_DEBUG_CHECKS") == "1" {
		debugChecks.Store(true)
	}
}

func errInvariant(format string, args ...any) error {
	return fmt.Errorf("dioph: invariant violated: "+format, args...)
}

// traceEnabled gates the output of tracef, which no engine pass calls at
// present. Enable by setting env var DIOPH_TRACE=1 or by calling
// enableTrace() directly.
var traceEnabled atomic.Bool

func init() {
	if os.Getenv("DIOPH_TRACE") == "1" {
		traceEnabled.Store(true)
	}
}

func enableTrace()  { traceEnabled.Store(true) }
func disableTrace() { traceEnabled.Store(false) }

func tracef(format string, args ...any) {
	if !traceEnabled.Load() {
		return
	}
	log.Printf("[dioph] "+format, args...)
}
