package bake

import (
	"fmt"
	"time"
)

// LogCategory classifies a Context log entry.
type LogCategory int

const (
	LogProgress LogCategory = 1 + iota // A progress log entry.
	LogWarning                         // A warning log entry: a recovered GeometryAnomaly.
	LogError                           // An error log entry: a TaskTimeout or similar.
)

// TimerLabel names one of the pipeline's accumulated performance timers.
type TimerLabel int

const (
	TimerVoxelize TimerLabel = iota
	TimerInitialRegions
	TimerConvexify
	TimerRemerge
	TimerTriangulate
	TimerDecimate
	TimerSerialize
	TimerExternalLinks
	numTimers
)

const maxMessages = 4096

// Context accumulates log messages and per-step timings across a bake
// run, following the teacher's recast.BuildContext: logging and timing
// are both optional (toggle-able) and never influence control flow — the
// bake pipeline itself never looks at what was logged. GeometryAnomaly
// and TaskTimeout (spec §7) are surfaced here as Warning/Error entries
// rather than errors returned up the call stack, since "bake never
// panics on data".
type Context struct {
	logEnabled   bool
	timerEnabled bool

	startTime [numTimers]time.Time
	accTime   [numTimers]time.Duration

	messages []string
}

// NewContext returns a Context with logging and timing enabled or
// disabled as requested.
func NewContext(enabled bool) *Context {
	return &Context{logEnabled: enabled, timerEnabled: enabled}
}

func (c *Context) log(cat LogCategory, format string, v ...interface{}) {
	if !c.logEnabled || len(c.messages) >= maxMessages {
		return
	}
	prefix := "PROG "
	switch cat {
	case LogWarning:
		prefix = "WARN "
	case LogError:
		prefix = "ERR  "
	}
	c.messages = append(c.messages, prefix+fmt.Sprintf(format, v...))
}

// Progressf logs a progress message.
func (c *Context) Progressf(format string, v ...interface{}) { c.log(LogProgress, format, v...) }

// Warningf logs a recovered anomaly (GeometryAnomaly et al.).
func (c *Context) Warningf(format string, v ...interface{}) { c.log(LogWarning, format, v...) }

// Errorf logs a hard but non-fatal failure (TaskTimeout et al.).
func (c *Context) Errorf(format string, v ...interface{}) { c.log(LogError, format, v...) }

// Messages returns every logged message in order, for tests and CLI
// inspection.
func (c *Context) Messages() []string {
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// StartTimer begins accumulating time under label.
func (c *Context) StartTimer(label TimerLabel) {
	if c.timerEnabled {
		c.startTime[label] = time.Now()
	}
}

// StopTimer stops the timer started by the most recent StartTimer(label)
// and adds the elapsed time to its accumulator.
func (c *Context) StopTimer(label TimerLabel) {
	if c.timerEnabled {
		c.accTime[label] += time.Since(c.startTime[label])
	}
}

// AccumulatedTime returns the total time spent under label so far.
func (c *Context) AccumulatedTime(label TimerLabel) time.Duration {
	return c.accTime[label]
}
