package install

import (
	"sync"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents an install progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// Fraction is the share of the run completed, from 0 to 1. It never
	// decreases within a run.
	Fraction float64
}

// reporter counts completed steps and serializes callbacks, so a progress
// handler is never called from two goroutines at once.
type reporter struct {
	mu    sync.Mutex
	done  int
	total int
	fn    func(ProgressEvent)
}

func newReporter(fn func(ProgressEvent)) *reporter {
	return &reporter{fn: fn}
}

// plan adds n steps to the run.
func (r *reporter) plan(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total += n
}

// step marks one step complete and reports it.
func (r *reporter) step(level ProgressLevel, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done < r.total {
		r.done++
	}
	r.emit(level, msg)
}

// info reports without advancing.
func (r *reporter) info(level ProgressLevel, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emit(level, msg)
}

// finish reports completion of the run.
func (r *reporter) finish(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = r.total
	if r.fn != nil {
		r.fn(ProgressEvent{Message: msg, Level: LevelSuccess, Fraction: 1})
	}
}

func (r *reporter) emit(level ProgressLevel, msg string) {
	if r.fn == nil {
		return
	}
	fraction := 0.0
	if r.total > 0 {
		fraction = float64(r.done) / float64(r.total)
	}
	r.fn(ProgressEvent{Message: msg, Level: level, Fraction: fraction})
}
