package driver

import (
	"time"

	"impulse/internal/observ"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary during CompileFile.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during a compile.
type PhaseObserver func(PhaseEvent)

// phaseRunner feeds both the timer and the observer from one begin/end
// pair, so pipeline code never branches on which of the two is set.
type phaseRunner struct {
	timer    *observ.Timer
	observer PhaseObserver
	phases   []runnerPhase
}

type runnerPhase struct {
	name     string
	timerIdx int
	start    time.Time
}

func (p *phaseRunner) begin(name string) int {
	timerIdx := -1
	if p.timer != nil {
		timerIdx = p.timer.Begin(name)
	}
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	p.phases = append(p.phases, runnerPhase{name: name, timerIdx: timerIdx, start: time.Now()})
	return len(p.phases) - 1
}

func (p *phaseRunner) end(idx int, note string) {
	if idx < 0 || idx >= len(p.phases) {
		return
	}
	ph := p.phases[idx]
	if p.timer != nil && ph.timerIdx >= 0 {
		p.timer.End(ph.timerIdx, note)
	}
	if p.observer != nil {
		p.observer(PhaseEvent{Name: ph.name, Status: PhaseEnd, Elapsed: time.Since(ph.start)})
	}
}
