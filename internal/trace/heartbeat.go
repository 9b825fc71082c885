package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a liveness event on a fixed interval. When a build
// hangs, the ring keeps ticking while span-end events stop, which
// points straight at the stuck span in the dump.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stop     chan struct{}
	done     sync.WaitGroup
	once     sync.Once
}

// StartHeartbeat spawns the ticker goroutine. Returns nil when tracing
// is off or the interval is unset; Stop on a nil Heartbeat is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stop:     make(chan struct{}),
	}
	h.done.Add(1)
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer h.done.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var beat uint64
	for {
		select {
		case <-ticker.C:
			beat++
			h.tracer.Emit(&Event{
				Time:   time.Now(),
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goroutineID(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d", beat),
			})
		case <-h.stop:
			return
		}
	}
}

// Stop shuts the ticker down and waits for the goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		close(h.stop)
		h.done.Wait()
	})
}
