package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker draws a spinner with a running count. All methods are
// safe on a nil tracker, which draws nothing.
type ProgressTracker struct {
	total     int
	current   int
	message   string
	unit      string
	out       io.Writer
	mu        sync.Mutex
	startTime time.Time
	done      chan bool
	finished  chan struct{}
}

// NewProgressTo starts rendering to out. A total of 0 means the total is
// not known up front.
func NewProgressTo(out io.Writer, total int, message, unit string) *ProgressTracker {
	p := &ProgressTracker{
		total:     total,
		message:   message,
		unit:      unit,
		out:       out,
		startTime: time.Now(),
		done:      make(chan bool),
		finished:  make(chan struct{}),
	}
	go p.render()
	return p
}

func (p *ProgressTracker) render() {
	defer close(p.finished)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	frame := 0

	for {
		select {
		case <-p.done:
			p.mu.Lock()
			elapsed := time.Since(p.startTime)
			fmt.Fprintf(p.out, "\r✓ %s (%d %s, %s)          \n",
				p.message, p.current, p.unit, elapsed.Round(time.Millisecond))
			p.mu.Unlock()
			return

		case <-ticker.C:
			p.mu.Lock()
			if p.total > 0 {
				percent := float64(p.current) / float64(p.total) * 100
				fmt.Fprintf(p.out, "\r%s %s [%d/%d] %.0f%%  ",
					spinner[frame%len(spinner)],
					p.message,
					p.current,
					p.total,
					percent)
			} else {
				fmt.Fprintf(p.out, "\r%s %s [%d %s]  ",
					spinner[frame%len(spinner)],
					p.message,
					p.current,
					p.unit)
			}
			p.mu.Unlock()
			frame++
		}
	}
}

func (p *ProgressTracker) Increment() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.current++
	p.mu.Unlock()
}

func (p *ProgressTracker) SetCurrent(n int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.current = n
	p.mu.Unlock()
}

// Finish prints the final line and waits for the renderer to exit.
func (p *ProgressTracker) Finish() {
	if p == nil {
		return
	}
	close(p.done)
	<-p.finished
}
