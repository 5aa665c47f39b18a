package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

const busyDelay = 180 * time.Millisecond

// Busy draws a one-line spinner on a terminal while work is in flight.
// Println interleaves output lines with the spinner without tearing it.
type Busy struct {
	out     io.Writer
	enabled bool
	frames  spinner.Spinner

	mu      sync.Mutex
	label   string
	drawn   bool
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewBusy returns a Busy writing to out. When enabled is false only
// Println output is written.
func NewBusy(out io.Writer, enabled bool) *Busy {
	if out == nil {
		out = io.Discard
	}
	return &Busy{out: out, enabled: enabled, frames: spinner.Dot}
}

func (b *Busy) Start(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.label = strings.TrimSpace(label)
	if !b.enabled || b.running {
		return
	}
	b.running = true
	b.done = make(chan struct{})
	b.wg.Add(1)
	go b.loop(b.done)
}

func (b *Busy) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.done)
	b.mu.Unlock()

	b.wg.Wait()

	b.mu.Lock()
	b.clearLocked()
	b.mu.Unlock()
}

// Println writes one line of command output above the spinner.
func (b *Busy) Println(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
	fmt.Fprintln(b.out, outputLineStyle.Render(line))
}

// Run wraps fn between Start and Stop.
func (b *Busy) Run(label string, fn func()) {
	b.Start(label)
	defer b.Stop()
	fn()
}

func (b *Busy) loop(done <-chan struct{}) {
	defer b.wg.Done()
	delay := time.NewTimer(busyDelay)
	defer delay.Stop()
	select {
	case <-done:
		return
	case <-delay.C:
	}

	interval := b.frames.FPS
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	index := 0
	for {
		b.mu.Lock()
		fmt.Fprintf(b.out, "\r%s %s\x1b[K", b.frames.Frames[index], b.label)
		b.drawn = true
		b.mu.Unlock()
		index = (index + 1) % len(b.frames.Frames)

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func (b *Busy) clearLocked() {
	if !b.drawn {
		return
	}
	fmt.Fprint(b.out, "\r\x1b[K")
	b.drawn = false
}
