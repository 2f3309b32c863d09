package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

type setState struct {
	total int
	done  int
}

// Progress renders one line per run set with a completion counter.
// On a non-TTY stderr it stays quiet except for start and finish.
type Progress struct {
	names     []string
	states    map[string]*setState
	mu        sync.Mutex
	out       io.Writer
	isTTY     bool
	startTime time.Time
	done      chan struct{}
	stopOnce  sync.Once

	// lines currently on screen, guarded by mu. Stop must not erase
	// anything the animation never drew.
	rendered int
}

func NewProgress(names []string, totals []int) *Progress {
	states := make(map[string]*setState, len(names))
	for i, name := range names {
		states[name] = &setState{total: totals[i]}
	}
	return &Progress{
		names:     names,
		states:    states,
		out:       os.Stderr,
		isTTY:     term.IsTerminal(int(os.Stderr.Fd())),
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
}

func (p *Progress) Start() {
	if !p.isTTY {
		return
	}
	go p.animate()
}

func (p *Progress) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	if !p.isTTY {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eraseRendered()
}

// MarkRunDone counts one finished run of the named run set.
func (p *Progress) MarkRunDone(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.states[name]; ok {
		s.done++
	}
}

func (p *Progress) animate() {
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	frame := 0
	for {
		select {
		case <-p.done:
			return
		case <-tick.C:
			p.renderFrame(spinnerFrames[frame%len(spinnerFrames)])
			frame++
		}
	}
}

func (p *Progress) renderFrame(spinner string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eraseRendered()
	for _, name := range p.names {
		s := p.states[name]
		if s.done == s.total {
			fmt.Fprintf(p.out, " + %-30s %d/%d\n", name, s.done, s.total)
		} else {
			elapsed := time.Since(p.startTime).Round(time.Second)
			fmt.Fprintf(p.out, " %s %-30s %d/%d  %s\n", spinner, name, s.done, s.total, elapsed)
		}
	}
	p.rendered = len(p.names)
}

// eraseRendered moves the cursor up over the drawn lines and clears
// them. Callers hold mu.
func (p *Progress) eraseRendered() {
	for i := 0; i < p.rendered; i++ {
		fmt.Fprintf(p.out, "\033[A\033[2K")
	}
	p.rendered = 0
}
