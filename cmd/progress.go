package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const progressRefresh = 300 * time.Millisecond

// progressPrinter redraws a single status line while a batch runs.
type progressPrinter struct {
	out      io.Writer
	total    int
	name     string
	mu       sync.Mutex
	ok       int
	fail     int
	flagged  int
	duration time.Duration
	updates  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newProgressPrinter(out io.Writer, total int, name string) *progressPrinter {
	if total <= 0 {
		total = 1
	}
	return &progressPrinter{
		out:     out,
		total:   total,
		name:    name,
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (p *progressPrinter) Start() {
	go p.loop()
}

// Increment records one finished URL. flagged marks a non-SAFE verdict.
func (p *progressPrinter) Increment(success, flagged bool, duration time.Duration) {
	p.mu.Lock()
	if success {
		p.ok++
	} else {
		p.fail++
	}
	if flagged {
		p.flagged++
	}
	p.duration += duration
	p.mu.Unlock()

	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.mu.Lock()
		defer p.mu.Unlock()
		fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", 80))
		fmt.Fprintln(p.out, p.lineLocked())
	})
}

func (p *progressPrinter) loop() {
	ticker := time.NewTicker(progressRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-p.updates:
			p.print()
		case <-ticker.C:
			p.print()
		case <-p.done:
			return
		}
	}
}

func (p *progressPrinter) print() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return
	default:
	}
	fmt.Fprintf(p.out, "\r%s", p.lineLocked())
}

func (p *progressPrinter) lineLocked() string {
	completed := p.ok + p.fail
	total := p.total
	if completed > total {
		total = completed
	}
	percent := float64(completed) / float64(total) * 100
	avg := 0.0
	if completed > 0 {
		avg = p.duration.Seconds() / float64(completed)
	}
	return fmt.Sprintf("[%s] Progress: %d/%d (%.1f%%) OK:%d Fail:%d Flagged:%d Avg:%.2fs",
		p.name, completed, total, percent, p.ok, p.fail, p.flagged, avg)
}
