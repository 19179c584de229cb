package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/rankmatch/core"
)

// progressTracker renders indexing events as a single updating progress line.
type progressTracker struct {
	writer    io.Writer
	total     int
	current   int
	indexed   int
	skipped   int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

func newProgressTracker(writer io.Writer) *progressTracker {
	return &progressTracker{writer: writer}
}

// Observe folds one indexing event into the tracker. It returns true once
// the event stream has reached its end.
func (p *progressTracker) Observe(ev core.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, total := ev.Counters()
	switch ev.Type {
	case core.EventIndexingStart:
		p.startTime = time.Now()
		p.started = true
		p.total = total
		p.current = 0
		fmt.Fprintln(p.writer, ev.Message)
	case core.EventIndexingProgress:
		if !p.started {
			return false
		}
		p.current = min(current, p.total)
		if strings.HasPrefix(ev.Message, "Skip") {
			p.skipped++
		} else {
			p.indexed++
		}
		p.report()
	case core.EventIndexingComplete:
		if p.started {
			p.current = p.total
			p.report()
			fmt.Fprintln(p.writer)
			fmt.Fprintf(p.writer, "Indexed %d, skipped %d in %s\n",
				p.indexed, p.skipped, time.Since(p.startTime).Round(time.Millisecond))
		}
		fmt.Fprintln(p.writer, ev.Message)
		return true
	case core.EventError:
		if p.started {
			fmt.Fprintln(p.writer)
		}
		fmt.Fprintln(p.writer, "Error:", ev.Message)
		return true
	default:
		if ev.Message != "" {
			fmt.Fprintln(p.writer, ev.Message)
		}
	}
	return false
}

// Counts returns the number of indexed and skipped files seen so far.
func (p *progressTracker) Counts() (indexed, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.indexed, p.skipped
}

// report prints the current progress. Must be called with lock held.
func (p *progressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f files/s",
		p.current, p.total, percentage, rate)
}
