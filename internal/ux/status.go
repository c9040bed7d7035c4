package ux

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Status reports the progress of one stage at a time. Start begins a
// stage; Succeed or Fail ends it.
type Status interface {
	Start(msg string)
	Succeed(msg string)
	Fail(msg string)
}

// NewStatus picks the spinner when w is a terminal and plain lines
// otherwise.
func NewStatus(w io.Writer) Status {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewSpinnerStatus(w)
	}
	return NewLineStatus(w)
}

// Nop discards all status changes.
type Nop struct{}

func (Nop) Start(string)   {}
func (Nop) Succeed(string) {}
func (Nop) Fail(string)    {}

// LineStatus writes one line per status change.
type LineStatus struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineStatus creates a LineStatus writing to w.
func NewLineStatus(w io.Writer) *LineStatus {
	return &LineStatus{w: w}
}

func (s *LineStatus) Start(msg string)   { s.println(pendingGlyph + " " + msg) }
func (s *LineStatus) Succeed(msg string) { s.println(successLine(msg)) }
func (s *LineStatus) Fail(msg string)    { s.println(failureLine(msg)) }

func (s *LineStatus) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}
