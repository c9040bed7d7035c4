package ux

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// SpinnerStatus animates the running stage with a bubbletea program that
// lives from Start to Succeed/Fail.
type SpinnerStatus struct {
	mu   sync.Mutex
	w    io.Writer
	prog *tea.Program
	done chan struct{}
}

// NewSpinnerStatus creates a SpinnerStatus rendering to w.
func NewSpinnerStatus(w io.Writer) *SpinnerStatus {
	return &SpinnerStatus{w: w}
}

// Start implements Status. A stage still running is ended without a glyph.
func (s *SpinnerStatus) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(finishMsg{})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	s.prog = tea.NewProgram(statusModel{spinner: sp, msg: msg},
		tea.WithOutput(s.w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	s.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(s.prog, s.done)
}

// Succeed implements Status.
func (s *SpinnerStatus) Succeed(msg string) { s.finish(finishMsg{line: successLine(msg)}) }

// Fail implements Status.
func (s *SpinnerStatus) Fail(msg string) { s.finish(finishMsg{line: failureLine(msg)}) }

func (s *SpinnerStatus) finish(m finishMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prog == nil {
		// Finish without Start still leaves a persistent line.
		if m.line != "" {
			_, _ = io.WriteString(s.w, m.line+"\n")
		}
		return
	}
	s.stopLocked(m)
}

func (s *SpinnerStatus) stopLocked(m finishMsg) {
	if s.prog == nil {
		return
	}
	s.prog.Send(m)
	<-s.done
	s.prog, s.done = nil, nil
}

type finishMsg struct {
	line string
}

type statusModel struct {
	spinner spinner.Model
	msg     string
	final   *string
}

func (m statusModel) Init() tea.Cmd { return m.spinner.Tick }

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case finishMsg:
		line := msg.line
		m.final = &line
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m statusModel) View() string {
	if m.final != nil {
		if *m.final == "" {
			return ""
		}
		return *m.final + "\n"
	}
	return m.spinner.View() + " " + m.msg
}
