package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/class-widener/archive"
	"github.com/wippyai/class-widener/async"
)

type progressMsg struct {
	done  int
	total int
}

type finishedMsg struct {
	err    error
	report archive.Report
}

type progressModel struct {
	started  time.Time
	err      error
	result   *async.Result[archive.Report]
	cancel   context.CancelFunc
	input    string
	output   string
	progress progress.Model
	report   archive.Report
	done     int
	total    int
	finished bool
}

// newProgressModel watches result. cancel stops the pass when the user quits
// before it finishes.
func newProgressModel(input, output string, result *async.Result[archive.Report], cancel context.CancelFunc) *progressModel {
	return &progressModel{
		input:    input,
		output:   output,
		result:   result,
		cancel:   cancel,
		started:  time.Now(),
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m *progressModel) Init() tea.Cmd {
	return m.wait
}

// wait blocks on the pass in a tea command goroutine.
func (m *progressModel) wait() tea.Msg {
	report, err := m.result.Get()
	return finishedMsg{report: report, err: err}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Raw mode delivers ctrl+c as a key, not SIGINT.
			if !m.finished && m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "enter":
			if m.finished {
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 4
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}

	case progressMsg:
		if msg.done > m.done {
			m.done = msg.done
		}
		m.total = msg.total

	case finishedMsg:
		m.finished = true
		m.err = msg.err
		m.report = msg.report
		if msg.err == nil {
			m.done = m.total
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *progressModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m *progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Class Widener"))
	b.WriteString(" ")
	b.WriteString(nameStyle.Render(m.input))
	b.WriteString(" → ")
	b.WriteString(nameStyle.Render(m.output))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString(fmt.Sprintf("  %d/%d entries\n\n", m.done, m.total))

	switch {
	case !m.finished:
		b.WriteString(helpStyle.Render("transforming..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	default:
		b.WriteString(resultStyle.Render(summary(m.report, time.Since(m.started))))
	}
	b.WriteString("\n")
	return b.String()
}

func summary(r archive.Report, elapsed time.Duration) string {
	return fmt.Sprintf("%d entries, %d classes, %d changed in %s (digest %s)",
		r.Entries, r.Classes, r.Changed, elapsed.Round(time.Millisecond), r.Output.Short())
}

// runInteractive shows a progress bar while the pass started by start runs.
// start receives a progress callback and must return immediately. Quitting
// the UI early calls cancel and returns the pass's cancellation error.
func runInteractive(input, output string, cancel context.CancelFunc, start func(func(done, total int)) *async.Result[archive.Report]) (archive.Report, error) {
	var p *tea.Program
	ready := make(chan struct{})
	result := start(func(done, total int) {
		<-ready
		p.Send(progressMsg{done: done, total: total})
	})

	p = tea.NewProgram(newProgressModel(input, output, result, cancel))
	close(ready)
	if _, err := p.Run(); err != nil {
		return archive.Report{}, err
	}
	return result.Get()
}
