// internal/tui/tui.go
// Package tui is the interactive watch view: it runs analyses through the
// background worker and lets the user nudge the threshold while results
// stream in.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/voi/internal/analysis"
	"github.com/mwiater/voi/internal/report"
	"github.com/mwiater/voi/internal/worker"
)

// DefaultThresholdStep is how far one key press moves the threshold.
const DefaultThresholdStep = 0.005

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("229")).Foreground(lipgloss.Color("0")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// outcomeMsg carries a finished request from the dispatcher.
type outcomeMsg worker.Outcome

// closedMsg signals that the dispatcher will deliver nothing more.
type closedMsg struct{}

type model struct {
	dispatcher *worker.Dispatcher
	base       analysis.Scenario
	opts       analysis.Options
	step       float64
	threshold  float64

	pending  uint64
	started  time.Time
	report   *analysis.Report
	err      error
	spinner  spinner.Model
	quitting bool
}

func newModel(d *worker.Dispatcher, sc analysis.Scenario, opts analysis.Options, step float64) *model {
	if step <= 0 {
		step = DefaultThresholdStep
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	m := &model{
		dispatcher: d,
		base:       sc,
		opts:       opts,
		step:       step,
		threshold:  sc.Inputs.Threshold,
		spinner:    s,
	}
	m.submit()
	return m
}

// submit sends the current scenario to the dispatcher, superseding any
// request still in flight.
func (m *model) submit() {
	sc := m.base
	sc.Inputs.Threshold = m.threshold
	id, err := m.dispatcher.Submit(worker.Job{Scenario: sc, Options: m.opts})
	if err != nil {
		m.err = err
		m.pending = 0
		return
	}
	m.pending = id
	m.started = time.Now()
}

// waitForOutcome blocks on the dispatcher's results channel.
func waitForOutcome(d *worker.Dispatcher) tea.Cmd {
	return func() tea.Msg {
		o, ok := <-d.Results()
		if !ok {
			return closedMsg{}
		}
		return outcomeMsg(o)
	}
}

// Init starts the spinner and the results listener.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForOutcome(m.dispatcher))
}

// Update handles key presses, finished requests and spinner ticks.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.dispatcher.Close()
			return m, tea.Quit
		case "+", "=", "up":
			m.threshold += m.step
			m.submit()
		case "-", "_", "down":
			m.threshold -= m.step
			m.submit()
		case "r":
			m.submit()
		}
		return m, nil

	case outcomeMsg:
		o := worker.Outcome(msg)
		if !m.dispatcher.Accept(o) {
			return m, waitForOutcome(m.dispatcher)
		}
		m.pending = 0
		if o.Err != nil {
			m.err = o.Err
			m.report = nil
		} else {
			m.err = nil
			rep := o.Report
			m.report = &rep
		}
		return m, waitForOutcome(m.dispatcher)

	case closedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the latest report or the progress of the pending request.
func (m *model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	title := "voi watch"
	if m.base.Name != "" {
		title += ": " + m.base.Name
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString(fmt.Sprintf("  threshold %s\n\n", report.Percent(m.threshold)))

	if m.pending != 0 {
		elapsed := time.Since(m.started).Seconds()
		b.WriteString(fmt.Sprintf("  %s Computing request %d... %.1fs\n\n", m.spinner.View(), m.pending, elapsed))
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("  error: "+m.err.Error()) + "\n\n")
	}
	if m.report != nil {
		b.WriteString(report.EVPI(m.report.EVPI))
		b.WriteString("\n")
		b.WriteString(report.EVSI(m.report.EVSI))
		b.WriteString("\n")
		b.WriteString(report.CostOfDelay(m.report.CostOfDelay))
		b.WriteString("\n")
		b.WriteString(report.NetValue(m.report.NetValue))
		if adv := report.Advisories(m.report.Advisories); adv != "" {
			b.WriteString("\n")
			b.WriteString(adv)
		}
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("+/- move threshold by %s • r rerun • q quit", report.Percent(m.step))))
	b.WriteString("\n")
	return b.String()
}

// Run starts the watch view and blocks until the user quits or ctx ends.
// Pending work is cancelled on the way out.
func Run(ctx context.Context, sc analysis.Scenario, opts analysis.Options, step float64) error {
	d := worker.New(ctx, nil)
	defer d.Close()

	p := tea.NewProgram(newModel(d, sc, opts, step), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
