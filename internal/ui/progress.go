// Package ui renders terminal views for the CLI: a live progress list for
// batch decoding and plain aligned tables.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"argbind/internal/driver"
)

const (
	labelQueued   = "queued"
	labelReading  = "reading"
	labelDecoding = "decoding"
	labelCached   = "cached"
	labelDone     = "done"
	labelError    = "error"
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type fileItem struct {
	path    string
	status  string
	elapsed time.Duration
}

func (it fileItem) finished() bool {
	return it.status == labelDone || it.status == labelCached || it.status == labelError
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows driver events for
// files until events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items[i] = fileItem{path: file, status: labelQueued}
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) counts() (finished, cached, failed int) {
	for _, it := range m.items {
		if it.finished() {
			finished++
		}
		switch it.status {
		case labelCached:
			cached++
		case labelError:
			failed++
		}
	}
	return finished, cached, failed
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	finished, cached, failed := m.counts()
	header := fmt.Sprintf("%s %d/%d", m.title, finished, len(m.items))
	if cached > 0 {
		header += fmt.Sprintf(", %d cached", cached)
	}
	if failed > 0 {
		header += fmt.Sprintf(", %d failed", failed)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-24, 20)
	for _, it := range m.items {
		status := styleStatus(it.status).Render(fmt.Sprintf("%9s", it.status))
		line := "  " + status + " " + Truncate(it.path, nameWidth)
		if it.finished() && it.elapsed > 0 {
			line += lipgloss.NewStyle().Faint(true).Render(" " + it.elapsed.Round(time.Microsecond).String())
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	label := statusLabel(ev.Stage, ev.Status)
	if label == "" {
		return nil
	}
	m.items[idx].status = label
	if ev.Elapsed > 0 {
		m.items[idx].elapsed = ev.Elapsed
	}
	finished, _, _ := m.counts()
	return m.prog.SetPercent(float64(finished) / float64(len(m.items)))
}

func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		return labelQueued
	case driver.StatusDone:
		return labelDone
	case driver.StatusCached:
		return labelCached
	case driver.StatusError:
		return labelError
	case driver.StatusWorking:
		switch stage {
		case driver.StageRead:
			return labelReading
		case driver.StageDecode:
			return labelDecoding
		}
	}
	return ""
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case labelDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case labelCached:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	case labelError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case labelReading, labelDecoding:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}
