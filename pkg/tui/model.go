// Package tui is an interactive inspector for corrected schedules.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mppkit/mppconvert/pkg/aggregate"
	"github.com/mppkit/mppconvert/pkg/correction"
	"github.com/mppkit/mppconvert/pkg/policy"
	"github.com/mppkit/mppconvert/pkg/schedule"
)

type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateOutline
)

// Data is one corrected schedule. Tasks and Corrected are parallel.
type Data struct {
	Title     string
	Tasks     []schedule.Task
	Corrected []correction.CorrectedDurationRecord
	Summary   aggregate.Summary
	Findings  []policy.Finding
	Warnings  []string
}

// LoadFunc produces the data to inspect. It runs off the UI goroutine.
type LoadFunc func() (*Data, error)

type loadedMsg struct {
	data *Data
	err  error
}

type Model struct {
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	load    LoadFunc

	state    ViewState
	loading  bool
	quitting bool
	err      error
	width    int
	height   int

	data     *Data
	findings map[int][]policy.Finding
	outline  []outlineLine

	// tagFilter indexes data.Summary.Tags; -1 shows every task.
	tagFilter     int
	visible       []int
	cursor        int
	outlineCursor int
}

func NewModel(load LoadFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = special

	return Model{
		spinner:   s,
		help:      help.New(),
		keys:      defaultKeys(),
		load:      load,
		loading:   true,
		tagFilter: -1,
	}
}

func (m Model) Init() tea.Cmd {
	load := m.load
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		d, err := load()
		return loadedMsg{data: d, err: err}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setData(msg.data)
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.data == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.state == ViewStateOutline {
			if m.outlineCursor > 0 {
				m.outlineCursor--
			}
		} else if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.state == ViewStateOutline {
			if m.outlineCursor < len(m.outline)-1 {
				m.outlineCursor++
			}
		} else if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Details):
		switch m.state {
		case ViewStateList:
			if len(m.visible) > 0 {
				m.state = ViewStateDetail
			}
		case ViewStateDetail:
			m.state = ViewStateList
		case ViewStateOutline:
			m.jumpTo(m.outline[m.outlineCursor].index)
		}
	case key.Matches(msg, m.keys.Outline):
		if m.state == ViewStateOutline {
			m.state = ViewStateList
		} else {
			m.state = ViewStateOutline
		}
	case key.Matches(msg, m.keys.Filter):
		if m.state == ViewStateList {
			m.nextFilter()
		}
	case key.Matches(msg, m.keys.Back):
		m.state = ViewStateList
	}
	return m, nil
}

func (m *Model) setData(d *Data) {
	m.data = d
	m.findings = make(map[int][]policy.Finding)
	for _, f := range d.Findings {
		m.findings[f.TaskID] = append(m.findings[f.TaskID], f)
	}
	m.outline = buildOutline(d.Tasks)
	m.applyFilter()
}

// nextFilter cycles All -> each occurring tag -> All.
func (m *Model) nextFilter() {
	m.tagFilter++
	if m.tagFilter >= len(m.data.Summary.Tags) {
		m.tagFilter = -1
	}
	m.applyFilter()
}

func (m *Model) applyFilter() {
	visible := make([]int, 0, len(m.data.Tasks))
	for i := range m.data.Tasks {
		if m.tagFilter >= 0 && m.data.Corrected[i].Source != m.data.Summary.Tags[m.tagFilter].Tag {
			continue
		}
		visible = append(visible, i)
	}
	m.visible = visible
	m.cursor = 0
}

// jumpTo opens the details of task index i with the filter cleared.
func (m *Model) jumpTo(i int) {
	m.tagFilter = -1
	m.applyFilter()
	m.cursor = i
	m.state = ViewStateDetail
}

// Err returns the load error, if loading failed.
func (m Model) Err() error { return m.err }

// selected returns the index of the task under the cursor, or -1.
func (m Model) selected() int {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return -1
	}
	return m.visible[m.cursor]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return danger.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.loading {
		return fmt.Sprintf("\n\n   %s Reading schedule...\n", m.spinner.View())
	}

	var s strings.Builder
	s.WriteString(m.viewHeader())
	s.WriteString("\n")
	switch m.state {
	case ViewStateDetail:
		s.WriteString(m.viewDetails())
	case ViewStateOutline:
		s.WriteString(m.viewOutline())
	default:
		s.WriteString(m.viewList())
	}
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))
	return s.String()
}

func (m Model) viewHeader() string {
	title := m.data.Title
	if title == "" {
		title = "Schedule"
	}
	sum := m.data.Summary
	line := fmt.Sprintf("%d tasks | %.0fh raw -> %.0fh corrected | factor %s",
		sum.Total, sum.RawHours, sum.CorrectedHours, sum.FactorText())

	out := titleStyle.Render(title) + "\n" + dimStyle.Render(" "+line) + "\n"
	for _, w := range m.data.Warnings {
		out += warning.Render(" [WARN] "+w) + "\n"
	}
	return out
}
