// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/link"
	"github.com/Thermoquad/minewatch/pkg/position"
)

// linkController is the part of link.Manager the TUI drives
type linkController interface {
	SetConfig(cfg *link.Config) error
	Config() *link.Config
}

type tuiMode int

const (
	modeNormal tuiMode = iota
	modePortPicker
	modeBaudPicker
	modeManualEntry
)

// Event log entry
type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// pickerItem is a port or baud rate choice
type pickerItem struct {
	title string
	desc  string
	port  string
	baud  int
}

// Implement list.Item interface
func (i pickerItem) Title() string       { return i.title }
func (i pickerItem) Description() string { return i.desc }
func (i pickerItem) FilterValue() string { return i.title }

// TUI model
type model struct {
	manager     linkController
	listPorts   link.PortLister
	classifier  *hazard.Classifier
	defaultBaud int

	stats  *link.Statistics
	status link.Status

	current *link.ClassifiedPoint
	manual  bool

	eventLog      []logEntry
	maxLogEntries int
	ports         []string

	mode   tuiMode
	picker list.Model
	xInput textinput.Model
	yInput textinput.Model

	width    int
	height   int
	quitting bool
}

// Messages
type tickMsg time.Time
type eventsMsg []link.Event
type portsMsg struct {
	ports []string
	err   error
}
type configAppliedMsg struct {
	cfg *link.Config
	err error
}

func newCoordinateInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 8
	ti.Width = 8
	return ti
}

func initialModel(manager linkController, listPorts link.PortLister, classifier *hazard.Classifier, defaultBaud int) model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	picker := list.New([]list.Item{}, delegate, 40, 12)
	picker.SetShowStatusBar(false)
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(false)

	return model{
		manager:       manager,
		listPorts:     listPorts,
		classifier:    classifier,
		defaultBaud:   defaultBaud,
		stats:         link.NewStatistics(),
		status:        link.Status{Kind: link.StatusIdle, Text: "Starting..."},
		eventLog:      make([]logEntry, 0),
		maxLogEntries: 100,
		picker:        picker,
		xInput:        newCoordinateInput("X mm"),
		yInput:        newCoordinateInput("Y mm"),
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), scanPortsCmd(m.listPorts))
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func scanPortsCmd(list link.PortLister) tea.Cmd {
	return func() tea.Msg {
		ports, err := list()
		return portsMsg{ports: ports, err: err}
	}
}

// applyConfigCmd switches the link off the UI goroutine; SetConfig blocks
// until the previous reader has exited
func applyConfigCmd(manager linkController, cfg link.Config) tea.Cmd {
	return func() tea.Msg {
		err := manager.SetConfig(&cfg)
		return configAppliedMsg{cfg: &cfg, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.SetSize(40, max(5, m.height/3))

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case eventsMsg:
		for _, e := range msg {
			m.processEvent(e)
		}

	case portsMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Port scan failed: %v", msg.err), true)
			return m, nil
		}
		m.ports = msg.ports
		m.addLogEntry(fmt.Sprintf("Found %d serial port(s)", len(msg.ports)), false)
		if m.mode == modePortPicker {
			m.setPortItems()
		}

	case configAppliedMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Cannot switch link: %v", msg.err), true)
		} else {
			m.addLogEntry(fmt.Sprintf("Switched to %s", msg.cfg), false)
		}
	}

	return m, nil
}

func (m model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modePortPicker, modeBaudPicker:
		return m.handlePickerKey(msg)
	case modeManualEntry:
		return m.handleManualKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "p":
		m.mode = modePortPicker
		m.picker.Title = "Select port"
		m.setPortItems()
		return m, scanPortsCmd(m.listPorts)

	case "b":
		m.mode = modeBaudPicker
		m.picker.Title = "Select baud rate"
		m.setBaudItems()

	case "r":
		return m, scanPortsCmd(m.listPorts)

	case "a":
		m.mode = modeManualEntry
		m.xInput.Reset()
		m.yInput.Reset()
		m.yInput.Blur()
		return m, m.xInput.Focus()

	case "c":
		m.current = nil
		m.manual = false
		m.addLogEntry("Point cleared", false)
	}

	return m, nil
}

func (m model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeNormal
		return m, nil

	case "enter":
		item, ok := m.picker.SelectedItem().(pickerItem)
		mode := m.mode
		m.mode = modeNormal
		if !ok {
			return m, nil
		}

		cfg := link.Config{BaudRate: m.currentBaud()}
		if current := m.manager.Config(); current != nil {
			cfg.Port = current.Port
		}
		if mode == modePortPicker {
			cfg.Port = item.port
		} else {
			cfg.BaudRate = item.baud
		}
		if cfg.Port == "" {
			m.addLogEntry("Select a port first", true)
			return m, nil
		}
		return m, applyConfigCmd(m.manager, cfg)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m model) handleManualKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.xInput.Blur()
		m.yInput.Blur()
		return m, nil

	case "tab", "shift+tab":
		if m.xInput.Focused() {
			m.xInput.Blur()
			return m, m.yInput.Focus()
		}
		m.yInput.Blur()
		return m, m.xInput.Focus()

	case "enter":
		m.mode = modeNormal
		m.xInput.Blur()
		m.yInput.Blur()
		m.addManualPoint(m.xInput.Value(), m.yInput.Value())
		return m, nil
	}

	var cmd tea.Cmd
	if m.xInput.Focused() {
		m.xInput, cmd = m.xInput.Update(msg)
	} else {
		m.yInput, cmd = m.yInput.Update(msg)
	}
	return m, cmd
}

// addManualPoint classifies an operator-entered point as the current point
func (m *model) addManualPoint(xText, yText string) {
	p, verr := position.ParseManual(xText, yText)
	if verr != nil {
		m.addLogEntry(verr.Message, true)
		return
	}

	res := m.classifier.Classify(p)
	m.current = &link.ClassifiedPoint{
		Point:    p,
		Status:   res.Status,
		Zone:     res.Zone,
		Distance: res.Distance,
		Time:     time.Now(),
	}
	m.manual = true
	m.addLogEntry(fmt.Sprintf("Manual point %s %s", p, res.Status), res.Status == hazard.Mine)
}

func (m *model) processEvent(e link.Event) {
	m.stats.Update(e)

	switch e.Kind {
	case link.EventPoint:
		prev := hazard.Safe
		if m.current != nil {
			prev = m.current.Status
		}
		p := e.Point
		m.current = &p
		m.manual = false
		if p.Status != prev {
			m.addLogEntry(fmt.Sprintf("%s at %s", p.Status, p.Point), p.Status == hazard.Mine)
		}

	case link.EventStatus:
		m.status = e.Status
		switch e.Status.Kind {
		case link.StatusStreaming:
			// Per-point status lines only update the header
		case link.StatusLinkError, link.StatusRejected:
			m.addLogEntry(e.Status.Text, true)
		default:
			m.addLogEntry(e.Status.Text, false)
		}
	}
}

func (m *model) currentBaud() int {
	if current := m.manager.Config(); current != nil && current.BaudRate != 0 {
		return current.BaudRate
	}
	return m.defaultBaud
}

func (m *model) setPortItems() {
	items := make([]list.Item, 0, len(m.ports))
	for _, p := range m.ports {
		items = append(items, pickerItem{title: p, desc: "serial port", port: p})
	}
	m.picker.SetItems(items)
}

func (m *model) setBaudItems() {
	items := make([]list.Item, 0, len(link.BaudRates))
	selected := 0
	for i, b := range link.BaudRates {
		items = append(items, pickerItem{title: fmt.Sprintf("%d", b), desc: "baud", baud: b})
		if b == m.currentBaud() {
			selected = i
		}
	}
	m.picker.SetItems(items)
	m.picker.Select(selected)
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("MINEWATCH - HAZARD MONITOR"))
	s.WriteString("\n")
	statusText := m.status.Text
	switch m.status.Kind {
	case link.StatusLinkError:
		statusText = errorStyle.Render(statusText)
	case link.StatusConnecting, link.StatusAwaiting, link.StatusIdle:
		statusText = warningStyle.Render(statusText)
	default:
		statusText = headerStyle.Render(statusText)
	}
	s.WriteString(statusText)
	s.WriteString("\n")
	s.WriteString(headerStyle.Render("p port | b baud | r rescan | a add point | c clear | q quit"))
	s.WriteString("\n\n")

	// Field map or picker
	var left string
	switch m.mode {
	case modePortPicker, modeBaudPicker:
		left = boxStyle.Render(m.picker.View())
	default:
		var point *position.Point
		status := hazard.Safe
		if m.current != nil {
			point = &m.current.Point
			status = m.current.Status
		}
		grid := fieldGrid(m.classifier.Zones(), point, fieldCols, fieldRows)
		left = boxStyle.Render(renderField(grid, status))
	}

	// Latest point and statistics
	panel := strings.Builder{}
	panel.WriteString(statsLabelStyle.Render("Latest Point:"))
	panel.WriteString("\n")
	if m.current == nil {
		panel.WriteString(headerStyle.Render("(awaiting data)"))
		panel.WriteString("\n")
	} else {
		source := "link"
		if m.manual {
			source = "manual"
		}
		panel.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Position:"), statsValueStyle.Render(m.current.Point.String())))
		panel.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Status:"), statusStyle(m.current.Status).Bold(true).Render(m.current.Status.String())))
		panel.WriteString(fmt.Sprintf("%s %.1f mm\n", statsLabelStyle.Render("Distance:"), m.current.Distance))
		panel.WriteString(fmt.Sprintf("%s %s %s\n", statsLabelStyle.Render("Source:"), source, headerStyle.Render(m.current.Time.Format("15:04:05.000"))))
	}
	panel.WriteString("\n")

	panel.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Points:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalPoints))))
	panel.WriteString(fmt.Sprintf("  %s %d  %s %d  %s %d\n",
		statsValueStyle.Render("safe"), m.stats.SafePoints,
		warningStyle.Render("warning"), m.stats.WarningPoints,
		errorStyle.Render("mine"), m.stats.MinePoints,
	))
	if m.stats.Rejected > 0 || m.stats.LinkErrors > 0 {
		panel.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Rejected:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.Rejected)),
			statsLabelStyle.Render("Link Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.LinkErrors)),
		))
	}
	panel.WriteString(fmt.Sprintf("%s %s", statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f pts/s", m.stats.PointRate))))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", boxStyle.Render(panel.String())))
	s.WriteString("\n")

	// Manual entry
	if m.mode == modeManualEntry {
		s.WriteString(fmt.Sprintf("%s %s %s  %s\n",
			statsLabelStyle.Render("Add point:"), m.xInput.View(), m.yInput.View(),
			headerStyle.Render("tab switch | enter add | esc cancel"),
		))
	}
	s.WriteString("\n")

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - fieldRows - 12
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(max(20, m.width-4)).Render(logContent.String()))

	return s.String()
}
