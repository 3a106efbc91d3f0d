// Package tui renders gattview's single screen: radio status, discovered
// devices, the last read value, and the scrollable, copyable event log. It
// holds no domain state of its own; on every refresh it re-reads the
// coordinator and sequencer accessors.
package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"gattview/internal/ble"
	"gattview/internal/eventlog"
)

// Ensure Model satisfies tea.Model.
var _ tea.Model = Model{}

// RefreshMsg asks the model to re-read coordinator and sequencer state. The
// coordinator and sequencer notify hooks send it via tea.Program.Send.
type RefreshMsg struct{}

// statusMsg sets the transient status text in the footer.
type statusMsg string

// Focus identifies the pane receiving cursor keys.
type Focus int

const (
	FocusDevices Focus = iota
	FocusLog
)

// Model is the root Bubble Tea model.
type Model struct {
	scans *ble.Coordinator
	seq   *ble.Sequencer
	log   *eventlog.Log

	keys    keyMap
	spin    spinner.Model
	logView viewport.Model

	focus     Focus
	devCursor int
	logCursor int
	status    string

	width  int
	height int
	ready  bool
}

// New creates the screen model.
func New(scans *ble.Coordinator, seq *ble.Sequencer, log *eventlog.Log) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		scans: scans,
		seq:   seq,
		log:   log,
		keys:  defaultKeyMap(),
		spin:  sp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshLog()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case RefreshMsg:
		m.clampCursors()
		m.refreshLog()
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.ready {
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Scan):
		// Equivalent of a disabled scan button: ignored while scanning.
		if m.scans.Scanning() {
			return m, nil
		}
		m.status = ""
		return m, m.startScanCmd()

	case key.Matches(msg, m.keys.Stop):
		scans := m.scans
		return m, func() tea.Msg {
			scans.StopScan()
			return RefreshMsg{}
		}

	case key.Matches(msg, m.keys.Connect):
		if m.focus != FocusDevices || m.seq.Busy() {
			return m, nil
		}
		devices := m.scans.Devices()
		if m.devCursor >= len(devices) {
			return m, nil
		}
		return m, m.connectCmd(devices[m.devCursor])

	case key.Matches(msg, m.keys.Focus):
		if m.focus == FocusDevices {
			m.focus = FocusLog
		} else {
			m.focus = FocusDevices
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.focus != FocusLog {
			return m, nil
		}
		entries := m.log.Entries()
		if m.logCursor >= len(entries) {
			return m, nil
		}
		entry := entries[m.logCursor]
		return m, func() tea.Msg {
			if err := clipboard.WriteAll(entry.String()); err != nil {
				return statusMsg("copy failed: " + err.Error())
			}
			return statusMsg("log entry copied")
		}
	}
	return m, nil
}

// startScanCmd runs the scan start off the UI loop; the coordinator's own
// gating decides whether anything happens.
func (m Model) startScanCmd() tea.Cmd {
	scans := m.scans
	return func() tea.Msg {
		scans.StartScan(context.Background())
		return RefreshMsg{}
	}
}

// connectCmd runs one full connect-and-read sequence off the UI loop.
func (m Model) connectCmd(dev ble.Device) tea.Cmd {
	seq := m.seq
	return func() tea.Msg {
		seq.ConnectAndRead(context.Background(), dev)
		return RefreshMsg{}
	}
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case FocusDevices:
		m.devCursor += delta
		m.clampCursors()
	case FocusLog:
		m.logCursor += delta
		m.clampCursors()
		m.refreshLog()
		m.scrollToLogCursor()
	}
}

func (m *Model) clampCursors() {
	if n := len(m.scans.Devices()); m.devCursor >= n {
		m.devCursor = n - 1
	}
	if m.devCursor < 0 {
		m.devCursor = 0
	}
	if n := m.log.Len(); m.logCursor >= n {
		m.logCursor = n - 1
	}
	if m.logCursor < 0 {
		m.logCursor = 0
	}
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	logH := m.logPaneHeight()
	if !m.ready {
		m.logView = viewport.New(m.width-2, logH)
		m.logView.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.logView.Width = m.width - 2
		m.logView.Height = logH
	}
}

// logPaneHeight is the space left after header, device pane, last-read line,
// and status bar.
func (m Model) logPaneHeight() int {
	h := m.height - headerHeight - m.devicePaneHeight() - lastReadHeight - statusBarHeight - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) devicePaneHeight() int {
	h := m.height / 3
	if h < 4 {
		h = 4
	}
	return h
}

func (m *Model) refreshLog() {
	if !m.ready {
		return
	}
	m.logView.SetContent(m.renderLogLines())
}

// scrollToLogCursor keeps the selected entry inside the viewport.
func (m *Model) scrollToLogCursor() {
	if !m.ready {
		return
	}
	top := m.logView.YOffset
	bottom := top + m.logView.Height - 1
	if m.logCursor < top {
		m.logView.SetYOffset(m.logCursor)
	} else if m.logCursor > bottom {
		m.logView.SetYOffset(m.logCursor - m.logView.Height + 1)
	}
}
