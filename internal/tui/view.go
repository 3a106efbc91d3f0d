package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gattview/internal/ble"
)

const (
	headerHeight    = 1
	lastReadHeight  = 1
	statusBarHeight = 1
)

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	header := m.renderHeader()
	devices := m.renderDevicePane()
	lastRead := m.renderLastRead()
	logPane := m.renderLogPane()
	footer := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		devices,
		lastRead,
		logPane,
		footer,
	)
}

func (m Model) renderHeader() string {
	state := m.scans.RadioState()
	stateStyle := styleStateOff
	if state == ble.StatePoweredOn {
		stateStyle = styleStateOn
	}

	parts := []string{
		styleTitle.Render("gattview"),
		styleMuted.Render("radio:"),
		stateStyle.Render(state.String()),
	}
	if m.scans.Scanning() {
		parts = append(parts, m.spin.View()+styleInfo.Render("scanning"))
	}
	if phase := m.seq.Phase(); phase != ble.PhaseIdle {
		parts = append(parts, m.spin.View()+styleInfo.Render(phase.String()))
	}
	return " " + strings.Join(parts, "  ")
}

func (m Model) renderDevicePane() string {
	devices := m.scans.Devices()
	title := fmt.Sprintf(" Devices (%d) ", len(devices))

	inner := m.width - 4
	rows := m.devicePaneHeight() - 2

	var sb strings.Builder
	if len(devices) == 0 {
		sb.WriteString(styleMuted.Render("  No devices yet. Press s to scan."))
	}
	for i, d := range devices {
		if i >= rows {
			break
		}
		line := truncate(deviceRow(d), inner)
		if i == m.devCursor && m.focus == FocusDevices {
			line = styleSelected.Render(line)
		}
		sb.WriteString(line)
		if i < len(devices)-1 {
			sb.WriteByte('\n')
		}
	}

	pane := stylePane
	if m.focus == FocusDevices {
		pane = stylePaneActive
	}
	return pane.Width(m.width - 2).Height(m.devicePaneHeight() - 2).Render(styleTitle.Render(title) + "\n" + sb.String())
}

// deviceRow formats one device line: display name, identity, signal.
func deviceRow(d ble.Device) string {
	rssi := "(n/a)"
	if d.RSSI != nil {
		rssi = strconv.Itoa(*d.RSSI) + " dBm"
	}
	return fmt.Sprintf("  %s  %s  %s", d.DisplayName(), d.ID, rssi)
}

func (m Model) renderLastRead() string {
	return " " + styleTitle.Render("Last read:") + " " + m.seq.LastRead()
}

func (m Model) renderLogPane() string {
	pane := stylePane
	if m.focus == FocusLog {
		pane = stylePaneActive
	}
	title := fmt.Sprintf(" Log (%d) ", m.log.Len())
	return pane.Width(m.width - 2).Render(styleTitle.Render(title) + "\n" + m.logView.View())
}

// renderLogLines builds the viewport content, newest entry first.
func (m Model) renderLogLines() string {
	entries := m.log.Entries()
	if len(entries) == 0 {
		return styleMuted.Render("  Nothing logged yet.")
	}

	inner := m.width - 4
	var sb strings.Builder
	for i, e := range entries {
		line := truncate(" "+e.String(), inner)
		if i == m.logCursor && m.focus == FocusLog {
			line = styleSelected.Render(line)
		}
		sb.WriteString(line)
		if i < len(entries)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (m Model) renderStatusBar() string {
	hints := []struct{ key, desc string }{
		{m.keys.Scan.Help().Key, m.keys.Scan.Help().Desc},
		{m.keys.Stop.Help().Key, m.keys.Stop.Help().Desc},
		{m.keys.Connect.Help().Key, m.keys.Connect.Help().Desc},
		{m.keys.Focus.Help().Key, m.keys.Focus.Help().Desc},
		{m.keys.Copy.Help().Key, m.keys.Copy.Help().Desc},
		{m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc},
	}

	var parts []string
	for _, h := range hints {
		parts = append(parts, styleStatusKey.Render(h.key)+": "+h.desc)
	}
	left := " " + strings.Join(parts, "  ")

	right := ""
	if m.status != "" {
		right = styleInfo.Render(m.status) + " "
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// truncate cuts a rendered line to the pane width, rune-safe.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
