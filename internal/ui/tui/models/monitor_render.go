package models

// monitor_render.go holds the View side of the beacon monitor: the feed lines, the status panel and the footer.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/PizzaHomicide/kava/internal/analytics"
	"github.com/PizzaHomicide/kava/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/kava/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/kava/internal/ui/tui/styles"
	"github.com/PizzaHomicide/kava/internal/ui/tui/util"
)

const (
	statusWidth    = 36
	eventNameWidth = 26
	timeFormat     = "15:04:05.000"
)

// View renders the monitor
func (m *MonitorModel) View() string {
	if m.width == 0 {
		return "Initialising..."
	}
	if m.showHelp {
		return m.help.View()
	}

	header := styles.Header(m.width, "kava: "+m.title)

	feed := m.viewport.View()
	if m.waiting() {
		feed = m.spinner.View() + " Waiting for the first beacon..."
	}

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		styles.ContentBox(m.viewport.Width, feed, 0),
		" ",
		styles.ContentBox(statusWidth, m.renderStatus(), 0),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		body,
		m.renderFilterLine(),
		m.renderFooter(),
	)
}

func (m *MonitorModel) renderFeed() string {
	if len(m.filtered) == 0 {
		if m.query != "" {
			return styles.Muted.Render("No beacons match " + fmt.Sprintf("%q", m.query))
		}
		return ""
	}

	width := max(m.viewport.Width, eventNameWidth)
	lines := make([]string, 0, len(m.filtered))
	for _, entry := range m.filtered {
		name := styles.Event(entry.Name).Render(util.PadRight(entry.Name, eventNameWidth))
		line := fmt.Sprintf("%s %5d  %s", styles.Muted.Render(entry.At.Format(timeFormat)), entry.Seq, name)
		lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m *MonitorModel) renderStatus() string {
	s := m.snapshot

	rows := []string{
		statusRow("Entry", orDash(s.EntryID)),
		statusRow("Event index", fmt.Sprintf("%d", s.EventIndex)),
		statusRow("Session start", orDash(s.StartTime)),
		statusRow("State", playbackState(s)),
		statusRow("Milestones", milestones(s.Milestones)),
		statusRow("Buffer window", util.FormatDuration(s.BufferWindow)),
		statusRow("Buffer total", util.FormatDuration(s.BufferTotal)),
		statusRow("Bitrate", util.FormatBitrate(s.ActualBitrate)),
		statusRow("Latency p50", util.FormatDuration(m.p50)),
		statusRow("Latency p95", util.FormatDuration(m.p95)),
		"",
		styles.Title.Render("Beacons"),
	}

	names := make([]string, 0, len(m.counts))
	for name := range m.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, statusRow(util.TruncateString(name, 13), fmt.Sprintf("%d", m.counts[name])))
	}

	if m.playbackEnded {
		rows = append(rows, "")
		if m.playbackErr != nil {
			rows = append(rows, styles.Event("ERROR").Render(util.TruncateString(m.playbackErr.Error(), statusWidth)))
		} else {
			rows = append(rows, styles.Info.Render("Playback ended"))
		}
	}
	return strings.Join(rows, "\n")
}

func (m *MonitorModel) renderFilterLine() string {
	switch {
	case m.searchMode:
		return m.searchInput.View()
	case m.query != "":
		return styles.FilterStatus.Render(fmt.Sprintf("Filter: %s (%d/%d)", m.query, len(m.filtered), len(m.entries)))
	case !m.follow:
		return styles.FilterStatus.Render("Follow paused")
	default:
		return ""
	}
}

func (m *MonitorModel) renderFooter() string {
	if m.searchMode {
		return components.KeyBindingsBar(m.width, components.FromBindings(kb.ContextSearchMode, map[kb.Action]string{
			kb.ActionSearchComplete: "Apply",
			kb.ActionBack:           "Cancel",
		}))
	}

	bar := components.FromBindings(kb.ContextMonitor, map[kb.Action]string{
		kb.ActionEnableSearch: "Filter",
		kb.ActionToggleFollow: "Follow",
		kb.ActionClearFeed:    "Clear",
	})
	bar = append(bar, components.FromBindings(kb.ContextGlobal, map[kb.Action]string{
		kb.ActionToggleHelp: "Help",
		kb.ActionQuit:       "Quit",
	})...)
	return components.KeyBindingsBar(m.width, bar)
}

func statusRow(label, value string) string {
	return styles.Label.Render(label) + styles.Info.Render(value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func playbackState(s analytics.Snapshot) string {
	switch {
	case s.Ended:
		return "ended"
	case s.Paused:
		return "paused"
	default:
		return "playing"
	}
}

func milestones(m analytics.Milestones) string {
	marks := []struct {
		label   string
		reached bool
	}{
		{"25", m.Reached25},
		{"50", m.Reached50},
		{"75", m.Reached75},
		{"100", m.Reached100},
	}

	parts := make([]string, 0, len(marks))
	for _, mark := range marks {
		if mark.reached {
			parts = append(parts, mark.label)
		} else {
			parts = append(parts, styles.Muted.Render(mark.label))
		}
	}
	return strings.Join(parts, " ")
}
