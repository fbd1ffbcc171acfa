package models

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/PizzaHomicide/kava/internal/analytics"
	"github.com/PizzaHomicide/kava/internal/log"
	kb "github.com/PizzaHomicide/kava/internal/ui/tui/keybindings"
)

// SnapshotInterval is how often the status panel polls the tracker
const SnapshotInterval = 500 * time.Millisecond

// SnapshotSource is anything that can report session counters, normally the tracker
type SnapshotSource interface {
	Snapshot() analytics.Snapshot
}

// LatencySource reports beacon delivery latency quantiles, normally the metrics collector
type LatencySource interface {
	LatencyQuantile(q float64) time.Duration
}

// FeedEntry is one delivered beacon as shown in the feed
type FeedEntry struct {
	Seq  int
	Name string
	At   time.Time
}

// MonitorModel is the beacon monitor: a live feed of delivered beacons next to the session counters
type MonitorModel struct {
	title   string
	source  SnapshotSource
	latency LatencySource
	feed    *Feed
	ended   <-chan error

	width, height int
	viewport      viewport.Model
	searchInput   textinput.Model
	spinner       spinner.Model
	help          *HelpModel

	entries  []FeedEntry
	filtered []FeedEntry
	counts   map[string]int
	seq      int

	snapshot      analytics.Snapshot
	p50, p95      time.Duration
	searchMode    bool
	query         string
	follow        bool
	showHelp      bool
	feedClosed    bool
	playbackEnded bool
	playbackErr   error
}

// NewMonitorModel creates the monitor.  ended delivers the outcome of playback once it finishes and may be nil.
func NewMonitorModel(title string, source SnapshotSource, feed *Feed, ended <-chan error) *MonitorModel {
	input := textinput.New()
	input.Placeholder = "event name"
	input.Prompt = "/ "
	input.CharLimit = 32

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return &MonitorModel{
		title:       title,
		source:      source,
		feed:        feed,
		ended:       ended,
		viewport:    viewport.New(0, 0),
		searchInput: input,
		spinner:     s,
		help:        NewHelpModel(),
		counts:      make(map[string]int),
		follow:      true,
	}
}

// WithLatency adds delivery latency quantiles to the status panel
func (m *MonitorModel) WithLatency(latency LatencySource) *MonitorModel {
	m.latency = latency
	return m
}

// Init starts listening to the feed, the snapshot poller and the playback outcome
func (m *MonitorModel) Init() tea.Cmd {
	log.Info("Initialising beacon monitor")

	cmds := []tea.Cmd{m.spinner.Tick, m.pollSnapshot(), m.nextBeacon()}
	if m.ended != nil {
		ended := m.ended
		cmds = append(cmds, func() tea.Msg {
			return PlaybackEndedMsg{Err: <-ended}
		})
	}
	return tea.Batch(cmds...)
}

func (m *MonitorModel) nextBeacon() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return m.feed.Next()
}

func (m *MonitorModel) pollSnapshot() tea.Cmd {
	source, latency := m.source, m.latency
	return tea.Tick(SnapshotInterval, func(time.Time) tea.Msg {
		var msg SnapshotMsg
		if source != nil {
			msg.Snapshot = source.Snapshot()
		}
		if latency != nil {
			msg.P50 = latency.LatencyQuantile(0.5)
			msg.P95 = latency.LatencyQuantile(0.95)
		}
		return msg
	})
}

// Update handles messages and updates the model as appropriate
func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		if m.showHelp {
			return m, m.help.Update(msg)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "width", msg.Width, "height", msg.Height)
		m.Resize(msg.Width, msg.Height)
		return m, nil

	case BeaconMsg:
		m.addEntry(msg)
		return m, m.nextBeacon()

	case FeedClosedMsg:
		m.feedClosed = true
		return m, nil

	case SnapshotMsg:
		m.snapshot = msg.Snapshot
		m.p50, m.p95 = msg.P50, msg.P95
		return m, m.pollSnapshot()

	case PlaybackEndedMsg:
		log.Info("Playback ended", "error", msg.Err)
		m.playbackEnded = true
		m.playbackErr = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.waiting() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// waiting is true until the first beacon has been delivered
func (m *MonitorModel) waiting() bool {
	return m.seq == 0 && !m.playbackEnded
}

func (m *MonitorModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Search input swallows everything except its own bindings
	if m.searchMode {
		switch kb.GetActionByKey(msg, kb.ContextSearchMode) {
		case kb.ActionBack:
			m.searchMode = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.setQuery("")
			return nil
		case kb.ActionSearchComplete:
			m.searchMode = false
			m.searchInput.Blur()
			m.setQuery(m.searchInput.Value())
			return nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.setQuery(m.searchInput.Value())
		return cmd
	}

	switch kb.GetActionByKey(msg, kb.ContextGlobal) {
	case kb.ActionQuit:
		log.Info("Quit command received.  Shutting down...")
		return tea.Quit
	case kb.ActionToggleHelp:
		m.showHelp = !m.showHelp
		return nil
	case kb.ActionBack:
		if m.showHelp {
			m.showHelp = false
		} else if m.query != "" {
			m.searchInput.SetValue("")
			m.setQuery("")
		}
		return nil
	}

	if m.showHelp {
		return m.help.Update(msg)
	}

	var cmd tea.Cmd
	switch kb.GetActionByKey(msg, kb.ContextMonitor) {
	case kb.ActionEnableSearch:
		m.searchMode = true
		cmd = m.searchInput.Focus()
	case kb.ActionToggleFollow:
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
		}
	case kb.ActionClearFeed:
		m.entries = nil
		m.counts = make(map[string]int)
		m.applyFilter()
	case kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionPageUp, kb.ActionPageDown:
		m.follow = false
		m.viewport, cmd = m.viewport.Update(msg)
	case kb.ActionMoveTop:
		m.follow = false
		m.viewport.GotoTop()
	case kb.ActionMoveBottom:
		m.follow = true
		m.viewport.GotoBottom()
	}
	return cmd
}

func (m *MonitorModel) addEntry(msg BeaconMsg) {
	m.seq++
	entry := FeedEntry{Seq: m.seq, Name: msg.Name, At: msg.At}
	m.entries = append(m.entries, entry)
	m.counts[msg.Name]++

	if m.matches(entry) {
		m.filtered = append(m.filtered, entry)
		m.refreshFeed()
	}
}

func (m *MonitorModel) setQuery(query string) {
	if query == m.query {
		return
	}
	m.query = query
	m.applyFilter()
}

func (m *MonitorModel) matches(entry FeedEntry) bool {
	return m.query == "" || fuzzy.MatchFold(m.query, entry.Name)
}

// applyFilter rebuilds the visible feed from every entry
func (m *MonitorModel) applyFilter() {
	m.filtered = m.filtered[:0]
	for _, entry := range m.entries {
		if m.matches(entry) {
			m.filtered = append(m.filtered, entry)
		}
	}
	m.refreshFeed()
}

func (m *MonitorModel) refreshFeed() {
	m.viewport.SetContent(m.renderFeed())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// Resize updates the dimensions of the monitor and its children
func (m *MonitorModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Resize(width, height)

	m.viewport.Width = max(width-statusWidth-6, 10)
	m.viewport.Height = max(height-6, 3)
	m.searchInput.Width = max(width-8, 10)
	m.refreshFeed()
}

// Entries returns the beacons currently visible in the feed
func (m *MonitorModel) Entries() []FeedEntry {
	return append([]FeedEntry(nil), m.filtered...)
}
