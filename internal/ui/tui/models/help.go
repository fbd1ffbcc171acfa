package models

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	kb "github.com/PizzaHomicide/kava/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/kava/internal/ui/tui/styles"
)

// HelpModel displays the key bindings with scrolling
type HelpModel struct {
	width, height int
	viewport      viewport.Model
}

// NewHelpModel creates a new help model
func NewHelpModel() *HelpModel {
	m := &HelpModel{viewport: viewport.New(0, 0)}
	m.updateContent()
	return m
}

// Update handles messages
func (m *HelpModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHelp) {
		case kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionPageUp, kb.ActionPageDown:
			m.viewport, cmd = m.viewport.Update(msg)
		case kb.ActionMoveTop:
			m.viewport.GotoTop()
		case kb.ActionMoveBottom:
			m.viewport.GotoBottom()
		}
	}
	return cmd
}

// Resize updates the dimensions
func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height

	m.viewport.Width = max(width-4, 1)   // borders
	m.viewport.Height = max(height-8, 1) // header, footer, spacing
	m.updateContent()
}

func (m *HelpModel) updateContent() {
	var sb strings.Builder
	sb.WriteString(kb.GetHelpText("Global", kb.ContextBindings[kb.ContextGlobal]))
	sb.WriteString("\n")
	sb.WriteString(kb.GetHelpText("Beacon feed", kb.ContextBindings[kb.ContextMonitor]))
	sb.WriteString("\n")
	sb.WriteString(kb.GetHelpText("Filter input", kb.ContextBindings[kb.ContextSearchMode]))

	m.viewport.SetContent(sb.String())
	m.viewport.GotoTop()
}

// View renders the help screen
func (m *HelpModel) View() string {
	header := styles.Header(m.width, "Help")
	scrollText := "↑/↓: Scroll • PgUp/PgDn: Page scroll • Home/End: Goto top/bottom • ESC: Return"
	footer := styles.CenteredText(m.width, styles.Info.Render(scrollText))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		styles.ContentBox(m.width-2, m.viewport.View(), 1),
		"",
		footer,
	)
}
