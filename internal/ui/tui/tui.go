// Package tui is the interactive beacon monitor shown while kava watches a playback.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PizzaHomicide/kava/internal/ui/tui/models"
)

// Run shows the monitor until the user quits.  Beacons arrive through feed, which must be subscribed to the tracker;
// ended receives the playback outcome when the player finishes.  latency may be nil.
func Run(title string, source models.SnapshotSource, latency models.LatencySource, feed *models.Feed, ended <-chan error) error {
	model := models.NewMonitorModel(title, source, feed, ended)
	if latency != nil {
		model.WithLatency(latency)
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
