package analytics

// Milestones records which playback progress thresholds have been reported for the current media.  Flags only ever
// go from false to true; a new Session starts with a fresh set.
type Milestones struct {
	Reached25  bool
	Reached50  bool
	Reached75  bool
	Reached100 bool
}

// Check marks every unreached quartile that progress (0..1) satisfies and returns the matching events in ascending
// order.  Nothing fires below 25%.  100% is only ever reported through Complete.
func (m *Milestones) Check(progress float64) []EventType {
	if progress < 0.25 {
		return nil
	}

	var events []EventType
	if !m.Reached25 {
		m.Reached25 = true
		events = append(events, EventPlayReached25)
	}
	if !m.Reached50 && progress >= 0.5 {
		m.Reached50 = true
		events = append(events, EventPlayReached50)
	}
	if !m.Reached75 && progress >= 0.75 {
		m.Reached75 = true
		events = append(events, EventPlayReached75)
	}
	return events
}

// Complete marks the 100% milestone, returning false if it was already reported
func (m *Milestones) Complete() bool {
	if m.Reached100 {
		return false
	}
	m.Reached100 = true
	return true
}
