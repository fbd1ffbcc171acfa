package keybindings

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNoDuplicateKeyBindings(t *testing.T) {
	// Global keys are live in every context, so they must not be shadowed either
	globalKeys := make(map[string]Action)
	for _, binding := range globalBindings {
		globalKeys[binding.KeyMap.Primary] = binding.Action
		if binding.KeyMap.Secondary != "" {
			globalKeys[binding.KeyMap.Secondary] = binding.Action
		}
	}

	for contextName, bindings := range ContextBindings {
		t.Run(fmt.Sprintf("Context_%s", contextName), func(t *testing.T) {
			keyToAction := make(map[string]Action)

			check := func(key string, action Action) {
				if key == "" {
					return
				}
				if existingAction, exists := keyToAction[key]; exists {
					t.Errorf("Duplicate key binding '%s' in context '%s': "+
						"first assigned to action '%s', then to '%s'",
						key, contextName, existingAction, action)
					return
				}
				keyToAction[key] = action

				if contextName == ContextGlobal || contextName == ContextSearchMode {
					return
				}
				if globalAction, exists := globalKeys[key]; exists {
					t.Errorf("Key '%s' in context '%s' is shadowed by global action '%s'", key, contextName, globalAction)
				}
			}

			for _, binding := range bindings {
				check(binding.KeyMap.Primary, binding.Action)
				check(binding.KeyMap.Secondary, binding.Action)
			}
		})
	}
}

func TestGetActionByKey(t *testing.T) {
	assert.Equal(t, ActionEnableSearch, GetActionByKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")}, ContextMonitor))
	assert.Equal(t, ActionMoveDown, GetActionByKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, ContextMonitor))
	assert.Equal(t, ActionSearchComplete, GetActionByKey(tea.KeyMsg{Type: tea.KeyEnter}, ContextSearchMode))
	assert.Equal(t, Action(""), GetActionByKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}, ContextMonitor))
}

func TestGetHelpText(t *testing.T) {
	text := GetHelpText("Monitor", monitorBindings)
	assert.Contains(t, text, "## Monitor")
	assert.Contains(t, text, "* /ctrl+f: Filter beacons by event name")
	assert.Contains(t, text, "* c: Clear the beacon feed")
}
