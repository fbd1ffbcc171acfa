package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	kb "github.com/PizzaHomicide/kava/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/kava/internal/ui/tui/styles"
)

// KeyBinding represents a single key and its description for the keybinding bar
type KeyBinding struct {
	Key  string
	Desc string
}

// keyStyle is used to highlight keyboard shortcuts in UI
var keyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7D56F4")).
	Bold(true)

// FromBindings builds bar entries for the given actions of a context, using each action's primary key
func FromBindings(context kb.ContextName, actions map[kb.Action]string) []KeyBinding {
	var bar []KeyBinding
	for _, binding := range kb.ContextBindings[context] {
		if desc, ok := actions[binding.Action]; ok {
			bar = append(bar, KeyBinding{Key: binding.KeyMap.Primary, Desc: desc})
		}
	}
	return bar
}

// KeyBindingsBar creates a styled footer showing a set of keybindings
// width: The width of the screen to center the bar
// bindings: The list of keybindings to display
func KeyBindingsBar(width int, bindings []KeyBinding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("%s: %s",
			keyStyle.Render(b.Key),
			b.Desc))
	}

	keyBar := styles.Info.Render(strings.Join(parts, " • "))
	return styles.CenteredText(width, keyBar)
}
