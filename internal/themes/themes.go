// Package themes holds the static display theme registry.
//
// Themes are an ordered list of descriptors consumed by the TUI; the
// registry is fixed at compile time and exactly one theme is active at
// a time. Unknown keys fall back to the built-in default.
package themes

import "github.com/charmbracelet/lipgloss"

// Descriptor identifies one selectable theme.
type Descriptor struct {
	Key         string
	Label       string
	Description string
}

// Styles is the lipgloss style bundle a theme contributes. Switching
// themes swaps the whole bundle; no style from another theme stays
// active.
type Styles struct {
	Key string

	RoleUser      lipgloss.Style
	RoleAssistant lipgloss.Style
	Timestamp     lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	Title       lipgloss.Style
	Selected    lipgloss.Style

	Status lipgloss.Style
	Error  lipgloss.Style
	Hint   lipgloss.Style
}

// theme couples a descriptor with its style palette.
type theme struct {
	desc    Descriptor
	accent  lipgloss.Color
	accent2 lipgloss.Color
	err     lipgloss.Color
	muted   lipgloss.Color
	border  lipgloss.Color
}

// registry is the ordered theme list. The first entry is the default.
var registry = []theme{
	{
		desc: Descriptor{
			Key:         "porcelain",
			Label:       "Porcelain",
			Description: "Calm, low-contrast default",
		},
		accent:  lipgloss.Color("#5FAFD7"),
		accent2: lipgloss.Color("#00D787"),
		err:     lipgloss.Color("#FF005F"),
		muted:   lipgloss.Color("#6C6C6C"),
		border:  lipgloss.Color("#3A3A3A"),
	},
	{
		desc: Descriptor{
			Key:         "midnight",
			Label:       "Midnight",
			Description: "High-contrast dark palette",
		},
		accent:  lipgloss.Color("#BD93F9"),
		accent2: lipgloss.Color("#50FA7B"),
		err:     lipgloss.Color("#FF5555"),
		muted:   lipgloss.Color("#6272A4"),
		border:  lipgloss.Color("#44475A"),
	},
	{
		desc: Descriptor{
			Key:         "forest",
			Label:       "Forest",
			Description: "Muted greens",
		},
		accent:  lipgloss.Color("#87AF87"),
		accent2: lipgloss.Color("#AFD75F"),
		err:     lipgloss.Color("#D75F5F"),
		muted:   lipgloss.Color("#5F875F"),
		border:  lipgloss.Color("#3A4A3A"),
	},
	{
		desc: Descriptor{
			Key:         "sakura",
			Label:       "Sakura",
			Description: "Soft pinks on dark",
		},
		accent:  lipgloss.Color("#D787AF"),
		accent2: lipgloss.Color("#FFAFD7"),
		err:     lipgloss.Color("#FF5F87"),
		muted:   lipgloss.Color("#875F6F"),
		border:  lipgloss.Color("#4A3A42"),
	},
}

// All returns the theme descriptors in registry order.
func All() []Descriptor {
	out := make([]Descriptor, len(registry))
	for i, t := range registry {
		out[i] = t.desc
	}
	return out
}

// Default returns the built-in default theme descriptor.
func Default() Descriptor {
	return registry[0].desc
}

// Lookup resolves a theme key, falling back to the default for empty
// or unknown keys.
func Lookup(key string) Descriptor {
	for _, t := range registry {
		if t.desc.Key == key {
			return t.desc
		}
	}
	return Default()
}

// Known reports whether key names a registered theme.
func Known(key string) bool {
	for _, t := range registry {
		if t.desc.Key == key {
			return true
		}
	}
	return false
}

// ForKey builds the style bundle for a theme key (default fallback
// applies).
func ForKey(key string) Styles {
	t := registry[0]
	for _, cand := range registry {
		if cand.desc.Key == key {
			t = cand
			break
		}
	}
	return t.styles()
}

func (t theme) styles() Styles {
	return Styles{
		Key: t.desc.Key,

		RoleUser:      lipgloss.NewStyle().Foreground(t.accent).Bold(true),
		RoleAssistant: lipgloss.NewStyle().Foreground(t.accent2).Bold(true),
		Timestamp:     lipgloss.NewStyle().Foreground(t.muted),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.border),
		PaneFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.accent),
		Title:    lipgloss.NewStyle().Foreground(t.accent).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(t.accent2).Bold(true),

		Status: lipgloss.NewStyle().Foreground(t.accent),
		Error:  lipgloss.NewStyle().Foreground(t.err).Bold(true),
		Hint:   lipgloss.NewStyle().Foreground(t.muted).Italic(true),
	}
}
