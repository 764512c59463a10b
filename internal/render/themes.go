package render

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// StyleVestry is the default style: glamour's dark style with rose accents
const StyleVestry = "vestry"

// StyleInfo describes a selectable style
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles lists the styles accepted by name
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleVestry, Description: "Dark with rose accents (default)"},
		{Name: styles.DarkStyle, Description: "Dark theme"},
		{Name: styles.LightStyle, Description: "Light theme for bright terminals"},
		{Name: styles.DraculaStyle, Description: "Dracula color scheme"},
		{Name: styles.TokyoNightStyle, Description: "Tokyo Night color scheme"},
		{Name: styles.PinkStyle, Description: "Pink accents"},
		{Name: styles.NoTTYStyle, Description: "Plain text (no styling)"},
		{Name: styles.AsciiStyle, Description: "ASCII-only output"},
	}
}

// StyleNames returns just the style names
func StyleNames() []string {
	all := AvailableStyles()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// IsBuiltinStyle reports whether style is selectable by name
func IsBuiltinStyle(style string) bool {
	if style == StyleVestry {
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

// styleOption maps a style name or file path onto a renderer option
func styleOption(style string) glamour.TermRendererOption {
	switch {
	case style == "" || style == StyleVestry:
		return glamour.WithStyles(vestryStyle())
	case IsBuiltinStyle(style):
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(style)
	}
}

func vestryStyle() ansi.StyleConfig {
	rose := "#E91E63"
	blush := "#F8BBD0"
	ivory := "#FFF8F0"

	cfg := styles.DarkStyleConfig
	cfg.H1.Color = &ivory
	cfg.H1.BackgroundColor = &rose
	cfg.H2.Color = &rose
	cfg.H3.Color = &blush
	cfg.Strong.Color = &blush
	cfg.Item.BlockPrefix = "✦ "
	return cfg
}
