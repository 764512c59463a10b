package render

import (
	"os"

	"github.com/diogo/vestry/internal/config"
)

// LoadOptionsFromConfig builds render options from the markdown section of
// the user configuration. GLAMOUR_STYLE takes precedence over the config.
func LoadOptionsFromConfig(md config.MarkdownConfig) Options {
	opts := DefaultOptions()

	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}

// LoadOptionsFromConfigWithWidth loads options from config with a specific width.
func LoadOptionsFromConfigWithWidth(md config.MarkdownConfig, width int) Options {
	opts := LoadOptionsFromConfig(md)
	opts.Width = width
	return opts
}
