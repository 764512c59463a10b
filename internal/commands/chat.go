package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/vestry/internal/chat"
	"github.com/diogo/vestry/internal/render"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies, o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive stylist chat",
		Long: `Start an interactive chat with your AI stylist.

Every message carries the whole conversation and your wardrobe, so the
stylist only suggests items you own. Pick a quick prompt with 1-6 before
the first message. Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps, o)
		},
	}
}

func runChat(deps *Dependencies, o *rootOptions) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	inv, err := loadWardrobe(cfg)
	if err != nil {
		return err
	}
	transport, err := deps.transport(cfg)
	if err != nil {
		return err
	}

	// The session keeps its silent default logger; log lines would corrupt the alt screen.
	session := chat.NewSession(transport, chat.WithWardrobe(inv))

	subtitle := fmt.Sprintf("%d items in your wardrobe", inv.Len())
	opts := render.LoadOptionsFromConfig(cfg.Markdown)

	return deps.TUI.RunChat(session, opts, subtitle)
}
