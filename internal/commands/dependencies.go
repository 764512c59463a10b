package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/diogo/vestry/internal/api"
	"github.com/diogo/vestry/internal/chat"
	"github.com/diogo/vestry/internal/config"
	"github.com/diogo/vestry/internal/relay"
	"github.com/diogo/vestry/internal/render"
	"github.com/diogo/vestry/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(session tui.ChatSession, opts render.Options, subtitle string) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Transport opens streamed replies. Nil means an api.Client for the
	// configured relay URL.
	Transport chat.Transport

	// Upstream serves `vestry serve`. Nil means a relay.Gateway built from
	// the relay config.
	Upstream relay.Upstream

	// TUI is the terminal user interface.
	TUI TUIInterface

	// CopyText writes to the system clipboard.
	CopyText func(string) error

	// IsTerminal reports whether stdout is a terminal.
	IsTerminal func() bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(session tui.ChatSession, opts render.Options, subtitle string) error {
	return tui.RunChat(session, opts, subtitle)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:        &DefaultTUI{},
		CopyText:   clipboardWrite,
		IsTerminal: isStdoutTTY,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// withDefaults fills nil fields so tests only set what they care about
func (d *Dependencies) withDefaults() *Dependencies {
	if d == nil {
		return NewDependencies()
	}
	def := NewDependencies()
	if d.TUI == nil {
		d.TUI = def.TUI
	}
	if d.CopyText == nil {
		d.CopyText = def.CopyText
	}
	if d.IsTerminal == nil {
		d.IsTerminal = def.IsTerminal
	}
	if d.Stdin == nil {
		d.Stdin = def.Stdin
	}
	if d.Stdout == nil {
		d.Stdout = def.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = def.Stderr
	}
	return d
}

// transport returns the injected transport or a relay client for cfg
func (d *Dependencies) transport(cfg config.Config) (chat.Transport, error) {
	if d.Transport != nil {
		return d.Transport, nil
	}
	client, err := api.NewClient(cfg.RelayURL,
		api.WithAPIKey(cfg.APIKey),
		api.WithTimeout(cfg.Timeout()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay client: %w", err)
	}
	return client, nil
}

// upstream returns the injected upstream or a gateway for the relay config
func (d *Dependencies) upstream(rc config.RelayConfig) (relay.Upstream, error) {
	if d.Upstream != nil {
		return d.Upstream, nil
	}
	gateway, err := relay.NewGateway(rc.GatewayAPIKey,
		relay.WithGatewayURL(rc.GatewayURL),
		relay.WithModel(rc.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}
	return gateway, nil
}

// newLogger builds the command logger at level, writing to w
func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "vestry",
		Level:           lvl,
		ReportTimestamp: true,
	})
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}
