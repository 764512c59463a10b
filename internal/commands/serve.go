package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/vestry/internal/relay"
)

// serveOptions override the relay section of the config
type serveOptions struct {
	addr       string
	gatewayURL string
	model      string
}

// NewServeCmd creates the relay server command
func NewServeCmd(deps *Dependencies, o *rootOptions) *cobra.Command {
	so := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the outfit-chat relay",
		Long: `Run the relay that vestry chat talks to.

POST /outfit-chat takes {"messages": [...], "wardrobe": [...]}, adds the
stylist system prompt built from the wardrobe, forwards the conversation to
the chat-completion gateway and streams the event stream back unmodified.

The gateway key is read from relay.gateway_api_key in the config or the
VESTRY_RELAY_GATEWAY_API_KEY environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), deps, o, so)
		},
	}

	cmd.Flags().StringVar(&so.addr, "addr", "", "Listen address (default from config, "+relay.DefaultListenAddr+")")
	cmd.Flags().StringVar(&so.gatewayURL, "gateway-url", "", "Chat-completion endpoint")
	cmd.Flags().StringVar(&so.model, "model", "", "Completion model")
	return cmd
}

func runServe(ctx context.Context, deps *Dependencies, o *rootOptions, so *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	rc := cfg.Relay
	if so.addr != "" {
		rc.ListenAddr = so.addr
	}
	if so.gatewayURL != "" {
		rc.GatewayURL = so.gatewayURL
	}
	if so.model != "" {
		rc.Model = so.model
	}

	// The relay is a plain server process; default to info so requests show up.
	level := cfg.LogLevel
	if o.logLevel == "" && level == "warn" {
		level = "info"
	}
	logger := newLogger(deps.Stderr, level)

	upstream, err := deps.upstream(rc)
	if err != nil {
		return err
	}
	if rc.GatewayAPIKey == "" && deps.Upstream == nil {
		logger.Warn("no gateway key configured; chat requests will fail", "env", "VESTRY_RELAY_GATEWAY_API_KEY")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := relay.NewServer(rc.ListenAddr, relay.NewHandler(upstream, logger), logger)
	logger.Info("starting relay", "addr", server.Addr(), "gateway", rc.GatewayURL, "model", rc.Model)
	return server.ListenAndServe(ctx)
}
