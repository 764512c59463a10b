// Package commands provides CLI commands for vestry.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/vestry/internal/config"
	"github.com/diogo/vestry/internal/wardrobe"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the flags shared by every command
type rootOptions struct {
	configPath   string
	relayURL     string
	wardrobeFile string
	logLevel     string

	// ask flags
	outputFile string
	promptFile string
	raw        bool
	copy       bool
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "vestry [prompt]",
		Short: "AI stylist for the clothes you already own",
		Long: `vestry suggests outfits built only from the items in your wardrobe.
Replies stream from a relay that forwards your conversation to a
chat-completion gateway.

Examples:
  vestry chat                               Start the stylist chat
  vestry "What should I wear to a wedding?" Ask a single question
  vestry -f occasion.md                     Read the question from a file
  echo "rainy day at the office" | vestry   Read the question from stdin
  vestry "Date night" -o look.md            Save the reply to a file
  vestry serve                              Run the relay locally
  vestry wardrobe --category Tops           List wardrobe items`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for version flag
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "vestry %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, err := readPrompt(deps, o, args)
			if err != nil {
				return err
			}
			if prompt == "" {
				return cmd.Help()
			}
			return runAsk(cmd.Context(), deps, o, prompt)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Config file (default ~/.vestry/config.json)")
	cmd.PersistentFlags().StringVar(&o.relayURL, "relay", "", "Relay endpoint URL")
	cmd.PersistentFlags().StringVarP(&o.wardrobeFile, "wardrobe", "w", "", "Wardrobe file (YAML or JSON)")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVarP(&o.outputFile, "output", "o", "", "Save response to file")
	cmd.Flags().StringVarP(&o.promptFile, "file", "f", "", "Read prompt from file")
	cmd.Flags().BoolVar(&o.raw, "raw", false, "Print the reply as it streams, without decoration")
	cmd.Flags().BoolVar(&o.copy, "copy", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	cmd.AddCommand(NewChatCmd(deps, o))
	cmd.AddCommand(NewServeCmd(deps, o))
	cmd.AddCommand(NewWardrobeCmd(deps, o))
	cmd.AddCommand(NewConfigCmd(deps, o))

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// readPrompt takes the prompt from --file, piped stdin or the argument, in that order
func readPrompt(deps *Dependencies, o *rootOptions, args []string) (string, error) {
	if o.promptFile != "" {
		data, err := os.ReadFile(o.promptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}

	if hasPipedInput(deps.Stdin) {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return "", nil
}

// hasPipedInput reports whether r is something other than an interactive terminal
func hasPipedInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// loadConfig reads the config file and applies the global flag overrides
func loadConfig(o *rootOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadConfigFrom(o.configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return cfg, err
	}

	if o.relayURL != "" {
		cfg.RelayURL = o.relayURL
	}
	if o.wardrobeFile != "" {
		cfg.WardrobeFile = o.wardrobeFile
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadWardrobe loads the configured wardrobe file, or the starter items
func loadWardrobe(cfg config.Config) (*wardrobe.Inventory, error) {
	inv, err := wardrobe.LoadFile(cfg.WardrobeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load wardrobe: %w", err)
	}
	return inv, nil
}
