package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/vestry/internal/chat"
	apierrors "github.com/diogo/vestry/internal/errors"
	"github.com/diogo/vestry/internal/render"
)

// Fabric swatch colors for the spinner animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#E91E63"), // Rose
	lipgloss.Color("#F48FB1"), // Blush
	lipgloss.Color("#C19A6B"), // Camel
	lipgloss.Color("#D4AF37"), // Gold
	lipgloss.Color("#8E7CC3"), // Lilac
	lipgloss.Color("#2E4A7D"), // Navy
	lipgloss.Color("#6B8E23"), // Olive
	lipgloss.Color("#B76E79"), // Mauve
}

var (
	colorText     = lipgloss.Color("#EDE6E3")
	colorTextDim  = lipgloss.Color("#8C7F7A")
	colorTextMute = lipgloss.Color("#4A403D")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorError    = lipgloss.Color("#f7768e")
	colorPrimary  = lipgloss.Color("#E91E63")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginBottom(0)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	// Spinner characters
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	// Build spinner character with color
	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	// Build animated bar
	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	// Build animated dots
	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	// Message with color
	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	// Print animation (clear line first)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// clipboardWrite is the production clipboard writer
var clipboardWrite = clipboard.WriteAll

// runAsk sends a single prompt and prints the stylist's reply.
// In raw mode the reply is written to stdout as it streams.
func runAsk(ctx context.Context, deps *Dependencies, o *rootOptions, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	logger := newLogger(deps.Stderr, cfg.LogLevel)

	inv, err := loadWardrobe(cfg)
	if err != nil {
		return err
	}
	transport, err := deps.transport(cfg)
	if err != nil {
		return err
	}

	// State hooks and updates both run on the Send goroutine.
	failed := false
	session := chat.NewSession(transport,
		chat.WithWardrobe(inv),
		chat.WithSessionLogger(logger),
		chat.WithStateHook(func(s chat.State) {
			if s == chat.StateFailed {
				failed = true
			}
		}),
	)
	defer session.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	raw := o.raw || !deps.IsTerminal()
	streamOut := raw && o.outputFile == ""
	logger.Debug("asking stylist", "relay", cfg.RelayURL, "items", inv.Len(), "raw", raw)

	var onUpdate chat.UpdateFunc
	var printed int
	if streamOut {
		replyIdx := -1
		onUpdate = func(turns []chat.Turn) {
			if failed {
				return
			}
			if replyIdx < 0 {
				replyIdx = len(turns)
				return
			}
			if len(turns) <= replyIdx {
				return
			}
			content := turns[replyIdx].Content
			if len(content) > printed {
				fmt.Fprint(deps.Stdout, content[printed:])
				printed = len(content)
			}
		}
	}

	var spin *spinner
	if !raw {
		spin = newSpinner(deps.Stderr, "Putting looks together")
		spin.start()
	}

	startTime := time.Now()
	err = session.Send(ctx, prompt, onUpdate)
	logger.Debug("reply finished", "duration", time.Since(startTime).Round(time.Millisecond), "error", err)

	if printed > 0 {
		fmt.Fprintln(deps.Stdout)
	}
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("no reply within %s: %w", cfg.Timeout(), err)
		}
		return err
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	text := session.LastReply()

	if o.copy || cfg.CopyToClipboard {
		if err := deps.CopyText(text); err != nil {
			// Log warning but don't fail
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warnMsg)
		} else if !raw {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(deps.Stderr, clipMsg)
		}
	}

	// Output to file if specified
	if o.outputFile != "" {
		if err := os.WriteFile(o.outputFile, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !raw {
			successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Response saved to %s", o.outputFile),
			)
			fmt.Fprintln(deps.Stderr, successMsg)
		}
		return nil
	}

	if raw {
		return nil
	}

	// Get terminal width for proper formatting
	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ Stylist"))
	renderOpts := render.LoadOptionsFromConfigWithWidth(cfg.Markdown, contentWidth)
	rendered := render.Reply(text, renderOpts)
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))

	return nil
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, label string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %s", label, apierrors.UserMessage(err))))

	// Extract additional context from structured errors
	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Endpoint != "" {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", apiErr.Endpoint)))
		}
		if apiErr.Body != "" {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(apiErr.Body, "\n", "\n  "))))
			return sb.String()
		}
	}

	// Provide helpful hints based on error type only if no body
	switch {
	case apierrors.IsRateLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Wait a moment before asking again"))
	case apierrors.IsUsageLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The relay's gateway account needs more credits"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the relay running? Start one with 'vestry serve'"))
	case errors.Is(err, context.DeadlineExceeded):
		sb.WriteString(dimStyle.Render("\n  Hint: Raise request_timeout in the config for long replies"))
	}

	return sb.String()
}
