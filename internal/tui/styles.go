// Package tui provides the terminal chat view for the vestry stylist.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/vestry/internal/errors"
)

// Palette
var (
	colorBorder    = lipgloss.Color("#4A3B42")
	colorPrimary   = lipgloss.Color("#E91E63") // rose
	colorSecondary = lipgloss.Color("#C9A66B") // camel
	colorAccent    = lipgloss.Color("#F8BBD0") // blush
	colorError     = lipgloss.Color("#FF5C7A")
	colorText      = lipgloss.Color("#F5EDE6")
	colorTextDim   = lipgloss.Color("#A8989F")
	colorTextMute  = lipgloss.Color("#6E5F66")
)

// typingColors cycle through the typing indicator dots
var typingColors = []lipgloss.Color{
	colorPrimary,
	colorAccent,
	colorSecondary,
}

var (
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorTextMute).
			Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSecondary).
			Foreground(colorText).
			Padding(0, 1).
			MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true).
			MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginRight(4)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	quickPromptStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Foreground(colorText).
				Padding(0, 1)

	quickKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	inputPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Bold(true)

	statusDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMute)

	noticeTitleStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true)

	noticeStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Italic(true)
)

// FormatError returns a styled error message for command-line output
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %s", apierrors.UserMessage(err))))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case apierrors.IsRateLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Wait a moment before asking again"))
	case apierrors.IsUsageLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The relay's gateway account needs more credits"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the relay running? Start one with 'vestry serve'"))
	}

	return sb.String()
}
