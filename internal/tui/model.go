package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/vestry/internal/chat"
	apierrors "github.com/diogo/vestry/internal/errors"
	"github.com/diogo/vestry/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// turnsMsg carries a conversation snapshot from the streaming reply
	turnsMsg struct {
		stream *replyStream
		turns  []chat.Turn
	}
	// replyDoneMsg is sent once Send returns
	replyDoneMsg struct {
		stream *replyStream
		err    error
	}
)

// ChatSession is the part of *chat.Session the view needs
type ChatSession interface {
	Send(ctx context.Context, text string, onUpdate chat.UpdateFunc) error
	Cancel()
	Reset()
	Close() error
	Turns() []chat.Turn
	ShowQuickPrompts() bool
	LastReply() string
}

// replyStream connects one Send goroutine to the update loop
type replyStream struct {
	msgs   chan tea.Msg
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *replyStream) push(msg tea.Msg) {
	select {
	case s.msgs <- msg:
	case <-s.ctx.Done():
	}
}

// Model represents the TUI state
type Model struct {
	session    ChatSession
	renderOpts render.Options
	subtitle   string
	copyText   func(string) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	turns          []chat.Turn
	stream         *replyStream
	ready          bool
	notice         string // failure shown under the input until the next send
	info           string // transient confirmation (copy, reset)
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model around session
func NewChatModel(session ChatSession, opts render.Options, subtitle string) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe your occasion or mood..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		session:    session,
		renderOpts: opts,
		subtitle:   subtitle,
		copyText:   clipboard.WriteAll,
		textarea:   ta,
		spinner:    s,
		turns:      session.Turns(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// waitForStream reads the next message of a reply stream
func waitForStream(s *replyStream) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.msgs
		if !ok {
			return nil
		}
		return msg
	}
}

// Streaming reports whether a reply is in progress
func (m Model) Streaming() bool {
	return m.stream != nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 6
		statusHeight := 1
		vpHeight := m.height - headerHeight - inputHeight - statusHeight - 2
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.closeStream()
			_ = m.session.Close()
			return m, tea.Quit

		case "esc":
			if m.Streaming() {
				m.session.Cancel()
				return m, nil
			}
			_ = m.session.Close()
			return m, tea.Quit

		case "ctrl+r":
			m.closeStream()
			m.session.Reset()
			m.turns = m.session.Turns()
			m.notice = ""
			m.info = "Conversation reset"
			m.updateViewport()
			return m, nil

		case "ctrl+y":
			m.copyLastReply()
			return m, nil

		case "enter":
			if m.Streaming() {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
				_ = m.session.Close()
				return m, tea.Quit
			}
			m.textarea.Reset()
			return m.startReply(input)

		default:
			if prompt, ok := m.quickPromptFor(msg.String()); ok {
				return m.startReply(prompt)
			}
		}

	case turnsMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		m.turns = msg.turns
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, waitForStream(msg.stream)

	case replyDoneMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		m.stream.cancel()
		m.stream = nil
		m.turns = m.session.Turns()
		m.notice = noticeFor(msg.err)
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.Streaming() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.Streaming() {
			m.animationFrame++
			m.updateViewport()
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.Streaming() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// startReply launches Send in the background and begins listening for snapshots
func (m Model) startReply(text string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &replyStream{
		msgs:   make(chan tea.Msg, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	m.stream = s
	m.notice = ""
	m.info = ""
	m.animationFrame = 0

	session := m.session
	go func() {
		err := session.Send(ctx, text, func(turns []chat.Turn) {
			s.push(turnsMsg{stream: s, turns: turns})
		})
		s.push(replyDoneMsg{stream: s, err: err})
	}()

	return m, tea.Batch(
		waitForStream(s),
		m.spinner.Tick,
		animationTick(),
	)
}

// closeStream stops listening to the current reply, if any
func (m *Model) closeStream() {
	if m.stream != nil {
		m.stream.cancel()
		m.stream = nil
	}
}

// quickPromptFor maps keys 1-6 onto the quick prompts while they are offered
func (m Model) quickPromptFor(key string) (string, bool) {
	if m.Streaming() || m.textarea.Value() != "" || !m.session.ShowQuickPrompts() {
		return "", false
	}
	prompts := chat.QuickPrompts()
	if len(key) != 1 || key[0] < '1' || int(key[0]-'1') >= len(prompts) {
		return "", false
	}
	return prompts[key[0]-'1'].Prompt, true
}

func (m *Model) copyLastReply() {
	reply := m.session.LastReply()
	if reply == "" {
		m.info = "Nothing to copy yet"
		return
	}
	if err := m.copyText(reply); err != nil {
		m.info = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.info = "Reply copied to clipboard"
}

// noticeFor returns the failure text to show for err, or "" when the reply
// was cancelled or succeeded
func noticeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, chat.ErrBusy):
		return "Still replying, one moment."
	default:
		return chat.NoticeTitle + ": " + apierrors.UserMessage(err)
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ AI Stylist"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.subtitle),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	if !m.Streaming() && m.session.ShowQuickPrompts() {
		sections = append(sections, m.renderQuickPrompts(contentWidth))
	}

	var inputContent string
	if m.Streaming() {
		inputContent = m.spinner.View() + loadingStyle.Render(" Your stylist is putting looks together...")
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	if m.notice != "" {
		title, detail, _ := strings.Cut(m.notice, ": ")
		sections = append(sections, noticeStyle.Width(contentWidth).Render(
			noticeTitleStyle.Render(title)+"\n"+detail))
	} else if m.info != "" {
		sections = append(sections, infoStyle.Render("  "+m.info))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderQuickPrompts lists the canned openers with their keys
func (m Model) renderQuickPrompts(width int) string {
	var items []string
	for i, q := range chat.QuickPrompts() {
		items = append(items, quickPromptStyle.Render(
			quickKeyStyle.Render(fmt.Sprintf("%d", i+1))+" "+q.Label))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, items...)
	if lipgloss.Width(row) > width {
		half := (len(items) + 1) / 2
		row = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, items[:half]...),
			lipgloss.JoinHorizontal(lipgloss.Top, items[half:]...))
	}
	return row
}

// renderTyping renders the bouncing dots shown on the streaming bubble
func (m Model) renderTyping() string {
	var sb strings.Builder
	for i := 0; i < 3; i++ {
		color := typingColors[(m.animationFrame+i)%len(typingColors)]
		dot := "•"
		if (m.animationFrame % 3) == i {
			dot = "●"
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(color).Render(dot))
	}
	return sb.String()
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Stop/Quit"},
		{"Ctrl+R", "Reset"},
		{"Ctrl+Y", "Copy"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled turns
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	opts := m.renderOpts.WithWidth(bubbleWidth - 4)

	for i, turn := range m.turns {
		if i > 0 {
			content.WriteString("\n")
		}

		if turn.Role == chat.RoleUser {
			label := userLabelStyle.Render("● You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(turn.Content)
			content.WriteString(label + "\n" + bubble)
		} else {
			body := render.Reply(turn.Content, opts)
			if m.Streaming() && i == len(m.turns)-1 {
				body += " " + m.renderTyping()
			}
			label := assistantLabelStyle.Render("✦ Stylist")
			content.WriteString(label + "\n" + assistantBubbleStyle.Width(bubbleWidth).Render(body))
		}
		content.WriteString("\n")
	}

	if m.Streaming() && (len(m.turns) == 0 || m.turns[len(m.turns)-1].Role == chat.RoleUser) {
		label := assistantLabelStyle.Render("✦ Stylist")
		content.WriteString("\n" + label + "\n" + assistantBubbleStyle.Render(m.renderTyping()) + "\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI and closes the session when it exits
func RunChat(session ChatSession, opts render.Options, subtitle string) error {
	m := NewChatModel(session, opts, subtitle)
	defer session.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
