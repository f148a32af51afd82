package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Responder answers one console line. *bot.Bot satisfies it.
type Responder interface {
	ProcessDirect(ctx context.Context, text string) (string, error)
}

// HelpLine is one command listed on the console's welcome screen.
type HelpLine struct {
	Usage       string
	Description string
}

// ChatConfig holds display metadata for the console.
type ChatConfig struct {
	Model    string
	Database string
	Commands []HelpLine
}

// turnKind is how the bot will treat a typed line.
type turnKind int

const (
	turnChat turnKind = iota
	turnCommand
	turnMention
)

func classify(line string) turnKind {
	switch {
	case strings.HasPrefix(line, "@"):
		return turnMention
	case strings.HasPrefix(line, "!"):
		return turnCommand
	default:
		return turnChat
	}
}

var (
	commandTag = lipgloss.NewStyle().Foreground(Green).Render("command")
	mentionTag = lipgloss.NewStyle().Foreground(Accent).Render("mention")
)

func (k turnKind) tag() string {
	switch k {
	case turnCommand:
		return commandTag
	case turnMention:
		return mentionTag
	}
	return DimStyle.Render("chat")
}

// exchange is one typed line and the bot's answer to it.
type exchange struct {
	kind  turnKind
	line  string
	reply string
	err   error
	took  time.Duration
	done  bool
}

type replyMsg struct {
	reply string
	err   error
	took  time.Duration
}

type consoleModel struct {
	input textinput.Model
	view  viewport.Model
	spin  spinner.Model

	bot Responder
	ctx context.Context
	cfg ChatConfig

	log   []exchange
	busy  bool
	ready bool
	width int
}

func newConsoleModel(bot Responder, ctx context.Context, cfg ChatConfig) consoleModel {
	in := textinput.New()
	in.Placeholder = "!help, @question or anything else"
	in.Prompt = "❯ "
	in.PromptStyle = lipgloss.NewStyle().Foreground(Accent)
	in.ShowSuggestions = true
	in.SetSuggestions(commandNames(cfg.Commands))
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Accent)

	if cfg.Model == "" {
		cfg.Model = "greeting only"
	}
	return consoleModel{input: in, spin: sp, bot: bot, ctx: ctx, cfg: cfg}
}

// commandNames returns the trigger word of each usage line, for tab
// completion.
func commandNames(lines []HelpLine) []string {
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		if name, _, _ := strings.Cut(l.Usage, " "); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// header, input and status bar take one line each
		height := max(msg.Height-3, 1)
		if !m.ready {
			m.view = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.view.Width, m.view.Height = msg.Width, height
		}
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			return m.submit()
		}

	case replyMsg:
		last := &m.log[len(m.log)-1]
		last.reply, last.err, last.took, last.done = msg.reply, msg.err, msg.took, true
		m.busy = false
		m.refresh()
		focus := m.input.Focus()
		return m, focus

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m consoleModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if m.busy || line == "" {
		return m, nil
	}
	if line == "exit" || line == "quit" {
		return m, tea.Quit
	}
	m.input.Reset()
	m.input.Blur()
	m.log = append(m.log, exchange{kind: classify(line), line: line})
	m.busy = true
	m.refresh()
	return m, tea.Batch(m.spin.Tick, m.ask(line))
}

func (m consoleModel) ask(line string) tea.Cmd {
	bot, ctx := m.bot, m.ctx
	return func() tea.Msg {
		start := time.Now()
		reply, err := bot.ProcessDirect(ctx, line)
		return replyMsg{reply: reply, err: err, took: time.Since(start)}
	}
}

func (m *consoleModel) refresh() {
	if !m.ready {
		return
	}
	if len(m.log) == 0 {
		m.view.SetContent(renderWelcome(m.cfg.Commands))
		return
	}
	var sb strings.Builder
	for _, e := range m.log {
		sb.WriteString(renderExchange(e))
	}
	m.view.SetContent(sb.String())
	m.view.GotoBottom()
}

func (m consoleModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	header := TitleStyle.Render(fmt.Sprintf(" %s %s", Logo, Name)) + DimStyle.Render(" console")
	prompt := " " + m.input.View()
	if m.busy {
		prompt = fmt.Sprintf(" %s %s", m.spin.View(), DimStyle.Render(m.log[len(m.log)-1].line))
	}
	return header + "\n" + m.view.View() + "\n" + prompt + "\n" + m.statusBar()
}

func (m consoleModel) statusBar() string {
	var commands, mentions, silent int
	for _, e := range m.log {
		switch {
		case e.kind == turnCommand:
			commands++
		case e.kind == turnMention:
			mentions++
		}
		if e.done && e.err == nil && e.reply == "" {
			silent++
		}
	}
	left := DimStyle.Render(fmt.Sprintf(" %s · %s", m.cfg.Model, m.cfg.Database))
	right := DimStyle.Render(fmt.Sprintf("%d commands · %d mentions · %d silent ", commands, mentions, silent))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func renderWelcome(commands []HelpLine) string {
	var sb strings.Builder
	sb.WriteString("\n" + RenderBanner() + "\n")
	sb.WriteString("  " + BoldStyle.Render("Commands") + DimStyle.Render("  (tab completes)") + "\n")
	width := 0
	for _, c := range commands {
		width = max(width, len(c.Usage))
	}
	for _, c := range commands {
		fmt.Fprintf(&sb, "    %-*s  %s\n", width, c.Usage, DimStyle.Render(c.Description))
	}
	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render("  Start a line with @ to mention the bot. Other text gets no reply.") + "\n")
	sb.WriteString(DimStyle.Render("  exit or Ctrl+C leaves.") + "\n")
	return sb.String()
}

func renderExchange(e exchange) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n  %s %s  %s\n", UserLabel.Render("You"), e.kind.tag(), e.line)
	if !e.done {
		return sb.String()
	}
	took := DimStyle.Render(fmt.Sprintf(" %s", e.took.Round(time.Millisecond)))
	switch {
	case e.err != nil:
		sb.WriteString("  " + ErrStyle.Render("Error: "+e.err.Error()) + "\n")
	case e.reply == "":
		sb.WriteString("  " + DimStyle.Render("(no reply)") + "\n")
	default:
		sb.WriteString("  " + BotLabel.Render(Name) + took + "\n")
		writeIndented(&sb, e.reply)
	}
	return sb.String()
}

func writeIndented(w io.Writer, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(w, "  "+line)
	}
}

// RunChat starts the interactive console.
func RunChat(bot Responder, ctx context.Context, cfg ChatConfig) error {
	_, err := tea.NewProgram(newConsoleModel(bot, ctx, cfg), tea.WithAltScreen()).Run()
	return err
}

// RunSingleMessage sends one line and prints the answer to w.
func RunSingleMessage(w io.Writer, bot Responder, ctx context.Context, message string) error {
	start := time.Now()
	reply, err := bot.ProcessDirect(ctx, message)
	e := exchange{kind: classify(message), line: message, reply: reply, err: err, took: time.Since(start), done: true}
	fmt.Fprint(w, renderExchange(e))
	fmt.Fprintln(w)
	return err
}
