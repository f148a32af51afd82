package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoBot struct {
	replies map[string]string
	err     error
	lines   []string
}

func (b *echoBot) ProcessDirect(_ context.Context, text string) (string, error) {
	b.lines = append(b.lines, text)
	return b.replies[text], b.err
}

var testCommands = []HelpLine{
	{Usage: "!help", Description: "Show this message"},
	{Usage: "!ping", Description: "Pong!"},
	{Usage: "!cap <1-500>", Description: "Set response word cap"},
}

func TestClassify(t *testing.T) {
	assert.Equal(t, turnCommand, classify("!ping"))
	assert.Equal(t, turnMention, classify("@ who are you"))
	assert.Equal(t, turnChat, classify("hello there"))
}

func TestCommandNames(t *testing.T) {
	assert.Equal(t, []string{"!help", "!ping", "!cap"}, commandNames(testCommands))
}

func TestWelcomeListsCommands(t *testing.T) {
	w := renderWelcome(testCommands)
	assert.Contains(t, w, "!cap <1-500>")
	assert.Contains(t, w, "Set response word cap")
	assert.Contains(t, w, "@ to mention")
}

func TestRenderExchange(t *testing.T) {
	out := renderExchange(exchange{kind: turnCommand, line: "!ping", reply: "Pong!", done: true})
	assert.Contains(t, out, "command")
	assert.Contains(t, out, "!ping")
	assert.Contains(t, out, "  Pong!\n")

	silent := renderExchange(exchange{kind: turnChat, line: "hello there", done: true})
	assert.Contains(t, silent, "(no reply)")

	failed := renderExchange(exchange{kind: turnMention, line: "@ hi", err: errors.New("boom"), done: true})
	assert.Contains(t, failed, "mention")
	assert.Contains(t, failed, "Error: boom")

	pending := renderExchange(exchange{kind: turnMention, line: "@ hi"})
	assert.NotContains(t, pending, Name)
}

func typeLine(t *testing.T, m consoleModel, line string) (consoleModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(consoleModel), cmd
}

func TestConsoleRoundTrip(t *testing.T) {
	bot := &echoBot{replies: map[string]string{"!ping": "Pong!"}}
	m := newConsoleModel(bot, context.Background(), ChatConfig{Commands: testCommands})
	assert.Equal(t, "greeting only", m.cfg.Model)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(consoleModel)
	require.True(t, m.ready)

	m, cmd := typeLine(t, m, "!ping")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	require.Len(t, m.log, 1)
	assert.Equal(t, turnCommand, m.log[0].kind)

	// Answer as the batched command would.
	reply := m.ask("!ping")()
	next, _ = m.Update(reply)
	m = next.(consoleModel)
	assert.False(t, m.busy)
	assert.True(t, m.log[0].done)
	assert.Equal(t, "Pong!", m.log[0].reply)
	assert.Equal(t, []string{"!ping"}, bot.lines)
	assert.Contains(t, m.statusBar(), "1 commands")
}

func TestConsoleIgnoresEnterWhileBusy(t *testing.T) {
	m := newConsoleModel(&echoBot{}, context.Background(), ChatConfig{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(consoleModel)

	m, _ = typeLine(t, m, "hello there")
	m, cmd := typeLine(t, m, "!ping")
	assert.Nil(t, cmd)
	assert.Len(t, m.log, 1)
}

func TestConsoleExit(t *testing.T) {
	m := newConsoleModel(&echoBot{}, context.Background(), ChatConfig{})
	m, cmd := typeLine(t, m, "exit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.log)
}

func TestRunSingleMessage(t *testing.T) {
	var buf bytes.Buffer
	bot := &echoBot{replies: map[string]string{"!ping": "Pong!"}}
	require.NoError(t, RunSingleMessage(&buf, bot, context.Background(), "!ping"))
	assert.Contains(t, buf.String(), "Pong!")

	buf.Reset()
	require.NoError(t, RunSingleMessage(&buf, bot, context.Background(), "hello there"))
	assert.Contains(t, buf.String(), "(no reply)")

	buf.Reset()
	bot.err = errors.New("store closed")
	assert.Error(t, RunSingleMessage(&buf, bot, context.Background(), "!ping"))
	assert.Contains(t, buf.String(), "store closed")
}
