// Command chatcli is a terminal client for the chat widget backend. It
// drives the same conversation lifecycle as the embedded browser widget:
// greeting, typing indicator, bounded input, and the fallback reply on
// failure.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webchat/go-chat-widget/internal/sysutil"
	"github.com/webchat/go-chat-widget/internal/widget"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	counterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
)

// replyMsg carries one completed backend turn into the update loop.
type replyMsg struct {
	reply string
	err   error
}

type model struct {
	ctrl   *widget.Controller
	sender widget.Sender
}

func newModel(endpoint string) model {
	sender := widget.NewHTTPSender(endpoint)
	c := widget.NewController(sender)
	c.Toggle() // terminal client starts with the conversation visible
	return model{ctrl: c, sender: sender}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyBackspace:
			in := m.ctrl.Input()
			if in != "" {
				r := []rune(in)
				m.ctrl.SetInput(string(r[:len(r)-1]))
			}
			return m, nil
		case tea.KeyRunes, tea.KeySpace:
			m.ctrl.SetInput(m.ctrl.Input() + string(msg.Runes))
			return m, nil
		}
	case replyMsg:
		m.ctrl.FinishReply(msg.reply, msg.err)
		return m, nil
	}
	return m, nil
}

// submit starts a turn and returns the command that runs the network call
// off the update loop. The controller only ever mutates inside Update.
func (m model) submit() tea.Cmd {
	history, ok := m.ctrl.BeginSubmit()
	if !ok {
		return nil
	}
	session := m.ctrl.SessionID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		reply, err := m.sender.Send(ctx, session, history)
		return replyMsg{reply: reply, err: err}
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AI Assistant"))
	b.WriteString("\n\n")

	for _, msg := range m.ctrl.Messages() {
		if msg.Role == "user" {
			b.WriteString(userStyle.Render("you: "))
			b.WriteString(msg.Content)
		} else {
			b.WriteString(assistantStyle.Render("assistant: " + msg.Content))
		}
		b.WriteString("\n")
	}

	if m.ctrl.State() == widget.StatePending {
		b.WriteString(pendingStyle.Render("assistant is typing..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> " + m.ctrl.Input()))
	b.WriteString("\n")
	b.WriteString(counterStyle.Render(fmt.Sprintf("%d/%d  enter to send, esc to quit", m.ctrl.InputLen(), widget.InputCap)))
	return b.String()
}

func main() {
	endpoint := sysutil.FirstNonEmpty(os.Getenv("CHAT_ENDPOINT"), "http://localhost:8080/api/chat")

	p := tea.NewProgram(newModel(endpoint))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "chatcli:", err)
		os.Exit(1)
	}
}
