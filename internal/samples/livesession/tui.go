package livesession

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stagelink-labs/stagelink/internal/asset"
)

const maxLogLines = 12

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// channelEventMsg carries one channel event into the update loop.
type channelEventMsg asset.ChannelEvent

// channelClosedMsg signals that the events channel drained.
type channelClosedMsg struct{}

// Model is the interactive live-session program.
type Model struct {
	ctx     context.Context
	session *Session

	input     textinput.Model
	composing bool
	log       []string
	quitting  bool
}

// NewModel wires a session into the TUI.
func NewModel(ctx context.Context, session *Session) Model {
	input := textinput.New()
	input.Placeholder = "message"
	input.Prompt = promptStyle.Render("> ")
	input.CharLimit = 256

	return Model{
		ctx:     ctx,
		session: session,
		input:   input,
	}
}

// Run executes the program until the user quits.
func Run(ctx context.Context, session *Session) error {
	_, err := tea.NewProgram(NewModel(ctx, session)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent blocks on the channel and feeds the next event back in.
func (m Model) waitForEvent() tea.Cmd {
	events := m.session.Events()
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return channelClosedMsg{}
		}
		return channelEventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case channelEventMsg:
		return m.appendEvent(asset.ChannelEvent(msg)), m.waitForEvent()

	case channelClosedMsg:
		return m.appendLog(helpStyle.Render("message channel closed")), nil

	case tea.KeyMsg:
		if m.composing {
			return m.updateComposing(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "t":
		srt, err := m.session.Transform(m.ctx)
		if err != nil {
			return m.appendLog(errorStyle.Render("transform failed: " + err.Error())), nil
		}
		return m.appendLog(fmt.Sprintf("angle %3d°  pos [%.2f, %.2f, %.2f]",
			m.session.Angle(), srt.Translate[0], srt.Translate[1], srt.Translate[2])), nil

	case "m":
		if m.session.Events() == nil {
			return m.appendLog(helpStyle.Render("the message channel is disconnected")), nil
		}
		m.composing = true
		m.input.SetValue("")
		return m, m.input.Focus()

	case "l":
		if err := m.session.LeaveChannel(); err != nil {
			return m.appendLog(errorStyle.Render("leave failed: " + err.Error())), nil
		}
		return m.appendLog("left the message channel"), nil

	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateComposing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := m.input.Value()
		m.composing = false
		m.input.Blur()
		if text == "" {
			return m, nil
		}
		if err := m.session.SendMessage(m.ctx, text); err != nil {
			return m.appendLog(errorStyle.Render("send failed: " + err.Error())), nil
		}
		return m.appendLog("sent: " + text), nil

	case "esc":
		m.composing = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) appendEvent(ev asset.ChannelEvent) Model {
	switch ev.Type {
	case asset.ChannelMessage:
		return m.appendLog(eventStyle.Render(fmt.Sprintf("%s: %s", ev.From, ev.Payload)))
	default:
		return m.appendLog(eventStyle.Render(fmt.Sprintf("%s %s the channel", ev.From, pastTense(ev.Type))))
	}
}

func pastTense(t asset.ChannelEventType) string {
	if t == asset.ChannelJoin {
		return "joined"
	}
	return "left"
}

func (m Model) appendLog(line string) Model {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
	return m
}

func (m Model) View() string {
	if m.quitting {
		return "live edit complete\n"
	}

	s := titleStyle.Render("Live edit on "+m.session.PrimPath()) + "\n\n"
	for _, line := range m.log {
		s += line + "\n"
	}
	s += "\n"
	if m.composing {
		s += m.input.View() + "\n"
	} else {
		s += helpStyle.Render("t transform · m message · l leave channel · q quit") + "\n"
	}
	return s
}
