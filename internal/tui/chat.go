package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/bindulearn/bindu/internal/orchestrator"
	"github.com/bindulearn/bindu/internal/turn"
)

const welcomeText = `Hi, I'm Bindu! Tell me what you'd like to learn and I'll quiz you, build a course, and teach you topic by topic. Try "I want to learn sql".`

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// entry is one transcript line pair: who spoke and what they said.
type entry struct {
	you  bool
	text string
}

// replyMsg delivers the dispatcher's answer back to the UI loop.
type replyMsg struct {
	state *turn.State
	err   error
}

// spinnerTickMsg animates the thinking indicator while a turn runs.
type spinnerTickMsg time.Time

// ChatModel is the single-screen chat UI over the dispatcher.
type ChatModel struct {
	dispatcher *orchestrator.Dispatcher
	userID     string

	input      textinput.Model
	transcript []entry
	waiting    bool
	frame      int
	errMsg     string

	width  int
	height int
}

// NewChat creates the chat model.
func NewChat(d *orchestrator.Dispatcher, userID string) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask me anything..."
	ti.CharLimit = 500

	return ChatModel{
		dispatcher: d,
		userID:     userID,
		input:      ti,
		transcript: []entry{{you: false, text: welcomeText}},
	}
}

func (m ChatModel) Init() tea.Cmd {
	return m.input.Focus()
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.transcript = append(m.transcript, entry{you: false, text: msg.state.Reply})
		return m, nil

	case spinnerTickMsg:
		if !m.waiting {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, spinnerTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}

	m.transcript = append(m.transcript, entry{you: true, text: text})
	m.input.SetValue("")
	m.waiting = true
	m.errMsg = ""

	return m, tea.Batch(m.send(text), spinnerTick())
}

// send runs one dispatch off the UI loop.
func (m ChatModel) send(text string) tea.Cmd {
	dispatcher, userID := m.dispatcher, m.userID
	return func() tea.Msg {
		st, err := dispatcher.Dispatch(context.Background(), userID, text, nil)
		return replyMsg{state: st, err: err}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (m ChatModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	header := styleHeader.Width(m.width - 2).Render(
		styleBrand.Render("Bindu") + styleHint.Render("  your AI tutor"))

	inputBox := styleInputBox.Width(m.width - 2).Render(m.input.View())
	footer := styleHint.Render("  Enter send · Esc quit")

	chromeHeight := lipgloss.Height(header) + lipgloss.Height(inputBox) + lipgloss.Height(footer)
	bodyHeight := m.height - chromeHeight
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	body := m.renderTranscript(m.width, bodyHeight)

	v.SetContent(header + "\n" + body + "\n" + inputBox + "\n" + footer)
	return v
}

// renderTranscript renders the newest messages that fit the space.
func (m ChatModel) renderTranscript(width, height int) string {
	wrap := lipgloss.NewStyle().Width(width - 4)

	var blocks []string
	for _, e := range m.transcript {
		label := styleTutor.Render("Bindu")
		if e.you {
			label = styleYou.Render("You")
		}
		blocks = append(blocks, label+"\n"+wrap.Render(styleBody.Render(e.text)))
	}
	if m.waiting {
		blocks = append(blocks, styleHint.Render(fmt.Sprintf("%s thinking...", spinnerFrames[m.frame])))
	}
	if m.errMsg != "" {
		blocks = append(blocks, styleError.Render("error: "+m.errMsg))
	}

	lines := strings.Split(strings.Join(blocks, "\n\n"), "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	body := strings.Join(lines, "\n")

	return lipgloss.NewStyle().Width(width).Height(height).Render(body)
}

// Run starts the chat program.
func Run(d *orchestrator.Dispatcher, userID string) error {
	_, err := tea.NewProgram(NewChat(d, userID)).Run()
	return err
}
