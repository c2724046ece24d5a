package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LuckyCoder5/Robby-chatbot/internal/session"
)

// Model is the Bubble Tea model for the chat application. It only renders the
// session's history and forwards input; all conversation state lives in the
// session.
type Model struct {
	session  *session.Session
	input    textinput.Model
	viewport viewport.Model
	status   string
	waiting  bool
	ready    bool
}

type askDoneMsg struct {
	answer string
	err    error
}

// New creates the chat model for an already-Ready session.
func New(s *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your document and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		session:  s,
		input:    ti,
		viewport: vp,
		status:   "Ready. Ctrl+R resets the chat, Ctrl+C quits.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		cw, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-cw)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case askDoneMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
		} else {
			m.status = "Ready."
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.input.SetValue("")
				m.waiting = true
				m.status = "Thinking..."
				s := m.session
				return m, func() tea.Msg {
					answer, err := s.Ask(context.Background(), q)
					return askDoneMsg{answer: answer, err: err}
				}
			}
		case "ctrl+r":
			m.session.Reset()
			m.status = "Chat reset."
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoTop()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout: header, history, input, status.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Robby — chat with " + m.session.DocumentName())
	history := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	return header + "\n" + history + "\n" + input + "\n" + m.status
}

func (m Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(botStyle.Render("Robby: ") + m.session.Greeting() + "\n")
	for _, t := range m.session.History() {
		b.WriteString("\n" + userStyle.Render("You: ") + t.Question + "\n")
		b.WriteString(botStyle.Render("Robby: ") + t.Answer + "\n")
	}
	if m.waiting {
		b.WriteString("\n" + botStyle.Render("Robby: ") + "...")
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
