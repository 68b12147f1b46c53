// Package tui is the interactive ask loop over the answer pipeline.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rfpqa/internal/domain"
	"rfpqa/internal/metrics"
)

// AskPort is the TUI-facing subset of the answer pipeline.
type AskPort interface {
	Ask(ctx context.Context, query string, limit int, useModel bool) (domain.FormattedAnswer, error)
}

// Model is the Bubble Tea model for the question-answering TUI.
type Model struct {
	pipeline AskPort
	counters *metrics.Counters
	limit    int
	useModel bool

	input    textinput.Model
	viewport viewport.Model
	answer   domain.FormattedAnswer
	answered bool
	cursor   int
	status   string
	ready    bool
}

// New creates a TUI over the pipeline. counters may be nil.
func New(pipeline AskPort, counters *metrics.Counters, limit int, useModel bool) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask a question about your RFP documents"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline: pipeline,
		counters: counters,
		limit:    limit,
		useModel: useModel,
		input:    ti,
		viewport: vp,
		status:   "Ready. Type a question and press Enter. Ctrl+L toggles the LLM.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, query frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				answer, err := m.pipeline.Ask(context.Background(), q, m.limit, m.useModel)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answered = false
				} else {
					m.answer = answer
					m.answered = true
					m.cursor = 0
					m.status = m.statusLine(q)
				}
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "ctrl+l":
			m.useModel = !m.useModel
			if m.useModel {
				m.status = "LLM synthesis on"
			} else {
				m.status = "LLM synthesis off (top retrieved answer only)"
			}
			return m, nil
		case "down":
			if m.answered && len(m.answer.Sources) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Sources)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if m.answered && len(m.answer.Sources) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Sources)) % len(m.answer.Sources)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("RFP Q&A")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if !m.answered {
		return "No answer yet."
	}
	var sb strings.Builder
	sb.WriteString(styleConfidence(m.answer))
	sb.WriteString("\n\n")
	sb.WriteString(m.answer.Answer)
	if len(m.answer.Sources) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(sourceHeaderStyle.Render(fmt.Sprintf("Sources (%d)", len(m.answer.Sources))))
		src := m.answer.Sources[m.cursor]
		fmt.Fprintf(&sb, "\nSource %d/%d  score=%.3f\n", m.cursor+1, len(m.answer.Sources), src.Score)
		if src.Question != "" {
			fmt.Fprintf(&sb, "Q: %s\n", src.Question)
		}
		sb.WriteString(src.Text)
		if src.Date != "" {
			fmt.Fprintf(&sb, "\n(%s)", src.Date)
		}
	}
	return sb.String()
}

func (m Model) statusLine(query string) string {
	line := fmt.Sprintf("Answered %q (%s)", query, m.answer.ConfidencePct)
	if m.counters == nil {
		return line
	}
	parts := make([]string, 0, 4)
	for _, stat := range m.counters.Snapshot() {
		parts = append(parts, fmt.Sprintf("%s=%d", stat.Name, stat.Count))
	}
	if len(parts) == 0 {
		return line
	}
	return line + "  [" + strings.Join(parts, " ") + "]"
}

var (
	answerBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourceHeaderStyle = lipgloss.NewStyle().Bold(true)
	highStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	mediumStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	lowStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func styleConfidence(answer domain.FormattedAnswer) string {
	label := answer.ConfidenceLabel + " (" + answer.ConfidencePct + ")"
	switch {
	case answer.Confidence >= 0.8:
		return highStyle.Render(label)
	case answer.Confidence >= 0.5:
		return mediumStyle.Render(label)
	default:
		return lowStyle.Render(label)
	}
}
