package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shinji-kodama/vmcalc/internal/calc"
	"github.com/shinji-kodama/vmcalc/internal/lexer"
	"github.com/shinji-kodama/vmcalc/internal/model"
	"github.com/shinji-kodama/vmcalc/internal/repl"
)

// Options configures the calculator model.
type Options struct {
	// History is the number of past evaluations kept on screen.
	History int

	// Precision is passed to model.FormatValue.
	Precision int
}

// Entry is one evaluated expression.
type Entry struct {
	Expression string
	Output     string
	Failed     bool
}

// Model is the bubbletea model for the calculator.
type Model struct {
	input   textinput.Model
	session *calc.Session
	styles  Styles

	history    []Entry
	maxHistory int
	precision  int
}

// New returns a focused calculator model.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "1 + 2 * sqrt(ans)"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	return Model{
		input:      ti,
		session:    calc.NewSession(),
		styles:     DefaultStyles(),
		maxHistory: opts.History,
		precision:  opts.Precision,
	}
}

// History returns the evaluations currently kept, oldest first.
func (m Model) History() []Entry {
	return m.history
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses. Everything not bound here goes to the
// text input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.solve()
			return m, nil
		case "ctrl+l":
			m.history = nil
			return m, nil
		case "up":
			// Recall the last expression for editing.
			if n := len(m.history); n > 0 {
				m.input.SetValue(m.history[n-1].Expression)
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) solve() {
	expr := strings.TrimSpace(m.input.Value())
	if expr == "" {
		return
	}

	e := Entry{Expression: expr}
	v, err := m.session.EvalString(expr)
	if err != nil {
		e.Output = repl.FormatError(err)
		e.Failed = true
	} else {
		e.Output = model.FormatValue(v, m.precision)
	}

	m.history = append(m.history, e)
	if m.maxHistory > 0 && len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
	m.input.Reset()
}

// View renders the history, the input box and a key legend.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Calculator"))
	sb.WriteString("\n")

	for _, e := range m.history {
		sb.WriteString(m.styles.Expression.Render(e.Expression))
		sb.WriteString("\n")
		if e.Failed {
			sb.WriteString(m.styles.Error.Render(e.Output))
		} else {
			sb.WriteString(m.styles.Result.Render("= " + e.Output))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Input.Render(m.input.View()))
	sb.WriteString("\n")

	help := "enter: solve • ↑: recall • ctrl+l: clear • esc: quit\n" +
		"operators: + - * / ( ) ,   functions: " + strings.Join(lexer.FuncNames(), " ") + "   ans"
	sb.WriteString(m.styles.Help.Render(help))
	sb.WriteString("\n")

	return sb.String()
}

// Run starts the calculator in the alternate screen and blocks until the
// user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
