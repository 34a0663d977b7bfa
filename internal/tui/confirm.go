// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const keyCtrlC = "ctrl+c"

// ErrCancelled is returned when the user aborts a prompt with esc or ctrl+c.
var ErrCancelled = errors.New("user aborted")

type (
	// Confirmer asks a yes/no question.
	Confirmer interface {
		Confirm(title, question string) (bool, error)
	}

	// LinePrompt asks on Out and reads one line from In. Only the exact answer
	// "y" counts as yes.
	LinePrompt struct {
		In  io.Reader
		Out io.Writer
	}

	// Prompt asks with an interactive Bubble Tea model.
	Prompt struct {
		In  io.Reader
		Out io.Writer
	}

	// confirmModel is the Bubble Tea model behind Prompt.
	confirmModel struct {
		title     string
		question  string
		selection bool
		result    bool
		done      bool
		cancelled bool
		width     int
	}
)

// NewConfirmer returns a Prompt when both in and out are terminals and a
// LinePrompt otherwise.
func NewConfirmer(in io.Reader, out io.Writer) Confirmer {
	if isTerminal(in) && isTerminal(out) {
		return &Prompt{In: in, Out: out}
	}
	return &LinePrompt{In: in, Out: out}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm implements Confirmer.
func (p *LinePrompt) Confirm(title, question string) (bool, error) {
	if _, err := fmt.Fprintf(p.Out, "%s\n%s (y/n): ", title, question); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.TrimSpace(line) == "y", nil
}

// Confirm implements Confirmer.
func (p *Prompt) Confirm(title, question string) (bool, error) {
	model := newConfirmModel(title, question)
	prog := tea.NewProgram(model, tea.WithInput(p.In), tea.WithOutput(p.Out))
	finalModel, err := prog.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(*confirmModel)
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.result, nil
}

func newConfirmModel(title, question string) *confirmModel {
	return &confirmModel{title: title, question: question}
}

// Init implements tea.Model.
func (m *confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case keyCtrlC, "esc":
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		case "y", "Y":
			m.selection = true
			m.result = true
			m.done = true
			return m, tea.Quit
		case "n", "N", "q":
			m.selection = false
			m.result = false
			m.done = true
			return m, tea.Quit
		case "left", "h":
			m.selection = true
		case "right", "l":
			m.selection = false
		case "up", "down", "tab", "shift+tab":
			m.selection = !m.selection
		case "enter", " ":
			m.result = m.selection
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, nil
}

// View implements tea.Model.
func (m *confirmModel) View() string {
	if m.done {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	questionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7C3AED")).Bold(true).Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Padding(0, 1)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	yesView := inactiveStyle.Render("Overwrite")
	noView := inactiveStyle.Render("Keep")
	if m.selection {
		yesView = activeStyle.Render("Overwrite")
	} else {
		noView = activeStyle.Render("Keep")
	}

	view := strings.Join([]string{
		titleStyle.Render(m.title),
		questionStyle.Render(m.question),
		yesView + "  " + noView,
		helpStyle.Render("enter submit • y yes • n no • esc cancel"),
	}, "\n")
	if m.width > 0 {
		view = lipgloss.NewStyle().MaxWidth(m.width).Render(view)
	}
	return view + "\n"
}
