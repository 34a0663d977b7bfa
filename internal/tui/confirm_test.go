// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModel_Keys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		keys          []tea.KeyMsg
		wantResult    bool
		wantCancelled bool
	}{
		{name: "y accepts", keys: []tea.KeyMsg{keyRunes("y")}, wantResult: true},
		{name: "n declines", keys: []tea.KeyMsg{keyRunes("n")}},
		{name: "enter defaults to keep", keys: []tea.KeyMsg{{Type: tea.KeyEnter}}},
		{name: "left then enter overwrites", keys: []tea.KeyMsg{{Type: tea.KeyLeft}, {Type: tea.KeyEnter}}, wantResult: true},
		{name: "tab toggles twice", keys: []tea.KeyMsg{{Type: tea.KeyTab}, {Type: tea.KeyTab}, {Type: tea.KeyEnter}}},
		{name: "esc cancels", keys: []tea.KeyMsg{{Type: tea.KeyEsc}}, wantCancelled: true},
		{name: "ctrl+c cancels", keys: []tea.KeyMsg{{Type: tea.KeyCtrlC}}, wantCancelled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newConfirmModel(`Output file "bin/app.js" already exists.`, "Do you want to overwrite this file?")
			var cmd tea.Cmd
			for _, k := range tt.keys {
				_, cmd = m.Update(k)
			}

			if !m.done {
				t.Fatal("model should be done")
			}
			if cmd == nil {
				t.Error("final key should return tea.Quit")
			}
			if m.result != tt.wantResult {
				t.Errorf("result = %v, want %v", m.result, tt.wantResult)
			}
			if m.cancelled != tt.wantCancelled {
				t.Errorf("cancelled = %v, want %v", m.cancelled, tt.wantCancelled)
			}
			if m.View() != "" {
				t.Error("View() should be empty once done")
			}
		})
	}
}

func TestConfirmModel_View(t *testing.T) {
	t.Parallel()

	m := newConfirmModel("Output file exists.", "Overwrite?")
	if cmd := m.Init(); cmd != nil {
		t.Error("Init() should return nil")
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	view := m.View()
	for _, want := range []string{"Output file exists.", "Overwrite?", "Keep", "esc cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestLinePrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"y", true},
		{"y\r\n", true},
		{"yes\n", false},
		{"Y\n", false},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		p := &LinePrompt{In: strings.NewReader(tt.input), Out: &out}
		got, err := p.Confirm(`Output file "x.js" already exists.`, "Do you want to overwrite this file?")
		if err != nil {
			t.Fatalf("Confirm(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		wantOut := "Output file \"x.js\" already exists.\nDo you want to overwrite this file? (y/n): "
		if out.String() != wantOut {
			t.Errorf("prompt = %q, want %q", out.String(), wantOut)
		}
	}
}

type failingReader struct{}

var errRead = errors.New("read failed")

func (failingReader) Read([]byte) (int, error) { return 0, errRead }

func TestLinePrompt_ReadError(t *testing.T) {
	t.Parallel()

	p := &LinePrompt{In: failingReader{}, Out: &bytes.Buffer{}}
	if _, err := p.Confirm("t", "q"); !errors.Is(err, errRead) {
		t.Errorf("Confirm() error = %v, want errRead", err)
	}
}

func TestNewConfirmer_NonTerminal(t *testing.T) {
	t.Parallel()

	c := NewConfirmer(strings.NewReader(""), &bytes.Buffer{})
	if _, ok := c.(*LinePrompt); !ok {
		t.Errorf("NewConfirmer() = %T, want *LinePrompt", c)
	}
}
