// Package tui is a read-only inspector for the config stack and the beat
// compression map it drives: a config-key browser, its resolved value, and
// a live view of what the layout engine's compression pass does with the
// loaded song. It never mutates anything the CLI's render path also reads.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veeh-harfe/zupfnoter/internal/config"
	"github.com/veeh-harfe/zupfnoter/internal/layout"
	"github.com/veeh-harfe/zupfnoter/internal/music"
)

type keyMap struct {
	Up, Down, Tab, Quit key.Binding
}

var keys = keyMap{
	Up:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "up")),
	Down: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "down")),
	Tab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// pane is which list the cursor and up/down keys currently act on.
type pane int

const (
	paneConfig pane = iota
	paneBeats
)

// Model is the inspector's single bubbletea model. It holds no reference
// back to the CLI: everything it renders is data the caller resolved ahead
// of time.
type Model struct {
	stack *config.Stack
	paths []string

	beats       []int
	compression map[int]float64

	active     pane
	configIdx  int
	beatIdx    int
	width      int
	height     int
	resolveErr error
}

// New builds an inspector over stack's current top layer and, if song is
// non-nil, the compression map the layout engine would produce for it under
// opts.
func New(stack *config.Stack, song *music.Song, opts layout.Options) Model {
	paths := stack.Keys()
	sort.Strings(paths)

	m := Model{stack: stack, paths: paths, active: paneConfig}
	if song != nil {
		var voices []*music.Voice
		for _, idx := range song.VoiceIndices() {
			voices = append(voices, song.Voices[idx])
		}
		m.compression = layout.CompressionMap(voices, opts)
		for beat := range m.compression {
			m.beats = append(m.beats, beat)
		}
		sort.Ints(m.beats)
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tab):
			if len(m.beats) > 0 {
				if m.active == paneConfig {
					m.active = paneBeats
				} else {
					m.active = paneConfig
				}
			}
			return m, nil
		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)
			return m, nil
		case key.Matches(msg, keys.Down):
			m.moveCursor(1)
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	switch m.active {
	case paneConfig:
		m.configIdx = clamp(m.configIdx+delta, 0, len(m.paths)-1)
	case paneBeats:
		m.beatIdx = clamp(m.beatIdx+delta, 0, len(m.beats)-1)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("zupfnoter inspector"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("read-only: config stack and beat compression"))
	b.WriteString("\n\n")

	b.WriteString(m.renderConfigPane())
	if len(m.beats) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderBeatsPane())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())
	return appStyle.Render(b.String())
}

func (m Model) renderConfigPane() string {
	var b strings.Builder
	for i, p := range m.paths {
		line := pathStyle.Render(p)
		if m.active == paneConfig && i == m.configIdx {
			line = selectedPathStyle.Render(p)
		}
		b.WriteString(line)
		if m.active == paneConfig && i == m.configIdx {
			v, err := m.stack.Resolve(p)
			if err != nil {
				b.WriteString("  " + valueStyle.Render("error: "+err.Error()))
			} else {
				b.WriteString("  " + valueStyle.Render(fmt.Sprintf("%v", v)))
			}
		}
		b.WriteString("\n")
	}
	if len(m.paths) == 0 {
		b.WriteString(subtitleStyle.Render("(no configuration keys set)"))
	}
	return b.String()
}

func (m Model) renderBeatsPane() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("beat compression"))
	b.WriteString("\n")
	for i, beat := range m.beats {
		line := fmt.Sprintf("beat %-4d -> %.2f", beat, m.compression[beat])
		if m.active == paneBeats && i == m.beatIdx {
			line = selectedPathStyle.Render(line)
		} else {
			line = pathStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	entries := []struct{ key, desc string }{
		{"j/k", "navigate"},
		{"tab", "switch pane"},
		{"q", "quit"},
	}
	var parts []string
	for _, e := range entries {
		parts = append(parts, helpKeyStyle.Render(e.key)+" "+helpDescStyle.Render(e.desc))
	}
	return strings.Join(parts, "  ")
}

// Run starts the inspector program and blocks until the user quits.
func Run(stack *config.Stack, song *music.Song, opts layout.Options) error {
	p := tea.NewProgram(New(stack, song, opts))
	_, err := p.Run()
	return err
}
