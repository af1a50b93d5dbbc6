package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/script-loader/manifest"
	"github.com/wippyai/script-loader/registry"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	namespaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	loadedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	warning  error
	host     *host
	spinner  spinner.Model
	filename string
	vars     vars
	plan     []registry.Symbol
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectLibrary modelState = iota
	stateShowPlan
	stateLoading
)

func newInteractiveModel(filename string, manifestVars vars) *interactiveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = loadingStyle
	return &interactiveModel{
		filename: filename,
		vars:     manifestVars,
		spinner:  s,
		state:    stateSelectLibrary,
	}
}

type hostMsg struct {
	err  error
	host *host
}

type loadResultMsg struct {
	err error
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.loadManifest, m.spinner.Tick)
}

func (m *interactiveModel) loadManifest() tea.Msg {
	ctx := context.Background()

	f, err := manifest.Load(m.filename, m.vars)
	if err != nil {
		return hostMsg{err: err}
	}
	h, err := newHost(ctx, f)
	// conflicting declarations come back with a usable host
	return hostMsg{host: h, err: err}
}

func (m *interactiveModel) libraries() []registry.Library {
	if m.host == nil {
		return nil
	}
	return m.host.loader.Registry().Libraries()
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.host != nil {
				_ = m.host.Close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectLibrary && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectLibrary && m.selected < len(m.libraries())-1 {
				m.selected++
			}

		case "p":
			if m.state == stateSelectLibrary && m.host != nil {
				m.plan, m.err = m.host.loader.Plan(m.selectedName())
				m.state = stateShowPlan
			}

		case "enter":
			switch m.state {
			case stateSelectLibrary:
				if m.host != nil && len(m.libraries()) > 0 {
					m.err = nil
					m.state = stateLoading
					return m, m.loadSelected
				}
			case stateShowPlan:
				m.state = stateSelectLibrary
				m.plan = nil
				m.err = nil
			}

		case "esc":
			if m.state == stateShowPlan {
				m.state = stateSelectLibrary
				m.plan = nil
				m.err = nil
			}
		}

	case hostMsg:
		if msg.host == nil {
			m.err = msg.err
			return m, nil
		}
		m.host = msg.host
		m.warning = msg.err

	case loadResultMsg:
		m.err = msg.err
		m.state = stateSelectLibrary

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) selectedName() string {
	libs := m.libraries()
	if m.selected >= len(libs) {
		return ""
	}
	return string(libs[m.selected].Name)
}

func (m *interactiveModel) loadSelected() tea.Msg {
	return loadResultMsg{err: m.host.loader.EnsureLoaded(context.Background(), m.selectedName())}
}

func (m *interactiveModel) View() string {
	if m.host == nil {
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
		}
		return m.spinner.View() + " Loading manifest..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Library Loader"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectLibrary, stateLoading:
		for i, lib := range m.libraries() {
			line := m.formatLibrary(lib)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.warning != nil {
			b.WriteString(loadingStyle.Render(fmt.Sprintf("Warning: %v", m.warning)))
			b.WriteString("\n\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ select • enter load • p plan • q quit"))

	case stateShowPlan:
		b.WriteString(fmt.Sprintf("Import order for %s:\n\n", nameStyle.Render(m.selectedName())))
		switch {
		case m.err != nil:
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		case len(m.plan) == 0:
			b.WriteString(loadedStyle.Render("already loaded"))
		default:
			for i, sym := range m.plan {
				b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, nameStyle.Render(string(sym))))
			}
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter back • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatLibrary(lib registry.Library) string {
	marker := " "
	switch lib.State {
	case registry.StateLoading:
		marker = m.spinner.View()
	case registry.StateLoaded:
		marker = loadedStyle.Render("✓")
	case registry.StateFailed:
		marker = errorStyle.Render("✗")
	}
	return marker + " " + nameStyle.Render(string(lib.Name)) + " " + namespaceStyle.Render(string(lib.Namespace))
}

func runInteractive(filename string, manifestVars vars) error {
	p := tea.NewProgram(newInteractiveModel(filename, manifestVars), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
