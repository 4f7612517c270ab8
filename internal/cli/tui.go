package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sysbuild/pkg/system"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// PlanModel - Interactive build plan browser
// =============================================================================

// PlanModel is the bubbletea model for browsing a build plan. Systems are
// listed in build order; the selected system's dependencies and dependents
// are shown beside the list.
type PlanModel struct {
	Systems    []system.SystemInfo // build order
	Dependents map[string][]string
	Cursor     int
	Height     int
	Offset     int
}

// NewPlanModel creates a plan browser for g, listing systems in order.
// Systems of g missing from order are appended in registration order.
func NewPlanModel(g system.Graph, order []string) PlanModel {
	byName := make(map[string]system.SystemInfo, len(g.Systems))
	dependents := make(map[string][]string)
	for _, s := range g.Systems {
		byName[s.Name] = s
		for _, dep := range s.Deps {
			dependents[dep] = append(dependents[dep], s.Name)
		}
	}

	listed := make(map[string]bool, len(order))
	systems := make([]system.SystemInfo, 0, len(g.Systems))
	for _, name := range order {
		if s, ok := byName[name]; ok {
			systems = append(systems, s)
			listed[name] = true
		}
	}
	for _, s := range g.Systems {
		if !listed[s.Name] {
			systems = append(systems, s)
		}
	}

	return PlanModel{
		Systems:    systems,
		Dependents: dependents,
		Height:     15,
	}
}

// Selected returns the system under the cursor.
func (m PlanModel) Selected() (system.SystemInfo, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Systems) {
		return system.SystemInfo{}, false
	}
	return m.Systems[m.Cursor], true
}

func (m PlanModel) Init() tea.Cmd {
	return nil
}

func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Systems)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Systems)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		case "enter":
			// Jump to the first dependency of the selected system.
			if s, ok := m.Selected(); ok && len(s.Deps) > 0 {
				m = m.jumpTo(s.Deps[0])
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m PlanModel) jumpTo(name string) PlanModel {
	for i, s := range m.Systems {
		if s.Name == name {
			m.Cursor = i
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			} else if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
			break
		}
	}
	return m
}

func (m PlanModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Build Plan"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ first dependency  q quit"))
	b.WriteString("\n\n")

	if len(m.Systems) == 0 {
		b.WriteString(listDimStyle.Render("  no systems"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Systems))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Systems[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		state := ""
		if s.Placeholder {
			state = "missing"
		}
		rows = append(rows, []string{cursor, fmt.Sprint(i + 1), s.Name, fmt.Sprint(len(s.Deps)), state})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "System", "Deps", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Systems) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Systems[idx].Placeholder:
				return StyleWarning
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, t.Render(), "  ", m.detail()))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Systems))))

	return b.String()
}

// detail renders the side panel for the selected system.
func (m PlanModel) detail() string {
	s, ok := m.Selected()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(s.Name))
	b.WriteString("\n")
	if s.Placeholder {
		b.WriteString(StyleWarning.Render("never defined; the build fails here"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("depends on"))
	b.WriteString("\n")
	b.WriteString(nameList(s.Deps))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("needed by"))
	b.WriteString("\n")
	b.WriteString(nameList(m.Dependents[s.Name]))
	return detailBoxStyle.Render(b.String())
}

func nameList(names []string) string {
	if len(names) == 0 {
		return listDimStyle.Render("  none")
	}
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = "  " + iconArrow + " " + n
	}
	return strings.Join(lines, "\n")
}
