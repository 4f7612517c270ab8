package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/sysbuild/pkg/system"
)

func planGraph() system.Graph {
	return system.Graph{Systems: []system.SystemInfo{
		{Name: "renderer", Deps: []string{"window", "assets"}},
		{Name: "window"},
		{Name: "assets", Deps: []string{"window"}},
		{Name: "orphan"},
	}}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m PlanModel, keys ...string) PlanModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(PlanModel)
	}
	return m
}

func TestNewPlanModelOrder(t *testing.T) {
	m := NewPlanModel(planGraph(), []string{"window", "assets", "renderer"})

	var names []string
	for _, s := range m.Systems {
		names = append(names, s.Name)
	}
	if got, want := strings.Join(names, " "), "window assets renderer orphan"; got != want {
		t.Errorf("Systems = %s, want %s", got, want)
	}
	if got := m.Dependents["window"]; len(got) != 2 {
		t.Errorf("Dependents[window] = %v, want renderer and assets", got)
	}
}

func TestPlanModelNavigation(t *testing.T) {
	m := NewPlanModel(planGraph(), []string{"window", "assets", "renderer"})

	m = press(m, "down", "down")
	if s, _ := m.Selected(); s.Name != "renderer" {
		t.Fatalf("Selected() = %s, want renderer", s.Name)
	}

	m = press(m, "enter")
	if s, _ := m.Selected(); s.Name != "window" {
		t.Errorf("enter should jump to the first dependency, got %s", s.Name)
	}

	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0 at the top", m.Cursor)
	}

	m = press(m, "G")
	if m.Cursor != len(m.Systems)-1 {
		t.Errorf("G: Cursor = %d, want last", m.Cursor)
	}
	m = press(m, "down")
	if m.Cursor != len(m.Systems)-1 {
		t.Error("down at the bottom should not move the cursor")
	}
}

func TestPlanModelQuit(t *testing.T) {
	m := NewPlanModel(planGraph(), nil)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPlanModelView(t *testing.T) {
	m := NewPlanModel(planGraph(), []string{"window", "assets", "renderer"})
	m = press(m, "down")

	view := m.View()
	for _, want := range []string{"Build Plan", "renderer", "needed by", "[2/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	empty := NewPlanModel(system.Graph{}, nil).View()
	if !strings.Contains(empty, "no systems") {
		t.Error("View() of an empty plan should say so")
	}
}

func TestPlanModelScrolls(t *testing.T) {
	m := NewPlanModel(planGraph(), nil)
	next, _ := m.Update(tea.WindowSizeMsg{Height: 1})
	m = next.(PlanModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want minimum 5", m.Height)
	}
	m.Height = 2
	m = press(m, "down", "down", "down")
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2 after scrolling past the window", m.Offset)
	}
}
