package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/linebalance/pkg/construct"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// strategyHints describes each heuristic in one line for the picker.
var strategyHints = map[construct.Strategy]string{
	construct.RandomFeasible:         "random eligible task into the first open station",
	construct.BreadthFirst:           "layer by layer, shuffled within each layer",
	construct.CompactingBreadthFirst: "layer by layer, backfilling earlier stations",
	construct.DepthFirst:             "follow successor chains before siblings",
}

// =============================================================================
// StrategyListModel - Interactive strategy selection
// =============================================================================

// StrategySelection holds the result of the strategy picker.
type StrategySelection struct {
	Strategy construct.Strategy
}

// StrategyListModel is the bubbletea model for interactive strategy selection.
type StrategyListModel struct {
	Strategies []construct.Strategy
	Cursor     int
	Selected   *StrategySelection
}

// NewStrategyListModel creates a strategy list over all known heuristics.
func NewStrategyListModel() StrategyListModel {
	return StrategyListModel{
		Strategies: construct.Strategies(),
	}
}

func (m StrategyListModel) Init() tea.Cmd {
	return nil
}

func (m StrategyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Strategies)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &StrategySelection{Strategy: m.Strategies[m.Cursor]}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m StrategyListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Strategy"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, s := range m.Strategies {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(s.String()))
		b.WriteString("\n")
		b.WriteString("    " + listDimStyle.Render(strategyHints[s]))
		b.WriteString("\n")
	}

	return b.String()
}

// pickStrategy runs the interactive picker and returns the chosen strategy
// name. It returns an error when the user aborts or no TTY is attached.
func pickStrategy() (string, error) {
	if info, err := os.Stdin.Stat(); err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return "", fmt.Errorf("no strategy given and stdin is not a terminal (use --strategy)")
	}

	final, err := tea.NewProgram(NewStrategyListModel()).Run()
	if err != nil {
		return "", fmt.Errorf("strategy picker: %w", err)
	}
	model, ok := final.(StrategyListModel)
	if !ok || model.Selected == nil {
		return "", fmt.Errorf("no strategy selected")
	}
	return model.Selected.Strategy.String(), nil
}
