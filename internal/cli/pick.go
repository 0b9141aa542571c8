package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/output"
)

// PickCmd interactively picks a configuration
type PickCmd struct {
	DocumentFlags `embed:""`
}

// pickItem implements list.Item for the picker
type pickItem struct {
	id          string // configuration name
	title       string // Display name
	description string // Additional info
}

func (i pickItem) Title() string       { return i.title }
func (i pickItem) Description() string { return i.description }
func (i pickItem) FilterValue() string { return i.id }

// pickModel is the bubbletea model for the picker
type pickModel struct {
	list     list.Model
	selected pickItem
	quitting bool
	canceled bool
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Let the list consume keys while the filter input is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(pickItem); ok {
				m.selected = item
				m.quitting = true
				return m, tea.Quit
			}
		case "q", "esc", "ctrl+c":
			m.canceled = true
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 2)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Run executes the pick command
func (c *PickCmd) Run(globals *Globals) error {
	// Require interactive terminal
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return emitError(globals, &CLIError{
			Code:    "NOT_INTERACTIVE",
			Message: "e2econf pick requires an interactive terminal",
			Hint:    "Pass --configuration directly, or use 'e2econf list' for scripting",
		})
	}

	global, location, err := c.load(globals)
	if err != nil {
		return emitError(globals, err)
	}
	if global == nil || len(global.Configurations) == 0 {
		return emitError(globals, configerr.NewBuilder().NoConfigurations(location))
	}

	rows := configurationRows(global, global.SelectedConfiguration)
	items := pickItems(rows)

	selected, err := runPicker(items, "Select Configuration")
	if err != nil {
		return emitError(globals, &CLIError{Code: "PICK_CANCELED", Message: err.Error()})
	}
	return c.outputResult(globals, selected.id, location)
}

func pickItems(rows []*output.ConfigurationOutput) []list.Item {
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		title := r.Name
		if r.Selected {
			title += " (selected)"
		}
		desc := []string{r.Kind}
		if r.DeviceType != "" {
			desc = append(desc, r.DeviceType)
		}
		if r.Device != "" {
			desc = append(desc, r.Device)
		}
		if len(r.Apps) > 0 {
			desc = append(desc, strings.Join(r.Apps, ", "))
		}
		items = append(items, pickItem{
			id:          r.Name,
			title:       title,
			description: strings.Join(desc, " • "),
		})
	}
	return items
}

func runPicker(items []list.Item, title string) (pickItem, error) {
	// Configure list delegate with styles
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Foreground(lipgloss.Color("39")).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("241"))

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Background(lipgloss.Color("39")).
		Foreground(lipgloss.Color("0")).
		Padding(0, 1)

	m := pickModel{list: l}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr))

	finalModel, err := p.Run()
	if err != nil {
		return pickItem{}, fmt.Errorf("picker error: %w", err)
	}

	result := finalModel.(pickModel)
	if result.canceled {
		return pickItem{}, errors.New("selection canceled")
	}

	return result.selected, nil
}

func (c *PickCmd) outputResult(globals *Globals, name, location string) error {
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRaw(map[string]any{
			"type":           "pick",
			"schemaVersion":  output.SchemaVersion,
			"configuration":  name,
			"configLocation": location,
		})
	}

	// Text format: just the name for piping
	_, err := io.WriteString(globals.Stdout, name+"\n")
	return err
}
