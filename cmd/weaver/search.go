package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/andrewh/weaver/internal/registry"
)

// searchItem adapts a resolved attribute or group into a bubbles/list.Item.
type searchItem struct {
	title, desc string
}

func (i searchItem) Title() string       { return i.title }
func (i searchItem) Description() string { return i.desc }
func (i searchItem) FilterValue() string { return i.title }

type searchModel struct {
	list list.Model
}

func (m searchModel) Init() tea.Cmd { return nil }

func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "esc", "ctrl+c":
				return m, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m searchModel) View() string { return m.list.View() }

func searchItems(reg *registry.ResolvedRegistry) []list.Item {
	items := make([]list.Item, 0, len(reg.Catalog)+len(reg.Groups))
	for _, a := range reg.Catalog {
		items = append(items, searchItem{title: a.Name, desc: fmt.Sprintf("attribute · %s · %s", a.Type.Name, a.Brief)})
	}
	for _, g := range reg.Groups {
		name := g.Name
		if name == "" {
			name = g.MetricName
		}
		if name == "" {
			name = g.ID
		}
		items = append(items, searchItem{title: name, desc: fmt.Sprintf("%s · %s", g.Type, g.Brief)})
	}
	return items
}

func searchCmd() *cobra.Command {
	var (
		registryPath string
		policyPaths  []string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Interactively search a resolved registry's attributes and groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, _, err := resolveRegistry(ctx, registryPath, true)
			if err != nil {
				return err
			}

			l := list.New(searchItems(reg), list.NewDefaultDelegate(), 0, 0)
			l.Title = "weaver registry search"

			p := tea.NewProgram(searchModel{list: l}, tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}

	addCommonFlags(cmd, &registryPath, &policyPaths)
	return cmd
}
