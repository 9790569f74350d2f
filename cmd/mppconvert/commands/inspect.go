package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mppkit/mppconvert/pkg/engine"
	"github.com/mppkit/mppconvert/pkg/tui"
)

func newInspectCmd(g *globals) *cobra.Command {
	var reference, rules string
	cmd := &cobra.Command{
		Use:   "inspect <input-file>",
		Short: "Review corrected durations interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// Logs would tear the alternate screen.
			e := engine.New(engine.WithConfig(g.cfg))
			job := engine.Job{Input: args[0], Reference: reference, RulesFile: rules}

			load := func() (*tui.Data, error) {
				res, err := e.Prepare(ctx, job)
				if err != nil {
					return nil, err
				}
				return &tui.Data{
					Title:     res.Project.Properties.Title,
					Tasks:     res.Project.Tasks,
					Corrected: res.Corrected,
					Summary:   res.Summary,
					Findings:  res.Findings,
					Warnings:  res.Warnings,
				}, nil
			}

			p := tea.NewProgram(tui.NewModel(load),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			final, err := p.Run()
			if err != nil {
				return err
			}
			return final.(tui.Model).Err()
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "reference table (.xlsx or .csv)")
	cmd.Flags().StringVar(&rules, "rules", "", "CEL review rules file (YAML)")
	return cmd
}
