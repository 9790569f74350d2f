package commands

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/mppkit/mppconvert/pkg/engine"
	"github.com/mppkit/mppconvert/pkg/report"
	"github.com/mppkit/mppconvert/pkg/storage"
	"github.com/mppkit/mppconvert/pkg/timeline"
)

type visualizeOptions struct {
	output    string
	title     string
	sheetName string
	resources bool
	noBrowser bool
}

func newVisualizeCmd(g *globals) *cobra.Command {
	var o visualizeOptions
	cmd := &cobra.Command{
		Use:   "visualize <workbook>",
		Short: "Render an exported workbook as an HTML gantt chart",
		Long: `Reads the task sheet of an exported workbook (Tasks_Corrected when
present) and writes an interactive gantt chart.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVisualize(cmd, g, o, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", engine.DefaultChartOutput, "output HTML path or s3:// URL")
	f.StringVarP(&o.title, "title", "t", timeline.DefaultTitle, "chart title")
	f.StringVar(&o.sheetName, "sheet-name", timeline.DefaultSheet, "sheet to read when Tasks_Corrected is absent")
	f.BoolVar(&o.resources, "resources", false, "add a resource cost chart")
	f.BoolVar(&o.noBrowser, "no-browser", false, "do not open the chart in a browser")
	return cmd
}

func runVisualize(cmd *cobra.Command, g *globals, o visualizeOptions, input string) error {
	e := g.engine(cmd, false)
	tl, err := e.Visualize(cmd.Context(), engine.VisualizeJob{
		Input:     input,
		Output:    o.output,
		Title:     o.title,
		SheetName: o.sheetName,
		Resources: o.resources,
	})
	if err != nil {
		return err
	}

	p := report.NewPrinter(cmd.OutOrStdout())
	if tl.Skipped > 0 {
		p.Warn(fmt.Sprintf("%d rows without start or finish were skipped", tl.Skipped))
	}
	p.Exported(fmt.Sprintf("Gantt chart (%d tasks)", len(tl.Bars)), o.output)

	if o.noBrowser || storage.IsRemote(o.output) {
		return nil
	}
	abs, err := filepath.Abs(o.output)
	if err != nil {
		return err
	}
	browser.Stdout = cmd.ErrOrStderr()
	browser.Stderr = cmd.ErrOrStderr()
	if err := browser.OpenFile(abs); err != nil {
		p.Warn(fmt.Sprintf("could not open a browser: %v", err))
	}
	return nil
}
