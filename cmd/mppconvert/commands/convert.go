package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mppkit/mppconvert/pkg/engine"
	"github.com/mppkit/mppconvert/pkg/report"
)

type convertOptions struct {
	output    string
	verbose   bool
	reference string
	plain     bool
	format    string
	rules     string
	workers   int
}

func newConvertCmd(g *globals) *cobra.Command {
	var o convertOptions
	cmd := &cobra.Command{
		Use:   "convert <input-file>",
		Short: "Convert a schedule to XLSX, CSV or JSON",
		Long: `Reads a schedule file (.mpp, .mpx, .xml, ... or a task dump .json),
corrects task durations against an optional reference table and exports
the task list. Input and output may be s3://bucket/key URLs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, g, o, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output path or s3:// URL")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "print project details and correction examples")
	f.StringVar(&o.reference, "reference", "", "reference table (.xlsx or .csv), overrides reference.path")
	f.BoolVar(&o.plain, "plain", false, "export durations as read, without correction")
	f.StringVar(&o.format, "format", "", "export format: xlsx, csv or json (default from config)")
	f.StringVar(&o.rules, "rules", "", "CEL review rules file (YAML)")
	f.IntVar(&o.workers, "workers", 0, "correction workers (0 = GOMAXPROCS)")
	return cmd
}

func runConvert(cmd *cobra.Command, g *globals, o convertOptions, input string) error {
	if cmd.Flags().Changed("workers") {
		g.cfg.Workers = o.workers
	}
	job := engine.Job{
		Input:     input,
		Output:    o.output,
		Reference: o.reference,
		Plain:     o.plain,
		RulesFile: o.rules,
	}
	if o.format != "" {
		format, err := report.ParseFormat(o.format)
		if err != nil {
			return err
		}
		job.Format = format
	}

	e := g.engine(cmd, o.verbose)
	res, err := e.Convert(cmd.Context(), job)
	if err != nil {
		return err
	}

	p := report.NewPrinter(cmd.OutOrStdout())
	for _, w := range res.Warnings {
		p.Warn(w)
	}
	p.Processed(len(res.Project.Tasks))
	if o.verbose {
		p.Properties(res.Project.Properties)
		p.ProjectSummary(res.Project.Tasks)
		p.Hierarchy(res.Project.Tasks, 30)
	}
	if !res.Plain() {
		p.Summary(res.Summary)
		if o.verbose {
			p.Examples(res.Project.Tasks, res.Corrected, e.Config().Export.Examples)
		}
		if len(res.Findings) > 0 {
			p.Warn(pluralize(len(res.Findings), "task", "tasks") + " flagged for review")
		}
	}
	for _, path := range res.Outputs {
		p.Exported("Exported", path)
	}
	return nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
