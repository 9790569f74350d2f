// Package commands implements the mppconvert command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mppkit/mppconvert/pkg/config"
	"github.com/mppkit/mppconvert/pkg/engine"
	"github.com/mppkit/mppconvert/pkg/telemetry"
	"github.com/mppkit/mppconvert/pkg/version"
)

// globals are the persistent flags plus the state they resolve to.
type globals struct {
	cfgFile      string
	jsonLogs     bool
	otelEndpoint string

	v        *viper.Viper
	cfg      config.Config
	shutdown telemetry.Shutdown
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	g := &globals{v: viper.New()}
	root := newRootCmd(g)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if g.shutdown != nil {
		if serr := g.shutdown(context.Background()); serr != nil {
			fmt.Fprintf(stderr, "telemetry shutdown: %v\n", serr)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if trace := engine.TraceOf(err); trace != "" {
			fmt.Fprintf(stderr, "\nReader output:\n%s\n", trace)
		}
	}
	return engine.ExitCode(err)
}

func newRootCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:   version.AppName,
		Short: "Schedule converter with duration correction",
		Long: `mppconvert reads project schedule files, repairs task durations the
reader mislabels, and exports the task list as XLSX, CSV or JSON.`,
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (default $HOME/.mppconvert.yaml)")
	root.PersistentFlags().BoolVar(&g.jsonLogs, "json-logs", false, "emit logs as JSON")
	root.PersistentFlags().StringVar(&g.otelEndpoint, "otel-endpoint", "", "OTLP/HTTP endpoint for traces")

	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		renderHelp(cmd)
	})

	root.AddCommand(newConvertCmd(g), newVisualizeCmd(g), newInspectCmd(g))
	return root
}

// init reads the config file and environment, then starts telemetry.
func (g *globals) init(ctx context.Context) error {
	if err := g.readConfig(); err != nil {
		return err
	}
	if err := config.BindEnv(g.v); err != nil {
		return err
	}
	cfg, err := config.Load(g.v)
	if err != nil {
		return err
	}
	if g.otelEndpoint != "" {
		cfg.Telemetry.Endpoint = g.otelEndpoint
	}
	g.cfg = cfg

	g.shutdown, err = telemetry.Init(ctx, version.AppName, version.Current, cfg.Telemetry)
	return err
}

func (g *globals) readConfig() error {
	if g.cfgFile != "" {
		g.v.SetConfigFile(g.cfgFile)
		if err := g.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", g.cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(home, ".mppconvert.yaml")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	g.v.SetConfigFile(path)
	g.v.SetConfigType("yaml")
	if err := g.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// engine builds a job engine logging to the command's stderr.
func (g *globals) engine(cmd *cobra.Command, verbose bool) *engine.Engine {
	logger := engine.NewLogger(cmd.ErrOrStderr(), engine.LogOptions{JSON: g.jsonLogs, Verbose: verbose})
	return engine.New(
		engine.WithLogger(logger),
		engine.WithConfig(g.cfg),
	)
}
