package main

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-funcform/internal/config"
	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/registry"
	"github.com/goliatone/go-funcform/pkg/schema"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	cfgFile string
	cfg     config.Config
	logger  *log.Logger
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	root := &cobra.Command{
		Use:   "funcform",
		Short: "Generate forms for remote functions and submit them as JSON",
		Long: `funcform reads a registry of function descriptors and renders one form
per function. Filled forms are read back into JSON and posted to
POST <backend>/<function>; the reply is shown as plain text.

Settings come from defaults, funcform.yaml, .env, FUNCFORM_* variables and
flags, in increasing order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.Options{File: a.cfgFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cfg.Debug)
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./funcform.yaml or ~/.funcform/funcform.yaml)")
	flags.String("registry", "", "function registry file or http(s) URL")
	flags.String("backend", "", "base URL functions are posted to")
	flags.Duration("timeout", 0, "backend and registry request timeout")
	flags.Int("max-depth", 0, "maximum schema nesting depth")
	flags.Bool("require-non-nullable-inputs", false, "mark non-nullable inputs as required")
	flags.Bool("debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newFillCmd(a),
		newListCmd(a),
		newOpenAPICmd(a),
		newSchemaCmd(a),
		newConfigCmd(a),
	)
	return root
}

func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "funcform",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.cfg.Timeout}
}

func (a *app) loader() *registry.Loader {
	return registry.NewLoader(
		registry.WithHTTPClient(a.httpClient()),
		registry.WithRequestTimeout(a.cfg.Timeout),
	)
}

func (a *app) loadRegistry(ctx context.Context) (*schema.Registry, registry.Source, error) {
	src, err := registry.ParseSource(a.cfg.Registry)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("loading registry", "source", src.Location())
	reg, err := a.loader().LoadRegistry(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return reg, src, nil
}

func (a *app) formOptions() []form.Option {
	return []form.Option{
		form.WithRequireNonNullableInputs(a.cfg.RequireNonNullableInputs),
		form.WithMaxDepth(a.cfg.MaxDepth),
	}
}
