package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-funcform/internal/config"
	"github.com/goliatone/go-funcform/pkg/openapi"
	"github.com/goliatone/go-funcform/pkg/validation"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the functions in the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, _, err := a.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}
			for _, fn := range reg.Functions() {
				if _, err := fmt.Fprintf(a.out, "%s\t%d params\n", fn.Name, len(fn.Params)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newOpenAPICmd(a *app) *cobra.Command {
	var (
		output  string
		title   string
		version string
	)
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Export the registry as an OpenAPI 3 document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, _, err := a.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := openapi.Export(reg,
				openapi.WithTitle(title),
				openapi.WithVersion(version),
				openapi.WithServer(a.cfg.Backend),
			)
			if err != nil {
				return err
			}
			if err := openapi.Validate(cmd.Context(), doc); err != nil {
				return err
			}
			return a.writeJSON(output, doc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&title, "title", "", "info.title of the document")
	cmd.Flags().StringVar(&version, "version", "", "info.version of the document")
	return cmd
}

func newSchemaCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "schema <function>",
		Short: "Print the JSON Schema of a function's payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := a.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}
			fn, err := reg.Function(args[0])
			if err != nil {
				return err
			}
			doc, err := validation.Generate(fn)
			if err != nil {
				return err
			}
			return a.writeJSON(output, doc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the resolved configuration",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return a.writeJSON("", a.cfg)
			},
		},
		&cobra.Command{
			Use:   "init [path]",
			Short: "Write the default configuration file",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				path := "funcform.yaml"
				if len(args) == 1 {
					path = args[0]
				}
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists", path)
				}
				if err := config.WriteDefault(path); err != nil {
					return err
				}
				a.logger.Info("config written", "path", path)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) writeJSON(path string, value any) error {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = fmt.Fprintln(a.out, string(out))
		return err
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Info("written", "path", path)
	return nil
}
