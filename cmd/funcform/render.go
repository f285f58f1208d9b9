package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/render"
	"github.com/goliatone/go-funcform/pkg/renderers/html"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output    string
		action    string
		fragment  bool
		templates string
	)
	cmd := &cobra.Command{
		Use:   "render <function>",
		Short: "Render a function's form as a static HTML page",
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
			f, err := form.New(fn, a.formOptions()...)
			if err != nil {
				return err
			}

			var out []byte
			if fragment {
				out = []byte(html.Decorate(f, html.Decoration{Action: action}).String())
			} else {
				page, err := html.New(html.WithTemplatesDir(templates))
				if err != nil {
					return err
				}
				out, err = page.Render(cmd.Context(), f, render.RenderOptions{
					Action:    action,
					Functions: reg.Names(),
				})
				if err != nil {
					return err
				}
			}

			if output == "" {
				_, err = fmt.Fprintln(a.out, string(out))
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.logger.Info("form written", "path", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&action, "action", "", "form action URL")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "emit only the form element")
	cmd.Flags().StringVar(&templates, "templates", "", "directory with a templates/page.tmpl override")
	return cmd
}
