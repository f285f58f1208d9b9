package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/render"
	"github.com/goliatone/go-funcform/pkg/renderers/tui"
	"github.com/goliatone/go-funcform/pkg/submit"
	"github.com/goliatone/go-funcform/pkg/validation"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		format string
		send   bool
	)
	cmd := &cobra.Command{
		Use:   "fill <function>",
		Short: "Fill a function's form in the terminal",
		Long: `Prompt for every field of a function's form in the terminal and print the
resulting payload. With --submit the payload is posted to the backend and
the reply is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, _, err := a.loadRegistry(ctx)
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
			renderer, err := tui.New(tui.WithOutputFormat(tui.OutputFormat(format)))
			if err != nil {
				return err
			}

			if !send {
				out, err := renderer.Render(ctx, f, render.RenderOptions{})
				if errors.Is(err, tui.ErrAborted) {
					return nil
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, string(out))
				return err
			}

			payload, err := renderer.Fill(ctx, f, render.RenderOptions{})
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			if err != nil {
				return err
			}
			if a.cfg.ValidatePayloads {
				validator, err := validation.Compile(fn)
				if err != nil {
					return err
				}
				if err := validator.Validate(payload).Err(); err != nil {
					return err
				}
			}
			client, err := submit.New(a.cfg.Backend, submit.WithHTTPClient(a.httpClient()), submit.WithLogger(a.logger))
			if err != nil {
				return err
			}
			res, err := client.Submit(ctx, fn.Name, payload)
			if err != nil {
				_, _ = fmt.Fprintln(a.out, render.Result{Err: err.Error()}.Text())
				return err
			}
			_, err = fmt.Fprintln(a.out, render.Result{Status: res.Status, Body: res.Body}.Text())
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "payload output format: json or yaml")
	cmd.Flags().BoolVar(&send, "submit", false, "post the payload to the backend")
	cmd.Flags().Bool("validate-payloads", false, "validate the payload against its JSON Schema before submitting")
	return cmd
}
