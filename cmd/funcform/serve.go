package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-funcform/pkg/openapi"
	"github.com/goliatone/go-funcform/pkg/registry"
	"github.com/goliatone/go-funcform/pkg/renderers/html"
	"github.com/goliatone/go-funcform/pkg/server"
	"github.com/goliatone/go-funcform/pkg/submit"
)

const shutdownGrace = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form UI over HTTP",
		Long: `Serve the single-screen form UI.

Routes:
  GET  /              function list
  GET  /form/{fn}     a fresh form
  POST /form/{fn}     add list items, switch dropdowns, or submit
  GET  /openapi.json  OpenAPI description of the backend functions
  GET  /schema/{fn}   JSON Schema of a function's payload
  GET  /healthz       liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().Bool("watch", false, "reload the registry file when it changes")
	cmd.Flags().Bool("validate-payloads", false, "validate payloads against their JSON Schema before submitting")
	cmd.Flags().Bool("html-results", false, "render backend replies as sanitized HTML")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	reg, src, err := a.loadRegistry(ctx)
	if err != nil {
		return err
	}
	holder := registry.NewHolder(reg)
	holder.SetLogger(a.logger)

	if a.cfg.Watch {
		if src.Kind() != registry.SourceKindFile {
			a.logger.Warn("watch only applies to registry files", "source", src.Location())
		} else {
			go func() {
				if err := holder.Watch(ctx, a.loader(), src.Location()); err != nil {
					a.logger.Error("registry watch stopped", "err", err)
				}
			}()
		}
	}

	client, err := submit.New(a.cfg.Backend,
		submit.WithHTTPClient(a.httpClient()),
		submit.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	page, err := html.New(html.WithHTMLResults(a.cfg.HTMLResults))
	if err != nil {
		return err
	}
	handler, err := server.New(holder,
		server.WithLogger(a.logger),
		server.WithSubmitClient(client),
		server.WithPage(page),
		server.WithFormOptions(a.formOptions()...),
		server.WithRequiredInputs(a.cfg.RequireNonNullableInputs),
		server.WithPayloadValidation(a.cfg.ValidatePayloads),
		server.WithOpenAPIOptions(openapi.WithServer(a.cfg.Backend)),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	a.logger.Info("listening", "addr", a.cfg.Addr, "functions", reg.Len(), "backend", a.cfg.Backend)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown", "err", err)
		return err
	}
	a.logger.Info("stopped")
	return nil
}
