package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-funcform/pkg/extract"
	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/openapi"
	"github.com/goliatone/go-funcform/pkg/registry"
	"github.com/goliatone/go-funcform/pkg/render"
	"github.com/goliatone/go-funcform/pkg/renderers/html"
	"github.com/goliatone/go-funcform/pkg/schema"
	"github.com/goliatone/go-funcform/pkg/submit"
	"github.com/goliatone/go-funcform/pkg/validation"
)

// ErrNoBackend is shown in the result area when no submit client is set.
var ErrNoBackend = errors.New("server: no backend configured")

// Server is an http.Handler for the form UI. It reads the registry from a
// Holder on every request, so live reloads apply to the next page load.
type Server struct {
	holder           *registry.Holder
	page             *html.Renderer
	client           *submit.Client
	logger           *log.Logger
	formOptions      []form.Option
	openapiOptions   []openapi.Option
	requireInputs    bool
	validatePayloads bool
	maxBodyBytes     int64
	mux              *http.ServeMux

	mu         sync.Mutex
	compiledOn *schema.Registry
	validators map[string]*validation.Validator
}

// New builds a Server over holder.
func New(holder *registry.Holder, options ...Option) (*Server, error) {
	if holder == nil {
		return nil, errors.New("server: registry holder is required")
	}
	s := &Server{
		holder:       holder,
		logger:       log.New(io.Discard),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.page == nil {
		page, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("server: page renderer: %w", err)
		}
		s.page = page
	}
	if s.requireInputs {
		s.formOptions = append(s.formOptions, form.WithRequireNonNullableInputs(true))
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /form/{fn}", s.handleForm)
	s.mux.HandleFunc("POST /form/{fn}", s.handlePost)
	s.mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	s.mux.HandleFunc("GET /schema/{fn}", s.handleSchema)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s, nil
}

// ServeHTTP routes the request and logs it at debug level.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	reg := s.holder.Get()
	s.writePage(w, r, http.StatusOK, nil, render.RenderOptions{Functions: reg.Names()})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	reg := s.holder.Get()
	f, ok := s.buildForm(w, r, reg)
	if !ok {
		return
	}
	s.writePage(w, r, http.StatusOK, f, render.RenderOptions{
		Action:    r.URL.Path,
		Functions: reg.Names(),
	})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	reg := s.holder.Get()
	f, ok := s.buildForm(w, r, reg)
	if !ok {
		return
	}
	opts := render.RenderOptions{Action: r.URL.Path, Functions: reg.Names()}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.logger.Warn("parse form", "function", f.Name(), "err", err)
		opts.Errors = formError("could not read the submitted form")
		s.writePage(w, r, http.StatusBadRequest, f, opts)
		return
	}

	if err := html.Restore(f, r.PostForm); err != nil {
		s.logger.Warn("restore form", "function", f.Name(), "err", err)
		s.resetForm(f)
		opts.Errors = formError(err.Error())
		s.writePage(w, r, http.StatusBadRequest, f, opts)
		return
	}

	action, err := html.ParseAction(r.PostForm.Get(html.ActionField))
	if err == nil {
		err = html.Apply(f, action)
	}
	if err != nil {
		opts.Errors = formError(err.Error())
		s.writePage(w, r, http.StatusBadRequest, f, opts)
		return
	}
	if action.Kind != html.ActionSubmit {
		s.writePage(w, r, http.StatusOK, f, opts)
		return
	}

	status, result, fieldErrors := s.submit(r, reg, f)
	opts.Result = result
	opts.Errors = fieldErrors
	s.writePage(w, r, status, f, opts)
}

// submit extracts, checks and sends the payload. A nil result means the
// payload was blocked before reaching the backend.
func (s *Server) submit(r *http.Request, reg *schema.Registry, f *form.Form) (int, *render.Result, map[string][]string) {
	if s.requireInputs {
		if missing := extract.Missing(f.Root()); len(missing) > 0 {
			errs := make(map[string][]string, len(missing))
			for _, el := range missing {
				if path, ok := f.PathOf(el); ok {
					errs[path] = append(errs[path], "a value is required")
				}
			}
			return http.StatusUnprocessableEntity, nil, errs
		}
	}

	payload, err := extract.Extract(f.Root())
	if err != nil {
		s.logger.Error("extract payload", "function", f.Name(), "err", err)
		return http.StatusInternalServerError, nil, formError(err.Error())
	}

	if s.validatePayloads {
		validator, err := s.validator(reg, f.Name())
		if err != nil {
			s.logger.Error("compile schema", "function", f.Name(), "err", err)
			return http.StatusInternalServerError, nil, formError(err.Error())
		}
		if res := validator.Validate(payload); !res.Valid {
			errs := make(map[string][]string, len(res.Issues))
			for _, issue := range res.Issues {
				errs[issue.Field] = append(errs[issue.Field], issue.Message)
			}
			return http.StatusUnprocessableEntity, nil, errs
		}
	}

	if s.client == nil {
		return http.StatusOK, &render.Result{Err: ErrNoBackend.Error()}, nil
	}
	res, err := s.client.Submit(r.Context(), f.Name(), payload)
	if err != nil {
		s.logger.Error("submit", "function", f.Name(), "err", err)
		return http.StatusOK, &render.Result{Err: err.Error()}, nil
	}
	s.logger.Info("submitted", "function", f.Name(), "status", res.Status, "request_id", res.RequestID)
	return http.StatusOK, &render.Result{Status: res.Status, Body: res.Body}, nil
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := openapi.Export(s.holder.Get(), s.openapiOptions...)
	if err != nil {
		s.logger.Error("export openapi", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, "application/json", doc)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	fn, err := s.holder.Get().Function(r.PathValue("fn"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	doc, err := validation.Generate(fn)
	if err != nil {
		s.logger.Error("generate schema", "function", fn.Name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, "application/schema+json", doc)
}

func (s *Server) buildForm(w http.ResponseWriter, r *http.Request, reg *schema.Registry) (*form.Form, bool) {
	name := r.PathValue("fn")
	fn, err := reg.Function(name)
	if err != nil {
		s.writePage(w, r, http.StatusNotFound, nil, render.RenderOptions{
			Functions: reg.Names(),
			Errors:    formError(fmt.Sprintf("unknown function %q", name)),
		})
		return nil, false
	}
	f, err := form.New(fn, s.formOptions...)
	if err != nil {
		s.logger.Error("build form", "function", name, "err", err)
		s.writePage(w, r, http.StatusInternalServerError, nil, render.RenderOptions{
			Functions: reg.Names(),
			Errors:    formError(err.Error()),
		})
		return nil, false
	}
	return f, true
}

// resetForm discards a partially restored tree so the error page shows a
// clean form.
func (s *Server) resetForm(f *form.Form) {
	if err := f.Reset(); err != nil {
		s.logger.Error("reset form", "function", f.Name(), "err", err)
	}
}

func (s *Server) validator(reg *schema.Registry, name string) (*validation.Validator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compiledOn != reg {
		s.validators = make(map[string]*validation.Validator)
		s.compiledOn = reg
	}
	if v, ok := s.validators[name]; ok {
		return v, nil
	}
	fn, err := reg.Function(name)
	if err != nil {
		return nil, err
	}
	v, err := validation.Compile(fn)
	if err != nil {
		return nil, err
	}
	s.validators[name] = v
	return v, nil
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, f *form.Form, opts render.RenderOptions) {
	out, err := s.page.Render(r.Context(), f, opts)
	if err != nil {
		s.logger.Error("render page", "path", r.URL.Path, "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.page.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func writeJSON(w http.ResponseWriter, contentType string, value any) {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(out)
}

func formError(message string) map[string][]string {
	return map[string][]string{"": {message}}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
