package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-funcform/pkg/registry"
	"github.com/goliatone/go-funcform/pkg/server"
	"github.com/goliatone/go-funcform/pkg/submit"
	"github.com/goliatone/go-funcform/pkg/testsupport"
)

type backendCall struct {
	path string
	body map[string]any
}

func newBackend(t *testing.T, calls *[]backendCall) *httptest.Server {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*calls = append(*calls, backendCall{path: r.URL.Path, body: body})
		_, _ = io.WriteString(w, "hello "+body["name"].(string))
	}))
	t.Cleanup(backend.Close)
	return backend
}

func newServer(t *testing.T, backendURL string, options ...server.Option) *httptest.Server {
	t.Helper()
	if backendURL != "" {
		client, err := submit.New(backendURL)
		require.NoError(t, err)
		options = append(options, server.WithSubmitClient(client))
	}
	srv, err := server.New(registry.NewHolder(testsupport.SampleRegistry(t)), options...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, target string) (int, string) {
	t.Helper()
	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, target string, values url.Values) (int, string) {
	t.Helper()
	resp, err := http.PostForm(target, values)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_IndexAndForm(t *testing.T) {
	ts := newServer(t, "")

	status, body := get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `href="/form/createOrder"`)
	require.NotContains(t, body, "<form")

	status, body = get(t, ts.URL+"/form/createOrder")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `action="/form/createOrder"`)
	require.Contains(t, body, `name="items#count" value="1"`)

	status, body = get(t, ts.URL+"/form/missing")
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, body, "unknown function")

	status, body = get(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body)
}

func TestServer_SubmitPostsToFunctionEndpoint(t *testing.T) {
	var calls []backendCall
	backend := newBackend(t, &calls)
	ts := newServer(t, backend.URL)

	status, body := post(t, ts.URL+"/form/greet", url.Values{
		"name":    {"Ada"},
		"polite":  {"on"},
		"_action": {"Submit"},
	})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Result: hello Ada")
	require.Contains(t, body, `value="Ada"`)

	require.Len(t, calls, 1)
	require.Equal(t, "/greet", calls[0].path)
	require.Equal(t, map[string]any{"name": "Ada", "age": nil, "polite": true}, calls[0].body)
}

func TestServer_ActionsRebuildState(t *testing.T) {
	ts := newServer(t, "")

	status, body := post(t, ts.URL+"/form/createOrder", url.Values{
		"items#count":     {"1"},
		"items.0.sku":     {"A-1"},
		"shipping.name":   {"Pickup"},
		"shipping#served": {"Pickup"},
		"_action":         {"add:items"},
	})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `name="items#count" value="2"`)
	require.Contains(t, body, `name="items.1.sku"`)
	require.Contains(t, body, `value="A-1"`)

	status, body = post(t, ts.URL+"/form/createOrder", url.Values{
		"shipping.name":   {"Courier"},
		"shipping#served": {"Pickup"},
		"_action":         {"select:shipping"},
	})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `name="shipping.value.address"`)
	require.Contains(t, body, `name="shipping#served" value="Courier"`)

	status, body = post(t, ts.URL+"/form/createOrder", url.Values{"_action": {"explode"}})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "unknown action")
}

func TestServer_SubmitWithoutBackend(t *testing.T) {
	ts := newServer(t, "")
	status, body := post(t, ts.URL+"/form/sum", url.Values{"numbers#count": {"1"}, "numbers.0": {"1"}})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Error: server: no backend configured")
	require.Contains(t, body, "result-failed")
}

func TestServer_RequiredAndValidatedPayloads(t *testing.T) {
	var calls []backendCall
	backend := newBackend(t, &calls)
	ts := newServer(t, backend.URL, server.WithRequiredInputs(true), server.WithPayloadValidation(true))

	status, body := post(t, ts.URL+"/form/greet", url.Values{"_action": {"Submit"}})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Contains(t, body, `<span class="field-error">a value is required</span>`)
	require.Empty(t, calls)

	status, body = post(t, ts.URL+"/form/createOrder", url.Values{
		"customer.name":   {"Ada"},
		"items#count":     {"1"},
		"items.0.sku":     {"A-1"},
		"items.0.qty":     {"lots"},
		"shipping.name":   {"Pickup"},
		"shipping#served": {"Pickup"},
		"_action":         {"Submit"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Contains(t, body, `aria-invalid="true"`)
	require.Empty(t, calls)
}

func TestServer_OpenAPIAndSchema(t *testing.T) {
	ts := newServer(t, "")

	status, body := get(t, ts.URL+"/openapi.json")
	require.Equal(t, http.StatusOK, status)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, paths, "/createOrder")

	status, body = get(t, ts.URL+"/schema/greet")
	require.Equal(t, http.StatusOK, status)
	require.True(t, strings.Contains(body, `"$schema"`))

	status, _ = get(t, ts.URL+"/schema/nope")
	require.Equal(t, http.StatusNotFound, status)
}
