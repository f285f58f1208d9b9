package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "funcform.yaml")
	writeFile(t, file, "addr: 0.0.0.0:9000\nregistry: from-file.yaml\ntimeout: 5s\nwatch: true\n")
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "FUNCFORM_BACKEND=http://dotenv:1234\n")
	t.Setenv("FUNCFORM_REGISTRY", "from-env.yaml")
	t.Setenv("FUNCFORM_REQUIRE_NON_NULLABLE_INPUTS", "true")
	t.Cleanup(func() { os.Unsetenv("FUNCFORM_BACKEND") })

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	flags.Int("max-depth", 0, "")
	if err := flags.Parse([]string{"--max-depth=8"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(Options{File: file, EnvFile: envFile, Flags: flags})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Default()
	want.Addr = "0.0.0.0:9000"
	want.Registry = "from-env.yaml"
	want.Backend = "http://dotenv:1234"
	want.RequireNonNullableInputs = true
	want.Timeout = 5 * time.Second
	want.Watch = true
	want.MaxDepth = 8
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	missingEnv := filepath.Join(dir, "missing.env")

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "backend: not-a-url\n")
	if _, err := Load(Options{File: bad, EnvFile: missingEnv}); err == nil {
		t.Fatalf("expected backend validation error")
	}

	broken := filepath.Join(dir, "broken.yaml")
	writeFile(t, broken, "addr: [\n")
	if _, err := Load(Options{File: broken, EnvFile: missingEnv}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "funcform.yaml")
	if err := WriteDefault(file); err != nil {
		t.Fatalf("write default: %v", err)
	}
	cfg, err := Load(Options{File: file, EnvFile: filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
