package testsupport

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// CaptureTemplateOutput runs render with a buffer writer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	result, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return result, buf.String()
}

// MustReadGoldenString reads a golden file, trimming one trailing newline so
// editors that append one do not break comparisons.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return strings.TrimSuffix(string(MustReadGolden(t, path)), "\n")
}
