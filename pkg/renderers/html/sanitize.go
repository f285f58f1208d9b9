package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	resultPolicyOnce sync.Once
	resultPolicy     *bluemonday.Policy
)

// sanitizeResult strips scripts, handlers and unknown markup from a backend
// reply that is shown as HTML.
func sanitizeResult(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(resultSanitizer().Sanitize(trimmed))
}

func resultSanitizer() *bluemonday.Policy {
	resultPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("pre", "code", "table", "thead", "tbody", "tr", "th", "td")
		policy.AllowAttrs("class").OnElements("pre", "code", "span", "div")
		resultPolicy = policy
	})
	return resultPolicy
}
