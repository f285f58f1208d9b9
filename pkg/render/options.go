package render

// RenderOptions carry per-request state that is not part of the form tree.
type RenderOptions struct {
	// Action is the URL the page posts back to. Empty means the current URL.
	Action string
	// Functions lists every registered function for navigation.
	Functions []string
	// Result is the backend reply from the last submission, if any.
	Result *Result
	// Errors holds validation messages keyed by dotted field path. Messages
	// under an empty key are form-level.
	Errors map[string][]string
	// Hidden fields are emitted alongside the form controls.
	Hidden []HiddenField
}

// Result is what the result area shows after a submission.
type Result struct {
	Status int
	Body   string
	// Err holds a transport failure. Body is empty in that case.
	Err string
}

// Text is the line displayed in the result area.
func (r Result) Text() string {
	if r.Err != "" {
		return "Error: " + r.Err
	}
	return "Result: " + r.Body
}
