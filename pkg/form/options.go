package form

const (
	// DefaultFormID is the id attribute given to the root form element.
	DefaultFormID = "funcform"
	// DefaultMaxDepth bounds schema nesting during rendering.
	DefaultMaxDepth = 32
)

// Option configures a Builder.
type Option func(*config)

type config struct {
	requireNonNullable bool
	maxDepth           int
	formID             string
}

func newConfig(options ...Option) config {
	cfg := config{
		maxDepth: DefaultMaxDepth,
		formID:   DefaultFormID,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// WithRequireNonNullableInputs marks every non-nullable primitive input as
// required.
func WithRequireNonNullableInputs(enabled bool) Option {
	return func(cfg *config) {
		cfg.requireNonNullable = enabled
	}
}

// WithMaxDepth overrides DefaultMaxDepth. Non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// WithFormID overrides the id of the root form element.
func WithFormID(id string) Option {
	return func(cfg *config) {
		if id != "" {
			cfg.formID = id
		}
	}
}
