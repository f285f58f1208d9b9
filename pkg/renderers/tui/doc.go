// Package tui fills a form interactively in the terminal. Each control is
// prompted in document order; dropdowns and lists are resolved as they are
// reached, so sub-forms appear exactly when their option is chosen.
package tui
