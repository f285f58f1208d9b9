// Package server serves the single-screen UI over HTTP: a function list, the
// selected function's form, and the result of the last submission.
//
// The page works without scripts. Every interaction posts the whole form back;
// the handler rebuilds a fresh form, restores the posted state, applies the
// requested action and renders the page again.
package server
