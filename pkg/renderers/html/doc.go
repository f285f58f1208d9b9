// Package html renders a form as a server-side HTML page and restores form
// state from the values the page posts back.
package html
