// Package template defines the template engine contract used by page
// renderers. The pongo2 implementation lives in the gotemplate subpackage.
package template
