// Package dom provides the element tree that rendered forms live in. It plays
// the role a browser DOM plays for client-side form builders, without being
// tied to one: renderers walk and mutate Elements directly, and Render/Parse
// translate to and from HTML when a page is involved.
package dom
