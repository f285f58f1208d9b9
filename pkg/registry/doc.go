// Package registry loads function registries from files, fs.FS entries, or
// URLs and keeps a live copy that follows file changes.
package registry
