// Package extract reads a rendered form tree back into a JSON-compatible
// payload.
//
// Fieldsets become objects keyed by their children's names, list fieldsets
// become arrays of their items, checkboxes become booleans and nullable
// inputs left empty become null. Every other control yields its string value.
// Repeated names inside one object keep the last value unless the Extractor
// was built WithStrictNames.
package extract
