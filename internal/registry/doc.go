// Package registry provides the fixed factory-data parameter table.
//
// Every parameter that may appear in a factory-data blob is described by a
// Descriptor: a canonical name, a wire identifier and a value kind. The table
// is data, validated once at construction:
//   - IDs are unique and stable across releases (they are the on-disk key)
//   - Names are unique, and so are their alias keys
//
// This package imports nothing internal. codec, tlv and format all build on
// the Kind and Descriptor types defined here.
package registry
