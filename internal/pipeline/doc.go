// Package pipeline layers factory-data sources into one store and writes the
// requested outputs.
//
// Sources are applied in a fixed order, each overriding the values set by
// the ones before it:
//
//	JSON document → YAML document → binary container → raw flash dump
//	→ overrides (in order) → removals
//
// A source that fails as a whole (missing file, malformed document,
// truncated container) is rolled back and reported; the run continues with
// the next source.
package pipeline
