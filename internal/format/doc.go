// Package format reads and writes factory data in its external containers.
//
// Document formats (JSON, YAML) are flat name -> value mappings. Integers are
// written as decimal strings, strings as text and byte arrays as lists of
// 0xhh tokens. Entries are written in ascending id order.
//
// The binary container is a sequence of records with no file header:
//
//	id     uint32 little-endian
//	length uint32 little-endian
//	value  [length]byte
//
// Readers parse a whole source before touching the store, so a malformed
// document or a truncated record leaves the store exactly as it was. Writers
// go through a temporary file and rename, so a failed write never leaves a
// partial destination behind.
package format
