// Package codec converts parameter values between their external form (the
// strings and hex-token lists found in JSON, YAML, TOML and on the command
// line) and the bytes stored in a factory-data record.
//
// Encoding by kind:
//   - int8/int16/int32: decimal or 0x-prefixed hex, 1/2/4 bytes little-endian
//   - string: UTF-8 bytes, no length prefix
//   - bytes: one byte per hex token, in order
//   - float32: IEEE-754 little-endian; bool: a single 0/1 byte
//
// Decode is the inverse of Encode for every kind. Integers decode to signed
// decimal strings so that JSON output never depends on number precision.
package codec
