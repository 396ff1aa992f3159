package registry

import "fmt"

// Kind is the value type of a parameter. It fixes both the accepted external
// representation and the width of the encoded bytes.
type Kind int

const (
	KindInt8 Kind = iota + 1
	KindInt16
	KindInt32
	KindString
	KindByteArray

	// KindFloat32 and KindBool are understood by the codec but no entry in the
	// default table uses them.
	KindFloat32
	KindBool
)

var kindNames = map[Kind]string{
	KindInt8:      "int8",
	KindInt16:     "int16",
	KindInt32:     "int32",
	KindString:    "string",
	KindByteArray: "bytes",
	KindFloat32:   "float32",
	KindBool:      "bool",
}

// String returns the lowercase kind name used in diagnostics and JSON output.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Width returns the fixed encoded width in bytes, or 0 for variable-length kinds.
func (k Kind) Width() int {
	switch k {
	case KindInt8, KindBool:
		return 1
	case KindInt16:
		return 2
	case KindInt32, KindFloat32:
		return 4
	default:
		return 0
	}
}

// IsInteger reports whether k is one of the fixed-width integer kinds.
func (k Kind) IsInteger() bool {
	return k == KindInt8 || k == KindInt16 || k == KindInt32
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}
