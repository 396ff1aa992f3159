package codec

import (
	"fmt"
	"strings"

	"github.com/roach88/factorydata/internal/registry"
)

// DisplayMode selects how a value is rendered in change diagnostics.
type DisplayMode int

const (
	// DisplayNumeric renders width*2 hex digits of the little-endian value
	// followed by its unsigned decimal value.
	DisplayNumeric DisplayMode = iota
	// DisplayString renders the value as text.
	DisplayString
	// DisplayRaw renders the value as a list of hex tokens.
	DisplayRaw
)

// ModeFor returns the display mode used for kind.
func ModeFor(kind registry.Kind) DisplayMode {
	switch kind {
	case registry.KindInt8, registry.KindInt16, registry.KindInt32:
		return DisplayNumeric
	case registry.KindByteArray:
		return DisplayRaw
	default:
		return DisplayString
	}
}

// Display renders an encoded value for diagnostics.
func Display(kind registry.Kind, b []byte) string {
	switch ModeFor(kind) {
	case DisplayNumeric:
		u := decodeUnsigned(b)
		return fmt.Sprintf("0x%0*x (%d)", kind.Width()*2, u, u)
	case DisplayRaw:
		return "[" + strings.Join(HexTokens(b), " ") + "]"
	default:
		if kind == registry.KindString {
			return string(b)
		}
		v, err := Decode(kind, b)
		if err != nil {
			return fmt.Sprintf("%x", b)
		}
		return fmt.Sprint(v)
	}
}
