package codec

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/factorydata/internal/registry"
)

var errEmptyNumber = errors.New("empty number")

// ParseInt parses a decimal or 0x-prefixed hexadecimal integer with an
// optional sign. Leading zeros are decimal, never octal.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return 0, errEmptyNumber
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	u, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%s out of int64 range", s)
	}
	if neg {
		return -int64(u), nil
	}
	return int64(u), nil
}

// intBounds returns the accepted range for an integer kind: the union of the
// signed and unsigned ranges of its width.
func intBounds(kind registry.Kind) (lo, hi int64) {
	bits := uint(kind.Width() * 8)
	return -(int64(1) << (bits - 1)), int64(1)<<bits - 1
}

func toInt64(kind registry.Kind, v any) (int64, error) {
	switch n := v.(type) {
	case string:
		i, err := ParseInt(n)
		if err != nil {
			return 0, &InvalidValueError{Kind: kind, Value: v, Err: err}
		}
		return i, nil
	case json.Number:
		return toInt64(kind, string(n))
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, invalid(kind, v, "out of range")
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, invalid(kind, v, "not an integer")
		}
		return int64(n), nil
	default:
		return 0, invalid(kind, v, "unsupported type %T", v)
	}
}

func encodeInt(kind registry.Kind, v any) ([]byte, error) {
	i, err := toInt64(kind, v)
	if err != nil {
		return nil, err
	}
	lo, hi := intBounds(kind)
	if i < lo || i > hi {
		return nil, invalid(kind, v, "out of range [%d, %d]", lo, hi)
	}

	u := uint64(i)
	switch kind {
	case registry.KindInt8:
		return []byte{byte(u)}, nil
	case registry.KindInt16:
		return binary.LittleEndian.AppendUint16(nil, uint16(u)), nil
	default:
		return binary.LittleEndian.AppendUint32(nil, uint32(u)), nil
	}
}

// decodeSigned interprets b as a little-endian two's-complement integer.
func decodeSigned(kind registry.Kind, b []byte) (int64, error) {
	if len(b) != kind.Width() {
		return 0, invalid(kind, b, "want %d bytes, got %d", kind.Width(), len(b))
	}
	switch kind {
	case registry.KindInt8:
		return int64(int8(b[0])), nil
	case registry.KindInt16:
		return int64(int16(binary.LittleEndian.Uint16(b))), nil
	default:
		return int64(int32(binary.LittleEndian.Uint32(b))), nil
	}
}

// decodeUnsigned interprets b as a little-endian unsigned integer of any width.
func decodeUnsigned(b []byte) uint64 {
	var u uint64
	for i := len(b) - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return u
}
