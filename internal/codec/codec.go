package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/factorydata/internal/registry"
)

// Encode converts an external value to the byte encoding of kind.
// Returns *InvalidValueError when the value does not fit the kind.
func Encode(kind registry.Kind, v any) ([]byte, error) {
	switch kind {
	case registry.KindInt8, registry.KindInt16, registry.KindInt32:
		return encodeInt(kind, v)
	case registry.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, invalid(kind, v, "want text, got %T", v)
		}
		if !utf8.ValidString(s) {
			return nil, invalid(kind, v, "not valid UTF-8")
		}
		return []byte(s), nil
	case registry.KindByteArray:
		return encodeBytes(v)
	case registry.KindFloat32:
		return encodeFloat(v)
	case registry.KindBool:
		return encodeBool(v)
	default:
		return nil, invalid(kind, v, "unsupported kind")
	}
}

// Decode converts an encoded value back to its external form:
// a string for scalar kinds and a []string of 0xhh tokens for bytes.
// Integers decode as signed decimal, so a VENDOR_ID of 0xFFF1 reads back as
// "-15"; Encode accepts that form and produces the same bytes.
func Decode(kind registry.Kind, b []byte) (any, error) {
	switch kind {
	case registry.KindInt8, registry.KindInt16, registry.KindInt32:
		i, err := decodeSigned(kind, b)
		if err != nil {
			return nil, err
		}
		return strconv.FormatInt(i, 10), nil
	case registry.KindString:
		if !utf8.Valid(b) {
			return nil, invalid(kind, b, "not valid UTF-8")
		}
		return string(b), nil
	case registry.KindByteArray:
		return HexTokens(b), nil
	case registry.KindFloat32:
		if len(b) != 4 {
			return nil, invalid(kind, b, "want 4 bytes, got %d", len(b))
		}
		f := math.Float32frombits(binary.LittleEndian.Uint32(b))
		return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
	case registry.KindBool:
		if len(b) != 1 || b[0] > 1 {
			return nil, invalid(kind, b, "want a single 0 or 1 byte")
		}
		return strconv.FormatBool(b[0] == 1), nil
	default:
		return nil, invalid(kind, b, "unsupported kind")
	}
}

// HexTokens renders bytes as 0x-prefixed two-digit lowercase tokens.
func HexTokens(b []byte) []string {
	tokens := make([]string, len(b))
	for i, c := range b {
		tokens[i] = fmt.Sprintf("0x%02x", c)
	}
	return tokens
}

// ParseHexToken parses one byte token such as "0x1a", "1A" or "7".
func ParseHexToken(tok string) (byte, error) {
	s := strings.TrimSpace(tok)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, fmt.Errorf("empty token %q", tok)
	}
	u, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("token %q: %w", tok, err)
	}
	if u > 0xff {
		return 0, fmt.Errorf("token %q does not fit in a byte", tok)
	}
	return byte(u), nil
}

func encodeBytes(v any) ([]byte, error) {
	kind := registry.KindByteArray
	switch tokens := v.(type) {
	case []byte:
		return append([]byte(nil), tokens...), nil
	case []string:
		out := make([]byte, len(tokens))
		for i, tok := range tokens {
			b, err := ParseHexToken(tok)
			if err != nil {
				return nil, &InvalidValueError{Kind: kind, Value: v, Err: fmt.Errorf("index %d: %w", i, err)}
			}
			out[i] = b
		}
		return out, nil
	case []any:
		strs := make([]string, len(tokens))
		for i, tok := range tokens {
			s, ok := tok.(string)
			if !ok {
				return nil, invalid(kind, v, "index %d: want hex token, got %T", i, tok)
			}
			strs[i] = s
		}
		return encodeBytes(strs)
	default:
		return nil, invalid(kind, v, "want a list of hex tokens, got %T", v)
	}
}

func encodeFloat(v any) ([]byte, error) {
	kind := registry.KindFloat32
	var f float64
	switch n := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 32)
		if err != nil {
			return nil, &InvalidValueError{Kind: kind, Value: v, Err: err}
		}
		f = parsed
	case json.Number:
		return encodeFloat(string(n))
	case float32:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil, invalid(kind, v, "unsupported type %T", v)
	}
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(f))), nil
}

func encodeBool(v any) ([]byte, error) {
	kind := registry.KindBool
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil, &InvalidValueError{Kind: kind, Value: v, Err: err}
		}
		b = parsed
	default:
		return nil, invalid(kind, v, "unsupported type %T", v)
	}
	if b {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}
