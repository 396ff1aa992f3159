package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factorydata/internal/registry"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"4660", 4660},
		{"0x1234", 0x1234},
		{"0X00ff", 255},
		{"-1", -1},
		{"+7", 7},
		{"010", 10},
		{" 42 ", 42},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInt(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "-", "0x", "12ab", "0xZZ", "1.5", "0b101"} {
		_, err := ParseInt(bad)
		assert.Error(t, err, "ParseInt(%q)", bad)
	}
}

func TestEncodeIntegers(t *testing.T) {
	tests := []struct {
		name string
		kind registry.Kind
		in   any
		want []byte
	}{
		{"int8 decimal", registry.KindInt8, "7", []byte{0x07}},
		{"int8 unsigned max", registry.KindInt8, "255", []byte{0xff}},
		{"int8 negative", registry.KindInt8, "-1", []byte{0xff}},
		{"int16 little endian", registry.KindInt16, "4660", []byte{0x34, 0x12}},
		{"int16 hex", registry.KindInt16, "0xFFF1", []byte{0xf1, 0xff}},
		{"int32 little endian", registry.KindInt32, "20202021", []byte{0x25, 0x3f, 0x34, 0x01}},
		{"int32 hex", registry.KindInt32, "0x000003e8", []byte{0xe8, 0x03, 0x00, 0x00}},
		{"json number", registry.KindInt16, json.Number("3840"), []byte{0x00, 0x0f}},
		{"native int64", registry.KindInt32, int64(1000), []byte{0xe8, 0x03, 0x00, 0x00}},
		{"integral float", registry.KindInt16, float64(2), []byte{0x02, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.kind, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeIntegerRejectsMalformedAndOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		kind registry.Kind
		in   any
	}{
		{"int8 overflow", registry.KindInt8, "256"},
		{"int8 underflow", registry.KindInt8, "-129"},
		{"int16 overflow", registry.KindInt16, "0x10000"},
		{"int32 overflow", registry.KindInt32, "4294967296"},
		{"garbage", registry.KindInt16, "twelve"},
		{"fractional", registry.KindInt16, 1.5},
		{"list", registry.KindInt32, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.kind, tt.in)
			var invalid *InvalidValueError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.kind, invalid.Kind)
		})
	}
}

func TestRoundTripPerKind(t *testing.T) {
	tests := []struct {
		name  string
		kind  registry.Kind
		value any
		bytes []byte
	}{
		{"int8", registry.KindInt8, "-5", []byte{0xfb}},
		{"int16", registry.KindInt16, "4660", []byte{0x34, 0x12}},
		{"int32", registry.KindInt32, "-2", []byte{0xfe, 0xff, 0xff, 0xff}},
		{"string", registry.KindString, "Acme", []byte("Acme")},
		{"utf8 string", registry.KindString, "Zürich", []byte("Zürich")},
		{"bytes", registry.KindByteArray, []string{"0xde", "0xad"}, []byte{0xde, 0xad}},
		{"empty bytes", registry.KindByteArray, []string{}, []byte{}},
		{"float32", registry.KindFloat32, "1.5", []byte{0x00, 0x00, 0xc0, 0x3f}},
		{"bool", registry.KindBool, "true", []byte{0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.kind, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.bytes, encoded)

			decoded, err := Decode(tt.kind, encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.value, decoded)
		})
	}
}

func TestEncodeBytesTokenForms(t *testing.T) {
	got, err := Encode(registry.KindByteArray, []any{"0x01", "AB", "f"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xab, 0x0f}, got)

	raw := []byte{1, 2, 3}
	got, err = Encode(registry.KindByteArray, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	got[0] = 9
	assert.Equal(t, byte(1), raw[0], "Encode must copy raw input")
}

func TestEncodeBytesRejectsBadTokens(t *testing.T) {
	for _, in := range []any{
		[]string{"0xzz"},
		[]string{""},
		[]string{"0x100"},
		[]any{"0x01", 2},
		"0x0102",
	} {
		_, err := Encode(registry.KindByteArray, in)
		var invalid *InvalidValueError
		assert.True(t, errors.As(err, &invalid), "Encode(%v) = %v", in, err)
	}
}

func TestEncodeStringRejectsNonText(t *testing.T) {
	_, err := Encode(registry.KindString, 12)
	var invalid *InvalidValueError
	require.True(t, errors.As(err, &invalid))

	_, err = Encode(registry.KindString, string([]byte{0xff, 0xfe}))
	require.True(t, errors.As(err, &invalid))
}

func TestDecodeIntegersAreSigned(t *testing.T) {
	got, err := Decode(registry.KindInt16, []byte{0xf1, 0xff})
	require.NoError(t, err)
	assert.Equal(t, "-15", got)

	back, err := Encode(registry.KindInt16, got)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xf1, 0xff}, back)
	assert.Equal(t, "0xfff1 (65521)", Display(registry.KindInt16, back))
}

func TestDecodeRejectsWrongWidth(t *testing.T) {
	_, err := Decode(registry.KindInt16, []byte{1})
	var invalid *InvalidValueError
	require.True(t, errors.As(err, &invalid))

	_, err = Decode(registry.KindInt32, []byte{1, 2})
	require.True(t, errors.As(err, &invalid))

	_, err = Decode(registry.KindBool, []byte{2})
	require.True(t, errors.As(err, &invalid))

	_, err = Decode(registry.KindString, []byte{0xff})
	require.True(t, errors.As(err, &invalid))
}

func TestDisplayWidthsMatchEncodedWidth(t *testing.T) {
	assert.Equal(t, "0x07 (7)", Display(registry.KindInt8, []byte{0x07}))
	assert.Equal(t, "0x1234 (4660)", Display(registry.KindInt16, []byte{0x34, 0x12}))
	assert.Equal(t, "0x000003e8 (1000)", Display(registry.KindInt32, []byte{0xe8, 0x03, 0, 0}))
	assert.Equal(t, "Acme", Display(registry.KindString, []byte("Acme")))
	assert.Equal(t, "[0xde 0xad]", Display(registry.KindByteArray, []byte{0xde, 0xad}))
	assert.Equal(t, "true", Display(registry.KindBool, []byte{1}))
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, DisplayNumeric, ModeFor(registry.KindInt32))
	assert.Equal(t, DisplayString, ModeFor(registry.KindString))
	assert.Equal(t, DisplayRaw, ModeFor(registry.KindByteArray))
}
