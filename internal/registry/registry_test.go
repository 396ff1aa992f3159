package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableIsValid(t *testing.T) {
	r := Default()
	assert.Equal(t, len(DefaultTable), r.Len())

	descs := r.Descriptors()
	for i := 1; i < len(descs); i++ {
		assert.Less(t, descs[i-1].ID, descs[i].ID, "descriptors must be ascending by id")
	}
}

func TestLookupExactAndAlias(t *testing.T) {
	r := Default()

	tests := []struct {
		input string
		want  string
	}{
		{"VENDOR_ID", "VENDOR_ID"},
		{"vendorId", "VENDOR_ID"},
		{"vendor-id", "VENDOR_ID"},
		{"vendorid", "VENDOR_ID"},
		{"  Spake2_Salt ", "SPAKE2_SALT"},
		{"paiCertificate", "PAI_CERTIFICATE"},
		{"DeviceAttestationPrivKey", "DEVICE_ATTESTATION_PRIV_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := r.Lookup(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Default().Lookup("NOT_A_REAL_PARAM")
	require.Error(t, err)

	var unknown *UnknownParameterError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "NOT_A_REAL_PARAM", unknown.Name)
	assert.Contains(t, err.Error(), "unknown parameter")
}

func TestReverseLookup(t *testing.T) {
	r := Default()

	d, err := r.ReverseLookup(22)
	require.NoError(t, err)
	assert.Equal(t, "VENDOR_ID", d.Name)
	assert.Equal(t, KindInt16, d.Kind)

	_, err = r.ReverseLookup(9999)
	var unknown *UnknownIDError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, uint32(9999), unknown.ID)
}

func TestReverseLookupCoversEveryDescriptor(t *testing.T) {
	r := Default()
	for _, d := range DefaultTable {
		got, err := r.ReverseLookup(d.ID)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		table []Descriptor
		field string
	}{
		{
			name: "duplicate id",
			table: []Descriptor{
				{Name: "A", ID: 1, Kind: KindInt8},
				{Name: "B", ID: 1, Kind: KindInt8},
			},
			field: "id",
		},
		{
			name: "duplicate name",
			table: []Descriptor{
				{Name: "A", ID: 1, Kind: KindInt8},
				{Name: "A", ID: 2, Kind: KindInt8},
			},
			field: "name",
		},
		{
			name: "colliding alias",
			table: []Descriptor{
				{Name: "FOO_BAR", ID: 1, Kind: KindInt8},
				{Name: "FOOBAR", ID: 2, Kind: KindInt8},
			},
			field: "alias",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.table)
			var dup *DuplicateError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, tt.field, dup.Field)
		})
	}
}

func TestNewRejectsInvalidKind(t *testing.T) {
	_, err := New([]Descriptor{{Name: "A", ID: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kind")
}

func TestMustNewPanicsOnDuplicateID(t *testing.T) {
	assert.Panics(t, func() {
		MustNew([]Descriptor{
			{Name: "A", ID: 7, Kind: KindInt8},
			{Name: "B", ID: 7, Kind: KindInt16},
		})
	})
}

func TestKindWidthAndNames(t *testing.T) {
	assert.Equal(t, 1, KindInt8.Width())
	assert.Equal(t, 2, KindInt16.Width())
	assert.Equal(t, 4, KindInt32.Width())
	assert.Equal(t, 0, KindString.Width())
	assert.Equal(t, 0, KindByteArray.Width())

	for _, k := range []Kind{KindInt8, KindInt16, KindInt32, KindString, KindByteArray, KindFloat32, KindBool} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("uint128")
	assert.Error(t, err)
	assert.Equal(t, "kind(99)", Kind(99).String())
}
