package testutil

import (
	"testing"

	"github.com/roach88/factorydata/internal/tlv"
)

// SampleValues is a representative factory-data set covering every kind in
// the default registry.
var SampleValues = []struct {
	Name  string
	Value any
}{
	{"CERTIFICATION_DECLARATION", []string{"0x30", "0x81", "0xe9", "0x06"}},
	{"SETUP_DISCRIMINATOR", "3840"},
	{"SPAKE2_ITERATION_COUNT", "1000"},
	{"SPAKE2_SALT", []string{"0x53", "0x50", "0x41", "0x4b", "0x45", "0x32"}},
	{"SPAKE2_SETUP_PASSCODE", "20202021"},
	{"VENDOR_NAME", "Acme"},
	{"VENDOR_ID", "0xFFF1"},
	{"PRODUCT_NAME", "Dimmable Light"},
	{"PRODUCT_ID", "0x8004"},
	{"SERIAL_NUMBER", "SN-000123"},
	{"MANUFACTURING_DATE", "2024-03-21"},
	{"HARDWARE_VERSION", "1"},
	{"HARDWARE_VERSION_STRING", "v1.0"},
}

// SampleStore returns a store filled with SampleValues.
func SampleStore(t *testing.T) *tlv.Store {
	t.Helper()

	s := tlv.NewStore(nil)
	for _, v := range SampleValues {
		if _, err := s.Set(v.Name, v.Value, "fixture"); err != nil {
			t.Fatalf("fixture %s: %v", v.Name, err)
		}
	}
	return s
}
