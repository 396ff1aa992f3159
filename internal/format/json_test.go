package format

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factorydata/internal/registry"
	"github.com/roach88/factorydata/internal/testutil"
	"github.com/roach88/factorydata/internal/tlv"
)

func TestMarshalJSONGolden(t *testing.T) {
	s := testutil.SampleStore(t)
	data, err := MarshalJSON(s.Snapshot())
	require.NoError(t, err)
	testutil.AssertGolden(t, "sample_store.json", data)
}

func TestMarshalJSONEmpty(t *testing.T) {
	data, err := MarshalJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestJSONRoundTrip(t *testing.T) {
	original := testutil.SampleStore(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, original.Snapshot()))

	fresh := tlv.NewStore(nil)
	events, err := ReadJSON(&buf, fresh, "Read Json")
	require.NoError(t, err)
	for _, ev := range events {
		assert.Equal(t, tlv.ChangeNew, ev.Change, ev.String())
	}
	assert.Equal(t, original.Snapshot(), fresh.Snapshot())
}

func TestParseJSONKeepsDocumentOrder(t *testing.T) {
	pairs, err := ParseJSON([]byte(`{"VENDOR_ID": "1", "PRODUCT_ID": "2", "VENDOR_NAME": "Acme"}`))
	require.NoError(t, err)
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"VENDOR_ID", "PRODUCT_ID", "VENDOR_NAME"}, names)
}

func TestReadJSONMalformedDocumentLeavesStore(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax error", `{"VENDOR_ID": "1",`},
		{"not an object", `["VENDOR_ID"]`},
		{"empty", ``},
		{"trailing data", `{"VENDOR_ID": "1"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tlv.NewStore(nil)
			_, err := s.Set("PRODUCT_ID", "2", "setup")
			require.NoError(t, err)
			before := s.Snapshot()

			_, err = ReadJSON(strings.NewReader(tt.doc), s, "Read Json")
			var formatErr *FormatError
			require.True(t, errors.As(err, &formatErr), "got %v", err)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestReadJSONSkipsBadParameters(t *testing.T) {
	doc := `{
		"VENDOR_ID": "1",
		"NOT_A_REAL_PARAM": "1",
		"PRODUCT_ID": "0xZZ",
		"VENDOR_NAME": {"nested": true},
		"SERIAL_NUMBER": "SN-1"
	}`

	s := tlv.NewStore(nil)
	events, err := ReadJSON(strings.NewReader(doc), s, "Read Json")
	require.NoError(t, err)
	require.Len(t, events, 5)

	var rejected int
	for _, ev := range events {
		if ev.Failed() {
			rejected++
		}
	}
	assert.Equal(t, 3, rejected)

	var unknown *registry.UnknownParameterError
	assert.True(t, errors.As(events[1].Err, &unknown))

	assert.Equal(t, 2, s.Len())
	_, ok := s.Lookup("VENDOR_ID")
	assert.True(t, ok)
	_, ok = s.Lookup("SERIAL_NUMBER")
	assert.True(t, ok)
}

func TestReadJSONAcceptsNativeNumbers(t *testing.T) {
	s := tlv.NewStore(nil)
	_, err := ReadJSON(strings.NewReader(`{"VENDOR_ID": 65521}`), s, "Read Json")
	require.NoError(t, err)

	e, ok := s.Lookup("VENDOR_ID")
	require.True(t, ok)
	assert.Equal(t, []byte{0xf1, 0xff}, e.Value)
}

func TestLoadJSONFileNotFound(t *testing.T) {
	s := tlv.NewStore(nil)
	_, err := LoadJSONFile(filepath.Join(t.TempDir(), "missing.json"), s, "Read Json")
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, err.Error(), "missing.json")
}

func TestSaveJSONFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	s := testutil.SampleStore(t)
	require.NoError(t, SaveJSONFile(path, s.Snapshot()))

	fresh := tlv.NewStore(nil)
	_, err := LoadJSONFile(path, fresh, "Read Json")
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), fresh.Snapshot())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files may be left behind")
}

func TestSaveJSONFileFailureLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.json")

	err := SaveJSONFile(path, testutil.SampleStore(t).Snapshot())
	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, path, writeErr.Path)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestMarshalJSONRejectsUndecodableEntry(t *testing.T) {
	s := tlv.NewStore(nil)
	d, err := registry.Default().Lookup("VENDOR_ID")
	require.NoError(t, err)
	s.Put(d, []byte{1, 2, 3}, "Read binary")

	_, err = MarshalJSON(s.Snapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VENDOR_ID")
}
