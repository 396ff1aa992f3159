package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProfile = `
ledger = "provision.db"
strict = true
remove = ["ROTATING_DEVICE_ID", " "]

[inputs]
json = "base.json"
flash_dump = "/abs/dump.bin"
flash_dump_len = 4096

[outputs]
binary = "out/factory.bin"

[set]
VENDOR_ID = "0xFFF1"
PRODUCT_ID = 32772
SPAKE2_SALT = ["0x53", "0x50"]

[files]
DEVICE_ATTESTATION_CERTIFICATE = "certs/dac.pem"
PAI_CERTIFICATE = "certs/pai.der"
`

func TestDecode(t *testing.T) {
	p, err := Decode(strings.NewReader(sampleProfile))
	require.NoError(t, err)

	assert.Equal(t, "provision.db", p.Ledger)
	assert.True(t, p.Strict)
	assert.Equal(t, []string{"ROTATING_DEVICE_ID"}, p.Remove)
	assert.Equal(t, "base.json", p.Inputs.JSON)
	assert.Equal(t, 4096, p.Inputs.FlashDumpLen)
	assert.Equal(t, "out/factory.bin", p.Outputs.Binary)

	require.Len(t, p.Set, 3)
	assert.Equal(t, Assignment{Name: "VENDOR_ID", Value: "0xFFF1"}, p.Set[0])
	assert.Equal(t, Assignment{Name: "PRODUCT_ID", Value: int64(32772)}, p.Set[1])
	assert.Equal(t, "SPAKE2_SALT", p.Set[2].Name)
	assert.Equal(t, []any{"0x53", "0x50"}, p.Set[2].Value)

	require.Len(t, p.Files, 2)
	assert.Equal(t, "DEVICE_ATTESTATION_CERTIFICATE", p.Files[0].Name)
	assert.Equal(t, "PAI_CERTIFICATE", p.Files[1].Name)
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "station.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleProfile), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "provision.db"), p.Ledger)
	assert.Equal(t, filepath.Join(dir, "base.json"), p.Inputs.JSON)
	assert.Equal(t, "/abs/dump.bin", p.Inputs.FlashDump)
	assert.Equal(t, filepath.Join(dir, "out/factory.bin"), p.Outputs.Binary)
	assert.Equal(t, filepath.Join(dir, "certs/dac.pem"), p.Files[0].Value)
	assert.Empty(t, p.Outputs.JSON)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("[inputs]\njsn = \"a.json\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inputs.jsn")
}

func TestDecodeRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "ledger = \n"},
		{"negative dump length", "[inputs]\nflash_dump_len = -1\n"},
		{"empty file path", "[files]\nPAI_CERTIFICATE = \"\"\n"},
		{"wrong type", "strict = \"yes\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	p, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, p.Set)
	assert.Empty(t, p.Files)
	assert.False(t, p.Strict)
}
