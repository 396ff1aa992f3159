package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factorydata/internal/registry"
)

type material struct {
	certDER []byte
	keyDER  []byte
	pubDER  []byte
}

func newMaterial(t *testing.T) material {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Matter Test DAC"},
		NotBefore:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:     time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	certDER, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	return material{certDER: certDER, keyDER: keyDER, pubDER: pubDER}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadPEMBlocks(t *testing.T) {
	m := newMaterial(t)

	var bundle []byte
	bundle = append(bundle, pem.EncodeToMemory(&pem.Block{Type: registry.PEMPrivateKey, Bytes: m.keyDER})...)
	bundle = append(bundle, pem.EncodeToMemory(&pem.Block{Type: registry.PEMPublicKey, Bytes: m.pubDER})...)
	bundle = append(bundle, pem.EncodeToMemory(&pem.Block{Type: registry.PEMCertificate, Bytes: m.certDER})...)
	path := writeFile(t, "dac.pem", bundle)

	tests := []struct {
		pemType string
		want    []byte
	}{
		{registry.PEMCertificate, m.certDER},
		{registry.PEMPrivateKey, m.keyDER},
		{registry.PEMPublicKey, m.pubDER},
	}
	for _, tt := range tests {
		t.Run(tt.pemType, func(t *testing.T) {
			got, err := Load(path, tt.pemType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadPEMMissingBlock(t *testing.T) {
	m := newMaterial(t)
	path := writeFile(t, "cert.pem", pem.EncodeToMemory(&pem.Block{Type: registry.PEMCertificate, Bytes: m.certDER}))

	_, err := Load(path, registry.PEMPrivateKey)
	var missing *MissingBlockError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, registry.PEMPrivateKey, missing.Type)

	garbage := writeFile(t, "garbage.pem", []byte("not pem at all"))
	_, err = Load(garbage, registry.PEMCertificate)
	assert.True(t, errors.As(err, &missing))
}

func TestLoadDERVerbatim(t *testing.T) {
	m := newMaterial(t)
	path := writeFile(t, "pai.der", m.certDER)

	got, err := Load(path, registry.PEMCertificate)
	require.NoError(t, err)
	assert.Equal(t, m.certDER, got)

	_, err = x509.ParseCertificate(got)
	assert.NoError(t, err)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "dac.crt", []byte("x"))

	_, err := Load(path, registry.PEMCertificate)
	var unsupported *UnsupportedExtensionError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".crt", unsupported.Ext)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.pem"), registry.PEMCertificate)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
