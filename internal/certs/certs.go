// Package certs loads certificates and keys for ByteArray parameters.
//
// A .pem file is scanned for the first block of the requested type and the
// block's DER payload is returned. A .der file is returned as is.
package certs

import (
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MissingBlockError is returned when a PEM file has no block of the
// requested type.
type MissingBlockError struct {
	Path string
	Type string
}

func (e *MissingBlockError) Error() string {
	return fmt.Sprintf("certs: %s: no %q block", e.Path, e.Type)
}

// UnsupportedExtensionError is returned for files that are neither .pem
// nor .der.
type UnsupportedExtensionError struct {
	Path string
	Ext  string
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("certs: %s: unsupported extension %q (want .pem or .der)", e.Path, e.Ext)
}

// Load returns the DER bytes stored in path. pemType names the PEM block to
// extract, e.g. "CERTIFICATE"; it is ignored for .der files.
func Load(path, pemType string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pem" && ext != ".der" {
		return nil, &UnsupportedExtensionError{Path: path, Ext: filepath.Ext(path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("certs: read %s: %w", path, err)
	}
	if ext == ".der" {
		return data, nil
	}
	return Decode(path, data, pemType)
}

// Decode extracts the first pemType block from PEM text. Blocks of other
// types are skipped.
func Decode(path string, data []byte, pemType string) ([]byte, error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, &MissingBlockError{Path: path, Type: pemType}
		}
		if block.Type == pemType {
			return block.Bytes, nil
		}
	}
}
