// Package imagebin assembles the dual-core firmware bundle used for
// over-the-air updates: a header with the two image sizes followed by the
// application (M4) image and the optional wireless stack (M0) image.
//
//	u32 LE len(m4) | u32 LE len(m0) | m4 | m0
package imagebin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/factorydata/internal/format"
)

// DefaultOutput is the bundle file name used when none is given.
const DefaultOutput = "MatterM4M0.bin"

// HeaderLen is the size of the bundle header.
const HeaderLen = 8

// ErrShortHeader is returned by Parse for data shorter than the header.
var ErrShortHeader = errors.New("imagebin: bundle shorter than header")

// SizeMismatchError reports a header whose image sizes do not add up to the
// bundle length.
type SizeMismatchError struct {
	M4, M0 uint32
	Have   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("imagebin: header declares %d+%d image bytes, bundle carries %d",
		e.M4, e.M0, e.Have)
}

// Bundle is a parsed dual-core image.
type Bundle struct {
	M4 []byte
	M0 []byte
}

// Build assembles a bundle. m0 may be empty.
func Build(m4, m0 []byte) []byte {
	out := make([]byte, 0, HeaderLen+len(m4)+len(m0))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(m4)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(m0)))
	out = append(out, m4...)
	return append(out, m0...)
}

// Parse splits a bundle into its images.
func Parse(data []byte) (Bundle, error) {
	if len(data) < HeaderLen {
		return Bundle{}, ErrShortHeader
	}
	m4 := binary.LittleEndian.Uint32(data[0:4])
	m0 := binary.LittleEndian.Uint32(data[4:8])
	have := len(data) - HeaderLen
	if uint64(m4)+uint64(m0) != uint64(have) {
		return Bundle{}, &SizeMismatchError{M4: m4, M0: m0, Have: have}
	}
	body := data[HeaderLen:]
	return Bundle{
		M4: body[:m4:m4],
		M0: body[m4:],
	}, nil
}

// BuildFiles reads the images, writes the bundle to outPath and returns its
// size. An empty m0Path bundles an empty M0 image; an empty outPath selects
// DefaultOutput.
func BuildFiles(m4Path, m0Path, outPath string) (int, error) {
	if m4Path == "" {
		return 0, errors.New("imagebin: M4 image is required")
	}
	m4, err := os.ReadFile(m4Path)
	if err != nil {
		return 0, fmt.Errorf("imagebin: read M4 image: %w", err)
	}

	var m0 []byte
	if m0Path != "" {
		m0, err = os.ReadFile(m0Path)
		if err != nil {
			return 0, fmt.Errorf("imagebin: read M0 image: %w", err)
		}
	}

	if outPath == "" {
		outPath = DefaultOutput
	}
	bundle := Build(m4, m0)
	if err := format.WriteFileAtomic(outPath, bundle); err != nil {
		return 0, err
	}
	return len(bundle), nil
}
