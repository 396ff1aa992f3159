package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/roach88/factorydata/internal/format"
)

// DefaultDumpLen is the number of bytes read back from the factory-data
// flash area.
const DefaultDumpLen = 2048

// RawProvider supplies a raw factory-data buffer, typically read back from a
// device's flash.
type RawProvider interface {
	ReadRaw(ctx context.Context) ([]byte, error)
}

// FileDump is a RawProvider backed by a flash dump file.
type FileDump struct {
	Path string
	// Limit caps the number of bytes read. Zero reads the whole file.
	Limit int
}

// NewFileDump returns a provider reading at most limit bytes of path.
func NewFileDump(path string, limit int) *FileDump {
	return &FileDump{Path: path, Limit: limit}
}

// ReadRaw reads the dump. A missing file yields *format.NotFoundError.
func (d *FileDump) ReadRaw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Limit <= 0 {
		return format.ReadFile(d.Path)
	}

	f, err := os.Open(d.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &format.NotFoundError{Path: d.Path, Err: err}
		}
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, int64(d.Limit)))
}

func (d *FileDump) String() string {
	return d.Path
}
