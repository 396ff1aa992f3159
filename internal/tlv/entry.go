package tlv

import (
	"bytes"

	"github.com/roach88/factorydata/internal/registry"
)

// Entry is one valued parameter held in the Store.
type Entry struct {
	ID    uint32
	Value []byte
	Kind  registry.Kind
	Name  string
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	e.Value = bytes.Clone(e.Value)
	if e.Value == nil {
		e.Value = []byte{}
	}
	return e
}

// Equal reports whether two entries carry the same id, kind, name and bytes.
func (e Entry) Equal(other Entry) bool {
	return e.ID == other.ID &&
		e.Kind == other.Kind &&
		e.Name == other.Name &&
		bytes.Equal(e.Value, other.Value)
}
