package registry

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// PEM block types expected when a ByteArray parameter is loaded from a file.
const (
	PEMCertificate = "CERTIFICATE"
	PEMPublicKey   = "PUBLIC KEY"
	PEMPrivateKey  = "PRIVATE KEY"
)

// Descriptor is the static definition of one parameter.
type Descriptor struct {
	Name string `json:"name"`
	ID   uint32 `json:"id"`
	Kind Kind   `json:"kind"`

	// PEM is the block type to extract when the value is supplied as a
	// certificate or key file. Empty for non-ByteArray parameters.
	PEM string `json:"pem,omitempty"`
}

// Registry resolves parameter names and ids to descriptors.
// A Registry is immutable after construction and safe to share.
type Registry struct {
	byID    map[uint32]Descriptor
	byName  map[string]Descriptor
	byAlias map[string]Descriptor
	ordered []Descriptor
}

// New builds a registry from a descriptor table.
// Returns *DuplicateError if two descriptors share an id, a name, or an alias key.
func New(table []Descriptor) (*Registry, error) {
	r := &Registry{
		byID:    make(map[uint32]Descriptor, len(table)),
		byName:  make(map[string]Descriptor, len(table)),
		byAlias: make(map[string]Descriptor, len(table)),
	}

	for _, d := range table {
		if d.Name == "" {
			return nil, fmt.Errorf("registry: descriptor with id %d has no name", d.ID)
		}
		if !d.Kind.Valid() {
			return nil, fmt.Errorf("registry: %s has invalid kind %d", d.Name, int(d.Kind))
		}
		if prev, ok := r.byID[d.ID]; ok {
			return nil, &DuplicateError{Field: "id", Value: fmt.Sprint(d.ID), First: prev.Name, Second: d.Name}
		}
		if prev, ok := r.byName[d.Name]; ok {
			return nil, &DuplicateError{Field: "name", Value: d.Name, First: prev.Name, Second: d.Name}
		}
		key := AliasKey(d.Name)
		if prev, ok := r.byAlias[key]; ok {
			return nil, &DuplicateError{Field: "alias", Value: key, First: prev.Name, Second: d.Name}
		}
		r.byID[d.ID] = d
		r.byName[d.Name] = d
		r.byAlias[key] = d
		r.ordered = append(r.ordered, d)
	}

	slices.SortFunc(r.ordered, func(a, b Descriptor) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return r, nil
}

// MustNew is like New but panics on an invalid table.
// A bad built-in table is a programming error, not an input error.
func MustNew(table []Descriptor) *Registry {
	r, err := New(table)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup resolves a parameter by name. The exact registry name matches first;
// otherwise the alias key (case-folded, '_' and '-' removed) is tried, so
// "vendorId", "vendor-id" and "VENDOR_ID" all resolve to VENDOR_ID.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	if d, ok := r.byName[name]; ok {
		return d, nil
	}
	if d, ok := r.byAlias[AliasKey(name)]; ok {
		return d, nil
	}
	return Descriptor{}, &UnknownParameterError{Name: name}
}

// ReverseLookup resolves a parameter by wire id.
func (r *Registry) ReverseLookup(id uint32) (Descriptor, error) {
	if d, ok := r.byID[id]; ok {
		return d, nil
	}
	return Descriptor{}, &UnknownIDError{ID: id}
}

// Descriptors returns all descriptors in ascending id order.
func (r *Registry) Descriptors() []Descriptor {
	return slices.Clone(r.ordered)
}

// Len returns the number of registered parameters.
func (r *Registry) Len() int {
	return len(r.ordered)
}

var aliasReplacer = strings.NewReplacer("_", "", "-", "")

// AliasKey returns the lookup key for a parameter name.
func AliasKey(name string) string {
	// A Caser keeps state between calls, so each call gets its own.
	key := cases.Fold().String(strings.TrimSpace(name))
	return aliasReplacer.Replace(key)
}
