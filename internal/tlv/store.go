package tlv

import (
	"maps"
	"slices"

	"github.com/roach88/factorydata/internal/codec"
	"github.com/roach88/factorydata/internal/registry"
)

// Store holds the entries of one run, keyed by parameter id.
//
// Store is not safe for concurrent use; a run is single-threaded.
type Store struct {
	reg     *registry.Registry
	entries map[uint32]Entry
}

// NewStore creates an empty store bound to a registry.
// A nil registry selects registry.Default().
func NewStore(reg *registry.Registry) *Store {
	if reg == nil {
		reg = registry.Default()
	}
	return &Store{reg: reg, entries: make(map[uint32]Entry)}
}

// Registry returns the registry the store resolves names against.
func (s *Store) Registry() *registry.Registry {
	return s.reg
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Get returns a copy of the entry for id.
func (s *Store) Get(id uint32) (Entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return e.Clone(), true
}

// Lookup returns a copy of the entry for a parameter name (aliases allowed).
func (s *Store) Lookup(name string) (Entry, bool) {
	d, err := s.reg.Lookup(name)
	if err != nil {
		return Entry{}, false
	}
	return s.Get(d.ID)
}

// Classify reports what storing value under id would change, without
// mutating the store.
func (s *Store) Classify(id uint32, value []byte) Change {
	prev, ok := s.entries[id]
	return Classify(prev, ok, value)
}

// Set encodes an external value for the named parameter and upserts it.
//
// An unknown name (*registry.UnknownParameterError) or a value the codec
// rejects (*codec.InvalidValueError) leaves the store unchanged. The error is
// returned and also carried by the event, so callers may either stop or
// record the rejection and carry on with the next directive.
func (s *Store) Set(name string, value any, actor string) (Event, error) {
	d, err := s.reg.Lookup(name)
	if err != nil {
		return rejected(actor, name, err), err
	}

	encoded, err := codec.Encode(d.Kind, value)
	if err != nil {
		ev := rejected(actor, d.Name, err)
		ev.ID, ev.Kind = d.ID, d.Kind
		return ev, err
	}

	return s.Put(d, encoded, actor), nil
}

// Put upserts already-encoded bytes for a descriptor. The bytes are stored
// verbatim; no width check is made, so a binary record is kept exactly as read.
func (s *Store) Put(d registry.Descriptor, value []byte, actor string) Event {
	prev, ok := s.entries[d.ID]
	ev := newEvent(actor, d, prev, ok, value)

	entry := Entry{ID: d.ID, Value: value, Kind: d.Kind, Name: d.Name}
	s.entries[d.ID] = entry.Clone()
	return ev
}

// Remove deletes the named parameter. Removing a parameter that is not in
// the store is a no-op reported as ChangeAbsent.
func (s *Store) Remove(name, actor string) (Event, error) {
	d, err := s.reg.Lookup(name)
	if err != nil {
		return rejected(actor, name, err), err
	}

	ev := Event{Actor: actor, Name: d.Name, ID: d.ID, Kind: d.Kind, Change: ChangeAbsent}
	if _, ok := s.entries[d.ID]; ok {
		delete(s.entries, d.ID)
		ev.Change = ChangeRemoved
	}
	return ev, nil
}

// Snapshot returns deep copies of all entries in strictly ascending id order.
func (s *Store) Snapshot() []Entry {
	ids := slices.Sorted(maps.Keys(s.entries))
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = s.entries[id].Clone()
	}
	return out
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	c := NewStore(s.reg)
	for id, e := range s.entries {
		c.entries[id] = e.Clone()
	}
	return c
}

// Restore replaces the contents of s with those of a clone taken earlier.
func (s *Store) Restore(from *Store) {
	s.entries = make(map[uint32]Entry, len(from.entries))
	for id, e := range from.entries {
		s.entries[id] = e.Clone()
	}
}

func rejected(actor, name string, err error) Event {
	return Event{Actor: actor, Name: name, Change: ChangeRejected, Err: err}
}
