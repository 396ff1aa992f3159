package tlv

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/factorydata/internal/codec"
	"github.com/roach88/factorydata/internal/registry"
)

// Change classifies the effect of one directive on the Store.
type Change int

const (
	// ChangeNew: the id was absent and has been added.
	ChangeNew Change = iota + 1
	// ChangeUnchanged: the id was present with identical bytes.
	ChangeUnchanged
	// ChangeChanged: the id was present with different bytes.
	ChangeChanged
	// ChangeRemoved: the id was present and has been deleted.
	ChangeRemoved
	// ChangeAbsent: a removal targeted an id that was not present.
	ChangeAbsent
	// ChangeRejected: the directive failed (unknown name, invalid value).
	ChangeRejected
	// ChangeSkipped: a binary record carried an id outside the registry.
	ChangeSkipped
)

var changeNames = map[Change]string{
	ChangeNew:       "new",
	ChangeUnchanged: "unchanged",
	ChangeChanged:   "changed",
	ChangeRemoved:   "removed",
	ChangeAbsent:    "absent",
	ChangeRejected:  "rejected",
	ChangeSkipped:   "skipped",
}

func (c Change) String() string {
	if s, ok := changeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("change(%d)", int(c))
}

// MarshalText lets Change appear by name in JSON output.
func (c Change) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify is the change reporter. It compares the previous entry (if
// present) with the incoming encoded value and has no side effects.
func Classify(prev Entry, present bool, value []byte) Change {
	switch {
	case !present:
		return ChangeNew
	case bytes.Equal(prev.Value, value):
		return ChangeUnchanged
	default:
		return ChangeChanged
	}
}

// Event is the structured diagnostic produced by one directive.
type Event struct {
	Actor  string        `json:"actor"`
	Name   string        `json:"name"`
	ID     uint32        `json:"id,omitempty"`
	Kind   registry.Kind `json:"-"`
	Change Change        `json:"change"`
	Old    string        `json:"old,omitempty"`
	New    string        `json:"new,omitempty"`
	Err    error         `json:"-"`
}

// Failed reports whether the directive was rejected.
func (e Event) Failed() bool {
	return e.Change == ChangeRejected
}

// String renders the event as a one-line diagnostic.
func (e Event) String() string {
	switch e.Change {
	case ChangeNew:
		return fmt.Sprintf("%s set value for %s: %s", e.Actor, e.Name, e.New)
	case ChangeUnchanged:
		return fmt.Sprintf("%s set value for existing %s with no change: %s", e.Actor, e.Name, e.New)
	case ChangeChanged:
		return fmt.Sprintf("%s changed %s from %s to %s", e.Actor, e.Name, e.Old, e.New)
	case ChangeRemoved:
		return fmt.Sprintf("%s removed %s", e.Actor, e.Name)
	case ChangeAbsent:
		return fmt.Sprintf("%s removed %s (not present)", e.Actor, e.Name)
	case ChangeSkipped:
		return fmt.Sprintf("%s skipped record with unknown id %d", e.Actor, e.ID)
	case ChangeRejected:
		return fmt.Sprintf("%s can't set %s: %v", e.Actor, e.Name, e.Err)
	default:
		return fmt.Sprintf("%s %s %s", e.Actor, e.Change, e.Name)
	}
}

func newEvent(actor string, d registry.Descriptor, prev Entry, present bool, value []byte) Event {
	ev := Event{
		Actor:  actor,
		Name:   d.Name,
		ID:     d.ID,
		Kind:   d.Kind,
		Change: Classify(prev, present, value),
		New:    codec.Display(d.Kind, value),
	}
	if ev.Change == ChangeChanged {
		ev.Old = codec.Display(d.Kind, prev.Value)
	}
	return ev
}

// MarshalJSON includes the kind name and the error text, which the plain
// struct tags leave out.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := struct {
		plain
		Kind  string `json:"kind,omitempty"`
		Error string `json:"error,omitempty"`
	}{plain: plain(e)}
	if e.Kind.Valid() {
		out.Kind = e.Kind.String()
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return json.Marshal(out)
}
