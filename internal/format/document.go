package format

import (
	"fmt"

	"github.com/roach88/factorydata/internal/codec"
	"github.com/roach88/factorydata/internal/tlv"
)

// Pair is one name/value directive from a document, in document order.
type Pair struct {
	Name  string
	Value any
}

// Apply sets every pair on the store. A pair that names an unknown parameter
// or carries an invalid value is recorded as a rejected event and the rest of
// the document is still applied.
func Apply(store *tlv.Store, pairs []Pair, actor string) []tlv.Event {
	events := make([]tlv.Event, 0, len(pairs))
	for _, p := range pairs {
		ev, _ := store.Set(p.Name, p.Value, actor)
		events = append(events, ev)
	}
	return events
}

// documentValue is an entry rendered in its external document form.
type documentValue struct {
	Name  string
	Value any // string or []string
}

// documentValues decodes a snapshot to external values.
func documentValues(entries []tlv.Entry) ([]documentValue, error) {
	out := make([]documentValue, 0, len(entries))
	for _, e := range entries {
		v, err := codec.Decode(e.Kind, e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
		out = append(out, documentValue{Name: e.Name, Value: v})
	}
	return out, nil
}
