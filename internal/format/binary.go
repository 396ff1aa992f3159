package format

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/roach88/factorydata/internal/tlv"
)

// RecordHeaderLen is the size of the id and length fields of a record.
const RecordHeaderLen = 8

// ErasedID is the id read from erased (all 0xFF) flash.
const ErasedID = math.MaxUint32

// Record is one raw record of the binary container.
type Record struct {
	Offset int
	ID     uint32
	Value  []byte
}

// DecodeOptions tunes DecodeBinary.
type DecodeOptions struct {
	// StopAtErased ends the scan at a record whose id is ErasedID. Buffers
	// read back from flash are padded with erased bytes after the last record.
	StopAtErased bool
}

// AppendRecord appends one encoded record to dst.
func AppendRecord(dst []byte, id uint32, value []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, id)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(value)))
	return append(dst, value...)
}

// EncodeBinary encodes a snapshot as back-to-back records.
func EncodeBinary(entries []tlv.Entry) []byte {
	size := 0
	for _, e := range entries {
		size += RecordHeaderLen + len(e.Value)
	}
	out := make([]byte, 0, size)
	for _, e := range entries {
		out = AppendRecord(out, e.ID, e.Value)
	}
	return out
}

// WriteBinary writes a snapshot to w in container format.
func WriteBinary(w io.Writer, entries []tlv.Entry) error {
	bw := bufio.NewWriter(w)
	var hdr [RecordHeaderLen]byte
	for _, e := range entries {
		binary.LittleEndian.PutUint32(hdr[0:4], e.ID)
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(e.Value)))
		if _, err := bw.Write(hdr[:]); err != nil {
			return err
		}
		if _, err := bw.Write(e.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveBinaryFile writes a snapshot to path atomically.
func SaveBinaryFile(path string, entries []tlv.Entry) error {
	return WriteFileAtomic(path, EncodeBinary(entries))
}

// DecodeBinary splits data into records. A record cut short anywhere yields
// *TruncatedRecordError and no records.
func DecodeBinary(data []byte, opts DecodeOptions) ([]Record, error) {
	var records []Record
	off := 0
	for off < len(data) {
		rest := len(data) - off
		if opts.StopAtErased && erased(data[off:]) {
			break
		}
		if rest < 4 {
			return nil, &TruncatedRecordError{Offset: off, Field: "id", Need: 4, Have: rest}
		}
		id := binary.LittleEndian.Uint32(data[off:])
		if opts.StopAtErased && id == ErasedID {
			break
		}
		if rest < RecordHeaderLen {
			return nil, &TruncatedRecordError{Offset: off, Field: "length", Need: 4, Have: rest - 4}
		}
		length := binary.LittleEndian.Uint32(data[off+4:])
		have := rest - RecordHeaderLen
		if uint64(length) > uint64(have) {
			return nil, &TruncatedRecordError{Offset: off, Field: "value", Need: int(length), Have: have}
		}
		start := off + RecordHeaderLen
		end := start + int(length)
		records = append(records, Record{Offset: off, ID: id, Value: bytes.Clone(data[start:end])})
		off = end
	}
	return records, nil
}

// erased reports whether b holds nothing but erased flash bytes.
func erased(b []byte) bool {
	for _, c := range b {
		if c != 0xff {
			return false
		}
	}
	return true
}

// ApplyRecords stores every record whose id is registered. Records with an
// unknown id are skipped and reported; their length still delimits the next
// record.
func ApplyRecords(store *tlv.Store, records []Record, actor string) []tlv.Event {
	events := make([]tlv.Event, 0, len(records))
	for _, rec := range records {
		d, err := store.Registry().ReverseLookup(rec.ID)
		if err != nil {
			events = append(events, tlv.Event{Actor: actor, ID: rec.ID, Change: tlv.ChangeSkipped, Err: err})
			continue
		}
		value := rec.Value
		if value == nil {
			value = []byte{}
		}
		events = append(events, store.Put(d, value, actor))
	}
	return events
}

// DecodeInto decodes a container buffer and applies it to the store.
// On *TruncatedRecordError the store is not modified.
func DecodeInto(data []byte, store *tlv.Store, actor string, opts DecodeOptions) ([]tlv.Event, error) {
	records, err := DecodeBinary(data, opts)
	if err != nil {
		return nil, err
	}
	return ApplyRecords(store, records, actor), nil
}

// ReadBinary reads a whole container from r and applies it to the store.
func ReadBinary(r io.Reader, store *tlv.Store, actor string, opts DecodeOptions) ([]tlv.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeInto(data, store, actor, opts)
}

// LoadBinaryFile reads a container file and applies it to the store.
func LoadBinaryFile(path string, store *tlv.Store, actor string) ([]tlv.Event, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeInto(data, store, actor, DecodeOptions{})
}
