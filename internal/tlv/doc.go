// Package tlv holds the in-memory factory-data store for one run.
//
// A Store maps parameter ids to Entries. Every mutation goes through three
// separate stages:
//
//	encode (codec) -> classify (Classify) -> upsert
//
// Classification compares the incoming bytes with the stored bytes and yields
// an Event describing the outcome. Events are returned to the caller; the
// store never prints. Snapshot is the only read-out used by writers and is
// always in ascending id order.
package tlv
