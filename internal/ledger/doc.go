// Package ledger keeps a SQLite history of the factory-data containers a
// provisioning station has written.
//
// Each run stores the container digest, its destination path and a copy of
// every entry, so a device's factory data can be traced back after it has
// left the line.
package ledger
