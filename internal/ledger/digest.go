package ledger

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/roach88/factorydata/internal/format"
	"github.com/roach88/factorydata/internal/tlv"
)

// DomainContainer prefixes container digests. The version suffix allows the
// encoding to change without colliding with older digests.
const DomainContainer = "factorydata/container/v1"

// Digest returns the hex SHA-256 of the binary container for a snapshot.
// Format: SHA256(domain + 0x00 + container)
func Digest(entries []tlv.Entry) string {
	h := sha256.New()
	h.Write([]byte(DomainContainer))
	h.Write([]byte{0x00})
	h.Write(format.EncodeBinary(entries))
	return hex.EncodeToString(h.Sum(nil))
}
