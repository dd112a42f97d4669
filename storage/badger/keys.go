package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	catalogItemPrefix = "item:"
	jobPrefix         = "job:"
	jobIDSeq          = "jobseq"
)

// makeItemKey generates a key for a catalog item by identity.
// Keys sort in identity order, which the paged scan relies on.
func makeItemKey(id string) []byte {
	buf := make([]byte, 0, len(catalogItemPrefix)+len(id))
	buf = append(buf, catalogItemPrefix...)
	return append(buf, id...)
}

// itemIDFromKey strips the prefix from a catalog item key.
func itemIDFromKey(key []byte) string {
	return string(key[len(catalogItemPrefix):])
}

// makeJobKey generates a key for a job by ID.
// Format: prefix + 8 byte big-endian ID, so keys sort numerically.
func makeJobKey(id uint64) []byte {
	buf := make([]byte, len(jobPrefix)+8)
	offset := copy(buf, jobPrefix)
	binary.BigEndian.PutUint64(buf[offset:], id)
	return buf
}
