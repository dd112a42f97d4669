package core

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint is a content hash over every persisted field of an item
// except UpdatedAt. Identical content produces identical fingerprints.
type Fingerprint uint64

// FingerprintOf hashes the item content using BLAKE2b.
func FingerprintOf(item *CatalogItem) Fingerprint {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	for _, field := range []string{
		item.ID, item.Title, string(item.Gender), item.Composition,
		item.Sleeve, item.Photo, item.URL,
	} {
		h.Write([]byte(strconv.Itoa(len(field))))
		h.Write([]byte{':'})
		h.Write([]byte(field))
	}
	if item.Color != nil {
		h.Write([]byte("color:" + item.Color.String()))
	} else {
		h.Write([]byte("nocolor"))
	}
	return Fingerprint(binary.LittleEndian.Uint64(h.Sum(nil)))
}
