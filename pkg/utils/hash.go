package utils

import (
	"crypto/md5"
	"encoding/binary"
)

// HashUint64 derives a stable numeric seed from a string. Used to synthesize
// consistent company attributes for ids that are not in the store.
func HashUint64(input string) uint64 {
	hash := md5.Sum([]byte(input))
	return binary.BigEndian.Uint64(hash[:8])
}
