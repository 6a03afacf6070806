package cache

import (
	"strconv"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash returns the highwayhash-64 of data.
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	if _, err = h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Digest returns the hex form of Hash, as stored in the file hash ledger.
func Digest(data []byte) (string, error) {
	h, err := Hash(data)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(h, 16), nil
}
