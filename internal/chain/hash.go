package chain

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/chainx-org/ChainX-sub003/internal/kv"
)

// nextAppHash chains the hash of the previous block with the height and the
// block's write set, which must be sorted by key.
func nextAppHash(prev []byte, height int64, changes []kv.Change) []byte {
	h := sha256.New()
	h.Write(prev)
	writeUint64(h, uint64(height))
	for _, ch := range changes {
		writeBytes(h, ch.Key)
		if ch.Delete {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		writeBytes(h, ch.Value)
	}
	return h.Sum(nil)
}

func writeUint64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

func writeBytes(h hash.Hash, bz []byte) {
	writeUint64(h, uint64(len(bz)))
	h.Write(bz)
}
