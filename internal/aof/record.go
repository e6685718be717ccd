// Package aof implements the per-shard append-only command log: a
// checksum-framed record format, a configurable fsync policy, and startup
// replay with truncate-on-corruption recovery.
package aof

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// magic is the fixed sentinel byte that opens every record, constant for
// this implementation's lifetime per spec.md §6.
const magic byte = 0xF5

// headerLen is magic(1) + payload length(4).
const headerLen = 1 + 4

// trailerLen is the trailing checksum(8).
const trailerLen = 8

// encodeRecord frames payload as <magic><len:u32 LE><payload><checksum:u64 LE>.
func encodeRecord(payload []byte) []byte {
	buf := make([]byte, headerLen+len(payload)+trailerLen)
	buf[0] = magic
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(payload)))
	copy(buf[headerLen:], payload)

	sum := xxhash.Sum64(payload)
	binary.LittleEndian.PutUint64(buf[headerLen+len(payload):], sum)

	return buf
}

// decodeRecordHeader validates the magic byte and returns the declared
// payload length from a buffer positioned at the start of a record.
func decodeRecordHeader(buf []byte) (payloadLen uint32, err error) {
	if len(buf) < headerLen {
		return 0, errShort
	}

	if buf[0] != magic {
		return 0, fmt.Errorf("%w: got %#x, want %#x", errBadMagic, buf[0], magic)
	}

	return binary.LittleEndian.Uint32(buf[1:5]), nil
}

// verifyChecksum reports whether checksum, as read from the trailer,
// matches the xxhash64 digest of payload.
func verifyChecksum(payload []byte, checksum uint64) bool {
	return xxhash.Sum64(payload) == checksum
}
