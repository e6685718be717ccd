package aof

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Replay walks the log from its start, verifying each record's checksum
// and invoking apply with the raw RESP2 array-of-bulk payload in commit
// order. It does not re-append anything to the log itself.
//
// A bad checksum or a truncated tail record stops replay at that point —
// it is not escalated as an error — and the file is truncated to the last
// verified record boundary, so a subsequent Append starts from a clean
// offset. Replay returns the count of records successfully applied.
func (l *Log) Replay(apply func(payload []byte) error) (int, error) {
	if _, err := l.f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("aof: seek to start: %w", err)
	}

	data, err := io.ReadAll(l.f)
	if err != nil {
		return 0, fmt.Errorf("aof: read: %w", err)
	}

	applied := 0
	goodOffset := int64(0)
	pos := 0

	for pos < len(data) {
		payload, consumed, recErr := readRecord(data[pos:])
		if recErr != nil {
			break
		}

		if err := apply(payload); err != nil {
			return applied, fmt.Errorf("aof: apply record %d: %w", applied, err)
		}

		applied++
		pos += consumed
		goodOffset = int64(pos)
	}

	if goodOffset != int64(len(data)) {
		if err := l.f.Truncate(goodOffset); err != nil {
			return applied, fmt.Errorf("aof: truncate to %d: %w", goodOffset, err)
		}
	}

	if _, err := l.f.Seek(0, io.SeekEnd); err != nil {
		return applied, fmt.Errorf("aof: seek to end: %w", err)
	}

	l.offset = goodOffset

	return applied, nil
}

// readRecord decodes one record from the front of buf, returning its
// payload and the number of bytes it occupies. An incomplete trailing
// record or a checksum mismatch is reported as errTruncated/errChecksum,
// both of which Replay treats as "stop here," not a fatal error.
func readRecord(buf []byte) (payload []byte, consumed int, err error) {
	payloadLen, err := decodeRecordHeader(buf)
	if err != nil {
		if errors.Is(err, errShort) {
			return nil, 0, errTruncated
		}

		return nil, 0, err
	}

	total := headerLen + int(payloadLen) + trailerLen
	if len(buf) < total {
		return nil, 0, errTruncated
	}

	p := buf[headerLen : headerLen+int(payloadLen)]
	checksum := binary.LittleEndian.Uint64(buf[headerLen+int(payloadLen) : total])

	if !verifyChecksum(p, checksum) {
		return nil, 0, errChecksum
	}

	out := make([]byte, len(p))
	copy(out, p)

	return out, total, nil
}
