package aof

import (
	"fmt"
	"io"
	"os"
)

// SyncPolicy controls when a Log forces data to stable storage.
type SyncPolicy int

const (
	// SyncAlways fsyncs after every Append, synchronously with respect to
	// the caller — the client reply waits on it, per spec.md §4.6.
	SyncAlways SyncPolicy = iota
	// SyncEverySec relies on an external 1-second ticker calling Flush;
	// the executor's Append path never blocks on fsync under this policy.
	SyncEverySec
	// SyncNo relies on the OS page cache flushing on its own schedule; no
	// periodic Flush runs, only the final Flush at shutdown and Close.
	SyncNo
)

// ParseSyncPolicy parses the --aof-sync flag value.
func ParseSyncPolicy(s string) (SyncPolicy, error) {
	switch s {
	case "always":
		return SyncAlways, nil
	case "everysec":
		return SyncEverySec, nil
	case "no":
		return SyncNo, nil
	default:
		return 0, fmt.Errorf("aof: unknown sync policy %q", s)
	}
}

func (p SyncPolicy) String() string {
	switch p {
	case SyncAlways:
		return "always"
	case SyncEverySec:
		return "everysec"
	case SyncNo:
		return "no"
	default:
		return "unknown"
	}
}

// Log is one shard's append-only command log.
type Log struct {
	f      *os.File
	policy SyncPolicy
	offset int64
}

// Open opens (creating if necessary) the AOF file at path under policy.
func Open(path string, policy SyncPolicy) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("aof: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("aof: stat %s: %w", path, err)
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()

		return nil, fmt.Errorf("aof: seek to end of %s: %w", path, err)
	}

	return &Log{f: f, policy: policy, offset: info.Size()}, nil
}

// Append writes payload (a RESP2 array-of-bulk command, already
// normalized by the executor) as one checksum-framed record. Under
// SyncAlways it fsyncs before returning; otherwise the write lands in the
// OS page cache and a later Flush (or the OS itself) persists it.
func (l *Log) Append(payload []byte) error {
	rec := encodeRecord(payload)

	if _, err := l.f.Write(rec); err != nil {
		return fmt.Errorf("aof: write: %w", err)
	}

	l.offset += int64(len(rec))

	if l.policy == SyncAlways {
		return l.Flush()
	}

	return nil
}

// Flush forces any buffered writes to stable storage. The shard's
// everysec cron job calls this once a second; SyncAlways calls it inline
// from Append; under every policy the server calls it once more at
// shutdown.
func (l *Log) Flush() error {
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("aof: sync: %w", err)
	}

	return nil
}

// Offset returns the current file size, exposed to metrics as
// LastAOFOffset.
func (l *Log) Offset() int64 { return l.offset }

// Policy reports the log's configured sync policy.
func (l *Log) Policy() SyncPolicy { return l.policy }

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	if err := l.f.Sync(); err != nil {
		l.f.Close()

		return fmt.Errorf("aof: sync on close: %w", err)
	}

	if err := l.f.Close(); err != nil {
		return fmt.Errorf("aof: close: %w", err)
	}

	return nil
}
