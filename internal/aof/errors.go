package aof

import "errors"

var (
	errShort     = errors.New("aof: short record header")
	errBadMagic  = errors.New("aof: bad magic byte")
	errChecksum  = errors.New("aof: checksum mismatch")
	errTruncated = errors.New("aof: truncated record")
)
