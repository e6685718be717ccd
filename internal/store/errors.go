package store

// Error is a command-level failure: it carries the short RESP2 error tag
// (WRONGTYPE, ERR, SYNTAX) alongside the human-readable message, so the
// caller at the wire boundary can render it as "-TAG message\r\n" without
// re-deriving the tag from the error text.
type Error struct {
	Tag string
	Msg string
}

func (e *Error) Error() string { return e.Tag + " " + e.Msg }

func newError(tag, msg string) *Error { return &Error{Tag: tag, Msg: msg} }

// Sentinel errors shared across every command that can hit them.
var (
	ErrWrongType   = newError("WRONGTYPE", "Operation against a key holding the wrong kind of value")
	ErrNotInteger  = newError("ERR", "value is not an integer or out of range")
	ErrSyntax      = newError("SYNTAX", "syntax error")
	ErrOutOfRange  = newError("ERR", "increment or decrement would overflow")
	ErrNotSameShard = newError("ERR", "keys not in same shard")
)
