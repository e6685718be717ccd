package server

// ReplyMode controls whether a connection's replies are actually written
// back, per the CLIENT REPLY contract.
type ReplyMode int

const (
	// ReplyOn is the default: every reply is written.
	ReplyOn ReplyMode = iota
	// ReplyOff suppresses every reply until REPLY ON.
	ReplyOff
	// ReplySkip suppresses exactly the next reply, then reverts to ReplyOn.
	ReplySkip
)

// clientContext is the connection-local state a connection handler owns:
// its registry identity and its reply mode. It never touches any shard.
type clientContext struct {
	id        int64
	name      string
	replyMode ReplyMode
}

// shouldSuppress reports whether the reply about to be sent must be
// dropped, and advances ReplySkip back to ReplyOn after consuming it.
func (c *clientContext) shouldSuppress() bool {
	switch c.replyMode {
	case ReplyOff:
		return true
	case ReplySkip:
		c.replyMode = ReplyOn

		return true
	default:
		return false
	}
}
