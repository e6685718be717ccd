package shard

import "github.com/kalbasit/ferrumdb/internal/wire"

// WorkItem is one command enqueued to a shard's executor: the command name
// (already upper-cased), its arguments (everything after the command
// name), and the channel the executor replies on. Multi-key commands that
// span several shards are split into one WorkItem per shard by the caller
// before being enqueued — a Shard only ever sees the keys that route to it.
type WorkItem struct {
	Cmd   string
	Args  [][]byte
	Reply chan wire.Value
}

// NewWorkItem builds a WorkItem with a freshly allocated reply channel
// buffered for exactly one Value, so the executor's send never blocks even
// if the requester has stopped waiting.
func NewWorkItem(cmd string, args [][]byte) WorkItem {
	return WorkItem{Cmd: cmd, Args: args, Reply: make(chan wire.Value, 1)}
}
