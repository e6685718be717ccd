package server

import (
	"fmt"
	"strings"

	"github.com/kalbasit/ferrumdb/internal/wire"
)

// dispatchClient answers every CLIENT subcommand from connection-local
// state and the process-wide registry. Per spec.md §4.5 these never touch
// a shard.
func (s *Server) dispatchClient(cc *clientContext, args [][]byte) wire.Value {
	if len(args) == 0 {
		return wire.Err("ERR", "wrong number of arguments for 'client' command")
	}

	sub := strings.ToUpper(string(args[0]))
	rest := args[1:]

	switch sub {
	case "SETNAME":
		if len(rest) != 1 {
			return wire.Err("ERR", "wrong number of arguments for 'client|setname' command")
		}

		cc.name = string(rest[0])
		s.registry.setName(cc.id, cc.name)

		return wire.Simple("OK")

	case "GETNAME":
		return wire.BulkString(cc.name)

	case "ID":
		return wire.Int64(cc.id)

	case "SETINFO":
		// Accepted and ignored: lib-name/lib-ver are not recorded and the
		// client's name is left unchanged.
		return wire.Simple("OK")

	case "REPLY":
		if len(rest) != 1 {
			return wire.Err("ERR", "wrong number of arguments for 'client|reply' command")
		}

		switch strings.ToUpper(string(rest[0])) {
		case "ON":
			cc.replyMode = ReplyOn

			return wire.Simple("OK")
		case "OFF":
			cc.replyMode = ReplyOff

			return wire.Value{} // suppressed entirely; caller checks shouldSuppress first
		case "SKIP":
			cc.replyMode = ReplySkip

			return wire.Value{}
		default:
			return wire.Err("ERR", "syntax error")
		}

	case "LIST":
		var b strings.Builder

		for _, c := range s.registry.list() {
			fmt.Fprintf(&b, "id=%d addr=%s name=%s\n", c.ID, c.Addr, c.Name)
		}

		return wire.BulkString(b.String())

	default:
		return wire.Err("ERR", "unknown CLIENT subcommand '"+sub+"'")
	}
}
