package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kalbasit/ferrumdb/internal/wire"
)

const readChunkSize = 4096

// acceptLoop accepts connections until ctx is canceled or the listener is
// closed by shutdown().
func (s *Server) acceptLoop(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			var netErr *net.OpError
			if errors.As(err, &netErr) && netErr.Op == "accept" {
				return nil
			}

			logger.Warn().Err(err).Msg("accept failed")

			continue
		}

		go s.handleConn(ctx, conn)
	}
}

// handleConn owns one connection's decode buffer and client-metadata
// record for its lifetime, per spec.md §3's connection lifecycle.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	logger := zerolog.Ctx(ctx).With().Str("remote", conn.RemoteAddr().String()).Logger()
	ctx = logger.WithContext(ctx)

	info := s.registry.register(conn.RemoteAddr().String())
	defer s.registry.unregister(info.ID)

	cc := &clientContext{id: info.ID}

	defer conn.Close()

	w := bufio.NewWriter(conn)
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}

		for {
			v, consumed, decErr := wire.Decode(buf)
			if decErr != nil {
				if errors.Is(decErr, wire.ErrIncomplete) {
					break
				}

				// Protocol-fatal: close the connection, no reply.
				logger.Debug().Err(decErr).Msg("protocol error, closing connection")
				_ = w.Flush()

				return
			}

			buf = buf[consumed:]

			if !s.handleCommand(ctx, cc, w, v) {
				return
			}
		}

		if err != nil {
			_ = w.Flush()

			return
		}
	}
}

// handleCommand executes one decoded record and writes its reply unless
// suppressed. It returns false if the connection must close.
func (s *Server) handleCommand(ctx context.Context, cc *clientContext, w *bufio.Writer, v wire.Value) bool {
	args, ok := v.StringArgs()
	if !ok || len(args) == 0 {
		reply := wire.Err("ERR", "invalid command: expected an array of bulk strings")

		return s.writeReply(w, reply)
	}

	cmd := string(args[0])
	rest := args[1:]

	upper := strings.ToUpper(cmd)
	isReplySubcommand := upper == "CLIENT" && len(rest) >= 1 && strings.ToUpper(string(rest[0])) == "REPLY"

	if isReplySubcommand {
		reply := s.dispatch(ctx, cc, cmd, rest)
		write := cc.replyMode == ReplyOn && len(rest) >= 2 && strings.ToUpper(string(rest[1])) == "ON"

		if write {
			return s.writeReply(w, reply)
		}

		return true
	}

	suppress := cc.shouldSuppress()
	reply := s.dispatch(ctx, cc, cmd, rest)

	if suppress {
		return true
	}

	return s.writeReply(w, reply)
}

func (s *Server) writeReply(w *bufio.Writer, v wire.Value) bool {
	if err := v.Encode(w); err != nil {
		return false
	}

	return w.Flush() == nil
}
