// Package shard implements the per-partition executor: a single goroutine
// with exclusive ownership of one store.Store and one aof.Log, draining a
// FIFO inbound queue of WorkItems. Because exactly one goroutine ever
// touches a shard's store, no locks guard the data model itself.
package shard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kalbasit/ferrumdb/internal/aof"
	"github.com/kalbasit/ferrumdb/internal/metrics"
	"github.com/kalbasit/ferrumdb/internal/store"
	"github.com/kalbasit/ferrumdb/internal/wire"
)

const (
	defaultActiveExpireEvery  = 20
	defaultActiveExpireSample = 20
	inboxCapacity             = 256
)

// activeExpireCmd is a synthetic command name used internally to ask the
// shard's own goroutine to run an active-expiration sweep — the cron
// ticker that drives this on a wall-clock cadence must never touch the
// store directly, so it enqueues this instead of calling sweep() itself.
const activeExpireCmd = "__active_expire__"

// Config tunes one shard's active-expiration cadence.
type Config struct {
	// ActiveExpireEvery is the number of dequeues between opportunistic
	// sampling passes. Zero selects the default of 20.
	ActiveExpireEvery int
	// ActiveExpireSample is the number of TTL-bearing keys sampled per pass.
	// Zero selects the default of 20.
	ActiveExpireSample int
}

func (c Config) withDefaults() Config {
	if c.ActiveExpireEvery <= 0 {
		c.ActiveExpireEvery = defaultActiveExpireEvery
	}

	if c.ActiveExpireSample <= 0 {
		c.ActiveExpireSample = defaultActiveExpireSample
	}

	return c
}

// Shard is one partition's long-lived worker.
type Shard struct {
	id      int
	store   *store.Store
	log     *aof.Log
	metrics *metrics.ShardMetrics
	cfg     Config

	inbox    chan WorkItem
	dequeues int
	fatal    bool
}

// New constructs a Shard. It does not start the executor goroutine — call
// Run under a supervising errgroup.Group (or goroutine, for tests).
func New(id int, st *store.Store, log *aof.Log, m *metrics.ShardMetrics, cfg Config) *Shard {
	return &Shard{
		id:      id,
		store:   st,
		log:     log,
		metrics: m,
		cfg:     cfg.withDefaults(),
		inbox:   make(chan WorkItem, inboxCapacity),
	}
}

// ID returns this shard's partition index.
func (s *Shard) ID() int { return s.id }

// Enqueue submits item to the shard's inbound queue. The caller awaits
// item.Reply for the result. Enqueue blocks if the inbox is full, applying
// natural backpressure to producers.
func (s *Shard) Enqueue(item WorkItem) {
	s.inbox <- item
}

// ScheduleActiveExpire asks the shard's own goroutine to run an
// active-expiration sweep on its next turn, without blocking for the
// result. The active-expire cron ticker calls this instead of
// touching the store directly.
func (s *Shard) ScheduleActiveExpire() {
	select {
	case s.inbox <- WorkItem{Cmd: activeExpireCmd}:
	default:
		// Inbox is momentarily full; the per-item opportunistic sampling
		// in run() will catch up regardless.
	}
}

// Run drains the inbox in strict FIFO order until ctx is canceled or a
// persistence failure marks the shard fatal, in which case it returns a
// non-nil error so a supervising errgroup.Group tears down the rest of the
// process — spec.md §7's fail-stop posture for persistence failures.
func (s *Shard) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Int("shard", s.id).Logger()
	ctx = logger.WithContext(ctx)

	for {
		select {
		case <-ctx.Done():
			s.drain()

			return nil
		case item := <-s.inbox:
			if err := s.handle(ctx, item); err != nil {
				s.drain()

				return err
			}

			s.afterItem()
		}
	}
}

// drain answers every already-enqueued work item with a persistence
// failure so producers blocked on item.Reply don't hang forever; it does
// not touch the store.
func (s *Shard) drain() {
	for {
		select {
		case item := <-s.inbox:
			if item.Reply != nil {
				item.Reply <- wire.Err("ERR", "persistence failure")
			}
		default:
			return
		}
	}
}

func (s *Shard) handle(ctx context.Context, item WorkItem) error {
	if item.Cmd == activeExpireCmd {
		s.sweep()

		return nil
	}

	reply := dispatch(s.store, item.Cmd, item.Args)

	if reply.Kind == wire.KindError {
		s.metrics.RecordErr()
	} else {
		s.metrics.RecordOK()

		if IsMutating(item.Cmd) {
			cmd, args := s.normalizeForAOF(item.Cmd, item.Args)
			payload := wire.BulkArray(append([][]byte{[]byte(cmd)}, args...)...).Bytes()

			if err := s.log.Append(payload); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Int("shard", s.id).Msg("aof append failed, shard stopping")
				s.fatal = true
				s.metrics.SetAlive(false)

				if item.Reply != nil {
					item.Reply <- wire.Err("ERR", "persistence failure")
				}

				return fmt.Errorf("shard %d: %w", s.id, err)
			}

			s.metrics.SetAOFOffset(s.log.Offset())
		}
	}

	if item.Reply != nil {
		item.Reply <- reply
	}

	return nil
}

// normalizeForAOF rewrites a just-executed EXPIRE/PEXPIRE into its
// PEXPIREAT equivalent, carrying the absolute deadline the store actually
// committed rather than the relative duration the client sent. Without
// this, replaying the AOF would re-apply "N seconds from now" relative to
// replay time instead of the original expiration instant. Every other
// mutating command is AOF-logged verbatim.
func (s *Shard) normalizeForAOF(cmd string, args [][]byte) (string, [][]byte) {
	upper := strings.ToUpper(cmd)
	if upper != "EXPIRE" && upper != "PEXPIRE" {
		return cmd, args
	}

	if len(args) == 0 {
		return cmd, args
	}

	deadline, ok := s.store.ExpireAtMillis(args[0])
	if !ok {
		return cmd, args
	}

	return "PEXPIREAT", [][]byte{args[0], []byte(strconv.FormatInt(deadline, 10))}
}

// afterItem runs the opportunistic active-expiration pass described in
// spec.md §4.3: every ActiveExpireEvery dequeues, or whenever the inbox
// happens to be empty right after processing an item, sample up to
// ActiveExpireSample TTL-bearing keys and reap the expired ones.
func (s *Shard) afterItem() {
	s.dequeues++

	if s.dequeues >= s.cfg.ActiveExpireEvery {
		s.sweep()
		s.dequeues = 0

		return
	}

	if len(s.inbox) == 0 {
		s.sweep()
	}
}

func (s *Shard) sweep() {
	s.store.SampleExpired(s.cfg.ActiveExpireSample)
	s.metrics.SetKeys(s.store.Len())
}
