package shard

import (
	"strconv"
	"strings"

	"github.com/kalbasit/ferrumdb/internal/store"
	"github.com/kalbasit/ferrumdb/internal/wire"
)

// mutatingCommands lists every command whose successful execution must be
// appended to the AOF. Commands that return a command-level error are
// never appended, even if they would otherwise be mutating.
var mutatingCommands = map[string]bool{
	"SET": true, "DEL": true, "EXPIRE": true, "PEXPIRE": true, "PEXPIREAT": true, "PERSIST": true,
	"INCR": true, "DECR": true, "INCRBY": true, "DECRBY": true,
	"LPUSH": true, "RPUSH": true, "LSET": true,
	"SADD": true, "SREM": true,
	"HSET": true, "HDEL": true, "HINCRBY": true, "HSETNX": true,
	"FLUSHDB": true, "APPEND": true, "GETSET": true, "SETNX": true, "RENAME": true,
}

// IsMutating reports whether cmd, on success, must be persisted to the AOF.
func IsMutating(cmd string) bool { return mutatingCommands[strings.ToUpper(cmd)] }

// Apply executes cmd directly against st and discards the reply. It is
// the entry point AOF replay uses to re-apply already-committed commands
// to a freshly constructed store, bypassing the work-item/reply-channel
// machinery entirely (there is no client waiting and nothing to persist —
// replay must not re-append what it is replaying).
func Apply(st *store.Store, cmd string, args [][]byte) {
	dispatch(st, cmd, args)
}

// dispatch executes one command against st and returns its RESP2 reply.
// Command-level failures (WRONGTYPE, SYNTAX, bad integers, unknown
// command) are folded into the returned Value as a RESP2 error record;
// dispatch itself never returns a Go error; store persistence failures are
// a Shard-level concern handled by the caller around AOF.Append, not here.
func dispatch(st *store.Store, cmd string, args [][]byte) wire.Value {
	switch strings.ToUpper(cmd) {
	case "SET":
		return doSet(st, args)
	case "GET":
		return doGet(st, args)
	case "APPEND":
		return doAppend(st, args)
	case "STRLEN":
		return doStrlen(st, args)
	case "GETSET":
		return doGetSet(st, args)
	case "SETNX":
		return doSetNX(st, args)
	case "DEL":
		return doDel(st, args)
	case "EXISTS":
		return doExists(st, args)
	case "EXPIRE":
		return doExpire(st, args)
	case "PEXPIRE":
		return doPExpire(st, args)
	case "PEXPIREAT":
		return doPExpireAt(st, args)
	case "TTL":
		return doTTL(st, args)
	case "PTTL":
		return doPTTL(st, args)
	case "PERSIST":
		return doPersist(st, args)
	case "INCR":
		return doIncr(st, args)
	case "DECR":
		return doDecr(st, args)
	case "INCRBY":
		return doIncrBy(st, args)
	case "DECRBY":
		return doDecrBy(st, args)
	case "LPUSH":
		return doLPush(st, args)
	case "RPUSH":
		return doRPush(st, args)
	case "LRANGE":
		return doLRange(st, args)
	case "LLEN":
		return doLLen(st, args)
	case "LINDEX":
		return doLIndex(st, args)
	case "LSET":
		return doLSet(st, args)
	case "SADD":
		return doSAdd(st, args)
	case "SREM":
		return doSRem(st, args)
	case "SMEMBERS":
		return doSMembers(st, args)
	case "SISMEMBER":
		return doSIsMember(st, args)
	case "SCARD":
		return doSCard(st, args)
	case "HSET":
		return doHSet(st, args)
	case "HSETNX":
		return doHSetNX(st, args)
	case "HGET":
		return doHGet(st, args)
	case "HGETALL":
		return doHGetAll(st, args)
	case "HDEL":
		return doHDel(st, args)
	case "HKEYS":
		return doHKeys(st, args)
	case "HVALS":
		return doHVals(st, args)
	case "HLEN":
		return doHLen(st, args)
	case "HEXISTS":
		return doHExists(st, args)
	case "HINCRBY":
		return doHIncrBy(st, args)
	case "KEYS":
		return doKeys(st, args)
	case "FLUSHDB":
		return doFlushDB(st, args)
	case "TYPE":
		return doType(st, args)
	case "RANDOMKEY":
		return doRandomKey(st, args)
	case "RENAME":
		return doRename(st, args)
	default:
		return wire.Err("ERR", "unknown command '"+cmd+"'")
	}
}

func errValue(err error) wire.Value {
	var se *store.Error
	if e, ok := err.(*store.Error); ok { //nolint:errorlint // store.Error is never wrapped
		se = e
	}

	if se != nil {
		return wire.Err(se.Tag, se.Msg)
	}

	return wire.Err("ERR", err.Error())
}

func wantArgs(args [][]byte, n int) bool { return len(args) == n }

func wantAtLeast(args [][]byte, n int) bool { return len(args) >= n }

func parseInt(b []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(b), 10, 64)

	return n, err == nil
}

func doSet(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	st.Set(args[0], args[1])

	return wire.Simple("OK")
}

func doGet(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	v, ok, err := st.Get(args[0])
	if err != nil {
		return errValue(err)
	}

	if !ok {
		return wire.NilBulk()
	}

	return wire.Bulk(v)
}

func doAppend(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.Append(args[0], args[1])
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doStrlen(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.Strlen(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doGetSet(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	old, ok, err := st.GetSet(args[0], args[1])
	if err != nil {
		return errValue(err)
	}

	if !ok {
		return wire.NilBulk()
	}

	return wire.Bulk(old)
}

func doSetNX(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	return wire.Bool(st.SetNX(args[0], args[1]))
}

func doDel(st *store.Store, args [][]byte) wire.Value {
	if !wantAtLeast(args, 1) {
		return errValue(store.ErrSyntax)
	}

	return wire.Int64(int64(st.Del(args...)))
}

func doExists(st *store.Store, args [][]byte) wire.Value {
	if !wantAtLeast(args, 1) {
		return errValue(store.ErrSyntax)
	}

	return wire.Int64(int64(st.Exists(args...)))
}

func doExpire(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	secs, ok := parseInt(args[1])
	if !ok || secs < 0 {
		return errValue(store.ErrNotInteger)
	}

	return wire.Bool(st.Expire(args[0], secs))
}

func doPExpire(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	millis, ok := parseInt(args[1])
	if !ok || millis < 0 {
		return errValue(store.ErrNotInteger)
	}

	return wire.Bool(st.PExpire(args[0], millis))
}

// doPExpireAt applies an absolute epoch-millisecond deadline. It is the
// normalized form EXPIRE/PEXPIRE are rewritten into before an AOF append,
// and the form AOF replay re-applies; a client may also issue it directly,
// in which case it is AOF-logged verbatim.
func doPExpireAt(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	epochMillis, ok := parseInt(args[1])
	if !ok {
		return errValue(store.ErrNotInteger)
	}

	return wire.Bool(st.PExpireAt(args[0], epochMillis))
}

func doTTL(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	return wire.Int64(st.TTL(args[0]))
}

func doPTTL(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	return wire.Int64(st.PTTL(args[0]))
}

func doPersist(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	return wire.Bool(st.Persist(args[0]))
}

func doIncr(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.Incr(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(n)
}

func doDecr(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.Decr(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(n)
}

func doIncrBy(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	delta, ok := parseInt(args[1])
	if !ok {
		return errValue(store.ErrNotInteger)
	}

	n, err := st.IncrBy(args[0], delta)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(n)
}

func doDecrBy(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	n2, ok := parseInt(args[1])
	if !ok {
		return errValue(store.ErrNotInteger)
	}

	n, err := st.DecrBy(args[0], n2)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(n)
}

func doLPush(st *store.Store, args [][]byte) wire.Value {
	if !wantAtLeast(args, 2) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.LPush(args[0], args[1:]...)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doRPush(st *store.Store, args [][]byte) wire.Value {
	if !wantAtLeast(args, 2) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.RPush(args[0], args[1:]...)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doLRange(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 3) {
		return errValue(store.ErrSyntax)
	}

	start, ok1 := parseInt(args[1])
	end, ok2 := parseInt(args[2])

	if !ok1 || !ok2 {
		return errValue(store.ErrNotInteger)
	}

	vals, err := st.LRange(args[0], int(start), int(end))
	if err != nil {
		return errValue(err)
	}

	return wire.BulkArray(vals...)
}

func doLLen(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.LLen(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doLIndex(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	idx, ok := parseInt(args[1])
	if !ok {
		return errValue(store.ErrNotInteger)
	}

	v, found, err := st.LIndex(args[0], int(idx))
	if err != nil {
		return errValue(err)
	}

	if !found {
		return wire.NilBulk()
	}

	return wire.Bulk(v)
}

func doLSet(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 3) {
		return errValue(store.ErrSyntax)
	}

	idx, ok := parseInt(args[1])
	if !ok {
		return errValue(store.ErrNotInteger)
	}

	if err := st.LSet(args[0], int(idx), args[2]); err != nil {
		return errValue(err)
	}

	return wire.Simple("OK")
}

func doSAdd(st *store.Store, args [][]byte) wire.Value {
	if !wantAtLeast(args, 2) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.SAdd(args[0], args[1:]...)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doSRem(st *store.Store, args [][]byte) wire.Value {
	if !wantAtLeast(args, 2) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.SRem(args[0], args[1:]...)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doSMembers(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	vals, err := st.SMembers(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.BulkArray(vals...)
}

func doSIsMember(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	ok, err := st.SIsMember(args[0], args[1])
	if err != nil {
		return errValue(err)
	}

	return wire.Bool(ok)
}

func doSCard(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.SCard(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doHSet(st *store.Store, args [][]byte) wire.Value {
	if !wantAtLeast(args, 3) || (len(args)-1)%2 != 0 {
		return errValue(store.ErrSyntax)
	}

	pairs := make([][2][]byte, 0, (len(args)-1)/2)
	for i := 1; i < len(args); i += 2 {
		pairs = append(pairs, [2][]byte{args[i], args[i+1]})
	}

	n, err := st.HSet(args[0], pairs...)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doHSetNX(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 3) {
		return errValue(store.ErrSyntax)
	}

	ok, err := st.HSetNX(args[0], args[1], args[2])
	if err != nil {
		return errValue(err)
	}

	return wire.Bool(ok)
}

func doHGet(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	v, ok, err := st.HGet(args[0], args[1])
	if err != nil {
		return errValue(err)
	}

	if !ok {
		return wire.NilBulk()
	}

	return wire.Bulk(v)
}

func doHGetAll(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	vals, err := st.HGetAll(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.BulkArray(vals...)
}

func doHDel(st *store.Store, args [][]byte) wire.Value {
	if !wantAtLeast(args, 2) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.HDel(args[0], args[1:]...)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doHKeys(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	vals, err := st.HKeys(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.BulkArray(vals...)
}

func doHVals(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	vals, err := st.HVals(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.BulkArray(vals...)
}

func doHLen(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	n, err := st.HLen(args[0])
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(int64(n))
}

func doHExists(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	ok, err := st.HExists(args[0], args[1])
	if err != nil {
		return errValue(err)
	}

	return wire.Bool(ok)
}

func doHIncrBy(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 3) {
		return errValue(store.ErrSyntax)
	}

	n, ok := parseInt(args[2])
	if !ok {
		return errValue(store.ErrNotInteger)
	}

	result, err := st.HIncrBy(args[0], args[1], n)
	if err != nil {
		return errValue(err)
	}

	return wire.Int64(result)
}

func doKeys(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	return wire.BulkArray(st.Keys(args[0])...)
}

func doFlushDB(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 0) {
		return errValue(store.ErrSyntax)
	}

	st.FlushDB()

	return wire.Simple("OK")
}

func doType(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 1) {
		return errValue(store.ErrSyntax)
	}

	return wire.Simple(st.Type(args[0]).String())
}

func doRandomKey(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 0) {
		return errValue(store.ErrSyntax)
	}

	k, ok := st.RandomKey()
	if !ok {
		return wire.NilBulk()
	}

	return wire.Bulk(k)
}

func doRename(st *store.Store, args [][]byte) wire.Value {
	if !wantArgs(args, 2) {
		return errValue(store.ErrSyntax)
	}

	if err := st.Rename(args[0], args[1]); err != nil {
		return errValue(err)
	}

	return wire.Simple("OK")
}
