package redigodriver

import (
	"context"
	"math"
	"strconv"

	"github.com/gomodule/redigo/redis"

	"github.com/rebridge-io/rebridge"
)

// setCommands implements rebridge.SetCommands by forwarding each call to
// a pooled redigo connection.
type setCommands struct {
	client *Client
}

func (s *setCommands) SAdd(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	if err := checkKeyMembers(key, members); err != nil {
		return 0, err
	}
	return s.doInt64(ctx, "SADD", commandArgs(key, members...)...)
}

func (s *setCommands) SCard(ctx context.Context, key []byte) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}
	return s.doInt64(ctx, "SCARD", key)
}

func (s *setCommands) SDiff(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}
	return s.doByteSlices(ctx, "SDIFF", keysArgs(keys)...)
}

func (s *setCommands) SDiffStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error) {
	if err := checkDestKeys(dest, keys); err != nil {
		return 0, err
	}
	return s.doInt64(ctx, "SDIFFSTORE", commandArgs(dest, keys...)...)
}

func (s *setCommands) SInter(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}
	return s.doByteSlices(ctx, "SINTER", keysArgs(keys)...)
}

func (s *setCommands) SInterStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error) {
	if err := checkDestKeys(dest, keys); err != nil {
		return 0, err
	}
	return s.doInt64(ctx, "SINTERSTORE", commandArgs(dest, keys...)...)
}

func (s *setCommands) SIsMember(ctx context.Context, key, member []byte) (bool, error) {
	if err := checkKeyMembers(key, [][]byte{member}); err != nil {
		return false, err
	}
	conn, err := s.conn(ctx, "SISMEMBER")
	if err != nil {
		return false, err
	}
	defer conn.Close()

	reply, err := redis.Bool(conn.Do("SISMEMBER", key, member))
	if err != nil {
		return false, translate("SISMEMBER", err)
	}
	return reply, nil
}

func (s *setCommands) SMIsMember(ctx context.Context, key []byte, members ...[]byte) ([]bool, error) {
	if err := checkKeyMembers(key, members); err != nil {
		return nil, err
	}
	conn, err := s.conn(ctx, "SMISMEMBER")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	flags, err := redis.Int64s(conn.Do("SMISMEMBER", commandArgs(key, members...)...))
	if err != nil {
		return nil, translate("SMISMEMBER", err)
	}

	reply := make([]bool, len(flags))
	for i, f := range flags {
		reply[i] = f == 1
	}
	return reply, nil
}

func (s *setCommands) SMembers(ctx context.Context, key []byte) ([][]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return s.doByteSlices(ctx, "SMEMBERS", key)
}

func (s *setCommands) SMove(ctx context.Context, src, dest, member []byte) (bool, error) {
	if err := checkKey(src); err != nil {
		return false, err
	}
	if err := checkKeyMembers(dest, [][]byte{member}); err != nil {
		return false, err
	}
	conn, err := s.conn(ctx, "SMOVE")
	if err != nil {
		return false, err
	}
	defer conn.Close()

	moved, err := redis.Bool(conn.Do("SMOVE", src, dest, member))
	if err != nil {
		return false, translate("SMOVE", err)
	}
	return moved, nil
}

func (s *setCommands) SPop(ctx context.Context, key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return s.doBytes(ctx, "SPOP", key)
}

func (s *setCommands) SPopCount(ctx context.Context, key []byte, count int64) ([][]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return s.doByteSlices(ctx, "SPOP", key, count)
}

func (s *setCommands) SRandMember(ctx context.Context, key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return s.doBytes(ctx, "SRANDMEMBER", key)
}

func (s *setCommands) SRandMemberCount(ctx context.Context, key []byte, count int64) ([][]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	// The native client sends the count as a 32 bit integer.
	if count > math.MaxInt32 || count < math.MinInt32 {
		return nil, rebridge.NewArgError("SRANDMEMBER count is out of the 32 bit range")
	}
	return s.doByteSlices(ctx, "SRANDMEMBER", key, count)
}

func (s *setCommands) SRem(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	if err := checkKeyMembers(key, members); err != nil {
		return 0, err
	}
	return s.doInt64(ctx, "SREM", commandArgs(key, members...)...)
}

func (s *setCommands) SUnion(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}
	return s.doByteSlices(ctx, "SUNION", keysArgs(keys)...)
}

func (s *setCommands) SUnionStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error) {
	if err := checkDestKeys(dest, keys); err != nil {
		return 0, err
	}
	return s.doInt64(ctx, "SUNIONSTORE", commandArgs(dest, keys...)...)
}

// SScan opens a cursor over the set at key. The cursor keeps its own
// pooled connection until Close so consecutive SSCAN rounds hit the same
// server-side cursor state.
func (s *setCommands) SScan(ctx context.Context, key []byte, opts rebridge.ScanOptions) (*rebridge.ScanCursor, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	conn, err := s.conn(ctx, "SSCAN")
	if err != nil {
		return nil, err
	}

	scan := func(cursor uint64) (rebridge.ScanBatch, error) {
		args := []interface{}{key, cursor}
		if opts.Match != nil {
			args = append(args, "MATCH", opts.Match)
		}
		if opts.Count > 0 {
			args = append(args, "COUNT", opts.Count)
		}

		values, err := redis.Values(conn.Do("SSCAN", args...))
		if err != nil {
			return rebridge.ScanBatch{}, translate("SSCAN", err)
		}
		return parseScanReply(values)
	}

	return rebridge.NewScanCursor(scan, conn.Close), nil
}

func parseScanReply(values []interface{}) (rebridge.ScanBatch, error) {
	var batch rebridge.ScanBatch
	if len(values) != 2 {
		return batch, translate("SSCAN", errMalformedScan)
	}

	cursorBytes, err := redis.Bytes(values[0], nil)
	if err != nil {
		return batch, translate("SSCAN", err)
	}
	cursor, err := strconv.ParseUint(string(cursorBytes), 10, 64)
	if err != nil {
		return batch, translate("SSCAN", err)
	}
	members, err := redis.ByteSlices(values[1], nil)
	if err != nil {
		return batch, translate("SSCAN", err)
	}

	batch.Cursor = cursor
	batch.Members = members
	return batch, nil
}

func (s *setCommands) conn(ctx context.Context, command string) (redis.Conn, error) {
	conn, err := s.client.pool.GetContext(ctx)
	if err != nil {
		return nil, translate(command, err)
	}
	return conn, nil
}

func (s *setCommands) doInt64(ctx context.Context, command string, args ...interface{}) (int64, error) {
	conn, err := s.conn(ctx, command)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	reply, err := redis.Int64(conn.Do(command, args...))
	if err != nil {
		return 0, translate(command, err)
	}
	return reply, nil
}

func (s *setCommands) doBytes(ctx context.Context, command string, args ...interface{}) ([]byte, error) {
	conn, err := s.conn(ctx, command)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reply, err := redis.Bytes(conn.Do(command, args...))
	if err != nil {
		return nil, translate(command, err)
	}
	return reply, nil
}

func (s *setCommands) doByteSlices(ctx context.Context, command string, args ...interface{}) ([][]byte, error) {
	conn, err := s.conn(ctx, command)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reply, err := redis.ByteSlices(conn.Do(command, args...))
	if err != nil {
		return nil, translate(command, err)
	}
	return reply, nil
}

func keysArgs(keys [][]byte) []interface{} {
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}

func checkKey(key []byte) error {
	if key == nil {
		return rebridge.NewArgError("key must not be nil")
	}
	return nil
}

func checkKeys(keys [][]byte) error {
	if len(keys) == 0 {
		return rebridge.NewArgError("at least one key is required")
	}
	for _, k := range keys {
		if k == nil {
			return rebridge.NewArgError("keys must not contain nil elements")
		}
	}
	return nil
}

func checkDestKeys(dest []byte, keys [][]byte) error {
	if dest == nil {
		return rebridge.NewArgError("destination key must not be nil")
	}
	return checkKeys(keys)
}

func checkKeyMembers(key []byte, members [][]byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if len(members) == 0 {
		return rebridge.NewArgError("at least one member is required")
	}
	for _, m := range members {
		if m == nil {
			return rebridge.NewArgError("members must not contain nil elements")
		}
	}
	return nil
}
