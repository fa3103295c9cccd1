package goredisdriver

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rebridge-io/rebridge"
	"github.com/rebridge-io/rebridge/cluster"
)

// zsetCommands implements rebridge.ZSetCommands with the clustered
// delegation rules: single-key commands forward directly, multi-key
// commands only after the slot-affinity check.
type zsetCommands struct {
	c redis.Cmdable
}

func (z *zsetCommands) ZAdd(ctx context.Context, key []byte, score float64, member []byte, args rebridge.ZAddArgs) (bool, error) {
	if err := checkKeyMember(key, member); err != nil {
		return false, err
	}
	if err := args.Validate(); err != nil {
		return false, err
	}

	added, err := z.c.ZAddArgs(ctx, string(key), zAddArgs(args, redis.Z{Score: score, Member: string(member)})).Result()
	if err != nil {
		return false, translate("ZADD", err)
	}
	return added > 0, nil
}

func (z *zsetCommands) ZAddTuples(ctx context.Context, key []byte, tuples []rebridge.Tuple, args rebridge.ZAddArgs) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}
	if len(tuples) == 0 {
		return 0, rebridge.NewArgError("at least one tuple is required")
	}
	if err := args.Validate(); err != nil {
		return 0, err
	}

	members := make([]redis.Z, len(tuples))
	for i, t := range tuples {
		members[i] = redis.Z{Score: t.Score, Member: string(t.Member)}
	}

	added, err := z.c.ZAddArgs(ctx, string(key), zAddArgs(args, members...)).Result()
	return added, translate("ZADD", err)
}

func (z *zsetCommands) ZRem(ctx context.Context, key []byte, members ...[]byte) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, rebridge.NewArgError("at least one member is required")
	}

	removed, err := z.c.ZRem(ctx, string(key), memberArgs(members)...).Result()
	return removed, translate("ZREM", err)
}

func (z *zsetCommands) ZIncrBy(ctx context.Context, key []byte, increment float64, member []byte) (float64, error) {
	if err := checkKeyMember(key, member); err != nil {
		return 0, err
	}

	score, err := z.c.ZIncrBy(ctx, string(key), increment, string(member)).Result()
	return score, translate("ZINCRBY", err)
}

func (z *zsetCommands) ZRandMember(ctx context.Context, key []byte) ([]byte, error) {
	members, err := z.ZRandMemberCount(ctx, key, 1)
	if err != nil || len(members) == 0 {
		return nil, err
	}
	return members[0], nil
}

func (z *zsetCommands) ZRandMemberCount(ctx context.Context, key []byte, count int64) ([][]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkInt32(count, "ZRANDMEMBER count"); err != nil {
		return nil, err
	}

	members, err := z.c.ZRandMember(ctx, string(key), int(count)).Result()
	if err != nil {
		return nil, translate("ZRANDMEMBER", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZRandMemberWithScore(ctx context.Context, key []byte) (*rebridge.Tuple, error) {
	tuples, err := z.ZRandMemberWithScoreCount(ctx, key, 1)
	if err != nil || len(tuples) == 0 {
		return nil, err
	}
	return &tuples[0], nil
}

func (z *zsetCommands) ZRandMemberWithScoreCount(ctx context.Context, key []byte, count int64) ([]rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkInt32(count, "ZRANDMEMBER count"); err != nil {
		return nil, err
	}

	members, err := z.c.ZRandMemberWithScores(ctx, string(key), int(count)).Result()
	if err != nil {
		return nil, translate("ZRANDMEMBER", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZRank(ctx context.Context, key, member []byte) (int64, error) {
	if err := checkKeyMember(key, member); err != nil {
		return 0, err
	}

	rank, err := z.c.ZRank(ctx, string(key), string(member)).Result()
	return rank, translate("ZRANK", err)
}

func (z *zsetCommands) ZRevRank(ctx context.Context, key, member []byte) (int64, error) {
	if err := checkKeyMember(key, member); err != nil {
		return 0, err
	}

	rank, err := z.c.ZRevRank(ctx, string(key), string(member)).Result()
	return rank, translate("ZREVRANK", err)
}

func (z *zsetCommands) ZCard(ctx context.Context, key []byte) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}

	card, err := z.c.ZCard(ctx, string(key)).Result()
	return card, translate("ZCARD", err)
}

func (z *zsetCommands) ZScore(ctx context.Context, key, member []byte) (float64, error) {
	if err := checkKeyMember(key, member); err != nil {
		return 0, err
	}

	score, err := z.c.ZScore(ctx, string(key), string(member)).Result()
	return score, translate("ZSCORE", err)
}

func (z *zsetCommands) ZMScore(ctx context.Context, key []byte, members ...[]byte) ([]float64, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, rebridge.NewArgError("at least one member is required")
	}

	scores, err := z.c.ZMScore(ctx, string(key), toStrings(members)...).Result()
	return scores, translate("ZMSCORE", err)
}

func (z *zsetCommands) ZCount(ctx context.Context, key []byte, rng rebridge.Range) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}

	count, err := z.c.ZCount(ctx, string(key), rng.Min.ScoreMin(), rng.Max.ScoreMax()).Result()
	return count, translate("ZCOUNT", err)
}

func (z *zsetCommands) ZLexCount(ctx context.Context, key []byte, rng rebridge.Range) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}

	count, err := z.c.ZLexCount(ctx, string(key), rng.Min.LexMin(), rng.Max.LexMax()).Result()
	return count, translate("ZLEXCOUNT", err)
}

func (z *zsetCommands) ZRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	members, err := z.c.ZRange(ctx, string(key), start, stop).Result()
	if err != nil {
		return nil, translate("ZRANGE", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZRangeWithScores(ctx context.Context, key []byte, start, stop int64) ([]rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	members, err := z.c.ZRangeWithScores(ctx, string(key), start, stop).Result()
	if err != nil {
		return nil, translate("ZRANGE", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZRangeByScore(ctx context.Context, key []byte, rng rebridge.Range, limit rebridge.Limit) ([][]byte, error) {
	by, err := scoreRange(key, rng, limit)
	if err != nil {
		return nil, err
	}

	members, err := z.c.ZRangeByScore(ctx, string(key), by).Result()
	if err != nil {
		return nil, translate("ZRANGEBYSCORE", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZRangeByScoreWithScores(ctx context.Context, key []byte, rng rebridge.Range, limit rebridge.Limit) ([]rebridge.Tuple, error) {
	by, err := scoreRange(key, rng, limit)
	if err != nil {
		return nil, err
	}

	members, err := z.c.ZRangeByScoreWithScores(ctx, string(key), by).Result()
	if err != nil {
		return nil, translate("ZRANGEBYSCORE", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZRevRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	members, err := z.c.ZRevRange(ctx, string(key), start, stop).Result()
	if err != nil {
		return nil, translate("ZREVRANGE", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZRevRangeWithScores(ctx context.Context, key []byte, start, stop int64) ([]rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	members, err := z.c.ZRevRangeWithScores(ctx, string(key), start, stop).Result()
	if err != nil {
		return nil, translate("ZREVRANGE", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZRevRangeByScore(ctx context.Context, key []byte, rng rebridge.Range, limit rebridge.Limit) ([][]byte, error) {
	by, err := scoreRange(key, rng, limit)
	if err != nil {
		return nil, err
	}

	members, err := z.c.ZRevRangeByScore(ctx, string(key), by).Result()
	if err != nil {
		return nil, translate("ZREVRANGEBYSCORE", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZRevRangeByScoreWithScores(ctx context.Context, key []byte, rng rebridge.Range, limit rebridge.Limit) ([]rebridge.Tuple, error) {
	by, err := scoreRange(key, rng, limit)
	if err != nil {
		return nil, err
	}

	members, err := z.c.ZRevRangeByScoreWithScores(ctx, string(key), by).Result()
	if err != nil {
		return nil, translate("ZREVRANGEBYSCORE", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZRangeByLex(ctx context.Context, key []byte, rng rebridge.Range, limit rebridge.Limit) ([][]byte, error) {
	by, err := lexRange(key, rng, limit)
	if err != nil {
		return nil, err
	}

	members, err := z.c.ZRangeByLex(ctx, string(key), by).Result()
	if err != nil {
		return nil, translate("ZRANGEBYLEX", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZRevRangeByLex(ctx context.Context, key []byte, rng rebridge.Range, limit rebridge.Limit) ([][]byte, error) {
	by, err := lexRange(key, rng, limit)
	if err != nil {
		return nil, err
	}

	members, err := z.c.ZRevRangeByLex(ctx, string(key), by).Result()
	if err != nil {
		return nil, translate("ZREVRANGEBYLEX", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZPopMin(ctx context.Context, key []byte) (*rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	members, err := z.c.ZPopMin(ctx, string(key)).Result()
	if err != nil {
		return nil, translate("ZPOPMIN", err)
	}
	return firstTuple(members), nil
}

func (z *zsetCommands) ZPopMinCount(ctx context.Context, key []byte, count int64) ([]rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	members, err := z.c.ZPopMin(ctx, string(key), count).Result()
	if err != nil {
		return nil, translate("ZPOPMIN", err)
	}
	return toTuples(members), nil
}

// BZPopMin blocks up to timeout for an element to pop. It returns a nil
// tuple when the timeout elapses with nothing to pop; the native client
// sends the timeout in whole seconds.
func (z *zsetCommands) BZPopMin(ctx context.Context, key []byte, timeout time.Duration) (*rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	reply, err := z.c.BZPopMin(ctx, timeout, string(key)).Result()
	if err != nil {
		if translated := translate("BZPOPMIN", err); translated != rebridge.ErrNil {
			return nil, translated
		}
		return nil, nil
	}
	return &rebridge.Tuple{Member: []byte(memberString(reply.Member)), Score: reply.Score}, nil
}

func (z *zsetCommands) ZPopMax(ctx context.Context, key []byte) (*rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	members, err := z.c.ZPopMax(ctx, string(key)).Result()
	if err != nil {
		return nil, translate("ZPOPMAX", err)
	}
	return firstTuple(members), nil
}

func (z *zsetCommands) ZPopMaxCount(ctx context.Context, key []byte, count int64) ([]rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	members, err := z.c.ZPopMax(ctx, string(key), count).Result()
	if err != nil {
		return nil, translate("ZPOPMAX", err)
	}
	return toTuples(members), nil
}

// BZPopMax is BZPopMin's highest-score counterpart.
func (z *zsetCommands) BZPopMax(ctx context.Context, key []byte, timeout time.Duration) (*rebridge.Tuple, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	reply, err := z.c.BZPopMax(ctx, timeout, string(key)).Result()
	if err != nil {
		if translated := translate("BZPOPMAX", err); translated != rebridge.ErrNil {
			return nil, translated
		}
		return nil, nil
	}
	return &rebridge.Tuple{Member: []byte(memberString(reply.Member)), Score: reply.Score}, nil
}

func (z *zsetCommands) ZRemRange(ctx context.Context, key []byte, start, stop int64) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}

	removed, err := z.c.ZRemRangeByRank(ctx, string(key), start, stop).Result()
	return removed, translate("ZREMRANGEBYRANK", err)
}

func (z *zsetCommands) ZRemRangeByScore(ctx context.Context, key []byte, rng rebridge.Range) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}

	removed, err := z.c.ZRemRangeByScore(ctx, string(key), rng.Min.ScoreMin(), rng.Max.ScoreMax()).Result()
	return removed, translate("ZREMRANGEBYSCORE", err)
}

func (z *zsetCommands) ZRemRangeByLex(ctx context.Context, key []byte, rng rebridge.Range) (int64, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}

	removed, err := z.c.ZRemRangeByLex(ctx, string(key), rng.Min.LexMin(), rng.Max.LexMax()).Result()
	return removed, translate("ZREMRANGEBYLEX", err)
}

func (z *zsetCommands) ZDiff(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	if err := checkSameSlot("ZDIFF", keys); err != nil {
		return nil, err
	}

	members, err := z.c.ZDiff(ctx, toStrings(keys)...).Result()
	if err != nil {
		return nil, translate("ZDIFF", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZDiffWithScores(ctx context.Context, keys ...[]byte) ([]rebridge.Tuple, error) {
	if err := checkSameSlot("ZDIFF", keys); err != nil {
		return nil, err
	}

	members, err := z.c.ZDiffWithScores(ctx, toStrings(keys)...).Result()
	if err != nil {
		return nil, translate("ZDIFF", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZDiffStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error) {
	if err := checkSameSlotWithDest("ZDIFFSTORE", dest, keys); err != nil {
		return 0, err
	}

	stored, err := z.c.ZDiffStore(ctx, string(dest), toStrings(keys)...).Result()
	return stored, translate("ZDIFFSTORE", err)
}

func (z *zsetCommands) ZInter(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	if err := checkSameSlot("ZINTER", keys); err != nil {
		return nil, err
	}

	members, err := z.c.ZInter(ctx, &redis.ZStore{Keys: toStrings(keys)}).Result()
	if err != nil {
		return nil, translate("ZINTER", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZInterWithScores(ctx context.Context, keys ...[]byte) ([]rebridge.Tuple, error) {
	if err := checkSameSlot("ZINTER", keys); err != nil {
		return nil, err
	}

	members, err := z.c.ZInterWithScores(ctx, &redis.ZStore{Keys: toStrings(keys)}).Result()
	if err != nil {
		return nil, translate("ZINTER", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZInterWeighted(ctx context.Context, agg rebridge.Aggregate, weights rebridge.Weights, keys ...[]byte) ([]rebridge.Tuple, error) {
	if err := weights.Validate(len(keys)); err != nil {
		return nil, err
	}
	if err := checkSameSlot("ZINTER", keys); err != nil {
		return nil, err
	}

	members, err := z.c.ZInterWithScores(ctx, zStore(keys, agg, weights)).Result()
	if err != nil {
		return nil, translate("ZINTER", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZInterStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error) {
	if err := checkSameSlotWithDest("ZINTERSTORE", dest, keys); err != nil {
		return 0, err
	}

	stored, err := z.c.ZInterStore(ctx, string(dest), &redis.ZStore{Keys: toStrings(keys)}).Result()
	return stored, translate("ZINTERSTORE", err)
}

func (z *zsetCommands) ZInterStoreWeighted(ctx context.Context, dest []byte, agg rebridge.Aggregate, weights rebridge.Weights, keys ...[]byte) (int64, error) {
	if err := weights.Validate(len(keys)); err != nil {
		return 0, err
	}
	if err := checkSameSlotWithDest("ZINTERSTORE", dest, keys); err != nil {
		return 0, err
	}

	stored, err := z.c.ZInterStore(ctx, string(dest), zStore(keys, agg, weights)).Result()
	return stored, translate("ZINTERSTORE", err)
}

func (z *zsetCommands) ZUnion(ctx context.Context, keys ...[]byte) ([][]byte, error) {
	if err := checkSameSlot("ZUNION", keys); err != nil {
		return nil, err
	}

	members, err := z.c.ZUnion(ctx, redis.ZStore{Keys: toStrings(keys)}).Result()
	if err != nil {
		return nil, translate("ZUNION", err)
	}
	return toBytes(members), nil
}

func (z *zsetCommands) ZUnionWithScores(ctx context.Context, keys ...[]byte) ([]rebridge.Tuple, error) {
	if err := checkSameSlot("ZUNION", keys); err != nil {
		return nil, err
	}

	members, err := z.c.ZUnionWithScores(ctx, redis.ZStore{Keys: toStrings(keys)}).Result()
	if err != nil {
		return nil, translate("ZUNION", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZUnionWeighted(ctx context.Context, agg rebridge.Aggregate, weights rebridge.Weights, keys ...[]byte) ([]rebridge.Tuple, error) {
	if err := weights.Validate(len(keys)); err != nil {
		return nil, err
	}
	if err := checkSameSlot("ZUNION", keys); err != nil {
		return nil, err
	}

	members, err := z.c.ZUnionWithScores(ctx, *zStore(keys, agg, weights)).Result()
	if err != nil {
		return nil, translate("ZUNION", err)
	}
	return toTuples(members), nil
}

func (z *zsetCommands) ZUnionStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error) {
	if err := checkSameSlotWithDest("ZUNIONSTORE", dest, keys); err != nil {
		return 0, err
	}

	stored, err := z.c.ZUnionStore(ctx, string(dest), &redis.ZStore{Keys: toStrings(keys)}).Result()
	return stored, translate("ZUNIONSTORE", err)
}

func (z *zsetCommands) ZUnionStoreWeighted(ctx context.Context, dest []byte, agg rebridge.Aggregate, weights rebridge.Weights, keys ...[]byte) (int64, error) {
	if err := weights.Validate(len(keys)); err != nil {
		return 0, err
	}
	if err := checkSameSlotWithDest("ZUNIONSTORE", dest, keys); err != nil {
		return 0, err
	}

	stored, err := z.c.ZUnionStore(ctx, string(dest), zStore(keys, agg, weights)).Result()
	return stored, translate("ZUNIONSTORE", err)
}

// ZScan opens a cursor over the member/score pairs at key. The native
// client routes every round trip itself, so the cursor holds no
// connection of its own.
func (z *zsetCommands) ZScan(ctx context.Context, key []byte, opts rebridge.ScanOptions) (*rebridge.TupleScanCursor, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	scan := func(cursor uint64) (rebridge.TupleScanBatch, error) {
		var batch rebridge.TupleScanBatch

		pairs, next, err := z.c.ZScan(ctx, string(key), cursor, string(opts.Match), opts.Count).Result()
		if err != nil {
			return batch, translate("ZSCAN", err)
		}

		tuples := make([]rebridge.Tuple, 0, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			score, err := strconv.ParseFloat(pairs[i+1], 64)
			if err != nil {
				return batch, translate("ZSCAN", err)
			}
			tuples = append(tuples, rebridge.Tuple{Member: []byte(pairs[i]), Score: score})
		}

		batch.Cursor = next
		batch.Tuples = tuples
		return batch, nil
	}

	return rebridge.NewTupleScanCursor(scan, nil), nil
}

func zAddArgs(args rebridge.ZAddArgs, members ...redis.Z) redis.ZAddArgs {
	return redis.ZAddArgs{
		NX:      args.NX,
		XX:      args.XX,
		GT:      args.GT,
		LT:      args.LT,
		Ch:      args.CH,
		Members: members,
	}
}

func zStore(keys [][]byte, agg rebridge.Aggregate, weights rebridge.Weights) *redis.ZStore {
	return &redis.ZStore{
		Keys:      toStrings(keys),
		Weights:   weights,
		Aggregate: agg.String(),
	}
}

func scoreRange(key []byte, rng rebridge.Range, limit rebridge.Limit) (*redis.ZRangeBy, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	return &redis.ZRangeBy{
		Min:    rng.Min.ScoreMin(),
		Max:    rng.Max.ScoreMax(),
		Offset: limit.Offset,
		Count:  limit.Count,
	}, nil
}

func lexRange(key []byte, rng rebridge.Range, limit rebridge.Limit) (*redis.ZRangeBy, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	return &redis.ZRangeBy{
		Min:    rng.Min.LexMin(),
		Max:    rng.Max.LexMax(),
		Offset: limit.Offset,
		Count:  limit.Count,
	}, nil
}

func checkSameSlot(command string, keys [][]byte) error {
	if err := checkKeys(keys); err != nil {
		return err
	}
	if !cluster.SameSlot(keys...) {
		return &rebridge.CrossSlotError{Command: command}
	}
	return nil
}

func checkSameSlotWithDest(command string, dest []byte, keys [][]byte) error {
	if dest == nil {
		return rebridge.NewArgError("destination key must not be nil")
	}
	if err := checkKeys(keys); err != nil {
		return err
	}
	if !cluster.SameSlot(append([][]byte{dest}, keys...)...) {
		return &rebridge.CrossSlotError{Command: command}
	}
	return nil
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

func checkKeyMember(key, member []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if member == nil {
		return rebridge.NewArgError("member must not be nil")
	}
	return nil
}

func checkInt32(v int64, what string) error {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return rebridge.NewArgError(what + " is out of the 32 bit range")
	}
	return nil
}

func checkLimit(limit rebridge.Limit) error {
	if err := checkInt32(limit.Offset, "limit offset"); err != nil {
		return err
	}
	return checkInt32(limit.Count, "limit count")
}

func toStrings(values [][]byte) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func toBytes(values []string) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out
}

func memberArgs(members [][]byte) []interface{} {
	out := make([]interface{}, len(members))
	for i, m := range members {
		out[i] = string(m)
	}
	return out
}

func toTuples(members []redis.Z) []rebridge.Tuple {
	out := make([]rebridge.Tuple, len(members))
	for i, m := range members {
		out[i] = rebridge.Tuple{Member: []byte(memberString(m.Member)), Score: m.Score}
	}
	return out
}

func firstTuple(members []redis.Z) *rebridge.Tuple {
	if len(members) == 0 {
		return nil
	}
	t := rebridge.Tuple{Member: []byte(memberString(members[0].Member)), Score: members[0].Score}
	return &t
}

func memberString(member interface{}) string {
	switch m := member.(type) {
	case string:
		return m
	case []byte:
		return string(m)
	default:
		return ""
	}
}
