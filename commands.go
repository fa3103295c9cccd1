package rebridge

import (
	"context"
	"time"
)

// SetCommands describes the Redis set command group. Implementations
// delegate every call to a native client and translate its replies and
// errors; a missing key is reported through ErrNil where Redis replies
// with a nil bulk.
type SetCommands interface {
	SAdd(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	SCard(ctx context.Context, key []byte) (int64, error)
	SDiff(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SDiffStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error)
	SInter(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SInterStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error)
	SIsMember(ctx context.Context, key, member []byte) (bool, error)
	SMIsMember(ctx context.Context, key []byte, members ...[]byte) ([]bool, error)
	SMembers(ctx context.Context, key []byte) ([][]byte, error)
	SMove(ctx context.Context, src, dest, member []byte) (bool, error)
	SPop(ctx context.Context, key []byte) ([]byte, error)
	SPopCount(ctx context.Context, key []byte, count int64) ([][]byte, error)
	SRandMember(ctx context.Context, key []byte) ([]byte, error)
	SRandMemberCount(ctx context.Context, key []byte, count int64) ([][]byte, error)
	SRem(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	SUnion(ctx context.Context, keys ...[]byte) ([][]byte, error)
	SUnionStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error)

	// SScan walks the members of the set at key. The cursor issues one
	// SSCAN round trip per batch and stops once the server returns a
	// zero cursor.
	SScan(ctx context.Context, key []byte, opts ScanOptions) (*ScanCursor, error)
}

// ZSetCommands describes the Redis sorted-set command group. Clustered
// implementations must reject multi-key operations whose keys do not all
// map to the same hash slot with a *CrossSlotError before issuing the
// command.
type ZSetCommands interface {
	ZAdd(ctx context.Context, key []byte, score float64, member []byte, args ZAddArgs) (bool, error)
	ZAddTuples(ctx context.Context, key []byte, tuples []Tuple, args ZAddArgs) (int64, error)
	ZRem(ctx context.Context, key []byte, members ...[]byte) (int64, error)
	ZIncrBy(ctx context.Context, key []byte, increment float64, member []byte) (float64, error)

	ZRandMember(ctx context.Context, key []byte) ([]byte, error)
	ZRandMemberCount(ctx context.Context, key []byte, count int64) ([][]byte, error)
	ZRandMemberWithScore(ctx context.Context, key []byte) (*Tuple, error)
	ZRandMemberWithScoreCount(ctx context.Context, key []byte, count int64) ([]Tuple, error)

	ZRank(ctx context.Context, key, member []byte) (int64, error)
	ZRevRank(ctx context.Context, key, member []byte) (int64, error)
	ZCard(ctx context.Context, key []byte) (int64, error)
	ZScore(ctx context.Context, key, member []byte) (float64, error)
	ZMScore(ctx context.Context, key []byte, members ...[]byte) ([]float64, error)
	ZCount(ctx context.Context, key []byte, rng Range) (int64, error)
	ZLexCount(ctx context.Context, key []byte, rng Range) (int64, error)

	ZRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error)
	ZRangeWithScores(ctx context.Context, key []byte, start, stop int64) ([]Tuple, error)
	ZRangeByScore(ctx context.Context, key []byte, rng Range, limit Limit) ([][]byte, error)
	ZRangeByScoreWithScores(ctx context.Context, key []byte, rng Range, limit Limit) ([]Tuple, error)
	ZRevRange(ctx context.Context, key []byte, start, stop int64) ([][]byte, error)
	ZRevRangeWithScores(ctx context.Context, key []byte, start, stop int64) ([]Tuple, error)
	ZRevRangeByScore(ctx context.Context, key []byte, rng Range, limit Limit) ([][]byte, error)
	ZRevRangeByScoreWithScores(ctx context.Context, key []byte, rng Range, limit Limit) ([]Tuple, error)
	ZRangeByLex(ctx context.Context, key []byte, rng Range, limit Limit) ([][]byte, error)
	ZRevRangeByLex(ctx context.Context, key []byte, rng Range, limit Limit) ([][]byte, error)

	ZPopMin(ctx context.Context, key []byte) (*Tuple, error)
	ZPopMinCount(ctx context.Context, key []byte, count int64) ([]Tuple, error)
	BZPopMin(ctx context.Context, key []byte, timeout time.Duration) (*Tuple, error)
	ZPopMax(ctx context.Context, key []byte) (*Tuple, error)
	ZPopMaxCount(ctx context.Context, key []byte, count int64) ([]Tuple, error)
	BZPopMax(ctx context.Context, key []byte, timeout time.Duration) (*Tuple, error)

	ZRemRange(ctx context.Context, key []byte, start, stop int64) (int64, error)
	ZRemRangeByScore(ctx context.Context, key []byte, rng Range) (int64, error)
	ZRemRangeByLex(ctx context.Context, key []byte, rng Range) (int64, error)

	ZDiff(ctx context.Context, keys ...[]byte) ([][]byte, error)
	ZDiffWithScores(ctx context.Context, keys ...[]byte) ([]Tuple, error)
	ZDiffStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error)
	ZInter(ctx context.Context, keys ...[]byte) ([][]byte, error)
	ZInterWithScores(ctx context.Context, keys ...[]byte) ([]Tuple, error)
	ZInterWeighted(ctx context.Context, agg Aggregate, weights Weights, keys ...[]byte) ([]Tuple, error)
	ZInterStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error)
	ZInterStoreWeighted(ctx context.Context, dest []byte, agg Aggregate, weights Weights, keys ...[]byte) (int64, error)
	ZUnion(ctx context.Context, keys ...[]byte) ([][]byte, error)
	ZUnionWithScores(ctx context.Context, keys ...[]byte) ([]Tuple, error)
	ZUnionWeighted(ctx context.Context, agg Aggregate, weights Weights, keys ...[]byte) ([]Tuple, error)
	ZUnionStore(ctx context.Context, dest []byte, keys ...[]byte) (int64, error)
	ZUnionStoreWeighted(ctx context.Context, dest []byte, agg Aggregate, weights Weights, keys ...[]byte) (int64, error)

	ZScan(ctx context.Context, key []byte, opts ScanOptions) (*TupleScanCursor, error)
}

// PublishResult reports the outcome of one message published through
// PublishStream: the number of clients that received it, or the
// translated error.
type PublishResult struct {
	Receivers int64
	Err       error
}

// PubSubCommands describes the publish/subscribe command group. Message
// delivery is channel based; the native client owns the subscriber
// connection and its reconnect behavior.
type PubSubCommands interface {
	Publish(ctx context.Context, channel, payload []byte) (int64, error)

	// PublishStream publishes every message received on messages and
	// emits one PublishResult per message on the returned channel. The
	// result channel is closed after messages is closed and drained, or
	// when ctx is done.
	PublishStream(ctx context.Context, messages <-chan Message) <-chan PublishResult

	Subscribe(ctx context.Context, channels ...[]byte) (Subscription, error)
	PSubscribe(ctx context.Context, patterns ...[]byte) (Subscription, error)

	Channels(ctx context.Context) ([][]byte, error)
	ChannelsMatching(ctx context.Context, pattern []byte) ([][]byte, error)
	NumSub(ctx context.Context, channels ...[]byte) (map[string]int64, error)
}

// Subscription is a live subscriber registration. Channels and patterns
// may be added or removed while messages are being consumed.
type Subscription interface {
	// Messages returns the stream of messages delivered to this
	// subscription. The channel is closed when the subscription is.
	Messages() <-chan Message

	Subscribe(ctx context.Context, channels ...[]byte) error
	PSubscribe(ctx context.Context, patterns ...[]byte) error
	Unsubscribe(ctx context.Context, channels ...[]byte) error
	PUnsubscribe(ctx context.Context, patterns ...[]byte) error

	Close() error
}
