package goredisdriver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/rebridge-io/rebridge"
)

func initZSetsMock() (rebridge.ZSetCommands, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewFromClient(db).ZSets(), mock
}

func Test_zsetCommands_ZAdd(t *testing.T) {
	ctx := context.Background()

	t.Run(`[Given] a new member with a score
		    [When] ZAdd is called
		    [Then] forward ZADD and report the member as added`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZAddArgs("board", redis.ZAddArgs{
			Members: []redis.Z{{Score: 1.5, Member: "alice"}},
		}).SetVal(1)

		added, err := zsets.ZAdd(ctx, []byte("board"), 1.5, []byte("alice"), rebridge.ZAddArgs{})

		assert.NoError(t, err)
		assert.True(t, added)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] the GT flag
		    [When] ZAdd is called
		    [Then] the flag rides along on the native call`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZAddArgs("board", redis.ZAddArgs{
			GT:      true,
			Members: []redis.Z{{Score: 9, Member: "alice"}},
		}).SetVal(0)

		added, err := zsets.ZAdd(ctx, []byte("board"), 9, []byte("alice"), rebridge.ZAddArgs{GT: true})

		assert.NoError(t, err)
		assert.False(t, added)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] NX combined with XX
		    [When] ZAdd is called
		    [Then] reject the flags before touching redis`, func(t *testing.T) {

		zsets, mock := initZSetsMock()

		_, err := zsets.ZAdd(ctx, []byte("board"), 1, []byte("alice"), rebridge.ZAddArgs{NX: true, XX: true})

		var argErr *rebridge.ArgError
		assert.True(t, errors.As(err, &argErr), "error should be an *ArgError")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] several tuples
		    [When] ZAddTuples is called
		    [Then] forward them in one ZADD and return the added count`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZAddArgs("board", redis.ZAddArgs{
			Ch: true,
			Members: []redis.Z{
				{Score: 1, Member: "alice"},
				{Score: 2, Member: "bob"},
			},
		}).SetVal(2)

		added, err := zsets.ZAddTuples(ctx, []byte("board"), []rebridge.Tuple{
			{Member: []byte("alice"), Score: 1},
			{Member: []byte("bob"), Score: 2},
		}, rebridge.ZAddArgs{CH: true})

		assert.NoError(t, err)
		assert.Equal(t, int64(2), added)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_zsetCommands_lookups(t *testing.T) {
	ctx := context.Background()

	t.Run(`[Given] a member absent from the set
		    [When] ZScore is called
		    [Then] report the nil bulk through ErrNil`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZScore("board", "ghost").SetErr(redis.Nil)

		_, err := zsets.ZScore(ctx, []byte("board"), []byte("ghost"))

		assert.Equal(t, rebridge.ErrNil, err)
	})

	t.Run(`[Given] a member absent from the set
		    [When] ZRank is called
		    [Then] report the nil reply through ErrNil`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZRank("board", "ghost").SetErr(redis.Nil)

		_, err := zsets.ZRank(ctx, []byte("board"), []byte("ghost"))

		assert.Equal(t, rebridge.ErrNil, err)
	})

	t.Run(`[Given] a populated set
		    [When] ZCard is called
		    [Then] return its cardinality`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZCard("board").SetVal(3)

		card, err := zsets.ZCard(ctx, []byte("board"))

		assert.NoError(t, err)
		assert.Equal(t, int64(3), card)
	})

	t.Run(`[Given] an unbounded min and an exclusive max
		    [When] ZCount is called
		    [Then] encode the boundaries as -inf and (5`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZCount("board", "-inf", "(5").SetVal(2)

		count, err := zsets.ZCount(ctx, []byte("board"), rebridge.Range{
			Min: rebridge.Unbounded(),
			Max: rebridge.Excl([]byte("5")),
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] an inclusive lex range
		    [When] ZLexCount is called
		    [Then] encode the boundaries as [a and [c`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZLexCount("board", "[a", "[c").SetVal(3)

		count, err := zsets.ZLexCount(ctx, []byte("board"), rebridge.Range{
			Min: rebridge.Incl([]byte("a")),
			Max: rebridge.Incl([]byte("c")),
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_zsetCommands_ranges(t *testing.T) {
	ctx := context.Background()

	t.Run(`[Given] an index range
		    [When] ZRangeWithScores is called
		    [Then] return the tuples in order`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZRangeWithScores("board", 0, -1).SetVal([]redis.Z{
			{Score: 1, Member: "alice"},
			{Score: 2, Member: "bob"},
		})

		tuples, err := zsets.ZRangeWithScores(ctx, []byte("board"), 0, -1)

		assert.NoError(t, err)
		assert.Equal(t, []rebridge.Tuple{
			{Member: []byte("alice"), Score: 1},
			{Member: []byte("bob"), Score: 2},
		}, tuples)
	})

	t.Run(`[Given] a score range with a limit
		    [When] ZRangeByScore is called
		    [Then] the encoded boundaries and the limit ride along`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZRangeByScore("board", &redis.ZRangeBy{
			Min:    "(1",
			Max:    "+inf",
			Offset: 5,
			Count:  10,
		}).SetVal([]string{"bob"})

		members, err := zsets.ZRangeByScore(ctx, []byte("board"),
			rebridge.Range{Min: rebridge.Excl([]byte("1")), Max: rebridge.Unbounded()},
			rebridge.Limit{Offset: 5, Count: 10})

		assert.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("bob")}, members)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] a limit offset beyond the 32 bit range
		    [When] ZRangeByScore is called
		    [Then] reject it before touching redis`, func(t *testing.T) {

		zsets, mock := initZSetsMock()

		_, err := zsets.ZRangeByScore(ctx, []byte("board"), rebridge.RangeAll(),
			rebridge.Limit{Offset: int64(1) << 33, Count: 1})

		var argErr *rebridge.ArgError
		assert.True(t, errors.As(err, &argErr), "error should be an *ArgError")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] a lex range
		    [When] ZRangeByLex is called
		    [Then] encode the unbounded sides as - and +`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZRangeByLex("board", &redis.ZRangeBy{
			Min: "-",
			Max: "+",
		}).SetVal([]string{"alice", "bob"})

		members, err := zsets.ZRangeByLex(ctx, []byte("board"), rebridge.RangeAll(), rebridge.Limit{})

		assert.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("alice"), []byte("bob")}, members)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_zsetCommands_pops(t *testing.T) {
	ctx := context.Background()

	t.Run(`[Given] a populated set
		    [When] ZPopMin is called
		    [Then] return the lowest scored tuple`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZPopMin("board").SetVal([]redis.Z{{Score: 1, Member: "alice"}})

		tuple, err := zsets.ZPopMin(ctx, []byte("board"))

		assert.NoError(t, err)
		if assert.NotNil(t, tuple) {
			assert.Equal(t, []byte("alice"), tuple.Member)
			assert.Equal(t, float64(1), tuple.Score)
		}
	})

	t.Run(`[Given] an empty set
		    [When] ZPopMax is called
		    [Then] return a nil tuple without an error`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZPopMax("board").SetVal([]redis.Z{})

		tuple, err := zsets.ZPopMax(ctx, []byte("board"))

		assert.NoError(t, err)
		assert.Nil(t, tuple)
	})

	t.Run(`[Given] nothing to pop before the timeout
		    [When] BZPopMin is called
		    [Then] return a nil tuple without an error`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectBZPopMin(time.Second, "board").SetErr(redis.Nil)

		tuple, err := zsets.BZPopMin(ctx, []byte("board"), time.Second)

		assert.NoError(t, err)
		assert.Nil(t, tuple)
	})

	t.Run(`[Given] an element arrives within the timeout
		    [When] BZPopMax is called
		    [Then] return the popped tuple`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectBZPopMax(time.Second, "board").SetVal(&redis.ZWithKey{
			Z:   redis.Z{Score: 9, Member: "bob"},
			Key: "board",
		})

		tuple, err := zsets.BZPopMax(ctx, []byte("board"), time.Second)

		assert.NoError(t, err)
		if assert.NotNil(t, tuple) {
			assert.Equal(t, []byte("bob"), tuple.Member)
			assert.Equal(t, float64(9), tuple.Score)
		}
	})
}

func Test_zsetCommands_slotAffinity(t *testing.T) {
	ctx := context.Background()

	// foo and bar map to slots 12182 and 5061; {tag} pins every key of a
	// case to one slot.

	t.Run(`[Given] keys in different slots
		    [When] ZDiff is called
		    [Then] reject the call before any round trip`, func(t *testing.T) {

		zsets, mock := initZSetsMock()

		_, err := zsets.ZDiff(ctx, []byte("foo"), []byte("bar"))

		var crossSlot *rebridge.CrossSlotError
		if assert.True(t, errors.As(err, &crossSlot), "error should be a *CrossSlotError") {
			assert.Equal(t, "ZDIFF", crossSlot.Command)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] same-slot source keys but a destination elsewhere
		    [When] ZUnionStore is called
		    [Then] reject the call before any round trip`, func(t *testing.T) {

		zsets, mock := initZSetsMock()

		_, err := zsets.ZUnionStore(ctx, []byte("elsewhere"),
			[]byte("{tag}a"), []byte("{tag}b"))

		var crossSlot *rebridge.CrossSlotError
		if assert.True(t, errors.As(err, &crossSlot), "error should be a *CrossSlotError") {
			assert.Equal(t, "ZUNIONSTORE", crossSlot.Command)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] keys pinned to one slot by a hash tag
		    [When] ZInterWithScores is called
		    [Then] forward the call and return the tuples`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZInterWithScores(&redis.ZStore{
			Keys: []string{"{tag}a", "{tag}b"},
		}).SetVal([]redis.Z{{Score: 3, Member: "alice"}})

		tuples, err := zsets.ZInterWithScores(ctx, []byte("{tag}a"), []byte("{tag}b"))

		assert.NoError(t, err)
		assert.Equal(t, []rebridge.Tuple{{Member: []byte("alice"), Score: 3}}, tuples)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] weights and an aggregate
		    [When] ZUnionStoreWeighted is called
		    [Then] forward WEIGHTS and AGGREGATE on the native call`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZUnionStore("{tag}dst", &redis.ZStore{
			Keys:      []string{"{tag}a", "{tag}b"},
			Weights:   []float64{2, 3},
			Aggregate: "MAX",
		}).SetVal(4)

		stored, err := zsets.ZUnionStoreWeighted(ctx, []byte("{tag}dst"),
			rebridge.AggregateMax, rebridge.Weights{2, 3},
			[]byte("{tag}a"), []byte("{tag}b"))

		assert.NoError(t, err)
		assert.Equal(t, int64(4), stored)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] a weight count that does not match the key count
		    [When] ZInterWeighted is called
		    [Then] reject it before the slot check`, func(t *testing.T) {

		zsets, mock := initZSetsMock()

		_, err := zsets.ZInterWeighted(ctx, rebridge.AggregateSum,
			rebridge.Weights{1}, []byte("{tag}a"), []byte("{tag}b"))

		var argErr *rebridge.ArgError
		assert.True(t, errors.As(err, &argErr), "error should be an *ArgError")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_zsetCommands_ZScan(t *testing.T) {
	ctx := context.Background()

	t.Run(`[Given] a set scanned in two batches
		    [When] the cursor is drained
		    [Then] every member/score pair is visited across both round trips`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZScan("board", 0, "", 0).SetVal([]string{"alice", "1.5", "bob", "2"}, 9)
		mock.ExpectZScan("board", 9, "", 0).SetVal([]string{"carol", "3"}, 0)

		cursor, err := zsets.ZScan(ctx, []byte("board"), rebridge.ScanOptions{})
		if err != nil {
			t.Fatal(err)
		}
		defer cursor.Close()

		var tuples []rebridge.Tuple
		for cursor.Next() {
			tuples = append(tuples, cursor.Tuple())
		}

		assert.NoError(t, cursor.Err())
		assert.Equal(t, []rebridge.Tuple{
			{Member: []byte("alice"), Score: 1.5},
			{Member: []byte("bob"), Score: 2},
			{Member: []byte("carol"), Score: 3},
		}, tuples)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] the backing redis fails mid-scan
		    [When] the cursor is drained
		    [Then] iteration stops and Err reports the command error`, func(t *testing.T) {

		zsets, mock := initZSetsMock()
		mock.ExpectZScan("board", 0, "", 0).SetErr(errors.New("ERR timeout"))

		cursor, err := zsets.ZScan(ctx, []byte("board"), rebridge.ScanOptions{})
		if err != nil {
			t.Fatal(err)
		}
		defer cursor.Close()

		assert.False(t, cursor.Next())

		var cmdErr *rebridge.CommandError
		assert.True(t, errors.As(cursor.Err(), &cmdErr), "error should be a *CommandError")
	})
}
