package handler

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/tidwall/redcon"

	"github.com/rebridge-io/rebridge"
)

// dispatch routes a parsed RESP command to the matching neutral
// operation and writes its reply back on the connection. Commands the
// façade does not expose get the stock unknown-command error.
func (h *commandHandler) dispatch(ctx context.Context, conn redcon.Conn, command string, args [][]byte) {
	switch command {
	case "SADD", "SCARD", "SDIFF", "SDIFFSTORE", "SINTER", "SINTERSTORE",
		"SISMEMBER", "SMISMEMBER", "SMEMBERS", "SMOVE", "SPOP",
		"SRANDMEMBER", "SREM", "SUNION", "SUNIONSTORE":
		recordCmd(ctx, "sync", command)
		h.dispatchSet(ctx, conn, command, args)

	case "ZADD", "ZCARD", "ZSCORE", "ZMSCORE", "ZINCRBY", "ZRANK", "ZREVRANK",
		"ZREM", "ZCOUNT", "ZLEXCOUNT", "ZRANGE", "ZREVRANGE",
		"ZRANGEBYSCORE", "ZREVRANGEBYSCORE", "ZRANGEBYLEX", "ZREVRANGEBYLEX",
		"ZPOPMIN", "ZPOPMAX", "BZPOPMIN", "BZPOPMAX",
		"ZREMRANGEBYRANK", "ZREMRANGEBYSCORE", "ZREMRANGEBYLEX",
		"ZDIFF", "ZINTER", "ZUNION", "ZDIFFSTORE", "ZINTERSTORE", "ZUNIONSTORE":
		recordCmd(ctx, "async", command)
		h.dispatchZSet(ctx, conn, command, args)

	default:
		conn.WriteError("ERR unknown command '" + command + "'")
	}
}

func (h *commandHandler) dispatchSet(ctx context.Context, conn redcon.Conn, command string, args [][]byte) {
	sets := h.backends.Sets

	writeCount := func(count int64, err error) {
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		conn.WriteInt64(count)
	}

	writeMemberList := func(members [][]byte, err error) {
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		writeMembers(conn, members)
	}

	switch command {
	case "SADD":
		if len(args) < 2 {
			wrongArity(conn, command)
			return
		}
		writeCount(sets.SAdd(ctx, args[0], args[1:]...))

	case "SCARD":
		if len(args) != 1 {
			wrongArity(conn, command)
			return
		}
		writeCount(sets.SCard(ctx, args[0]))

	case "SDIFF":
		if len(args) < 1 {
			wrongArity(conn, command)
			return
		}
		writeMemberList(sets.SDiff(ctx, args...))

	case "SDIFFSTORE":
		if len(args) < 2 {
			wrongArity(conn, command)
			return
		}
		writeCount(sets.SDiffStore(ctx, args[0], args[1:]...))

	case "SINTER":
		if len(args) < 1 {
			wrongArity(conn, command)
			return
		}
		writeMemberList(sets.SInter(ctx, args...))

	case "SINTERSTORE":
		if len(args) < 2 {
			wrongArity(conn, command)
			return
		}
		writeCount(sets.SInterStore(ctx, args[0], args[1:]...))

	case "SISMEMBER":
		if len(args) != 2 {
			wrongArity(conn, command)
			return
		}
		member, err := sets.SIsMember(ctx, args[0], args[1])
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		writeBool(conn, member)

	case "SMISMEMBER":
		if len(args) < 2 {
			wrongArity(conn, command)
			return
		}
		members, err := sets.SMIsMember(ctx, args[0], args[1:]...)
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		conn.WriteArray(len(members))
		for _, m := range members {
			writeBool(conn, m)
		}

	case "SMEMBERS":
		if len(args) != 1 {
			wrongArity(conn, command)
			return
		}
		writeMemberList(sets.SMembers(ctx, args[0]))

	case "SMOVE":
		if len(args) != 3 {
			wrongArity(conn, command)
			return
		}
		moved, err := sets.SMove(ctx, args[0], args[1], args[2])
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		writeBool(conn, moved)

	case "SPOP":
		switch len(args) {
		case 1:
			member, err := sets.SPop(ctx, args[0])
			if err != nil {
				writeReplyError(conn, err)
				return
			}
			conn.WriteBulk(member)
		case 2:
			count, err := parseCount(args[1])
			if err != nil {
				conn.WriteError("ERR value is not an integer or out of range")
				return
			}
			writeMemberList(sets.SPopCount(ctx, args[0], count))
		default:
			wrongArity(conn, command)
		}

	case "SRANDMEMBER":
		switch len(args) {
		case 1:
			member, err := sets.SRandMember(ctx, args[0])
			if err != nil {
				writeReplyError(conn, err)
				return
			}
			conn.WriteBulk(member)
		case 2:
			count, err := parseCount(args[1])
			if err != nil {
				conn.WriteError("ERR value is not an integer or out of range")
				return
			}
			writeMemberList(sets.SRandMemberCount(ctx, args[0], count))
		default:
			wrongArity(conn, command)
		}

	case "SREM":
		if len(args) < 2 {
			wrongArity(conn, command)
			return
		}
		writeCount(sets.SRem(ctx, args[0], args[1:]...))

	case "SUNION":
		if len(args) < 1 {
			wrongArity(conn, command)
			return
		}
		writeMemberList(sets.SUnion(ctx, args...))

	case "SUNIONSTORE":
		if len(args) < 2 {
			wrongArity(conn, command)
			return
		}
		writeCount(sets.SUnionStore(ctx, args[0], args[1:]...))
	}
}

func (h *commandHandler) dispatchZSet(ctx context.Context, conn redcon.Conn, command string, args [][]byte) {
	zsets := h.backends.ZSets

	writeCount := func(count int64, err error) {
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		conn.WriteInt64(count)
	}

	writeMemberList := func(members [][]byte, err error) {
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		writeMembers(conn, members)
	}

	writeTupleList := func(tuples []rebridge.Tuple, err error) {
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		writeTuples(conn, tuples)
	}

	writePop := func(tuple *rebridge.Tuple, err error) {
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		if tuple == nil {
			conn.WriteArray(0)
			return
		}
		conn.WriteArray(2)
		conn.WriteBulk(tuple.Member)
		conn.WriteBulkString(formatScore(tuple.Score))
	}

	switch command {
	case "ZADD":
		key, tuples, zargs, ok := parseZAddArgs(conn, args)
		if !ok {
			return
		}
		writeCount(zsets.ZAddTuples(ctx, key, tuples, zargs))

	case "ZCARD":
		if len(args) != 1 {
			wrongArity(conn, command)
			return
		}
		writeCount(zsets.ZCard(ctx, args[0]))

	case "ZSCORE":
		if len(args) != 2 {
			wrongArity(conn, command)
			return
		}
		score, err := zsets.ZScore(ctx, args[0], args[1])
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		conn.WriteBulkString(formatScore(score))

	case "ZMSCORE":
		if len(args) < 2 {
			wrongArity(conn, command)
			return
		}
		scores, err := zsets.ZMScore(ctx, args[0], args[1:]...)
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		conn.WriteArray(len(scores))
		for _, s := range scores {
			conn.WriteBulkString(formatScore(s))
		}

	case "ZINCRBY":
		if len(args) != 3 {
			wrongArity(conn, command)
			return
		}
		increment, err := strconv.ParseFloat(string(args[1]), 64)
		if err != nil {
			conn.WriteError("ERR value is not a valid float")
			return
		}
		score, err := zsets.ZIncrBy(ctx, args[0], increment, args[2])
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		conn.WriteBulkString(formatScore(score))

	case "ZRANK", "ZREVRANK":
		if len(args) != 2 {
			wrongArity(conn, command)
			return
		}
		rank := zsets.ZRank
		if command == "ZREVRANK" {
			rank = zsets.ZRevRank
		}
		r, err := rank(ctx, args[0], args[1])
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		conn.WriteInt64(r)

	case "ZREM":
		if len(args) < 2 {
			wrongArity(conn, command)
			return
		}
		writeCount(zsets.ZRem(ctx, args[0], args[1:]...))

	case "ZCOUNT":
		if len(args) != 3 {
			wrongArity(conn, command)
			return
		}
		rng := rebridge.Range{Min: parseScoreBound(args[1]), Max: parseScoreBound(args[2])}
		writeCount(zsets.ZCount(ctx, args[0], rng))

	case "ZLEXCOUNT":
		if len(args) != 3 {
			wrongArity(conn, command)
			return
		}
		rng := rebridge.Range{Min: parseLexBound(args[1]), Max: parseLexBound(args[2])}
		writeCount(zsets.ZLexCount(ctx, args[0], rng))

	case "ZRANGE", "ZREVRANGE":
		key, start, stop, withScores, ok := parseIndexRange(conn, command, args)
		if !ok {
			return
		}
		if command == "ZRANGE" {
			if withScores {
				writeTupleList(zsets.ZRangeWithScores(ctx, key, start, stop))
			} else {
				writeMemberList(zsets.ZRange(ctx, key, start, stop))
			}
			return
		}
		if withScores {
			writeTupleList(zsets.ZRevRangeWithScores(ctx, key, start, stop))
		} else {
			writeMemberList(zsets.ZRevRange(ctx, key, start, stop))
		}

	case "ZRANGEBYSCORE", "ZREVRANGEBYSCORE":
		key, rng, limit, withScores, ok := parseScoreRange(conn, command, args)
		if !ok {
			return
		}
		if command == "ZRANGEBYSCORE" {
			if withScores {
				writeTupleList(zsets.ZRangeByScoreWithScores(ctx, key, rng, limit))
			} else {
				writeMemberList(zsets.ZRangeByScore(ctx, key, rng, limit))
			}
			return
		}
		if withScores {
			writeTupleList(zsets.ZRevRangeByScoreWithScores(ctx, key, rng, limit))
		} else {
			writeMemberList(zsets.ZRevRangeByScore(ctx, key, rng, limit))
		}

	case "ZRANGEBYLEX", "ZREVRANGEBYLEX":
		key, rng, limit, ok := parseLexRange(conn, command, args)
		if !ok {
			return
		}
		if command == "ZRANGEBYLEX" {
			writeMemberList(zsets.ZRangeByLex(ctx, key, rng, limit))
			return
		}
		writeMemberList(zsets.ZRevRangeByLex(ctx, key, rng, limit))

	case "ZPOPMIN", "ZPOPMAX":
		popOne, popCount := zsets.ZPopMin, zsets.ZPopMinCount
		if command == "ZPOPMAX" {
			popOne, popCount = zsets.ZPopMax, zsets.ZPopMaxCount
		}
		switch len(args) {
		case 1:
			writePop(popOne(ctx, args[0]))
		case 2:
			count, err := parseCount(args[1])
			if err != nil {
				conn.WriteError("ERR value is not an integer or out of range")
				return
			}
			writeTupleList(popCount(ctx, args[0], count))
		default:
			wrongArity(conn, command)
		}

	case "BZPOPMIN", "BZPOPMAX":
		if len(args) != 2 {
			wrongArity(conn, command)
			return
		}
		seconds, err := strconv.ParseFloat(string(args[1]), 64)
		if err != nil {
			conn.WriteError("ERR timeout is not a float or out of range")
			return
		}
		pop := zsets.BZPopMin
		if command == "BZPOPMAX" {
			pop = zsets.BZPopMax
		}
		tuple, err := pop(ctx, args[0], time.Duration(seconds*float64(time.Second)))
		if err != nil {
			writeReplyError(conn, err)
			return
		}
		if tuple == nil {
			// A timed-out blocking pop is a null array, not a null bulk.
			conn.WriteRaw([]byte("*-1\r\n"))
			return
		}
		conn.WriteArray(3)
		conn.WriteBulk(args[0])
		conn.WriteBulk(tuple.Member)
		conn.WriteBulkString(formatScore(tuple.Score))

	case "ZREMRANGEBYRANK":
		if len(args) != 3 {
			wrongArity(conn, command)
			return
		}
		start, errStart := parseCount(args[1])
		stop, errStop := parseCount(args[2])
		if errStart != nil || errStop != nil {
			conn.WriteError("ERR value is not an integer or out of range")
			return
		}
		writeCount(zsets.ZRemRange(ctx, args[0], start, stop))

	case "ZREMRANGEBYSCORE":
		if len(args) != 3 {
			wrongArity(conn, command)
			return
		}
		rng := rebridge.Range{Min: parseScoreBound(args[1]), Max: parseScoreBound(args[2])}
		writeCount(zsets.ZRemRangeByScore(ctx, args[0], rng))

	case "ZREMRANGEBYLEX":
		if len(args) != 3 {
			wrongArity(conn, command)
			return
		}
		rng := rebridge.Range{Min: parseLexBound(args[1]), Max: parseLexBound(args[2])}
		writeCount(zsets.ZRemRangeByLex(ctx, args[0], rng))

	case "ZDIFF":
		keys, withScores, ok := parseNumKeys(conn, command, args)
		if !ok {
			return
		}
		if withScores {
			writeTupleList(zsets.ZDiffWithScores(ctx, keys...))
			return
		}
		writeMemberList(zsets.ZDiff(ctx, keys...))

	case "ZINTER", "ZUNION":
		keys, agg, weights, withScores, ok := parseCombine(conn, command, args)
		if !ok {
			return
		}
		combine, combineWeighted := zsets.ZInter, zsets.ZInterWeighted
		combineWithScores := zsets.ZInterWithScores
		if command == "ZUNION" {
			combine, combineWeighted = zsets.ZUnion, zsets.ZUnionWeighted
			combineWithScores = zsets.ZUnionWithScores
		}
		if weights != nil || agg != rebridge.AggregateSum {
			if weights == nil {
				weights = defaultWeights(len(keys))
			}
			tuples, err := combineWeighted(ctx, agg, weights, keys...)
			if err != nil {
				writeReplyError(conn, err)
				return
			}
			if withScores {
				writeTuples(conn, tuples)
				return
			}
			writeMembers(conn, tupleMembers(tuples))
			return
		}
		if withScores {
			writeTupleList(combineWithScores(ctx, keys...))
			return
		}
		writeMemberList(combine(ctx, keys...))

	case "ZDIFFSTORE":
		if len(args) < 3 {
			wrongArity(conn, command)
			return
		}
		keys, withScores, ok := parseNumKeys(conn, command, args[1:])
		if !ok {
			return
		}
		if withScores {
			conn.WriteError("ERR syntax error")
			return
		}
		writeCount(zsets.ZDiffStore(ctx, args[0], keys...))

	case "ZINTERSTORE", "ZUNIONSTORE":
		if len(args) < 3 {
			wrongArity(conn, command)
			return
		}
		dest := args[0]
		keys, agg, weights, _, ok := parseCombine(conn, command, args[1:])
		if !ok {
			return
		}
		store, storeWeighted := zsets.ZInterStore, zsets.ZInterStoreWeighted
		if command == "ZUNIONSTORE" {
			store, storeWeighted = zsets.ZUnionStore, zsets.ZUnionStoreWeighted
		}
		if weights != nil || agg != rebridge.AggregateSum {
			if weights == nil {
				weights = defaultWeights(len(keys))
			}
			writeCount(storeWeighted(ctx, dest, agg, weights, keys...))
			return
		}
		writeCount(store(ctx, dest, keys...))
	}
}

// defaultWeights backs AGGREGATE without an explicit WEIGHTS clause:
// redis applies a weight of 1 to every input set.
func defaultWeights(sets int) rebridge.Weights {
	weights := make(rebridge.Weights, sets)
	for i := range weights {
		weights[i] = 1
	}
	return weights
}

func tupleMembers(tuples []rebridge.Tuple) [][]byte {
	members := make([][]byte, len(tuples))
	for i, t := range tuples {
		members[i] = t.Member
	}
	return members
}

// parseZAddArgs parses "key [NX|XX|GT|LT|CH] score member ...". Reports
// false after writing the error reply itself.
func parseZAddArgs(conn redcon.Conn, args [][]byte) ([]byte, []rebridge.Tuple, rebridge.ZAddArgs, bool) {
	var zargs rebridge.ZAddArgs
	if len(args) < 3 {
		wrongArity(conn, "ZADD")
		return nil, nil, zargs, false
	}

	key := args[0]
	rest := args[1:]
	for len(rest) > 0 {
		switch {
		case bytes.EqualFold(rest[0], []byte("NX")):
			zargs.NX = true
		case bytes.EqualFold(rest[0], []byte("XX")):
			zargs.XX = true
		case bytes.EqualFold(rest[0], []byte("GT")):
			zargs.GT = true
		case bytes.EqualFold(rest[0], []byte("LT")):
			zargs.LT = true
		case bytes.EqualFold(rest[0], []byte("CH")):
			zargs.CH = true
		default:
			goto scores
		}
		rest = rest[1:]
	}

scores:
	if len(rest) == 0 || len(rest)%2 != 0 {
		conn.WriteError("ERR syntax error")
		return nil, nil, zargs, false
	}

	tuples := make([]rebridge.Tuple, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		score, err := strconv.ParseFloat(string(rest[i]), 64)
		if err != nil {
			conn.WriteError("ERR value is not a valid float")
			return nil, nil, zargs, false
		}
		tuples = append(tuples, rebridge.Tuple{Member: rest[i+1], Score: score})
	}

	return key, tuples, zargs, true
}

func parseIndexRange(conn redcon.Conn, command string, args [][]byte) ([]byte, int64, int64, bool, bool) {
	if len(args) != 3 && len(args) != 4 {
		wrongArity(conn, command)
		return nil, 0, 0, false, false
	}

	start, errStart := parseCount(args[1])
	stop, errStop := parseCount(args[2])
	if errStart != nil || errStop != nil {
		conn.WriteError("ERR value is not an integer or out of range")
		return nil, 0, 0, false, false
	}

	var withScores bool
	if len(args) == 4 {
		if !bytes.EqualFold(args[3], []byte("WITHSCORES")) {
			conn.WriteError("ERR syntax error")
			return nil, 0, 0, false, false
		}
		withScores = true
	}

	return args[0], start, stop, withScores, true
}

func parseScoreRange(conn redcon.Conn, command string, args [][]byte) ([]byte, rebridge.Range, rebridge.Limit, bool, bool) {
	var (
		rng   rebridge.Range
		limit rebridge.Limit
	)

	if len(args) < 3 {
		wrongArity(conn, command)
		return nil, rng, limit, false, false
	}

	rng = rebridge.Range{Min: parseScoreBound(args[1]), Max: parseScoreBound(args[2])}
	if command == "ZREVRANGEBYSCORE" {
		// RESP orders the reversed form max-then-min; the neutral Range
		// always carries min-then-max.
		rng = rebridge.Range{Min: parseScoreBound(args[2]), Max: parseScoreBound(args[1])}
	}

	var withScores bool
	rest := args[3:]
	for len(rest) > 0 {
		switch {
		case bytes.EqualFold(rest[0], []byte("WITHSCORES")):
			withScores = true
			rest = rest[1:]
		case bytes.EqualFold(rest[0], []byte("LIMIT")) && len(rest) >= 3:
			offset, errOffset := parseCount(rest[1])
			count, errCount := parseCount(rest[2])
			if errOffset != nil || errCount != nil {
				conn.WriteError("ERR value is not an integer or out of range")
				return nil, rng, limit, false, false
			}
			limit = rebridge.Limit{Offset: offset, Count: count}
			rest = rest[3:]
		default:
			conn.WriteError("ERR syntax error")
			return nil, rng, limit, false, false
		}
	}

	return args[0], rng, limit, withScores, true
}

func parseLexRange(conn redcon.Conn, command string, args [][]byte) ([]byte, rebridge.Range, rebridge.Limit, bool) {
	var (
		rng   rebridge.Range
		limit rebridge.Limit
	)

	if len(args) != 3 && len(args) != 6 {
		wrongArity(conn, command)
		return nil, rng, limit, false
	}

	rng = rebridge.Range{Min: parseLexBound(args[1]), Max: parseLexBound(args[2])}
	if command == "ZREVRANGEBYLEX" {
		rng = rebridge.Range{Min: parseLexBound(args[2]), Max: parseLexBound(args[1])}
	}

	if len(args) == 6 {
		if !bytes.EqualFold(args[3], []byte("LIMIT")) {
			conn.WriteError("ERR syntax error")
			return nil, rng, limit, false
		}
		offset, errOffset := parseCount(args[4])
		count, errCount := parseCount(args[5])
		if errOffset != nil || errCount != nil {
			conn.WriteError("ERR value is not an integer or out of range")
			return nil, rng, limit, false
		}
		limit = rebridge.Limit{Offset: offset, Count: count}
	}

	return args[0], rng, limit, true
}

// parseNumKeys parses "numkeys key [key ...] [WITHSCORES]".
func parseNumKeys(conn redcon.Conn, command string, args [][]byte) ([][]byte, bool, bool) {
	if len(args) < 2 {
		wrongArity(conn, command)
		return nil, false, false
	}

	numKeys, err := parseCount(args[0])
	if err != nil || numKeys < 1 || int64(len(args)-1) < numKeys {
		conn.WriteError("ERR numkeys should be greater than 0")
		return nil, false, false
	}

	keys := args[1 : 1+numKeys]
	var withScores bool
	for _, arg := range args[1+numKeys:] {
		if !bytes.EqualFold(arg, []byte("WITHSCORES")) {
			conn.WriteError("ERR syntax error")
			return nil, false, false
		}
		withScores = true
	}

	return keys, withScores, true
}

// parseCombine parses "numkeys key [key ...] [WEIGHTS w ...]
// [AGGREGATE SUM|MIN|MAX] [WITHSCORES]".
func parseCombine(conn redcon.Conn, command string, args [][]byte) ([][]byte, rebridge.Aggregate, rebridge.Weights, bool, bool) {
	agg := rebridge.AggregateSum

	if len(args) < 2 {
		wrongArity(conn, command)
		return nil, agg, nil, false, false
	}

	numKeys, err := parseCount(args[0])
	if err != nil || numKeys < 1 || int64(len(args)-1) < numKeys {
		conn.WriteError("ERR numkeys should be greater than 0")
		return nil, agg, nil, false, false
	}

	keys := args[1 : 1+numKeys]

	var (
		weights    rebridge.Weights
		withScores bool
	)
	rest := args[1+numKeys:]
	for len(rest) > 0 {
		switch {
		case bytes.EqualFold(rest[0], []byte("WITHSCORES")):
			withScores = true
			rest = rest[1:]

		case bytes.EqualFold(rest[0], []byte("WEIGHTS")) && int64(len(rest)) > numKeys:
			weights = make(rebridge.Weights, 0, numKeys)
			for _, arg := range rest[1 : 1+numKeys] {
				w, err := strconv.ParseFloat(string(arg), 64)
				if err != nil {
					conn.WriteError("ERR weight value is not a float")
					return nil, agg, nil, false, false
				}
				weights = append(weights, w)
			}
			rest = rest[1+numKeys:]

		case bytes.EqualFold(rest[0], []byte("AGGREGATE")) && len(rest) >= 2:
			switch {
			case bytes.EqualFold(rest[1], []byte("SUM")):
				agg = rebridge.AggregateSum
			case bytes.EqualFold(rest[1], []byte("MIN")):
				agg = rebridge.AggregateMin
			case bytes.EqualFold(rest[1], []byte("MAX")):
				agg = rebridge.AggregateMax
			default:
				conn.WriteError("ERR syntax error")
				return nil, agg, nil, false, false
			}
			rest = rest[2:]

		default:
			conn.WriteError("ERR syntax error")
			return nil, agg, nil, false, false
		}
	}

	return keys, agg, weights, withScores, true
}
