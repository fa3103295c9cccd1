package rebridge

import "fmt"

// Tuple is a sorted-set member together with its score.
type Tuple struct {
	Member []byte
	Score  float64
}

// Bound is one end of a Range. The zero value is unbounded: -inf/+inf in
// score form, -/+ in lex form.
type Bound struct {
	Value     []byte
	Exclusive bool
}

// Incl returns an inclusive bound on value.
func Incl(value []byte) Bound {
	return Bound{Value: value}
}

// Excl returns an exclusive bound on value.
func Excl(value []byte) Bound {
	return Bound{Value: value, Exclusive: true}
}

// Unbounded returns a bound matching everything on its side of the range.
func Unbounded() Bound {
	return Bound{}
}

func (b Bound) unbounded() bool {
	return b.Value == nil
}

// ScoreMin encodes the bound the way score-ranged commands (ZRANGEBYSCORE,
// ZCOUNT, ZREMRANGEBYSCORE) expect their minimum: -inf when unbounded and
// a "(" prefix when exclusive.
func (b Bound) ScoreMin() string {
	return b.score("-inf")
}

// ScoreMax encodes the bound as a score-range maximum.
func (b Bound) ScoreMax() string {
	return b.score("+inf")
}

func (b Bound) score(unbounded string) string {
	if b.unbounded() {
		return unbounded
	}
	if b.Exclusive {
		return "(" + string(b.Value)
	}
	return string(b.Value)
}

// LexMin encodes the bound the way lex-ranged commands (ZRANGEBYLEX,
// ZLEXCOUNT, ZREMRANGEBYLEX) expect their minimum: "-" when unbounded,
// "[" inclusive or "(" exclusive otherwise.
func (b Bound) LexMin() string {
	return b.lex("-")
}

// LexMax encodes the bound as a lex-range maximum.
func (b Bound) LexMax() string {
	return b.lex("+")
}

func (b Bound) lex(unbounded string) string {
	if b.unbounded() {
		return unbounded
	}
	if b.Exclusive {
		return "(" + string(b.Value)
	}
	return "[" + string(b.Value)
}

// Range selects sorted-set entries between two bounds, interpreted as
// scores or lexicographic positions depending on the command.
type Range struct {
	Min Bound
	Max Bound
}

// RangeAll matches the whole sorted set.
func RangeAll() Range {
	return Range{}
}

// Limit restricts a ranged read to count entries starting at offset. The
// zero value means unlimited.
type Limit struct {
	Offset int64
	Count  int64
}

// Unlimited reports whether no LIMIT clause should be sent.
func (l Limit) Unlimited() bool {
	return l.Offset == 0 && l.Count == 0
}

// ZAddArgs carries the optional ZADD flags. NX cannot be combined with
// XX, GT or LT.
type ZAddArgs struct {
	NX bool
	XX bool
	GT bool
	LT bool
	CH bool
}

// Validate reports flag combinations Redis rejects.
func (a ZAddArgs) Validate() error {
	if a.NX && (a.XX || a.GT || a.LT) {
		return NewArgError("ZADD NX cannot be combined with XX, GT or LT")
	}
	if a.GT && a.LT {
		return NewArgError("ZADD GT and LT are mutually exclusive")
	}
	return nil
}

// Aggregate selects how weighted union/intersection combines scores.
type Aggregate int

const (
	AggregateSum Aggregate = iota
	AggregateMin
	AggregateMax
)

func (a Aggregate) String() string {
	switch a {
	case AggregateMin:
		return "MIN"
	case AggregateMax:
		return "MAX"
	default:
		return "SUM"
	}
}

// Weights holds one multiplication factor per source set of a weighted
// union/intersection.
type Weights []float64

// Validate checks the weight count against the number of source sets.
func (w Weights) Validate(sets int) error {
	if len(w) != sets {
		return NewArgError(fmt.Sprintf("number of weights (%d) must match the number of source sets (%d)", len(w), sets))
	}
	return nil
}

// ScanOptions shape a SCAN-family invocation. A nil Match sends no MATCH
// clause, a zero Count no COUNT clause.
type ScanOptions struct {
	Match []byte
	Count int64
}

// Message is one pub/sub delivery. Pattern is set only for deliveries
// that matched a pattern subscription.
type Message struct {
	Channel []byte
	Pattern []byte
	Payload []byte
}
