package goredisdriver

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rebridge-io/rebridge"
)

// PubSubClient is the slice of the native client the pub/sub group
// needs. Both *redis.Client and *redis.ClusterClient satisfy it, which
// keeps the façade testable without a live subscriber connection.
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	PSubscribe(ctx context.Context, channels ...string) *redis.PubSub
	PubSubChannels(ctx context.Context, pattern string) *redis.StringSliceCmd
	PubSubNumSub(ctx context.Context, channels ...string) *redis.MapStringIntCmd
}

var (
	_ PubSubClient = (*redis.Client)(nil)
	_ PubSubClient = (*redis.ClusterClient)(nil)
)

// pubSubCommands implements rebridge.PubSubCommands. Subscriber
// connections, resubscription after reconnects and message framing all
// belong to the native client; this façade only converts between the
// neutral and native message shapes.
type pubSubCommands struct {
	client PubSubClient
}

// NewPubSub returns the publish/subscribe command group over an
// explicit native client slice. Most callers reach it through
// Client.PubSub instead.
func NewPubSub(client PubSubClient) rebridge.PubSubCommands {
	return &pubSubCommands{client: client}
}

func (p *pubSubCommands) Publish(ctx context.Context, channel, payload []byte) (int64, error) {
	if channel == nil {
		return 0, rebridge.NewArgError("channel must not be nil")
	}

	receivers, err := p.client.Publish(ctx, string(channel), payload).Result()
	return receivers, translate("PUBLISH", err)
}

func (p *pubSubCommands) PublishStream(ctx context.Context, messages <-chan rebridge.Message) <-chan rebridge.PublishResult {
	results := make(chan rebridge.PublishResult)

	go func() {
		defer close(results)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				receivers, err := p.Publish(ctx, msg.Channel, msg.Payload)
				select {
				case results <- rebridge.PublishResult{Receivers: receivers, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return results
}

func (p *pubSubCommands) Subscribe(ctx context.Context, channels ...[]byte) (rebridge.Subscription, error) {
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	return newSubscription(p.client.Subscribe(ctx, toStrings(channels)...)), nil
}

func (p *pubSubCommands) PSubscribe(ctx context.Context, patterns ...[]byte) (rebridge.Subscription, error) {
	if err := checkChannels(patterns); err != nil {
		return nil, err
	}
	return newSubscription(p.client.PSubscribe(ctx, toStrings(patterns)...)), nil
}

func (p *pubSubCommands) Channels(ctx context.Context) ([][]byte, error) {
	return p.channels(ctx, "")
}

func (p *pubSubCommands) ChannelsMatching(ctx context.Context, pattern []byte) ([][]byte, error) {
	if pattern == nil {
		return nil, rebridge.NewArgError("pattern must not be nil")
	}
	return p.channels(ctx, string(pattern))
}

func (p *pubSubCommands) channels(ctx context.Context, pattern string) ([][]byte, error) {
	channels, err := p.client.PubSubChannels(ctx, pattern).Result()
	if err != nil {
		return nil, translate("PUBSUB CHANNELS", err)
	}
	return toBytes(channels), nil
}

func (p *pubSubCommands) NumSub(ctx context.Context, channels ...[]byte) (map[string]int64, error) {
	if err := checkChannels(channels); err != nil {
		return nil, err
	}

	counts, err := p.client.PubSubNumSub(ctx, toStrings(channels)...).Result()
	if err != nil {
		return nil, translate("PUBSUB NUMSUB", err)
	}
	return counts, nil
}

func checkChannels(channels [][]byte) error {
	if len(channels) == 0 {
		return rebridge.NewArgError("at least one channel is required")
	}
	for _, ch := range channels {
		if ch == nil {
			return rebridge.NewArgError("channels must not contain nil elements")
		}
	}
	return nil
}

// subscription adapts *redis.PubSub to the neutral Subscription. One
// goroutine converts native messages for the lifetime of the
// subscription; it exits when the native channel closes or the
// subscription does.
type subscription struct {
	ps   *redis.PubSub
	msgs chan rebridge.Message
	done chan struct{}
	once sync.Once
}

func newSubscription(ps *redis.PubSub) *subscription {
	s := &subscription{
		ps:   ps,
		msgs: make(chan rebridge.Message),
		done: make(chan struct{}),
	}

	go s.convert(ps.Channel())

	return s
}

// convert forwards native messages until in closes. The done guard keeps
// it from blocking forever on a consumer that abandoned Messages before
// closing the subscription.
func (s *subscription) convert(in <-chan *redis.Message) {
	defer close(s.msgs)
	for msg := range in {
		select {
		case s.msgs <- convertMessage(msg):
		case <-s.done:
			return
		}
	}
}

func (s *subscription) Messages() <-chan rebridge.Message {
	return s.msgs
}

func (s *subscription) Subscribe(ctx context.Context, channels ...[]byte) error {
	if err := checkChannels(channels); err != nil {
		return err
	}
	return translate("SUBSCRIBE", s.ps.Subscribe(ctx, toStrings(channels)...))
}

func (s *subscription) PSubscribe(ctx context.Context, patterns ...[]byte) error {
	if err := checkChannels(patterns); err != nil {
		return err
	}
	return translate("PSUBSCRIBE", s.ps.PSubscribe(ctx, toStrings(patterns)...))
}

func (s *subscription) Unsubscribe(ctx context.Context, channels ...[]byte) error {
	return translate("UNSUBSCRIBE", s.ps.Unsubscribe(ctx, toStrings(channels)...))
}

func (s *subscription) PUnsubscribe(ctx context.Context, patterns ...[]byte) error {
	return translate("PUNSUBSCRIBE", s.ps.PUnsubscribe(ctx, toStrings(patterns)...))
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	return s.ps.Close()
}

func convertMessage(msg *redis.Message) rebridge.Message {
	out := rebridge.Message{
		Channel: []byte(msg.Channel),
		Payload: []byte(msg.Payload),
	}
	if msg.Pattern != "" {
		out.Pattern = []byte(msg.Pattern)
	}
	return out
}
