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

func initPubSubMock() (rebridge.PubSubCommands, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewPubSub(db), mock
}

func Test_pubSubCommands_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run(`[Given] two subscribers on a channel
		    [When] Publish is called
		    [Then] forward PUBLISH and return the receiver count`, func(t *testing.T) {

		pubsub, mock := initPubSubMock()
		mock.ExpectPublish("news", []byte("hello")).SetVal(2)

		receivers, err := pubsub.Publish(ctx, []byte("news"), []byte("hello"))

		assert.NoError(t, err)
		assert.Equal(t, int64(2), receivers)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] a nil channel
		    [When] Publish is called
		    [Then] return an argument error without touching redis`, func(t *testing.T) {

		pubsub, mock := initPubSubMock()

		_, err := pubsub.Publish(ctx, nil, []byte("hello"))

		var argErr *rebridge.ArgError
		assert.True(t, errors.As(err, &argErr), "error should be an *ArgError")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] the backing redis returns an error
		    [When] Publish is called
		    [Then] wrap it in a command error carrying the driver name`, func(t *testing.T) {

		pubsub, mock := initPubSubMock()
		mock.ExpectPublish("news", []byte("hello")).SetErr(errors.New("ERR connection refused"))

		_, err := pubsub.Publish(ctx, []byte("news"), []byte("hello"))

		var cmdErr *rebridge.CommandError
		if assert.True(t, errors.As(err, &cmdErr), "error should be a *CommandError") {
			assert.Equal(t, "goredis", cmdErr.Driver)
			assert.Equal(t, "PUBLISH", cmdErr.Command)
		}
	})
}

func Test_pubSubCommands_PublishStream(t *testing.T) {

	t.Run(`[Given] a stream of two messages
		    [When] the input channel is closed after both
		    [Then] one result per message arrives and the result channel closes`, func(t *testing.T) {

		pubsub, mock := initPubSubMock()
		mock.ExpectPublish("news", []byte("one")).SetVal(1)
		mock.ExpectPublish("news", []byte("two")).SetErr(errors.New("ERR connection refused"))

		messages := make(chan rebridge.Message, 2)
		messages <- rebridge.Message{Channel: []byte("news"), Payload: []byte("one")}
		messages <- rebridge.Message{Channel: []byte("news"), Payload: []byte("two")}
		close(messages)

		var results []rebridge.PublishResult
		for result := range pubsub.PublishStream(context.Background(), messages) {
			results = append(results, result)
		}

		if assert.Len(t, results, 2) {
			assert.Equal(t, int64(1), results[0].Receivers)
			assert.NoError(t, results[0].Err)

			var cmdErr *rebridge.CommandError
			assert.True(t, errors.As(results[1].Err, &cmdErr), "second result should carry a *CommandError")
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] a stream that never ends
		    [When] the context is cancelled
		    [Then] the result channel closes`, func(t *testing.T) {

		pubsub, _ := initPubSubMock()

		ctx, cancel := context.WithCancel(context.Background())
		messages := make(chan rebridge.Message)
		results := pubsub.PublishStream(ctx, messages)

		cancel()

		select {
		case _, open := <-results:
			assert.False(t, open, "result channel should be closed")
		case <-time.After(time.Second):
			t.Fatal("result channel was not closed after cancellation")
		}
	})
}

func Test_pubSubCommands_introspection(t *testing.T) {
	ctx := context.Background()

	t.Run(`[Given] two active channels
		    [When] Channels is called
		    [Then] list them through PUBSUB CHANNELS`, func(t *testing.T) {

		pubsub, mock := initPubSubMock()
		mock.ExpectPubSubChannels("").SetVal([]string{"news", "sport"})

		channels, err := pubsub.Channels(ctx)

		assert.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("news"), []byte("sport")}, channels)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] a pattern
		    [When] ChannelsMatching is called
		    [Then] the pattern rides along on the native call`, func(t *testing.T) {

		pubsub, mock := initPubSubMock()
		mock.ExpectPubSubChannels("news.*").SetVal([]string{"news.eu"})

		channels, err := pubsub.ChannelsMatching(ctx, []byte("news.*"))

		assert.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("news.eu")}, channels)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] subscriber counts per channel
		    [When] NumSub is called
		    [Then] return the counts keyed by channel`, func(t *testing.T) {

		pubsub, mock := initPubSubMock()
		mock.ExpectPubSubNumSub("news", "sport").SetVal(map[string]int64{
			"news":  3,
			"sport": 0,
		})

		counts, err := pubsub.NumSub(ctx, []byte("news"), []byte("sport"))

		assert.NoError(t, err)
		assert.Equal(t, map[string]int64{"news": 3, "sport": 0}, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run(`[Given] no channels
		    [When] NumSub is called
		    [Then] return an argument error`, func(t *testing.T) {

		pubsub, _ := initPubSubMock()

		_, err := pubsub.NumSub(ctx)

		var argErr *rebridge.ArgError
		assert.True(t, errors.As(err, &argErr), "error should be an *ArgError")
	})
}

func Test_subscription_Close(t *testing.T) {

	t.Run(`[Given] a delivered message nobody is consuming
		    [When] the subscription is closed
		    [Then] the conversion goroutine exits and the message channel closes`, func(t *testing.T) {

		sub := &subscription{
			msgs: make(chan rebridge.Message),
			done: make(chan struct{}),
		}

		in := make(chan *redis.Message, 1)
		in <- &redis.Message{Channel: "news", Payload: "hello"}

		go sub.convert(in)
		close(sub.done)

		// Let the goroutine observe the close; nobody is reading msgs, so
		// without the guard it would sit in the send forever.
		time.Sleep(100 * time.Millisecond)

		select {
		case _, open := <-sub.msgs:
			assert.False(t, open, "message channel should close instead of delivering")
		case <-time.After(time.Second):
			t.Fatal("message channel was not closed after the subscription")
		}
	})
}

func Test_convertMessage(t *testing.T) {

	t.Run(`[Given] a message delivered through a plain subscription
		    [When] it is converted
		    [Then] the pattern stays nil`, func(t *testing.T) {

		msg := convertMessage(&redis.Message{Channel: "news", Payload: "hello"})

		assert.Equal(t, []byte("news"), msg.Channel)
		assert.Equal(t, []byte("hello"), msg.Payload)
		assert.Nil(t, msg.Pattern)
	})

	t.Run(`[Given] a message delivered through a pattern subscription
		    [When] it is converted
		    [Then] the matching pattern is carried over`, func(t *testing.T) {

		msg := convertMessage(&redis.Message{Channel: "news.eu", Pattern: "news.*", Payload: "hello"})

		assert.Equal(t, []byte("news.*"), msg.Pattern)
	})
}
