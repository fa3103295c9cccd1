// Package goredisdriver implements the neutral command contracts on top
// of the go-redis client. The sorted-set group carries the clustered
// semantics: multi-key operations are rejected up front unless every key
// maps to the same cluster slot. Pub/sub delivery is channel based and
// rides on the client's own subscriber connection handling.
package goredisdriver

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/rebridge-io/rebridge"
)

// driverName tags translated errors.
const driverName = "goredis"

// Config holds the settings for building the native client. A single
// address yields a plain client, several a cluster client; Cluster
// forces cluster mode regardless.
type Config struct {
	Addrs    []string
	Password string
	DB       int
	Cluster  bool
}

// Client wraps the native universal client the command groups share.
type Client struct {
	native redis.UniversalClient
}

// New builds a Client from config.
func New(config Config) *Client {
	options := &redis.UniversalOptions{
		Addrs:    config.Addrs,
		Password: config.Password,
		DB:       config.DB,
	}
	if config.Cluster {
		return NewFromClient(redis.NewClusterClient(options.Cluster()))
	}
	return NewFromClient(redis.NewUniversalClient(options))
}

// NewFromClient wraps an existing native client. The native client
// remains owned by the returned Client and is released on Close.
func NewFromClient(native redis.UniversalClient) *Client {
	return &Client{native: native}
}

// ZSets returns the clustered sorted-set command group backed by this
// client.
func (c *Client) ZSets() rebridge.ZSetCommands {
	return &zsetCommands{c: c.native}
}

// PubSub returns the publish/subscribe command group backed by this
// client.
func (c *Client) PubSub() rebridge.PubSubCommands {
	return &pubSubCommands{client: c.native}
}

// Ping checks the backing server (or a cluster node).
func (c *Client) Ping(ctx context.Context) error {
	return translate("PING", c.native.Ping(ctx).Err())
}

// Close releases the native client.
func (c *Client) Close() error {
	return c.native.Close()
}

// translate rewraps a go-redis error into the neutral form: redis.Nil
// maps to rebridge.ErrNil, everything else becomes a CommandError
// tagged with the command that failed.
func translate(command string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return rebridge.ErrNil
	}
	return &rebridge.CommandError{Driver: driverName, Command: command, Err: err}
}
