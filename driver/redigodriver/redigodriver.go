// Package redigodriver implements the neutral command contracts on top
// of the synchronous redigo client. Connections come from a redigo pool;
// each operation borrows one for the duration of a single command.
package redigodriver

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/rebridge-io/rebridge"
)

// driverName tags translated errors.
const driverName = "redigo"

var errMalformedScan = errors.New("malformed scan reply")

// Config holds the settings for dialing the backing Redis server.
type Config struct {
	Addr         string
	Password     string
	MaxIdleConns int
	IdleTimeout  time.Duration
}

// Client owns the connection pool the command implementations draw from.
type Client struct {
	pool *redis.Pool
}

// New returns a Client backed by a fresh pool dialed from config.
func New(config Config) *Client {
	options := make([]redis.DialOption, 0)
	if config.Password != "" {
		options = append(options, redis.DialPassword(config.Password))
	}

	pool := &redis.Pool{
		MaxIdle:     config.MaxIdleConns,
		IdleTimeout: config.IdleTimeout,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", config.Addr, options...)
		},
	}

	return NewFromPool(pool)
}

// NewFromPool returns a Client drawing connections from an existing
// pool. The pool remains owned by the Client and is released on Close.
func NewFromPool(pool *redis.Pool) *Client {
	return &Client{pool: pool}
}

// Sets returns the set command group backed by this client.
func (c *Client) Sets() rebridge.SetCommands {
	return &setCommands{client: c}
}

// Ping checks the backing server.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return translate("PING", err)
	}
	defer conn.Close()

	_, err = redis.String(conn.Do("PING"))
	return translate("PING", err)
}

// Close releases the pool and every idle connection in it.
func (c *Client) Close() error {
	return c.pool.Close()
}

// translate rewraps a redigo error into the neutral form: the nil-reply
// sentinel maps to rebridge.ErrNil, everything else becomes a
// CommandError tagged with the command that failed.
func translate(command string, err error) error {
	if err == nil {
		return nil
	}
	if err == redis.ErrNil {
		return rebridge.ErrNil
	}
	return &rebridge.CommandError{Driver: driverName, Command: command, Err: err}
}

func commandArgs(key []byte, rest ...[]byte) []interface{} {
	args := make([]interface{}, 0, len(rest)+1)
	args = append(args, key)
	for _, r := range rest {
		args = append(args, r)
	}
	return args
}
