// Package rebridge provides vendor-neutral Redis command contracts and the
// argument types shared by their driver implementations.
//
// It works by describing one command group per interface (set commands,
// sorted-set commands, publish/subscribe) and leaving the wire protocol,
// connection pooling and cluster routing to the native client library
// backing each driver. The drivers under driver/ only marshal arguments,
// translate replies and rewrap errors.
package rebridge
