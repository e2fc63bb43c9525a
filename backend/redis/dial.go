package redis

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventKind names a connection lifecycle event.
type EventKind string

const (
	EventConnect      EventKind = "connect"
	EventReconnecting EventKind = "reconnecting"
	EventReady        EventKind = "ready"
	EventError        EventKind = "error"
)

// Event is delivered to DialConfig.Observer. Addr is empty for events that
// are not tied to a single node.
type Event struct {
	Kind EventKind
	Addr string
	Err  error
}

// DialConfig describes the topology to connect to.
type DialConfig struct {
	// Addrs are host:port pairs. Single-node mode uses the first one;
	// cluster mode uses all of them as seeds.
	Addrs    []string
	Password string
	Cluster  bool

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Observer receives lifecycle events. It is purely diagnostic: a panic
	// inside it is recovered and never reaches the caller.
	Observer func(Event)
}

var ErrNoAddrs = errors.New("redis backend: no addresses")

// Dial builds a single-node or cluster client for cfg, registers lifecycle
// observers and pings once. A failed ping is reported as an EventError and
// does not fail Dial: the client keeps reconnecting in the background.
// The returned backend owns the client.
func Dial(ctx context.Context, cfg DialConfig) (*Redis, error) {
	if len(cfg.Addrs) == 0 {
		return nil, ErrNoAddrs
	}
	obs := &observer{fn: cfg.Observer}

	var rdb goredis.UniversalClient
	if cfg.Cluster {
		cc := goredis.NewClusterClient(&goredis.ClusterOptions{
			Addrs:         cfg.Addrs,
			Password:      cfg.Password,
			ReadOnly:      true, // serve reads from replicas
			RouteRandomly: true,
			DialTimeout:   cfg.DialTimeout,
			ReadTimeout:   cfg.ReadTimeout,
			WriteTimeout:  cfg.WriteTimeout,
			OnConnect:     obs.onConnect,
		})
		// node clients dial on their own; hook each of them
		cc.OnNewNode(func(node *goredis.Client) { node.AddHook(obs) })
		cc.AddHook(obs)
		rdb = cc
	} else {
		c := goredis.NewClient(&goredis.Options{
			Addr:         cfg.Addrs[0],
			Password:     cfg.Password,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			OnConnect:    obs.onConnect,
		})
		c.AddHook(obs)
		rdb = c
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		obs.emit(Event{Kind: EventError, Err: err})
	} else {
		obs.emit(Event{Kind: EventReady})
	}
	return &Redis{rdb: rdb, closeClient: true}, nil
}

// observer turns go-redis dial/process callbacks into Events.
type observer struct {
	fn   func(Event)
	down atomic.Bool // set after a failed dial or transport error
}

var _ goredis.Hook = (*observer)(nil)

func (o *observer) emit(e Event) {
	if o.fn == nil {
		return
	}
	defer func() { _ = recover() }()
	o.fn(e)
}

func (o *observer) onConnect(_ context.Context, cn *goredis.Conn) error {
	o.down.Store(false)
	o.emit(Event{Kind: EventConnect, Addr: cn.String()})
	return nil
}

func (o *observer) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if o.down.Load() {
			o.emit(Event{Kind: EventReconnecting, Addr: addr})
		}
		conn, err := next(ctx, network, addr)
		if err != nil {
			o.down.Store(true)
			o.emit(Event{Kind: EventError, Addr: addr, Err: err})
		}
		return conn, err
	}
}

func (o *observer) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		err := next(ctx, cmd)
		if isTransportErr(err) {
			o.down.Store(true)
			o.emit(Event{Kind: EventError, Err: err})
		}
		return err
	}
}

func (o *observer) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		err := next(ctx, cmds)
		if isTransportErr(err) {
			o.down.Store(true)
			o.emit(Event{Kind: EventError, Err: err})
		}
		return err
	}
}

// isTransportErr reports errors that are neither a miss nor a server reply.
func isTransportErr(err error) bool {
	if err == nil || err == goredis.Nil {
		return false
	}
	var rerr goredis.Error
	return !errors.As(err, &rerr)
}
