package store

import (
	"context"

	"github.com/google/uuid"
)

// Conn is one client's connection to a single room document. Writes are
// fire-and-forget at the protocol level; an error here means the request
// could not even be handed to the store.
type Conn interface {
	Set(ctx context.Context, path string, value any) error
	Update(ctx context.Context, path string, fields map[string]any) error
	Push(ctx context.Context, path string, value any) (string, error)
	Remove(ctx context.Context, path string) error
	OnDisconnect(ctx context.Context, path string) error
	Snapshots() <-chan Snapshot
	Close()
}

type localConn struct {
	engine  *Engine
	session string
	code    string
	sub     *Subscription
}

// Connect opens an in-process connection to a room document. The room does
// not have to exist; the first snapshot is nil in that case.
func (e *Engine) Connect(ctx context.Context, code string) (Conn, error) {
	session := uuid.NewString()
	sub, err := e.Subscribe(ctx, session, code)
	if err != nil {
		return nil, err
	}
	return &localConn{engine: e, session: session, code: code, sub: sub}, nil
}

func (c *localConn) Set(ctx context.Context, path string, value any) error {
	return c.engine.Set(ctx, c.code, path, value)
}

func (c *localConn) Update(ctx context.Context, path string, fields map[string]any) error {
	return c.engine.Update(ctx, c.code, path, fields)
}

func (c *localConn) Push(ctx context.Context, path string, value any) (string, error) {
	return c.engine.Push(ctx, c.code, path, value)
}

func (c *localConn) Remove(ctx context.Context, path string) error {
	return c.engine.Remove(ctx, c.code, path)
}

func (c *localConn) OnDisconnect(ctx context.Context, path string) error {
	return c.engine.OnDisconnect(ctx, c.session, c.code, path)
}

func (c *localConn) Snapshots() <-chan Snapshot {
	return c.sub.ch
}

// Close severs the connection: disconnect hooks fire and the subscription
// channel is closed by the engine.
func (c *localConn) Close() {
	c.engine.DropSession(c.session)
}
