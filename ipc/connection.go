package ipc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// ErrQueryOutsideHandler is returned when Query is called while the read loop is not parked
// in a handler.
var ErrQueryOutsideHandler = errors.New("query issued outside a handler")

// Connection represents a single engine bridge talking to the agent.
// Each game gets its own connection, identified by a session id.
type Connection struct {
	conn     net.Conn
	handlers map[string]Handler
	Session  string

	// inHandler is true while ReadLoop waits on a handler, so Query may read the socket.
	inHandler bool
	// pending holds envelopes read by Query that were not its reply.
	pending []Envelope
}

func NewConnection(conn net.Conn, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return WriteEnvelope(c.conn, env)
}

// Query sends a request and blocks for the envelope of replyType, decoding it into out.
// It may only be called from a handler: the read loop is parked, so the socket is ours.
// Unrelated envelopes read meanwhile are dispatched after the handler returns.
func (c *Connection) Query(msgType string, data any, replyType string, out any) error {
	if !c.inHandler {
		return ErrQueryOutsideHandler
	}
	if err := c.Send(msgType, data); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			return fmt.Errorf("await %s: %w", replyType, err)
		}
		if env.Type == replyType {
			return env.Decode(out)
		}
		c.pending = append(c.pending, env)
	}
}

// ReadLoop blocks until the connection closes or errors. It owns the conn lifetime
// so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := c.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				slog.Info("connection closed", "session", c.Session)
			} else {
				slog.Info("connection read ended", "session", c.Session, "error", err)
			}
			return
		}

		if err := c.dispatch(env); err != nil {
			slog.Error("failed to send response", "type", env.Type, "error", err)
			return
		}
	}
}

func (c *Connection) next() (Envelope, error) {
	if len(c.pending) > 0 {
		env := c.pending[0]
		c.pending = c.pending[1:]
		return env, nil
	}
	return ReadEnvelope(c.conn)
}

// dispatch runs the handler for env. Only a failed reply write is returned;
// handler errors are logged and the session continues.
func (c *Connection) dispatch(env Envelope) error {
	handler, ok := c.handlers[env.Type]
	if !ok {
		slog.Warn("no handler for message type", "type", env.Type)
		return nil
	}

	c.inHandler = true
	resp, err := handler(env)
	c.inHandler = false
	if err != nil {
		slog.Error("handler error", "type", env.Type, "error", err)
		return nil
	}

	if resp != nil {
		if err := WriteEnvelope(c.conn, *resp); err != nil {
			return err
		}
		slog.Debug("sent response", "type", resp.Type, "session", c.Session)
	}
	return nil
}
