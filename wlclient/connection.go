//go:build linux

// Package wlclient ties the wire codec, object table, and static interface
// metadata together into a working Wayland client connection: it owns the
// transport, allocates and tracks object ids, and dispatches incoming
// events to whichever per-object handler registered for them.
package wlclient

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/waylib/wlcore/objtable"
	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/transport"
	"github.com/waylib/wlcore/wire"
)

// Sentinel errors for simple connection-level conditions, following the
// teacher's own idiom of plain errors.New values rather than typed structs
// where no extra data needs to travel with the error.
var (
	ErrConnectionClosed = errors.New("wlclient: connection closed")
	ErrNoMessage        = errors.New("wlclient: no message available")
	ErrWouldBlock       = errors.New("wlclient: would block")
)

// Dispatchable is implemented by every per-object-type wrapper
// (protocol/wlcore.Surface, protocol/xdgshell.Toplevel, ...) that wants to
// receive events addressed to its object id.
type Dispatchable interface {
	Dispatch(conn *Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error
}

// DispatchFunc adapts a plain function to Dispatchable, for handlers that
// don't need their own type (the built-in sync callback, mainly).
type DispatchFunc func(conn *Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error

func (f DispatchFunc) Dispatch(conn *Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	return f(conn, opcode, ev, dec, fds)
}

// Connection is a live Wayland client connection. It carries no internal
// lock: the object table, outgoing buffer, and dispatch loop are all owned
// by whichever single goroutine is driving the connection at a time (spec
// §5 — there is no internal lock). Callers needing concurrent access
// synchronize externally.
type Connection struct {
	t        *transport.Transport
	objects  *objtable.Table
	handlers map[uint32]Dispatchable
	logger   zerolog.Logger

	closed      bool
	protocolErr error

	registry *Registry
}

// Connect dials the default Wayland socket (WAYLAND_SOCKET, then
// WAYLAND_DISPLAY/XDG_RUNTIME_DIR) and returns a ready connection with
// wl_display already adopted as object 1.
func Connect() (*Connection, error) {
	tr, err := transport.Connect()
	if err != nil {
		return nil, err
	}
	return newConnection(tr), nil
}

// ConnectTo dials a specific UNIX socket path.
func ConnectTo(socketPath string) (*Connection, error) {
	tr, err := transport.ConnectTo(socketPath)
	if err != nil {
		return nil, err
	}
	return newConnection(tr), nil
}

// New wraps an already-established transport, for callers that obtained the
// socket some other way than the environment lookup (an inherited fd, a
// socketpair in tests).
func New(tr *transport.Transport) *Connection {
	return newConnection(tr)
}

// newFromTransport is New's original spelling, kept for this package's tests.
func newFromTransport(tr *transport.Transport) *Connection {
	return New(tr)
}

func newConnection(tr *transport.Transport) *Connection {
	c := &Connection{
		t:        tr,
		objects:  objtable.New(),
		handlers: make(map[uint32]Dispatchable),
		logger:   zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	c.objects.Adopt(objtable.DisplayID, proto.TypeDisplay)
	c.handlers[objtable.DisplayID] = DispatchFunc(c.dispatchDisplayEvent)
	return c
}

// SetLogger overrides the logger used for diagnostics that are discarded
// rather than surfaced as errors (currently: zombie-object events). The
// default logs to stderr with timestamps.
func (c *Connection) SetLogger(l zerolog.Logger) { c.logger = l }

// Display returns the connection's fixed display object id, always 1.
func (c *Connection) Display() uint32 { return objtable.DisplayID }

// Objects returns the connection's object table.
func (c *Connection) Objects() *objtable.Table { return c.objects }

// AllocateChild reserves the next object id for a new object of type t.
func (c *Connection) AllocateChild(t proto.ObjectType) uint32 {
	return c.objects.Allocate(t)
}

// RegisterDispatchable associates d with id, so future events addressed to
// id are routed to it by DispatchPending.
func (c *Connection) RegisterDispatchable(id uint32, d Dispatchable) {
	c.handlers[id] = d
}

// Unregister removes any dispatch handler registered for id, without
// touching the object table itself.
func (c *Connection) Unregister(id uint32) {
	delete(c.handlers, id)
}

// Send appends req's encoded bytes (and any fds it carries) to the
// connection's outgoing buffer. Nothing reaches the socket until Flush.
func (c *Connection) Send(objectID uint32, req proto.Request) error {
	if c.closed {
		return ErrConnectionClosed
	}
	if c.protocolErr != nil {
		return c.protocolErr
	}
	msg := &wire.Message{ObjectID: objectID, Opcode: req.Opcode, Args: req.Args, FDs: req.FDs}
	data, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	return c.t.Write(data, req.FDs)
}

// Flush sends everything queued by Send in a single write.
func (c *Connection) Flush() error {
	if c.closed {
		return ErrConnectionClosed
	}
	return c.t.Flush()
}

// Close closes the underlying transport, including on a connection already
// poisoned by a fatal error, and closes every fd still in the transport's
// pending-fd queue (received but not yet handed to an application handler).
// Calling it again is harmless.
func (c *Connection) Close() error {
	c.closed = true
	pending := c.t.PendingFDs()
	for _, fd := range pending {
		_ = syscall.Close(fd)
	}
	c.t.ConsumeFDs(len(pending))
	return c.t.Close()
}

func (c *Connection) poison(err error) {
	if c.protocolErr == nil {
		c.protocolErr = err
	}
	c.closed = true
}

// DispatchPending drains every complete frame currently available from the
// transport, resolving each one's object and event descriptor and invoking
// its registered Dispatchable. It returns the number of events dispatched.
// Reaching the end of what's currently available — ErrWouldBlock from a
// non-blocking transport, or an empty input buffer on a blocking one after
// at least one frame was consumed (dispatched, or discarded as addressed to
// a zombie object) — is reported as (n, nil), not an error. On a blocking
// transport with nothing consumed yet, the call waits for the first event
// to arrive.
func (c *Connection) DispatchPending() (int, error) {
	if c.closed {
		return 0, ErrConnectionClosed
	}
	n := 0
	consumed := 0
	for {
		header, ok := c.t.PeekHeader(wire.HeaderSize)
		if !ok {
			if consumed > 0 && c.t.Buffered() == 0 {
				return n, nil
			}
			if err := c.fill(); err != nil {
				if errors.Is(err, ErrWouldBlock) {
					return n, nil
				}
				return n, err
			}
			continue
		}
		_, _, size, err := wire.DecodeHeader(header)
		if err != nil {
			c.poison(err)
			return n, err
		}
		if c.t.Buffered() < size {
			if err := c.fill(); err != nil {
				if errors.Is(err, ErrWouldBlock) {
					return n, nil
				}
				return n, err
			}
			continue
		}

		frame := c.t.Consume(size)
		consumed++
		objectID, opcode, _, _ := wire.DecodeHeader(frame)

		entry, zombie, ok := c.objects.Lookup(objectID)
		if !ok {
			err := &proto.UnknownObjectError{ID: objectID}
			c.poison(err)
			return n, err
		}
		if zombie {
			// Keep fd accounting aligned: a discarded event still consumed
			// its declared fds from the ancillary queue.
			if evDesc, descErr := proto.EventByOpcode(entry.Type, opcode); descErr == nil {
				c.t.ConsumeFDs(proto.CountFDArgs(evDesc.Args))
			}
			c.logger.Debug().
				Uint32("object_id", objectID).
				Uint16("opcode", uint16(opcode)).
				Msg("discarding event for zombie object")
			continue
		}

		evDesc, err := proto.EventByOpcode(entry.Type, opcode)
		if err != nil {
			c.poison(err)
			return n, err
		}

		fdCount := proto.CountFDArgs(evDesc.Args)
		fds := append([]int(nil), c.t.PendingFDs()[:min(fdCount, len(c.t.PendingFDs()))]...)
		c.t.ConsumeFDs(fdCount)

		dec := wire.NewDecoder(frame[wire.HeaderSize:], wire.NewFDQueue(fds))

		handler := c.handlers[objectID]
		if handler != nil {
			if err := handler.Dispatch(c, opcode, evDesc, dec, fds); err != nil {
				c.poison(err)
				return n, err
			}
		}
		n++
	}
}

func (c *Connection) fill() error {
	err := c.t.FillBuffer()
	if err != nil {
		if errors.Is(err, transport.ErrWouldBlock) {
			return ErrWouldBlock
		}
		if errors.Is(err, transport.ErrClosed) {
			c.closed = true
			return ErrConnectionClosed
		}
		return err
	}
	return nil
}

// dispatchDisplayEvent handles wl_display's own events: error (fatal,
// surfaced as *ProtocolError) and delete_id (releases the named id back to
// the object table's free list).
func (c *Connection) dispatchDisplayEvent(conn *Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "error":
		objectID, err := dec.Object()
		if err != nil {
			return err
		}
		code, err := dec.Uint32()
		if err != nil {
			return err
		}
		message, err := dec.String()
		if err != nil {
			return err
		}
		protoErr := &ProtocolError{ObjectID: objectID, Code: code, Message: message}
		conn.protocolErr = protoErr
		conn.closed = true
		return protoErr
	case "delete_id":
		id, err := dec.Uint32()
		if err != nil {
			return err
		}
		conn.objects.Release(id)
		delete(conn.handlers, id)
		return nil
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeDisplay, Opcode: opcode}
	}
}

// Roundtrip sends a display.sync request, flushes, and dispatches events
// until that specific callback fires — guaranteeing every request sent
// before this call has been processed by the compositor.
func (c *Connection) Roundtrip() error {
	displayDesc, _ := proto.Lookup(proto.TypeDisplay)
	syncReq := displayDesc.RequestByName("sync")

	callbackID := c.AllocateChild(proto.TypeCallback)
	done := false
	var dispatchErr error
	c.RegisterDispatchable(callbackID, DispatchFunc(func(conn *Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
		done = true
		return nil
	}))

	builder := wire.NewMessageBuilder()
	builder.NewID(callbackID)
	msg, err := builder.Build(c.Display(), syncReq.Opcode)
	if err != nil {
		return err
	}
	if err := c.Send(msg.ObjectID, proto.Request{Opcode: msg.Opcode, Args: msg.Args, FDs: msg.FDs}); err != nil {
		return err
	}
	if err := c.Flush(); err != nil {
		return err
	}

	for !done {
		if _, err := c.DispatchPending(); err != nil {
			dispatchErr = err
			break
		}
		if c.closed && !done {
			if dispatchErr == nil {
				dispatchErr = fmt.Errorf("wlclient: connection closed mid-roundtrip: %w", ErrConnectionClosed)
			}
			break
		}
	}
	c.Unregister(callbackID)
	return dispatchErr
}

// GetRegistry requests the global registry, returning the same *Registry on
// repeated calls.
func (c *Connection) GetRegistry() (*Registry, error) {
	if c.registry != nil {
		return c.registry, nil
	}
	displayDesc, _ := proto.Lookup(proto.TypeDisplay)
	req := displayDesc.RequestByName("get_registry")

	registryID := c.AllocateChild(proto.TypeRegistry)
	builder := wire.NewMessageBuilder()
	builder.NewID(registryID)
	msg, err := builder.Build(c.Display(), req.Opcode)
	if err != nil {
		return nil, err
	}
	if err := c.Send(msg.ObjectID, proto.Request{Opcode: msg.Opcode, Args: msg.Args, FDs: msg.FDs}); err != nil {
		return nil, err
	}

	r := newRegistry(c, registryID)
	c.RegisterDispatchable(registryID, r)
	c.registry = r
	return r, nil
}
