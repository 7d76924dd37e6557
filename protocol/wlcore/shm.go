//go:build linux

package wlcore

import (
	"errors"
	"fmt"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// wl_shm opcodes (requests)
const (
	shmCreatePool wire.Opcode = 0 // create_pool(id: new_id<wl_shm_pool>, fd: fd, size: int)
)

// wl_shm event opcodes
const (
	shmEventFormat wire.Opcode = 0 // format(format: uint)
)

// wl_shm_pool opcodes (requests)
const (
	shmPoolCreateBuffer wire.Opcode = 0 // create_buffer(id: new_id<wl_buffer>, offset: int, width: int, height: int, stride: int, format: uint)
	shmPoolDestroy      wire.Opcode = 1 // destroy()
	shmPoolResize       wire.Opcode = 2 // resize(size: int)
)

// wl_buffer opcodes (requests)
const (
	bufferDestroy wire.Opcode = 0 // destroy()
)

// wl_buffer event opcodes
const (
	bufferEventRelease wire.Opcode = 0 // release()
)

func init() {
	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeShm,
		Name:    "wl_shm",
		Version: 1,
		Requests: []proto.RequestDescriptor{
			{Name: "create_pool", Opcode: shmCreatePool, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeShmPool},
				{Name: "fd", Kind: wire.ArgFD},
				{Name: "size", Kind: wire.ArgInt},
			}},
		},
		Events: []proto.EventDescriptor{
			{Name: "format", Opcode: shmEventFormat, Args: []proto.ArgSpec{
				{Name: "format", Kind: wire.ArgUint},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeShmPool,
		Name:    "wl_shm_pool",
		Version: 1,
		Requests: []proto.RequestDescriptor{
			{Name: "create_buffer", Opcode: shmPoolCreateBuffer, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeBuffer},
				{Name: "offset", Kind: wire.ArgInt},
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
				{Name: "stride", Kind: wire.ArgInt},
				{Name: "format", Kind: wire.ArgUint},
			}},
			{Name: "destroy", Opcode: shmPoolDestroy, Destroy: true},
			{Name: "resize", Opcode: shmPoolResize, Args: []proto.ArgSpec{
				{Name: "size", Kind: wire.ArgInt},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeBuffer,
		Name:    "wl_buffer",
		Version: 1,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: bufferDestroy, Destroy: true},
		},
		Events: []proto.EventDescriptor{
			{Name: "release", Opcode: bufferEventRelease},
		},
	})
}

// Shm wraps the wl_shm global: shared-memory buffer support. The compositor
// advertises supported pixel formats as events right after bind; call
// Connection.Roundtrip before reading Formats.
type Shm struct {
	conn *wlclient.Connection
	id   uint32

	formats []proto.ShmFormat

	onFormat        func(format proto.ShmFormat)
	onUnknownFormat func(err error)
}

// BindShm binds the wl_shm global at version.
func BindShm(conn *wlclient.Connection, reg *wlclient.Registry, version uint32) (*Shm, error) {
	id, err := bindGlobal(reg, "wl_shm", version)
	if err != nil {
		return nil, err
	}
	s := NewShm(conn, id)
	conn.RegisterDispatchable(id, s)
	return s, nil
}

// NewShm wraps an already-bound wl_shm object id. The caller registers it
// for dispatch.
func NewShm(conn *wlclient.Connection, id uint32) *Shm {
	return &Shm{conn: conn, id: id, formats: make([]proto.ShmFormat, 0, 16)}
}

// ID returns the shm's object id.
func (s *Shm) ID() uint32 { return s.id }

// CreatePool creates a shared-memory pool of size bytes backed by fd. The
// fd is borrowed for the duration of the send; the caller still owns it.
func (s *Shm) CreatePool(fd int, size int32) (*ShmPool, error) {
	id := s.conn.AllocateChild(proto.TypeShmPool)
	b := wire.NewMessageBuilder()
	b.NewID(id).FD(fd).Int(size)
	if err := send(s.conn, b, s.id, shmCreatePool); err != nil {
		return nil, err
	}
	return &ShmPool{conn: s.conn, id: id, size: size}, nil
}

// Formats returns a copy of the formats the compositor has advertised so far.
func (s *Shm) Formats() []proto.ShmFormat {
	out := make([]proto.ShmFormat, len(s.formats))
	copy(out, s.formats)
	return out
}

// HasFormat reports whether format has been advertised.
func (s *Shm) HasFormat(format proto.ShmFormat) bool {
	for _, f := range s.formats {
		if f == format {
			return true
		}
	}
	return false
}

// SetFormatHandler registers a callback for each advertised format.
func (s *Shm) SetFormatHandler(h func(format proto.ShmFormat)) { s.onFormat = h }

// SetUnknownFormatHandler registers a callback for format codes this module
// has no enum member for. Without a handler such codes are dropped; they
// are never an error on the connection.
func (s *Shm) SetUnknownFormatHandler(h func(err error)) { s.onUnknownFormat = h }

// Dispatch implements wlclient.Dispatchable for wl_shm events.
func (s *Shm) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	if ev.Name != "format" {
		return &proto.UnknownOpcodeError{Type: proto.TypeShm, Opcode: opcode}
	}
	raw, err := dec.Uint32()
	if err != nil {
		return err
	}
	format, err := proto.ParseShmFormat(raw)
	if err != nil {
		var decodeErr *proto.EnumDecodeError
		if errors.As(err, &decodeErr) {
			if s.onUnknownFormat != nil {
				s.onUnknownFormat(decodeErr)
			}
			return nil
		}
		return err
	}
	s.formats = append(s.formats, format)
	if s.onFormat != nil {
		s.onFormat(format)
	}
	return nil
}

// ShmPool wraps a wl_shm_pool: a mapped chunk of shared memory buffers are
// carved from.
type ShmPool struct {
	conn *wlclient.Connection
	id   uint32
	size int32
}

// ID returns the pool's object id.
func (p *ShmPool) ID() uint32 { return p.id }

// Size returns the pool size in bytes.
func (p *ShmPool) Size() int32 { return p.size }

// CreateBuffer creates a wl_buffer viewing the pool at offset with the
// given dimensions, stride, and pixel format.
func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format proto.ShmFormat) (*Buffer, error) {
	id := p.conn.AllocateChild(proto.TypeBuffer)
	b := wire.NewMessageBuilder()
	b.NewID(id).Int(offset).Int(width).Int(height).Int(stride).Uint(uint32(format))
	if err := send(p.conn, b, p.id, shmPoolCreateBuffer); err != nil {
		return nil, err
	}
	buf := &Buffer{conn: p.conn, id: id}
	p.conn.RegisterDispatchable(id, buf)
	return buf, nil
}

// Resize grows the pool. Pools can never shrink.
func (p *ShmPool) Resize(size int32) error {
	if size < p.size {
		return fmt.Errorf("wlcore: cannot shrink pool from %d to %d", p.size, size)
	}
	b := wire.NewMessageBuilder()
	b.Int(size)
	if err := send(p.conn, b, p.id, shmPoolResize); err != nil {
		return err
	}
	p.size = size
	return nil
}

// Destroy destroys the pool. Buffers created from it stay valid.
func (p *ShmPool) Destroy() error {
	if err := send(p.conn, wire.NewMessageBuilder(), p.id, shmPoolDestroy); err != nil {
		return err
	}
	p.conn.Objects().MarkDead(p.id)
	return nil
}

// Buffer wraps a wl_buffer of pixel data attachable to a surface.
type Buffer struct {
	conn *wlclient.Connection
	id   uint32

	onRelease func()
}

// NewBuffer wraps an existing wl_buffer object id.
func NewBuffer(conn *wlclient.Connection, id uint32) *Buffer {
	return &Buffer{conn: conn, id: id}
}

// ID returns the buffer's object id.
func (b *Buffer) ID() uint32 { return b.id }

// SetReleaseHandler registers a callback for the release event, after which
// the client may safely reuse the backing memory.
func (b *Buffer) SetReleaseHandler(h func()) { b.onRelease = h }

// Destroy destroys the buffer.
func (b *Buffer) Destroy() error {
	if err := send(b.conn, wire.NewMessageBuilder(), b.id, bufferDestroy); err != nil {
		return err
	}
	b.conn.Objects().MarkDead(b.id)
	b.conn.Unregister(b.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for wl_buffer events.
func (b *Buffer) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	if ev.Name != "release" {
		return &proto.UnknownOpcodeError{Type: proto.TypeBuffer, Opcode: opcode}
	}
	if b.onRelease != nil {
		b.onRelease()
	}
	return nil
}
