//go:build linux

// Package transport implements the UNIX-domain socket adapter a Wayland
// client speaks over: socket discovery, buffered writes with SCM_RIGHTS fd
// batching, and an accumulating read buffer that the wire codec drains one
// framed message at a time. It knows nothing about object ids or dispatch;
// see package wlclient for that layer.
package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrNoWaylandSocket is returned when none of WAYLAND_SOCKET, WAYLAND_DISPLAY,
// or XDG_RUNTIME_DIR resolve to a usable connection.
var ErrNoWaylandSocket = errors.New("transport: no wayland socket found")

// ErrWouldBlock is returned by FillBuffer when the underlying socket is
// non-blocking and has no data ready. It is not a fatal condition: the
// dispatcher treats it as "nothing more to do right now".
var ErrWouldBlock = errors.New("transport: would block")

// ErrClosed is returned by any operation on a Transport after Close.
var ErrClosed = errors.New("transport: closed")

const (
	readChunkSize  = 4096
	maxFDsPerBatch = 28
)

// SocketPath resolves the Wayland socket path from WAYLAND_DISPLAY and
// XDG_RUNTIME_DIR, matching the algorithm every compositor and client
// expects: an absolute WAYLAND_DISPLAY is used verbatim, otherwise it is
// joined under XDG_RUNTIME_DIR, defaulting to "wayland-0" if unset.
func SocketPath() (string, error) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("%w: XDG_RUNTIME_DIR not set", ErrNoWaylandSocket)
	}
	return filepath.Join(runtimeDir, display), nil
}

// Connect establishes a Transport using WAYLAND_SOCKET (an inherited,
// already-connected fd) if set, falling back to WAYLAND_DISPLAY/
// XDG_RUNTIME_DIR socket discovery otherwise.
func Connect() (*Transport, error) {
	if fdStr := os.Getenv("WAYLAND_SOCKET"); fdStr != "" {
		fd, err := strconv.Atoi(fdStr)
		if err != nil {
			return nil, fmt.Errorf("transport: invalid WAYLAND_SOCKET %q: %w", fdStr, err)
		}
		return FromFD(fd)
	}
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	return ConnectTo(path)
}

// ConnectTo dials the UNIX socket at path directly.
func ConnectTo(path string) (*Transport, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", path, err)
	}
	return fromConn(conn)
}

// FromFD adopts an already-open, already-connected UNIX domain socket fd as
// a Transport (used for the WAYLAND_SOCKET-inherited-fd case, and directly
// useful in tests built around syscall.Socketpair).
func FromFD(fd int) (*Transport, error) {
	file := os.NewFile(uintptr(fd), "wayland-socket")
	if file == nil {
		return nil, fmt.Errorf("transport: WAYLAND_SOCKET fd %d is not valid", fd)
	}
	conn, err := net.FileConn(file)
	_ = file.Close()
	if err != nil {
		return nil, fmt.Errorf("transport: adopting WAYLAND_SOCKET fd %d: %w", fd, err)
	}
	return fromConn(conn)
}

func fromConn(conn net.Conn) (*Transport, error) {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("transport: expected a unix socket, got %T", conn)
	}
	file, err := unixConn.File()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("transport: obtaining socket fd: %w", err)
	}
	// Fd on a File from UnixConn.File puts the socket into blocking mode
	// each time it is called. It is called once here; the Transport keeps a
	// plain duplicate whose Fd leaves the mode alone, so a later
	// SetNonblock on the socket stays in effect for FillBuffer and Flush.
	fd, err := unix.FcntlInt(file.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	_ = file.Close()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("transport: duplicating socket fd: %w", err)
	}
	return &Transport{conn: conn, file: os.NewFile(uintptr(fd), "wayland-socket")}, nil
}

// Transport is a buffered UNIX-domain socket adapter. Writes accumulate in
// an outgoing buffer until Flush; reads accumulate into a growing ring
// until a complete frame (per the wire header's size field, read by the
// caller) is available.
type Transport struct {
	conn   net.Conn
	file   *os.File
	closed bool

	outBuf []byte
	outFDs []int

	inBuf      []byte
	pendingFDs []int
}

// Write appends data and fds to the outgoing buffer. Nothing is sent on the
// wire until Flush.
func (t *Transport) Write(data []byte, fds []int) error {
	if t.closed {
		return ErrClosed
	}
	t.outBuf = append(t.outBuf, data...)
	t.outFDs = append(t.outFDs, fds...)
	return nil
}

// Flush sends everything accumulated by Write since the last Flush in a
// single sendmsg call, carrying every queued fd as one SCM_RIGHTS block so
// fd order matches byte-stream order across however many messages were
// batched (spec invariant 5, generalized across Sends rather than just
// within one).
func (t *Transport) Flush() error {
	if t.closed {
		return ErrClosed
	}
	if len(t.outBuf) == 0 {
		return nil
	}
	fd := int(t.file.Fd())
	var rights []byte
	if len(t.outFDs) > 0 {
		rights = unix.UnixRights(t.outFDs...)
	}
	if err := unix.Sendmsg(fd, t.outBuf, rights, nil, 0); err != nil {
		return fmt.Errorf("transport: sendmsg: %w", err)
	}
	t.outBuf = t.outBuf[:0]
	t.outFDs = t.outFDs[:0]
	return nil
}

// FillBuffer performs one read, growing the input ring and fd queue. It
// returns ErrWouldBlock (not an error to the dispatcher) when the transport
// is non-blocking and no data is currently available.
func (t *Transport) FillBuffer() error {
	if t.closed {
		return ErrClosed
	}
	fd := int(t.file.Fd())
	chunk := make([]byte, readChunkSize)
	oob := make([]byte, unix.CmsgSpace(4*maxFDsPerBatch))

	n, oobn, _, _, err := unix.Recvmsg(fd, chunk, oob, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return ErrWouldBlock
		}
		return fmt.Errorf("transport: recvmsg: %w", err)
	}
	if n == 0 {
		return ErrClosed
	}
	t.inBuf = append(t.inBuf, chunk[:n]...)

	if oobn > 0 {
		scms, err := unix.ParseSocketControlMessage(oob[:oobn])
		if err != nil {
			return fmt.Errorf("transport: parsing control message: %w", err)
		}
		for _, scm := range scms {
			rights, err := unix.ParseUnixRights(&scm)
			if err != nil {
				continue
			}
			t.pendingFDs = append(t.pendingFDs, rights...)
		}
	}
	return nil
}

// Buffered returns the number of bytes currently queued for decoding.
func (t *Transport) Buffered() int { return len(t.inBuf) }

// PeekHeader reports whether at least n bytes are buffered without
// consuming anything.
func (t *Transport) PeekHeader(n int) ([]byte, bool) {
	if len(t.inBuf) < n {
		return nil, false
	}
	return t.inBuf[:n], true
}

// Consume removes the first n bytes from the input buffer and returns them.
// It does not touch the pending fd queue: the caller reads it with
// PendingFDs and removes exactly as many fds as the message's descriptor
// declares with ConsumeFDs, leaving the rest queued for the next message.
func (t *Transport) Consume(n int) []byte {
	data := make([]byte, n)
	copy(data, t.inBuf[:n])
	t.inBuf = t.inBuf[n:]
	return data
}

// PendingFDs returns the fd queue accumulated so far, for wiring into a
// wire.FDQueue by the caller.
func (t *Transport) PendingFDs() []int { return t.pendingFDs }

// ConsumeFDs removes the first n fds from the pending queue, e.g. once the
// caller's wire.FDQueue has popped them.
func (t *Transport) ConsumeFDs(n int) {
	if n > len(t.pendingFDs) {
		n = len(t.pendingFDs)
	}
	t.pendingFDs = t.pendingFDs[n:]
}

// Close closes the underlying socket and file.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.file != nil {
		_ = t.file.Close()
	}
	return t.conn.Close()
}
