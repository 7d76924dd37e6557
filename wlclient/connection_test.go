//go:build linux

package wlclient

import (
	"errors"
	"syscall"
	"testing"

	"github.com/waylib/wlcore/objtable"
	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/transport"
	"github.com/waylib/wlcore/wire"
)

// pairedConnection returns a Connection backed by one end of a
// syscall.Socketpair, with the other end returned as a raw *transport.Transport
// standing in for the compositor (following the socket-pair testing idiom
// used for the transport layer, since no compositor is available in tests).
func pairedConnection(t *testing.T) (conn *Connection, server *transport.Transport) {
	t.Helper()
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	clientTr, err := transport.FromFD(fds[0])
	if err != nil {
		t.Fatalf("FromFD(client): %v", err)
	}
	serverTr, err := transport.FromFD(fds[1])
	if err != nil {
		t.Fatalf("FromFD(server): %v", err)
	}
	return newFromTransport(clientTr), serverTr
}

func sendEvent(t *testing.T, tr *transport.Transport, objectID uint32, opcode wire.Opcode, args []byte) {
	t.Helper()
	msg := &wire.Message{ObjectID: objectID, Opcode: opcode, Args: args}
	data, err := wire.Encode(msg)
	if err != nil {
		t.Fatalf("wire.Encode: %v", err)
	}
	if err := tr.Write(data, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestInvariant7EventDemultiplexingOrder(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	var order []uint32
	for _, id := range []uint32{10, 11, 12} {
		id := id
		conn.Objects().Adopt(id, proto.TypeCallback)
		conn.RegisterDispatchable(id, DispatchFunc(func(c *Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
			order = append(order, id)
			return nil
		}))
	}

	script := []uint32{11, 10, 12, 10}
	for _, id := range script {
		enc := wire.NewEncoder(4)
		enc.PutUint32(42)
		sendEvent(t, server, id, 0, enc.Bytes())
	}

	n, err := conn.DispatchPending()
	if err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if n != len(script) {
		t.Fatalf("dispatched %d events, want %d", n, len(script))
	}
	if len(order) != len(script) {
		t.Fatalf("handler invocation order = %v, want length %d", order, len(script))
	}
	for i, id := range script {
		if order[i] != id {
			t.Fatalf("handler invocation order = %v, want %v", order, script)
		}
	}
}

func TestS4ServerErrorDecode(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	builder := wire.NewMessageBuilder()
	builder.Object("object_id", 9)
	builder.Uint(1)
	builder.Str("invalid_method")
	msg, err := builder.Build(objtable.DisplayID, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := wire.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := server.Write(data, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := server.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	_, err = conn.DispatchPending()
	if err == nil {
		t.Fatalf("expected a fatal ProtocolError")
	}
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("DispatchPending error = %v, want *ProtocolError", err)
	}
	if protoErr.ObjectID != 9 || protoErr.Code != 1 || protoErr.Message != "invalid_method" {
		t.Fatalf("ProtocolError = %+v, want {9 1 invalid_method}", protoErr)
	}

	// The connection is now poisoned: further calls fail with ErrConnectionClosed.
	if err := conn.Flush(); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("Flush() after fatal error = %v, want ErrConnectionClosed", err)
	}
}

func TestRoundtrip(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Read the sync request's header+args off the wire, then reply
		// with wl_callback.done on the callback id it allocated.
		hdr := make([]byte, wire.HeaderSize)
		readFull(t, server, hdr)
		_, _, size, err := wire.DecodeHeader(hdr)
		if err != nil {
			t.Errorf("DecodeHeader: %v", err)
			return
		}
		args := make([]byte, size-wire.HeaderSize)
		readFull(t, server, args)
		dec := wire.NewDecoder(args, nil)
		callbackID, err := dec.NewID()
		if err != nil {
			t.Errorf("decode new_id: %v", err)
			return
		}
		sendEvent(t, server, callbackID, 0, nil)
	}()

	if err := conn.Roundtrip(); err != nil {
		t.Fatalf("Roundtrip: %v", err)
	}
	<-done
}

// readFull reads exactly len(buf) bytes from tr, blocking across multiple
// FillBuffer calls if the peer's write arrives in more than one chunk.
func readFull(t *testing.T, tr *transport.Transport, buf []byte) {
	t.Helper()
	for tr.Buffered() < len(buf) {
		if err := tr.FillBuffer(); err != nil {
			t.Fatalf("FillBuffer: %v", err)
		}
	}
	copy(buf, tr.Consume(len(buf)))
}
