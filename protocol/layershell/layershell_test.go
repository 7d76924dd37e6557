//go:build linux

package layershell

import (
	"errors"
	"syscall"
	"testing"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/transport"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

func pairedConnection(t *testing.T) (conn *wlclient.Connection, server *transport.Transport) {
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
	return wlclient.New(clientTr), serverTr
}

func readMessage(t *testing.T, tr *transport.Transport) (objectID uint32, opcode wire.Opcode, args []byte) {
	t.Helper()
	for tr.Buffered() < wire.HeaderSize {
		if err := tr.FillBuffer(); err != nil {
			t.Fatalf("FillBuffer: %v", err)
		}
	}
	hdr, _ := tr.PeekHeader(wire.HeaderSize)
	objectID, opcode, size, err := wire.DecodeHeader(hdr)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	for tr.Buffered() < size {
		if err := tr.FillBuffer(); err != nil {
			t.Fatalf("FillBuffer: %v", err)
		}
	}
	frame := tr.Consume(size)
	return objectID, opcode, frame[wire.HeaderSize:]
}

func TestGetLayerSurfaceEncoding(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(50, proto.TypeLayerShell)
	shell := NewLayerShell(conn, 50)

	ls, err := shell.GetLayerSurface(10, 0, LayerTop, "panel")
	if err != nil {
		t.Fatalf("GetLayerSurface: %v", err)
	}
	if err := conn.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	objectID, opcode, args := readMessage(t, server)
	if objectID != 50 || opcode != shellGetLayerSurface {
		t.Fatalf("message = (object=%d, opcode=%d), want get_layer_surface on 50", objectID, opcode)
	}
	dec := wire.NewDecoder(args, nil)
	newID, _ := dec.NewID()
	surface, _ := dec.Object()
	output, _ := dec.Object()
	layer, _ := dec.Uint32()
	namespace, err := dec.String()
	if err != nil {
		t.Fatalf("decode args: %v", err)
	}
	if newID != ls.ID() || surface != 10 || output != 0 || Layer(layer) != LayerTop || namespace != "panel" {
		t.Fatalf("args = (id=%d surface=%d output=%d layer=%d ns=%q)", newID, surface, output, layer, namespace)
	}

	entry, zombie, ok := conn.Objects().Lookup(ls.ID())
	if !ok || zombie || entry.Type != proto.TypeLayerSurface {
		t.Fatalf("Lookup(%d) = (%+v, %v, %v), want live layer surface", ls.ID(), entry, zombie, ok)
	}
}

func TestLayerSurfaceConfigureClosed(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(60, proto.TypeLayerSurface)
	ls := &LayerSurface{conn: conn, id: 60, wlSurface: 10}
	conn.RegisterDispatchable(60, ls)

	var gotSerial, gotW, gotH uint32
	closed := false
	ls.SetConfigureHandler(func(serial, width, height uint32) {
		gotSerial, gotW, gotH = serial, width, height
	})
	ls.SetClosedHandler(func() { closed = true })

	enc := wire.NewEncoder(12)
	enc.PutUint32(9)
	enc.PutUint32(1920)
	enc.PutUint32(32)
	sendEvent(t, server, 60, layerSurfaceEventConfigure, enc.Bytes())
	sendEvent(t, server, 60, layerSurfaceEventClosed, nil)

	if _, err := conn.DispatchPending(); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if gotSerial != 9 || gotW != 1920 || gotH != 32 {
		t.Fatalf("configure = (%d, %d, %d), want (9, 1920, 32)", gotSerial, gotW, gotH)
	}
	if !closed {
		t.Fatalf("closed handler never invoked")
	}
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

func TestLayerEnums(t *testing.T) {
	l, err := ParseLayer(3)
	if err != nil || l != LayerOverlay {
		t.Fatalf("ParseLayer(3) = (%v, %v), want overlay", l, err)
	}
	var decodeErr *proto.EnumDecodeError
	if _, err := ParseLayer(42); !errors.As(err, &decodeErr) || decodeErr.Value != 42 {
		t.Fatalf("ParseLayer(42) error = %v, want EnumDecodeError{42}", err)
	}

	anchor := NewAnchor(AnchorTop | AnchorLeft | AnchorRight)
	if got := anchor.String(); got != "top|left|right" {
		t.Fatalf("anchor String() = %q", got)
	}
	parsed, err := proto.ParseBitflag("top|left|right", AnchorMembers)
	if err != nil || parsed.Value() != anchor.Value() {
		t.Fatalf("anchor round trip = (%v, %v)", parsed.Value(), err)
	}

	if _, err := ParseKeyboardInteractivity(2); err != nil {
		t.Fatalf("ParseKeyboardInteractivity(2): %v", err)
	}
	if _, err := ParseKeyboardInteractivity(7); err == nil {
		t.Fatalf("ParseKeyboardInteractivity(7) accepted an unknown code")
	}
}
