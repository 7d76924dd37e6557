//go:build linux

package wlcore

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/transport"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// pairedConnection returns a Connection backed by one end of a
// syscall.Socketpair, with the other end standing in for the compositor.
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

func sendEvent(t *testing.T, tr *transport.Transport, objectID uint32, opcode wire.Opcode, args []byte, fds []int) {
	t.Helper()
	msg := &wire.Message{ObjectID: objectID, Opcode: opcode, Args: args}
	data, err := wire.Encode(msg)
	if err != nil {
		t.Fatalf("wire.Encode: %v", err)
	}
	if err := tr.Write(data, fds); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

// readMessage reads one complete framed message from the server side.
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

func TestCreateSurfaceWireBytes(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	const compositorID = 100
	conn.Objects().Adopt(compositorID, proto.TypeCompositor)
	comp := NewCompositor(conn, compositorID)

	surface, err := comp.CreateSurface()
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	if surface.ID() != 2 {
		t.Fatalf("first allocated surface id = %d, want 2", surface.ID())
	}
	if err := conn.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	objectID, opcode, args := readMessage(t, server)
	if objectID != compositorID || opcode != compositorCreateSurface {
		t.Fatalf("got (object=%d, opcode=%d), want (%d, %d)", objectID, opcode, compositorID, compositorCreateSurface)
	}
	dec := wire.NewDecoder(args, nil)
	newID, err := dec.NewID()
	if err != nil {
		t.Fatalf("decode new_id: %v", err)
	}
	if newID != surface.ID() {
		t.Fatalf("wire new_id = %d, want %d", newID, surface.ID())
	}

	// The fresh id is registered in the object table immediately (visible
	// to subsequent requests without a roundtrip).
	entry, zombie, ok := conn.Objects().Lookup(surface.ID())
	if !ok || zombie || entry.Type != proto.TypeSurface {
		t.Fatalf("Lookup(%d) = (%+v, %v, %v), want live wl_surface", surface.ID(), entry, zombie, ok)
	}
}

func TestSurfaceAttachCommitEncoding(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(10, proto.TypeSurface)
	s := NewSurface(conn, 10)

	if err := s.Attach(7, -4, 3); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := conn.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	objectID, opcode, args := readMessage(t, server)
	if objectID != 10 || opcode != surfaceAttach {
		t.Fatalf("first message = (object=%d, opcode=%d), want (10, attach)", objectID, opcode)
	}
	dec := wire.NewDecoder(args, nil)
	buffer, _ := dec.Object()
	x, _ := dec.Int32()
	y, err := dec.Int32()
	if err != nil {
		t.Fatalf("decode attach args: %v", err)
	}
	if buffer != 7 || x != -4 || y != 3 {
		t.Fatalf("attach args = (%d, %d, %d), want (7, -4, 3)", buffer, x, y)
	}

	objectID, opcode, args = readMessage(t, server)
	if objectID != 10 || opcode != surfaceCommit || len(args) != 0 {
		t.Fatalf("second message = (object=%d, opcode=%d, %d arg bytes), want bare commit", objectID, opcode, len(args))
	}
}

func TestSeatCapabilitiesDispatch(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(5, proto.TypeSeat)
	seat := NewSeat(conn, 5)
	conn.RegisterDispatchable(5, seat)

	var fromHandler proto.Bitflag
	seat.SetCapabilitiesHandler(func(caps proto.Bitflag) { fromHandler = caps })

	enc := wire.NewEncoder(4)
	enc.PutUint32(SeatCapabilityPointer | SeatCapabilityKeyboard)
	sendEvent(t, server, 5, seatEventCapabilities, enc.Bytes(), nil)

	if _, err := conn.DispatchPending(); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if !seat.HasPointer() || !seat.HasKeyboard() || seat.HasTouch() {
		t.Fatalf("capabilities = %v, want pointer+keyboard only", seat.Capabilities())
	}
	if got := fromHandler.String(); got != "pointer|keyboard" {
		t.Fatalf("Bitflag.String() = %q, want %q", got, "pointer|keyboard")
	}
}

func TestKeyboardKeymapFDDelivery(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(6, proto.TypeKeyboard)
	kb := &Keyboard{conn: conn, id: 6}
	conn.RegisterDispatchable(6, kb)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()
	if _, err := w.WriteString("xkb_keymap"); err != nil {
		t.Fatalf("write keymap: %v", err)
	}

	var got *KeyboardKeymapEvent
	kb.SetKeymapHandler(func(ev *KeyboardKeymapEvent) { got = ev })

	enc := wire.NewEncoder(8)
	enc.PutUint32(KeymapFormatXKBV1)
	enc.PutUint32(10)
	sendEvent(t, server, 6, keyboardEventKeymap, enc.Bytes(), []int{int(r.Fd())})

	if _, err := conn.DispatchPending(); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if got == nil {
		t.Fatalf("keymap handler never invoked")
	}
	if got.Format != KeymapFormatXKBV1 || got.Size != 10 {
		t.Fatalf("keymap event = %+v, want format=XKBV1 size=10", got)
	}
	if got.FD < 0 {
		t.Fatalf("keymap fd = %d, want a valid descriptor", got.FD)
	}
	// The delivered fd is a live duplicate of the pipe's read end.
	buf := make([]byte, 16)
	n, err := syscall.Read(got.FD, buf)
	if err != nil {
		t.Fatalf("reading delivered fd: %v", err)
	}
	if string(buf[:n]) != "xkb_keymap" {
		t.Fatalf("fd contents = %q, want %q", buf[:n], "xkb_keymap")
	}
	syscall.Close(got.FD)
}

func TestShmFormatEvents(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(4, proto.TypeShm)
	shm := NewShm(conn, 4)
	conn.RegisterDispatchable(4, shm)

	var unknownErr error
	shm.SetUnknownFormatHandler(func(err error) { unknownErr = err })

	for _, v := range []uint32{uint32(proto.ShmFormatXRGB8888), 999999, uint32(proto.ShmFormatC8)} {
		enc := wire.NewEncoder(4)
		enc.PutUint32(v)
		sendEvent(t, server, 4, shmEventFormat, enc.Bytes(), nil)
	}

	if _, err := conn.DispatchPending(); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if !shm.HasFormat(proto.ShmFormatXRGB8888) || !shm.HasFormat(proto.ShmFormatC8) {
		t.Fatalf("Formats() = %v, want XRGB8888 and C8", shm.Formats())
	}
	if len(shm.Formats()) != 2 {
		t.Fatalf("Formats() = %v, unknown code should not be stored", shm.Formats())
	}
	var decodeErr *proto.EnumDecodeError
	if !errors.As(unknownErr, &decodeErr) || decodeErr.Value != 999999 {
		t.Fatalf("unknown-format handler got %v, want EnumDecodeError{999999}", unknownErr)
	}
}

func TestSurfaceDestroyLeavesZombie(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(10, proto.TypeSurface)
	s := NewSurface(conn, 10)
	conn.RegisterDispatchable(10, s)

	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// An event racing the destructor is silently discarded, not fatal.
	enc := wire.NewEncoder(4)
	enc.PutUint32(3)
	sendEvent(t, server, 10, surfaceEventEnter, enc.Bytes(), nil)

	n, err := conn.DispatchPending()
	if err != nil {
		t.Fatalf("DispatchPending after destroy = %v, want silent discard", err)
	}
	if n != 0 {
		t.Fatalf("dispatched %d events for a destroyed object, want 0", n)
	}
}

func TestDataOfferSelectionFlow(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(8, proto.TypeDataDevice)
	dev := &DataDevice{conn: conn, id: 8}
	conn.RegisterDispatchable(8, dev)

	var selected *DataOffer
	dev.SetSelectionHandler(func(offer *DataOffer) { selected = offer })

	// Server announces a new offer in its id range, advertises two mime
	// types on it, then makes it the selection.
	const offerID = 0xFF000001
	enc := wire.NewEncoder(4)
	enc.PutNewID(offerID)
	sendEvent(t, server, 8, dataDeviceEventDataOffer, enc.Bytes(), nil)

	for _, mime := range []string{"text/plain;charset=utf-8", "text/html"} {
		enc := wire.NewEncoder(32)
		enc.PutString(mime)
		sendEvent(t, server, offerID, dataOfferEventOffer, enc.Bytes(), nil)
	}

	enc = wire.NewEncoder(4)
	enc.PutObject(offerID)
	sendEvent(t, server, 8, dataDeviceEventSelection, enc.Bytes(), nil)

	if _, err := conn.DispatchPending(); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if selected == nil || selected.ID() != offerID {
		t.Fatalf("selection handler got %+v, want offer %d", selected, offerID)
	}
	mimes := selected.MimeTypes()
	if len(mimes) != 2 || mimes[0] != "text/plain;charset=utf-8" || mimes[1] != "text/html" {
		t.Fatalf("MimeTypes() = %v", mimes)
	}
}

func TestSeatCapabilityParse(t *testing.T) {
	flag, err := proto.ParseBitflag("pointer|touch", SeatCapabilityMembers)
	if err != nil {
		t.Fatalf("ParseBitflag: %v", err)
	}
	if flag.Value() != (SeatCapabilityPointer | SeatCapabilityTouch) {
		t.Fatalf("parsed value = %d", flag.Value())
	}
	if _, err := proto.ParseBitflag("pointer|gamepad", SeatCapabilityMembers); err == nil {
		t.Fatalf("ParseBitflag accepted an unknown member")
	}
}
