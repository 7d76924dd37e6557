//go:build linux

package xdgshell

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

func TestPingAutoPong(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(20, proto.TypeXdgWmBase)
	wm := NewWmBase(conn, 20)
	conn.RegisterDispatchable(20, wm)

	var pinged uint32
	wm.SetPingHandler(func(serial uint32) { pinged = serial })

	enc := wire.NewEncoder(4)
	enc.PutUint32(7777)
	sendEvent(t, server, 20, wmBaseEventPing, enc.Bytes())

	if _, err := conn.DispatchPending(); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if err := conn.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if pinged != 7777 {
		t.Fatalf("ping handler saw serial %d, want 7777", pinged)
	}

	objectID, opcode, args := readMessage(t, server)
	if objectID != 20 || opcode != wmBasePong {
		t.Fatalf("reply = (object=%d, opcode=%d), want pong on 20", objectID, opcode)
	}
	dec := wire.NewDecoder(args, nil)
	serial, err := dec.Uint32()
	if err != nil {
		t.Fatalf("decode pong serial: %v", err)
	}
	if serial != 7777 {
		t.Fatalf("pong serial = %d, want 7777", serial)
	}
}

func TestToplevelConfigureStates(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(30, proto.TypeXdgToplevel)
	tl := &Toplevel{conn: conn, id: 30}
	conn.RegisterDispatchable(30, tl)

	var cfg *ToplevelConfig
	tl.SetConfigureHandler(func(c *ToplevelConfig) { cfg = c })

	states := wire.NewEncoder(8)
	states.PutUint32(uint32(StateMaximized))
	states.PutUint32(uint32(StateActivated))

	enc := wire.NewEncoder(32)
	enc.PutInt32(1280)
	enc.PutInt32(720)
	enc.PutArray(states.Bytes())
	sendEvent(t, server, 30, toplevelEventConfigure, enc.Bytes())

	if _, err := conn.DispatchPending(); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if cfg == nil {
		t.Fatalf("configure handler never invoked")
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Fatalf("configure size = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if !cfg.Maximized || !cfg.Activated || cfg.Fullscreen || cfg.Resizing {
		t.Fatalf("configure states = %+v, want maximized+activated", cfg)
	}
	if len(cfg.States) != 2 || cfg.States[0] != StateMaximized || cfg.States[1] != StateActivated {
		t.Fatalf("raw states = %v", cfg.States)
	}
}

func TestSurfaceConfigureAck(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(25, proto.TypeXdgSurface)
	s := &Surface{conn: conn, id: 25, wlSurface: 10}
	conn.RegisterDispatchable(25, s)

	s.SetConfigureHandler(func(serial uint32) {
		if err := s.AckConfigure(serial); err != nil {
			t.Errorf("AckConfigure: %v", err)
		}
	})

	enc := wire.NewEncoder(4)
	enc.PutUint32(41)
	sendEvent(t, server, 25, surfaceEventConfigure, enc.Bytes())

	if _, err := conn.DispatchPending(); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if !s.IsConfigured() {
		t.Fatalf("IsConfigured() = false after configure")
	}
	if err := conn.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	objectID, opcode, args := readMessage(t, server)
	if objectID != 25 || opcode != surfaceAckConfigure {
		t.Fatalf("reply = (object=%d, opcode=%d), want ack_configure on 25", objectID, opcode)
	}
	dec := wire.NewDecoder(args, nil)
	if serial, _ := dec.Uint32(); serial != 41 {
		t.Fatalf("ack serial = %d, want 41", serial)
	}
}

func TestParseToplevelState(t *testing.T) {
	st, err := ParseToplevelState(2)
	if err != nil || st != StateFullscreen {
		t.Fatalf("ParseToplevelState(2) = (%v, %v), want fullscreen", st, err)
	}
	_, err = ParseToplevelState(999)
	var decodeErr *proto.EnumDecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Value != 999 {
		t.Fatalf("ParseToplevelState(999) error = %v, want EnumDecodeError{999}", err)
	}
}

func TestConstraintAdjustmentBitflag(t *testing.T) {
	flag := proto.NewBitflag(ConstraintAdjustmentSlideX|ConstraintAdjustmentFlipY, ConstraintAdjustmentMembers)
	if got := flag.String(); got != "slide_x|flip_y" {
		t.Fatalf("String() = %q, want %q", got, "slide_x|flip_y")
	}
	parsed, err := proto.ParseBitflag("slide_x|flip_y", ConstraintAdjustmentMembers)
	if err != nil {
		t.Fatalf("ParseBitflag: %v", err)
	}
	if parsed.Value() != flag.Value() {
		t.Fatalf("round trip = %d, want %d", parsed.Value(), flag.Value())
	}
}

func TestSetTitleEncoding(t *testing.T) {
	conn, server := pairedConnection(t)
	defer conn.Close()
	defer server.Close()

	conn.Objects().Adopt(30, proto.TypeXdgToplevel)
	tl := &Toplevel{conn: conn, id: 30}

	if err := tl.SetTitle("hello"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	if err := conn.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if tl.Title() != "hello" {
		t.Fatalf("Title() = %q", tl.Title())
	}

	objectID, opcode, args := readMessage(t, server)
	if objectID != 30 || opcode != toplevelSetTitle {
		t.Fatalf("message = (object=%d, opcode=%d), want set_title on 30", objectID, opcode)
	}
	dec := wire.NewDecoder(args, nil)
	title, err := dec.String()
	if err != nil {
		t.Fatalf("decode title: %v", err)
	}
	if title != "hello" {
		t.Fatalf("wire title = %q, want %q", title, "hello")
	}
}
