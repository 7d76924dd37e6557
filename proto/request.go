package proto

import "github.com/waylib/wlcore/wire"

// Request is an already-encoded outgoing request: the opcode plus its
// wire-encoded argument bytes and any fds it carries. Protocol wrapper
// types (protocol/wlcore.Surface, protocol/xdgshell.Toplevel, ...) build
// one of these with a wire.MessageBuilder and hand it to
// wlclient.Connection.Send, which owns turning it into a framed message on
// the wire.
type Request struct {
	Opcode wire.Opcode
	Args   []byte
	FDs    []int
}
