//go:build linux

// Package wlcore provides typed wrappers and interface metadata for the core
// Wayland protocol globals: wl_compositor, wl_surface, wl_shm, wl_seat and
// its input devices, wl_output, and the data-device (selection/drag)
// family. Importing this package registers the corresponding descriptors
// with package proto, making their events dispatchable.
//
// Each wrapper holds a connection and an object id; request methods encode
// with a wire.MessageBuilder and queue through Connection.Send, and every
// wrapper with events implements wlclient.Dispatchable.
package wlcore

import (
	"fmt"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// send finalizes b for (objectID, opcode) and queues it on conn's outgoing
// buffer.
func send(conn *wlclient.Connection, b *wire.MessageBuilder, objectID uint32, opcode wire.Opcode) error {
	msg, err := b.Build(objectID, opcode)
	if err != nil {
		return err
	}
	return conn.Send(msg.ObjectID, proto.Request{Opcode: msg.Opcode, Args: msg.Args, FDs: msg.FDs})
}

// bindGlobal resolves iface in the registry and binds it at version,
// returning the freshly allocated object id.
func bindGlobal(reg *wlclient.Registry, iface string, version uint32) (uint32, error) {
	g, ok := reg.Find(iface)
	if !ok {
		return 0, fmt.Errorf("wlcore: %s not advertised by the compositor", iface)
	}
	if version > g.Version {
		return 0, fmt.Errorf("wlcore: requested %s version %d, compositor advertises %d", iface, version, g.Version)
	}
	id, _, err := reg.Bind(g, version)
	return id, err
}
