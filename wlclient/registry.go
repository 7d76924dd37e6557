//go:build linux

package wlclient

import (
	"fmt"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
)

// Global is one entry advertised by the compositor's wl_registry.global
// event: a name (a per-connection, opaque integer the client uses to bind
// it), the interface it implements, and the highest version the compositor
// supports.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Registry mirrors the compositor's wl_registry: the set of currently
// advertised globals, and the means to bind one.
type Registry struct {
	conn    *Connection
	id      uint32
	globals map[uint32]Global
}

func newRegistry(conn *Connection, id uint32) *Registry {
	return &Registry{conn: conn, id: id, globals: make(map[uint32]Global)}
}

// ID returns the registry's own object id.
func (r *Registry) ID() uint32 { return r.id }

// Globals returns a snapshot of every global currently advertised.
func (r *Registry) Globals() []Global {
	out := make([]Global, 0, len(r.globals))
	for _, g := range r.globals {
		out = append(out, g)
	}
	return out
}

// Find returns an advertised global implementing the named interface, for
// the common case of binding a singleton like wl_compositor or wl_shm.
// When several globals match, which one is returned is not defined.
func (r *Registry) Find(interfaceName string) (Global, bool) {
	for _, g := range r.globals {
		if g.Interface == interfaceName {
			return g, true
		}
	}
	return Global{}, false
}

// Bind allocates a new object id of the type registered under
// g.Interface and sends wl_registry.bind for it. It does not register a
// Dispatchable; the caller (typically a protocol/* constructor) does that
// once it has wrapped the raw id in its own typed object.
func (r *Registry) Bind(g Global, version uint32) (uint32, proto.ObjectType, error) {
	desc, ok := proto.LookupByName(g.Interface)
	if !ok {
		return 0, 0, fmt.Errorf("wlclient: no interface metadata registered for %q", g.Interface)
	}
	bindReq := registryDescriptor().RequestByName("bind")

	id := r.conn.AllocateChild(desc.Type)
	builder := wire.NewMessageBuilder()
	builder.Uint(g.Name)
	builder.NewIDDynamic(g.Interface, version, id)
	msg, err := builder.Build(r.id, bindReq.Opcode)
	if err != nil {
		return 0, 0, err
	}
	if err := r.conn.Send(msg.ObjectID, proto.Request{Opcode: msg.Opcode, Args: msg.Args, FDs: msg.FDs}); err != nil {
		return 0, 0, err
	}
	return id, desc.Type, nil
}

func registryDescriptor() *proto.InterfaceDescriptor {
	d, ok := proto.Lookup(proto.TypeRegistry)
	if !ok {
		panic("wlclient: wl_registry metadata missing")
	}
	return d
}

// Dispatch implements Dispatchable for wl_registry's own events.
func (r *Registry) Dispatch(conn *Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "global":
		name, err := dec.Uint32()
		if err != nil {
			return err
		}
		iface, err := dec.String()
		if err != nil {
			return err
		}
		version, err := dec.Uint32()
		if err != nil {
			return err
		}
		r.globals[name] = Global{Name: name, Interface: iface, Version: version}
		return nil
	case "global_remove":
		name, err := dec.Uint32()
		if err != nil {
			return err
		}
		delete(r.globals, name)
		return nil
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeRegistry, Opcode: opcode}
	}
}
