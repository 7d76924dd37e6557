// Package proto holds the static interface metadata a Wayland client needs
// to build requests and parse events without runtime XML parsing: the closed
// set of object types, their per-opcode argument shapes, and a registry that
// ties opcodes back to that metadata for the dispatcher in package wlclient.
package proto

import (
	"fmt"

	"github.com/waylib/wlcore/wire"
)

// ObjectType identifies the interface an object implements. It is a closed
// enum: every interface this module understands has one constant here, and
// every constant here gets an InterfaceDescriptor registered by its
// protocol family package (the wl_display/wl_registry/wl_callback built-ins
// by this package itself).
type ObjectType uint16

const (
	TypeDisplay ObjectType = iota + 1
	TypeRegistry
	TypeCallback
	TypeCompositor
	TypeSurface
	TypeRegion
	TypeSubcompositor
	TypeSubsurface
	TypeShm
	TypeShmPool
	TypeBuffer
	TypeSeat
	TypePointer
	TypeKeyboard
	TypeTouch
	TypeOutput
	TypeDataDeviceManager
	TypeDataDevice
	TypeDataSource
	TypeDataOffer
	TypeXdgWmBase
	TypeXdgPositioner
	TypeXdgSurface
	TypeXdgToplevel
	TypeXdgPopup
	TypeLayerShell
	TypeLayerSurface
	TypeViewporter
	TypeViewport
)

func (t ObjectType) String() string {
	if d, ok := byType[t]; ok {
		return d.Name
	}
	return fmt.Sprintf("ObjectType(%d)", uint16(t))
}

// ArgSpec describes one argument position of a request or event.
type ArgSpec struct {
	Name     string
	Kind     wire.ArgKind
	Nullable bool       // only meaningful for ArgObject/ArgNewID
	NewType  ObjectType // child type allocated/referenced by this argument, 0 if dynamic (see ArgNewIDDynamic)
}

// RequestDescriptor describes one client-to-server request.
type RequestDescriptor struct {
	Name    string
	Opcode  wire.Opcode
	Args    []ArgSpec
	Since   uint32 // interface version that introduced this request
	Destroy bool   // request destroys the sending object (e.g. wl_surface.destroy)
}

// EventDescriptor describes one server-to-client event.
type EventDescriptor struct {
	Name   string
	Opcode wire.Opcode
	Args   []ArgSpec
	Since  uint32
}

// InterfaceDescriptor is the complete static metadata for one Wayland
// interface: its name, its current version, and its request/event tables.
type InterfaceDescriptor struct {
	Type     ObjectType
	Name     string
	Version  uint32
	Requests []RequestDescriptor
	Events   []EventDescriptor
}

var (
	byType = map[ObjectType]*InterfaceDescriptor{}
	byName = map[string]*InterfaceDescriptor{}
)

// Register adds an interface descriptor to the family registry. It panics on
// a duplicate type or name, since that can only happen from a programming
// error in this module's own protocol packages (init-time registration, not
// user input).
func Register(d *InterfaceDescriptor) {
	if _, ok := byType[d.Type]; ok {
		panic(fmt.Sprintf("proto: duplicate registration for type %v", d.Type))
	}
	if _, ok := byName[d.Name]; ok {
		panic(fmt.Sprintf("proto: duplicate registration for interface %q", d.Name))
	}
	byType[d.Type] = d
	byName[d.Name] = d
}

// Lookup returns the descriptor registered for t.
func Lookup(t ObjectType) (*InterfaceDescriptor, bool) {
	d, ok := byType[t]
	return d, ok
}

// LookupByName returns the descriptor registered under the wire interface
// name (as used by wl_registry.global and wl_registry.bind).
func LookupByName(name string) (*InterfaceDescriptor, bool) {
	d, ok := byName[name]
	return d, ok
}

// CountFDArgs reports how many ArgFD arguments appear in args, so a caller
// can slice exactly that many fds off an ancillary-data queue before
// decoding.
func CountFDArgs(args []ArgSpec) int {
	n := 0
	for _, a := range args {
		if a.Kind == wire.ArgFD {
			n++
		}
	}
	return n
}

// UnknownObjectError reports dispatch against an object id the object table
// has never seen and isn't holding in its zombie set either.
type UnknownObjectError struct {
	ID uint32
}

func (e *UnknownObjectError) Error() string {
	return fmt.Sprintf("proto: unknown object id %d", e.ID)
}

// UnknownOpcodeError reports an event or request opcode with no matching
// descriptor entry for the given interface.
type UnknownOpcodeError struct {
	Type   ObjectType
	Opcode wire.Opcode
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("proto: %v has no opcode %d", e.Type, uint16(e.Opcode))
}

// RequestByOpcode finds the request descriptor for (t, opcode).
func (d *InterfaceDescriptor) RequestByOpcode(opcode wire.Opcode) (*RequestDescriptor, error) {
	for i := range d.Requests {
		if d.Requests[i].Opcode == opcode {
			return &d.Requests[i], nil
		}
	}
	return nil, &UnknownOpcodeError{Type: d.Type, Opcode: opcode}
}

// RequestByName finds the request descriptor named name. It panics if name
// is not one of d's requests, since callers use this for the fixed set of
// built-in requests this module itself sends (a lookup miss here is a
// programming error, not something to recover from at runtime).
func (d *InterfaceDescriptor) RequestByName(name string) *RequestDescriptor {
	for i := range d.Requests {
		if d.Requests[i].Name == name {
			return &d.Requests[i]
		}
	}
	panic(fmt.Sprintf("proto: %s has no request %q", d.Name, name))
}

// EventByOpcode finds the event descriptor for (t, opcode).
func (d *InterfaceDescriptor) EventByOpcode(opcode wire.Opcode) (*EventDescriptor, error) {
	for i := range d.Events {
		if d.Events[i].Opcode == opcode {
			return &d.Events[i], nil
		}
	}
	return nil, &UnknownOpcodeError{Type: d.Type, Opcode: opcode}
}

// RequestByOpcode is the package-level convenience form of
// InterfaceDescriptor.RequestByOpcode, looking the interface up by type first.
func RequestByOpcode(t ObjectType, opcode wire.Opcode) (*RequestDescriptor, error) {
	d, ok := Lookup(t)
	if !ok {
		return nil, &UnknownOpcodeError{Type: t, Opcode: opcode}
	}
	return d.RequestByOpcode(opcode)
}

// EventByOpcode is the package-level convenience form of
// InterfaceDescriptor.EventByOpcode, looking the interface up by type first.
func EventByOpcode(t ObjectType, opcode wire.Opcode) (*EventDescriptor, error) {
	d, ok := Lookup(t)
	if !ok {
		return nil, &UnknownOpcodeError{Type: t, Opcode: opcode}
	}
	return d.EventByOpcode(opcode)
}
