package proto

import "github.com/waylib/wlcore/wire"

// These three interfaces exist on every connection regardless of which
// protocol family packages an application imports: wl_display is always
// object 1, wl_registry is how every other global is discovered, and
// wl_callback backs both display.sync and surface.frame. Their metadata
// lives here rather than in a protocol/* package so package wlclient can
// depend on proto alone for its built-in object handling.
func init() {
	Register(&InterfaceDescriptor{
		Type:    TypeDisplay,
		Name:    "wl_display",
		Version: 1,
		Requests: []RequestDescriptor{
			{Name: "sync", Opcode: 0, Args: []ArgSpec{
				{Name: "callback", Kind: wire.ArgNewID, NewType: TypeCallback},
			}},
			{Name: "get_registry", Opcode: 1, Args: []ArgSpec{
				{Name: "registry", Kind: wire.ArgNewID, NewType: TypeRegistry},
			}},
		},
		Events: []EventDescriptor{
			{Name: "error", Opcode: 0, Args: []ArgSpec{
				{Name: "object_id", Kind: wire.ArgObject, Nullable: true},
				{Name: "code", Kind: wire.ArgUint},
				{Name: "message", Kind: wire.ArgString},
			}},
			{Name: "delete_id", Opcode: 1, Args: []ArgSpec{
				{Name: "id", Kind: wire.ArgUint},
			}},
		},
	})

	Register(&InterfaceDescriptor{
		Type:    TypeRegistry,
		Name:    "wl_registry",
		Version: 1,
		Requests: []RequestDescriptor{
			{Name: "bind", Opcode: 0, Args: []ArgSpec{
				{Name: "name", Kind: wire.ArgUint},
				{Name: "id", Kind: wire.ArgNewIDDynamic},
			}},
		},
		Events: []EventDescriptor{
			{Name: "global", Opcode: 0, Args: []ArgSpec{
				{Name: "name", Kind: wire.ArgUint},
				{Name: "interface", Kind: wire.ArgString},
				{Name: "version", Kind: wire.ArgUint},
			}},
			{Name: "global_remove", Opcode: 1, Args: []ArgSpec{
				{Name: "name", Kind: wire.ArgUint},
			}},
		},
	})

	Register(&InterfaceDescriptor{
		Type:    TypeCallback,
		Name:    "wl_callback",
		Version: 1,
		Events: []EventDescriptor{
			{Name: "done", Opcode: 0, Args: []ArgSpec{
				{Name: "callback_data", Kind: wire.ArgUint},
			}},
		},
	})
}

// Display error codes, from the wl_display.error event's code argument.
const (
	DisplayErrorInvalidObject  uint32 = 0
	DisplayErrorInvalidMethod  uint32 = 1
	DisplayErrorNoMemory       uint32 = 2
	DisplayErrorImplementation uint32 = 3
)
