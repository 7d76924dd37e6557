//go:build linux

// Package xdgshell provides typed wrappers and interface metadata for the
// xdg-shell protocol family (xdg_wm_base, xdg_positioner, xdg_surface,
// xdg_toplevel, xdg_popup): desktop-style toplevel windows and popups on
// top of wl_surface.
package xdgshell

import (
	"fmt"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// xdg_wm_base opcodes (requests)
const (
	wmBaseDestroy          wire.Opcode = 0 // destroy()
	wmBaseCreatePositioner wire.Opcode = 1 // create_positioner(id: new_id<xdg_positioner>)
	wmBaseGetXdgSurface    wire.Opcode = 2 // get_xdg_surface(id: new_id<xdg_surface>, surface: object<wl_surface>)
	wmBasePong             wire.Opcode = 3 // pong(serial: uint)
)

// xdg_wm_base event opcodes
const (
	wmBaseEventPing wire.Opcode = 0 // ping(serial: uint)
)

// xdg_positioner opcodes (requests)
const (
	positionerDestroy             wire.Opcode = 0 // destroy()
	positionerSetSize             wire.Opcode = 1 // set_size(width: int, height: int)
	positionerSetAnchorRect       wire.Opcode = 2 // set_anchor_rect(x: int, y: int, width: int, height: int)
	positionerSetAnchor           wire.Opcode = 3 // set_anchor(anchor: uint)
	positionerSetGravity          wire.Opcode = 4 // set_gravity(gravity: uint)
	positionerSetConstraintAdjust wire.Opcode = 5 // set_constraint_adjustment(constraint_adjustment: uint)
	positionerSetOffset           wire.Opcode = 6 // set_offset(x: int, y: int)
	positionerSetReactive         wire.Opcode = 7 // set_reactive() [v3]
	positionerSetParentSize       wire.Opcode = 8 // set_parent_size(parent_width: int, parent_height: int) [v3]
	positionerSetParentConfigure  wire.Opcode = 9 // set_parent_configure(serial: uint) [v3]
)

// xdg_surface opcodes (requests)
const (
	surfaceDestroy           wire.Opcode = 0 // destroy()
	surfaceGetToplevel       wire.Opcode = 1 // get_toplevel(id: new_id<xdg_toplevel>)
	surfaceGetPopup          wire.Opcode = 2 // get_popup(id: new_id<xdg_popup>, parent: object<xdg_surface>?, positioner: object<xdg_positioner>)
	surfaceSetWindowGeometry wire.Opcode = 3 // set_window_geometry(x: int, y: int, width: int, height: int)
	surfaceAckConfigure      wire.Opcode = 4 // ack_configure(serial: uint)
)

// xdg_surface event opcodes
const (
	surfaceEventConfigure wire.Opcode = 0 // configure(serial: uint)
)

// xdg_toplevel opcodes (requests)
const (
	toplevelDestroy         wire.Opcode = 0  // destroy()
	toplevelSetParent       wire.Opcode = 1  // set_parent(parent: object<xdg_toplevel>?)
	toplevelSetTitle        wire.Opcode = 2  // set_title(title: string)
	toplevelSetAppID        wire.Opcode = 3  // set_app_id(app_id: string)
	toplevelShowWindowMenu  wire.Opcode = 4  // show_window_menu(seat: object<wl_seat>, serial: uint, x: int, y: int)
	toplevelMove            wire.Opcode = 5  // move(seat: object<wl_seat>, serial: uint)
	toplevelResize          wire.Opcode = 6  // resize(seat: object<wl_seat>, serial: uint, edges: uint)
	toplevelSetMaxSize      wire.Opcode = 7  // set_max_size(width: int, height: int)
	toplevelSetMinSize      wire.Opcode = 8  // set_min_size(width: int, height: int)
	toplevelSetMaximized    wire.Opcode = 9  // set_maximized()
	toplevelUnsetMaximized  wire.Opcode = 10 // unset_maximized()
	toplevelSetFullscreen   wire.Opcode = 11 // set_fullscreen(output: object<wl_output>?)
	toplevelUnsetFullscreen wire.Opcode = 12 // unset_fullscreen()
	toplevelSetMinimized    wire.Opcode = 13 // set_minimized()
)

// xdg_toplevel event opcodes
const (
	toplevelEventConfigure wire.Opcode = 0 // configure(width: int, height: int, states: array)
	toplevelEventClose     wire.Opcode = 1 // close()
)

// xdg_popup opcodes (requests)
const (
	popupDestroy    wire.Opcode = 0 // destroy()
	popupGrab       wire.Opcode = 1 // grab(seat: object<wl_seat>, serial: uint)
	popupReposition wire.Opcode = 2 // reposition(positioner: object<xdg_positioner>, token: uint) [v3]
)

// xdg_popup event opcodes
const (
	popupEventConfigure    wire.Opcode = 0 // configure(x: int, y: int, width: int, height: int)
	popupEventPopupDone    wire.Opcode = 1 // popup_done()
	popupEventRepositioned wire.Opcode = 2 // repositioned(token: uint) [v3]
)

// ToplevelState is one entry of the xdg_toplevel.configure states array.
type ToplevelState uint32

const (
	StateMaximized   ToplevelState = 1
	StateFullscreen  ToplevelState = 2
	StateResizing    ToplevelState = 3
	StateActivated   ToplevelState = 4
	StateTiledLeft   ToplevelState = 5
	StateTiledRight  ToplevelState = 6
	StateTiledTop    ToplevelState = 7
	StateTiledBottom ToplevelState = 8
)

var toplevelStateNames = map[ToplevelState]string{
	StateMaximized:   "maximized",
	StateFullscreen:  "fullscreen",
	StateResizing:    "resizing",
	StateActivated:   "activated",
	StateTiledLeft:   "tiled_left",
	StateTiledRight:  "tiled_right",
	StateTiledTop:    "tiled_top",
	StateTiledBottom: "tiled_bottom",
}

func (s ToplevelState) String() string {
	if name, ok := toplevelStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ToplevelState(%d)", uint32(s))
}

// ParseToplevelState decodes a wire value into a ToplevelState, failing on
// codes this module has no member for.
func ParseToplevelState(v uint32) (ToplevelState, error) {
	if _, ok := toplevelStateNames[ToplevelState(v)]; !ok {
		return 0, &proto.EnumDecodeError{Enum: "ToplevelState", Value: v}
	}
	return ToplevelState(v), nil
}

// xdg_toplevel.resize_edge values.
const (
	ResizeEdgeNone        uint32 = 0
	ResizeEdgeTop         uint32 = 1
	ResizeEdgeBottom      uint32 = 2
	ResizeEdgeLeft        uint32 = 4
	ResizeEdgeTopLeft     uint32 = 5
	ResizeEdgeBottomLeft  uint32 = 6
	ResizeEdgeRight       uint32 = 8
	ResizeEdgeTopRight    uint32 = 9
	ResizeEdgeBottomRight uint32 = 10
)

// xdg_positioner.anchor values.
const (
	AnchorNone        uint32 = 0
	AnchorTop         uint32 = 1
	AnchorBottom      uint32 = 2
	AnchorLeft        uint32 = 3
	AnchorRight       uint32 = 4
	AnchorTopLeft     uint32 = 5
	AnchorBottomLeft  uint32 = 6
	AnchorTopRight    uint32 = 7
	AnchorBottomRight uint32 = 8
)

// xdg_positioner.gravity values.
const (
	GravityNone        uint32 = 0
	GravityTop         uint32 = 1
	GravityBottom      uint32 = 2
	GravityLeft        uint32 = 3
	GravityRight       uint32 = 4
	GravityTopLeft     uint32 = 5
	GravityBottomLeft  uint32 = 6
	GravityTopRight    uint32 = 7
	GravityBottomRight uint32 = 8
)

// xdg_positioner.constraint_adjustment bits.
const (
	ConstraintAdjustmentNone    uint32 = 0
	ConstraintAdjustmentSlideX  uint32 = 1
	ConstraintAdjustmentSlideY  uint32 = 2
	ConstraintAdjustmentFlipX   uint32 = 4
	ConstraintAdjustmentFlipY   uint32 = 8
	ConstraintAdjustmentResizeX uint32 = 16
	ConstraintAdjustmentResizeY uint32 = 32
)

// ConstraintAdjustmentMembers is the member table for the
// constraint_adjustment bitfield enum.
var ConstraintAdjustmentMembers = []proto.BitflagMember{
	{Name: "slide_x", Bit: ConstraintAdjustmentSlideX},
	{Name: "slide_y", Bit: ConstraintAdjustmentSlideY},
	{Name: "flip_x", Bit: ConstraintAdjustmentFlipX},
	{Name: "flip_y", Bit: ConstraintAdjustmentFlipY},
	{Name: "resize_x", Bit: ConstraintAdjustmentResizeX},
	{Name: "resize_y", Bit: ConstraintAdjustmentResizeY},
}

func init() {
	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeXdgWmBase,
		Name:    "xdg_wm_base",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: wmBaseDestroy, Destroy: true},
			{Name: "create_positioner", Opcode: wmBaseCreatePositioner, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeXdgPositioner},
			}},
			{Name: "get_xdg_surface", Opcode: wmBaseGetXdgSurface, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeXdgSurface},
				{Name: "surface", Kind: wire.ArgObject},
			}},
			{Name: "pong", Opcode: wmBasePong, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
			}},
		},
		Events: []proto.EventDescriptor{
			{Name: "ping", Opcode: wmBaseEventPing, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeXdgPositioner,
		Name:    "xdg_positioner",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: positionerDestroy, Destroy: true},
			{Name: "set_size", Opcode: positionerSetSize, Args: []proto.ArgSpec{
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
			}},
			{Name: "set_anchor_rect", Opcode: positionerSetAnchorRect, Args: []proto.ArgSpec{
				{Name: "x", Kind: wire.ArgInt},
				{Name: "y", Kind: wire.ArgInt},
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
			}},
			{Name: "set_anchor", Opcode: positionerSetAnchor, Args: []proto.ArgSpec{
				{Name: "anchor", Kind: wire.ArgUint},
			}},
			{Name: "set_gravity", Opcode: positionerSetGravity, Args: []proto.ArgSpec{
				{Name: "gravity", Kind: wire.ArgUint},
			}},
			{Name: "set_constraint_adjustment", Opcode: positionerSetConstraintAdjust, Args: []proto.ArgSpec{
				{Name: "constraint_adjustment", Kind: wire.ArgUint},
			}},
			{Name: "set_offset", Opcode: positionerSetOffset, Args: []proto.ArgSpec{
				{Name: "x", Kind: wire.ArgInt},
				{Name: "y", Kind: wire.ArgInt},
			}},
			{Name: "set_reactive", Opcode: positionerSetReactive, Since: 3},
			{Name: "set_parent_size", Opcode: positionerSetParentSize, Since: 3, Args: []proto.ArgSpec{
				{Name: "parent_width", Kind: wire.ArgInt},
				{Name: "parent_height", Kind: wire.ArgInt},
			}},
			{Name: "set_parent_configure", Opcode: positionerSetParentConfigure, Since: 3, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeXdgSurface,
		Name:    "xdg_surface",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: surfaceDestroy, Destroy: true},
			{Name: "get_toplevel", Opcode: surfaceGetToplevel, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeXdgToplevel},
			}},
			{Name: "get_popup", Opcode: surfaceGetPopup, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeXdgPopup},
				{Name: "parent", Kind: wire.ArgObject, Nullable: true},
				{Name: "positioner", Kind: wire.ArgObject},
			}},
			{Name: "set_window_geometry", Opcode: surfaceSetWindowGeometry, Args: []proto.ArgSpec{
				{Name: "x", Kind: wire.ArgInt},
				{Name: "y", Kind: wire.ArgInt},
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
			}},
			{Name: "ack_configure", Opcode: surfaceAckConfigure, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
			}},
		},
		Events: []proto.EventDescriptor{
			{Name: "configure", Opcode: surfaceEventConfigure, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeXdgToplevel,
		Name:    "xdg_toplevel",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: toplevelDestroy, Destroy: true},
			{Name: "set_parent", Opcode: toplevelSetParent, Args: []proto.ArgSpec{
				{Name: "parent", Kind: wire.ArgObject, Nullable: true},
			}},
			{Name: "set_title", Opcode: toplevelSetTitle, Args: []proto.ArgSpec{
				{Name: "title", Kind: wire.ArgString},
			}},
			{Name: "set_app_id", Opcode: toplevelSetAppID, Args: []proto.ArgSpec{
				{Name: "app_id", Kind: wire.ArgString},
			}},
			{Name: "show_window_menu", Opcode: toplevelShowWindowMenu, Args: []proto.ArgSpec{
				{Name: "seat", Kind: wire.ArgObject},
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "x", Kind: wire.ArgInt},
				{Name: "y", Kind: wire.ArgInt},
			}},
			{Name: "move", Opcode: toplevelMove, Args: []proto.ArgSpec{
				{Name: "seat", Kind: wire.ArgObject},
				{Name: "serial", Kind: wire.ArgUint},
			}},
			{Name: "resize", Opcode: toplevelResize, Args: []proto.ArgSpec{
				{Name: "seat", Kind: wire.ArgObject},
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "edges", Kind: wire.ArgUint},
			}},
			{Name: "set_max_size", Opcode: toplevelSetMaxSize, Args: []proto.ArgSpec{
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
			}},
			{Name: "set_min_size", Opcode: toplevelSetMinSize, Args: []proto.ArgSpec{
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
			}},
			{Name: "set_maximized", Opcode: toplevelSetMaximized},
			{Name: "unset_maximized", Opcode: toplevelUnsetMaximized},
			{Name: "set_fullscreen", Opcode: toplevelSetFullscreen, Args: []proto.ArgSpec{
				{Name: "output", Kind: wire.ArgObject, Nullable: true},
			}},
			{Name: "unset_fullscreen", Opcode: toplevelUnsetFullscreen},
			{Name: "set_minimized", Opcode: toplevelSetMinimized},
		},
		Events: []proto.EventDescriptor{
			{Name: "configure", Opcode: toplevelEventConfigure, Args: []proto.ArgSpec{
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
				{Name: "states", Kind: wire.ArgArray},
			}},
			{Name: "close", Opcode: toplevelEventClose},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeXdgPopup,
		Name:    "xdg_popup",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: popupDestroy, Destroy: true},
			{Name: "grab", Opcode: popupGrab, Args: []proto.ArgSpec{
				{Name: "seat", Kind: wire.ArgObject},
				{Name: "serial", Kind: wire.ArgUint},
			}},
			{Name: "reposition", Opcode: popupReposition, Since: 3, Args: []proto.ArgSpec{
				{Name: "positioner", Kind: wire.ArgObject},
				{Name: "token", Kind: wire.ArgUint},
			}},
		},
		Events: []proto.EventDescriptor{
			{Name: "configure", Opcode: popupEventConfigure, Args: []proto.ArgSpec{
				{Name: "x", Kind: wire.ArgInt},
				{Name: "y", Kind: wire.ArgInt},
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
			}},
			{Name: "popup_done", Opcode: popupEventPopupDone},
			{Name: "repositioned", Opcode: popupEventRepositioned, Since: 3, Args: []proto.ArgSpec{
				{Name: "token", Kind: wire.ArgUint},
			}},
		},
	})
}

func send(conn *wlclient.Connection, b *wire.MessageBuilder, objectID uint32, opcode wire.Opcode) error {
	msg, err := b.Build(objectID, opcode)
	if err != nil {
		return err
	}
	return conn.Send(msg.ObjectID, proto.Request{Opcode: msg.Opcode, Args: msg.Args, FDs: msg.FDs})
}
