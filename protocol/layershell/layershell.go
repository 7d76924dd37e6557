//go:build linux

// Package layershell provides typed wrappers and interface metadata for the
// wlr-layer-shell protocol (zwlr_layer_shell_v1, zwlr_layer_surface_v1):
// surfaces anchored to output edges for panels, wallpapers, lock screens,
// and overlays.
package layershell

import (
	"fmt"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// zwlr_layer_shell_v1 opcodes (requests)
const (
	shellGetLayerSurface wire.Opcode = 0 // get_layer_surface(id: new_id<zwlr_layer_surface_v1>, surface: object, output: object?, layer: uint, namespace: string)
	shellDestroy         wire.Opcode = 1 // destroy() [v3]
)

// zwlr_layer_surface_v1 opcodes (requests)
const (
	layerSurfaceSetSize                  wire.Opcode = 0 // set_size(width: uint, height: uint)
	layerSurfaceSetAnchor                wire.Opcode = 1 // set_anchor(anchor: uint)
	layerSurfaceSetExclusiveZone         wire.Opcode = 2 // set_exclusive_zone(zone: int)
	layerSurfaceSetMargin                wire.Opcode = 3 // set_margin(top: int, right: int, bottom: int, left: int)
	layerSurfaceSetKeyboardInteractivity wire.Opcode = 4 // set_keyboard_interactivity(keyboard_interactivity: uint)
	layerSurfaceGetPopup                 wire.Opcode = 5 // get_popup(popup: object<xdg_popup>)
	layerSurfaceAckConfigure             wire.Opcode = 6 // ack_configure(serial: uint)
	layerSurfaceDestroy                  wire.Opcode = 7 // destroy()
	layerSurfaceSetLayer                 wire.Opcode = 8 // set_layer(layer: uint) [v2]
)

// zwlr_layer_surface_v1 event opcodes
const (
	layerSurfaceEventConfigure wire.Opcode = 0 // configure(serial: uint, width: uint, height: uint)
	layerSurfaceEventClosed    wire.Opcode = 1 // closed()
)

// Layer is the zwlr_layer_shell_v1.layer enum: which stacking layer a
// surface is rendered in.
type Layer uint32

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

var layerNames = map[Layer]string{
	LayerBackground: "background",
	LayerBottom:     "bottom",
	LayerTop:        "top",
	LayerOverlay:    "overlay",
}

func (l Layer) String() string {
	if name, ok := layerNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Layer(%d)", uint32(l))
}

// ParseLayer decodes a wire value into a Layer, failing on unknown codes.
func ParseLayer(v uint32) (Layer, error) {
	if _, ok := layerNames[Layer(v)]; !ok {
		return 0, &proto.EnumDecodeError{Enum: "Layer", Value: v}
	}
	return Layer(v), nil
}

// zwlr_layer_surface_v1.anchor bits.
const (
	AnchorTop    uint32 = 1
	AnchorBottom uint32 = 2
	AnchorLeft   uint32 = 4
	AnchorRight  uint32 = 8
)

// AnchorMembers is the member table for the anchor bitfield enum.
var AnchorMembers = []proto.BitflagMember{
	{Name: "top", Bit: AnchorTop},
	{Name: "bottom", Bit: AnchorBottom},
	{Name: "left", Bit: AnchorLeft},
	{Name: "right", Bit: AnchorRight},
}

// NewAnchor wraps a raw anchor mask as a typed bitset.
func NewAnchor(value uint32) proto.Bitflag {
	return proto.NewBitflag(value, AnchorMembers)
}

// KeyboardInteractivity is the zwlr_layer_surface_v1.keyboard_interactivity
// enum (v4 semantics; on v1-v3 only none/exclusive exist).
type KeyboardInteractivity uint32

const (
	KeyboardInteractivityNone      KeyboardInteractivity = 0
	KeyboardInteractivityExclusive KeyboardInteractivity = 1
	KeyboardInteractivityOnDemand  KeyboardInteractivity = 2
)

var keyboardInteractivityNames = map[KeyboardInteractivity]string{
	KeyboardInteractivityNone:      "none",
	KeyboardInteractivityExclusive: "exclusive",
	KeyboardInteractivityOnDemand:  "on_demand",
}

func (k KeyboardInteractivity) String() string {
	if name, ok := keyboardInteractivityNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KeyboardInteractivity(%d)", uint32(k))
}

// ParseKeyboardInteractivity decodes a wire value, failing on unknown codes.
func ParseKeyboardInteractivity(v uint32) (KeyboardInteractivity, error) {
	if _, ok := keyboardInteractivityNames[KeyboardInteractivity(v)]; !ok {
		return 0, &proto.EnumDecodeError{Enum: "KeyboardInteractivity", Value: v}
	}
	return KeyboardInteractivity(v), nil
}

func init() {
	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeLayerShell,
		Name:    "zwlr_layer_shell_v1",
		Version: 4,
		Requests: []proto.RequestDescriptor{
			{Name: "get_layer_surface", Opcode: shellGetLayerSurface, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeLayerSurface},
				{Name: "surface", Kind: wire.ArgObject},
				{Name: "output", Kind: wire.ArgObject, Nullable: true},
				{Name: "layer", Kind: wire.ArgUint},
				{Name: "namespace", Kind: wire.ArgString},
			}},
			{Name: "destroy", Opcode: shellDestroy, Since: 3, Destroy: true},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeLayerSurface,
		Name:    "zwlr_layer_surface_v1",
		Version: 4,
		Requests: []proto.RequestDescriptor{
			{Name: "set_size", Opcode: layerSurfaceSetSize, Args: []proto.ArgSpec{
				{Name: "width", Kind: wire.ArgUint},
				{Name: "height", Kind: wire.ArgUint},
			}},
			{Name: "set_anchor", Opcode: layerSurfaceSetAnchor, Args: []proto.ArgSpec{
				{Name: "anchor", Kind: wire.ArgUint},
			}},
			{Name: "set_exclusive_zone", Opcode: layerSurfaceSetExclusiveZone, Args: []proto.ArgSpec{
				{Name: "zone", Kind: wire.ArgInt},
			}},
			{Name: "set_margin", Opcode: layerSurfaceSetMargin, Args: []proto.ArgSpec{
				{Name: "top", Kind: wire.ArgInt},
				{Name: "right", Kind: wire.ArgInt},
				{Name: "bottom", Kind: wire.ArgInt},
				{Name: "left", Kind: wire.ArgInt},
			}},
			{Name: "set_keyboard_interactivity", Opcode: layerSurfaceSetKeyboardInteractivity, Args: []proto.ArgSpec{
				{Name: "keyboard_interactivity", Kind: wire.ArgUint},
			}},
			{Name: "get_popup", Opcode: layerSurfaceGetPopup, Args: []proto.ArgSpec{
				{Name: "popup", Kind: wire.ArgObject},
			}},
			{Name: "ack_configure", Opcode: layerSurfaceAckConfigure, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
			}},
			{Name: "destroy", Opcode: layerSurfaceDestroy, Destroy: true},
			{Name: "set_layer", Opcode: layerSurfaceSetLayer, Since: 2, Args: []proto.ArgSpec{
				{Name: "layer", Kind: wire.ArgUint},
			}},
		},
		Events: []proto.EventDescriptor{
			{Name: "configure", Opcode: layerSurfaceEventConfigure, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "width", Kind: wire.ArgUint},
				{Name: "height", Kind: wire.ArgUint},
			}},
			{Name: "closed", Opcode: layerSurfaceEventClosed},
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

// LayerShell wraps the zwlr_layer_shell_v1 global.
type LayerShell struct {
	conn *wlclient.Connection
	id   uint32
}

// BindLayerShell binds the zwlr_layer_shell_v1 global at version.
func BindLayerShell(conn *wlclient.Connection, reg *wlclient.Registry, version uint32) (*LayerShell, error) {
	g, ok := reg.Find("zwlr_layer_shell_v1")
	if !ok {
		return nil, fmt.Errorf("layershell: zwlr_layer_shell_v1 not advertised by the compositor")
	}
	if version > g.Version {
		return nil, fmt.Errorf("layershell: requested version %d, compositor advertises %d", version, g.Version)
	}
	id, _, err := reg.Bind(g, version)
	if err != nil {
		return nil, err
	}
	return NewLayerShell(conn, id), nil
}

// NewLayerShell wraps an already-bound zwlr_layer_shell_v1 object id.
func NewLayerShell(conn *wlclient.Connection, id uint32) *LayerShell {
	return &LayerShell{conn: conn, id: id}
}

// ID returns the layer shell's object id.
func (ls *LayerShell) ID() uint32 { return ls.id }

// GetLayerSurface assigns wlSurface a layer-surface role on layer. output 0
// lets the compositor pick an output; namespace names the surface's purpose
// ("panel", "wallpaper") for compositor policy.
func (ls *LayerShell) GetLayerSurface(wlSurface uint32, output uint32, layer Layer, namespace string) (*LayerSurface, error) {
	id := ls.conn.AllocateChild(proto.TypeLayerSurface)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	b.Object("surface", wlSurface)
	b.MaybeObject(output)
	b.Uint(uint32(layer))
	b.Str(namespace)
	if err := send(ls.conn, b, ls.id, shellGetLayerSurface); err != nil {
		return nil, err
	}
	s := &LayerSurface{conn: ls.conn, id: id, wlSurface: wlSurface}
	ls.conn.RegisterDispatchable(id, s)
	return s, nil
}

// Destroy destroys the layer shell object (v3+). Layer surfaces keep their
// role.
func (ls *LayerShell) Destroy() error {
	if err := send(ls.conn, wire.NewMessageBuilder(), ls.id, shellDestroy); err != nil {
		return err
	}
	ls.conn.Objects().MarkDead(ls.id)
	return nil
}

// LayerSurface wraps a zwlr_layer_surface_v1 role object. Like xdg_surface,
// it follows a configure/ack_configure cycle before content can be shown.
type LayerSurface struct {
	conn      *wlclient.Connection
	id        uint32
	wlSurface uint32

	onConfigure func(serial, width, height uint32)
	onClosed    func()
}

// ID returns the layer surface's object id.
func (s *LayerSurface) ID() uint32 { return s.id }

// WlSurface returns the id of the underlying wl_surface.
func (s *LayerSurface) WlSurface() uint32 { return s.wlSurface }

// SetSize requests a surface size; 0 in a dimension anchored at both edges
// means "stretch to fit".
func (s *LayerSurface) SetSize(width, height uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(width).Uint(height)
	return send(s.conn, b, s.id, layerSurfaceSetSize)
}

// SetAnchor anchors the surface to a set of output edges (see
// AnchorMembers).
func (s *LayerSurface) SetAnchor(anchor uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(anchor)
	return send(s.conn, b, s.id, layerSurfaceSetAnchor)
}

// SetExclusiveZone reserves zone pixels along the anchored edge (-1 asks to
// be placed ignoring other exclusive zones).
func (s *LayerSurface) SetExclusiveZone(zone int32) error {
	b := wire.NewMessageBuilder()
	b.Int(zone)
	return send(s.conn, b, s.id, layerSurfaceSetExclusiveZone)
}

// SetMargin offsets the surface from its anchor edges.
func (s *LayerSurface) SetMargin(top, right, bottom, left int32) error {
	b := wire.NewMessageBuilder()
	b.Int(top).Int(right).Int(bottom).Int(left)
	return send(s.conn, b, s.id, layerSurfaceSetMargin)
}

// SetKeyboardInteractivity sets how the surface participates in keyboard
// focus.
func (s *LayerSurface) SetKeyboardInteractivity(ki KeyboardInteractivity) error {
	b := wire.NewMessageBuilder()
	b.Uint(uint32(ki))
	return send(s.conn, b, s.id, layerSurfaceSetKeyboardInteractivity)
}

// GetPopup parents an xdg_popup to this layer surface.
func (s *LayerSurface) GetPopup(popup uint32) error {
	b := wire.NewMessageBuilder()
	b.Object("popup", popup)
	return send(s.conn, b, s.id, layerSurfaceGetPopup)
}

// AckConfigure acknowledges the configure event carrying serial.
func (s *LayerSurface) AckConfigure(serial uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(serial)
	return send(s.conn, b, s.id, layerSurfaceAckConfigure)
}

// SetLayer moves the surface to another layer (v2+).
func (s *LayerSurface) SetLayer(layer Layer) error {
	b := wire.NewMessageBuilder()
	b.Uint(uint32(layer))
	return send(s.conn, b, s.id, layerSurfaceSetLayer)
}

// SetConfigureHandler registers a callback for configure events. The
// handler should apply the size and call AckConfigure.
func (s *LayerSurface) SetConfigureHandler(h func(serial, width, height uint32)) { s.onConfigure = h }

// SetClosedHandler registers a callback for the compositor closing the
// surface (output gone, session locked); the client should destroy it.
func (s *LayerSurface) SetClosedHandler(h func()) { s.onClosed = h }

// Destroy destroys the layer surface role.
func (s *LayerSurface) Destroy() error {
	if err := send(s.conn, wire.NewMessageBuilder(), s.id, layerSurfaceDestroy); err != nil {
		return err
	}
	s.conn.Objects().MarkDead(s.id)
	s.conn.Unregister(s.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for zwlr_layer_surface_v1
// events.
func (s *LayerSurface) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "configure":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		width, err := dec.Uint32()
		if err != nil {
			return err
		}
		height, err := dec.Uint32()
		if err != nil {
			return err
		}
		if s.onConfigure != nil {
			s.onConfigure(serial, width, height)
		}
	case "closed":
		if s.onClosed != nil {
			s.onClosed()
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeLayerSurface, Opcode: opcode}
	}
	return nil
}
