//go:build linux

// Package viewporter provides typed wrappers and interface metadata for the
// viewporter protocol (wp_viewporter, wp_viewport): cropping and scaling of
// surface contents independent of the attached buffer's size.
package viewporter

import (
	"fmt"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// wp_viewporter opcodes (requests)
const (
	viewporterDestroy     wire.Opcode = 0 // destroy()
	viewporterGetViewport wire.Opcode = 1 // get_viewport(id: new_id<wp_viewport>, surface: object<wl_surface>)
)

// wp_viewport opcodes (requests)
const (
	viewportDestroy        wire.Opcode = 0 // destroy()
	viewportSetSource      wire.Opcode = 1 // set_source(x: fixed, y: fixed, width: fixed, height: fixed)
	viewportSetDestination wire.Opcode = 2 // set_destination(width: int, height: int)
)

func init() {
	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeViewporter,
		Name:    "wp_viewporter",
		Version: 1,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: viewporterDestroy, Destroy: true},
			{Name: "get_viewport", Opcode: viewporterGetViewport, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeViewport},
				{Name: "surface", Kind: wire.ArgObject},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeViewport,
		Name:    "wp_viewport",
		Version: 1,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: viewportDestroy, Destroy: true},
			{Name: "set_source", Opcode: viewportSetSource, Args: []proto.ArgSpec{
				{Name: "x", Kind: wire.ArgFixed},
				{Name: "y", Kind: wire.ArgFixed},
				{Name: "width", Kind: wire.ArgFixed},
				{Name: "height", Kind: wire.ArgFixed},
			}},
			{Name: "set_destination", Opcode: viewportSetDestination, Args: []proto.ArgSpec{
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
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

// Viewporter wraps the wp_viewporter global. Neither it nor wp_viewport has
// any events.
type Viewporter struct {
	conn *wlclient.Connection
	id   uint32
}

// BindViewporter binds the wp_viewporter global at version.
func BindViewporter(conn *wlclient.Connection, reg *wlclient.Registry, version uint32) (*Viewporter, error) {
	g, ok := reg.Find("wp_viewporter")
	if !ok {
		return nil, fmt.Errorf("viewporter: wp_viewporter not advertised by the compositor")
	}
	if version > g.Version {
		return nil, fmt.Errorf("viewporter: requested version %d, compositor advertises %d", version, g.Version)
	}
	id, _, err := reg.Bind(g, version)
	if err != nil {
		return nil, err
	}
	return NewViewporter(conn, id), nil
}

// NewViewporter wraps an already-bound wp_viewporter object id.
func NewViewporter(conn *wlclient.Connection, id uint32) *Viewporter {
	return &Viewporter{conn: conn, id: id}
}

// ID returns the viewporter's object id.
func (v *Viewporter) ID() uint32 { return v.id }

// GetViewport creates a crop/scale viewport for wlSurface.
func (v *Viewporter) GetViewport(wlSurface uint32) (*Viewport, error) {
	id := v.conn.AllocateChild(proto.TypeViewport)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	b.Object("surface", wlSurface)
	if err := send(v.conn, b, v.id, viewporterGetViewport); err != nil {
		return nil, err
	}
	return &Viewport{conn: v.conn, id: id, wlSurface: wlSurface}, nil
}

// Destroy destroys the viewporter. Existing viewports are unaffected.
func (v *Viewporter) Destroy() error {
	if err := send(v.conn, wire.NewMessageBuilder(), v.id, viewporterDestroy); err != nil {
		return err
	}
	v.conn.Objects().MarkDead(v.id)
	return nil
}

// Viewport wraps a wp_viewport attached to one wl_surface.
type Viewport struct {
	conn      *wlclient.Connection
	id        uint32
	wlSurface uint32
}

// ID returns the viewport's object id.
func (vp *Viewport) ID() uint32 { return vp.id }

// WlSurface returns the id of the surface this viewport crops.
func (vp *Viewport) WlSurface() uint32 { return vp.wlSurface }

// SetSource selects the source rectangle of the buffer, in buffer-local
// fractional coordinates. All -1 (wire value -256) unsets the source.
func (vp *Viewport) SetSource(x, y, width, height wire.Fixed) error {
	b := wire.NewMessageBuilder()
	b.FixedArg(x).FixedArg(y).FixedArg(width).FixedArg(height)
	return send(vp.conn, b, vp.id, viewportSetSource)
}

// SetDestination sets the surface size the source rectangle is scaled to.
// (-1, -1) unsets the destination.
func (vp *Viewport) SetDestination(width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(width).Int(height)
	return send(vp.conn, b, vp.id, viewportSetDestination)
}

// Destroy destroys the viewport; the surface reverts to its un-cropped
// state on the next commit.
func (vp *Viewport) Destroy() error {
	if err := send(vp.conn, wire.NewMessageBuilder(), vp.id, viewportDestroy); err != nil {
		return err
	}
	vp.conn.Objects().MarkDead(vp.id)
	return nil
}
