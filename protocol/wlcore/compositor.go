//go:build linux

package wlcore

import (
	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// wl_compositor opcodes (requests)
const (
	compositorCreateSurface wire.Opcode = 0 // create_surface(id: new_id<wl_surface>)
	compositorCreateRegion  wire.Opcode = 1 // create_region(id: new_id<wl_region>)
)

// wl_surface opcodes (requests)
const (
	surfaceDestroy            wire.Opcode = 0 // destroy()
	surfaceAttach             wire.Opcode = 1 // attach(buffer: object<wl_buffer>?, x: int, y: int)
	surfaceDamage             wire.Opcode = 2 // damage(x: int, y: int, width: int, height: int)
	surfaceFrame              wire.Opcode = 3 // frame(callback: new_id<wl_callback>)
	surfaceSetOpaqueRegion    wire.Opcode = 4 // set_opaque_region(region: object<wl_region>?)
	surfaceSetInputRegion     wire.Opcode = 5 // set_input_region(region: object<wl_region>?)
	surfaceCommit             wire.Opcode = 6 // commit()
	surfaceSetBufferTransform wire.Opcode = 7 // set_buffer_transform(transform: int) [v2]
	surfaceSetBufferScale     wire.Opcode = 8 // set_buffer_scale(scale: int) [v3]
	surfaceDamageBuffer       wire.Opcode = 9 // damage_buffer(x: int, y: int, width: int, height: int) [v4]
)

// wl_surface event opcodes
const (
	surfaceEventEnter wire.Opcode = 0 // enter(output: object<wl_output>)
	surfaceEventLeave wire.Opcode = 1 // leave(output: object<wl_output>)
)

// wl_region opcodes (requests)
const (
	regionDestroy  wire.Opcode = 0 // destroy()
	regionAdd      wire.Opcode = 1 // add(x: int, y: int, width: int, height: int)
	regionSubtract wire.Opcode = 2 // subtract(x: int, y: int, width: int, height: int)
)

// wl_subcompositor opcodes (requests)
const (
	subcompositorDestroy       wire.Opcode = 0 // destroy()
	subcompositorGetSubsurface wire.Opcode = 1 // get_subsurface(id: new_id<wl_subsurface>, surface: object, parent: object)
)

// wl_subsurface opcodes (requests)
const (
	subsurfaceDestroy     wire.Opcode = 0 // destroy()
	subsurfaceSetPosition wire.Opcode = 1 // set_position(x: int, y: int)
	subsurfacePlaceAbove  wire.Opcode = 2 // place_above(sibling: object<wl_surface>)
	subsurfacePlaceBelow  wire.Opcode = 3 // place_below(sibling: object<wl_surface>)
	subsurfaceSetSync     wire.Opcode = 4 // set_sync()
	subsurfaceSetDesync   wire.Opcode = 5 // set_desync()
)

func init() {
	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeCompositor,
		Name:    "wl_compositor",
		Version: 4,
		Requests: []proto.RequestDescriptor{
			{Name: "create_surface", Opcode: compositorCreateSurface, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeSurface},
			}},
			{Name: "create_region", Opcode: compositorCreateRegion, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeRegion},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeSurface,
		Name:    "wl_surface",
		Version: 4,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: surfaceDestroy, Destroy: true},
			{Name: "attach", Opcode: surfaceAttach, Args: []proto.ArgSpec{
				{Name: "buffer", Kind: wire.ArgObject, Nullable: true},
				{Name: "x", Kind: wire.ArgInt},
				{Name: "y", Kind: wire.ArgInt},
			}},
			{Name: "damage", Opcode: surfaceDamage, Args: rectArgs()},
			{Name: "frame", Opcode: surfaceFrame, Args: []proto.ArgSpec{
				{Name: "callback", Kind: wire.ArgNewID, NewType: proto.TypeCallback},
			}},
			{Name: "set_opaque_region", Opcode: surfaceSetOpaqueRegion, Args: []proto.ArgSpec{
				{Name: "region", Kind: wire.ArgObject, Nullable: true},
			}},
			{Name: "set_input_region", Opcode: surfaceSetInputRegion, Args: []proto.ArgSpec{
				{Name: "region", Kind: wire.ArgObject, Nullable: true},
			}},
			{Name: "commit", Opcode: surfaceCommit},
			{Name: "set_buffer_transform", Opcode: surfaceSetBufferTransform, Since: 2, Args: []proto.ArgSpec{
				{Name: "transform", Kind: wire.ArgInt},
			}},
			{Name: "set_buffer_scale", Opcode: surfaceSetBufferScale, Since: 3, Args: []proto.ArgSpec{
				{Name: "scale", Kind: wire.ArgInt},
			}},
			{Name: "damage_buffer", Opcode: surfaceDamageBuffer, Since: 4, Args: rectArgs()},
		},
		Events: []proto.EventDescriptor{
			{Name: "enter", Opcode: surfaceEventEnter, Args: []proto.ArgSpec{
				{Name: "output", Kind: wire.ArgObject},
			}},
			{Name: "leave", Opcode: surfaceEventLeave, Args: []proto.ArgSpec{
				{Name: "output", Kind: wire.ArgObject},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeRegion,
		Name:    "wl_region",
		Version: 1,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: regionDestroy, Destroy: true},
			{Name: "add", Opcode: regionAdd, Args: rectArgs()},
			{Name: "subtract", Opcode: regionSubtract, Args: rectArgs()},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeSubcompositor,
		Name:    "wl_subcompositor",
		Version: 1,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: subcompositorDestroy, Destroy: true},
			{Name: "get_subsurface", Opcode: subcompositorGetSubsurface, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeSubsurface},
				{Name: "surface", Kind: wire.ArgObject},
				{Name: "parent", Kind: wire.ArgObject},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeSubsurface,
		Name:    "wl_subsurface",
		Version: 1,
		Requests: []proto.RequestDescriptor{
			{Name: "destroy", Opcode: subsurfaceDestroy, Destroy: true},
			{Name: "set_position", Opcode: subsurfaceSetPosition, Args: []proto.ArgSpec{
				{Name: "x", Kind: wire.ArgInt},
				{Name: "y", Kind: wire.ArgInt},
			}},
			{Name: "place_above", Opcode: subsurfacePlaceAbove, Args: []proto.ArgSpec{
				{Name: "sibling", Kind: wire.ArgObject},
			}},
			{Name: "place_below", Opcode: subsurfacePlaceBelow, Args: []proto.ArgSpec{
				{Name: "sibling", Kind: wire.ArgObject},
			}},
			{Name: "set_sync", Opcode: subsurfaceSetSync},
			{Name: "set_desync", Opcode: subsurfaceSetDesync},
		},
	})
}

// rectArgs is the (x, y, width, height) int quadruple shared by damage,
// region, and geometry requests.
func rectArgs() []proto.ArgSpec {
	return []proto.ArgSpec{
		{Name: "x", Kind: wire.ArgInt},
		{Name: "y", Kind: wire.ArgInt},
		{Name: "width", Kind: wire.ArgInt},
		{Name: "height", Kind: wire.ArgInt},
	}
}

// Compositor wraps a bound wl_compositor global. It creates surfaces and
// regions; it has no events of its own.
type Compositor struct {
	conn *wlclient.Connection
	id   uint32
}

// BindCompositor binds the wl_compositor global at version.
func BindCompositor(conn *wlclient.Connection, reg *wlclient.Registry, version uint32) (*Compositor, error) {
	id, err := bindGlobal(reg, "wl_compositor", version)
	if err != nil {
		return nil, err
	}
	return NewCompositor(conn, id), nil
}

// NewCompositor wraps an already-bound wl_compositor object id.
func NewCompositor(conn *wlclient.Connection, id uint32) *Compositor {
	return &Compositor{conn: conn, id: id}
}

// ID returns the compositor's object id.
func (c *Compositor) ID() uint32 { return c.id }

// CreateSurface creates a new wl_surface.
func (c *Compositor) CreateSurface() (*Surface, error) {
	id := c.conn.AllocateChild(proto.TypeSurface)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(c.conn, b, c.id, compositorCreateSurface); err != nil {
		return nil, err
	}
	s := &Surface{conn: c.conn, id: id}
	c.conn.RegisterDispatchable(id, s)
	return s, nil
}

// CreateRegion creates a new wl_region.
func (c *Compositor) CreateRegion() (*Region, error) {
	id := c.conn.AllocateChild(proto.TypeRegion)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(c.conn, b, c.id, compositorCreateRegion); err != nil {
		return nil, err
	}
	return &Region{conn: c.conn, id: id}, nil
}

// Surface wraps a wl_surface: the rectangular content area windows, popups,
// and subsurfaces are built from.
type Surface struct {
	conn *wlclient.Connection
	id   uint32

	onEnter func(outputID uint32)
	onLeave func(outputID uint32)
}

// NewSurface wraps an existing wl_surface object id.
func NewSurface(conn *wlclient.Connection, id uint32) *Surface {
	return &Surface{conn: conn, id: id}
}

// ID returns the surface's object id.
func (s *Surface) ID() uint32 { return s.id }

// Attach attaches buffer at offset (x, y). Passing buffer 0 unmaps the
// surface on the next commit.
func (s *Surface) Attach(buffer uint32, x, y int32) error {
	b := wire.NewMessageBuilder()
	b.MaybeObject(buffer).Int(x).Int(y)
	return send(s.conn, b, s.id, surfaceAttach)
}

// Damage marks a surface-coordinate rectangle as needing repaint.
func (s *Surface) Damage(x, y, width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(x).Int(y).Int(width).Int(height)
	return send(s.conn, b, s.id, surfaceDamage)
}

// DamageBuffer marks a buffer-coordinate rectangle as needing repaint (v4+).
func (s *Surface) DamageBuffer(x, y, width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(x).Int(y).Int(width).Int(height)
	return send(s.conn, b, s.id, surfaceDamageBuffer)
}

// Frame requests a frame callback. done is invoked with the callback data
// (a timestamp in milliseconds) when the compositor says it is a good time
// to draw the next frame.
func (s *Surface) Frame(done func(data uint32)) error {
	id := s.conn.AllocateChild(proto.TypeCallback)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(s.conn, b, s.id, surfaceFrame); err != nil {
		return err
	}
	s.conn.RegisterDispatchable(id, wlclient.DispatchFunc(func(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
		data, err := dec.Uint32()
		if err != nil {
			return err
		}
		conn.Unregister(id)
		if done != nil {
			done(data)
		}
		return nil
	}))
	return nil
}

// SetOpaqueRegion declares region fully opaque; 0 unsets it.
func (s *Surface) SetOpaqueRegion(region uint32) error {
	b := wire.NewMessageBuilder()
	b.MaybeObject(region)
	return send(s.conn, b, s.id, surfaceSetOpaqueRegion)
}

// SetInputRegion restricts input delivery to region; 0 accepts input on the
// whole surface.
func (s *Surface) SetInputRegion(region uint32) error {
	b := wire.NewMessageBuilder()
	b.MaybeObject(region)
	return send(s.conn, b, s.id, surfaceSetInputRegion)
}

// Commit atomically applies all pending surface state.
func (s *Surface) Commit() error {
	return send(s.conn, wire.NewMessageBuilder(), s.id, surfaceCommit)
}

// SetBufferTransform sets the buffer rotation/flip (v2+).
func (s *Surface) SetBufferTransform(transform int32) error {
	b := wire.NewMessageBuilder()
	b.Int(transform)
	return send(s.conn, b, s.id, surfaceSetBufferTransform)
}

// SetBufferScale sets the HiDPI buffer scale factor (v3+).
func (s *Surface) SetBufferScale(scale int32) error {
	b := wire.NewMessageBuilder()
	b.Int(scale)
	return send(s.conn, b, s.id, surfaceSetBufferScale)
}

// Destroy destroys the surface. The id stays in the table's zombie set until
// the server confirms with delete_id.
func (s *Surface) Destroy() error {
	if err := send(s.conn, wire.NewMessageBuilder(), s.id, surfaceDestroy); err != nil {
		return err
	}
	s.conn.Objects().MarkDead(s.id)
	s.conn.Unregister(s.id)
	return nil
}

// SetEnterHandler registers a callback for the surface entering an output.
func (s *Surface) SetEnterHandler(h func(outputID uint32)) { s.onEnter = h }

// SetLeaveHandler registers a callback for the surface leaving an output.
func (s *Surface) SetLeaveHandler(h func(outputID uint32)) { s.onLeave = h }

// Dispatch implements wlclient.Dispatchable for wl_surface events.
func (s *Surface) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "enter":
		outputID, err := dec.Object()
		if err != nil {
			return err
		}
		if s.onEnter != nil {
			s.onEnter(outputID)
		}
		return nil
	case "leave":
		outputID, err := dec.Object()
		if err != nil {
			return err
		}
		if s.onLeave != nil {
			s.onLeave(outputID)
		}
		return nil
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeSurface, Opcode: opcode}
	}
}

// Region wraps a wl_region, an accumulated set of rectangles used for
// opaque and input regions. Regions have no events.
type Region struct {
	conn *wlclient.Connection
	id   uint32
}

// NewRegion wraps an existing wl_region object id.
func NewRegion(conn *wlclient.Connection, id uint32) *Region {
	return &Region{conn: conn, id: id}
}

// ID returns the region's object id.
func (r *Region) ID() uint32 { return r.id }

// Add adds a rectangle to the region.
func (r *Region) Add(x, y, width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(x).Int(y).Int(width).Int(height)
	return send(r.conn, b, r.id, regionAdd)
}

// Subtract removes a rectangle from the region.
func (r *Region) Subtract(x, y, width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(x).Int(y).Int(width).Int(height)
	return send(r.conn, b, r.id, regionSubtract)
}

// Destroy destroys the region.
func (r *Region) Destroy() error {
	if err := send(r.conn, wire.NewMessageBuilder(), r.id, regionDestroy); err != nil {
		return err
	}
	r.conn.Objects().MarkDead(r.id)
	return nil
}

// Subcompositor wraps the wl_subcompositor global, which turns surfaces
// into subsurfaces of a parent.
type Subcompositor struct {
	conn *wlclient.Connection
	id   uint32
}

// BindSubcompositor binds the wl_subcompositor global at version.
func BindSubcompositor(conn *wlclient.Connection, reg *wlclient.Registry, version uint32) (*Subcompositor, error) {
	id, err := bindGlobal(reg, "wl_subcompositor", version)
	if err != nil {
		return nil, err
	}
	return &Subcompositor{conn: conn, id: id}, nil
}

// ID returns the subcompositor's object id.
func (sc *Subcompositor) ID() uint32 { return sc.id }

// GetSubsurface gives surface a subsurface role under parent.
func (sc *Subcompositor) GetSubsurface(surface, parent *Surface) (*Subsurface, error) {
	id := sc.conn.AllocateChild(proto.TypeSubsurface)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	b.Object("surface", surface.ID())
	b.Object("parent", parent.ID())
	if err := send(sc.conn, b, sc.id, subcompositorGetSubsurface); err != nil {
		return nil, err
	}
	return &Subsurface{conn: sc.conn, id: id, surface: surface}, nil
}

// Destroy destroys the subcompositor object. Existing subsurfaces keep
// their role.
func (sc *Subcompositor) Destroy() error {
	if err := send(sc.conn, wire.NewMessageBuilder(), sc.id, subcompositorDestroy); err != nil {
		return err
	}
	sc.conn.Objects().MarkDead(sc.id)
	return nil
}

// Subsurface wraps a wl_subsurface role object. Subsurfaces have no events.
type Subsurface struct {
	conn    *wlclient.Connection
	id      uint32
	surface *Surface
}

// ID returns the subsurface's object id.
func (ss *Subsurface) ID() uint32 { return ss.id }

// Surface returns the wl_surface this role is attached to.
func (ss *Subsurface) Surface() *Surface { return ss.surface }

// SetPosition schedules a position change relative to the parent surface.
func (ss *Subsurface) SetPosition(x, y int32) error {
	b := wire.NewMessageBuilder()
	b.Int(x).Int(y)
	return send(ss.conn, b, ss.id, subsurfaceSetPosition)
}

// PlaceAbove restacks the subsurface above sibling.
func (ss *Subsurface) PlaceAbove(sibling uint32) error {
	b := wire.NewMessageBuilder()
	b.Object("sibling", sibling)
	return send(ss.conn, b, ss.id, subsurfacePlaceAbove)
}

// PlaceBelow restacks the subsurface below sibling.
func (ss *Subsurface) PlaceBelow(sibling uint32) error {
	b := wire.NewMessageBuilder()
	b.Object("sibling", sibling)
	return send(ss.conn, b, ss.id, subsurfacePlaceBelow)
}

// SetSync makes commits on this subsurface wait for the parent's commit.
func (ss *Subsurface) SetSync() error {
	return send(ss.conn, wire.NewMessageBuilder(), ss.id, subsurfaceSetSync)
}

// SetDesync makes commits on this subsurface apply immediately.
func (ss *Subsurface) SetDesync() error {
	return send(ss.conn, wire.NewMessageBuilder(), ss.id, subsurfaceSetDesync)
}

// Destroy removes the subsurface role.
func (ss *Subsurface) Destroy() error {
	if err := send(ss.conn, wire.NewMessageBuilder(), ss.id, subsurfaceDestroy); err != nil {
		return err
	}
	ss.conn.Objects().MarkDead(ss.id)
	return nil
}
