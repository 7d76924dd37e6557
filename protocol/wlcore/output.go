//go:build linux

package wlcore

import (
	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// wl_output opcodes (requests)
const (
	outputRelease wire.Opcode = 0 // release() [v3]
)

// wl_output event opcodes
const (
	outputEventGeometry wire.Opcode = 0 // geometry(x: int, y: int, physical_width: int, physical_height: int, subpixel: int, make: string, model: string, transform: int)
	outputEventMode     wire.Opcode = 1 // mode(flags: uint, width: int, height: int, refresh: int)
	outputEventDone     wire.Opcode = 2 // done() [v2]
	outputEventScale    wire.Opcode = 3 // scale(factor: int) [v2]
)

// wl_output.mode flag bits.
const (
	OutputModeCurrent   uint32 = 1 // mode is the output's current mode
	OutputModePreferred uint32 = 2 // mode is the output's preferred mode
)

func init() {
	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeOutput,
		Name:    "wl_output",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "release", Opcode: outputRelease, Since: 3, Destroy: true},
		},
		Events: []proto.EventDescriptor{
			{Name: "geometry", Opcode: outputEventGeometry, Args: []proto.ArgSpec{
				{Name: "x", Kind: wire.ArgInt},
				{Name: "y", Kind: wire.ArgInt},
				{Name: "physical_width", Kind: wire.ArgInt},
				{Name: "physical_height", Kind: wire.ArgInt},
				{Name: "subpixel", Kind: wire.ArgInt},
				{Name: "make", Kind: wire.ArgString},
				{Name: "model", Kind: wire.ArgString},
				{Name: "transform", Kind: wire.ArgInt},
			}},
			{Name: "mode", Opcode: outputEventMode, Args: []proto.ArgSpec{
				{Name: "flags", Kind: wire.ArgUint},
				{Name: "width", Kind: wire.ArgInt},
				{Name: "height", Kind: wire.ArgInt},
				{Name: "refresh", Kind: wire.ArgInt},
			}},
			{Name: "done", Opcode: outputEventDone, Since: 2},
			{Name: "scale", Opcode: outputEventScale, Since: 2, Args: []proto.ArgSpec{
				{Name: "factor", Kind: wire.ArgInt},
			}},
		},
	})
}

// OutputGeometry is the accumulated state from a wl_output.geometry event.
type OutputGeometry struct {
	X, Y                          int32
	PhysicalWidth, PhysicalHeight int32 // millimetres
	Subpixel                      int32
	Make, Model                   string
	Transform                     int32
}

// OutputMode is one display mode from a wl_output.mode event.
type OutputMode struct {
	Flags   uint32
	Width   int32
	Height  int32
	Refresh int32 // mHz
}

// Output wraps a wl_output global: one connected display. State arrives as
// a burst of geometry/mode/scale events terminated by done (v2+).
type Output struct {
	conn *wlclient.Connection
	id   uint32

	geometry OutputGeometry
	modes    []OutputMode
	scale    int32

	onDone func()
}

// BindOutput binds a wl_output global at version. Compositors may advertise
// several wl_output globals, one per display; bind each by its Global entry.
func BindOutput(conn *wlclient.Connection, reg *wlclient.Registry, g wlclient.Global, version uint32) (*Output, error) {
	id, _, err := reg.Bind(g, version)
	if err != nil {
		return nil, err
	}
	o := &Output{conn: conn, id: id, scale: 1}
	conn.RegisterDispatchable(id, o)
	return o, nil
}

// NewOutput wraps an already-bound wl_output object id.
func NewOutput(conn *wlclient.Connection, id uint32) *Output {
	return &Output{conn: conn, id: id, scale: 1}
}

// ID returns the output's object id.
func (o *Output) ID() uint32 { return o.id }

// Geometry returns the last reported geometry.
func (o *Output) Geometry() OutputGeometry { return o.geometry }

// Modes returns a copy of the advertised display modes.
func (o *Output) Modes() []OutputMode {
	out := make([]OutputMode, len(o.modes))
	copy(out, o.modes)
	return out
}

// Scale returns the output's integer scale factor (1 until a scale event
// arrives).
func (o *Output) Scale() int32 { return o.scale }

// SetDoneHandler registers a callback for the done event, which marks the
// end of a property burst (v2+).
func (o *Output) SetDoneHandler(h func()) { o.onDone = h }

// Release releases the output (v3+).
func (o *Output) Release() error {
	if err := send(o.conn, wire.NewMessageBuilder(), o.id, outputRelease); err != nil {
		return err
	}
	o.conn.Objects().MarkDead(o.id)
	o.conn.Unregister(o.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for wl_output events.
func (o *Output) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "geometry":
		var g OutputGeometry
		var err error
		if g.X, err = dec.Int32(); err != nil {
			return err
		}
		if g.Y, err = dec.Int32(); err != nil {
			return err
		}
		if g.PhysicalWidth, err = dec.Int32(); err != nil {
			return err
		}
		if g.PhysicalHeight, err = dec.Int32(); err != nil {
			return err
		}
		if g.Subpixel, err = dec.Int32(); err != nil {
			return err
		}
		if g.Make, err = dec.String(); err != nil {
			return err
		}
		if g.Model, err = dec.String(); err != nil {
			return err
		}
		if g.Transform, err = dec.Int32(); err != nil {
			return err
		}
		o.geometry = g
	case "mode":
		var m OutputMode
		var err error
		if m.Flags, err = dec.Uint32(); err != nil {
			return err
		}
		if m.Width, err = dec.Int32(); err != nil {
			return err
		}
		if m.Height, err = dec.Int32(); err != nil {
			return err
		}
		if m.Refresh, err = dec.Int32(); err != nil {
			return err
		}
		o.modes = append(o.modes, m)
	case "done":
		if o.onDone != nil {
			o.onDone()
		}
	case "scale":
		factor, err := dec.Int32()
		if err != nil {
			return err
		}
		o.scale = factor
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeOutput, Opcode: opcode}
	}
	return nil
}
