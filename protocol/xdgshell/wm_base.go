//go:build linux

package xdgshell

import (
	"fmt"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// WmBase wraps the xdg_wm_base global, the entry point of the xdg-shell
// family. It must answer the compositor's ping events; Dispatch does that
// automatically.
type WmBase struct {
	conn *wlclient.Connection
	id   uint32

	onPing func(serial uint32)
}

// BindWmBase binds the xdg_wm_base global at version.
func BindWmBase(conn *wlclient.Connection, reg *wlclient.Registry, version uint32) (*WmBase, error) {
	g, ok := reg.Find("xdg_wm_base")
	if !ok {
		return nil, fmt.Errorf("xdgshell: xdg_wm_base not advertised by the compositor")
	}
	if version > g.Version {
		return nil, fmt.Errorf("xdgshell: requested xdg_wm_base version %d, compositor advertises %d", version, g.Version)
	}
	id, _, err := reg.Bind(g, version)
	if err != nil {
		return nil, err
	}
	w := NewWmBase(conn, id)
	conn.RegisterDispatchable(id, w)
	return w, nil
}

// NewWmBase wraps an already-bound xdg_wm_base object id.
func NewWmBase(conn *wlclient.Connection, id uint32) *WmBase {
	return &WmBase{conn: conn, id: id}
}

// ID returns the wm_base's object id.
func (w *WmBase) ID() uint32 { return w.id }

// CreatePositioner creates an xdg_positioner for popup placement.
func (w *WmBase) CreatePositioner() (*Positioner, error) {
	id := w.conn.AllocateChild(proto.TypeXdgPositioner)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(w.conn, b, w.id, wmBaseCreatePositioner); err != nil {
		return nil, err
	}
	return &Positioner{conn: w.conn, id: id}, nil
}

// GetXdgSurface wraps a wl_surface id in an xdg_surface, the basis for
// toplevels and popups.
func (w *WmBase) GetXdgSurface(wlSurface uint32) (*Surface, error) {
	id := w.conn.AllocateChild(proto.TypeXdgSurface)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	b.Object("surface", wlSurface)
	if err := send(w.conn, b, w.id, wmBaseGetXdgSurface); err != nil {
		return nil, err
	}
	s := &Surface{conn: w.conn, id: id, wlSurface: wlSurface}
	w.conn.RegisterDispatchable(id, s)
	return s, nil
}

// Pong answers a ping. Dispatch already does this for every ping received;
// calling it again is harmless.
func (w *WmBase) Pong(serial uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(serial)
	return send(w.conn, b, w.id, wmBasePong)
}

// SetPingHandler registers a callback invoked after the automatic pong.
func (w *WmBase) SetPingHandler(h func(serial uint32)) { w.onPing = h }

// Destroy destroys the wm_base. All child xdg_surfaces must already be
// destroyed.
func (w *WmBase) Destroy() error {
	if err := send(w.conn, wire.NewMessageBuilder(), w.id, wmBaseDestroy); err != nil {
		return err
	}
	w.conn.Objects().MarkDead(w.id)
	w.conn.Unregister(w.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for xdg_wm_base events. Pings
// are answered immediately so a busy application never appears hung to the
// compositor.
func (w *WmBase) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	if ev.Name != "ping" {
		return &proto.UnknownOpcodeError{Type: proto.TypeXdgWmBase, Opcode: opcode}
	}
	serial, err := dec.Uint32()
	if err != nil {
		return err
	}
	if err := w.Pong(serial); err != nil {
		return fmt.Errorf("xdgshell: pong: %w", err)
	}
	if w.onPing != nil {
		w.onPing(serial)
	}
	return nil
}

// Positioner wraps an xdg_positioner: the placement rules for a popup
// relative to its parent. Positioners have no events.
type Positioner struct {
	conn *wlclient.Connection
	id   uint32
}

// ID returns the positioner's object id.
func (p *Positioner) ID() uint32 { return p.id }

// SetSize sets the size of the popup being positioned.
func (p *Positioner) SetSize(width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(width).Int(height)
	return send(p.conn, b, p.id, positionerSetSize)
}

// SetAnchorRect sets the parent-surface rectangle the popup anchors to.
func (p *Positioner) SetAnchorRect(x, y, width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(x).Int(y).Int(width).Int(height)
	return send(p.conn, b, p.id, positionerSetAnchorRect)
}

// SetAnchor sets the anchor point on the anchor rectangle.
func (p *Positioner) SetAnchor(anchor uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(anchor)
	return send(p.conn, b, p.id, positionerSetAnchor)
}

// SetGravity sets the direction the popup grows from its anchor.
func (p *Positioner) SetGravity(gravity uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(gravity)
	return send(p.conn, b, p.id, positionerSetGravity)
}

// SetConstraintAdjustment sets how the compositor may move or resize the
// popup when it would be constrained (see ConstraintAdjustmentMembers).
func (p *Positioner) SetConstraintAdjustment(adjustment uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(adjustment)
	return send(p.conn, b, p.id, positionerSetConstraintAdjust)
}

// SetOffset offsets the popup from its computed position.
func (p *Positioner) SetOffset(x, y int32) error {
	b := wire.NewMessageBuilder()
	b.Int(x).Int(y)
	return send(p.conn, b, p.id, positionerSetOffset)
}

// SetReactive marks the popup for repositioning when the parent moves (v3+).
func (p *Positioner) SetReactive() error {
	return send(p.conn, wire.NewMessageBuilder(), p.id, positionerSetReactive)
}

// SetParentSize tells the compositor the parent size this positioner was
// computed against (v3+).
func (p *Positioner) SetParentSize(width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(width).Int(height)
	return send(p.conn, b, p.id, positionerSetParentSize)
}

// SetParentConfigure ties the positioner to a parent configure serial (v3+).
func (p *Positioner) SetParentConfigure(serial uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(serial)
	return send(p.conn, b, p.id, positionerSetParentConfigure)
}

// Destroy destroys the positioner.
func (p *Positioner) Destroy() error {
	if err := send(p.conn, wire.NewMessageBuilder(), p.id, positionerDestroy); err != nil {
		return err
	}
	p.conn.Objects().MarkDead(p.id)
	return nil
}
