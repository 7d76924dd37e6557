//go:build linux

package xdgshell

import (
	"encoding/binary"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// Surface wraps an xdg_surface: a wl_surface lifted into the xdg-shell
// world, waiting to be given a toplevel or popup role.
type Surface struct {
	conn      *wlclient.Connection
	id        uint32
	wlSurface uint32

	configured    bool
	pendingSerial uint32

	onConfigure func(serial uint32)
}

// ID returns the xdg_surface's object id.
func (s *Surface) ID() uint32 { return s.id }

// WlSurface returns the id of the underlying wl_surface.
func (s *Surface) WlSurface() uint32 { return s.wlSurface }

// IsConfigured reports whether at least one configure event has arrived.
// The surface must not be committed with a buffer before then.
func (s *Surface) IsConfigured() bool { return s.configured }

// GetToplevel gives the surface a toplevel (regular window) role.
func (s *Surface) GetToplevel() (*Toplevel, error) {
	id := s.conn.AllocateChild(proto.TypeXdgToplevel)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(s.conn, b, s.id, surfaceGetToplevel); err != nil {
		return nil, err
	}
	t := &Toplevel{conn: s.conn, id: id, surface: s}
	s.conn.RegisterDispatchable(id, t)
	return t, nil
}

// GetPopup gives the surface a popup role positioned by positioner. parent
// may be nil for popups parented through other means (e.g. a layer
// surface's get_popup).
func (s *Surface) GetPopup(parent *Surface, positioner *Positioner) (*Popup, error) {
	id := s.conn.AllocateChild(proto.TypeXdgPopup)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if parent != nil {
		b.MaybeObject(parent.ID())
	} else {
		b.MaybeObject(0)
	}
	b.Object("positioner", positioner.ID())
	if err := send(s.conn, b, s.id, surfaceGetPopup); err != nil {
		return nil, err
	}
	p := &Popup{conn: s.conn, id: id, surface: s}
	s.conn.RegisterDispatchable(id, p)
	return p, nil
}

// SetWindowGeometry declares the visible window bounds, excluding shadows
// and other decoration.
func (s *Surface) SetWindowGeometry(x, y, width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(x).Int(y).Int(width).Int(height)
	return send(s.conn, b, s.id, surfaceSetWindowGeometry)
}

// AckConfigure acknowledges the configure event carrying serial. Must be
// sent before the next commit that reflects the configured state.
func (s *Surface) AckConfigure(serial uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(serial)
	return send(s.conn, b, s.id, surfaceAckConfigure)
}

// SetConfigureHandler registers a callback for configure events. The
// handler is expected to apply pending state and call AckConfigure.
func (s *Surface) SetConfigureHandler(h func(serial uint32)) { s.onConfigure = h }

// Destroy destroys the xdg_surface (not the underlying wl_surface).
func (s *Surface) Destroy() error {
	if err := send(s.conn, wire.NewMessageBuilder(), s.id, surfaceDestroy); err != nil {
		return err
	}
	s.conn.Objects().MarkDead(s.id)
	s.conn.Unregister(s.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for xdg_surface events.
func (s *Surface) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	if ev.Name != "configure" {
		return &proto.UnknownOpcodeError{Type: proto.TypeXdgSurface, Opcode: opcode}
	}
	serial, err := dec.Uint32()
	if err != nil {
		return err
	}
	s.pendingSerial = serial
	s.configured = true
	if s.onConfigure != nil {
		s.onConfigure(serial)
	}
	return nil
}

// ToplevelConfig is the decoded state of an xdg_toplevel.configure event.
// Width/Height of 0 leave the dimension to the client.
type ToplevelConfig struct {
	Width  int32
	Height int32
	States []ToplevelState

	Maximized  bool
	Fullscreen bool
	Resizing   bool
	Activated  bool
}

func (c *ToplevelConfig) applyStates() {
	for _, st := range c.States {
		switch st {
		case StateMaximized:
			c.Maximized = true
		case StateFullscreen:
			c.Fullscreen = true
		case StateResizing:
			c.Resizing = true
		case StateActivated:
			c.Activated = true
		}
	}
}

// Toplevel wraps an xdg_toplevel: a regular desktop window.
type Toplevel struct {
	conn    *wlclient.Connection
	id      uint32
	surface *Surface

	title string
	appID string

	onConfigure func(cfg *ToplevelConfig)
	onClose     func()
}

// ID returns the toplevel's object id.
func (t *Toplevel) ID() uint32 { return t.id }

// Surface returns the parent xdg_surface.
func (t *Toplevel) Surface() *Surface { return t.surface }

// SetTitle sets the window title.
func (t *Toplevel) SetTitle(title string) error {
	b := wire.NewMessageBuilder()
	b.Str(title)
	if err := send(t.conn, b, t.id, toplevelSetTitle); err != nil {
		return err
	}
	t.title = title
	return nil
}

// Title returns the last title set.
func (t *Toplevel) Title() string { return t.title }

// SetAppID sets the application id used for desktop integration; it should
// match the application's .desktop file name.
func (t *Toplevel) SetAppID(appID string) error {
	b := wire.NewMessageBuilder()
	b.Str(appID)
	if err := send(t.conn, b, t.id, toplevelSetAppID); err != nil {
		return err
	}
	t.appID = appID
	return nil
}

// AppID returns the last application id set.
func (t *Toplevel) AppID() string { return t.appID }

// SetParent makes this window a child of parent (dialog semantics); 0
// clears the parent.
func (t *Toplevel) SetParent(parent uint32) error {
	b := wire.NewMessageBuilder()
	b.MaybeObject(parent)
	return send(t.conn, b, t.id, toplevelSetParent)
}

// ShowWindowMenu asks the compositor to show the window menu at (x, y).
func (t *Toplevel) ShowWindowMenu(seat uint32, serial uint32, x, y int32) error {
	b := wire.NewMessageBuilder()
	b.Object("seat", seat)
	b.Uint(serial).Int(x).Int(y)
	return send(t.conn, b, t.id, toplevelShowWindowMenu)
}

// Move starts an interactive move, justified by the input event serial.
func (t *Toplevel) Move(seat uint32, serial uint32) error {
	b := wire.NewMessageBuilder()
	b.Object("seat", seat)
	b.Uint(serial)
	return send(t.conn, b, t.id, toplevelMove)
}

// Resize starts an interactive resize from the given edge(s).
func (t *Toplevel) Resize(seat uint32, serial uint32, edges uint32) error {
	b := wire.NewMessageBuilder()
	b.Object("seat", seat)
	b.Uint(serial).Uint(edges)
	return send(t.conn, b, t.id, toplevelResize)
}

// SetMaxSize caps the window size; 0 means unlimited in that dimension.
func (t *Toplevel) SetMaxSize(width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(width).Int(height)
	return send(t.conn, b, t.id, toplevelSetMaxSize)
}

// SetMinSize floors the window size; 0 means no minimum in that dimension.
func (t *Toplevel) SetMinSize(width, height int32) error {
	b := wire.NewMessageBuilder()
	b.Int(width).Int(height)
	return send(t.conn, b, t.id, toplevelSetMinSize)
}

// SetMaximized asks the compositor to maximize the window.
func (t *Toplevel) SetMaximized() error {
	return send(t.conn, wire.NewMessageBuilder(), t.id, toplevelSetMaximized)
}

// UnsetMaximized asks the compositor to leave the maximized state.
func (t *Toplevel) UnsetMaximized() error {
	return send(t.conn, wire.NewMessageBuilder(), t.id, toplevelUnsetMaximized)
}

// SetFullscreen asks for fullscreen on output (0 lets the compositor pick).
func (t *Toplevel) SetFullscreen(output uint32) error {
	b := wire.NewMessageBuilder()
	b.MaybeObject(output)
	return send(t.conn, b, t.id, toplevelSetFullscreen)
}

// UnsetFullscreen asks the compositor to leave fullscreen.
func (t *Toplevel) UnsetFullscreen() error {
	return send(t.conn, wire.NewMessageBuilder(), t.id, toplevelUnsetFullscreen)
}

// SetMinimized asks the compositor to minimize the window.
func (t *Toplevel) SetMinimized() error {
	return send(t.conn, wire.NewMessageBuilder(), t.id, toplevelSetMinimized)
}

// SetConfigureHandler registers a callback for decoded configure events.
func (t *Toplevel) SetConfigureHandler(h func(cfg *ToplevelConfig)) { t.onConfigure = h }

// SetCloseHandler registers a callback for the compositor's close request.
func (t *Toplevel) SetCloseHandler(h func()) { t.onClose = h }

// Destroy removes the toplevel role from the surface.
func (t *Toplevel) Destroy() error {
	if err := send(t.conn, wire.NewMessageBuilder(), t.id, toplevelDestroy); err != nil {
		return err
	}
	t.conn.Objects().MarkDead(t.id)
	t.conn.Unregister(t.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for xdg_toplevel events.
func (t *Toplevel) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "configure":
		width, err := dec.Int32()
		if err != nil {
			return err
		}
		height, err := dec.Int32()
		if err != nil {
			return err
		}
		raw, err := dec.Array()
		if err != nil {
			return err
		}
		cfg := &ToplevelConfig{Width: width, Height: height}
		for i := 0; i+4 <= len(raw); i += 4 {
			// States the compositor knows but this module doesn't are
			// carried through untyped rather than dropped.
			cfg.States = append(cfg.States, ToplevelState(binary.LittleEndian.Uint32(raw[i:])))
		}
		cfg.applyStates()
		if t.onConfigure != nil {
			t.onConfigure(cfg)
		}
	case "close":
		if t.onClose != nil {
			t.onClose()
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeXdgToplevel, Opcode: opcode}
	}
	return nil
}

// Popup wraps an xdg_popup: a transient surface for menus and tooltips.
type Popup struct {
	conn    *wlclient.Connection
	id      uint32
	surface *Surface

	onConfigure    func(x, y, width, height int32)
	onPopupDone    func()
	onRepositioned func(token uint32)
}

// ID returns the popup's object id.
func (p *Popup) ID() uint32 { return p.id }

// Surface returns the parent xdg_surface.
func (p *Popup) Surface() *Surface { return p.surface }

// Grab makes the popup an explicit grab, dismissed when the user clicks
// elsewhere. The serial must come from the triggering input event.
func (p *Popup) Grab(seat uint32, serial uint32) error {
	b := wire.NewMessageBuilder()
	b.Object("seat", seat)
	b.Uint(serial)
	return send(p.conn, b, p.id, popupGrab)
}

// Reposition moves the popup using a new positioner (v3+).
func (p *Popup) Reposition(positioner *Positioner, token uint32) error {
	b := wire.NewMessageBuilder()
	b.Object("positioner", positioner.ID())
	b.Uint(token)
	return send(p.conn, b, p.id, popupReposition)
}

// SetConfigureHandler registers a callback for the popup's position/size.
func (p *Popup) SetConfigureHandler(h func(x, y, width, height int32)) { p.onConfigure = h }

// SetPopupDoneHandler registers a callback for the popup being dismissed.
func (p *Popup) SetPopupDoneHandler(h func()) { p.onPopupDone = h }

// SetRepositionedHandler registers a callback for reposition completion (v3+).
func (p *Popup) SetRepositionedHandler(h func(token uint32)) { p.onRepositioned = h }

// Destroy removes the popup role from the surface.
func (p *Popup) Destroy() error {
	if err := send(p.conn, wire.NewMessageBuilder(), p.id, popupDestroy); err != nil {
		return err
	}
	p.conn.Objects().MarkDead(p.id)
	p.conn.Unregister(p.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for xdg_popup events.
func (p *Popup) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "configure":
		x, err := dec.Int32()
		if err != nil {
			return err
		}
		y, err := dec.Int32()
		if err != nil {
			return err
		}
		width, err := dec.Int32()
		if err != nil {
			return err
		}
		height, err := dec.Int32()
		if err != nil {
			return err
		}
		if p.onConfigure != nil {
			p.onConfigure(x, y, width, height)
		}
	case "popup_done":
		if p.onPopupDone != nil {
			p.onPopupDone()
		}
	case "repositioned":
		token, err := dec.Uint32()
		if err != nil {
			return err
		}
		if p.onRepositioned != nil {
			p.onRepositioned(token)
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeXdgPopup, Opcode: opcode}
	}
	return nil
}
