//go:build linux

package wlcore

import (
	"encoding/binary"

	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// wl_seat capability bits.
const (
	SeatCapabilityPointer  uint32 = 1 // seat has pointer devices
	SeatCapabilityKeyboard uint32 = 2 // seat has keyboard devices
	SeatCapabilityTouch    uint32 = 4 // seat has touch devices
)

// SeatCapabilityMembers is the member table for the wl_seat.capability
// bitfield enum, for proto.Bitflag String/Parse round trips.
var SeatCapabilityMembers = []proto.BitflagMember{
	{Name: "pointer", Bit: SeatCapabilityPointer},
	{Name: "keyboard", Bit: SeatCapabilityKeyboard},
	{Name: "touch", Bit: SeatCapabilityTouch},
}

// NewSeatCapabilities wraps a raw capability mask as a typed bitset.
func NewSeatCapabilities(value uint32) proto.Bitflag {
	return proto.NewBitflag(value, SeatCapabilityMembers)
}

// wl_seat opcodes (requests)
const (
	seatGetPointer  wire.Opcode = 0 // get_pointer(id: new_id<wl_pointer>)
	seatGetKeyboard wire.Opcode = 1 // get_keyboard(id: new_id<wl_keyboard>)
	seatGetTouch    wire.Opcode = 2 // get_touch(id: new_id<wl_touch>)
	seatRelease     wire.Opcode = 3 // release() [v5]
)

// wl_seat event opcodes
const (
	seatEventCapabilities wire.Opcode = 0 // capabilities(capabilities: uint)
	seatEventName         wire.Opcode = 1 // name(name: string) [v2]
)

// wl_pointer opcodes (requests)
const (
	pointerSetCursor wire.Opcode = 0 // set_cursor(serial: uint, surface: object?, hotspot_x: int, hotspot_y: int)
	pointerRelease   wire.Opcode = 1 // release() [v3]
)

// wl_pointer event opcodes
const (
	pointerEventEnter        wire.Opcode = 0 // enter(serial: uint, surface: object, surface_x: fixed, surface_y: fixed)
	pointerEventLeave        wire.Opcode = 1 // leave(serial: uint, surface: object)
	pointerEventMotion       wire.Opcode = 2 // motion(time: uint, surface_x: fixed, surface_y: fixed)
	pointerEventButton       wire.Opcode = 3 // button(serial: uint, time: uint, button: uint, state: uint)
	pointerEventAxis         wire.Opcode = 4 // axis(time: uint, axis: uint, value: fixed)
	pointerEventFrame        wire.Opcode = 5 // frame() [v5]
	pointerEventAxisSource   wire.Opcode = 6 // axis_source(axis_source: uint) [v5]
	pointerEventAxisStop     wire.Opcode = 7 // axis_stop(time: uint, axis: uint) [v5]
	pointerEventAxisDiscrete wire.Opcode = 8 // axis_discrete(axis: uint, discrete: int) [v5]
)

// wl_pointer.button_state values.
const (
	PointerButtonStateReleased uint32 = 0
	PointerButtonStatePressed  uint32 = 1
)

// wl_pointer.axis values.
const (
	PointerAxisVerticalScroll   uint32 = 0
	PointerAxisHorizontalScroll uint32 = 1
)

// wl_pointer.axis_source values.
const (
	PointerAxisSourceWheel      uint32 = 0
	PointerAxisSourceFinger     uint32 = 1
	PointerAxisSourceContinuous uint32 = 2
	PointerAxisSourceWheelTilt  uint32 = 3
)

// wl_keyboard opcodes (requests)
const (
	keyboardRelease wire.Opcode = 0 // release() [v3]
)

// wl_keyboard event opcodes
const (
	keyboardEventKeymap     wire.Opcode = 0 // keymap(format: uint, fd: fd, size: uint)
	keyboardEventEnter      wire.Opcode = 1 // enter(serial: uint, surface: object, keys: array)
	keyboardEventLeave      wire.Opcode = 2 // leave(serial: uint, surface: object)
	keyboardEventKey        wire.Opcode = 3 // key(serial: uint, time: uint, key: uint, state: uint)
	keyboardEventModifiers  wire.Opcode = 4 // modifiers(serial: uint, mods_depressed: uint, mods_latched: uint, mods_locked: uint, group: uint)
	keyboardEventRepeatInfo wire.Opcode = 5 // repeat_info(rate: int, delay: int) [v4]
)

// wl_keyboard.keymap_format values.
const (
	KeymapFormatNoKeymap uint32 = 0 // no keymap; interpret raw keycodes
	KeymapFormatXKBV1    uint32 = 1 // libxkbcommon-compatible keymap
)

// wl_keyboard.key_state values.
const (
	KeyStateReleased uint32 = 0
	KeyStatePressed  uint32 = 1
)

// wl_touch opcodes (requests)
const (
	touchRelease wire.Opcode = 0 // release() [v3]
)

// wl_touch event opcodes
const (
	touchEventDown   wire.Opcode = 0 // down(serial: uint, time: uint, surface: object, id: int, x: fixed, y: fixed)
	touchEventUp     wire.Opcode = 1 // up(serial: uint, time: uint, id: int)
	touchEventMotion wire.Opcode = 2 // motion(time: uint, id: int, x: fixed, y: fixed)
	touchEventFrame  wire.Opcode = 3 // frame()
	touchEventCancel wire.Opcode = 4 // cancel()
)

func init() {
	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeSeat,
		Name:    "wl_seat",
		Version: 5,
		Requests: []proto.RequestDescriptor{
			{Name: "get_pointer", Opcode: seatGetPointer, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypePointer},
			}},
			{Name: "get_keyboard", Opcode: seatGetKeyboard, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeKeyboard},
			}},
			{Name: "get_touch", Opcode: seatGetTouch, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeTouch},
			}},
			{Name: "release", Opcode: seatRelease, Since: 5, Destroy: true},
		},
		Events: []proto.EventDescriptor{
			{Name: "capabilities", Opcode: seatEventCapabilities, Args: []proto.ArgSpec{
				{Name: "capabilities", Kind: wire.ArgUint},
			}},
			{Name: "name", Opcode: seatEventName, Since: 2, Args: []proto.ArgSpec{
				{Name: "name", Kind: wire.ArgString},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypePointer,
		Name:    "wl_pointer",
		Version: 5,
		Requests: []proto.RequestDescriptor{
			{Name: "set_cursor", Opcode: pointerSetCursor, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "surface", Kind: wire.ArgObject, Nullable: true},
				{Name: "hotspot_x", Kind: wire.ArgInt},
				{Name: "hotspot_y", Kind: wire.ArgInt},
			}},
			{Name: "release", Opcode: pointerRelease, Since: 3, Destroy: true},
		},
		Events: []proto.EventDescriptor{
			{Name: "enter", Opcode: pointerEventEnter, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "surface", Kind: wire.ArgObject},
				{Name: "surface_x", Kind: wire.ArgFixed},
				{Name: "surface_y", Kind: wire.ArgFixed},
			}},
			{Name: "leave", Opcode: pointerEventLeave, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "surface", Kind: wire.ArgObject},
			}},
			{Name: "motion", Opcode: pointerEventMotion, Args: []proto.ArgSpec{
				{Name: "time", Kind: wire.ArgUint},
				{Name: "surface_x", Kind: wire.ArgFixed},
				{Name: "surface_y", Kind: wire.ArgFixed},
			}},
			{Name: "button", Opcode: pointerEventButton, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "time", Kind: wire.ArgUint},
				{Name: "button", Kind: wire.ArgUint},
				{Name: "state", Kind: wire.ArgUint},
			}},
			{Name: "axis", Opcode: pointerEventAxis, Args: []proto.ArgSpec{
				{Name: "time", Kind: wire.ArgUint},
				{Name: "axis", Kind: wire.ArgUint},
				{Name: "value", Kind: wire.ArgFixed},
			}},
			{Name: "frame", Opcode: pointerEventFrame, Since: 5},
			{Name: "axis_source", Opcode: pointerEventAxisSource, Since: 5, Args: []proto.ArgSpec{
				{Name: "axis_source", Kind: wire.ArgUint},
			}},
			{Name: "axis_stop", Opcode: pointerEventAxisStop, Since: 5, Args: []proto.ArgSpec{
				{Name: "time", Kind: wire.ArgUint},
				{Name: "axis", Kind: wire.ArgUint},
			}},
			{Name: "axis_discrete", Opcode: pointerEventAxisDiscrete, Since: 5, Args: []proto.ArgSpec{
				{Name: "axis", Kind: wire.ArgUint},
				{Name: "discrete", Kind: wire.ArgInt},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeKeyboard,
		Name:    "wl_keyboard",
		Version: 5,
		Requests: []proto.RequestDescriptor{
			{Name: "release", Opcode: keyboardRelease, Since: 3, Destroy: true},
		},
		Events: []proto.EventDescriptor{
			{Name: "keymap", Opcode: keyboardEventKeymap, Args: []proto.ArgSpec{
				{Name: "format", Kind: wire.ArgUint},
				{Name: "fd", Kind: wire.ArgFD},
				{Name: "size", Kind: wire.ArgUint},
			}},
			{Name: "enter", Opcode: keyboardEventEnter, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "surface", Kind: wire.ArgObject},
				{Name: "keys", Kind: wire.ArgArray},
			}},
			{Name: "leave", Opcode: keyboardEventLeave, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "surface", Kind: wire.ArgObject},
			}},
			{Name: "key", Opcode: keyboardEventKey, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "time", Kind: wire.ArgUint},
				{Name: "key", Kind: wire.ArgUint},
				{Name: "state", Kind: wire.ArgUint},
			}},
			{Name: "modifiers", Opcode: keyboardEventModifiers, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "mods_depressed", Kind: wire.ArgUint},
				{Name: "mods_latched", Kind: wire.ArgUint},
				{Name: "mods_locked", Kind: wire.ArgUint},
				{Name: "group", Kind: wire.ArgUint},
			}},
			{Name: "repeat_info", Opcode: keyboardEventRepeatInfo, Since: 4, Args: []proto.ArgSpec{
				{Name: "rate", Kind: wire.ArgInt},
				{Name: "delay", Kind: wire.ArgInt},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeTouch,
		Name:    "wl_touch",
		Version: 5,
		Requests: []proto.RequestDescriptor{
			{Name: "release", Opcode: touchRelease, Since: 3, Destroy: true},
		},
		Events: []proto.EventDescriptor{
			{Name: "down", Opcode: touchEventDown, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "time", Kind: wire.ArgUint},
				{Name: "surface", Kind: wire.ArgObject},
				{Name: "id", Kind: wire.ArgInt},
				{Name: "x", Kind: wire.ArgFixed},
				{Name: "y", Kind: wire.ArgFixed},
			}},
			{Name: "up", Opcode: touchEventUp, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "time", Kind: wire.ArgUint},
				{Name: "id", Kind: wire.ArgInt},
			}},
			{Name: "motion", Opcode: touchEventMotion, Args: []proto.ArgSpec{
				{Name: "time", Kind: wire.ArgUint},
				{Name: "id", Kind: wire.ArgInt},
				{Name: "x", Kind: wire.ArgFixed},
				{Name: "y", Kind: wire.ArgFixed},
			}},
			{Name: "frame", Opcode: touchEventFrame},
			{Name: "cancel", Opcode: touchEventCancel},
		},
	})
}

// Seat wraps the wl_seat global: one group of input devices (pointer,
// keyboard, touch) sharing focus.
type Seat struct {
	conn *wlclient.Connection
	id   uint32

	capabilities uint32
	name         string

	onCapabilities func(caps proto.Bitflag)
	onName         func(name string)
}

// BindSeat binds the wl_seat global at version.
func BindSeat(conn *wlclient.Connection, reg *wlclient.Registry, version uint32) (*Seat, error) {
	id, err := bindGlobal(reg, "wl_seat", version)
	if err != nil {
		return nil, err
	}
	s := NewSeat(conn, id)
	conn.RegisterDispatchable(id, s)
	return s, nil
}

// NewSeat wraps an already-bound wl_seat object id.
func NewSeat(conn *wlclient.Connection, id uint32) *Seat {
	return &Seat{conn: conn, id: id}
}

// ID returns the seat's object id.
func (s *Seat) ID() uint32 { return s.id }

// Capabilities returns the last capability mask the compositor reported.
func (s *Seat) Capabilities() proto.Bitflag { return NewSeatCapabilities(s.capabilities) }

// Name returns the seat name, if the compositor sent one (v2+).
func (s *Seat) Name() string { return s.name }

// HasPointer reports whether the seat currently has pointer devices.
func (s *Seat) HasPointer() bool { return s.capabilities&SeatCapabilityPointer != 0 }

// HasKeyboard reports whether the seat currently has keyboard devices.
func (s *Seat) HasKeyboard() bool { return s.capabilities&SeatCapabilityKeyboard != 0 }

// HasTouch reports whether the seat currently has touch devices.
func (s *Seat) HasTouch() bool { return s.capabilities&SeatCapabilityTouch != 0 }

// SetCapabilitiesHandler registers a callback for capability changes.
func (s *Seat) SetCapabilitiesHandler(h func(caps proto.Bitflag)) { s.onCapabilities = h }

// SetNameHandler registers a callback for the seat name event (v2+).
func (s *Seat) SetNameHandler(h func(name string)) { s.onName = h }

// GetPointer creates a wl_pointer for this seat.
func (s *Seat) GetPointer() (*Pointer, error) {
	id := s.conn.AllocateChild(proto.TypePointer)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(s.conn, b, s.id, seatGetPointer); err != nil {
		return nil, err
	}
	p := &Pointer{conn: s.conn, id: id}
	s.conn.RegisterDispatchable(id, p)
	return p, nil
}

// GetKeyboard creates a wl_keyboard for this seat.
func (s *Seat) GetKeyboard() (*Keyboard, error) {
	id := s.conn.AllocateChild(proto.TypeKeyboard)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(s.conn, b, s.id, seatGetKeyboard); err != nil {
		return nil, err
	}
	k := &Keyboard{conn: s.conn, id: id}
	s.conn.RegisterDispatchable(id, k)
	return k, nil
}

// GetTouch creates a wl_touch for this seat.
func (s *Seat) GetTouch() (*Touch, error) {
	id := s.conn.AllocateChild(proto.TypeTouch)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(s.conn, b, s.id, seatGetTouch); err != nil {
		return nil, err
	}
	t := &Touch{conn: s.conn, id: id}
	s.conn.RegisterDispatchable(id, t)
	return t, nil
}

// Release releases the seat (v5+).
func (s *Seat) Release() error {
	if err := send(s.conn, wire.NewMessageBuilder(), s.id, seatRelease); err != nil {
		return err
	}
	s.conn.Objects().MarkDead(s.id)
	s.conn.Unregister(s.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for wl_seat events.
func (s *Seat) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "capabilities":
		caps, err := dec.Uint32()
		if err != nil {
			return err
		}
		s.capabilities = caps
		if s.onCapabilities != nil {
			s.onCapabilities(NewSeatCapabilities(caps))
		}
		return nil
	case "name":
		name, err := dec.String()
		if err != nil {
			return err
		}
		s.name = name
		if s.onName != nil {
			s.onName(name)
		}
		return nil
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeSeat, Opcode: opcode}
	}
}

// PointerEnterEvent carries wl_pointer.enter arguments.
type PointerEnterEvent struct {
	Serial   uint32
	Surface  uint32
	SurfaceX wire.Fixed
	SurfaceY wire.Fixed
}

// PointerButtonEvent carries wl_pointer.button arguments. Button is a Linux
// input event code (BTN_LEFT is 0x110).
type PointerButtonEvent struct {
	Serial uint32
	Time   uint32
	Button uint32
	State  uint32
}

// PointerAxisEvent carries wl_pointer.axis (scroll) arguments.
type PointerAxisEvent struct {
	Time  uint32
	Axis  uint32
	Value wire.Fixed
}

// Pointer wraps a wl_pointer input device.
type Pointer struct {
	conn *wlclient.Connection
	id   uint32

	onEnter        func(ev *PointerEnterEvent)
	onLeave        func(serial uint32, surface uint32)
	onMotion       func(time uint32, x, y wire.Fixed)
	onButton       func(ev *PointerButtonEvent)
	onAxis         func(ev *PointerAxisEvent)
	onFrame        func()
	onAxisSource   func(source uint32)
	onAxisStop     func(time uint32, axis uint32)
	onAxisDiscrete func(axis uint32, discrete int32)
}

// ID returns the pointer's object id.
func (p *Pointer) ID() uint32 { return p.id }

// SetCursor sets the cursor surface for this pointer; surface 0 hides it.
// The serial must come from the enter event being answered.
func (p *Pointer) SetCursor(serial uint32, surface uint32, hotspotX, hotspotY int32) error {
	b := wire.NewMessageBuilder()
	b.Uint(serial).MaybeObject(surface).Int(hotspotX).Int(hotspotY)
	return send(p.conn, b, p.id, pointerSetCursor)
}

// Release releases the pointer (v3+).
func (p *Pointer) Release() error {
	if err := send(p.conn, wire.NewMessageBuilder(), p.id, pointerRelease); err != nil {
		return err
	}
	p.conn.Objects().MarkDead(p.id)
	p.conn.Unregister(p.id)
	return nil
}

func (p *Pointer) SetEnterHandler(h func(ev *PointerEnterEvent))          { p.onEnter = h }
func (p *Pointer) SetLeaveHandler(h func(serial uint32, surface uint32))  { p.onLeave = h }
func (p *Pointer) SetMotionHandler(h func(time uint32, x, y wire.Fixed))  { p.onMotion = h }
func (p *Pointer) SetButtonHandler(h func(ev *PointerButtonEvent))        { p.onButton = h }
func (p *Pointer) SetAxisHandler(h func(ev *PointerAxisEvent))            { p.onAxis = h }
func (p *Pointer) SetFrameHandler(h func())                               { p.onFrame = h }
func (p *Pointer) SetAxisSourceHandler(h func(source uint32))             { p.onAxisSource = h }
func (p *Pointer) SetAxisStopHandler(h func(time uint32, axis uint32))    { p.onAxisStop = h }
func (p *Pointer) SetAxisDiscreteHandler(h func(axis uint32, disc int32)) { p.onAxisDiscrete = h }

// Dispatch implements wlclient.Dispatchable for wl_pointer events.
func (p *Pointer) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "enter":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		surface, err := dec.Object()
		if err != nil {
			return err
		}
		x, err := dec.Fixed()
		if err != nil {
			return err
		}
		y, err := dec.Fixed()
		if err != nil {
			return err
		}
		if p.onEnter != nil {
			p.onEnter(&PointerEnterEvent{Serial: serial, Surface: surface, SurfaceX: x, SurfaceY: y})
		}
	case "leave":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		surface, err := dec.Object()
		if err != nil {
			return err
		}
		if p.onLeave != nil {
			p.onLeave(serial, surface)
		}
	case "motion":
		time, err := dec.Uint32()
		if err != nil {
			return err
		}
		x, err := dec.Fixed()
		if err != nil {
			return err
		}
		y, err := dec.Fixed()
		if err != nil {
			return err
		}
		if p.onMotion != nil {
			p.onMotion(time, x, y)
		}
	case "button":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		time, err := dec.Uint32()
		if err != nil {
			return err
		}
		button, err := dec.Uint32()
		if err != nil {
			return err
		}
		state, err := dec.Uint32()
		if err != nil {
			return err
		}
		if p.onButton != nil {
			p.onButton(&PointerButtonEvent{Serial: serial, Time: time, Button: button, State: state})
		}
	case "axis":
		time, err := dec.Uint32()
		if err != nil {
			return err
		}
		axis, err := dec.Uint32()
		if err != nil {
			return err
		}
		value, err := dec.Fixed()
		if err != nil {
			return err
		}
		if p.onAxis != nil {
			p.onAxis(&PointerAxisEvent{Time: time, Axis: axis, Value: value})
		}
	case "frame":
		if p.onFrame != nil {
			p.onFrame()
		}
	case "axis_source":
		source, err := dec.Uint32()
		if err != nil {
			return err
		}
		if p.onAxisSource != nil {
			p.onAxisSource(source)
		}
	case "axis_stop":
		time, err := dec.Uint32()
		if err != nil {
			return err
		}
		axis, err := dec.Uint32()
		if err != nil {
			return err
		}
		if p.onAxisStop != nil {
			p.onAxisStop(time, axis)
		}
	case "axis_discrete":
		axis, err := dec.Uint32()
		if err != nil {
			return err
		}
		discrete, err := dec.Int32()
		if err != nil {
			return err
		}
		if p.onAxisDiscrete != nil {
			p.onAxisDiscrete(axis, discrete)
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypePointer, Opcode: opcode}
	}
	return nil
}

// KeyboardKeymapEvent carries wl_keyboard.keymap arguments. FD is owned by
// the handler once delivered; mmap it (read-only) and close it.
type KeyboardKeymapEvent struct {
	Format uint32
	FD     int
	Size   uint32
}

// KeyboardKeyEvent carries wl_keyboard.key arguments. Key is a raw scancode;
// add 8 for the usual XKB keycode mapping.
type KeyboardKeyEvent struct {
	Serial uint32
	Time   uint32
	Key    uint32
	State  uint32
}

// KeyboardModifiersEvent carries wl_keyboard.modifiers arguments.
type KeyboardModifiersEvent struct {
	Serial        uint32
	ModsDepressed uint32
	ModsLatched   uint32
	ModsLocked    uint32
	Group         uint32
}

// Keyboard wraps a wl_keyboard input device.
type Keyboard struct {
	conn *wlclient.Connection
	id   uint32

	onKeymap     func(ev *KeyboardKeymapEvent)
	onEnter      func(serial uint32, surface uint32, keys []uint32)
	onLeave      func(serial uint32, surface uint32)
	onKey        func(ev *KeyboardKeyEvent)
	onModifiers  func(ev *KeyboardModifiersEvent)
	onRepeatInfo func(rate, delay int32)
}

// ID returns the keyboard's object id.
func (k *Keyboard) ID() uint32 { return k.id }

// Release releases the keyboard (v3+).
func (k *Keyboard) Release() error {
	if err := send(k.conn, wire.NewMessageBuilder(), k.id, keyboardRelease); err != nil {
		return err
	}
	k.conn.Objects().MarkDead(k.id)
	k.conn.Unregister(k.id)
	return nil
}

func (k *Keyboard) SetKeymapHandler(h func(ev *KeyboardKeymapEvent)) { k.onKeymap = h }
func (k *Keyboard) SetEnterHandler(h func(serial uint32, surface uint32, keys []uint32)) {
	k.onEnter = h
}
func (k *Keyboard) SetLeaveHandler(h func(serial uint32, surface uint32)) { k.onLeave = h }
func (k *Keyboard) SetKeyHandler(h func(ev *KeyboardKeyEvent))            { k.onKey = h }
func (k *Keyboard) SetModifiersHandler(h func(ev *KeyboardModifiersEvent)) {
	k.onModifiers = h
}
func (k *Keyboard) SetRepeatInfoHandler(h func(rate, delay int32)) { k.onRepeatInfo = h }

// Dispatch implements wlclient.Dispatchable for wl_keyboard events.
func (k *Keyboard) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "keymap":
		format, err := dec.Uint32()
		if err != nil {
			return err
		}
		fd, err := dec.FD()
		if err != nil {
			return err
		}
		size, err := dec.Uint32()
		if err != nil {
			return err
		}
		if k.onKeymap != nil {
			k.onKeymap(&KeyboardKeymapEvent{Format: format, FD: fd, Size: size})
		}
	case "enter":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		surface, err := dec.Object()
		if err != nil {
			return err
		}
		raw, err := dec.Array()
		if err != nil {
			return err
		}
		keys := make([]uint32, len(raw)/4)
		for i := range keys {
			keys[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		if k.onEnter != nil {
			k.onEnter(serial, surface, keys)
		}
	case "leave":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		surface, err := dec.Object()
		if err != nil {
			return err
		}
		if k.onLeave != nil {
			k.onLeave(serial, surface)
		}
	case "key":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		time, err := dec.Uint32()
		if err != nil {
			return err
		}
		key, err := dec.Uint32()
		if err != nil {
			return err
		}
		state, err := dec.Uint32()
		if err != nil {
			return err
		}
		if k.onKey != nil {
			k.onKey(&KeyboardKeyEvent{Serial: serial, Time: time, Key: key, State: state})
		}
	case "modifiers":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		depressed, err := dec.Uint32()
		if err != nil {
			return err
		}
		latched, err := dec.Uint32()
		if err != nil {
			return err
		}
		locked, err := dec.Uint32()
		if err != nil {
			return err
		}
		group, err := dec.Uint32()
		if err != nil {
			return err
		}
		if k.onModifiers != nil {
			k.onModifiers(&KeyboardModifiersEvent{
				Serial:        serial,
				ModsDepressed: depressed,
				ModsLatched:   latched,
				ModsLocked:    locked,
				Group:         group,
			})
		}
	case "repeat_info":
		rate, err := dec.Int32()
		if err != nil {
			return err
		}
		delay, err := dec.Int32()
		if err != nil {
			return err
		}
		if k.onRepeatInfo != nil {
			k.onRepeatInfo(rate, delay)
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeKeyboard, Opcode: opcode}
	}
	return nil
}

// TouchPointEvent carries wl_touch.down/motion arguments for one contact
// point.
type TouchPointEvent struct {
	Serial  uint32 // 0 for motion events
	Time    uint32
	Surface uint32 // 0 for motion events
	ID      int32
	X       wire.Fixed
	Y       wire.Fixed
}

// Touch wraps a wl_touch input device.
type Touch struct {
	conn *wlclient.Connection
	id   uint32

	onDown   func(ev *TouchPointEvent)
	onUp     func(serial, time uint32, id int32)
	onMotion func(ev *TouchPointEvent)
	onFrame  func()
	onCancel func()
}

// ID returns the touch device's object id.
func (t *Touch) ID() uint32 { return t.id }

// Release releases the touch device (v3+).
func (t *Touch) Release() error {
	if err := send(t.conn, wire.NewMessageBuilder(), t.id, touchRelease); err != nil {
		return err
	}
	t.conn.Objects().MarkDead(t.id)
	t.conn.Unregister(t.id)
	return nil
}

func (t *Touch) SetDownHandler(h func(ev *TouchPointEvent))         { t.onDown = h }
func (t *Touch) SetUpHandler(h func(serial, time uint32, id int32)) { t.onUp = h }
func (t *Touch) SetMotionHandler(h func(ev *TouchPointEvent))       { t.onMotion = h }
func (t *Touch) SetFrameHandler(h func())                           { t.onFrame = h }
func (t *Touch) SetCancelHandler(h func())                          { t.onCancel = h }

// Dispatch implements wlclient.Dispatchable for wl_touch events.
func (t *Touch) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "down":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		time, err := dec.Uint32()
		if err != nil {
			return err
		}
		surface, err := dec.Object()
		if err != nil {
			return err
		}
		id, err := dec.Int32()
		if err != nil {
			return err
		}
		x, err := dec.Fixed()
		if err != nil {
			return err
		}
		y, err := dec.Fixed()
		if err != nil {
			return err
		}
		if t.onDown != nil {
			t.onDown(&TouchPointEvent{Serial: serial, Time: time, Surface: surface, ID: id, X: x, Y: y})
		}
	case "up":
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		time, err := dec.Uint32()
		if err != nil {
			return err
		}
		id, err := dec.Int32()
		if err != nil {
			return err
		}
		if t.onUp != nil {
			t.onUp(serial, time, id)
		}
	case "motion":
		time, err := dec.Uint32()
		if err != nil {
			return err
		}
		id, err := dec.Int32()
		if err != nil {
			return err
		}
		x, err := dec.Fixed()
		if err != nil {
			return err
		}
		y, err := dec.Fixed()
		if err != nil {
			return err
		}
		if t.onMotion != nil {
			t.onMotion(&TouchPointEvent{Time: time, ID: id, X: x, Y: y})
		}
	case "frame":
		if t.onFrame != nil {
			t.onFrame()
		}
	case "cancel":
		if t.onCancel != nil {
			t.onCancel()
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeTouch, Opcode: opcode}
	}
	return nil
}
