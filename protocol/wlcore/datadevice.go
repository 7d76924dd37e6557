//go:build linux

package wlcore

import (
	"github.com/waylib/wlcore/proto"
	"github.com/waylib/wlcore/wire"
	"github.com/waylib/wlcore/wlclient"
)

// wl_data_device_manager opcodes (requests)
const (
	dataDeviceManagerCreateDataSource wire.Opcode = 0 // create_data_source(id: new_id<wl_data_source>)
	dataDeviceManagerGetDataDevice    wire.Opcode = 1 // get_data_device(id: new_id<wl_data_device>, seat: object<wl_seat>)
)

// wl_data_source opcodes (requests)
const (
	dataSourceOffer      wire.Opcode = 0 // offer(mime_type: string)
	dataSourceDestroy    wire.Opcode = 1 // destroy()
	dataSourceSetActions wire.Opcode = 2 // set_actions(dnd_actions: uint) [v3]
)

// wl_data_source event opcodes
const (
	dataSourceEventTarget           wire.Opcode = 0 // target(mime_type: string?)
	dataSourceEventSend             wire.Opcode = 1 // send(mime_type: string, fd: fd)
	dataSourceEventCancelled        wire.Opcode = 2 // cancelled()
	dataSourceEventDndDropPerformed wire.Opcode = 3 // dnd_drop_performed() [v3]
	dataSourceEventDndFinished      wire.Opcode = 4 // dnd_finished() [v3]
	dataSourceEventAction           wire.Opcode = 5 // action(dnd_action: uint) [v3]
)

// wl_data_device opcodes (requests)
const (
	dataDeviceStartDrag    wire.Opcode = 0 // start_drag(source: object?, origin: object, icon: object?, serial: uint)
	dataDeviceSetSelection wire.Opcode = 1 // set_selection(source: object?, serial: uint)
	dataDeviceRelease      wire.Opcode = 2 // release() [v2]
)

// wl_data_device event opcodes
const (
	dataDeviceEventDataOffer wire.Opcode = 0 // data_offer(id: new_id<wl_data_offer>)
	dataDeviceEventEnter     wire.Opcode = 1 // enter(serial: uint, surface: object, x: fixed, y: fixed, id: object?)
	dataDeviceEventLeave     wire.Opcode = 2 // leave()
	dataDeviceEventMotion    wire.Opcode = 3 // motion(time: uint, x: fixed, y: fixed)
	dataDeviceEventDrop      wire.Opcode = 4 // drop()
	dataDeviceEventSelection wire.Opcode = 5 // selection(id: object?)
)

// wl_data_offer opcodes (requests)
const (
	dataOfferAccept     wire.Opcode = 0 // accept(serial: uint, mime_type: string?)
	dataOfferReceive    wire.Opcode = 1 // receive(mime_type: string, fd: fd)
	dataOfferDestroy    wire.Opcode = 2 // destroy()
	dataOfferFinish     wire.Opcode = 3 // finish() [v3]
	dataOfferSetActions wire.Opcode = 4 // set_actions(dnd_actions: uint, preferred_action: uint) [v3]
)

// wl_data_offer event opcodes
const (
	dataOfferEventOffer         wire.Opcode = 0 // offer(mime_type: string)
	dataOfferEventSourceActions wire.Opcode = 1 // source_actions(source_actions: uint) [v3]
	dataOfferEventAction        wire.Opcode = 2 // action(dnd_action: uint) [v3]
)

// Drag-and-drop action bits (wl_data_device_manager.dnd_action, v3).
const (
	DndActionNone uint32 = 0
	DndActionCopy uint32 = 1
	DndActionMove uint32 = 2
	DndActionAsk  uint32 = 4
)

// DndActionMembers is the member table for the dnd_action bitfield enum.
var DndActionMembers = []proto.BitflagMember{
	{Name: "copy", Bit: DndActionCopy},
	{Name: "move", Bit: DndActionMove},
	{Name: "ask", Bit: DndActionAsk},
}

func init() {
	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeDataDeviceManager,
		Name:    "wl_data_device_manager",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "create_data_source", Opcode: dataDeviceManagerCreateDataSource, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeDataSource},
			}},
			{Name: "get_data_device", Opcode: dataDeviceManagerGetDataDevice, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeDataDevice},
				{Name: "seat", Kind: wire.ArgObject},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeDataSource,
		Name:    "wl_data_source",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "offer", Opcode: dataSourceOffer, Args: []proto.ArgSpec{
				{Name: "mime_type", Kind: wire.ArgString},
			}},
			{Name: "destroy", Opcode: dataSourceDestroy, Destroy: true},
			{Name: "set_actions", Opcode: dataSourceSetActions, Since: 3, Args: []proto.ArgSpec{
				{Name: "dnd_actions", Kind: wire.ArgUint},
			}},
		},
		Events: []proto.EventDescriptor{
			{Name: "target", Opcode: dataSourceEventTarget, Args: []proto.ArgSpec{
				{Name: "mime_type", Kind: wire.ArgString},
			}},
			{Name: "send", Opcode: dataSourceEventSend, Args: []proto.ArgSpec{
				{Name: "mime_type", Kind: wire.ArgString},
				{Name: "fd", Kind: wire.ArgFD},
			}},
			{Name: "cancelled", Opcode: dataSourceEventCancelled},
			{Name: "dnd_drop_performed", Opcode: dataSourceEventDndDropPerformed, Since: 3},
			{Name: "dnd_finished", Opcode: dataSourceEventDndFinished, Since: 3},
			{Name: "action", Opcode: dataSourceEventAction, Since: 3, Args: []proto.ArgSpec{
				{Name: "dnd_action", Kind: wire.ArgUint},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeDataDevice,
		Name:    "wl_data_device",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "start_drag", Opcode: dataDeviceStartDrag, Args: []proto.ArgSpec{
				{Name: "source", Kind: wire.ArgObject, Nullable: true},
				{Name: "origin", Kind: wire.ArgObject},
				{Name: "icon", Kind: wire.ArgObject, Nullable: true},
				{Name: "serial", Kind: wire.ArgUint},
			}},
			{Name: "set_selection", Opcode: dataDeviceSetSelection, Args: []proto.ArgSpec{
				{Name: "source", Kind: wire.ArgObject, Nullable: true},
				{Name: "serial", Kind: wire.ArgUint},
			}},
			{Name: "release", Opcode: dataDeviceRelease, Since: 2, Destroy: true},
		},
		Events: []proto.EventDescriptor{
			{Name: "data_offer", Opcode: dataDeviceEventDataOffer, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgNewID, NewType: proto.TypeDataOffer},
			}},
			{Name: "enter", Opcode: dataDeviceEventEnter, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "surface", Kind: wire.ArgObject},
				{Name: "x", Kind: wire.ArgFixed},
				{Name: "y", Kind: wire.ArgFixed},
				{Name: "id", Kind: wire.ArgObject, Nullable: true},
			}},
			{Name: "leave", Opcode: dataDeviceEventLeave},
			{Name: "motion", Opcode: dataDeviceEventMotion, Args: []proto.ArgSpec{
				{Name: "time", Kind: wire.ArgUint},
				{Name: "x", Kind: wire.ArgFixed},
				{Name: "y", Kind: wire.ArgFixed},
			}},
			{Name: "drop", Opcode: dataDeviceEventDrop},
			{Name: "selection", Opcode: dataDeviceEventSelection, Args: []proto.ArgSpec{
				{Name: "id", Kind: wire.ArgObject, Nullable: true},
			}},
		},
	})

	proto.Register(&proto.InterfaceDescriptor{
		Type:    proto.TypeDataOffer,
		Name:    "wl_data_offer",
		Version: 3,
		Requests: []proto.RequestDescriptor{
			{Name: "accept", Opcode: dataOfferAccept, Args: []proto.ArgSpec{
				{Name: "serial", Kind: wire.ArgUint},
				{Name: "mime_type", Kind: wire.ArgString},
			}},
			{Name: "receive", Opcode: dataOfferReceive, Args: []proto.ArgSpec{
				{Name: "mime_type", Kind: wire.ArgString},
				{Name: "fd", Kind: wire.ArgFD},
			}},
			{Name: "destroy", Opcode: dataOfferDestroy, Destroy: true},
			{Name: "finish", Opcode: dataOfferFinish, Since: 3},
			{Name: "set_actions", Opcode: dataOfferSetActions, Since: 3, Args: []proto.ArgSpec{
				{Name: "dnd_actions", Kind: wire.ArgUint},
				{Name: "preferred_action", Kind: wire.ArgUint},
			}},
		},
		Events: []proto.EventDescriptor{
			{Name: "offer", Opcode: dataOfferEventOffer, Args: []proto.ArgSpec{
				{Name: "mime_type", Kind: wire.ArgString},
			}},
			{Name: "source_actions", Opcode: dataOfferEventSourceActions, Since: 3, Args: []proto.ArgSpec{
				{Name: "source_actions", Kind: wire.ArgUint},
			}},
			{Name: "action", Opcode: dataOfferEventAction, Since: 3, Args: []proto.ArgSpec{
				{Name: "dnd_action", Kind: wire.ArgUint},
			}},
		},
	})
}

// DataDeviceManager wraps the wl_data_device_manager global, the entry
// point for clipboard selections and drag-and-drop.
type DataDeviceManager struct {
	conn *wlclient.Connection
	id   uint32
}

// BindDataDeviceManager binds the wl_data_device_manager global at version.
func BindDataDeviceManager(conn *wlclient.Connection, reg *wlclient.Registry, version uint32) (*DataDeviceManager, error) {
	id, err := bindGlobal(reg, "wl_data_device_manager", version)
	if err != nil {
		return nil, err
	}
	return &DataDeviceManager{conn: conn, id: id}, nil
}

// ID returns the manager's object id.
func (m *DataDeviceManager) ID() uint32 { return m.id }

// CreateDataSource creates a wl_data_source for offering data to other
// clients.
func (m *DataDeviceManager) CreateDataSource() (*DataSource, error) {
	id := m.conn.AllocateChild(proto.TypeDataSource)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	if err := send(m.conn, b, m.id, dataDeviceManagerCreateDataSource); err != nil {
		return nil, err
	}
	src := &DataSource{conn: m.conn, id: id}
	m.conn.RegisterDispatchable(id, src)
	return src, nil
}

// GetDataDevice creates the per-seat wl_data_device.
func (m *DataDeviceManager) GetDataDevice(seat *Seat) (*DataDevice, error) {
	id := m.conn.AllocateChild(proto.TypeDataDevice)
	b := wire.NewMessageBuilder()
	b.NewID(id)
	b.Object("seat", seat.ID())
	if err := send(m.conn, b, m.id, dataDeviceManagerGetDataDevice); err != nil {
		return nil, err
	}
	d := &DataDevice{conn: m.conn, id: id}
	m.conn.RegisterDispatchable(id, d)
	return d, nil
}

// DataSource wraps a wl_data_source: the offering side of a selection or
// drag. The compositor asks for the data with send events, each carrying a
// pipe fd the handler must write to and close.
type DataSource struct {
	conn *wlclient.Connection
	id   uint32

	onTarget    func(mimeType string)
	onSend      func(mimeType string, fd int)
	onCancelled func()
	onAction    func(action uint32)
}

// ID returns the source's object id.
func (s *DataSource) ID() uint32 { return s.id }

// Offer advertises a mime type this source can provide. Call once per type
// before the source is used in set_selection or start_drag.
func (s *DataSource) Offer(mimeType string) error {
	b := wire.NewMessageBuilder()
	b.Str(mimeType)
	return send(s.conn, b, s.id, dataSourceOffer)
}

// SetActions advertises the drag actions this source supports (v3+).
func (s *DataSource) SetActions(actions uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(actions)
	return send(s.conn, b, s.id, dataSourceSetActions)
}

// Destroy destroys the source.
func (s *DataSource) Destroy() error {
	if err := send(s.conn, wire.NewMessageBuilder(), s.id, dataSourceDestroy); err != nil {
		return err
	}
	s.conn.Objects().MarkDead(s.id)
	s.conn.Unregister(s.id)
	return nil
}

// SetTargetHandler registers a callback for the target event ("" means no
// target accepts the drag).
func (s *DataSource) SetTargetHandler(h func(mimeType string)) { s.onTarget = h }

// SetSendHandler registers the callback that provides the data: write the
// requested mime type's bytes to fd and close it.
func (s *DataSource) SetSendHandler(h func(mimeType string, fd int)) { s.onSend = h }

// SetCancelledHandler registers a callback for the source being replaced or
// the drag being abandoned; the source should be destroyed.
func (s *DataSource) SetCancelledHandler(h func()) { s.onCancelled = h }

// SetActionHandler registers a callback for the selected drag action (v3+).
func (s *DataSource) SetActionHandler(h func(action uint32)) { s.onAction = h }

// Dispatch implements wlclient.Dispatchable for wl_data_source events.
func (s *DataSource) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "target":
		mime, err := dec.String()
		if err != nil {
			return err
		}
		if s.onTarget != nil {
			s.onTarget(mime)
		}
	case "send":
		mime, err := dec.String()
		if err != nil {
			return err
		}
		fd, err := dec.FD()
		if err != nil {
			return err
		}
		if s.onSend != nil {
			s.onSend(mime, fd)
		}
	case "cancelled":
		if s.onCancelled != nil {
			s.onCancelled()
		}
	case "dnd_drop_performed", "dnd_finished":
		// Drag lifecycle notifications; nothing to decode.
	case "action":
		action, err := dec.Uint32()
		if err != nil {
			return err
		}
		if s.onAction != nil {
			s.onAction(action)
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeDataSource, Opcode: opcode}
	}
	return nil
}

// DataDevice wraps a per-seat wl_data_device: the receiving side of
// selections and drags. Incoming offers arrive as server-created
// wl_data_offer objects announced by the data_offer event.
type DataDevice struct {
	conn *wlclient.Connection
	id   uint32

	pending   *DataOffer
	selection *DataOffer

	onSelection func(offer *DataOffer)
}

// ID returns the device's object id.
func (d *DataDevice) ID() uint32 { return d.id }

// Selection returns the current selection offer, or nil when the clipboard
// is empty.
func (d *DataDevice) Selection() *DataOffer { return d.selection }

// SetSelectionHandler registers a callback for selection changes. A nil
// offer means the selection was cleared.
func (d *DataDevice) SetSelectionHandler(h func(offer *DataOffer)) { d.onSelection = h }

// SetSelection makes source the clipboard contents for the seat; a nil
// source clears it. The serial must come from a recent input event.
func (d *DataDevice) SetSelection(source *DataSource, serial uint32) error {
	b := wire.NewMessageBuilder()
	if source != nil {
		b.MaybeObject(source.ID())
	} else {
		b.MaybeObject(0)
	}
	b.Uint(serial)
	return send(d.conn, b, d.id, dataDeviceSetSelection)
}

// StartDrag begins a drag from origin with the given source and optional
// icon surface (0 for none).
func (d *DataDevice) StartDrag(source *DataSource, origin *Surface, icon uint32, serial uint32) error {
	b := wire.NewMessageBuilder()
	if source != nil {
		b.MaybeObject(source.ID())
	} else {
		b.MaybeObject(0)
	}
	b.Object("origin", origin.ID())
	b.MaybeObject(icon)
	b.Uint(serial)
	return send(d.conn, b, d.id, dataDeviceStartDrag)
}

// Release releases the device (v2+).
func (d *DataDevice) Release() error {
	if err := send(d.conn, wire.NewMessageBuilder(), d.id, dataDeviceRelease); err != nil {
		return err
	}
	d.conn.Objects().MarkDead(d.id)
	d.conn.Unregister(d.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for wl_data_device events.
func (d *DataDevice) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "data_offer":
		// The server allocated a fresh wl_data_offer id; adopt it and
		// start collecting its advertised mime types.
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		offer := &DataOffer{conn: conn, id: id}
		conn.Objects().Adopt(id, proto.TypeDataOffer)
		conn.RegisterDispatchable(id, offer)
		d.pending = offer
	case "enter", "motion", "drop", "leave":
		// Drag-and-drop positioning; decoded generically by callers that
		// care, ignored here.
	case "selection":
		id, err := dec.Object()
		if err != nil {
			return err
		}
		if id == 0 {
			d.selection = nil
		} else if d.pending != nil && d.pending.id == id {
			d.selection = d.pending
			d.pending = nil
		}
		if d.onSelection != nil {
			d.onSelection(d.selection)
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeDataDevice, Opcode: opcode}
	}
	return nil
}

// DataOffer wraps a server-created wl_data_offer: data another client (or
// this one) is offering, advertised one mime type per offer event.
type DataOffer struct {
	conn *wlclient.Connection
	id   uint32

	mimeTypes []string
}

// ID returns the offer's object id.
func (o *DataOffer) ID() uint32 { return o.id }

// MimeTypes returns a copy of the mime types advertised so far.
func (o *DataOffer) MimeTypes() []string {
	out := make([]string, len(o.mimeTypes))
	copy(out, o.mimeTypes)
	return out
}

// Receive asks for the offer's data as mimeType, written by the source
// client to fd (the write end of a pipe the caller created). The caller
// closes its write end after sending and reads from the read end.
func (o *DataOffer) Receive(mimeType string, fd int) error {
	b := wire.NewMessageBuilder()
	b.Str(mimeType).FD(fd)
	return send(o.conn, b, o.id, dataOfferReceive)
}

// Accept signals whether a drag target can accept mimeType ("" rejects).
func (o *DataOffer) Accept(serial uint32, mimeType string) error {
	b := wire.NewMessageBuilder()
	b.Uint(serial).Str(mimeType)
	return send(o.conn, b, o.id, dataOfferAccept)
}

// Finish notifies the source that a drag-and-drop transfer completed (v3+).
func (o *DataOffer) Finish() error {
	return send(o.conn, wire.NewMessageBuilder(), o.id, dataOfferFinish)
}

// SetActions sets the actions the destination supports and prefers (v3+).
func (o *DataOffer) SetActions(actions, preferred uint32) error {
	b := wire.NewMessageBuilder()
	b.Uint(actions).Uint(preferred)
	return send(o.conn, b, o.id, dataOfferSetActions)
}

// Destroy destroys the offer.
func (o *DataOffer) Destroy() error {
	if err := send(o.conn, wire.NewMessageBuilder(), o.id, dataOfferDestroy); err != nil {
		return err
	}
	o.conn.Objects().MarkDead(o.id)
	o.conn.Unregister(o.id)
	return nil
}

// Dispatch implements wlclient.Dispatchable for wl_data_offer events.
func (o *DataOffer) Dispatch(conn *wlclient.Connection, opcode wire.Opcode, ev *proto.EventDescriptor, dec *wire.Decoder, fds []int) error {
	switch ev.Name {
	case "offer":
		mime, err := dec.String()
		if err != nil {
			return err
		}
		o.mimeTypes = append(o.mimeTypes, mime)
	case "source_actions", "action":
		if _, err := dec.Uint32(); err != nil {
			return err
		}
	default:
		return &proto.UnknownOpcodeError{Type: proto.TypeDataOffer, Opcode: opcode}
	}
	return nil
}
