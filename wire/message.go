package wire

// Message is a fully framed Wayland wire message, either a request about to
// be sent or an event just decoded from the transport.
type Message struct {
	ObjectID uint32
	Opcode   Opcode
	Args     []byte
	FDs      []int
}

// Size returns the total wire size of m in bytes.
func (m *Message) Size() int { return HeaderSize + len(m.Args) }

// Encode renders m to its wire bytes. The returned slice does not include
// m.FDs; those travel over the ancillary channel (see package transport).
func Encode(m *Message) ([]byte, error) {
	total := HeaderSize + len(m.Args)
	if total > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}
	buf := make([]byte, total)
	EncodeHeader(buf, m.ObjectID, m.Opcode, total)
	copy(buf[HeaderSize:], m.Args)
	return buf, nil
}

// Decode parses one complete message from the front of buf, given the fds
// received alongside it. It does not consume fds itself (the fd/byte
// alignment for a *specific* message is the caller's responsibility, since
// SCM_RIGHTS ancillary data is attached to a read, not to a byte offset);
// decoded argument accessors pop from fds in declaration order.
func Decode(buf []byte, fds *FDQueue) (*Message, int, error) {
	objectID, opcode, size, err := DecodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	if len(buf) < size {
		return nil, 0, &TruncatedError{Reason: "message body"}
	}
	args := make([]byte, size-HeaderSize)
	copy(args, buf[HeaderSize:size])
	return &Message{ObjectID: objectID, Opcode: opcode, Args: args}, size, nil
}

// MessageBuilder is a fluent, reusable scratch buffer for constructing a
// single outgoing message's arguments (spec §4.2). It borrows fds for the
// duration of the send; it never closes them. If Build is never called on a
// populated builder, call Cancel to drop the borrowed fd references (the
// builder does not own them, so Cancel never closes anything — it simply
// forgets them so a reused builder starts clean).
type MessageBuilder struct {
	enc     *Encoder
	fds     []int
	sawNull bool
	nullArg string
}

// NewMessageBuilder creates an empty MessageBuilder.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{enc: NewEncoder(256)}
}

// Reset clears the builder for reuse without closing any queued fds (they
// are borrowed, not owned — see struct doc).
func (b *MessageBuilder) Reset() {
	b.enc.Reset()
	b.fds = b.fds[:0]
	b.sawNull = false
	b.nullArg = ""
}

// Cancel is Reset's name when the builder is being abandoned rather than reused.
func (b *MessageBuilder) Cancel() { b.Reset() }

func (b *MessageBuilder) Int(v int32) *MessageBuilder {
	b.enc.PutInt32(v)
	return b
}

func (b *MessageBuilder) Uint(v uint32) *MessageBuilder {
	b.enc.PutUint32(v)
	return b
}

func (b *MessageBuilder) FixedArg(v Fixed) *MessageBuilder {
	b.enc.PutFixed(v)
	return b
}

// Object appends a non-nullable object-id argument. A null (0) id here is
// recorded as a deferred error surfaced by Build, so that building fails
// before any bytes are written to the wire (invariant 6), while still
// letting the fluent chain run to completion.
func (b *MessageBuilder) Object(name string, id uint32) *MessageBuilder {
	if id == 0 && !b.sawNull {
		b.sawNull = true
		b.nullArg = name
	}
	b.enc.PutObject(id)
	return b
}

// MaybeObject appends a nullable object-id argument; 0 is valid.
func (b *MessageBuilder) MaybeObject(id uint32) *MessageBuilder {
	b.enc.PutObject(id)
	return b
}

func (b *MessageBuilder) NewID(id uint32) *MessageBuilder {
	b.enc.PutNewID(id)
	return b
}

func (b *MessageBuilder) NewIDDynamic(iface string, version uint32, id uint32) *MessageBuilder {
	b.enc.PutNewIDDynamic(iface, version, id)
	return b
}

func (b *MessageBuilder) Str(s string) *MessageBuilder {
	b.enc.PutString(s)
	return b
}

func (b *MessageBuilder) Array(data []byte) *MessageBuilder {
	b.enc.PutArray(data)
	return b
}

// FD queues a file descriptor to accompany the message, in call order.
func (b *MessageBuilder) FD(fd int) *MessageBuilder {
	b.fds = append(b.fds, fd)
	return b
}

// Build finalizes the message for objectID/opcode. It fails with
// ErrNullObject if a non-nullable Object() call saw a 0 id, and with
// ErrMessageTooLarge if the payload does not fit the wire header's size
// field. On success the builder is left populated; call Reset before reuse.
func (b *MessageBuilder) Build(objectID uint32, opcode Opcode) (*Message, error) {
	if b.sawNull {
		return nil, ErrNullObject
	}
	total := HeaderSize + len(b.enc.Bytes())
	if total > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}
	args := make([]byte, len(b.enc.Bytes()))
	copy(args, b.enc.Bytes())
	fds := make([]int, len(b.fds))
	copy(fds, b.fds)
	return &Message{ObjectID: objectID, Opcode: opcode, Args: args, FDs: fds}, nil
}
