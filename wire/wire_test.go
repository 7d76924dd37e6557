package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestFixedConversion(t *testing.T) {
	tests := []struct {
		name  string
		float float64
	}{
		{"zero", 0.0},
		{"positive integer", 42.0},
		{"negative integer", -42.0},
		{"positive fraction", 3.5},
		{"negative fraction", -3.5},
		{"small positive", 0.125},
		{"small negative", -0.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixedFromFloat(tt.float).Float()
			const epsilon = 0.004
			if diff := got - tt.float; diff < -epsilon || diff > epsilon {
				t.Errorf("FixedFromFloat(%v).Float() = %v, want %v", tt.float, got, tt.float)
			}
		})
	}
}

func TestFixedFromInt(t *testing.T) {
	tests := []int32{0, 42, -42, 8388607, -8388608}
	for _, v := range tests {
		if got := FixedFromInt(v).Int(); got != v {
			t.Errorf("FixedFromInt(%d).Int() = %d, want %d", v, got, v)
		}
	}
}

func TestEncoderPrimitives(t *testing.T) {
	enc := NewEncoder(16)
	enc.PutInt32(0x12345678)
	enc.PutInt32(-1)
	want := []byte{0x78, 0x56, 0x34, 0x12, 0xFF, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(enc.Bytes(), want) {
		t.Fatalf("got %x, want %x", enc.Bytes(), want)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "wl_shm", "a", "abcd", "abc"} {
		enc := NewEncoder(32)
		enc.PutString(s)
		if len(enc.Bytes())%4 != 0 {
			t.Fatalf("string(%q) encoded length %d not 4-byte aligned", s, len(enc.Bytes()))
		}
		dec := NewDecoder(enc.Bytes(), nil)
		got, err := dec.String()
		if err != nil {
			t.Fatalf("decode string(%q): %v", s, err)
		}
		if got != s {
			t.Fatalf("round trip string(%q) = %q", s, got)
		}
		if dec.HasMore() {
			t.Fatalf("string(%q): leftover bytes after decode", s)
		}
	}
}

func TestArrayRoundTrip(t *testing.T) {
	for _, data := range [][]byte{nil, {1}, {1, 2, 3}, {1, 2, 3, 4}, {1, 2, 3, 4, 5}} {
		enc := NewEncoder(32)
		enc.PutArray(data)
		if len(enc.Bytes())%4 != 0 {
			t.Fatalf("array(%v) encoded length not aligned", data)
		}
		dec := NewDecoder(enc.Bytes(), nil)
		got, err := dec.Array()
		if err != nil {
			t.Fatalf("decode array: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("round trip array(%v) = %v", data, got)
		}
	}
}

func TestFDQueueOrderAndUnderrun(t *testing.T) {
	q := NewFDQueue([]int{7, 8, 9})
	for _, want := range []int{7, 8, 9} {
		got, err := q.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if got != want {
			t.Fatalf("Pop() = %d, want %d", got, want)
		}
	}
	if _, err := q.Pop(); err == nil {
		t.Fatalf("expected FDUnderrunError on empty queue")
	} else if !errors.As(err, new(*FDUnderrunError)) {
		t.Fatalf("expected *FDUnderrunError, got %T", err)
	}
}

func TestMessageBuilderRejectsNullObject(t *testing.T) {
	b := NewMessageBuilder()
	b.Object("buffer", 0).Int(0).Int(0)
	if _, err := b.Build(5, 1); !errors.Is(err, ErrNullObject) {
		t.Fatalf("Build() error = %v, want ErrNullObject", err)
	}
}

func TestMessageBuilderAllowsMaybeObjectNull(t *testing.T) {
	b := NewMessageBuilder()
	b.MaybeObject(0)
	if _, err := b.Build(5, 1); err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}
}

// TestS1DisplaySync reproduces spec §8 scenario S1: display.sync allocating
// id=2 on object 1. The second header word is size<<16 | opcode, so its
// little-endian bytes are the opcode (0) followed by the size (12).
// Expected bytes:
//
//	01 00 00 00   00 00 0C 00   02 00 00 00
func TestS1DisplaySync(t *testing.T) {
	b := NewMessageBuilder()
	b.NewID(2)
	msg, err := b.Build(1, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x0C, 0x00,
		0x02, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("S1 encoding = % x, want % x", got, want)
	}
	if len(msg.FDs) != 0 {
		t.Fatalf("S1 should carry no fds, got %v", msg.FDs)
	}
}

// TestS2RegistryBind reproduces spec §8 scenario S2: registry.bind(name=7,
// interface="wl_shm", version=1) on object 3, allocating id=4. Size is the
// 8-byte header plus name (4), "wl_shm" (4-byte length + 7 bytes + 1 pad),
// version (4) and new_id (4): 32.
func TestS2RegistryBind(t *testing.T) {
	b := NewMessageBuilder()
	b.Uint(7)
	b.NewIDDynamic("wl_shm", 1, 4)
	msg, err := b.Build(3, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if msg.Size() != 32 {
		t.Fatalf("S2 message size = %d, want 32", msg.Size())
	}
	bytesOut, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	objID, opcode, size, err := DecodeHeader(bytesOut)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if objID != 3 || opcode != 0 || size != 32 {
		t.Fatalf("S2 header = (%d,%d,%d), want (3,0,32)", objID, opcode, size)
	}
	dec := NewDecoder(bytesOut[HeaderSize:], nil)
	name, err := dec.Uint32()
	if err != nil || name != 7 {
		t.Fatalf("name = %d, %v", name, err)
	}
	iface, err := dec.String()
	if err != nil || iface != "wl_shm" {
		t.Fatalf("interface = %q, %v", iface, err)
	}
	version, err := dec.Uint32()
	if err != nil || version != 1 {
		t.Fatalf("version = %d, %v", version, err)
	}
	id, err := dec.NewID()
	if err != nil || id != 4 {
		t.Fatalf("new_id = %d, %v", id, err)
	}
}

// TestS3ShmCreatePool reproduces spec §8 scenario S3: shm.create_pool on
// object 4 allocating id=5 with one attached fd.
func TestS3ShmCreatePool(t *testing.T) {
	b := NewMessageBuilder()
	b.NewID(5)
	b.Int(4096)
	b.FD(42)
	msg, err := b.Build(4, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if msg.Size() != 16 {
		t.Fatalf("S3 message size = %d, want 16", msg.Size())
	}
	if len(msg.FDs) != 1 || msg.FDs[0] != 42 {
		t.Fatalf("S3 fds = %v, want [42]", msg.FDs)
	}
}

func TestDecodeHeaderRejectsShortAndUndersizedMessages(t *testing.T) {
	if _, _, _, err := DecodeHeader([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error decoding short header")
	}
	buf := make([]byte, 8)
	EncodeHeader(buf, 1, 0, 4) // size < header
	if _, _, _, err := DecodeHeader(buf); err == nil {
		t.Fatalf("expected error for size < header")
	}
}

func TestMessageTooLarge(t *testing.T) {
	b := NewMessageBuilder()
	b.Array(make([]byte, MaxMessageSize))
	if _, err := b.Build(1, 0); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("Build() error = %v, want ErrMessageTooLarge", err)
	}
}

func TestAlignmentInvariant(t *testing.T) {
	// Every message emitted must be a multiple of 4 bytes, and the size
	// field must equal that length (invariant 2).
	b := NewMessageBuilder()
	b.Str("a")
	b.Int(1)
	msg, err := b.Build(1, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(out)%4 != 0 {
		t.Fatalf("message length %d not 4-byte aligned", len(out))
	}
	_, _, size, err := DecodeHeader(out)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if size != len(out) {
		t.Fatalf("size field %d != actual length %d", size, len(out))
	}
}
