//go:build linux

package transport

import (
	"os"
	"syscall"
	"testing"
)

// socketpair returns two connected Transports standing in for a client and
// a compositor, following the socket-pair testing idiom used for this
// layer rather than depending on a real compositor being present.
func socketpair(t *testing.T) (client, server *Transport) {
	t.Helper()
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	client, err = FromFD(fds[0])
	if err != nil {
		t.Fatalf("FromFD(client): %v", err)
	}
	server, err = FromFD(fds[1])
	if err != nil {
		t.Fatalf("FromFD(server): %v", err)
	}
	return client, server
}

func TestWriteFlushRead(t *testing.T) {
	client, server := socketpair(t)
	defer client.Close()
	defer server.Close()

	payload := []byte("hello wayland")
	if err := client.Write(payload, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := client.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if err := server.FillBuffer(); err != nil {
		t.Fatalf("FillBuffer: %v", err)
	}
	if server.Buffered() != len(payload) {
		t.Fatalf("Buffered() = %d, want %d", server.Buffered(), len(payload))
	}
	got := server.Consume(len(payload))
	if string(got) != string(payload) {
		t.Fatalf("Consume() = %q, want %q", got, payload)
	}
}

func TestFDsArriveWithBytes(t *testing.T) {
	client, server := socketpair(t)
	defer client.Close()
	defer server.Close()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if err := client.Write([]byte("fd-carrying message"), []int{int(w.Fd())}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := client.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := server.FillBuffer(); err != nil {
		t.Fatalf("FillBuffer: %v", err)
	}
	if len(server.PendingFDs()) != 1 {
		t.Fatalf("PendingFDs() = %v, want exactly one fd", server.PendingFDs())
	}
}

func TestPeekHeaderReportsIncompleteFrame(t *testing.T) {
	client, server := socketpair(t)
	defer client.Close()
	defer server.Close()

	if err := client.Write([]byte{1, 2, 3}, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := client.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := server.FillBuffer(); err != nil {
		t.Fatalf("FillBuffer: %v", err)
	}
	if _, ok := server.PeekHeader(8); ok {
		t.Fatalf("PeekHeader(8) reported a full header from only 3 buffered bytes")
	}
}

func TestWouldBlockOnEmptyNonBlockingRead(t *testing.T) {
	client, server := socketpair(t)
	defer client.Close()
	defer server.Close()

	if err := syscall.SetNonblock(int(server.file.Fd()), true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}
	if err := server.FillBuffer(); err != ErrWouldBlock {
		t.Fatalf("FillBuffer() on empty non-blocking socket = %v, want ErrWouldBlock", err)
	}
}
