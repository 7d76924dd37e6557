//go:build linux

package wlclient

import "fmt"

// ProtocolError is synthesized from the compositor's wl_display.error
// event. It is always fatal: DispatchPending returns it once, the connection
// is poisoned, and every subsequent Send, Flush or DispatchPending on it
// fails with ErrConnectionClosed (§7).
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wlclient: protocol error on object %d (code %d): %s", e.ObjectID, e.Code, e.Message)
}
