// Package core holds the transport-facing connection record. The registry
// in internal/app is the only writer of its membership fields.
package core

import "relay/internal/domain"

// Frame is a single encoded wire message.
type Frame []byte

// Sender abstracts the outbound half of a transport connection.
// Owned by the adapter; the adapter must close it. TrySend never blocks:
// it enqueues or fails.
type Sender interface {
	TrySend(Frame) error
	Open() bool
}

// Conn decorates one live transport connection with relay identity.
// PeerID and RoomID are guarded by the registry lock; nothing outside
// internal/app may write them.
type Conn struct {
	ID     string
	PeerID domain.PeerID
	RoomID domain.RoomID

	sender Sender
}

func NewConn(id string, s Sender) *Conn {
	return &Conn{ID: id, sender: s}
}

// TrySend forwards a frame to the transport without blocking.
func (c *Conn) TrySend(f Frame) error { return c.sender.TrySend(f) }

// Open reports whether the transport still accepts frames.
func (c *Conn) Open() bool { return c.sender.Open() }
