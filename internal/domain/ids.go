// Package domain contains the value types of the relay: identifiers and
// room status. No transport or lifecycle logic here.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// RoomID is the caller-supplied room identifier.
	RoomID string

	// PeerID is the application-level peer handle, assigned on first join.
	// Stable for the lifetime of a joined stretch on one connection; not
	// reused across process restarts.
	PeerID string
)

// NewPeerID builds a fresh peer id from randomness plus the current time,
// e.g. "peer_3f9a1c04e_mfx2k1q9". Uniqueness among live peers is
// probabilistic, which is enough for a single process.
func NewPeerID() PeerID {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return PeerID(fmt.Sprintf("peer_%s_%s", random, strconv.FormatInt(time.Now().UnixMilli(), 36)))
}
