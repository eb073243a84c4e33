package domain

// Status tells a client whether it is alone in its room.
type Status string

const (
	StatusWaitingForPeers Status = "waiting_for_peers"
	StatusPeersAvailable  Status = "peers_available"
)

// StatusFor maps a member count to the status reported alongside it.
func StatusFor(count int) Status {
	if count == 1 {
		return StatusWaitingForPeers
	}
	return StatusPeersAvailable
}
