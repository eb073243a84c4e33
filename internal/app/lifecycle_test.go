package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAssignsPeerIDAndConfirms(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, s1 := newTestConn("c1")

	lc.Join(c1, "r1")

	require.NotEmpty(t, c1.PeerID)
	assert.True(t, strings.HasPrefix(string(c1.PeerID), "peer_"))

	joined := s1.last(t)
	assert.Equal(t, "joined", joined["type"])
	assert.Equal(t, "r1", joined["room"])
	assert.Equal(t, float64(1), joined["count"])
	assert.Equal(t, "waiting_for_peers", joined["status"])
	assert.Equal(t, string(c1.PeerID), joined["peerId"])
	assert.Equal(t, []any{string(c1.PeerID)}, joined["roles"])
	assert.Equal(t, "Successfully joined room r1", joined["message"])
}

func TestJoinNotifiesExistingMembers(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, s1 := newTestConn("c1")
	c2, s2 := newTestConn("c2")

	lc.Join(c1, "r1")
	lc.Join(c2, "r1")

	joined := s2.last(t)
	assert.Equal(t, float64(2), joined["count"])
	assert.Equal(t, "peers_available", joined["status"])
	assert.ElementsMatch(t, []any{string(c1.PeerID), string(c2.PeerID)}, joined["roles"])

	notices := s1.byType(t, "peer-joined")
	require.Len(t, notices, 1)
	assert.Equal(t, "r1", notices[0]["room"])
	assert.Equal(t, float64(2), notices[0]["count"])
	assert.Equal(t, string(c2.PeerID), notices[0]["newPeerId"])

	// The joiner itself gets no peer-joined.
	assert.Empty(t, s2.byType(t, "peer-joined"))
}

func TestPeerIDStableAcrossLeaveRejoin(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, _ := newTestConn("c1")

	lc.Join(c1, "r1")
	first := c1.PeerID
	require.NotEmpty(t, first)

	lc.Leave(c1, "r1")
	assert.Empty(t, c1.RoomID)

	lc.Join(c1, "r1")
	assert.Equal(t, first, c1.PeerID)
}

func TestJoinWhileJoinedMovesRooms(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, s1 := newTestConn("c1")
	c2, _ := newTestConn("c2")

	lc.Join(c1, "a")
	lc.Join(c2, "a")
	id := c2.PeerID

	lc.Join(c2, "b")

	// Old room shrank and its member heard about it.
	assert.Equal(t, 1, reg.MemberCount("a"))
	left := s1.byType(t, "peer-left")
	require.Len(t, left, 1)
	assert.Equal(t, string(id), left[0]["leftPeerId"])
	assert.Equal(t, "waiting_for_peers", left[0]["status"])

	// The mover kept its id and occupies exactly one room.
	assert.Equal(t, id, c2.PeerID)
	assert.Equal(t, "b", string(c2.RoomID))
	assert.Equal(t, 1, reg.MemberCount("b"))
}

func TestLeaveNotifiesRemaining(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, s1 := newTestConn("c1")
	c2, s2 := newTestConn("c2")
	c3, s3 := newTestConn("c3")

	lc.Join(c1, "r1")
	lc.Join(c2, "r1")
	lc.Join(c3, "r1")
	leaving := c1.PeerID

	lc.Leave(c1, "r1")

	for _, s := range []*fakeSender{s2, s3} {
		left := s.byType(t, "peer-left")
		require.Len(t, left, 1)
		assert.Equal(t, float64(2), left[0]["count"])
		assert.Equal(t, "peers_available", left[0]["status"])
		assert.Equal(t, string(leaving), left[0]["leftPeerId"])
		assert.Equal(t, "A peer has left the room", left[0]["message"])
	}

	confirm := s1.last(t)
	assert.Equal(t, "left", confirm["type"])
	assert.Equal(t, "r1", confirm["room"])
	assert.Equal(t, string(leaving), confirm["peerId"])
	assert.Empty(t, c1.RoomID)
	assert.Equal(t, leaving, c1.PeerID)
}

func TestLeaveLastMemberDeletesRoom(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, _ := newTestConn("c1")

	lc.Join(c1, "r1")
	require.True(t, reg.HasRoom("r1"))

	lc.Leave(c1, "r1")
	assert.False(t, reg.HasRoom("r1"))
	assert.Zero(t, reg.RoomCount())
}

func TestLeaveUnknownRoomStillConfirms(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, s1 := newTestConn("c1")

	lc.Leave(c1, "nope")

	confirm := s1.last(t)
	assert.Equal(t, "left", confirm["type"])
	assert.Equal(t, "nope", confirm["room"])
	assert.False(t, reg.HasRoom("nope"))
}

func TestDisconnectNotifiesRemaining(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, s1 := newTestConn("c1")
	c2, s2 := newTestConn("c2")

	lc.Join(c1, "r1")
	lc.Join(c2, "r1")
	gone := c1.PeerID

	s1.close()
	lc.Disconnect(c1)

	left := s2.byType(t, "peer-left")
	require.Len(t, left, 1)
	assert.Equal(t, float64(1), left[0]["count"])
	assert.Equal(t, "waiting_for_peers", left[0]["status"])
	assert.Equal(t, string(gone), left[0]["leftPeerId"])
	assert.Equal(t, "A peer has disconnected", left[0]["message"])

	// Room survives with the remaining member; nothing was written to the
	// closed connection.
	assert.True(t, reg.HasRoom("r1"))
	assert.Equal(t, 1, reg.MemberCount("r1"))
	assert.Empty(t, s1.byType(t, "left"))
}

func TestDisconnectAfterLeaveIsNoop(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, _ := newTestConn("c1")
	c2, s2 := newTestConn("c2")

	lc.Join(c1, "r1")
	lc.Join(c2, "r1")
	lc.Leave(c1, "r1")

	before := len(s2.messages(t))
	lc.Disconnect(c1)
	assert.Len(t, s2.messages(t), before)
}

func TestDisconnectLastMemberDeletesRoom(t *testing.T) {
	reg := NewRegistry()
	lc := NewLifecycle(reg)
	c1, s1 := newTestConn("c1")

	lc.Join(c1, "r1")
	s1.close()
	lc.Disconnect(c1)

	assert.False(t, reg.HasRoom("r1"))
}
