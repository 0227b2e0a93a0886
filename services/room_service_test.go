package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/huddle/pkg"
	"github.com/akinalp/huddle/ws"
)

func TestRoomServiceJoin(t *testing.T) {
	g, conns, rooms, pub := newTestGateway()
	svc := NewRoomService(conns, rooms, g)

	conns.AddConnection("conn-a", "u1")
	require.NoError(t, svc.Join("conn-a", ws.JoinRoomData{RoomID: "r1", Username: "alice"}))

	// Katılan dahil tüm üyeler güncel roster'ı alır.
	require.Equal(t, []string{ws.OpUserJoined}, pub.eventsFor("conn-a"))

	data := pub.deliveries[0].event.Data.(ws.UserJoinedData)
	assert.Equal(t, "r1", data.RoomID)
	assert.Equal(t, "alice", data.User.Username)
	assert.Equal(t, "u1", data.User.UserID)
	require.Len(t, data.Users, 1)

	pub.reset()
	conns.AddConnection("conn-b", "u2")
	require.NoError(t, svc.Join("conn-b", ws.JoinRoomData{RoomID: "r1", Username: "bob"}))

	// İlk üye de yeni katılımı görür; roster iki kişiliktir.
	require.Equal(t, []string{ws.OpUserJoined}, pub.eventsFor("conn-a"))
	require.Equal(t, []string{ws.OpUserJoined}, pub.eventsFor("conn-b"))

	data = pub.deliveries[0].event.Data.(ws.UserJoinedData)
	require.Len(t, data.Users, 2)
	assert.Equal(t, "alice", data.Users[0].Username)
	assert.Equal(t, "bob", data.Users[1].Username)
}

// Kayıtsız bağlantının join'i: userId connection id'ye düşer.
func TestRoomServiceJoinWithoutConnectionRecord(t *testing.T) {
	g, conns, rooms, pub := newTestGateway()
	svc := NewRoomService(conns, rooms, g)

	require.NoError(t, svc.Join("conn-a", ws.JoinRoomData{RoomID: "r1", Username: "alice"}))

	data := pub.deliveries[0].event.Data.(ws.UserJoinedData)
	assert.Equal(t, "conn-a", data.User.UserID)
}

func TestRoomServiceLeave(t *testing.T) {
	g, conns, rooms, pub := newTestGateway()
	svc := NewRoomService(conns, rooms, g)

	require.NoError(t, svc.Join("conn-a", ws.JoinRoomData{RoomID: "r1", Username: "alice"}))
	time.Sleep(time.Millisecond)
	require.NoError(t, svc.Join("conn-b", ws.JoinRoomData{RoomID: "r1", Username: "bob"}))
	pub.reset()

	require.NoError(t, svc.Leave("conn-a", ws.LeaveRoomData{RoomID: "r1"}))

	// Ayrılan artık üye değildir ve broadcast almaz.
	assert.Empty(t, pub.eventsFor("conn-a"))
	require.Equal(t, []string{ws.OpUserLeft}, pub.eventsFor("conn-b"))

	data := pub.deliveries[0].event.Data.(ws.UserLeftData)
	assert.Equal(t, "alice", data.User.Username)
	require.Len(t, data.Users, 1)
	assert.Equal(t, "bob", data.Users[0].Username)
}

// Üyesi olunmayan odadan leave — sessiz no-op.
func TestRoomServiceLeaveNotMember(t *testing.T) {
	g, conns, rooms, pub := newTestGateway()
	svc := NewRoomService(conns, rooms, g)

	require.NoError(t, svc.Leave("conn-a", ws.LeaveRoomData{RoomID: "r1"}))
	assert.Empty(t, pub.deliveries)
}

func TestRoomServiceTyping(t *testing.T) {
	g, conns, rooms, pub := newTestGateway()
	svc := NewRoomService(conns, rooms, g)

	require.NoError(t, svc.Join("conn-a", ws.JoinRoomData{RoomID: "r1", Username: "alice"}))
	time.Sleep(time.Millisecond)
	require.NoError(t, svc.Join("conn-b", ws.JoinRoomData{RoomID: "r1", Username: "bob"}))
	pub.reset()

	require.NoError(t, svc.Typing("conn-a", ws.TypingData{RoomID: "r1", IsTyping: true}))

	// Gönderen kendi typing göstergesini ASLA almaz.
	assert.Empty(t, pub.eventsFor("conn-a"))
	require.Equal(t, []string{ws.OpTyping}, pub.eventsFor("conn-b"))

	data := pub.deliveries[0].event.Data.(ws.TypingBroadcast)
	assert.Equal(t, "alice", data.Username)
	assert.True(t, data.IsTyping)
}

func TestRoomServiceTypingNotInRoom(t *testing.T) {
	g, conns, rooms, _ := newTestGateway()
	svc := NewRoomService(conns, rooms, g)

	err := svc.Typing("conn-a", ws.TypingData{RoomID: "r1", IsTyping: true})
	assert.ErrorIs(t, err, pkg.ErrNotInRoom)
}
