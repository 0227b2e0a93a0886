package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/huddle/models"
	"github.com/akinalp/huddle/registry"
	"github.com/akinalp/huddle/ws"
)

// delivery, fakePublisher'ın kaydettiği tek bir teslimat.
// connID "*" ise BroadcastToAll çağrısıdır.
type delivery struct {
	connID string
	event  ws.Event
}

// fakePublisher, ws.EventPublisher'ın test kaydedicisi — hiçbir şey
// göndermez, sadece kimin ne aldığını biriktirir.
type fakePublisher struct {
	deliveries []delivery
}

var _ ws.EventPublisher = (*fakePublisher)(nil)

func (f *fakePublisher) BroadcastToAll(event ws.Event) {
	f.deliveries = append(f.deliveries, delivery{connID: "*", event: event})
}

func (f *fakePublisher) EmitToConnection(connID string, event ws.Event) bool {
	f.deliveries = append(f.deliveries, delivery{connID: connID, event: event})
	return true
}

// eventsFor, connID'ye giden event adlarını sırayla döner.
func (f *fakePublisher) eventsFor(connID string) []string {
	var names []string
	for _, d := range f.deliveries {
		if d.connID == connID {
			names = append(names, d.event.Name)
		}
	}
	return names
}

func (f *fakePublisher) reset() {
	f.deliveries = nil
}

// newTestGateway, in-memory registry'ler + kayıt fake'i ile tam bir gateway
// kurar. Servis testleri de aynı kurulumu kullanır.
func newTestGateway() (Gateway, registry.ConnectionRegistry, registry.RoomRegistry, *fakePublisher) {
	conns := registry.NewMemoryConnectionRegistry()
	rooms := registry.NewMemoryRoomRegistry()
	pub := &fakePublisher{}
	return NewGateway(conns, rooms, pub), conns, rooms, pub
}

func join(rooms registry.RoomRegistry, roomID, connID, username string, at time.Time) {
	rooms.JoinRoom(roomID, models.RoomUser{
		ConnectionID: connID,
		UserID:       connID,
		Username:     username,
		JoinedAt:     at,
	})
}

func TestGatewayBroadcastToRoom(t *testing.T) {
	g, _, rooms, pub := newTestGateway()
	now := time.Now()

	join(rooms, "r1", "c1", "alice", now)
	join(rooms, "r1", "c2", "bob", now.Add(time.Millisecond))
	join(rooms, "r2", "c3", "carol", now)

	g.BroadcastToRoom("r1", ws.Event{Name: "test:event"}, "")

	assert.Equal(t, []string{"test:event"}, pub.eventsFor("c1"))
	assert.Equal(t, []string{"test:event"}, pub.eventsFor("c2"))
	assert.Empty(t, pub.eventsFor("c3"), "other rooms must not receive the event")
}

func TestGatewayBroadcastToRoomExcludesSender(t *testing.T) {
	g, _, rooms, pub := newTestGateway()
	now := time.Now()

	join(rooms, "r1", "c1", "alice", now)
	join(rooms, "r1", "c2", "bob", now.Add(time.Millisecond))

	g.BroadcastToRoom("r1", ws.Event{Name: "test:event"}, "c1")

	assert.Empty(t, pub.eventsFor("c1"))
	assert.Equal(t, []string{"test:event"}, pub.eventsFor("c2"))
}

func TestGatewayEmitToUserMultiDevice(t *testing.T) {
	g, conns, _, pub := newTestGateway()

	conns.AddConnection("c1", "u1")
	conns.AddConnection("c2", "u1")
	conns.AddConnection("c3", "u2")

	g.EmitToUser("u1", ws.Event{Name: "test:direct"})

	assert.Equal(t, []string{"test:direct"}, pub.eventsFor("c1"))
	assert.Equal(t, []string{"test:direct"}, pub.eventsFor("c2"))
	assert.Empty(t, pub.eventsFor("c3"))
}

func TestGatewayBroadcastAll(t *testing.T) {
	g, _, _, pub := newTestGateway()

	g.BroadcastAll(ws.Event{Name: "test:all"})

	assert.Equal(t, []string{"test:all"}, pub.eventsFor("*"))
}

func TestGatewayHandleConnect(t *testing.T) {
	g, conns, _, _ := newTestGateway()

	g.HandleConnect("c1", "u1")

	userID, ok := conns.UserOf("c1")
	require.True(t, ok)
	assert.Equal(t, "u1", userID)
}

// Disconnect temizliği: bağlantı tüm odalardan çıkarılır, kalan üyeler oda
// başına bir room:user_left alır, bağlantı kaydı en son silinir.
func TestGatewayHandleDisconnect(t *testing.T) {
	g, conns, rooms, pub := newTestGateway()
	now := time.Now()

	conns.AddConnection("c1", "u1")
	conns.AddConnection("c2", "u2")
	conns.AddConnection("c3", "u3")

	join(rooms, "r1", "c1", "alice", now)
	join(rooms, "r1", "c2", "bob", now.Add(time.Millisecond))
	join(rooms, "r2", "c1", "alice", now)
	join(rooms, "r2", "c3", "carol", now.Add(time.Millisecond))

	g.HandleDisconnect("c1")

	// Kalan üyeler ayrılan kullanıcıyı ve kalan roster'ı görür.
	require.Equal(t, []string{ws.OpUserLeft}, pub.eventsFor("c2"))
	require.Equal(t, []string{ws.OpUserLeft}, pub.eventsFor("c3"))

	var left ws.UserLeftData
	for _, d := range pub.deliveries {
		if d.connID == "c2" {
			left = d.event.Data.(ws.UserLeftData)
		}
	}
	assert.Equal(t, "r1", left.RoomID)
	assert.Equal(t, "alice", left.User.Username)
	require.Len(t, left.Users, 1)
	assert.Equal(t, "bob", left.Users[0].Username)

	// Ayrılan kendisi hiçbir user_left almaz.
	assert.Empty(t, pub.eventsFor("c1"))

	// Üyelik ve bağlantı kaydı tamamen temizlenmiştir.
	assert.Empty(t, rooms.UserRooms("c1"))
	_, ok := conns.UserOf("c1")
	assert.False(t, ok)
}

// Tek üyeli odadan disconnect — oda silinir ve kimseye broadcast gitmez.
func TestGatewayHandleDisconnectLastMember(t *testing.T) {
	g, conns, rooms, pub := newTestGateway()

	conns.AddConnection("c1", "u1")
	join(rooms, "r1", "c1", "alice", time.Now())

	g.HandleDisconnect("c1")

	assert.False(t, rooms.RoomExists("r1"))
	assert.Empty(t, pub.deliveries)
}

func TestGatewayHandleDisconnectUnknownConn(t *testing.T) {
	g, _, _, pub := newTestGateway()

	g.HandleDisconnect("ghost")

	assert.Empty(t, pub.deliveries)
}
