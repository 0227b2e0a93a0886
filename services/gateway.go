package services

import (
	"log"

	"github.com/akinalp/huddle/models"
	"github.com/akinalp/huddle/registry"
	"github.com/akinalp/huddle/ws"
)

// Gateway, iç oda/kullanıcı durumunu transport fan-out çağrılarına çevirir.
//
// Hub sadece bağlantı bazlı teslimat bilir; "bu odanın üyeleri" veya "bu
// kullanıcının cihazları" çözümü burada yapılır — her çağrıda registry'den,
// cache'lenmiş liste üzerinden DEĞİL. Böylece broadcast her zaman o anki
// üyeliğe gider.
//
// Disconnect temizlik sırası da Gateway'e aittir (transport tetikler):
// odalar terk edilir ve roster broadcast'leri yapılır, bağlantı kaydı en
// SON silinir — temizlik broadcast'leri sırasında bağlantı hâlâ çözülebilir.
type Gateway interface {
	BroadcastAll(event ws.Event)

	// BroadcastToRoom, odanın güncel üyelerine teslim eder.
	// excludeConnID boş değilse o bağlantı atlanır (typing UX kuralı).
	BroadcastToRoom(roomID string, event ws.Event, excludeConnID string)

	// EmitToUser, kullanıcının TÜM bağlantılarına teslim eder (multi-device).
	EmitToUser(userID string, event ws.Event)

	// HandleConnect, transport'un bildirdiği yeni bağlantıyı kaydeder.
	HandleConnect(connID, userID string)

	// HandleDisconnect, disconnect temizlik sırasını yürütür.
	HandleDisconnect(connID string)
}

type gateway struct {
	conns registry.ConnectionRegistry
	rooms registry.RoomRegistry
	pub   ws.EventPublisher
}

// NewGateway, constructor — interface döner.
func NewGateway(conns registry.ConnectionRegistry, rooms registry.RoomRegistry, pub ws.EventPublisher) Gateway {
	return &gateway{conns: conns, rooms: rooms, pub: pub}
}

func (g *gateway) BroadcastAll(event ws.Event) {
	g.pub.BroadcastToAll(event)
}

func (g *gateway) BroadcastToRoom(roomID string, event ws.Event, excludeConnID string) {
	// Üyeler teslimat anında çözülür — join/leave ile yarışan broadcast'ler
	// her zaman registry'nin o anki durumunu görür.
	for _, member := range g.rooms.RoomUsers(roomID) {
		if member.ConnectionID == excludeConnID {
			continue
		}
		g.pub.EmitToConnection(member.ConnectionID, event)
	}
}

func (g *gateway) EmitToUser(userID string, event ws.Event) {
	for _, connID := range g.conns.ConnectionsOf(userID) {
		g.pub.EmitToConnection(connID, event)
	}
}

func (g *gateway) HandleConnect(connID, userID string) {
	g.conns.AddConnection(connID, userID)
	log.Printf("[gateway] connection registered: conn=%s user=%s", connID, userID)
}

func (g *gateway) HandleDisconnect(connID string) {
	// 1. Bağlantının üye olduğu her odadan zorunlu çıkış. LeaveAllRooms
	//    her oda için ayrılan üyenin snapshot'ını leave'den önce alır.
	for _, left := range g.rooms.LeaveAllRooms(connID) {
		if !left.Found {
			continue
		}
		// 2. Kalan üyelere roster değişikliği. Oda son üyeyle birlikte
		//    silindiyse RoomUsers boş döner ve kimseye bir şey gitmez.
		g.BroadcastToRoom(left.RoomID, ws.Event{
			Name: ws.OpUserLeft,
			Data: ws.UserLeftData{
				RoomID: left.RoomID,
				User:   userView(left.User),
				Users:  userViews(g.rooms.RoomUsers(left.RoomID)),
			},
		}, "")
		log.Printf("[gateway] forced leave: conn=%s room=%s", connID, left.RoomID)
	}

	// 3. Bağlantı kaydı EN SON silinir — yukarıdaki broadcast'ler sırasında
	//    bağlantı hâlâ çözülebilir olmalıdır.
	g.conns.RemoveConnection(connID)
	log.Printf("[gateway] connection removed: conn=%s", connID)
}

// userView, RoomUser snapshot'ını wire görünümüne indirger.
func userView(u models.RoomUser) ws.UserView {
	return ws.UserView{UserID: u.UserID, Username: u.Username}
}

// userViews, roster'ı wire görünümüne çevirir. Boş roster boş slice döner
// (JSON'da null değil [] serialize edilsin diye).
func userViews(users []models.RoomUser) []ws.UserView {
	views := make([]ws.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	return views
}
