package services

import (
	"log"
	"time"

	"github.com/akinalp/huddle/models"
	"github.com/akinalp/huddle/pkg"
	"github.com/akinalp/huddle/registry"
	"github.com/akinalp/huddle/ws"
)

// RoomService, oda üyeliği event'lerinin (join/leave/typing) iş mantığı.
//
// Handler'lar stateless'tır — tüm durum registry'lerde yaşar; her metod
// (senderConnID, payload) üzerinden çalışır.
type RoomService interface {
	Join(connID string, d ws.JoinRoomData) error
	Leave(connID string, d ws.LeaveRoomData) error
	Typing(connID string, d ws.TypingData) error
}

type roomService struct {
	conns   registry.ConnectionRegistry
	rooms   registry.RoomRegistry
	gateway Gateway
}

// NewRoomService, constructor.
func NewRoomService(conns registry.ConnectionRegistry, rooms registry.RoomRegistry, gateway Gateway) RoomService {
	return &roomService{conns: conns, rooms: rooms, gateway: gateway}
}

// Join, gönderen bağlantıyı odaya ekler ve TÜM üyelere (gönderen dahil)
// güncel roster'ı broadcast eder. Oda yoksa ilk join ile oluşur.
//
// Precondition yoktur — tekrar join, üye kaydını yeni username/joinedAt
// snapshot'ı ile üzerine yazar.
func (s *roomService) Join(connID string, d ws.JoinRoomData) error {
	// Kullanıcı id'si handshake'te çözülmüştür; kayıt bulunamazsa
	// connection id'ye düşülür (auth'suz mod ile aynı davranış).
	userID, ok := s.conns.UserOf(connID)
	if !ok {
		userID = connID
	}

	user := models.RoomUser{
		ConnectionID: connID,
		UserID:       userID,
		Username:     d.Username,
		JoinedAt:     time.Now().UTC(),
	}
	s.rooms.JoinRoom(d.RoomID, user)

	s.gateway.BroadcastToRoom(d.RoomID, ws.Event{
		Name: ws.OpUserJoined,
		Data: ws.UserJoinedData{
			RoomID: d.RoomID,
			User:   userView(user),
			Users:  userViews(s.rooms.RoomUsers(d.RoomID)),
		},
	}, "")

	log.Printf("[room] join: conn=%s room=%s username=%s", connID, d.RoomID, d.Username)
	return nil
}

// Leave, gönderen bağlantıyı odadan çıkarır. Gönderen üye bulunduysa kalan
// üyelere roster broadcast'i yapılır; bulunamadıysa sessiz no-op'tur
// (hata değil — leave idempotent'tir).
func (s *roomService) Leave(connID string, d ws.LeaveRoomData) error {
	// Snapshot, LeaveRoom tarafından silinmeden önce alınır — "kim ayrıldı"
	// bilgisi broadcast için korunur.
	user, found := s.rooms.LeaveRoom(d.RoomID, connID)
	if !found {
		return nil
	}

	s.gateway.BroadcastToRoom(d.RoomID, ws.Event{
		Name: ws.OpUserLeft,
		Data: ws.UserLeftData{
			RoomID: d.RoomID,
			User:   userView(user),
			Users:  userViews(s.rooms.RoomUsers(d.RoomID)),
		},
	}, "")

	log.Printf("[room] leave: conn=%s room=%s", connID, d.RoomID)
	return nil
}

// Typing, yazıyor göstergesini odanın DİĞER üyelerine iletir.
// Gönderen bilinçli olarak hariç tutulur — kullanıcı kendi typing
// göstergesini görmemelidir.
func (s *roomService) Typing(connID string, d ws.TypingData) error {
	if !s.rooms.IsMember(d.RoomID, connID) {
		return pkg.ErrNotInRoom
	}

	// Gönderen kimliği oda üyeliği snapshot'ından çözülür. IsMember ile bu
	// çağrı arası eşzamanlı bir leave araya girebilir — o durumda event
	// sessizce düşürülmez, gönderene domain hatası döner.
	sender, ok := s.rooms.Member(d.RoomID, connID)
	if !ok {
		return pkg.ErrSenderNotFound
	}

	s.gateway.BroadcastToRoom(d.RoomID, ws.Event{
		Name: ws.OpTyping,
		Data: ws.TypingBroadcast{
			RoomID:   d.RoomID,
			UserID:   sender.UserID,
			Username: sender.Username,
			IsTyping: d.IsTyping,
		},
	}, connID)

	return nil
}
