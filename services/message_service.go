package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/huddle/models"
	"github.com/akinalp/huddle/pkg"
	"github.com/akinalp/huddle/registry"
	"github.com/akinalp/huddle/ws"
)

// MessageService, chat:message event'inin iş mantığı.
//
// Mesajlar persist EDİLMEZ — tek yaptığı şey, gönderen kimliği ve server
// saati eklenmiş tam chat payload'ını odaya fan-out etmektir. Mesaj id'si
// client verdiyse onunkidir (reaction'lar bu id'ye bağlanır), vermediyse
// server üretir.
type MessageService interface {
	Send(connID string, d ws.ChatMessageData) error
}

type messageService struct {
	rooms   registry.RoomRegistry
	gateway Gateway
}

// NewMessageService, constructor.
func NewMessageService(rooms registry.RoomRegistry, gateway Gateway) MessageService {
	return &messageService{rooms: rooms, gateway: gateway}
}

// Send, mesajı odanın TÜM üyelerine (gönderen dahil) broadcast eder.
// Gönderen odanın üyesi değilse ErrNotInRoom döner.
func (s *messageService) Send(connID string, d ws.ChatMessageData) error {
	if !s.rooms.IsMember(d.RoomID, connID) {
		return pkg.ErrNotInRoom
	}

	sender, ok := s.rooms.Member(d.RoomID, connID)
	if !ok {
		return pkg.ErrSenderNotFound
	}

	messageID := d.MessageID
	if messageID == "" {
		messageID = uuid.NewString()
	}

	s.gateway.BroadcastToRoom(d.RoomID, ws.Event{
		Name: ws.OpChatMessage,
		Data: ws.ChatMessageBroadcast{
			MessageID: messageID,
			RoomID:    d.RoomID,
			Sender:    userView(sender),
			Message:   d.Message,
			// Client'ın timestamp'i güvenilmez — her zaman server saati.
			Timestamp: time.Now().UTC(),
			// Yeni mesajın tepki geçmişi olamaz.
			Reactions: map[string][]models.Reactor{},
		},
	}, "")

	log.Printf("[message] broadcast: conn=%s room=%s message=%s", connID, d.RoomID, messageID)
	return nil
}
