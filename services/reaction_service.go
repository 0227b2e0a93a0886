package services

import (
	"hash/fnv"
	"log"
	"sync"
	"time"

	"github.com/akinalp/huddle/models"
	"github.com/akinalp/huddle/pkg"
	"github.com/akinalp/huddle/registry"
	"github.com/akinalp/huddle/ws"
)

// toggleStripeCount, toggle kararını serialize eden stripe kilit sayısı.
const toggleStripeCount = 32

// ReactionService, message:reaction event'inin iş mantığı.
//
// Toggle POLİCY'si buradadır, index'te değil: kullanıcı o (mesaj, emoji)
// için tepki vermişse kaldırılır, vermemişse eklenir. Index saf primitive
// sunar (Add/Remove/HasReacted) — bu ayrım index'i policy'siz ve yeniden
// kullanılabilir tutar.
type ReactionService interface {
	Toggle(connID string, d ws.ReactionData) error
}

type reactionService struct {
	rooms     registry.RoomRegistry
	reactions registry.ReactionIndex
	gateway   Gateway

	// stripes: aynı mesaja eşzamanlı iki toggle'ın check-then-act adımını
	// serialize eder. Index mutasyonları zaten kendi içinde sıralıdır ama
	// HasReacted kararı ile Add/Remove arası başka bir toggle girmemeli —
	// son uygulanan toggle kazanır, deterministik.
	stripes [toggleStripeCount]sync.Mutex
}

// NewReactionService, constructor.
func NewReactionService(rooms registry.RoomRegistry, reactions registry.ReactionIndex, gateway Gateway) ReactionService {
	return &reactionService{rooms: rooms, reactions: reactions, gateway: gateway}
}

func (s *reactionService) stripeFor(messageID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(messageID))
	return &s.stripes[h.Sum32()%toggleStripeCount]
}

// Toggle, tepkiyi ekler veya kaldırır ve mesajın toggle SONRASI tam tepki
// durumunu odanın tüm üyelerine broadcast eder.
//
// Akış:
// 1. Üyelik kontrolü — gönderen odada değilse ErrNotInRoom.
// 2. Gönderen snapshot'ı — username broadcast'te gerekir.
// 3. Toggle kararı + mutasyon, mesaj bazlı stripe kilidi altında.
// 4. Tam durum okunur, emoji → [{userId, username}] şekline indirgenir.
// 5. Oda broadcast'i (gönderen dahil).
func (s *reactionService) Toggle(connID string, d ws.ReactionData) error {
	if !s.rooms.IsMember(d.RoomID, connID) {
		return pkg.ErrNotInRoom
	}

	sender, ok := s.rooms.Member(d.RoomID, connID)
	if !ok {
		return pkg.ErrSenderNotFound
	}

	stripe := s.stripeFor(d.MessageID)
	stripe.Lock()
	removed := s.reactions.HasReacted(d.MessageID, sender.UserID, d.Emoji)
	if removed {
		s.reactions.Remove(d.MessageID, sender.UserID, d.Emoji)
	} else {
		s.reactions.Add(d.MessageID, models.Reaction{
			UserID:    sender.UserID,
			Username:  sender.Username,
			Emoji:     d.Emoji,
			CreatedAt: time.Now().UTC(),
		})
	}
	state := s.reactions.ReactionsOf(d.MessageID)
	stripe.Unlock()

	s.gateway.BroadcastToRoom(d.RoomID, ws.Event{
		Name: ws.OpReactionUpdated,
		Data: ws.ReactionUpdatedData{
			MessageID: d.MessageID,
			RoomID:    d.RoomID,
			Reactions: reactorsByEmoji(state),
		},
	}, "")

	log.Printf("[reaction] toggle: conn=%s message=%s emoji=%s removed=%t",
		connID, d.MessageID, d.Emoji, removed)
	return nil
}

// reactorsByEmoji, index durumunu wire görünümüne indirger:
// emoji → sıralı [{userId, username}] listesi.
func reactorsByEmoji(state map[string][]models.Reaction) map[string][]models.Reactor {
	result := make(map[string][]models.Reactor, len(state))
	for emoji, bucket := range state {
		reactors := make([]models.Reactor, 0, len(bucket))
		for _, r := range bucket {
			reactors = append(reactors, models.Reactor{UserID: r.UserID, Username: r.Username})
		}
		result[emoji] = reactors
	}
	return result
}
