// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Client bir event gönderir → ReadPump okur → Hub'ın OnEvent callback'i
// 2. Callback (main'de wire edilir) router'a iletir → domain handler çalışır
// 3. Handler, Gateway üzerinden oda/kullanıcı fan-out'u tetikler
// 4. Hub ilgili client'ların send channel'larına yazar
// 5. Her client'ın WritePump'ı event'i WebSocket'e yazar
//
// Disconnect transport kaynaklıdır: ReadPump sonlandığında Hub'ın
// OnDisconnect callback'i tetiklenir — client mesajıyla değil.
package ws

import (
	"time"

	"github.com/akinalp/huddle/models"
	"github.com/akinalp/huddle/pkg"
)

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Name (event): Event adı — "join:room", "chat:message" vb.
// Data: Event'e özgü payload.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//   Frontend eksik event tespit etmek için seq'i takip eder.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server event'leri
const (
	OpJoinRoom    = "join:room"        // Odaya katıl
	OpLeaveRoom   = "leave:room"       // Odadan ayrıl
	OpChatMessage = "chat:message"     // Oda mesajı gönder
	OpReaction    = "message:reaction" // Mesaja emoji toggle
	OpTyping      = "room:typing"      // Yazıyor göstergesi
	OpPing        = "ping"             // Keepalive — sadece loglanır
)

// Server → Client event'leri
const (
	OpUserJoined      = "room:user_joined"         // Odaya yeni üye katıldı — güncel roster ile
	OpUserLeft        = "room:user_left"           // Üye ayrıldı — kalan roster ile
	OpReactionUpdated = "message:reaction_updated" // Mesajın reaction durumu değişti
	// chat:message ve room:typing broadcast'leri inbound ile aynı adı taşır.

	OpAck             = "message:ack"      // Başarılı işlenen her event için gönderene döner
	OpValidationError = "validation:error" // Payload şema hatası — sadece gönderene
	OpError           = "error"            // Domain / routing hatası — sadece gönderene
)

// ─── Inbound payload'lar ───
//
// Her inbound tip Validate() implement eder — router'ın generic dispatch
// helper'ı decode sonrası bu kontrolü çağırır, issue listesi boş değilse
// handler hiç çalışmaz ve gönderene validation:error döner.

// JoinRoomData, join:room payload'ı.
type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

func (d JoinRoomData) Validate() []pkg.FieldIssue {
	var issues []pkg.FieldIssue
	if d.RoomID == "" {
		issues = append(issues, pkg.FieldIssue{Field: "roomId", Message: "roomId is required"})
	}
	if d.Username == "" {
		issues = append(issues, pkg.FieldIssue{Field: "username", Message: "username is required"})
	}
	return issues
}

// LeaveRoomData, leave:room payload'ı.
type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

func (d LeaveRoomData) Validate() []pkg.FieldIssue {
	if d.RoomID == "" {
		return []pkg.FieldIssue{{Field: "roomId", Message: "roomId is required"}}
	}
	return nil
}

// ChatMessageData, chat:message payload'ı.
// Timestamp client'ın kendi saatidir ve güvenilmez — broadcast'te server
// saati kullanılır.
//
// MessageID validation'da bilinçli olarak zorunlu TUTULMAZ: wire contract
// alanı taşır ama boş gönderen client reddedilmez — server uuid üretir ve
// reaction'lar o id'ye bağlanır. Client kendi id'sini verirse (optimistic
// UI) aynen korunur.
type ChatMessageData struct {
	Message   string `json:"message"`
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (d ChatMessageData) Validate() []pkg.FieldIssue {
	var issues []pkg.FieldIssue
	if d.RoomID == "" {
		issues = append(issues, pkg.FieldIssue{Field: "roomId", Message: "roomId is required"})
	}
	if d.Message == "" {
		issues = append(issues, pkg.FieldIssue{Field: "message", Message: "message is required"})
	}
	return issues
}

// ReactionData, message:reaction payload'ı.
type ReactionData struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	Emoji     string `json:"emoji"`
}

func (d ReactionData) Validate() []pkg.FieldIssue {
	var issues []pkg.FieldIssue
	if d.MessageID == "" {
		issues = append(issues, pkg.FieldIssue{Field: "messageId", Message: "messageId is required"})
	}
	if d.RoomID == "" {
		issues = append(issues, pkg.FieldIssue{Field: "roomId", Message: "roomId is required"})
	}
	if d.Emoji == "" {
		issues = append(issues, pkg.FieldIssue{Field: "emoji", Message: "emoji is required"})
	} else if !models.IsAllowedEmoji(d.Emoji) {
		issues = append(issues, pkg.FieldIssue{Field: "emoji", Message: "emoji is not in the allowed set"})
	}
	return issues
}

// TypingData, room:typing payload'ı (Client → Server).
type TypingData struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
}

func (d TypingData) Validate() []pkg.FieldIssue {
	if d.RoomID == "" {
		return []pkg.FieldIssue{{Field: "roomId", Message: "roomId is required"}}
	}
	return nil
}

// PingData, ping payload'ı. Timestamp ISO-8601 client saati — clock skew
// gözlemi için loglanır, başka bir işe yaramaz.
type PingData struct {
	Timestamp string `json:"timestamp"`
}

func (d PingData) Validate() []pkg.FieldIssue {
	if d.Timestamp == "" {
		return []pkg.FieldIssue{{Field: "timestamp", Message: "timestamp is required"}}
	}
	if _, err := time.Parse(time.RFC3339, d.Timestamp); err != nil {
		return []pkg.FieldIssue{{Field: "timestamp", Message: "timestamp must be an ISO-8601 string"}}
	}
	return nil
}

// ─── Outbound payload'lar ───

// UserView, roster ve sender alanlarında taşınan minimal kullanıcı görünümü.
// models.RoomUser'dan ayrı tanımlanır — wire format'ta connection id ve
// join zamanı taşımaya gerek yoktur.
type UserView struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// UserJoinedData, room:user_joined payload'ı. Users güncel roster'dır
// (katılan dahil).
type UserJoinedData struct {
	RoomID string     `json:"roomId"`
	User   UserView   `json:"user"`
	Users  []UserView `json:"users"`
}

// UserLeftData, room:user_left payload'ı. Users kalan üyelerdir.
type UserLeftData struct {
	RoomID string     `json:"roomId"`
	User   UserView   `json:"user"`
	Users  []UserView `json:"users"`
}

// ChatMessageBroadcast, chat:message broadcast payload'ı.
// Reactions her zaman boş map ile başlar — mesajlar persist edilmediği için
// yeni mesajın tepki geçmişi olamaz.
type ChatMessageBroadcast struct {
	MessageID string                      `json:"messageId"`
	RoomID    string                      `json:"roomId"`
	Sender    UserView                    `json:"sender"`
	Message   string                      `json:"message"`
	Timestamp time.Time                   `json:"timestamp"`
	Reactions map[string][]models.Reactor `json:"reactions"`
}

// ReactionUpdatedData, message:reaction_updated payload'ı.
// Reactions, toggle sonrası TAM durumdur (delta değil) — client state'i
// olduğu gibi değiştirir, eksik event'te tutarsızlık birikmez.
type ReactionUpdatedData struct {
	MessageID string                      `json:"messageId"`
	RoomID    string                      `json:"roomId"`
	Reactions map[string][]models.Reactor `json:"reactions"`
}

// TypingBroadcast, room:typing broadcast payload'ı (Server → Client).
// Gönderene gitmez — kullanıcı kendi "yazıyor" göstergesini görmemeli.
type TypingBroadcast struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// AckData, başarıyla işlenen her event için SADECE gönderene dönen onay.
type AckData struct {
	EventName string    `json:"eventName"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorData, domain/routing hatalarında gönderene dönen payload.
type ErrorData struct {
	EventName string `json:"eventName"`
	Message   string `json:"message"`
}

// ValidationErrorData, şema hatalarında gönderene dönen payload.
// Errors field bazlı issue listesidir.
type ValidationErrorData struct {
	EventName string           `json:"eventName"`
	Message   string           `json:"message"`
	Errors    []pkg.FieldIssue `json:"errors"`
}
