package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akinalp/huddle/pkg"
	"github.com/akinalp/huddle/pkg/ratelimit"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// readWait: İki inbound frame arası beklenen maksimum süre.
	// Client'lar periyodik ping event'i gönderir; bu sürede hiçbir frame
	// gelmezse bağlantı kopmuş sayılır. Her inbound frame deadline'ı yeniler.
	readWait = 90 * time.Second

	// maxMessageSize: Client'ın gönderebileceği maksimum frame boyutu (byte).
	maxMessageSize = 4096

	// sendBufferSize: Her client'ın send channel'ının buffer boyutu.
	// Buffer dolarsa client yavaş demektir ve bağlantısı kopartılır.
	sendBufferSize = 256
)

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine çalışır:
// - ReadPump: Client'dan gelen event'leri okur → Hub'ın OnEvent callback'i
// - WritePump: send channel'ından gelen veriyi WebSocket'e yazar
//
// gorilla/websocket aynı anda tek okuma ve tek yazma destekler; iki ayrı
// goroutine sayesinde okuma ve yazma birbirini bloklamaz.
type Client struct {
	hub    *Hub
	conn   wsConn
	connID string
	userID string

	// send: client'a gidecek marshal edilmiş event'lerin buffer'ı.
	// Yazma ve kapatma sendMu ile serialize edilir — ReadPump hâlâ
	// sendEvent çağırırken Hub channel'ı kapatırsa "send on closed channel"
	// panic'i tüm process'i düşürür. Kapatma SADECE closeSend üzerinden.
	send       chan []byte
	sendMu     sync.Mutex
	sendClosed bool

	// limiter: inbound event rate limit'i (nil ise devre dışı).
	limiter *ratelimit.EventRateLimiter

	mu sync.Mutex // conn yazma çağrılarını korur
}

// wsConn, Client'ın gorilla bağlantısından kullandığı küçük yüzey.
// Testlerde gerçek socket yerine fake ile değiştirilebilsin diye interface.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// inboundFrame, client'dan gelen ham envelope. Data decode edilmeden
// router'a json.RawMessage olarak taşınır — payload tipini router bilir.
type inboundFrame struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// ReadPump, WebSocket bağlantısından gelen event'leri okur ve işler.
// Bağlantı kapanana kadar bloklar; kapandığında Hub'dan çıkış yapar.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for conn %s: %v", c.connID, err)
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for conn %s: %v", c.connID, err)
			}
			return
		}

		// Herhangi bir frame canlılık kanıtıdır — deadline yenilenir.
		if err := c.conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			log.Printf("[ws] failed to refresh read deadline for conn %s: %v", c.connID, err)
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("[ws] invalid frame from conn %s: %v", c.connID, err)
			c.sendEvent(Event{Name: OpError, Data: ErrorData{
				Message: "malformed event envelope",
			}})
			continue
		}
		if frame.Name == "" {
			c.sendEvent(Event{Name: OpError, Data: ErrorData{
				Message: "event name is required",
			}})
			continue
		}

		c.handleFrame(frame)
	}
}

// handleFrame, tek bir inbound event'i rate limit'ten geçirir, route eder
// ve sonucu gönderene bildirir.
//
// Hata taksonomisi (hepsi recoverable, hiçbiri bağlantıyı düşürmez):
// - nil                  → message:ack
// - *pkg.ValidationError → validation:error (field issue listesiyle)
// - diğer her şey        → error (unknown event ve domain hataları dahil)
func (c *Client) handleFrame(frame inboundFrame) {
	if c.limiter != nil && !c.limiter.Allow(c.connID) {
		retry := c.limiter.CooldownSeconds(c.connID)
		c.sendEvent(Event{Name: OpError, Data: ErrorData{
			EventName: frame.Name,
			Message:   fmt.Sprintf("rate limit exceeded, retry in %ds", retry),
		}})
		return
	}

	if c.hub.onEvent == nil {
		log.Printf("[ws] no event callback wired, dropping %s from conn %s", frame.Name, c.connID)
		return
	}

	err := c.hub.onEvent(c.connID, frame.Name, frame.Data)
	if err == nil {
		c.sendEvent(Event{Name: OpAck, Data: AckData{
			EventName: frame.Name,
			Status:    "success",
			Timestamp: time.Now().UTC(),
		}})
		return
	}

	var ve *pkg.ValidationError
	if errors.As(err, &ve) {
		c.sendEvent(Event{Name: OpValidationError, Data: ValidationErrorData{
			EventName: frame.Name,
			Message:   "payload validation failed",
			Errors:    ve.Issues,
		}})
		return
	}

	c.sendEvent(Event{Name: OpError, Data: ErrorData{
		EventName: frame.Name,
		Message:   err.Error(),
	}})
}

// sendEvent, client'a tek bir event gönderir (seq damgalanır).
func (c *Client) sendEvent(event Event) {
	event.Seq = c.hub.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event %s for conn %s: %v", event.Name, c.connID, err)
		return
	}

	if !c.enqueue(data) {
		log.Printf("[ws] send buffer full for conn %s, dropping connection", c.connID)
		c.hub.unregister <- c
	}
}

// enqueue, marshal edilmiş veriyi send buffer'ına bırakır.
// false dönerse buffer doludur (slow consumer) — caller bağlantıyı düşürür.
// Kapatılmış bir client'a yazma sessiz no-op'tur: bağlantı zaten gidiyor,
// event'in kaybı normaldir, process'in ölmesi değil.
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return true
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend, send channel'ını idempotent olarak kapatır. Hub (removeClient
// ve Shutdown) channel'ı SADECE buradan kapatır — sendMu, eşzamanlı bir
// enqueue'nun kapalı channel'a yazmasını imkânsız kılar.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

// WritePump, send channel'ından gelen veriyi WebSocket'e yazar.
// Channel kapanana kadar (Hub client'ı çıkarana kadar) çalışır.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.writeMessage(websocket.CloseMessage, nil)
			return
		}

		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// writeMessage, WebSocket'e mesaj yazar. gorilla/websocket conn'a aynı anda
// birden fazla yazma yasak — mutex ile korunur.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
