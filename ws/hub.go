package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher, services katmanının WebSocket event'leri göndermek için
// kullandığı interface.
//
// Dependency Inversion: Service'ler Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır. Böylece:
// 1. Service test edilirken event yakalayan fake bir publisher kullanılabilir
// 2. Hub implementasyonu değişse bile service kodu etkilenmez
//
// Oda/kullanıcı bazlı fan-out burada YOKTUR — Hub sadece bağlantı bazlı
// teslimat bilir. Oda üyeliği çözümü Gateway'in işidir.
type EventPublisher interface {
	BroadcastToAll(event Event)
	EmitToConnection(connID string, event Event) bool
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır (Observer pattern).
//
// Hub.Run() goroutine'i register/unregister channel'larından `select` ile okur
// ve clients map'ini günceller. Broadcast'ler RLock altında doğrudan send
// channel'larına yazar.
//
// Hub domain bilmez: oda yok, reaction yok. Bağlantı yaşam döngüsü ve inbound
// event'ler callback'lerle dışarı (main'deki wire-up'a) aktarılır —
// Hub'ın services'e bağımlı olmaması için (Dependency Inversion).
type Hub struct {
	// clients: connID → Client. Kullanıcı bazlı gruplama burada yapılmaz —
	// o, ConnectionRegistry'nin işidir.
	clients map[string]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// seq: Her outbound event'e verilen artan sayaç.
	seq atomic.Int64

	// Callback'ler — main.go'daki wire-up ayarlar, Run'dan önce set edilmelidir.
	//
	// onConnect: upgrade handler'dan SENKRON çağrılır (register'dan önce) —
	// bağlantı, ilk event route edilmeden ConnectionRegistry'de olmalıdır.
	//
	// onDisconnect: removeClient içinden `go` ile çağrılır — cleanup
	// broadcast'lerinin RLock'u ile removeClient'ın Lock'u çakışmasın diye.
	//
	// onEvent: Client ReadPump'ından senkron çağrılır; dönen error client
	// tarafından ack/validation:error/error payload'ına çevrilir.
	onConnect    func(connID, userID string)
	onDisconnect func(connID string)
	onEvent      func(connID, eventName string, data json.RawMessage) error
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// OnConnect, bağlantı kurulduğunda çağrılacak callback'i ayarlar.
func (h *Hub) OnConnect(fn func(connID, userID string)) { h.onConnect = fn }

// OnDisconnect, bağlantı koptuğunda çağrılacak callback'i ayarlar.
// Cleanup sırası (oda temizliği + roster broadcast + registry silme)
// tamamen callback'in sorumluluğundadır.
func (h *Hub) OnDisconnect(fn func(connID string)) { h.onDisconnect = fn }

// OnEvent, inbound event'ler için route callback'ini ayarlar.
func (h *Hub) OnEvent(fn func(connID, eventName string, data json.RawMessage) error) {
	h.onEvent = fn
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// addClient, yeni bir client'ı Hub'a ekler.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.connID] = client
	log.Printf("[ws] client connected: conn=%s user=%s (total: %d)",
		client.connID, client.userID, len(h.clients))
}

// removeClient, bir client'ı Hub'dan çıkarır, send channel'ını kapatır ve
// disconnect callback'ini tetikler.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if existing, ok := h.clients[client.connID]; !ok || existing != client {
		// Aynı client iki kez unregister olabilir (readpump + slow consumer).
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.connID)
	client.closeSend()
	remaining := len(h.clients)
	h.mu.Unlock()

	log.Printf("[ws] client disconnected: conn=%s user=%s (remaining: %d)",
		client.connID, client.userID, remaining)

	if h.onDisconnect != nil {
		// Run goroutine'ini bloklamamak ve Lock/RLock çakışmasını önlemek
		// için ayrı goroutine'de.
		go h.onDisconnect(client.connID)
	}
}

// BroadcastToAll, tüm bağlı client'lara event gönderir.
func (h *Hub) BroadcastToAll(event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event %s: %v", event.Name, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		h.deliver(client, data)
	}
}

// EmitToConnection, tek bir bağlantıya event gönderir.
// Bağlantı bilinmiyorsa false döner — caller loglamak isteyebilir.
func (h *Hub) EmitToConnection(connID string, event Event) bool {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event %s for conn %s: %v", event.Name, connID, err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return false
	}
	h.deliver(client, data)
	return true
}

// deliver, marshal edilmiş veriyi client'ın send buffer'ına bırakır.
// Buffer doluysa client yavaş demektir — bağlantı kopartılır.
func (h *Hub) deliver(client *Client, data []byte) {
	if !client.enqueue(data) {
		log.Printf("[ws] send buffer full for conn %s, dropping connection", client.connID)
		go func(c *Client) { h.unregister <- c }(client)
	}
}

// notifyConnect, upgrade handler tarafından register'dan önce çağrılır.
func (h *Hub) notifyConnect(connID, userID string) {
	if h.onConnect != nil {
		h.onConnect(connID, userID)
	}
}

// Shutdown, tüm client bağlantılarını kapatır (graceful shutdown).
// ReadPump'lar bu sırada hâlâ canlıdır — kapatma removeClient ile aynı
// guarded yoldan yapılır, in-flight bir ack/error yazımı panic üretmez.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		client.closeSend()
	}
	h.clients = make(map[string]*Client)
	log.Println("[ws] hub shut down, all connections closed")
}
