package ws

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/akinalp/huddle/models"
	"github.com/akinalp/huddle/pkg/ratelimit"
)

// TokenValidator, WebSocket handler'ın opsiyonel kimlik doğrulaması için
// kullandığı interface.
//
// Neden services.AuthService yerine kendi interface'imizi tanımlıyoruz?
// Circular dependency'yi önlemek için: services paketi ws.EventPublisher'ı
// kullanıyor — ws'in services'i import etmesi döngü oluştururdu.
// main.go'da authService bu interface'i implicit olarak karşılar.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
// CheckOrigin: origin kontrolü CORS katmanında yapılır; upgrade burada
// tüm origin'lere açıktır.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
	limiter        *ratelimit.EventRateLimiter
}

// NewHandler, yeni bir WebSocket handler oluşturur.
// limiter nil olabilir — rate limiting o zaman devre dışıdır.
func NewHandler(hub *Hub, tokenValidator TokenValidator, limiter *ratelimit.EventRateLimiter) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
		limiter:        limiter,
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı
// Hub'a kaydeder.
//
// Kimlik çözümü:
// - Connection id her zaman server tarafından atanır (uuid).
// - `token` query parameter'ı OPSİYONELDİR. Verilmişse doğrulanır ve
//   kullanıcı id'si token'dan alınır — aynı kullanıcının birden fazla
//   cihazı aynı user id altında toplanır.
// - Token yoksa kullanıcı id'si connection id'nin kendisidir.
// - Geçersiz token reddedilir; token'sız bağlantı reddedilmez.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	connID := uuid.NewString()
	userID := connID

	if token := r.URL.Query().Get("token"); token != "" {
		if h.tokenValidator == nil {
			http.Error(w, "token not supported", http.StatusUnauthorized)
			return
		}
		claims, err := h.tokenValidator.ValidateAccessToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for conn %s: %v", connID, err)
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		connID:  connID,
		userID:  userID,
		send:    make(chan []byte, sendBufferSize),
		limiter: h.limiter,
	}

	// Connect callback'i register'dan ÖNCE ve senkron çağrılır — bağlantı,
	// ilk event route edilmeden ConnectionRegistry'de kayıtlı olmalıdır.
	h.hub.notifyConnect(connID, userID)
	h.hub.register <- client

	// WritePump ayrı goroutine'de; ReadPump bu goroutine'de bağlantı
	// kapanana kadar bloklar.
	go client.WritePump()
	client.ReadPump()
}
