// Package main — event handler wire-up.
//
// registerEventHandlers, router tablosunu kurar: her inbound event adı,
// Typed helper ile sarılmış bir domain fonksiyonuna bağlanır. Tablo
// startup'ta bir kez kurulur; duplicate kayıt panic'tir ve burada patlar,
// runtime'da değil.
package main

import (
	"log"

	"github.com/akinalp/huddle/router"
	"github.com/akinalp/huddle/services"
	"github.com/akinalp/huddle/ws"
)

// registerEventHandlers, altı event handler'ını router'a kaydeder.
//
// Typed[T] her event için aynı akışı uygular: decode → Validate() →
// domain fonksiyonu. Validation başarısızsa domain fonksiyonu hiç çalışmaz
// ve gönderene validation:error döner.
func registerEventHandlers(
	rt *router.Router,
	roomService services.RoomService,
	messageService services.MessageService,
	reactionService services.ReactionService,
) {
	rt.Register(ws.OpJoinRoom, router.Typed(roomService.Join))
	rt.Register(ws.OpLeaveRoom, router.Typed(roomService.Leave))
	rt.Register(ws.OpChatMessage, router.Typed(messageService.Send))
	rt.Register(ws.OpReaction, router.Typed(reactionService.Toggle))
	rt.Register(ws.OpTyping, router.Typed(roomService.Typing))

	// Ping: gözlemlenebilirlik amaçlı — broadcast üretmez, pong dönmez.
	// Gönderen yine de standart message:ack alır; keepalive için yeterli.
	rt.Register(ws.OpPing, router.Typed(func(connID string, d ws.PingData) error {
		log.Printf("[ping] conn=%s client_time=%s", connID, d.Timestamp)
		return nil
	}))
}
