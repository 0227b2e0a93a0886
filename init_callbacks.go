// Package main — WebSocket Hub callback wire-up.
//
// Bu callback'ler neden burada (main package'da)?
// Hub ws paketinde yaşıyor, ama bağlantı kaydı ve oda temizliği services
// katmanında. Hub'ın services'e bağımlı olmasını istemiyoruz (Dependency
// Inversion). main package wire-up noktasıdır — tüm katmanları bağlar.
package main

import (
	"github.com/akinalp/huddle/pkg/ratelimit"
	"github.com/akinalp/huddle/router"
	"github.com/akinalp/huddle/services"
	"github.com/akinalp/huddle/ws"
)

// registerHubCallbacks, Hub'ın connect/disconnect/event callback'lerini bağlar.
//
// - OnConnect: upgrade handler'dan senkron çağrılır — bağlantı, ilk event
//   route edilmeden ConnectionRegistry'de olur.
// - OnDisconnect: Gateway'in temizlik sırasını yürütür (odalardan zorunlu
//   çıkış + roster broadcast'leri + en son bağlantı kaydının silinmesi),
//   ardından rate limit bucket'ı unutulur.
// - OnEvent: router tablosuna iletir; dönen error'ı transport (Client)
//   ack/validation:error/error payload'ına çevirir.
func registerHubCallbacks(
	hub *ws.Hub,
	gateway services.Gateway,
	rt *router.Router,
	limiter *ratelimit.EventRateLimiter,
) {
	hub.OnConnect(gateway.HandleConnect)

	hub.OnDisconnect(func(connID string) {
		gateway.HandleDisconnect(connID)
		limiter.Forget(connID)
	})

	hub.OnEvent(rt.Route)
}
