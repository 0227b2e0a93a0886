// Package main, huddle sunucusunun giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Registry'leri oluştur (in-memory durum)
//  3. WebSocket Hub'ı oluştur
//  4. Gateway ve service'leri oluştur
//  5. Router tablosunu kur (init_router.go)
//  6. Hub callback'lerini bağla (init_callbacks.go)
//  7. HTTP router + CORS
//  8. HTTP Server'ı başlat
//  9. Graceful shutdown
//
// Global değişken YOK — her şey burada oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/huddle/config"
	"github.com/akinalp/huddle/pkg/ratelimit"
	"github.com/akinalp/huddle/registry"
	"github.com/akinalp/huddle/router"
	"github.com/akinalp/huddle/services"
	"github.com/akinalp/huddle/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] huddle server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Registry Layer ───
	//
	// Tüm durum in-memory'dir ve bağlantı yaşam döngüsüne bağlıdır:
	// kalıcılık yok, restart'ta temiz başlangıç.
	connRegistry := registry.NewMemoryConnectionRegistry()
	roomRegistry := registry.NewMemoryRoomRegistry()
	reactionIndex := registry.NewMemoryReactionIndex()

	// ─── 3. WebSocket Hub ───
	hub := ws.NewHub()

	// ─── 4. Gateway + Service Layer ───
	gateway := services.NewGateway(connRegistry, roomRegistry, hub)
	roomService := services.NewRoomService(connRegistry, roomRegistry, gateway)
	messageService := services.NewMessageService(roomRegistry, gateway)
	reactionService := services.NewReactionService(roomRegistry, reactionIndex, gateway)

	// ─── 5. Router ───
	rt := router.New()
	registerEventHandlers(rt, roomService, messageService, reactionService)

	// ─── 6. Hub Callback'leri ───
	limiter := ratelimit.NewEventRateLimiter(
		cfg.RateLimit.MaxEvents, cfg.RateLimit.Window, cfg.RateLimit.Cooldown)
	registerHubCallbacks(hub, gateway, rt, limiter)

	go hub.Run()

	// ─── 7. HTTP Router ───
	//
	// Token doğrulama opsiyoneldir: JWT_SECRET boşsa tokenValidator nil
	// kalır ve token taşıyan bağlantılar reddedilir; token'sız bağlantılar
	// her durumda kabul edilir (connection id = user id).
	var tokenValidator ws.TokenValidator
	if cfg.JWT.Secret != "" {
		tokenValidator = services.NewAuthService(cfg.JWT.Secret)
	}
	wsHandler := ws.NewHandler(hub, tokenValidator, limiter)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"huddle"}`)
	})
	mux.HandleFunc("GET /ws", wsHandler.HandleConnection)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.Origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := corsHandler.Handler(mux)

	// ─── 8. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 9. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce WebSocket bağlantıları kapatılır, sonra HTTP server —
	// mevcut request'lerin bitmesi için 5sn tanınır.
	hub.Shutdown()
	limiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
