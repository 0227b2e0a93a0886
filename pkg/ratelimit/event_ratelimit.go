// Package ratelimit — inbound event spam koruması için bağlantı bazlı
// rate limiting.
//
// Tasarım:
// - Window içinde maxEvents event'e izin verilir.
// - Limit aşıldığında cooldown başlar → cooldown bitene kadar o bağlantının
//   tüm event'leri reddedilir.
// - Cooldown bitince window sıfırlanır, bağlantı tekrar event gönderebilir.
//
// Window süresi ve ceza süresi ayrıdır: window kısadır (saniyeler),
// ceza süresi daha uzundur — flood eden client'ın geri çekilmesi için.
package ratelimit

import (
	"sync"
	"time"
)

// eventBucket, bir bağlantı için event sayacı ve cooldown bilgisi tutar.
//
// İki durumlu:
// 1. Normal mod: count artırılır, windowStart bazlı pencere kontrolü.
// 2. Cooldown mod: cooldownUntil > now → tüm event'ler reddedilir.
type eventBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// EventRateLimiter, bağlantı bazlı inbound event spam koruması.
//
// Kullanım:
//
//	limiter := ratelimit.NewEventRateLimiter(20, 5*time.Second, 15*time.Second)
//	// ReadPump'ta:
//	if !limiter.Allow(connID) { /* error payload'ı gönder, route etme */ }
type EventRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*eventBucket
	maxEvents   int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

// NewEventRateLimiter, yeni limiter oluşturur ve arka plan temizleme
// goroutine'ini başlatır.
//
// maxEvents: Pencere başına izin verilen event sayısı.
// window: Pencere süresi (ör: 5*time.Second).
// cooldown: Limit aşıldığında bekleme süresi (ör: 15*time.Second).
func NewEventRateLimiter(maxEvents int, window, cooldown time.Duration) *EventRateLimiter {
	rl := &EventRateLimiter{
		buckets:     make(map[string]*eventBucket),
		maxEvents:   maxEvents,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}

	// Background cleanup — süresi dolmuş bucket'ları temizler.
	// Bucket'lar kısa ömürlüdür ama çok sayıda bağlantıda bellek
	// birikmesini önlemek için gereklidir.
	go rl.cleanupLoop()

	return rl
}

// Allow, verilen bağlantının event göndermesine izin verilip verilmediğini döner.
//
// Akış:
// 1. Cooldown'daysa → reject.
// 2. Window dolmuşsa → yeni pencere başlat.
// 3. Window içindeyse → count artır, max aşıldıysa cooldown başlat.
func (rl *EventRateLimiter) Allow(connID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[connID]
	if !exists {
		rl.buckets[connID] = &eventBucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() && now.Before(b.cooldownUntil) {
		return false
	}

	if !b.cooldownUntil.IsZero() {
		// Cooldown bitti — yeni pencere başlat.
		b.count = 1
		b.windowStart = now
		b.cooldownUntil = time.Time{}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxEvents {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}

	return true
}

// CooldownSeconds, limit aşıldığında kalan cooldown süresini saniye
// cinsinden döner. Gönderene dönen error mesajında kullanılır.
// Cooldown yoksa 0 döner.
func (rl *EventRateLimiter) CooldownSeconds(connID string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[connID]
	if !exists || b.cooldownUntil.IsZero() {
		return 0
	}

	remaining := time.Until(b.cooldownUntil)
	if remaining <= 0 {
		return 0
	}

	// +1 yuvarlama — client'ın tam süreyi beklemesi için.
	return int(remaining.Seconds()) + 1
}

// Forget, bağlantının bucket'ını siler. Disconnect temizliğinde çağrılır.
func (rl *EventRateLimiter) Forget(connID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, connID)
}

// Stop, background cleanup goroutine'ini durdurur.
func (rl *EventRateLimiter) Stop() {
	close(rl.stopCleanup)
}

// cleanupLoop, arka planda süresi dolmuş bucket'ları temizler.
func (rl *EventRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup, hem window'u hem cooldown'u bitmiş tüm bucket'ları siler.
// Cooldown'daki bağlantıların bucket'ı silinmez — ceza kaybolmasın diye.
func (rl *EventRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for connID, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)

		if windowExpired && cooldownExpired {
			delete(rl.buckets, connID)
		}
	}
}
