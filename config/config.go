// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Server    ServerConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// JWTConfig, opsiyonel handshake token ayarları.
// Secret boşsa token doğrulama devre dışıdır — token taşıyan bağlantılar
// reddedilir, token'sız bağlantılar connection id'yi kimlik olarak kullanır.
type JWTConfig struct {
	Secret string
}

// CORSConfig, izin verilen origin listesi.
type CORSConfig struct {
	Origins []string
}

// RateLimitConfig, bağlantı bazlı inbound event limit'i.
type RateLimitConfig struct {
	MaxEvents int
	Window    time.Duration
	Cooldown  time.Duration
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler — dosya yoksa sessizce devam eder,
// production'da gerçek env variable'lar kullanılır.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxEvents, err := strconv.Atoi(getEnv("EVENT_RATE_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_RATE_LIMIT: %w", err)
	}

	windowSecs, err := strconv.Atoi(getEnv("EVENT_RATE_WINDOW_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_RATE_WINDOW_SECONDS: %w", err)
	}

	cooldownSecs, err := strconv.Atoi(getEnv("EVENT_RATE_COOLDOWN_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_RATE_COOLDOWN_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		CORS: CORSConfig{
			Origins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		RateLimit: RateLimitConfig{
			MaxEvents: maxEvents,
			Window:    time.Duration(windowSecs) * time.Second,
			Cooldown:  time.Duration(cooldownSecs) * time.Second,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitList, virgülle ayrılmış listeyi parse eder, boş öğeleri atar.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
