// Package router, inbound event'leri adlarına göre domain handler'larına
// dağıtır.
//
// Handler tablosu startup'ta statik olarak kurulur (main.go'daki wire-up) —
// runtime'da yeniden kayıt yoktur. Route hiçbir error çevirisi yapmaz:
// validation ve domain hataları loglanıp olduğu gibi caller'a (transport
// katmanına) aktarılır; gönderene payload çevirisi transport'un işidir.
package router

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/akinalp/huddle/pkg"
)

// HandlerFunc, tek bir event türünü işleyen fonksiyon.
// data, envelope'tan çıkarılmış ham payload'dır — decode Typed helper'ında
// yapılır.
type HandlerFunc func(connID string, data json.RawMessage) error

// Validatable, decode edilmiş bir payload'ın şema kontrolü.
// Boş olmayan issue listesi → handler hiç çalışmaz.
type Validatable interface {
	Validate() []pkg.FieldIssue
}

// Router, event adı → handler tablosu.
type Router struct {
	handlers map[string]HandlerFunc
}

// New, boş bir Router oluşturur.
func New() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Register, bir event handler'ı kaydeder. Aynı event adına ikinci kayıt
// wire-up hatasıdır ve panic'ler — startup'ta yakalanır, runtime'da asla.
func (r *Router) Register(eventName string, h HandlerFunc) {
	if _, ok := r.handlers[eventName]; ok {
		panic(fmt.Sprintf("router: duplicate handler registration for %q", eventName))
	}
	r.handlers[eventName] = h
}

// Route, event'i tablodan bulur ve çalıştırır.
//
// Bilinmeyen event sessizce düşürülmez: loglanır ve *pkg.UnknownEventError
// döner — transport bunu gönderene error payload'ı olarak iletir.
// Handler hataları loglanır ve değiştirilmeden döner.
func (r *Router) Route(connID, eventName string, data json.RawMessage) error {
	h, ok := r.handlers[eventName]
	if !ok {
		log.Printf("[router] unknown event %q from conn %s", eventName, connID)
		return &pkg.UnknownEventError{Event: eventName}
	}

	if err := h(connID, data); err != nil {
		log.Printf("[router] event %q from conn %s failed: %v", eventName, connID, err)
		return err
	}
	return nil
}

// Typed, (decode + validate + dispatch) adımlarını tek bir generic helper'da
// toplar. Her event için ayrı bir "base handler" sınıfı yerine, payload tipi
// üzerinden parametrize edilmiş düz bir fonksiyon sarmalayıcısı:
//
//	r.Register(ws.OpJoinRoom, router.Typed(func(connID string, d ws.JoinRoomData) error {
//	    return roomService.Join(connID, d)
//	}))
//
// Decode hatası da ValidationError'dır — client'ın gönderdiği JSON şemaya
// uymuyordur (ör. string beklenen alanda obje).
func Typed[T Validatable](fn func(connID string, payload T) error) HandlerFunc {
	return func(connID string, data json.RawMessage) error {
		var payload T
		if len(data) > 0 {
			if err := json.Unmarshal(data, &payload); err != nil {
				return pkg.NewValidationError(pkg.FieldIssue{
					Field:   "data",
					Message: "payload does not match the event schema",
				})
			}
		}

		if issues := payload.Validate(); len(issues) > 0 {
			return pkg.NewValidationError(issues...)
		}

		return fn(connID, payload)
	}
}
