// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Go'da error'lar basit değerlerdir. Sabit domain error'ları errors.New()
// ile tanımlarız, yapılandırılmış error'lar (field listesi taşıyanlar) ise
// kendi struct tipleriyle tanımlanır. Karşılaştırma errors.Is / errors.As
// ile yapılır — string karşılaştırmasından çok daha güvenlidir:
//
//	if errors.Is(err, pkg.ErrNotInRoom) { ... }
//	var ve *pkg.ValidationError
//	if errors.As(err, &ve) { ... }
package pkg

import (
	"errors"
	"fmt"
)

// Domain-level error'lar.
// Handler'lar (services katmanı) bunları döner, transport katmanı (ws)
// yakalar ve gönderene error payload'ı olarak iletir. Hiçbiri fatal değildir.
var (
	// ErrNotInRoom: Event gönderen bağlantı odanın üyesi değil.
	ErrNotInRoom = errors.New("sender is not a member of the room")

	// ErrSenderNotFound: Gönderenin RoomUser snapshot'ı oda üyeliğinde yok.
	// Event sessizce düşürülmez — gönderen açıkça bilgilendirilir.
	ErrSenderNotFound = errors.New("sender not found in room membership")
)

// FieldIssue, tek bir payload alanının validation hatasını taşır.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError, bir inbound payload'ın şema kontrolünden geçemediğini
// belirtir. Field bazlı issue listesi taşır — client hangi alanın hatalı
// olduğunu gösterebilsin diye.
//
// Error subclass hiyerarşisi yerine tek bir struct tip + errors.As kullanılır.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "payload validation failed"
	}
	return fmt.Sprintf("payload validation failed: %s: %s", e.Issues[0].Field, e.Issues[0].Message)
}

// NewValidationError, issue listesinden ValidationError oluşturur.
func NewValidationError(issues ...FieldIssue) *ValidationError {
	return &ValidationError{Issues: issues}
}

// UnknownEventError, router tablosunda kayıtlı olmayan bir event adı için döner.
// Router'ı asla crash etmez — loglanır ve gönderene iletilir.
type UnknownEventError struct {
	Event string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event: %s", e.Event)
}
