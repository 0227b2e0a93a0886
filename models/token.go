package models

// TokenClaims, WebSocket handshake'inde doğrulanan JWT'den çıkarılan
// kullanıcı kimliği.
//
// Token opsiyoneldir: verilmezse transport'un atadığı connection id
// kullanıcı id'si olarak kullanılır. Token verilirse UserID gerçek
// kimliktir ve aynı kullanıcının birden fazla cihazı aynı UserID altında
// toplanır (EmitToUser fan-out'u bu sayede çalışır).
type TokenClaims struct {
	UserID   string
	Username string
}
