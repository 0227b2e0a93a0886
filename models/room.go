package models

import "time"

// RoomUser, bir kullanıcının oda üyeliğinin join anında alınan snapshot'ıdır.
//
// Neden snapshot?
// Oda üyeliği bağlantı yaşam döngüsüne bağlıdır — kullanıcı ayrıldığında
// üyelik kaydı tamamen silinir. Leave broadcast'i, snapshot silinmeden ÖNCE
// okunmalıdır; aksi halde "kim ayrıldı" bilgisi kaybolur.
//
// UserID, auth olmadığında connection id'nin kendisidir. Handshake'te token
// verilmişse token'daki gerçek kullanıcı id'si kullanılır (multi-device).
type RoomUser struct {
	ConnectionID string    `json:"-"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	JoinedAt     time.Time `json:"joinedAt"`
}
