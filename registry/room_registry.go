package registry

import "github.com/akinalp/huddle/models"

// LeftRoom, LeaveAllRooms'un tek bir oda için ürettiği sonuç.
//
// User snapshot'ı leave işleminden ÖNCE alınır — disconnect temizliğinde
// "kim ayrıldı" broadcast'i bu snapshot'tan beslenir. Found=false ise
// bağlantı o odada üye olarak bulunamamıştır (broadcast üretilmez).
type LeftRoom struct {
	RoomID string
	User   models.RoomUser
	Found  bool
}

// RoomRegistry, oda üyeliği ve oda yaşam döngüsünü yönetir.
//
// Oda yaşam döngüsü türetilmiştir, bağımsız bir durum değildir:
// oda ilk join'de oluşur, son üye ayrıldığında tamamen silinir.
// "Boş oda" diye bir durum tutulmaz.
//
// Çift yönlü tutarlılık bu registry'nin sorumluluğudur: bir connection id
// bir odanın üye map'indeyse, o oda id'si bağlantının oda setinde de vardır
// (ve tersi). Her operasyon sonrasında bu değişmez korunur.
type RoomRegistry interface {
	// CreateRoom, odayı yoksa oluşturur; varsa no-op. Normal akışta odalar
	// JoinRoom tarafından lazy oluşturulur — bu metod açık oda ön-kaydı
	// isteyen caller'lar içindir.
	CreateRoom(roomID string)

	// JoinRoom, odayı gerekirse oluşturur ve üye kaydını
	// user.ConnectionID anahtarıyla ekler/üzerine yazar.
	JoinRoom(roomID string, user models.RoomUser)

	// LeaveRoom, üye kaydını siler; oda boşalırsa odayı tamamen siler.
	// roomID bağlantının oda setinden koşulsuz çıkarılır. Silinen üyenin
	// snapshot'ını ve bulunup bulunmadığını döner — broadcast, snapshot
	// silinmeden önce alınmış bu değerden beslenir.
	LeaveRoom(roomID, connID string) (models.RoomUser, bool)

	// LeaveAllRooms, bağlantının mevcut oda setinin snapshot'ını alır ve
	// her biri için LeaveRoom çağırır. Sadece disconnect path'i kullanır.
	LeaveAllRooms(connID string) []LeftRoom

	// RoomUsers, odanın üyelerini join sırasına göre döner.
	// Oda yoksa boş slice.
	RoomUsers(roomID string) []models.RoomUser

	// UserRooms, bağlantının üye olduğu oda id'lerini döner.
	UserRooms(connID string) []string

	// RoomExists, odanın var olup olmadığını döner.
	RoomExists(roomID string) bool

	// IsMember, bağlantının odada üye olup olmadığını döner.
	IsMember(roomID, connID string) bool

	// Member, bağlantının odadaki RoomUser snapshot'ını döner.
	// Handler'lar gönderen kimliğini (username) buradan çözer.
	Member(roomID, connID string) (models.RoomUser, bool)
}
