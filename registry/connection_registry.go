// Package registry, sunucunun tüm in-memory durumunu yönetir:
// bağlantı↔kullanıcı index'i, oda üyelikleri ve reaction index'i.
//
// Repository katmanıyla aynı desen uygulanır — her store bir interface +
// unexported in-memory implementasyon çiftidir. Kalıcılık bilinçli olarak
// yoktur: tüm durum canlı bağlantıların yaşam döngüsüne bağlıdır ve süreç
// yeniden başladığında sıfırdan kurulur.
package registry

// ConnectionRegistry, bağlantı ↔ kullanıcı çift yönlü index'i.
//
// Bir kullanıcının aynı anda birden fazla bağlantısı olabilir (multi-device):
// aynı token ile açılan her tab/cihaz ayrı bir connection id alır ama aynı
// user id altında toplanır. EmitToUser fan-out'u bu index üzerinden çalışır.
//
// Tüm operasyonlar totaldir — hata durumu yoktur. Olmayan bir bağlantıyı
// silmek veya olmayan bir kullanıcıyı sorgulamak no-op/boş sonuçtur.
type ConnectionRegistry interface {
	// AddConnection, bağlantıyı her iki map'e idempotent olarak ekler.
	// Aynı connID tekrar eklenirse kullanıcı eşlemesi güncellenir.
	AddConnection(connID, userID string)

	// RemoveConnection, bağlantıyı her iki map'ten çıkarır.
	// Kullanıcının bağlantı seti boşalırsa kullanıcı kaydı tamamen silinir.
	RemoveConnection(connID string)

	// ConnectionsOf, kullanıcının tüm aktif bağlantı id'lerini döner.
	// Kullanıcı yoksa boş slice döner.
	ConnectionsOf(userID string) []string

	// UserOf, bağlantının kullanıcı id'sini döner. İkinci dönüş değeri
	// bağlantının kayıtlı olup olmadığını belirtir.
	UserOf(connID string) (string, bool)
}
