package registry

import "github.com/akinalp/huddle/models"

// ReactionIndex, mesaj bazlı emoji → tepki listesi index'i.
//
// Bu bileşen saf bir veri yapısıdır — toggle kararı (var mı? kaldır :
// ekle) bilinçli olarak caller'a (ReactionService) bırakılmıştır. Index
// sadece primitive'leri sunar, policy taşımaz; böylece yeniden kullanılabilir.
//
// Yaşam döngüsü: bir (messageID, emoji) bucket'ı sadece ≥1 tepki varken
// yaşar; bir messageID kaydı sadece ≥1 dolu bucket varken yaşar. Boşalan
// her seviye anında silinir — geçmiş tutulmaz.
type ReactionIndex interface {
	// Add, tepkiyi ekler. (messageID, r.Emoji, r.UserID) için zaten kayıt
	// varsa no-op. Bucket içi ekleme sırası korunur.
	Add(messageID string, r models.Reaction)

	// Remove, eşleşen tepkiyi siler. Bucket boşalırsa bucket'ı, mesajın
	// tüm bucket'ları boşalırsa mesaj kaydını da siler. Kayıt yoksa no-op.
	Remove(messageID, userID, emoji string)

	// ReactionsOf, mesajın tüm tepkilerini emoji → sıralı liste olarak
	// döner. Dönen map caller'a aittir (deep copy) — index'in iç durumu
	// üzerinden mutasyon mümkün değildir. Tepki yoksa boş map.
	ReactionsOf(messageID string) map[string][]models.Reaction

	// HasReacted, kullanıcının mesaja o emoji ile tepki verip vermediğini döner.
	HasReacted(messageID, userID, emoji string) bool
}
