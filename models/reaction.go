package models

import "time"

// AllowedEmojis, reaction olarak kabul edilen sabit emoji listesi.
// Liste dışı emoji'ler validation katmanında reddedilir — serbest metin
// emoji kabul etmek hem UI tutarlılığını bozar hem abuse kapısı açar.
var AllowedEmojis = []string{"👍", "❤️", "😂", "😮", "😢", "🔥"}

// IsAllowedEmoji, verilen emoji'nin izin listesinde olup olmadığını döner.
func IsAllowedEmoji(emoji string) bool {
	for _, e := range AllowedEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}

// Reaction, bir kullanıcının bir mesaja verdiği tek bir emoji tepkisini
// temsil eder.
//
// (messageID, emoji, userID) üçlüsü unique'tir — aynı kullanıcı aynı mesaja
// aynı emojiyi sadece bir kez ekleyebilir. Bu kural ReactionIndex.Add
// tarafından korunur.
type Reaction struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reactor, broadcast payload'ındaki tek bir tepki veren kullanıcı görünümü.
// Frontend her emoji için kimlerin tepki verdiğini göstermek ister;
// timestamp ve emoji tekrarı taşımaya gerek yoktur.
type Reactor struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
