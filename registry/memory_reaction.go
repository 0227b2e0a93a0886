package registry

import (
	"hash/fnv"
	"sync"

	"github.com/akinalp/huddle/models"
)

// reactionShardCount, reaction index'inin shard sayısı.
// Aynı mesaja ait tüm mutasyonlar aynı shard kilidi altında serialize olur —
// aynı kullanıcının eşzamanlı iki toggle'ı deterministik çözülür (ikinci
// toggle birincinin sonucunu görür ve tersine çevirir).
const reactionShardCount = 32

// reactionShard, index'in tek bir dilimi.
type reactionShard struct {
	mu sync.RWMutex
	// messages: messageID → emoji → ekleme sıralı tepki listesi
	messages map[string]map[string][]models.Reaction
}

// memoryReactionIndex, ReactionIndex'in in-memory implementasyonu.
type memoryReactionIndex struct {
	shards [reactionShardCount]reactionShard
}

// NewMemoryReactionIndex, constructor — interface döner.
func NewMemoryReactionIndex() ReactionIndex {
	idx := &memoryReactionIndex{}
	for i := range idx.shards {
		idx.shards[i].messages = make(map[string]map[string][]models.Reaction)
	}
	return idx
}

func (idx *memoryReactionIndex) shardFor(messageID string) *reactionShard {
	h := fnv.New32a()
	h.Write([]byte(messageID))
	return &idx.shards[h.Sum32()%reactionShardCount]
}

func (idx *memoryReactionIndex) Add(messageID string, r models.Reaction) {
	s := idx.shardFor(messageID)
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, ok := s.messages[messageID]
	if !ok {
		buckets = make(map[string][]models.Reaction)
		s.messages[messageID] = buckets
	}

	// Aynı (emoji, userID) için ikinci kayıt yasak — duplicate no-op.
	for _, existing := range buckets[r.Emoji] {
		if existing.UserID == r.UserID {
			return
		}
	}

	buckets[r.Emoji] = append(buckets[r.Emoji], r)
}

func (idx *memoryReactionIndex) Remove(messageID, userID, emoji string) {
	s := idx.shardFor(messageID)
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets, ok := s.messages[messageID]
	if !ok {
		return
	}
	bucket, ok := buckets[emoji]
	if !ok {
		return
	}

	for i, r := range bucket {
		if r.UserID == userID {
			// Sıra korunarak çıkar.
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}

	// Cascade temizlik: boş bucket → bucket silinir; bucket'sız mesaj →
	// mesaj kaydı silinir. Index'te asla boş seviye kalmaz.
	if len(bucket) == 0 {
		delete(buckets, emoji)
	} else {
		buckets[emoji] = bucket
	}
	if len(buckets) == 0 {
		delete(s.messages, messageID)
	}
}

func (idx *memoryReactionIndex) ReactionsOf(messageID string) map[string][]models.Reaction {
	s := idx.shardFor(messageID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]models.Reaction)
	buckets, ok := s.messages[messageID]
	if !ok {
		return result
	}
	for emoji, bucket := range buckets {
		copied := make([]models.Reaction, len(bucket))
		copy(copied, bucket)
		result[emoji] = copied
	}
	return result
}

func (idx *memoryReactionIndex) HasReacted(messageID, userID, emoji string) bool {
	s := idx.shardFor(messageID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets, ok := s.messages[messageID]
	if !ok {
		return false
	}
	for _, r := range buckets[emoji] {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
