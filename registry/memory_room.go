package registry

import (
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/akinalp/huddle/models"
)

// roomShardCount, oda tablosunun bölündüğü shard sayısı.
// Aynı oda id'si her zaman aynı shard'a düşer — tek bir odanın mutasyonları
// o shard'ın kilidi altında total order'a girer. Farklı odalar çoğunlukla
// farklı shard'lara düşer, cross-room paralellik korunur.
const roomShardCount = 32

// roomState, tek bir odanın in-memory durumu.
type roomState struct {
	// members: connID → join anında alınan RoomUser snapshot'ı
	members   map[string]models.RoomUser
	createdAt time.Time
}

// roomShard, oda tablosunun tek bir dilimi.
type roomShard struct {
	mu    sync.RWMutex
	rooms map[string]*roomState
}

// memoryRoomRegistry, RoomRegistry'nin in-memory implementasyonu.
//
// İki ayrı kilit alanı vardır ve asla iç içe tutulmazlar (deadlock riski yok):
// 1. Oda shard'ları — üye map'i mutasyonlarını oda bazında serialize eder.
// 2. connRooms index'i — bağlantı → oda seti; kendi mutex'i ile korunur.
//
// Bir operasyon önce shard kilidini alıp bırakır, sonra index kilidini alır.
// İki map arası görünürlük anlık olarak ayrışabilir ama her operasyon
// tamamlandığında çift yönlü tutarlılık sağlanmış olur; aynı odaya dokunan
// iki mutasyon shard kilidi sayesinde asla interleave etmez.
type memoryRoomRegistry struct {
	shards [roomShardCount]roomShard

	indexMu   sync.RWMutex
	connRooms map[string]map[string]struct{}
}

// NewMemoryRoomRegistry, constructor — interface döner.
func NewMemoryRoomRegistry() RoomRegistry {
	r := &memoryRoomRegistry{
		connRooms: make(map[string]map[string]struct{}),
	}
	for i := range r.shards {
		r.shards[i].rooms = make(map[string]*roomState)
	}
	return r
}

// shardFor, oda id'sini fnv-1a hash ile bir shard'a eşler.
func (r *memoryRoomRegistry) shardFor(roomID string) *roomShard {
	h := fnv.New32a()
	h.Write([]byte(roomID))
	return &r.shards[h.Sum32()%roomShardCount]
}

func (r *memoryRoomRegistry) CreateRoom(roomID string) {
	s := r.shardFor(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; ok {
		return
	}
	s.rooms[roomID] = &roomState{
		members:   make(map[string]models.RoomUser),
		createdAt: time.Now(),
	}
}

func (r *memoryRoomRegistry) JoinRoom(roomID string, user models.RoomUser) {
	s := r.shardFor(roomID)
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		// Lazy oluşturma — oda ilk join ile var olur.
		room = &roomState{
			members:   make(map[string]models.RoomUser),
			createdAt: time.Now(),
		}
		s.rooms[roomID] = room
	}
	room.members[user.ConnectionID] = user
	s.mu.Unlock()

	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	if _, ok := r.connRooms[user.ConnectionID]; !ok {
		r.connRooms[user.ConnectionID] = make(map[string]struct{})
	}
	r.connRooms[user.ConnectionID][roomID] = struct{}{}
}

func (r *memoryRoomRegistry) LeaveRoom(roomID, connID string) (models.RoomUser, bool) {
	s := r.shardFor(roomID)
	s.mu.Lock()
	var snapshot models.RoomUser
	found := false
	if room, ok := s.rooms[roomID]; ok {
		if member, exists := room.members[connID]; exists {
			// Snapshot silmeden önce alınır — leave broadcast'i buna ihtiyaç duyar.
			snapshot = member
			found = true
			delete(room.members, connID)
		}
		// Son üye ayrıldı — oda tamamen silinir, boş oda durumu tutulmaz.
		if len(room.members) == 0 {
			delete(s.rooms, roomID)
		}
	}
	s.mu.Unlock()

	// Oda seti güncellemesi koşulsuzdur — üyelik bulunamasa bile index'ten
	// temizlenir (her iki taraf zaten yoksa no-op).
	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	if set, ok := r.connRooms[connID]; ok {
		delete(set, roomID)
		if len(set) == 0 {
			delete(r.connRooms, connID)
		}
	}

	return snapshot, found
}

func (r *memoryRoomRegistry) LeaveAllRooms(connID string) []LeftRoom {
	// Önce snapshot: LeaveRoom index'i mutate eder, iterasyon sırasında
	// aynı map üzerinde çalışamayız.
	roomIDs := r.UserRooms(connID)

	left := make([]LeftRoom, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		user, found := r.LeaveRoom(roomID, connID)
		left = append(left, LeftRoom{RoomID: roomID, User: user, Found: found})
	}
	return left
}

func (r *memoryRoomRegistry) RoomUsers(roomID string) []models.RoomUser {
	s := r.shardFor(roomID)
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.RUnlock()
		return []models.RoomUser{}
	}
	users := make([]models.RoomUser, 0, len(room.members))
	for _, u := range room.members {
		users = append(users, u)
	}
	s.mu.RUnlock()

	// Join sırasına göre stabil roster — frontend listeyi olduğu gibi basar.
	sort.Slice(users, func(i, j int) bool {
		if users[i].JoinedAt.Equal(users[j].JoinedAt) {
			return users[i].ConnectionID < users[j].ConnectionID
		}
		return users[i].JoinedAt.Before(users[j].JoinedAt)
	})
	return users
}

func (r *memoryRoomRegistry) UserRooms(connID string) []string {
	r.indexMu.RLock()
	defer r.indexMu.RUnlock()

	set, ok := r.connRooms[connID]
	if !ok {
		return []string{}
	}
	rooms := make([]string, 0, len(set))
	for roomID := range set {
		rooms = append(rooms, roomID)
	}
	return rooms
}

func (r *memoryRoomRegistry) RoomExists(roomID string) bool {
	s := r.shardFor(roomID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.rooms[roomID]
	return ok
}

func (r *memoryRoomRegistry) IsMember(roomID, connID string) bool {
	_, ok := r.Member(roomID, connID)
	return ok
}

func (r *memoryRoomRegistry) Member(roomID, connID string) (models.RoomUser, bool) {
	s := r.shardFor(roomID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return models.RoomUser{}, false
	}
	member, exists := room.members[connID]
	return member, exists
}
