package registry

import "sync"

// memoryConnectionRegistry, ConnectionRegistry'nin in-memory implementasyonu.
//
// Tek bir RWMutex ile korunur — bağlantı aç/kapa trafiği oda/mesaj
// trafiğine göre seyrektir, global serialization burada sorun yaratmaz.
type memoryConnectionRegistry struct {
	mu sync.RWMutex

	// users: connID → userID
	users map[string]string

	// conns: userID → connID set (multi-device)
	conns map[string]map[string]struct{}
}

// NewMemoryConnectionRegistry, constructor — interface döner.
func NewMemoryConnectionRegistry() ConnectionRegistry {
	return &memoryConnectionRegistry{
		users: make(map[string]string),
		conns: make(map[string]map[string]struct{}),
	}
}

func (r *memoryConnectionRegistry) AddConnection(connID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Upsert: connID daha önce başka bir kullanıcıya bağlıysa eski setten çıkar.
	if prev, ok := r.users[connID]; ok && prev != userID {
		r.detachLocked(connID, prev)
	}

	r.users[connID] = userID
	if _, ok := r.conns[userID]; !ok {
		r.conns[userID] = make(map[string]struct{})
	}
	r.conns[userID][connID] = struct{}{}
}

func (r *memoryConnectionRegistry) RemoveConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.users[connID]
	if !ok {
		return
	}

	delete(r.users, connID)
	r.detachLocked(connID, userID)
}

// detachLocked, connID'yi kullanıcının bağlantı setinden çıkarır ve set
// boşalırsa kullanıcı kaydını siler. r.mu yazma kilidi altında çağrılmalıdır.
func (r *memoryConnectionRegistry) detachLocked(connID, userID string) {
	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

func (r *memoryConnectionRegistry) ConnectionsOf(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.conns[userID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for connID := range set {
		ids = append(ids, connID)
	}
	return ids
}

func (r *memoryConnectionRegistry) UserOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.users[connID]
	return userID, ok
}
