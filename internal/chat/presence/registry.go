// Package presence tracks which users currently hold a live real-time
// connection on this process.
package presence

import (
	"sort"
	"sync"

	"taskchat/internal/chat/models"
)

// Conn is a live connection that events can be pushed to.
type Conn interface {
	ID() string
	Send(event models.Event) error
}

type Registry interface {
	// Join binds userID to conn, replacing any earlier connection.
	Join(userID string, conn Conn)
	IsOnline(userID string) bool
	Resolve(userID string) (Conn, bool)
	// Leave drops the entry held by conn. A connection that was superseded
	// by a later Join leaves nothing behind.
	Leave(conn Conn) (userID string, removed bool)
	OnlineUsers() []string
}

type memoryRegistry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() Registry {
	return &memoryRegistry{
		conns: make(map[string]Conn),
	}
}

func (r *memoryRegistry) Join(userID string, conn Conn) {
	if userID == "" || conn == nil {
		return
	}
	r.mu.Lock()
	r.conns[userID] = conn
	r.mu.Unlock()
}

func (r *memoryRegistry) IsOnline(userID string) bool {
	_, ok := r.Resolve(userID)
	return ok
}

func (r *memoryRegistry) Resolve(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

func (r *memoryRegistry) Leave(conn Conn) (string, bool) {
	if conn == nil {
		return "", false
	}
	id := conn.ID()

	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, c := range r.conns {
		if c.ID() == id {
			delete(r.conns, userID)
			return userID, true
		}
	}
	return "", false
}

func (r *memoryRegistry) OnlineUsers() []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		users = append(users, userID)
	}
	r.mu.RUnlock()

	sort.Strings(users)
	return users
}
