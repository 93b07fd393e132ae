package gateway

import (
	"sync"
	"time"
)

// UserMap tracks the connections this instance holds for each user
type UserMap struct {
	mu    sync.RWMutex
	users map[string]*UserConns // userId -> UserConns
}

// UserConns holds all connections for a user
type UserConns struct {
	Clients []*Client
	Time    time.Time
}

// NewUserMap creates a new UserMap
func NewUserMap() *UserMap {
	return &UserMap{
		users: make(map[string]*UserConns),
	}
}

// Register registers a client
func (m *UserMap) Register(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, exists := m.users[client.UserId]
	if !exists {
		conns = &UserConns{
			Clients: make([]*Client, 0, 4),
		}
		m.users[client.UserId] = conns
	}

	conns.Clients = append(conns.Clients, client)
	conns.Time = time.Now()
}

// Unregister removes a client and reports whether it was registered
func (m *UserMap) Unregister(client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, exists := m.users[client.UserId]
	if !exists {
		return false
	}

	found := false
	remaining := make([]*Client, 0, len(conns.Clients))
	for _, c := range conns.Clients {
		if c.ConnId == client.ConnId {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	conns.Clients = remaining

	if len(conns.Clients) == 0 {
		delete(m.users, client.UserId)
	}

	return found
}

// GetAll gets all clients for a user
func (m *UserMap) GetAll(userId string) ([]*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns, exists := m.users[userId]
	if !exists {
		return nil, false
	}

	// Return a copy to avoid race conditions
	clients := make([]*Client, len(conns.Clients))
	copy(clients, conns.Clients)
	return clients, true
}

// AllClients returns every local connection
func (m *UserMap) AllClients() []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var clients []*Client
	for _, conns := range m.users {
		clients = append(clients, conns.Clients...)
	}
	return clients
}

