package gateway

import "sync"

// RoomMap tracks room membership of local connections in both directions
type RoomMap struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	byClient map[*Client]map[string]struct{}
}

// NewRoomMap creates a new RoomMap
func NewRoomMap() *RoomMap {
	return &RoomMap{
		rooms:    make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client]map[string]struct{}),
	}
}

// Join adds client to room. Joining twice is a no-op. A closed client is
// never added: it is marked closed before LeaveAll runs, so checking under
// the lock keeps callers outside the event loop from re-adding it.
func (m *RoomMap) Join(room string, client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client.IsClosed() {
		return false
	}

	members, ok := m.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		m.rooms[room] = members
	}
	members[client] = struct{}{}

	joined, ok := m.byClient[client]
	if !ok {
		joined = make(map[string]struct{})
		m.byClient[client] = joined
	}
	joined[room] = struct{}{}
	return true
}

// Leave removes client from room
func (m *RoomMap) Leave(room string, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveLocked(room, client)
}

// LeaveAll removes client from every room it joined
func (m *RoomMap) LeaveAll(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for room := range m.byClient[client] {
		m.leaveLocked(room, client)
	}
	delete(m.byClient, client)
}

func (m *RoomMap) leaveLocked(room string, client *Client) {
	if members, ok := m.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(m.rooms, room)
		}
	}
	if joined, ok := m.byClient[client]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(m.byClient, client)
		}
	}
}

// Members returns a snapshot of the connections in room
func (m *RoomMap) Members(room string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.rooms[room]
	clients := make([]*Client, 0, len(members))
	for c := range members {
		clients = append(clients, c)
	}
	return clients
}

// RoomsOf returns the rooms client has joined
func (m *RoomMap) RoomsOf(client *Client) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]string, 0, len(m.byClient[client]))
	for room := range m.byClient[client] {
		rooms = append(rooms, room)
	}
	return rooms
}
