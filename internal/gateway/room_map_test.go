package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomMap(t *testing.T) {
	m := NewRoomMap()
	a := &Client{UserId: "a", ConnId: "1"}
	b := &Client{UserId: "b", ConnId: "2"}

	m.Join("conversation:x", a)
	m.Join("conversation:x", a)
	m.Join("conversation:x", b)
	m.Join("user:a", a)

	assert.Len(t, m.Members("conversation:x"), 2)
	assert.ElementsMatch(t, []string{"conversation:x", "user:a"}, m.RoomsOf(a))

	m.Leave("conversation:x", b)
	assert.Equal(t, []*Client{a}, m.Members("conversation:x"))
	assert.Empty(t, m.RoomsOf(b))

	m.LeaveAll(a)
	assert.Empty(t, m.Members("conversation:x"))
	assert.Empty(t, m.Members("user:a"))
	assert.Empty(t, m.RoomsOf(a))
	assert.Empty(t, m.rooms)
	assert.Empty(t, m.byClient)
}

func TestRoomMapSkipsClosedClient(t *testing.T) {
	m := NewRoomMap()
	c := &Client{UserId: "a", ConnId: "1"}

	assert.True(t, m.Join("user:a", c))
	// a join racing the unregister of a closing client
	c.closed.Store(true)
	m.LeaveAll(c)
	assert.False(t, m.Join("conversation:x", c))

	assert.Empty(t, m.Members("conversation:x"))
	assert.Empty(t, m.RoomsOf(c))
	assert.Empty(t, m.byClient)
}

func TestUserMap(t *testing.T) {
	m := NewUserMap()
	c1 := &Client{UserId: "a", ConnId: "1"}
	c2 := &Client{UserId: "a", ConnId: "2"}

	m.Register(c1)
	m.Register(c2)
	clients, ok := m.GetAll("a")
	assert.True(t, ok)
	assert.Len(t, clients, 2)

	assert.True(t, m.Unregister(c1))
	assert.False(t, m.Unregister(c1))
	assert.True(t, m.Unregister(c2))

	_, ok = m.GetAll("a")
	assert.False(t, ok)
	assert.Empty(t, m.AllClients())
}
