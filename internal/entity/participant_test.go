package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
)

func TestParticipantOf(t *testing.T) {
	p, err := ParticipantOf(&User{Id: "s", Role: constant.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, Student{Id: "s"}, p)

	p, err = ParticipantOf(&User{Id: "l", Role: constant.RoleLecturer})
	require.NoError(t, err)
	assert.Equal(t, Lecturer{Id: "l"}, p)

	_, err = ParticipantOf(&User{Id: "a", Role: constant.RoleAdmin})
	assert.ErrorIs(t, err, errcode.ErrInvalidPairing)
}

func TestResolvePair_OrderIndependent(t *testing.T) {
	s, l := Student{Id: "s"}, Lecturer{Id: "l"}

	p1, err := ResolvePair(s, l)
	require.NoError(t, err)
	p2, err := ResolvePair(l, s)
	require.NoError(t, err)

	assert.Equal(t, Pair{StudentId: "s", LecturerId: "l"}, p1)
	assert.Equal(t, p1, p2)
	assert.Equal(t, "l", p1.Other("s"))
	assert.Equal(t, "s", p1.Other("l"))
	assert.True(t, p1.Has("s"))
	assert.False(t, p1.Has("x"))
}

func TestResolvePair_InvalidPairing(t *testing.T) {
	tests := []struct {
		name string
		a, b Participant
	}{
		{"two students", Student{Id: "a"}, Student{Id: "b"}},
		{"two lecturers", Lecturer{Id: "a"}, Lecturer{Id: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePair(tt.a, tt.b)
			assert.ErrorIs(t, err, errcode.ErrInvalidPairing)
		})
	}
}
