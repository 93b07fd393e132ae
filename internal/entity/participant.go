package entity

import (
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
)

// Participant is one side of a direct conversation. The only variants are
// Student and Lecturer.
type Participant interface {
	UserId() string
	Role() string
	participant()
}

// Student is the student side of a conversation
type Student struct {
	Id string
}

func (s Student) UserId() string { return s.Id }
func (s Student) Role() string   { return constant.RoleStudent }
func (Student) participant()     {}

// Lecturer is the lecturer side of a conversation
type Lecturer struct {
	Id string
}

func (l Lecturer) UserId() string { return l.Id }
func (l Lecturer) Role() string   { return constant.RoleLecturer }
func (Lecturer) participant()     {}

// ParticipantOf converts a user into a conversation participant.
// Users with any other role cannot take part in a direct conversation.
func ParticipantOf(u *User) (Participant, error) {
	switch u.Role {
	case constant.RoleStudent:
		return Student{Id: u.Id}, nil
	case constant.RoleLecturer:
		return Lecturer{Id: u.Id}, nil
	default:
		return nil, errcode.ErrInvalidPairing
	}
}

// Pair is the ordered (student, lecturer) key of a conversation
type Pair struct {
	StudentId  string
	LecturerId string
}

// ResolvePair orders two participants into a Pair regardless of argument order
func ResolvePair(a, b Participant) (Pair, error) {
	switch x := a.(type) {
	case Student:
		if y, ok := b.(Lecturer); ok {
			return Pair{StudentId: x.Id, LecturerId: y.Id}, nil
		}
	case Lecturer:
		if y, ok := b.(Student); ok {
			return Pair{StudentId: y.Id, LecturerId: x.Id}, nil
		}
	}
	return Pair{}, errcode.ErrInvalidPairing
}

// Participants returns both sides of the pair
func (p Pair) Participants() []Participant {
	return []Participant{Student{Id: p.StudentId}, Lecturer{Id: p.LecturerId}}
}

// Has reports whether userId is one side of the pair
func (p Pair) Has(userId string) bool {
	return p.StudentId == userId || p.LecturerId == userId
}

// Other returns the other side of the pair
func (p Pair) Other(userId string) string {
	if p.StudentId == userId {
		return p.LecturerId
	}
	return p.StudentId
}
