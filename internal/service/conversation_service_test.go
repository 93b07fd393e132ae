package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
)

func TestCreateConversation_IdempotentAndOrderIndependent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)

	first, created, err := env.conv.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice", first.StudentId)
	assert.Equal(t, "bob", first.LecturerId)
	assert.Equal(t, "alice", first.Student.Id)
	assert.Equal(t, "bob", first.Lecturer.Id)

	again, created, err := env.conv.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Id, again.Id)

	reversed, created, err := env.conv.CreateConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Id, reversed.Id)
	assert.Equal(t, "alice", reversed.StudentId)
	assert.Equal(t, "bob", reversed.LecturerId)

	count, err := env.repos.Member.CountByConversation(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	roles := map[string]string{}
	for _, m := range reversed.Members {
		roles[m.UserId] = m.Role
	}
	assert.Equal(t, map[string]string{"alice": constant.RoleStudent, "bob": constant.RoleLecturer}, roles)
}

func TestCreateConversation_AnnouncesOnlyOnCreation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)

	info, _, err := env.conv.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	events := env.pusher.byEvent(constant.EventNewConversation)
	require.Len(t, events, 1)
	assert.Equal(t, constant.UserRoom("bob"), events[0].Room)
	assert.ElementsMatch(t, []joined{
		{UserId: "alice", Room: constant.ConversationRoom(info.Id)},
		{UserId: "bob", Room: constant.ConversationRoom(info.Id)},
	}, env.pusher.joins)

	env.pusher.reset()
	_, _, err = env.conv.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, env.pusher.byEvent(constant.EventNewConversation))
}

func TestCreateConversation_Errors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "carol", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)
	env.seedUser(t, "dave", constant.RoleLecturer)
	env.seedUser(t, "root", constant.RoleAdmin)

	tests := []struct {
		name      string
		caller    string
		recipient string
		want      *errcode.Error
	}{
		{"same id", "alice", "alice", errcode.ErrSelfConversation},
		{"unknown recipient", "alice", "ghost", errcode.ErrUserNotFound},
		{"two students", "alice", "carol", errcode.ErrInvalidPairing},
		{"two lecturers", "bob", "dave", errcode.ErrInvalidPairing},
		{"admin", "alice", "root", errcode.ErrInvalidPairing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.conv.CreateConversation(ctx, tt.caller, tt.recipient)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	require.NoError(t, env.repos.DB.Model(&entity.Conversation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListConversations_OrderedByActivity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)
	env.seedUser(t, "dave", constant.RoleLecturer)

	withBob, _, err := env.conv.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	withDave, _, err := env.conv.CreateConversation(ctx, "alice", "dave")
	require.NoError(t, err)
	require.NoError(t, env.repos.DB.Model(&entity.Conversation{}).
		Where("id = ?", withDave.Id).
		UpdateColumn("updated_at", entity.Now().Add(-time.Hour)).Error)

	_, err = env.msg.SendDirectMessage(ctx, "bob", &SendDirectMessageRequest{ConversationId: withBob.Id, Content: "ping"})
	require.NoError(t, err)

	list, err := env.conv.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, withBob.Id, list[0].Id)
	assert.Equal(t, withDave.Id, list[1].Id)
	assert.Equal(t, 1, list[0].UnreadCounts["alice"])
	assert.Equal(t, 0, list[0].UnreadCounts["bob"])
	assert.Equal(t, []string{"bob"}, list[0].SeenBy)

	other, err := env.conv.ListConversations(ctx, "dave")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, withDave.Id, other[0].Id)
}

func TestMarkSeen_Scenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)

	sent, err := env.msg.SendDirectMessage(ctx, "alice", &SendDirectMessageRequest{RecipientId: "bob", Content: "Hi"})
	require.NoError(t, err)
	convId := sent.Conversation.Id
	env.pusher.reset()

	status, err := env.conv.MarkSeen(ctx, convId, "bob")
	require.NoError(t, err)
	assert.Contains(t, status.SeenBy, "bob")
	assert.Equal(t, 0, status.UnreadCount)
	assert.Equal(t, sent.Message.Id, entity.StrVal(status.LastSeenMessageId))
	assert.NotNil(t, status.LastReadAt)

	events := env.pusher.byEvent(constant.EventReadMessage)
	require.Len(t, events, 1)
	assert.Equal(t, constant.ConversationRoom(convId), events[0].Room)

	list, err := env.conv.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].SeenBy, "bob")
	assert.Equal(t, 0, list[0].UnreadCounts["bob"])
}

func TestMarkSeen_SenderIsNoop(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)

	sent, err := env.msg.SendDirectMessage(ctx, "alice", &SendDirectMessageRequest{RecipientId: "bob", Content: "Hi"})
	require.NoError(t, err)
	convId := sent.Conversation.Id

	before, err := env.conv.ListConversations(ctx, "alice")
	require.NoError(t, err)
	env.pusher.reset()

	status, err := env.conv.MarkSeen(ctx, convId, "alice")
	require.NoError(t, err)
	assert.Equal(t, before[0].SeenBy, status.SeenBy)
	assert.Equal(t, 0, status.UnreadCount)
	assert.Empty(t, env.pusher.byEvent(constant.EventReadMessage))

	after, err := env.conv.ListConversations(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, before[0].UnreadCounts, after[0].UnreadCounts)
	assert.Equal(t, before[0].SeenBy, after[0].SeenBy)
}

func TestMarkSeen_NothingToMarkAndAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)
	env.seedUser(t, "eve", constant.RoleStudent)

	info, _, err := env.conv.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	status, err := env.conv.MarkSeen(ctx, info.Id, "bob")
	require.NoError(t, err)
	assert.Equal(t, nothingToMark, status.Message)
	assert.Empty(t, status.SeenBy)

	_, err = env.conv.MarkSeen(ctx, info.Id, "eve")
	assert.ErrorIs(t, err, errcode.ErrNotConvMember)

	_, err = env.conv.MarkSeen(ctx, "missing", "bob")
	assert.ErrorIs(t, err, errcode.ErrConvNotFound)
}

func TestMembershipHelpers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)

	info, _, err := env.conv.CreateConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	ok, err := env.conv.IsMember(ctx, info.Id, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.conv.IsMember(ctx, info.Id, "mallory")
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := env.conv.ConversationIdsOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{info.Id}, ids)
}
