package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/internal/repository"
	"github.com/mbeoliero/coursehub/internal/repository/repotest"
	"github.com/mbeoliero/coursehub/pkg/constant"
)

func seedUser(t *testing.T, repos *repository.Repositories, id, role string) *entity.User {
	t.Helper()
	u := &entity.User{Id: id, Email: id + "@example.com", Name: id, Role: role}
	require.NoError(t, repos.User.Create(context.Background(), u))
	return u
}

func TestConversationRepo_UpsertByPairIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepositories(t)
	seedUser(t, repos, "s1", constant.RoleStudent)
	seedUser(t, repos, "l1", constant.RoleLecturer)
	pair := entity.Pair{StudentId: "s1", LecturerId: "l1"}

	first, created, err := repos.Conversation.UpsertByPair(ctx, nil, pair)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, created)

	second, created, err := repos.Conversation.UpsertByPair(ctx, nil, pair)
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.False(t, created)

	require.NoError(t, repos.Member.EnsureMembers(ctx, nil, first.Id, pair))
	require.NoError(t, repos.Member.EnsureMembers(ctx, nil, first.Id, pair))
	count, err := repos.Member.CountByConversation(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestConversationRepo_UpsertRevivesDestroyed(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepositories(t)
	pair := entity.Pair{StudentId: "s1", LecturerId: "l1"}

	conv, _, err := repos.Conversation.UpsertByPair(ctx, nil, pair)
	require.NoError(t, err)
	require.NoError(t, repos.DB.Model(&entity.Conversation{}).Where("id = ?", conv.Id).Update("is_destroyed", true).Error)

	gone, err := repos.Conversation.GetByPair(ctx, nil, pair)
	require.NoError(t, err)
	assert.Nil(t, gone)

	revived, created, err := repos.Conversation.UpsertByPair(ctx, nil, pair)
	require.NoError(t, err)
	require.NotNil(t, revived)
	assert.Equal(t, conv.Id, revived.Id)
	assert.True(t, created)

	again, created, err := repos.Conversation.UpsertByPair(ctx, nil, pair)
	require.NoError(t, err)
	assert.Equal(t, conv.Id, again.Id)
	assert.False(t, created)
}

func TestConversationRepo_UpsertAfterConcurrentInsertIsNotCreated(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepositories(t)
	pair := entity.Pair{StudentId: "s1", LecturerId: "l1"}

	winner := &entity.Conversation{Id: "conv-winner", StudentId: "s1", LecturerId: "l1", CreatedAt: entity.Now(), UpdatedAt: entity.Now()}
	// the competing insert commits between our pair lookup and our insert
	err := repos.Transaction(ctx, func(tx *gorm.DB) error {
		conv, err := repos.Conversation.GetByPair(ctx, tx, pair)
		require.NoError(t, err)
		require.Nil(t, conv)
		if err := tx.Create(winner).Error; err != nil {
			return err
		}
		conv, created, err := repos.Conversation.UpsertByPair(ctx, tx, pair)
		require.NoError(t, err)
		assert.Equal(t, "conv-winner", conv.Id)
		assert.False(t, created)
		return nil
	})
	require.NoError(t, err)
}

func TestMemberRepo_UnreadBookkeeping(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepositories(t)
	pair := entity.Pair{StudentId: "s1", LecturerId: "l1"}
	conv, _, err := repos.Conversation.UpsertByPair(ctx, nil, pair)
	require.NoError(t, err)
	require.NoError(t, repos.Member.EnsureMembers(ctx, nil, conv.Id, pair))

	now := entity.Now()
	err = repos.Transaction(ctx, func(tx *gorm.DB) error {
		if err := repos.Member.IncrementUnread(ctx, tx, conv.Id, "s1", now); err != nil {
			return err
		}
		return repos.Member.IncrementUnread(ctx, tx, conv.Id, "s1", now)
	})
	require.NoError(t, err)

	lecturer, err := repos.Member.Get(ctx, nil, conv.Id, "l1")
	require.NoError(t, err)
	assert.Equal(t, 2, lecturer.UnreadCount)
	student, err := repos.Member.Get(ctx, nil, conv.Id, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, student.UnreadCount)

	err = repos.Transaction(ctx, func(tx *gorm.DB) error {
		return repos.Member.MarkSeen(ctx, tx, conv.Id, "l1", "m1", now)
	})
	require.NoError(t, err)
	lecturer, err = repos.Member.Get(ctx, nil, conv.Id, "l1")
	require.NoError(t, err)
	assert.Equal(t, 0, lecturer.UnreadCount)
	assert.Equal(t, "m1", entity.StrVal(lecturer.LastSeenMessageId))

	stranger, err := repos.Member.Get(ctx, nil, conv.Id, "x")
	require.NoError(t, err)
	assert.Nil(t, stranger)
}

func TestMessageRepo_ListBefore(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepositories(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		content := string(rune('a' + i))
		msg := &entity.Message{
			Id:             string(rune('1' + i)),
			ConversationId: "c1",
			SenderId:       "s1",
			Content:        &content,
			CreatedAt:      base.Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, repos.Message.Create(ctx, repos.DB, msg))
	}
	require.NoError(t, repos.Message.SoftDelete(ctx, "3"))

	latest, err := repos.Message.ListBefore(ctx, "c1", nil, 10)
	require.NoError(t, err)
	require.Len(t, latest, 4)
	assert.Equal(t, "5", latest[0].Id)

	cursor := base.Add(3 * time.Millisecond)
	older, err := repos.Message.ListBefore(ctx, "c1", &cursor, 10)
	require.NoError(t, err)
	ids := make([]string, 0, len(older))
	for _, m := range older {
		ids = append(ids, m.Id)
	}
	assert.Equal(t, []string{"2", "1"}, ids)
}

func TestNotificationRepo_ListAndMarkAll(t *testing.T) {
	ctx := context.Background()
	repos := repotest.NewRepositories(t)

	var list []*entity.Notification
	for i := 0; i < 3; i++ {
		list = append(list, &entity.Notification{
			Id:     entity.NewId(),
			UserId: "u1",
			Title:  "t",
			Type:   constant.NotificationTypeSystem,
		})
	}
	require.NoError(t, repos.Notification.CreateBatch(ctx, list))

	items, total, err := repos.Notification.List(ctx, "u1", true, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	changed, err := repos.Notification.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	unread, err := repos.Notification.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}
