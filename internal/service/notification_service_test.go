package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
)

func TestNotification_CreateEmitsTypedEvents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)

	tests := []struct {
		typ   string
		extra string
	}{
		{constant.NotificationTypeOrderStatus, constant.EventOrderStatusUpdated},
		{constant.NotificationTypePayment, constant.EventPaymentConfirmed},
		{constant.NotificationTypeSystem, ""},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			env.pusher.reset()
			n, err := env.notif.Create(ctx, &CreateNotificationRequest{
				UserId:    "alice",
				Title:     "title",
				Message:   "body",
				Type:      tt.typ,
				RelatedId: "order-1",
				Data:      map[string]interface{}{"status": "paid"},
			})
			require.NoError(t, err)
			assert.JSONEq(t, `{"status":"paid"}`, string(n.Data))

			require.Len(t, env.pusher.byEvent(constant.EventNewNotification), 1)
			assert.Equal(t, constant.UserRoom("alice"), env.pusher.events[0].Room)
			if tt.extra != "" {
				assert.Len(t, env.pusher.byEvent(tt.extra), 1)
				assert.Len(t, env.pusher.events, 2)
			} else {
				assert.Len(t, env.pusher.events, 1)
			}
		})
	}

	_, err := env.notif.Create(ctx, &CreateNotificationRequest{UserId: "ghost", Title: "t", Message: "m", Type: constant.NotificationTypeSystem})
	assert.ErrorIs(t, err, errcode.ErrUserNotFound)
}

func TestNotification_ReadAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := env.notif.Create(ctx, &CreateNotificationRequest{UserId: "alice", Title: "t", Message: "m", Type: constant.NotificationTypeCourse})
		require.NoError(t, err)
		ids = append(ids, n.Id)
	}

	page, err := env.notif.List(ctx, "alice", 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int64(3), page.UnreadCount)
	assert.Len(t, page.Items, 2)

	_, err = env.notif.MarkRead(ctx, "bob", ids[0])
	assert.ErrorIs(t, err, errcode.ErrNotificationNotFound)

	env.pusher.reset()
	n, err := env.notif.MarkRead(ctx, "alice", ids[0])
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	events := env.pusher.byEvent(constant.EventNotificationRead)
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].Payload.(*NotificationReadEvent).UnreadCount)

	unread, err := env.notif.List(ctx, "alice", 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread.Total)

	count, err := env.notif.MarkAllRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, env.notif.Delete(ctx, "alice", ids[1]))
	assert.ErrorIs(t, env.notif.Delete(ctx, "alice", ids[1]), errcode.ErrNotificationNotFound)

	page, err = env.notif.List(ctx, "alice", 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Zero(t, page.UnreadCount)
}

func TestNotification_Broadcast(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "alice", constant.RoleStudent)
	env.seedUser(t, "carol", constant.RoleStudent)
	env.seedUser(t, "bob", constant.RoleLecturer)

	n, err := env.notif.Broadcast(ctx, &BroadcastRequest{Role: constant.RoleStudent, Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	rooms := []string{}
	for _, e := range env.pusher.byEvent(constant.EventBroadcastNotification) {
		rooms = append(rooms, e.Room)
	}
	assert.ElementsMatch(t, []string{constant.UserRoom("alice"), constant.UserRoom("carol")}, rooms)

	n, err = env.notif.Broadcast(ctx, &BroadcastRequest{UserIds: []string{"bob", "ghost"}, Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.notif.Broadcast(ctx, &BroadcastRequest{Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := env.notif.List(ctx, "bob", 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, constant.NotificationTypeSystem, page.Items[0].Type)
}
