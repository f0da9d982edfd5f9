package services

import (
	"context"
	"testing"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories/repotest"
	"github.com/stretchr/testify/require"
)

func TestNotificationMessage(t *testing.T) {
	amal := &models.User{FirstName: "Amal", LastName: "Said"}
	tests := []struct {
		kind string
		want string
	}{
		{models.NotificationLike, "Amal Said liked your post"},
		{models.NotificationComment, "Amal Said commented on your post"},
		{models.NotificationRepost, "Amal Said reposted your post"},
		{models.NotificationFollow, "Amal Said started following you"},
		{"mention", "Amal Said interacted with you"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			require.Equal(t, tt.want, notificationMessage(tt.kind, amal))
		})
	}

	require.Equal(t, "Someone liked your post", notificationMessage(models.NotificationLike, &models.User{}))
}

func TestNotifySkipsSelfAndNil(t *testing.T) {
	store := repotest.NewStore()
	a := store.AddUser("Amal", "Said", "amal@example.com")
	b := store.AddUser("Badr", "Hinai", "badr@example.com")
	ctx := context.Background()

	var nilNotifier *Notifier
	nilNotifier.Notify(ctx, models.NotificationLike, a, b.ID, "x", "post")

	n := NewNotifier(store.Notifications())
	n.Notify(ctx, models.NotificationLike, a, a.ID, "x", "post")
	require.Empty(t, store.NotificationsFor(a.ID))

	n.Notify(ctx, models.NotificationFollow, a, b.ID, "1", "user")
	notes := store.NotificationsFor(b.ID)
	require.Len(t, notes, 1)
	require.Equal(t, a.ID, notes[0].ActorID)
	require.Equal(t, "user", notes[0].TargetType)
	require.False(t, notes[0].IsRead)
}
