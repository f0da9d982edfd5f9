package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`INSERT INTO "comments"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		c := &models.Comment{PostID: "65f1c0ffee", AuthorID: 2, Text: "nice"}
		require.NoError(t, NewPostgresCommentRepository(db).CreateComment(ctx, c))
		require.Equal(t, uint(11), c.ID)
	})

	t.Run("bulk lookup is one query", func(t *testing.T) {
		db, mock := newMockDB(t)
		now := time.Now()
		mock.ExpectQuery(`SELECT \* FROM "comments" WHERE post_id IN \(\$1,\$2\) ORDER BY created_at ASC, id ASC`).
			WithArgs("a", "b").
			WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "author_id", "text", "created_at"}).
				AddRow(1, "a", 3, "first", now).
				AddRow(2, "b", 4, "second", now))

		comments, err := NewPostgresCommentRepository(db).GetCommentsByPostIDs(ctx, []string{"a", "b"})
		require.NoError(t, err)
		require.Len(t, comments, 2)
		require.Equal(t, "b", comments[1].PostID)
	})

	t.Run("bulk lookup without ids", func(t *testing.T) {
		db, _ := newMockDB(t)
		comments, err := NewPostgresCommentRepository(db).GetCommentsByPostIDs(ctx, nil)
		require.NoError(t, err)
		require.NotNil(t, comments)
		require.Empty(t, comments)
	})

	t.Run("delete by post", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM "comments" WHERE post_id = \$1`).
			WithArgs("a").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := NewPostgresCommentRepository(db).DeleteCommentsByPostID(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, int64(3), n)
	})

	t.Run("delete one", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM "comments" WHERE "comments"."id" = \$1`).
			WithArgs(11).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgresCommentRepository(db).DeleteComment(ctx, 11))
	})
}

func TestFollowRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`INSERT INTO "follows" .* ON CONFLICT DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		require.NoError(t, NewPostgresFollowRepository(db).CreateFollow(ctx, &models.Follow{FollowerID: 1, FollowingID: 2}))
	})

	t.Run("create existing edge", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`INSERT INTO "follows" .* ON CONFLICT DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := NewPostgresFollowRepository(db).CreateFollow(ctx, &models.Follow{FollowerID: 1, FollowingID: 2})
		require.ErrorIs(t, err, ErrAlreadyFollowing)
	})

	t.Run("delete missing edge", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
			WithArgs(1, 2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, NewPostgresFollowRepository(db).DeleteFollow(ctx, 1, 2), ErrFollowNotFound)
	})

	t.Run("delete all edges of a user", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM "follows" WHERE follower_id = \$1 OR following_id = \$2`).
			WithArgs(5, 5).
			WillReturnResult(sqlmock.NewResult(0, 4))

		require.NoError(t, NewPostgresFollowRepository(db).DeleteFollowsOfUser(ctx, 5))
	})

	t.Run("is following", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
			WithArgs(1, 2).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		ok, err := NewPostgresFollowRepository(db).IsFollowing(ctx, 1, 2)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("following ids", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .?following_id.? FROM "follows" WHERE follower_id = \$1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"following_id"}).AddRow(2).AddRow(3))

		ids, err := NewPostgresFollowRepository(db).GetFollowingIDs(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, []uint{2, 3}, ids)
	})

	t.Run("followers", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id IN \(SELECT .?follower_id.? FROM "follows" WHERE following_id = \$1\)`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).AddRow(1, "Amal"))

		users, err := NewPostgresFollowRepository(db).GetFollowers(ctx, 7)
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, "Amal", users[0].FirstName)
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create lowercases email", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`INSERT INTO "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		u := &models.User{FirstName: "Amal", Email: " Amal@Example.COM "}
		require.NoError(t, NewPostgresUserRepository(db).CreateUser(ctx, u))
		require.Equal(t, "amal@example.com", u.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`INSERT INTO "users"`).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

		err := NewPostgresUserRepository(db).CreateUser(ctx, &models.User{Email: "amal@example.com"})
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("get missing user", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewPostgresUserRepository(db).GetUserByID(ctx, 9)
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("bulk lookup", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id IN \(\$1,\$2\)`).
			WithArgs(1, 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).AddRow(1, "Amal").AddRow(2, "Badr"))

		users, err := NewPostgresUserRepository(db).GetUsersByIDs(ctx, []uint{1, 2})
		require.NoError(t, err)
		require.Len(t, users, 2)
	})

	t.Run("partial update of missing user", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE "users" SET .*"bio"=\$1.* WHERE id = \$`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := NewPostgresUserRepository(db).UpdateUserFields(ctx, 9, map[string]interface{}{"bio": "hi"})
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("search", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(first_name\) LIKE \$1 OR LOWER\(last_name\) LIKE \$2 OR LOWER\(email\) LIKE \$3`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).AddRow(2, "Badr"))

		users, err := NewPostgresUserRepository(db).SearchUsers(ctx, "BAD")
		require.NoError(t, err)
		require.Len(t, users, 1)
	})

	t.Run("delete missing user", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM "users" WHERE "users"."id" = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, NewPostgresUserRepository(db).DeleteUser(ctx, 9), ErrUserNotFound)
	})
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("unread count", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE recipient_id = \$1 AND is_read = false`).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		n, err := NewPostgresNotificationRepository(db).GetUnreadCount(ctx, 3)
		require.NoError(t, err)
		require.Equal(t, int64(4), n)
	})

	t.Run("mark all read", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE "notifications" SET "is_read"=\$1 WHERE recipient_id = \$2 AND is_read = false`).
			WithArgs(true, 3).
			WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, NewPostgresNotificationRepository(db).MarkAllAsRead(ctx, 3))
	})
}
