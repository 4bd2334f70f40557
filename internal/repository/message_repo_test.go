package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/OTRONTO-F/Rinsohot/internal/db"
	"github.com/OTRONTO-F/Rinsohot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedMatch(t *testing.T, gdb *gorm.DB, user1, user2 uint64) *db.Match {
	t.Helper()
	seedUsers(t, gdb, user1, user2)
	u1, u2 := db.CanonicalPair(user1, user2)
	match := db.Match{User1ID: u1, User2ID: u2}
	require.NoError(t, gdb.Create(&match).Error)
	return &match
}

func TestMessageOrdering(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	match := seedMatch(t, gdb, 1, 2)
	repo := repository.NewMessageRepository(gdb)

	base := time.Now().UTC().Truncate(time.Millisecond)
	msgs := []db.Message{
		{MatchID: match.ID, SenderID: 1, Content: "first", SentAt: base.Add(-2 * time.Minute)},
		{MatchID: match.ID, SenderID: 2, Content: "second", SentAt: base.Add(-1 * time.Minute)},
		{MatchID: match.ID, SenderID: 1, Content: "third", SentAt: base},
	}
	// insert out of order to prove the query sorts
	require.NoError(t, gdb.Create(&msgs[2]).Error)
	require.NoError(t, gdb.Create(&msgs[0]).Error)
	require.NoError(t, gdb.Create(&msgs[1]).Error)

	rows, nextToken, err := repo.ListByMatch(ctx, match.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Nil(t, nextToken)
	assert.Equal(t, "first", rows[0].Content)
	assert.Equal(t, "second", rows[1].Content)
	assert.Equal(t, "third", rows[2].Content)

	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].SentAt.Before(rows[i-1].SentAt))
	}
}

func TestMessagePagination(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	match := seedMatch(t, gdb, 1, 2)
	repo := repository.NewMessageRepository(gdb)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 5; i++ {
		msg := db.Message{
			MatchID:  match.ID,
			SenderID: 1,
			Content:  string(rune('a' + i)),
			SentAt:   base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, gdb.Create(&msg).Error)
	}

	page1, token, err := repo.ListByMatch(ctx, match.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, token)
	assert.Equal(t, "a", page1[0].Content)
	assert.Equal(t, "b", page1[1].Content)

	page2, token2, err := repo.ListByMatch(ctx, match.ID, token, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotNil(t, token2)
	assert.Equal(t, "c", page2[0].Content)

	page3, token3, err := repo.ListByMatch(ctx, match.ID, token2, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Nil(t, token3)
	assert.Equal(t, "e", page3[0].Content)
}

func TestMessageDisplayNames(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	match := seedMatch(t, gdb, 1, 2)
	repo := repository.NewMessageRepository(gdb)

	msg := db.Message{MatchID: match.ID, SenderID: match.User1ID, Content: "hello"}
	require.NoError(t, repo.Create(ctx, &msg))

	row, err := repo.GetRow(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, match.User1ID, row.SenderID)
	assert.Equal(t, "User", row.SenderName)
	assert.Equal(t, "User", row.ReceiverName)
	assert.Nil(t, row.ReadAt)
}

func TestMarkReadIdempotent(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	match := seedMatch(t, gdb, 1, 2)
	repo := repository.NewMessageRepository(gdb)

	require.NoError(t, repo.Create(ctx, &db.Message{MatchID: match.ID, SenderID: 1, Content: "hi"}))
	require.NoError(t, repo.Create(ctx, &db.Message{MatchID: match.ID, SenderID: 1, Content: "there"}))
	// the reader's own message must never be marked
	require.NoError(t, repo.Create(ctx, &db.Message{MatchID: match.ID, SenderID: 2, Content: "hey"}))

	unread, err := repo.CountUnread(ctx, match.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	now := time.Now().UTC().Truncate(time.Millisecond)
	n, err := repo.MarkRead(ctx, match.ID, 2, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = repo.CountUnread(ctx, match.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// second invocation is a no-op
	n, err = repo.MarkRead(ctx, match.ID, 2, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// the sender still has the reader's message unread
	unread, err = repo.CountUnread(ctx, match.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
