package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/OTRONTO-F/Rinsohot/internal/db"
	"github.com/OTRONTO-F/Rinsohot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func seedUsers(t *testing.T, gdb *gorm.DB, ids ...uint64) {
	t.Helper()
	for _, id := range ids {
		u := db.User{
			ID:           id,
			Email:        fmt.Sprintf("u%d@test.com", id),
			PasswordHash: "x",
			FirstName:    "User",
			LastName:     "Test",
			Gender:       "female",
			BirthDate:    time.Now().UTC().AddDate(-25, 0, 0),
		}
		require.NoError(t, gdb.Create(&u).Error)
	}
}

func countMatches(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&db.Match{}).Count(&n).Error)
	return n
}

func TestCreateLikeAndMatch_NoReciprocity(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, 1, 2)
	repo := repository.NewLikeRepository(gdb)

	isMatch, err := repo.CreateLikeAndMatch(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, isMatch)
	assert.Equal(t, int64(0), countMatches(t, gdb))
}

func TestCreateLikeAndMatch_MutualCreatesOneCanonicalRow(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, 1, 2)
	repo := repository.NewLikeRepository(gdb)

	// higher id likes lower id first, then the reciprocal
	isMatch, err := repo.CreateLikeAndMatch(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, isMatch)

	isMatch, err = repo.CreateLikeAndMatch(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, isMatch)

	var match db.Match
	require.NoError(t, gdb.First(&match).Error)
	assert.Equal(t, uint64(1), match.User1ID)
	assert.Equal(t, uint64(2), match.User2ID)
	assert.Equal(t, int64(1), countMatches(t, gdb))
}

func TestCreateLikeAndMatch_Idempotent(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, 1, 2)
	repo := repository.NewLikeRepository(gdb)

	_, err := repo.CreateLikeAndMatch(ctx, 1, 2)
	require.NoError(t, err)
	_, err = repo.CreateLikeAndMatch(ctx, 2, 1)
	require.NoError(t, err)

	// re-liking an already mutual pair stays a no-op but keeps reporting the match
	isMatch, err := repo.CreateLikeAndMatch(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, isMatch)

	var likes int64
	require.NoError(t, gdb.Model(&db.Like{}).Count(&likes).Error)
	assert.Equal(t, int64(2), likes)
	assert.Equal(t, int64(1), countMatches(t, gdb))
}

func TestHasLiked(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, 1, 2)
	repo := repository.NewLikeRepository(gdb)

	_, err := repo.CreateLikeAndMatch(ctx, 1, 2)
	require.NoError(t, err)

	liked, err := repo.HasLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.HasLiked(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, liked)
}
