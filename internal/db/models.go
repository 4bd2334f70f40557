package db

import (
	"time"
)

// User table
type User struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	Email          string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash   string `gorm:"size:255;not null"`
	FirstName      string `gorm:"size:64;not null"`
	LastName       string `gorm:"size:64;not null"`
	Gender         string `gorm:"size:16;not null"`
	BirthDate      time.Time
	Bio            string    `gorm:"size:1024"`
	ProfilePicture string    `gorm:"size:255"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Preference is the 1:1 matching preference owned by a user.
// It is replaced wholesale on save (delete-then-insert), never patched.
type Preference struct {
	UserID       uint64    `gorm:"primaryKey"`
	InterestedIn string    `gorm:"size:16;not null"` // male, female or both
	MinAge       int       `gorm:"not null"`
	MaxAge       int       `gorm:"not null"`
	Location     string    `gorm:"size:128"`
	MaxDistance  int       `gorm:"default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Interest is a catalog entry users can tag themselves with.
type Interest struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"uniqueIndex;size:64;not null"`
}

// UserInterest links a user to a catalog interest.
// Replaced wholesale together with Preference.
type UserInterest struct {
	UserID     uint64 `gorm:"primaryKey"`
	InterestID uint64 `gorm:"primaryKey"`
}

// Like is a directed expression of interest from one user to another.
//
// Composite PK: (FromUserID, ToUserID)
//   - At most one row per ordered pair; re-liking is an idempotent no-op.
//
// Index:
//   - idx_to_from(to_user_id, from_user_id)
//     Optimizes the reciprocity lookup inside the like transaction.
type Like struct {
	FromUserID uint64    `gorm:"primaryKey;index:idx_to_from,priority:2"`
	ToUserID   uint64    `gorm:"primaryKey;index:idx_to_from,priority:1"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Match is the undirected relationship materialized when both directional
// likes exist.
//
// Canonical ordering invariant: User1ID < User2ID (min/max of the pair).
// The unique index on (user1_id, user2_id) plus that ordering guarantees at
// most one row per unordered pair even if two like transactions race.
// Only CanonicalPair below may construct the pair; no other code orders it.
type Match struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	User1ID   uint64    `gorm:"uniqueIndex:idx_match_pair,priority:1;not null"`
	User2ID   uint64    `gorm:"uniqueIndex:idx_match_pair,priority:2;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Message belongs to exactly one match. Append-only; ReadAt is the only
// mutable field, set once when the receiver marks the conversation read.
//
// Index:
//   - idx_match_sent(match_id, sent_at)
//     Ordered range scans for conversation history.
type Message struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement"`
	MatchID  uint64    `gorm:"index:idx_match_sent,priority:1;not null"`
	SenderID uint64    `gorm:"not null"`
	Content  string    `gorm:"size:2048;not null"`
	SentAt   time.Time `gorm:"autoCreateTime;index:idx_match_sent,priority:2"`
	ReadAt   *time.Time
}

// CanonicalPair orders two user ids into the canonical (min, max) match pair.
// This is the single source of truth for match identity.
func CanonicalPair(a, b uint64) (uint64, uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// OtherParticipant returns the match participant that is not userID.
func (m *Match) OtherParticipant(userID uint64) uint64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// HasParticipant reports whether userID is one of the two match members.
func (m *Match) HasParticipant(userID uint64) bool {
	return m.User1ID == userID || m.User2ID == userID
}
