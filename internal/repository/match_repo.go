package repository

import (
	"context"

	"github.com/OTRONTO-F/Rinsohot/internal/db"
	"gorm.io/gorm"
)

// MatchRepository provides data access for materialized matches.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// MatchListRow is one entry of a user's match list: the peer's profile plus
// conversation summary fields.
type MatchListRow struct {
	MatchID        uint64  `json:"match_id"`
	PeerID         uint64  `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	ProfilePicture string  `json:"profile_picture"`
	Bio            string  `json:"bio"`
	LastMessage    *string `json:"last_message"`
	UnreadCount    int64   `json:"unread_messages"`
}

// GetByID loads a match. Returns gorm.ErrRecordNotFound for unknown ids.
func (r *MatchRepository) GetByID(ctx context.Context, matchID uint64) (*db.Match, error) {
	var match db.Match
	if err := r.db.WithContext(ctx).First(&match, matchID).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// ListForUser returns every match the user participates in, joined with the
// peer's profile, the latest message and the user's unread count.
//
// Behavior:
//   - Newest matches first.
//   - LastMessage is nil for matches without any message yet.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]MatchListRow, error) {
	var rows []MatchListRow

	err := r.db.WithContext(ctx).
		Table("matches m").
		Select(`m.id AS match_id,
			u.id AS peer_id,
			u.first_name,
			u.last_name,
			u.profile_picture,
			u.bio,
			(SELECT content FROM messages
			 WHERE match_id = m.id
			 ORDER BY sent_at DESC, id DESC LIMIT 1) AS last_message,
			(SELECT COUNT(*) FROM messages
			 WHERE match_id = m.id AND sender_id != ? AND read_at IS NULL) AS unread_count`,
			userID).
		Joins("JOIN users u ON u.id = CASE WHEN m.user1_id = ? THEN m.user2_id ELSE m.user1_id END", userID).
		Where("m.user1_id = ? OR m.user2_id = ?", userID, userID).
		Order("m.created_at DESC, m.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
