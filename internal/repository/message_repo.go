package repository

import (
	"context"
	"time"

	"github.com/OTRONTO-F/Rinsohot/internal/db"
	"github.com/OTRONTO-F/Rinsohot/internal/utils/pagination"
	"gorm.io/gorm"
)

// MessageRepository provides data access for the per-match message ledger.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// MessageRow is a persisted message with denormalized display names for
// both sides of the conversation.
type MessageRow struct {
	ID           uint64     `json:"id"`
	MatchID      uint64     `json:"match_id"`
	SenderID     uint64     `json:"sender_id"`
	Content      string     `json:"content"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
	SenderName   string     `json:"sender_name"`
	ReceiverName string     `json:"receiver_name"`
}

const messageRowSelect = `msg.id,
	msg.match_id,
	msg.sender_id,
	msg.content,
	msg.sent_at,
	msg.read_at,
	us.first_name AS sender_name,
	ur.first_name AS receiver_name`

func (r *MessageRepository) rowQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("messages msg").
		Select(messageRowSelect).
		Joins("JOIN matches m ON m.id = msg.match_id").
		Joins("JOIN users us ON us.id = msg.sender_id").
		Joins("JOIN users ur ON ur.id = CASE WHEN m.user1_id = msg.sender_id THEN m.user2_id ELSE m.user1_id END")
}

// Create appends a message to the ledger with a server-assigned timestamp.
func (r *MessageRepository) Create(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// GetRow loads one message with display names, for the send response.
func (r *MessageRepository) GetRow(ctx context.Context, messageID uint64) (*MessageRow, error) {
	var row MessageRow
	err := r.rowQuery(ctx).
		Where("msg.id = ?", messageID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByMatch returns the messages of a match ordered by send time
// ascending (id breaks ties between equal timestamps).
//
// Behavior:
//   - limit <= 0 returns the full history with no pagination token.
//   - With a positive limit, supports cursor-based pagination via
//     paginationToken, fetching limit+1 rows to detect a next page.
func (r *MessageRepository) ListByMatch(
	ctx context.Context,
	matchID uint64,
	paginationToken *string,
	limit int,
) ([]MessageRow, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.rowQuery(ctx).
		Where("msg.match_id = ?", matchID).
		Order("msg.sent_at ASC, msg.id ASC")

	if limit > 0 {
		query = query.Limit(limit + 1)
	}
	if cursor.MessageID > 0 && cursor.SentUnix > 0 {
		ts := time.UnixMilli(cursor.SentUnix).UTC()
		query = query.Where(
			"(msg.sent_at > ? OR (msg.sent_at = ? AND msg.id > ?))",
			ts, ts, cursor.MessageID,
		)
	}

	var rows []MessageRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if limit > 0 && len(rows) > limit {
		last := rows[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			MessageID: last.ID,
			SentUnix:  last.SentAt.UnixMilli(),
		})
		nextToken = &token
		rows = rows[:limit]
	}

	return rows, nextToken, nil
}

// MarkRead sets read_at = now on every unread message in the match that the
// reader did not send. Returns how many rows changed; re-invocation after
// everything is read affects zero rows.
func (r *MessageRepository) MarkRead(
	ctx context.Context,
	matchID, readerID uint64,
	now time.Time,
) (int64, error) {
	res := r.db.WithContext(ctx).Model(&db.Message{}).
		Where("match_id = ? AND sender_id != ? AND read_at IS NULL", matchID, readerID).
		Update("read_at", now)
	return res.RowsAffected, res.Error
}

// CountUnread counts messages in the match that the reader has not read.
func (r *MessageRepository) CountUnread(
	ctx context.Context,
	matchID, readerID uint64,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Message{}).
		Where("match_id = ? AND sender_id != ? AND read_at IS NULL", matchID, readerID).
		Count(&count).Error
	return count, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
