package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/OTRONTO-F/Rinsohot/internal/app"
	"github.com/OTRONTO-F/Rinsohot/internal/db"
	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/repository"
	"github.com/OTRONTO-F/Rinsohot/internal/utils/pagination"
)

// Service implements the conversation ledger: ordered per-match message
// history with read-state tracking. The ledger is the durable source of
// truth; realtime delivery through the hub is best-effort and its failures
// never fail a persisted operation.
type Service struct {
	appCtx      *app.AppContext
	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
}

// NewService creates the chat service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
	}
}

// participantMatch loads a match and verifies the caller belongs to it.
// Every ledger operation runs this check before any mutation.
func (s *Service) participantMatch(ctx context.Context, matchID, userID uint64) (*db.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !match.HasParticipant(userID) {
		return nil, svcErr.Forbidden("Not authorized to view these messages")
	}
	return match, nil
}

// ListMessages returns the match's messages ordered by send time ascending.
//
// Behavior:
//   - Caller must be one of the two participants.
//   - limit <= 0 returns the whole history; a positive limit pages through
//     it with an opaque cursor token.
func (s *Service) ListMessages(
	ctx context.Context,
	matchID, callerID uint64,
	paginationToken *string,
	limit int,
) ([]repository.MessageRow, *string, error) {
	if _, err := s.participantMatch(ctx, matchID, callerID); err != nil {
		return nil, nil, err
	}

	rows, nextToken, err := s.messageRepo.ListByMatch(ctx, matchID, paginationToken, limit)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidToken) {
			return nil, nil, svcErr.Validation("invalid pagination token")
		}
		s.appCtx.Logger.Error("ListByMatch failed", "match_id", matchID, "err", err)
		return nil, nil, svcErr.Map(err)
	}
	return rows, nextToken, nil
}

// Send persists a message and fans it out to both participants.
//
// Behavior:
//   - Caller must be a participant; empty or whitespace-only content is
//     rejected before any mutation.
//   - The message is stored with a server-assigned timestamp and returned
//     with denormalized sender/receiver names.
//   - The receiver's unread counter is bumped and a new_message event is
//     published to both users' rooms; both are best-effort.
func (s *Service) Send(
	ctx context.Context,
	matchID, senderID uint64,
	content string,
) (*repository.MessageRow, error) {
	match, err := s.participantMatch(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, svcErr.Validation("Message content is required")
	}

	msg := &db.Message{
		MatchID:  matchID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.appCtx.Logger.Error("message insert failed", "match_id", matchID, "err", err)
		return nil, svcErr.Map(err)
	}

	row, err := s.messageRepo.GetRow(ctx, msg.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	receiverID := match.OtherParticipant(senderID)
	if err := s.appCtx.RedisCache.IncrUnreadCount(ctx, matchID, receiverID); err != nil {
		s.appCtx.Logger.Warn("failed to bump unread counter", "match_id", matchID, "err", err)
	}

	s.appCtx.Hub.PublishToUsers([]uint64{match.User1ID, match.User2ID}, "new_message", row)

	return row, nil
}

// SendMessage adapts Send for the realtime layer, which only needs to know
// whether the persist succeeded; fan-out already happened inside Send.
func (s *Service) SendMessage(ctx context.Context, matchID, senderID uint64, content string) error {
	_, err := s.Send(ctx, matchID, senderID, content)
	return err
}

// MarkRead sets read_at on every unread message the reader received in the
// match. Idempotent: a second invocation affects zero rows.
func (s *Service) MarkRead(ctx context.Context, matchID, readerID uint64) error {
	if _, err := s.participantMatch(ctx, matchID, readerID); err != nil {
		return err
	}

	n, err := s.messageRepo.MarkRead(ctx, matchID, readerID, time.Now().UTC())
	if err != nil {
		s.appCtx.Logger.Error("MarkRead failed", "match_id", matchID, "err", err)
		return svcErr.Map(err)
	}

	if err := s.appCtx.RedisCache.ResetUnreadCount(ctx, matchID, readerID); err != nil {
		s.appCtx.Logger.Warn("failed to reset unread counter", "match_id", matchID, "err", err)
	}

	s.appCtx.Logger.Debug("messages marked read", "match_id", matchID, "reader", readerID, "count", n)
	return nil
}

// UnreadCount returns how many received messages the reader has not read.
// Cache-first strategy:
//  1. Attempts to read from Redis (unread:count:matchID:readerID).
//  2. On cache miss, falls back to the DB count.
//  3. On DB fetch, fills Redis with a fresh TTL.
func (s *Service) UnreadCount(ctx context.Context, matchID, readerID uint64) (int64, error) {
	if _, err := s.participantMatch(ctx, matchID, readerID); err != nil {
		return 0, err
	}

	if count, ok, err := s.appCtx.RedisCache.GetUnreadCount(ctx, matchID, readerID); err == nil && ok {
		return count, nil
	}

	count, err := s.messageRepo.CountUnread(ctx, matchID, readerID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if err := s.appCtx.RedisCache.SetUnreadCount(ctx, matchID, readerID, count); err != nil {
		s.appCtx.Logger.Warn("failed to fill unread counter", "match_id", matchID, "err", err)
	}
	return count, nil
}

// PeerProfile is the other participant of a match as shown in the chat
// header.
type PeerProfile struct {
	ID             uint64 `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture"`
}

// MatchInfo describes a match from the caller's point of view.
type MatchInfo struct {
	MatchID uint64      `json:"match_id"`
	User    PeerProfile `json:"user"`
}

// Info returns the peer's profile for a match the caller participates in.
func (s *Service) Info(ctx context.Context, matchID, callerID uint64) (*MatchInfo, error) {
	match, err := s.participantMatch(ctx, matchID, callerID)
	if err != nil {
		return nil, err
	}

	peer, err := s.userRepo.GetByID(ctx, match.OtherParticipant(callerID))
	if err != nil {
		return nil, svcErr.Map(err)
	}

	return &MatchInfo{
		MatchID: match.ID,
		User: PeerProfile{
			ID:             peer.ID,
			FirstName:      peer.FirstName,
			LastName:       peer.LastName,
			ProfilePicture: peer.ProfilePicture,
		},
	}, nil
}
