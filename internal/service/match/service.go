package match

import (
	"context"
	"time"

	"github.com/OTRONTO-F/Rinsohot/internal/app"
	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/repository"
)

// suggestionLimit caps the candidate pool returned per request.
const suggestionLimit = 10

// Service implements the like/match engine and the suggestion filter.
type Service struct {
	appCtx    *app.AppContext
	likeRepo  *repository.LikeRepository
	matchRepo *repository.MatchRepository
	userRepo  *repository.UserRepository
	prefRepo  *repository.PreferenceRepository
}

// NewService creates the match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		likeRepo:  repository.NewLikeRepository(appCtx.DB),
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		userRepo:  repository.NewUserRepository(appCtx.DB),
		prefRepo:  repository.NewPreferenceRepository(appCtx.DB),
	}
}

// Like records actor → target and reports whether it completed a mutual
// match.
//
// Behavior:
//   - Self-likes are rejected before any mutation.
//   - The like insert, reciprocity check and match creation are one
//     all-or-nothing transaction (see LikeRepository.CreateLikeAndMatch).
//   - Liking the same user twice is an idempotent no-op, not an error.
func (s *Service) Like(ctx context.Context, actorID, targetID uint64) (bool, error) {
	s.appCtx.Logger.Debug("Like called", "actor", actorID, "target", targetID)

	if targetID == 0 {
		return false, svcErr.Validation("target user id is required")
	}
	if actorID == targetID {
		return false, svcErr.Validation("cannot like yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, svcErr.Map(err)
	}

	isMatch, err := s.likeRepo.CreateLikeAndMatch(ctx, actorID, targetID)
	if err != nil {
		s.appCtx.Logger.Error("CreateLikeAndMatch failed", "actor", actorID, "target", targetID, "err", err)
		return false, svcErr.Map(err)
	}

	if isMatch {
		s.appCtx.Logger.Info("mutual match created", "actor", actorID, "target", targetID)
	}
	return isMatch, nil
}

// SuggestionProfile is one candidate returned by the suggestion filter.
type SuggestionProfile struct {
	ID             uint64    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ProfilePicture string    `json:"profile_picture"`
	Bio            string    `json:"bio"`
	Gender         string    `json:"gender"`
	BirthDate      time.Time `json:"birth_date"`
}

// Suggestions computes the caller's candidate pool.
//
// Behavior:
//   - Requires a saved preference; fails with a validation error otherwise.
//   - Filters by gender interest and the birth-date window derived from the
//     preference's age bounds; excludes the caller and already-liked users.
//   - Already-matched users and users who liked the caller are not
//     excluded: re-liking them resolves idempotently in Like.
func (s *Service) Suggestions(ctx context.Context, userID uint64) ([]SuggestionProfile, error) {
	s.appCtx.Logger.Debug("Suggestions called", "user", userID)

	pref, err := s.prefRepo.Get(ctx, userID)
	if err != nil {
		if svcErr.KindOf(svcErr.Map(err)) == svcErr.KindNotFound {
			return nil, svcErr.Validation("Please set your preferences first")
		}
		return nil, svcErr.Map(err)
	}

	users, err := s.userRepo.Suggestions(ctx, userID, pref, suggestionLimit)
	if err != nil {
		s.appCtx.Logger.Error("Suggestions query failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	profiles := make([]SuggestionProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, SuggestionProfile{
			ID:             u.ID,
			FirstName:      u.FirstName,
			LastName:       u.LastName,
			ProfilePicture: u.ProfilePicture,
			Bio:            u.Bio,
			Gender:         u.Gender,
			BirthDate:      u.BirthDate,
		})
	}

	s.appCtx.Logger.Debug("Suggestions result", "user", userID, "count", len(profiles))
	return profiles, nil
}

// ListMatches returns the caller's matches with peer profile, last message
// and unread count.
func (s *Service) ListMatches(ctx context.Context, userID uint64) ([]repository.MatchListRow, error) {
	rows, err := s.matchRepo.ListForUser(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("ListForUser failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return rows, nil
}
