package profile

import (
	"context"

	"github.com/OTRONTO-F/Rinsohot/internal/app"
	"github.com/OTRONTO-F/Rinsohot/internal/db"
	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/OTRONTO-F/Rinsohot/internal/repository"
)

// Service manages matching preferences and the interest catalog.
type Service struct {
	appCtx   *app.AppContext
	prefRepo *repository.PreferenceRepository
}

// NewService creates the profile service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		prefRepo: repository.NewPreferenceRepository(appCtx.DB),
	}
}

// PreferencesInput is the payload for saving preferences. The whole set is
// replaced on every save; there is no partial update.
type PreferencesInput struct {
	InterestedIn      string   `json:"interested_in"`
	MinAge            int      `json:"min_age"`
	MaxAge            int      `json:"max_age"`
	Location          string   `json:"location"`
	MaxDistance       int      `json:"max_distance"`
	SelectedInterests []uint64 `json:"selected_interests"`
}

// SavePreferences validates and stores a user's preference wholesale.
func (s *Service) SavePreferences(ctx context.Context, userID uint64, in PreferencesInput) error {
	switch in.InterestedIn {
	case "male", "female", "both":
	default:
		return svcErr.Validation("interested_in must be male, female or both")
	}
	if in.MinAge <= 0 || in.MaxAge <= 0 {
		return svcErr.Validation("age bounds must be positive")
	}
	if in.MinAge > in.MaxAge {
		return svcErr.Validation("min_age cannot exceed max_age")
	}

	pref := &db.Preference{
		UserID:       userID,
		InterestedIn: in.InterestedIn,
		MinAge:       in.MinAge,
		MaxAge:       in.MaxAge,
		Location:     in.Location,
		MaxDistance:  in.MaxDistance,
	}
	if err := s.prefRepo.Replace(ctx, pref, in.SelectedInterests); err != nil {
		s.appCtx.Logger.Error("preference replace failed", "user", userID, "err", err)
		return svcErr.Map(err)
	}

	s.appCtx.Logger.Debug("preferences saved", "user", userID)
	return nil
}

// HasPreferences reports whether the user finished preference onboarding.
func (s *Service) HasPreferences(ctx context.Context, userID uint64) (bool, error) {
	has, err := s.prefRepo.Has(ctx, userID)
	if err != nil {
		return false, svcErr.Map(err)
	}
	return has, nil
}

// ListInterests returns the interest catalog ordered by name.
func (s *Service) ListInterests(ctx context.Context) ([]db.Interest, error) {
	interests, err := s.prefRepo.ListInterests(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return interests, nil
}
