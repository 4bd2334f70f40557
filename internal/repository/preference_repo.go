package repository

import (
	"context"

	"github.com/OTRONTO-F/Rinsohot/internal/db"
	"gorm.io/gorm"
)

// PreferenceRepository provides data access for matching preferences and
// the interest catalog.
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new repository bound to the given DB connection.
func NewPreferenceRepository(database *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: database}
}

// Get loads a user's preference. Returns gorm.ErrRecordNotFound when the
// user has never saved one.
func (r *PreferenceRepository) Get(ctx context.Context, userID uint64) (*db.Preference, error) {
	var pref db.Preference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Has reports whether the user has a saved preference.
func (r *PreferenceRepository) Has(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Preference{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// Replace saves a preference wholesale: the old preference row and interest
// links are deleted and the new ones inserted in one transaction. There is
// no partial patch path.
func (r *PreferenceRepository) Replace(
	ctx context.Context,
	pref *db.Preference,
	interestIDs []uint64,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", pref.UserID).Delete(&db.Preference{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", pref.UserID).Delete(&db.UserInterest{}).Error; err != nil {
			return err
		}

		if err := tx.Create(pref).Error; err != nil {
			return err
		}

		if len(interestIDs) == 0 {
			return nil
		}
		links := make([]db.UserInterest, 0, len(interestIDs))
		for _, id := range interestIDs {
			links = append(links, db.UserInterest{UserID: pref.UserID, InterestID: id})
		}
		return tx.Create(&links).Error
	})
}

// ListInterests returns the interest catalog ordered by name.
func (r *PreferenceRepository) ListInterests(ctx context.Context) ([]db.Interest, error) {
	var interests []db.Interest
	err := r.db.WithContext(ctx).Order("name ASC").Find(&interests).Error
	if err != nil {
		return nil, err
	}
	return interests, nil
}
