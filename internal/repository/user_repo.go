package repository

import (
	"context"
	"time"

	"github.com/OTRONTO-F/Rinsohot/internal/db"
	"gorm.io/gorm"
)

// UserRepository provides data access for user accounts and the
// preference-driven candidate pool.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID loads a user. Returns gorm.ErrRecordNotFound for unknown ids.
func (r *UserRepository) GetByID(ctx context.Context, userID uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail loads a user by email. Returns gorm.ErrRecordNotFound when no
// account exists for it.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether an account already uses the email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// Suggestions returns the candidate pool for a user given their saved
// preference.
//
// Behavior:
//   - Excludes the caller and anyone the caller already liked (directional;
//     candidates who liked the caller or are already matched stay in, since
//     re-liking them is idempotent upstream).
//   - Gender must match interested_in unless the preference is "both".
//   - Birth date must fall between (today − max_age) and (today − min_age).
//   - Capped at limit, newest profiles first.
func (r *UserRepository) Suggestions(
	ctx context.Context,
	userID uint64,
	pref *db.Preference,
	limit int,
) ([]db.User, error) {
	now := time.Now().UTC()
	minBirthDate := now.AddDate(-pref.MaxAge, 0, 0)
	maxBirthDate := now.AddDate(-pref.MinAge, 0, 0)

	query := r.db.WithContext(ctx).
		Where("id != ?", userID).
		Where("id NOT IN (SELECT to_user_id FROM likes WHERE from_user_id = ?)", userID).
		Where("birth_date BETWEEN ? AND ?", minBirthDate, maxBirthDate)

	if pref.InterestedIn != "both" {
		query = query.Where("gender = ?", pref.InterestedIn)
	}

	var users []db.User
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
