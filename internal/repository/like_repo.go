package repository

import (
	"context"

	"github.com/OTRONTO-F/Rinsohot/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository provides data access for likes and the matches they
// materialize. All reciprocity logic lives here so no other component can
// construct a match row.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// CreateLikeAndMatch records actor → target and materializes a match when
// the reciprocal like exists.
//
// Behavior:
//   - The like insert, the reciprocity check and the match insert run in a
//     single transaction: a failure at any step rolls back the like too.
//   - A duplicate like is an idempotent no-op (conflict on the composite PK
//     is swallowed), and the reciprocity check still runs, so re-liking a
//     mutual pair keeps reporting isMatch = true.
//   - The match row uses the canonical (min, max) pair; its unique index is
//     the last-resort dedup if two reciprocal likes race on separate
//     connections.
//
// Example:
//
//	isMatch, err := repo.CreateLikeAndMatch(ctx, 1, 2) // user 1 liked user 2
func (r *LikeRepository) CreateLikeAndMatch(
	ctx context.Context,
	actorID, targetID uint64,
) (bool, error) {
	var isMatch bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := db.Like{FromUserID: actorID, ToUserID: targetID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return err
		}

		var reciprocal int64
		if err := tx.Model(&db.Like{}).
			Where("from_user_id = ? AND to_user_id = ?", targetID, actorID).
			Count(&reciprocal).Error; err != nil {
			return err
		}
		if reciprocal == 0 {
			return nil
		}

		isMatch = true
		user1, user2 := db.CanonicalPair(actorID, targetID)
		match := db.Match{User1ID: user1, User2ID: user2}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).Create(&match).Error
	})
	if err != nil {
		return false, err
	}
	return isMatch, nil
}

// HasLiked checks whether an actor has liked a target.
func (r *LikeRepository) HasLiked(
	ctx context.Context,
	actorID, targetID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}
