package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulseboard/backend/internal/entity"
	"github.com/pulseboard/backend/pkg/apperror"
)

// ToggleResult reports whether the toggle actually changed state. Changed=false
// means the caller's intent already held (idempotent no-op).
type ToggleResult struct {
	Changed bool
	OwnerID uuid.UUID
}

type LikeRepository interface {
	// Like inserts the (user, target) relation if absent. The existence check,
	// the like_count increment and the karma event all commit atomically.
	Like(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetID uuid.UUID) (*ToggleResult, error)
	// Unlike is the symmetric inverse; removing a like that never existed is a
	// successful no-op.
	Unlike(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetID uuid.UUID) (*ToggleResult, error)
	// LikedTargetIDs reports which of the given targets the user has liked,
	// in one query, for personalizing is_liked on list reads.
	LikedTargetIDs(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Like(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetID uuid.UUID) (*ToggleResult, error) {
	res := &ToggleResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownerID, err := targetOwner(tx, kind, targetID)
		if err != nil {
			return err
		}
		res.OwnerID = ownerID

		like := &entity.Like{UserID: userID, TargetType: kind, TargetID: targetID}
		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"}},
			DoNothing: true,
		}).Create(like)
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected == 0 {
			// Already liked; a concurrent duplicate lost the conflict race.
			return nil
		}
		res.Changed = true

		if err := adjustLikeCount(tx, kind, targetID, +1); err != nil {
			return err
		}

		// Users earn no karma from liking their own content.
		if ownerID != userID {
			return tx.Create(&entity.KarmaEvent{
				UserID:     ownerID,
				ActorID:    userID,
				TargetType: kind,
				TargetID:   targetID,
				Delta:      +1,
				CreatedAt:  time.Now(),
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *likeRepository) Unlike(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetID uuid.UUID) (*ToggleResult, error) {
	res := &ToggleResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownerID, err := targetOwner(tx, kind, targetID)
		if err != nil {
			return err
		}
		res.OwnerID = ownerID

		del := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, kind, targetID).
			Delete(&entity.Like{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			// Never liked (or a concurrent unlike won); nothing to undo.
			return nil
		}
		res.Changed = true

		if err := adjustLikeCount(tx, kind, targetID, -1); err != nil {
			return err
		}

		// The -1 commits in the same transaction that observed the +1's like
		// row, so it can never land before its paired like.
		if ownerID != userID {
			return tx.Create(&entity.KarmaEvent{
				UserID:     ownerID,
				ActorID:    userID,
				TargetType: kind,
				TargetID:   targetID,
				Delta:      -1,
				CreatedAt:  time.Now(),
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *likeRepository) LikedTargetIDs(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return liked, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, kind, targetIDs).
		Pluck("target_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func targetOwner(tx *gorm.DB, kind entity.TargetKind, targetID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		UserID uuid.UUID
	}

	query := tx.Select("user_id").Where("id = ?", targetID)
	switch kind {
	case entity.TargetPost:
		query = query.Model(&entity.Post{})
	case entity.TargetComment:
		query = query.Model(&entity.Comment{})
	default:
		return uuid.Nil, apperror.WithMessage(apperror.ErrValidation, "unknown like target")
	}

	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperror.ErrNotFound
		}
		return uuid.Nil, err
	}
	return row.UserID, nil
}

func adjustLikeCount(tx *gorm.DB, kind entity.TargetKind, targetID uuid.UUID, delta int) error {
	var model interface{}
	switch kind {
	case entity.TargetPost:
		model = &entity.Post{}
	case entity.TargetComment:
		model = &entity.Comment{}
	}
	return tx.Model(model).Where("id = ?", targetID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
}
