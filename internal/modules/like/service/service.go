package like

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulseboard/backend/internal/entity"
	"github.com/pulseboard/backend/internal/modules/like/repository"
	"github.com/pulseboard/backend/pkg/apperror"
)

// Per-request transactions may collide under contention; retry a bounded
// number of times before surfacing a 5xx.
const (
	maxToggleAttempts = 3
	retryBackoff      = 10 * time.Millisecond
)

// LikeService is the toggle engine: like/unlike as idempotent two-state
// transitions over the engagement store.
type LikeService interface {
	Like(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetID uuid.UUID) (bool, error)
	Unlike(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetID uuid.UUID) (bool, error)
}

type likeService struct {
	repo repository.LikeRepository
}

func NewLikeService(repo repository.LikeRepository) LikeService {
	return &likeService{repo: repo}
}

// Like returns whether the transition actually happened; an already-liked
// target is reported as false with no error.
func (s *likeService) Like(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetID uuid.UUID) (bool, error) {
	return s.toggle(ctx, func() (*repository.ToggleResult, error) {
		return s.repo.Like(ctx, userID, kind, targetID)
	})
}

func (s *likeService) Unlike(ctx context.Context, userID uuid.UUID, kind entity.TargetKind, targetID uuid.UUID) (bool, error) {
	return s.toggle(ctx, func() (*repository.ToggleResult, error) {
		return s.repo.Unlike(ctx, userID, kind, targetID)
	})
}

func (s *likeService) toggle(ctx context.Context, op func() (*repository.ToggleResult, error)) (bool, error) {
	var lastErr error
	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		res, err := op()
		if err == nil {
			return res.Changed, nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return false, err
		}

		// Transient transaction failure (serialization conflict, busy lock).
		lastErr = err
		logrus.WithError(err).WithField("attempt", attempt).Warn("like toggle retry")

		select {
		case <-ctx.Done():
			return false, apperror.Wrap(apperror.ErrInternal, ctx.Err())
		case <-time.After(retryBackoff):
		}
	}
	return false, apperror.Wrap(apperror.ErrInternal, lastErr)
}
