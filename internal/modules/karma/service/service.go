package karma

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	karmaDto "github.com/pulseboard/backend/internal/modules/karma/dto"
	karmaRepo "github.com/pulseboard/backend/internal/modules/karma/repository"
	"github.com/pulseboard/backend/pkg/apperror"
)

// The client re-polls the leaderboard on a fixed interval, so snapshots are
// cached briefly in Redis; staleness inside the TTL is acceptable.
const (
	cacheTTL = 10 * time.Second
	maxLimit = 50
)

type KarmaService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]karmaDto.LeaderboardEntry, error)
	// EvictExpired drops events outside the window; run periodically so the
	// event table stays bounded by recent activity.
	EvictExpired(ctx context.Context) error
}

type karmaService struct {
	repo         karmaRepo.KarmaRepository
	redisClient  *redis.Client
	window       time.Duration
	defaultLimit int
}

func NewKarmaService(repo karmaRepo.KarmaRepository, redisClient *redis.Client, window time.Duration, defaultLimit int) KarmaService {
	return &karmaService{
		repo:         repo,
		redisClient:  redisClient,
		window:       window,
		defaultLimit: defaultLimit,
	}
}

func (s *karmaService) GetLeaderboard(ctx context.Context, limit int) ([]karmaDto.LeaderboardEntry, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if cached, ok := s.fromCache(ctx, limit); ok {
		return cached, nil
	}

	since := time.Now().Add(-s.window)
	rows, err := s.repo.TopOwners(ctx, since, limit)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	entries := make([]karmaDto.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, karmaDto.LeaderboardEntry{
			ID:       row.UserID,
			Rank:     i + 1,
			Username: row.Username,
			Karma24h: row.Karma,
		})
	}

	s.toCache(ctx, limit, entries)
	return entries, nil
}

func (s *karmaService) EvictExpired(ctx context.Context) error {
	cutoff := time.Now().Add(-s.window)
	evicted, err := s.repo.EvictBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if evicted > 0 {
		logrus.WithField("evicted", evicted).Info("expired karma events removed")
	}
	return nil
}

func (s *karmaService) fromCache(ctx context.Context, limit int) ([]karmaDto.LeaderboardEntry, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	raw, err := s.redisClient.Get(ctx, cacheKey(limit)).Result()
	if err != nil {
		return nil, false
	}

	var entries []karmaDto.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *karmaService) toCache(ctx context.Context, limit int, entries []karmaDto.LeaderboardEntry) {
	if s.redisClient == nil {
		return
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, cacheKey(limit), raw, cacheTTL).Err(); err != nil {
		// Cache failures never fail the read; the DB already answered.
		logrus.WithError(err).Warn("leaderboard cache write failed")
	}
}

func cacheKey(limit int) string {
	return fmt.Sprintf("leaderboard:%d", limit)
}
