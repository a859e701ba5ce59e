package karma

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulseboard/backend/internal/entity"
	karmaRepo "github.com/pulseboard/backend/internal/modules/karma/repository"
	"github.com/pulseboard/backend/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	service KarmaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	service := NewKarmaService(karmaRepo.NewKarmaRepository(db), nil, 24*time.Hour, 50)
	return &fixture{db: db, service: service}
}

func (f *fixture) user(t *testing.T, name string) *entity.User {
	t.Helper()
	u := &entity.User{Username: name, PasswordHash: "x"}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

// event inserts a karma event with an explicit timestamp, bypassing the like
// pipeline so window and ordering cases can be staged directly.
func (f *fixture) event(t *testing.T, owner uuid.UUID, delta int, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&entity.KarmaEvent{
		UserID:     owner,
		ActorID:    uuid.New(),
		TargetType: entity.TargetPost,
		TargetID:   uuid.New(),
		Delta:      delta,
		CreatedAt:  at,
	}).Error)
}

func TestLeaderboardRanking(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	f.event(t, alice.ID, +1, now.Add(-time.Hour))
	f.event(t, alice.ID, +1, now.Add(-30*time.Minute))
	f.event(t, bob.ID, +1, now.Add(-2*time.Hour))
	f.event(t, bob.ID, +1, now.Add(-time.Hour))
	f.event(t, bob.ID, +1, now.Add(-time.Minute))
	f.event(t, carol.ID, +1, now.Add(-time.Minute))

	board, err := f.service.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 3)

	assert.Equal(t, "bob", board[0].Username)
	assert.EqualValues(t, 3, board[0].Karma24h)
	assert.Equal(t, 1, board[0].Rank)

	assert.Equal(t, "alice", board[1].Username)
	assert.EqualValues(t, 2, board[1].Karma24h)
	assert.Equal(t, 2, board[1].Rank)

	assert.Equal(t, "carol", board[2].Username)
	assert.EqualValues(t, 1, board[2].Karma24h)
	assert.Equal(t, 3, board[2].Rank)
}

// TestLeaderboardWindow verifies events older than the window are invisible
// even while their rows still exist.
func TestLeaderboardWindow(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	veteran := f.user(t, "veteran")
	rookie := f.user(t, "rookie")

	f.event(t, veteran.ID, +1, now.Add(-25*time.Hour))
	f.event(t, veteran.ID, +1, now.Add(-30*time.Hour))
	f.event(t, rookie.ID, +1, now.Add(-time.Hour))

	board, err := f.service.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "rookie", board[0].Username)
}

// TestLeaderboardNetNonPositive verifies owners whose in-window deltas sum
// to zero or below never appear.
func TestLeaderboardNetNonPositive(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	churn := f.user(t, "churn")
	steady := f.user(t, "steady")

	f.event(t, churn.ID, +1, now.Add(-2*time.Hour))
	f.event(t, churn.ID, -1, now.Add(-time.Hour))
	f.event(t, steady.ID, +1, now.Add(-time.Hour))

	board, err := f.service.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "steady", board[0].Username)
}

// TestLeaderboardTieBreak pins the tie order: equal totals rank by earliest
// in-window event, then username.
func TestLeaderboardTieBreak(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	early := f.user(t, "zed")
	late := f.user(t, "amy")

	f.event(t, early.ID, +1, now.Add(-3*time.Hour))
	f.event(t, late.ID, +1, now.Add(-time.Hour))

	board, err := f.service.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "zed", board[0].Username)
	assert.Equal(t, "amy", board[1].Username)

	// Same earliest event time falls back to username order.
	f2 := newFixture(t)
	at := time.Now().Add(-time.Hour).Truncate(time.Second)
	f2.event(t, f2.user(t, "walter").ID, +1, at)
	f2.event(t, f2.user(t, "bernard").ID, +1, at)

	board, err = f2.service.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "bernard", board[0].Username)
	assert.Equal(t, "walter", board[1].Username)
}

func TestLeaderboardLimit(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		f.event(t, f.user(t, name).ID, +1, now.Add(-time.Hour))
	}

	board, err := f.service.GetLeaderboard(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, board, 3)

	// Zero and negative fall back to the configured default.
	board, err = f.service.GetLeaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, board, 5)

	// Requests above the cap are clamped, not rejected.
	board, err = f.service.GetLeaderboard(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, board, 5)
}

func TestLeaderboardEmpty(t *testing.T) {
	f := newFixture(t)

	board, err := f.service.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, board)
	assert.Empty(t, board)
}

func TestEvictExpired(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	alice := f.user(t, "alice")
	f.event(t, alice.ID, +1, now.Add(-25*time.Hour))
	f.event(t, alice.ID, +1, now.Add(-time.Hour))

	require.NoError(t, f.service.EvictExpired(context.Background()))

	var remaining int64
	require.NoError(t, f.db.Model(&entity.KarmaEvent{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)

	// Eviction never changes what the leaderboard reports.
	board, err := f.service.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.EqualValues(t, 1, board[0].Karma24h)
}
