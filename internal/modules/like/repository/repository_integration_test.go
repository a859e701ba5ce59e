//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/pulseboard/backend/internal/entity"
	"github.com/pulseboard/backend/pkg/database"
)

func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pulseboard_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// TestConcurrentToggleAgainstPostgres drives the like transaction with real
// connection-level parallelism, which SQLite's single test connection cannot.
// The unique index plus ON CONFLICT DO NOTHING must yield exactly one like,
// one increment and one karma event.
func TestConcurrentToggleAgainstPostgres(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	owner := &entity.User{Username: "owner", PasswordHash: "x"}
	require.NoError(t, db.Create(owner).Error)
	liker := &entity.User{Username: "liker", PasswordHash: "x"}
	require.NoError(t, db.Create(liker).Error)

	post := &entity.Post{UserID: owner.ID, Content: "contended"}
	require.NoError(t, db.Create(post).Error)

	repo := NewLikeRepository(db)

	const workers = 16
	var wg sync.WaitGroup
	changed := make([]bool, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := repo.Like(ctx, liker.ID, entity.TargetPost, post.ID)
			if err != nil {
				errs[i] = err
				return
			}
			changed[i] = res.Changed
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if changed[i] {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	var got entity.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.EqualValues(t, 1, got.LikeCount)

	var likes, events int64
	require.NoError(t, db.Model(&entity.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&entity.KarmaEvent{}).Count(&events).Error)
	assert.EqualValues(t, 1, likes)
	assert.EqualValues(t, 1, events)

	// And the same for the inverse direction.
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := repo.Unlike(ctx, liker.ID, entity.TargetPost, post.ID)
			if err != nil {
				errs[i] = err
				return
			}
			changed[i] = res.Changed
		}(i)
	}
	wg.Wait()

	wins = 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if changed[i] {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.EqualValues(t, 0, got.LikeCount)
}
