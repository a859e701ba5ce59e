package like

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulseboard/backend/internal/entity"
	"github.com/pulseboard/backend/internal/modules/like/repository"
	"github.com/pulseboard/backend/internal/testutil"
	"github.com/pulseboard/backend/pkg/apperror"
)

type fixture struct {
	db      *gorm.DB
	service LikeService
	alice   *entity.User
	bob     *entity.User
	post    *entity.Post
	comment *entity.Comment
}

// newFixture seeds a post and a comment owned by alice.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)

	alice := &entity.User{Username: "alice", PasswordHash: "x"}
	bob := &entity.User{Username: "bob", PasswordHash: "x"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)

	post := &entity.Post{UserID: alice.ID, Content: "hello"}
	require.NoError(t, db.Create(post).Error)

	comment := &entity.Comment{PostID: post.ID, UserID: alice.ID, Content: "first"}
	require.NoError(t, db.Create(comment).Error)

	return &fixture{
		db:      db,
		service: NewLikeService(repository.NewLikeRepository(db)),
		alice:   alice,
		bob:     bob,
		post:    post,
		comment: comment,
	}
}

func (f *fixture) postLikeCount(t *testing.T) int64 {
	t.Helper()
	var post entity.Post
	require.NoError(t, f.db.First(&post, "id = ?", f.post.ID).Error)
	return post.LikeCount
}

func (f *fixture) karmaSum(t *testing.T, owner uuid.UUID) int64 {
	t.Helper()
	var sum int64
	require.NoError(t, f.db.Model(&entity.KarmaEvent{}).
		Where("user_id = ?", owner).
		Select("COALESCE(SUM(delta), 0)").Scan(&sum).Error)
	return sum
}

func TestLikePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	changed, err := f.service.Like(ctx, f.bob.ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.EqualValues(t, 1, f.postLikeCount(t))
	assert.EqualValues(t, 1, f.karmaSum(t, f.alice.ID))
}

// TestLikeIdempotent verifies a repeated like is a successful no-op: no
// second count increment and no second karma event.
func TestLikeIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	changed, err := f.service.Like(ctx, f.bob.ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.service.Like(ctx, f.bob.ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.EqualValues(t, 1, f.postLikeCount(t))
	assert.EqualValues(t, 1, f.karmaSum(t, f.alice.ID))

	var likes int64
	require.NoError(t, f.db.Model(&entity.Like{}).Count(&likes).Error)
	assert.EqualValues(t, 1, likes)
}

func TestUnlikeReversesLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Like(ctx, f.bob.ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)

	changed, err := f.service.Unlike(ctx, f.bob.ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.EqualValues(t, 0, f.postLikeCount(t))
	// The +1 and the -1 both remain as events; they net out.
	assert.EqualValues(t, 0, f.karmaSum(t, f.alice.ID))

	var events int64
	require.NoError(t, f.db.Model(&entity.KarmaEvent{}).Count(&events).Error)
	assert.EqualValues(t, 2, events)
}

// TestUnlikeWithoutLike verifies unliking something never liked is a
// successful no-op that leaves counters and events untouched.
func TestUnlikeWithoutLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	changed, err := f.service.Unlike(ctx, f.bob.ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.EqualValues(t, 0, f.postLikeCount(t))
	assert.EqualValues(t, 0, f.karmaSum(t, f.alice.ID))
}

// TestSelfLikeEarnsNoKarma verifies a self-like still flips like state and
// the counter, but writes no karma event in either direction.
func TestSelfLikeEarnsNoKarma(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	changed, err := f.service.Like(ctx, f.alice.ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.EqualValues(t, 1, f.postLikeCount(t))

	changed, err = f.service.Unlike(ctx, f.alice.ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.EqualValues(t, 0, f.postLikeCount(t))

	var events int64
	require.NoError(t, f.db.Model(&entity.KarmaEvent{}).Count(&events).Error)
	assert.EqualValues(t, 0, events)
}

func TestLikeComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	changed, err := f.service.Like(ctx, f.bob.ID, entity.TargetComment, f.comment.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	var comment entity.Comment
	require.NoError(t, f.db.First(&comment, "id = ?", f.comment.ID).Error)
	assert.EqualValues(t, 1, comment.LikeCount)
	assert.EqualValues(t, 1, f.karmaSum(t, f.alice.ID))

	// Liking the comment must not touch the post counter.
	assert.EqualValues(t, 0, f.postLikeCount(t))
}

func TestLikeUnknownTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Like(context.Background(), f.bob.ID, entity.TargetPost, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// TestLikeCountMatchesDistinctLikers verifies the counter equals the number
// of distinct users who currently like the target.
func TestLikeCountMatchesDistinctLikers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users := make([]*entity.User, 5)
	for i := range users {
		users[i] = &entity.User{Username: "liker" + string(rune('a'+i)), PasswordHash: "x"}
		require.NoError(t, f.db.Create(users[i]).Error)
		_, err := f.service.Like(ctx, users[i].ID, entity.TargetPost, f.post.ID)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 5, f.postLikeCount(t))

	// One of them changes their mind.
	_, err := f.service.Unlike(ctx, users[2].ID, entity.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, f.postLikeCount(t))
	assert.EqualValues(t, 4, f.karmaSum(t, f.alice.ID))
}

// TestConcurrentSameUserLikes fires parallel likes from one user at one
// post. The unique index makes exactly one insert win, so the counter must
// end at 1 no matter the interleaving.
func TestConcurrentSameUserLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Like(ctx, f.bob.ID, entity.TargetPost, f.post.ID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, f.postLikeCount(t))
	assert.EqualValues(t, 1, f.karmaSum(t, f.alice.ID))

	var likes int64
	require.NoError(t, f.db.Model(&entity.Like{}).Count(&likes).Error)
	assert.EqualValues(t, 1, likes)
}
