package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pulseboard/backend/internal/entity"
	comment "github.com/pulseboard/backend/internal/modules/comment/service"
	likeRepo "github.com/pulseboard/backend/internal/modules/like/repository"
	postDto "github.com/pulseboard/backend/internal/modules/post/dto"
	postRepo "github.com/pulseboard/backend/internal/modules/post/repository"
	userDto "github.com/pulseboard/backend/internal/modules/user/dto"
	"github.com/pulseboard/backend/pkg/apperror"
	"github.com/pulseboard/backend/pkg/ratelimiter"
)

type PostService interface {
	Create(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error)
	List(ctx context.Context, viewerID *uuid.UUID) ([]postDto.PostResponse, error)
	Get(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (*postDto.PostDetailResponse, error)
}

type Options struct {
	RedisClient  *redis.Client
	PostCooldown time.Duration
}

type postService struct {
	repo           postRepo.PostRepository
	likeRepo       likeRepo.LikeRepository
	commentService comment.CommentService
	redisClient    *redis.Client
	cooldown       time.Duration
	sanitizer      *bluemonday.Policy
}

func NewPostService(repo postRepo.PostRepository, likeRepo likeRepo.LikeRepository, commentService comment.CommentService, opts Options) PostService {
	return &postService{
		repo:           repo,
		likeRepo:       likeRepo,
		commentService: commentService,
		redisClient:    opts.RedisClient,
		cooldown:       opts.PostCooldown,
		sanitizer:      bluemonday.StrictPolicy(),
	}
}

func (s *postService) Create(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error) {
	if s.cooldown > 0 {
		allowed, err := ratelimiter.CheckAndSet(ctx, s.redisClient, userID, "post", s.cooldown)
		if err != nil {
			return nil, apperror.Wrap(apperror.ErrInternal, err)
		}
		if !allowed {
			ttl, _ := ratelimiter.TTL(ctx, s.redisClient, userID, "post")
			return nil, &ratelimiter.RateLimitError{
				Message:    fmt.Sprintf("you are posting too fast. Please wait %.0f seconds", ttl.Seconds()),
				RetryAfter: ttl,
			}
		}
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		// Release the cooldown; nothing was published.
		_ = ratelimiter.Clear(ctx, s.redisClient, userID, "post")
		return nil, apperror.WithMessage(apperror.ErrValidation, "content must not be empty")
	}

	post := &entity.Post{UserID: userID, Content: content}
	if err := s.repo.Create(ctx, post); err != nil {
		_ = ratelimiter.Clear(ctx, s.redisClient, userID, "post")
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	created, err := s.repo.FindByID(ctx, post.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	resp := mapToResponse(created, false)
	return &resp, nil
}

func (s *postService) List(ctx context.Context, viewerID *uuid.UUID) ([]postDto.PostResponse, error) {
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	liked := map[uuid.UUID]bool{}
	if viewerID != nil && len(posts) > 0 {
		ids := make([]uuid.UUID, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		liked, err = s.likeRepo.LikedTargetIDs(ctx, *viewerID, entity.TargetPost, ids)
		if err != nil {
			return nil, apperror.Wrap(apperror.ErrInternal, err)
		}
	}

	responses := make([]postDto.PostResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, mapToResponse(p, liked[p.ID]))
	}
	return responses, nil
}

func (s *postService) Get(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (*postDto.PostDetailResponse, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.WithMessage(apperror.ErrNotFound, "post not found")
		}
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	isLiked := false
	if viewerID != nil {
		liked, err := s.likeRepo.LikedTargetIDs(ctx, *viewerID, entity.TargetPost, []uuid.UUID{post.ID})
		if err != nil {
			return nil, apperror.Wrap(apperror.ErrInternal, err)
		}
		isLiked = liked[post.ID]
	}

	comments, err := s.commentService.TreeForPost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}

	return &postDto.PostDetailResponse{
		PostResponse: mapToResponse(post, isLiked),
		Comments:     comments,
	}, nil
}

func mapToResponse(p *entity.Post, isLiked bool) postDto.PostResponse {
	return postDto.PostResponse{
		ID:           p.ID,
		Author:       userDto.NewUserResponse(&p.User),
		Content:      p.Content,
		CreatedAt:    p.CreatedAt,
		LikeCount:    p.LikeCount,
		IsLiked:      isLiked,
		CommentCount: p.CommentCount,
	}
}
