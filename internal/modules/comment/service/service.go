package comment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/pulseboard/backend/internal/entity"
	commentDto "github.com/pulseboard/backend/internal/modules/comment/dto"
	commentRepo "github.com/pulseboard/backend/internal/modules/comment/repository"
	likeRepo "github.com/pulseboard/backend/internal/modules/like/repository"
	postRepo "github.com/pulseboard/backend/internal/modules/post/repository"
	userDto "github.com/pulseboard/backend/internal/modules/user/dto"
	"github.com/pulseboard/backend/pkg/apperror"
)

type CommentService interface {
	Create(ctx context.Context, userID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentNode, error)
	// TreeForPost assembles the ordered reply forest for a post, with
	// is_liked resolved for the viewer (nil viewer = anonymous).
	TreeForPost(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) ([]*commentDto.CommentNode, error)
}

type commentService struct {
	repo      commentRepo.CommentRepository
	postRepo  postRepo.PostRepository
	likeRepo  likeRepo.LikeRepository
	sanitizer *bluemonday.Policy
}

func NewCommentService(repo commentRepo.CommentRepository, postRepo postRepo.PostRepository, likeRepo likeRepo.LikeRepository) CommentService {
	return &commentService{
		repo:      repo,
		postRepo:  postRepo,
		likeRepo:  likeRepo,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *commentService) Create(ctx context.Context, userID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentNode, error) {
	postID, err := uuid.Parse(req.Post)
	if err != nil {
		return nil, apperror.WithMessage(apperror.ErrValidation, "invalid post id")
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return nil, apperror.WithMessage(apperror.ErrValidation, "content must not be empty")
	}

	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.WithMessage(apperror.ErrNotFound, "post not found")
		}
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	var parentID *uuid.UUID
	if req.Parent != nil && *req.Parent != "" {
		pid, err := uuid.Parse(*req.Parent)
		if err != nil {
			return nil, apperror.WithMessage(apperror.ErrValidation, "invalid parent id")
		}
		parent, err := s.repo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.WithMessage(apperror.ErrNotFound, "parent comment not found")
			}
			return nil, apperror.Wrap(apperror.ErrInternal, err)
		}
		if parent.PostID != postID {
			return nil, apperror.ErrInvalidParent
		}
		parentID = &pid
	}

	comment := &entity.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	created, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	return &commentDto.CommentNode{
		ID:        created.ID,
		Author:    userDto.NewUserResponse(&created.User),
		Content:   created.Content,
		CreatedAt: created.CreatedAt,
		Parent:    created.ParentID,
		LikeCount: created.LikeCount,
		IsLiked:   false,
		Replies:   []*commentDto.CommentNode{},
	}, nil
}

func (s *commentService) TreeForPost(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) ([]*commentDto.CommentNode, error) {
	comments, err := s.repo.FindByPostID(ctx, postID)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	liked := map[uuid.UUID]bool{}
	if viewerID != nil && len(comments) > 0 {
		ids := make([]uuid.UUID, 0, len(comments))
		for _, c := range comments {
			ids = append(ids, c.ID)
		}
		liked, err = s.likeRepo.LikedTargetIDs(ctx, *viewerID, entity.TargetComment, ids)
		if err != nil {
			return nil, apperror.Wrap(apperror.ErrInternal, err)
		}
	}

	return buildTree(comments, liked), nil
}
