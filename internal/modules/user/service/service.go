package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pulseboard/backend/internal/entity"
	"github.com/pulseboard/backend/internal/modules/user/dto"
	"github.com/pulseboard/backend/internal/modules/user/repository"
	"github.com/pulseboard/backend/pkg/apperror"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo repository.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{repo: repo, secret: secret, tokenTTL: tokenTTL}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperror.WithMessage(apperror.ErrValidation, "username must not be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: string(hashed),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// The unique index decides; no pre-check, so concurrent registrations
		// of the same name cannot both win.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.WithMessage(apperror.ErrConflict, "username already exists")
		}
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	return s.buildAuthResponse(user, "Registration successful")
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	invalid := apperror.WithMessage(apperror.ErrUnauthorized, "invalid credentials")

	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	return s.buildAuthResponse(user, "Login successful")
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *authService) buildAuthResponse(user *entity.User, message string) (*dto.AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInternal, err)
	}

	return &dto.AuthResponse{
		User:    dto.NewUserResponse(user),
		Token:   token,
		Message: message,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
