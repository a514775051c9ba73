package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"datamorph/internal/auth"
	"datamorph/internal/model"
	"datamorph/internal/repository"
)

// TokenIssuer mints and checks session tokens. *auth.TokenManager satisfies it.
type TokenIssuer interface {
	Issue(userID string) (*model.TokenPair, error)
	VerifyRefresh(token string) (string, error)
}

// AuthService covers account creation and sessions.
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.Credentials) (*model.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, log zerolog.Logger) AuthService {
	return &authService{users: users, tokens: tokens, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Tier:         TierStarter,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("event", "user_signup").Str("user_id", u.ID).Msg("account created")
	return s.session(u)
}

func (s *authService) Login(ctx context.Context, req model.Credentials) (*model.AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.TouchLogin(ctx, u.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID).Msg("record last login")
	}
	return s.session(u)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	return s.tokens.Issue(userID)
}

func (s *authService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *authService) session(u *model.User) (*model.AuthResponse, error) {
	pair, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: *u, Tokens: *pair}, nil
}
