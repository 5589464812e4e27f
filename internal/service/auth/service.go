package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/medihelp-api/internal/email"
	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/pkg/auth"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
	"github.com/jwalitptl/medihelp-api/pkg/security"
)

var ErrInvalidCredentials = stderrors.New("invalid credentials")

const msgInvalidCredentials = "Incorrect email or password"

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService,
	hasher security.PasswordHasher, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// Register creates the account and its profile.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	addr := strings.TrimSpace(req.Email)
	if _, err := s.userRepo.GetByEmail(ctx, addr); err == nil {
		return nil, errors.Conflict("Email already registered", nil)
	} else if errors.CodeOf(err) != errors.ErrNotFound {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return nil, errors.Validation(fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen))
		}
		return nil, errors.Internal(err)
	}

	user := &model.User{
		Email:        addr,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: hash,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
	}
	if err := s.userRepo.CreateWithProfile(ctx, user); err != nil {
		if errors.CodeOf(err) == errors.ErrConflict {
			return nil, errors.Conflict("Email already registered", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.Error(err, "failed to send welcome email", "user_id", user.ID.String())
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.CodeOf(err) == errors.ErrNotFound {
			return nil, errors.UnauthorizedMessage(msgInvalidCredentials, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, errors.UnauthorizedMessage(msgInvalidCredentials, ErrInvalidCredentials)
	}

	token, exp, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, errors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp,
	}, nil
}
