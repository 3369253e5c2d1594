// Package users implements registration, login and lookup of vault users.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/auth"
	"github.com/dmitrijs2005/gophvault/internal/server/config"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// bcrypt cost, lowered in tests
var hashCost = bcrypt.DefaultCost

type Service struct {
	db                          dbx.DBTX
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewService(db dbx.DBTX, m repomanager.RepositoryManager, cfg *config.Config) *Service {
	return &Service{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a user. A taken username or email yields
// common.ErrConflict.
func (s *Service) Register(ctx context.Context, userName, email, password string) (*models.User, error) {
	userName = strings.TrimSpace(userName)
	email = strings.TrimSpace(email)

	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	user, err := models.NewUser(userName, email, hash)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		exists, err := repo.ExistsByUserNameOrEmail(ctx, userName, email)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		if exists {
			return fmt.Errorf("user %q: %w", userName, common.ErrConflict)
		}

		created, err = repo.Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies the password and returns the user plus a signed token.
// Unknown users and wrong passwords are both common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, userName, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUserName(ctx, strings.TrimSpace(userName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return user, token, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Authenticate turns a bearer token into the principal it was issued to.
func (s *Service) Authenticate(token string) (models.Principal, error) {
	id, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return models.Anonymous, err
	}
	return models.Principal(id), nil
}
