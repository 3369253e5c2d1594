// Package sessions manages the single session slot the CLI logs into.
package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/auth"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/session"
)

type Service struct {
	store     session.Store
	jwtSecret []byte
}

func NewService(store session.Store, jwtSecret []byte) *Service {
	return &Service{store: store, jwtSecret: jwtSecret}
}

// Begin records userID as the logged-in user, replacing any previous session.
func (s *Service) Begin(ctx context.Context, userID, token string) error {
	sess, err := models.NewSession(userID, token)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return fmt.Errorf("begin session: %w: %w", common.ErrStoreFailure, err)
	}
	return nil
}

// Current returns the principal of the recorded session. An empty slot or a
// token that no longer verifies for the recorded user is common.ErrNoSession.
func (s *Service) Current(ctx context.Context) (models.Principal, error) {
	sess, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoSession) {
			return models.Anonymous, err
		}
		return models.Anonymous, fmt.Errorf("session: %w: %w", common.ErrStoreFailure, err)
	}

	id, err := auth.GetUserIDFromToken(sess.Token, s.jwtSecret)
	if err != nil {
		return models.Anonymous, fmt.Errorf("%w: %w", common.ErrNoSession, err)
	}
	if id != sess.UserID {
		return models.Anonymous, fmt.Errorf("%w: token issued to another user", common.ErrNoSession)
	}
	return models.Principal(id), nil
}

// End clears the slot. Ending an empty slot succeeds.
func (s *Service) End(ctx context.Context) error {
	if err := s.store.Delete(ctx); err != nil {
		return fmt.Errorf("end session: %w: %w", common.ErrStoreFailure, err)
	}
	return nil
}
