// Package lending enforces the inventory and loan rules: who may do what,
// which fields must be unique, how item slugs are assigned, and how a loan
// moves between states while keeping its item's availability flag in step.
package lending

import (
	"context"
	"time"

	"Gin_postgres_redis_av_lending/db"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Principal is the authenticated user an operation runs on behalf of.
type Principal struct {
	UserID  string
	IsAdmin bool
}

func (p Principal) requireUser() error {
	if p.UserID == "" {
		return ErrForbidden
	}
	return nil
}

func (p Principal) requireAdmin() error {
	if p.UserID == "" || !p.IsAdmin {
		return ErrForbidden
	}
	return nil
}

type Service struct {
	repo       *db.Repo
	log        zerolog.Logger
	now        func() time.Time
	bcryptCost int

	slugTaken func(ctx context.Context, slug string) (bool, error)
}

func New(repo *db.Repo, log zerolog.Logger) *Service {
	s := &Service{
		repo:       repo,
		log:        log.With().Str("component", "lending").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
		bcryptCost: bcrypt.DefaultCost,
	}
	s.slugTaken = func(ctx context.Context, slug string) (bool, error) { return repo.SlugTaken(ctx, slug) }
	return s
}

// WithClock replaces the time source used for loan timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithBcryptCost lowers the hashing cost, e.g. in tests.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

func (s *Service) Repo() *db.Repo { return s.repo }
