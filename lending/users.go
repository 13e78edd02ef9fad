package lending

import (
	"context"
	"errors"
	"strings"

	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgEmailTaken = "email already registered"

type UserInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"omitempty,min=6"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (in UserInput) normalized() UserInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

func (s *Service) hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ProvisionUser creates an account without a principal. Only process-level
// entry points (first-admin bootstrap, the CLI) call it.
func (s *Service) ProvisionUser(ctx context.Context, in UserInput) (*models.User, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, fieldError("password", "is required")
	}
	if err := s.checkUserEmail(ctx, in.Email, ""); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash, IsAdmin: in.IsAdmin}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if _, dup := db.IsUniqueViolation(err); dup {
			return nil, fieldError("email", msgEmailTaken)
		}
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID).Str("email", u.Email).Bool("admin", u.IsAdmin).Msg("user created")
	return u, nil
}

func (s *Service) CreateUser(ctx context.Context, p Principal, in UserInput) (*models.User, error) {
	if err := p.requireAdmin(); err != nil {
		return nil, err
	}
	return s.ProvisionUser(ctx, in)
}

// UpdateUser 密码为空则保持不变
func (s *Service) UpdateUser(ctx context.Context, p Principal, id string, in UserInput) (*models.User, error) {
	if err := p.requireAdmin(); err != nil {
		return nil, err
	}
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindUserByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	if err := s.checkUserEmail(ctx, in.Email, id); err != nil {
		return nil, err
	}
	fields := map[string]any{"name": in.Name, "email": in.Email, "is_admin": in.IsAdmin}
	if in.Password != "" {
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}
	u, err := s.repo.UpdateUser(ctx, id, fields)
	if err != nil {
		if _, dup := db.IsUniqueViolation(err); dup {
			return nil, fieldError("email", msgEmailTaken)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, p Principal, id string) (*models.User, error) {
	if p.UserID == "" || (!p.IsAdmin && p.UserID != id) {
		return nil, ErrForbidden
	}
	u, err := s.repo.FindUserByID(ctx, id)
	return u, notFound(err)
}

func (s *Service) ListUsers(ctx context.Context, p Principal, q string, page, size int) (db.ListUsersResult, error) {
	if err := p.requireAdmin(); err != nil {
		return db.ListUsersResult{}, err
	}
	return s.repo.ListUsers(ctx, q, page, size)
}

// DeleteUser 删除用户会连带删除其名下物品（显式策略，不依赖外键级联）
func (s *Service) DeleteUser(ctx context.Context, p Principal, id string) error {
	if err := p.requireAdmin(); err != nil {
		return err
	}
	if p.UserID == id {
		return ErrSelfDelete
	}
	n, err := s.repo.DeleteUserCascade(ctx, id, p.UserID)
	if err != nil {
		return notFound(err)
	}
	s.log.Info().Str("user_id", id).Int64("items_deleted", n).Str("actor", p.UserID).Msg("user deleted")
	return nil
}

// Authenticate checks an email/password pair against the stored hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) checkUserEmail(ctx context.Context, email, excludeID string) error {
	taken, err := s.repo.UserEmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fieldError("email", msgEmailTaken)
	}
	return nil
}
