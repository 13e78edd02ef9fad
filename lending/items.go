package lending

import (
	"context"
	"strconv"
	"strings"

	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/models"
	"Gin_postgres_redis_av_lending/slug"
)

const msgPlacaTaken = "placa already registered"

type ItemInput struct {
	Placa       string `json:"placa" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,max=50"`
	Description string `json:"description" validate:"required"`
}

func (in ItemInput) normalized() ItemInput {
	in.Placa = strings.TrimSpace(in.Placa)
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// ItemFilter narrows ListItems; every text field is a case-insensitive substring.
type ItemFilter struct {
	Placa         string
	Category      string
	Query         string
	AvailableOnly bool
	Page          int
	Size          int
}

// ValidatePlaca 编辑时 excludeID 为当前物品
func (s *Service) ValidatePlaca(ctx context.Context, placa, excludeID string) error {
	taken, err := s.repo.PlacaTaken(ctx, placa, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fieldError("placa", msgPlacaTaken)
	}
	return nil
}

// AssignSlug returns the lowest free candidate among base, base-1, base-2, ...
func (s *Service) AssignSlug(ctx context.Context, name, placa string) (string, error) {
	base := slug.ForItem(name, placa)
	if base == "" {
		base = "item"
	}
	candidate := base
	for n := 1; ; n++ {
		taken, err := s.slugTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// insertWithSlug 并发创建可能撞 slug：重新生成后只重试一次
func (s *Service) insertWithSlug(ctx context.Context, it *models.Item) error {
	for attempt := 0; attempt < 2; attempt++ {
		sl, err := s.AssignSlug(ctx, it.Name, it.Placa)
		if err != nil {
			return err
		}
		it.ID = ""
		it.Slug = sl
		err = s.repo.CreateItem(ctx, it)
		if err == nil {
			return nil
		}
		col, dup := db.IsUniqueViolation(err)
		if !dup {
			return err
		}
		if col == "placa" {
			return fieldError("placa", msgPlacaTaken)
		}
		s.log.Warn().Str("slug", sl).Int("attempt", attempt+1).Msg("slug collision on insert")
	}
	return ErrCreateFailed
}

func (s *Service) CreateItem(ctx context.Context, p Principal, in ItemInput) (*models.Item, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.ValidatePlaca(ctx, in.Placa, ""); err != nil {
		return nil, err
	}
	it := &models.Item{
		Placa:       in.Placa,
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Available:   true,
		OwnerID:     p.UserID,
	}
	if err := s.insertWithSlug(ctx, it); err != nil {
		return nil, err
	}
	s.log.Info().Str("item_id", it.ID).Str("slug", it.Slug).Str("owner", it.OwnerID).Msg("item created")
	return it, nil
}

func (s *Service) canManageItem(p Principal, it *models.Item) error {
	if p.IsAdmin || it.OwnerID == p.UserID {
		return nil
	}
	return ErrForbidden
}

// UpdateItem slug 创建后不可变
func (s *Service) UpdateItem(ctx context.Context, p Principal, id string, in ItemInput) (*models.Item, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	it, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.canManageItem(p, it); err != nil {
		return nil, err
	}
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.ValidatePlaca(ctx, in.Placa, id); err != nil {
		return nil, err
	}
	it.Placa = in.Placa
	it.Name = in.Name
	it.Category = in.Category
	it.Description = in.Description
	if err := s.repo.UpdateItem(ctx, it); err != nil {
		if _, dup := db.IsUniqueViolation(err); dup {
			return nil, fieldError("placa", msgPlacaTaken)
		}
		return nil, err
	}
	return it, nil
}

func (s *Service) GetItem(ctx context.Context, p Principal, id string) (*models.Item, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	it, err := s.repo.FindItemByID(ctx, id)
	return it, notFound(err)
}

func (s *Service) GetItemBySlug(ctx context.Context, p Principal, sl string) (*models.Item, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	it, err := s.repo.FindItemBySlug(ctx, sl)
	return it, notFound(err)
}

func (s *Service) ListItems(ctx context.Context, p Principal, f ItemFilter) (*db.PagedItems, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	return s.repo.ListItemsWithCurrentLoan(ctx, db.ItemsQuery{
		Placa:         f.Placa,
		Category:      f.Category,
		Q:             f.Query,
		AvailableOnly: f.AvailableOnly,
		Page:          f.Page,
		Size:          f.Size,
	})
}

func (s *Service) ListCategories(ctx context.Context, p Principal) ([]string, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx)
}

func (s *Service) DeleteItem(ctx context.Context, p Principal, id string) error {
	if err := p.requireUser(); err != nil {
		return err
	}
	it, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.canManageItem(p, it); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, id, p.UserID); err != nil {
		return notFound(err)
	}
	s.log.Info().Str("item_id", id).Str("actor", p.UserID).Msg("item deleted")
	return nil
}
