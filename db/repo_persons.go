package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_av_lending/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repo) CreatePerson(ctx context.Context, p *models.Person) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) FindPersonByID(ctx context.Context, id string) (*models.Person, error) {
	var p models.Person
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) UpdatePerson(ctx context.Context, p *models.Person) error {
	return r.DB.WithContext(ctx).Model(&models.Person{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"first_name":     p.FirstName,
			"last_name":      p.LastName,
			"identification": p.Identification,
			"email":          p.Email,
			"phone":          p.Phone,
			"role":           p.Role,
		}).Error
}

// ListPersons 关键词匹配名/姓/证件号，按名排序
func (r *Repo) ListPersons(ctx context.Context, q string) ([]models.Person, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Person{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(identification) LIKE ?", like, like, like)
	}
	ps := []models.Person{}
	if err := tx.Order("first_name, last_name").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// DeletePerson 有借用记录的人不能删
func (r *Repo) DeletePerson(ctx context.Context, id, actorID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Person
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Loan{}).Where("person_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrHasLoans
		}
		if err := tx.Delete(&models.Person{ID: id}).Error; err != nil {
			return err
		}
		return logActivity(tx, actorID, "person.delete", "person", id, p.Identification)
	})
}

func (r *Repo) IdentificationTaken(ctx context.Context, identification, excludeID string) (bool, error) {
	return r.taken(ctx, &models.Person{}, "identification", identification, excludeID)
}

func (r *Repo) PersonEmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.taken(ctx, &models.Person{}, "email", email, excludeID)
}
