// db/repo_items.go
package db

import (
	"Gin_postgres_redis_av_lending/models"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRow 物品 + 当前未结束借用（可空）
type ItemRow struct {
	ID          string    `json:"id"`
	Placa       string    `json:"placa"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	Slug        string    `json:"slug"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	LoanID        *string    `json:"loanId,omitempty"`
	LoanStatus    *string    `json:"loanStatus,omitempty"`
	LoanedAt      *time.Time `json:"loanedAt,omitempty"`
	BorrowerID    *string    `json:"borrowerId,omitempty"`
	BorrowerName  *string    `json:"borrowerName,omitempty"`
	BorrowerIdent *string    `json:"borrowerIdentification,omitempty"`
}

type ItemsQuery struct {
	Placa         string // 模糊：placa
	Category      string // 模糊：category
	Q             string // 模糊：placa/name/category
	AvailableOnly bool
	Page          int
	Size          int
}

type PagedItems struct {
	Total int64     `json:"total"`
	Items []ItemRow `json:"items"`
}

func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(it).Error
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) FindItemBySlug(ctx context.Context, slug string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem slug 与 available 不在这里改
func (r *Repo) UpdateItem(ctx context.Context, it *models.Item) error {
	return r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", it.ID).
		Updates(map[string]any{
			"placa":       it.Placa,
			"name":        it.Name,
			"category":    it.Category,
			"description": it.Description,
		}).Error
}

func applyItemFilters(tx *gorm.DB, q ItemsQuery) *gorm.DB {
	if s := strings.TrimSpace(q.Placa); s != "" {
		tx = tx.Where("LOWER(i.placa) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(q.Category); s != "" {
		tx = tx.Where("LOWER(i.category) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(i.placa) LIKE ? OR LOWER(i.name) LIKE ? OR LOWER(i.category) LIKE ?", pat, pat, pat)
	}
	if q.AvailableOnly {
		tx = tx.Where("i.available = ?", true)
	}
	return tx
}

// ListItemsWithCurrentLoan 唯一部分索引保证每件物品最多一条 open loan，直接 LEFT JOIN 即可
func (r *Repo) ListItemsWithCurrentLoan(ctx context.Context, q ItemsQuery) (*PagedItems, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 50
	}
	db := r.DB.WithContext(ctx)

	var total int64
	if err := applyItemFilters(db.Table(models.ItemTable+" i"), q).Count(&total).Error; err != nil {
		return nil, err
	}

	qry := db.
		Table(models.ItemTable+" i").
		Select(`
			i.id, i.placa, i.name, i.category, i.description, i.available, i.slug, i.owner_id,
			i.created_at, i.updated_at,
			ol.id        AS loan_id,
			ol.status    AS loan_status,
			ol.loaned_at AS loaned_at,
			p.id         AS borrower_id,
			p.first_name || ' ' || p.last_name AS borrower_name,
			p.identification AS borrower_ident
		`).
		Joins("LEFT JOIN "+models.LoanTable+" ol ON ol.item_id = i.id AND ol.status IN (?, ?)", models.LoanPending, models.LoanActive).
		Joins("LEFT JOIN " + models.PersonTable + " p ON p.id = ol.person_id")
	qry = applyItemFilters(qry, q).
		Order("i.created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size)

	rows := []ItemRow{}
	if err := qry.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return &PagedItems{Total: total, Items: rows}, nil
}

func (r *Repo) ListCategories(ctx context.Context) ([]string, error) {
	cats := []string{}
	err := r.DB.WithContext(ctx).Model(&models.Item{}).
		Distinct("category").
		Order("category").
		Pluck("category", &cats).Error
	return cats, err
}

// DeleteItem 只有从未被借过且当前可用的物品才能删
func (r *Repo) DeleteItem(ctx context.Context, id, actorID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&it, "id = ?", id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Loan{}).Where("item_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 || !it.Available {
			return ErrItemInUse
		}
		if err := tx.Delete(&models.Item{ID: id}).Error; err != nil {
			return err
		}
		return logActivity(tx, actorID, "item.delete", "item", id, it.Placa)
	})
}

func (r *Repo) PlacaTaken(ctx context.Context, placa, excludeID string) (bool, error) {
	return r.taken(ctx, &models.Item{}, "placa", placa, excludeID)
}

func (r *Repo) SlugTaken(ctx context.Context, slug string) (bool, error) {
	return r.taken(ctx, &models.Item{}, "slug", slug, "")
}
