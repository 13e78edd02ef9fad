package db

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_av_lending/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OpenLoanInput struct {
	ItemID   string
	PersonID string
	UserID   string // 登记人
	Status   models.LoanStatus
	Notes    string
	At       time.Time
}

// OpenLoan 借出：原子操作 = 锁住 item → 校验可用 → 占用 → 新建 loan → 审计
func (r *Repo) OpenLoan(ctx context.Context, in OpenLoanInput) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该物品
		var it models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&it, "id = ?", in.ItemID).Error; err != nil {
			return fmt.Errorf("item: %w", err)
		}
		var p models.Person
		if err := tx.Select("id").First(&p, "id = ?", in.PersonID).Error; err != nil {
			return fmt.Errorf("person: %w", err)
		}
		// 2) 防并发：不可用或已有 open loan 都拒绝
		if !it.Available {
			return ErrItemUnavailable
		}
		var n int64
		if err := tx.Model(&models.Loan{}).
			Where("item_id = ? AND status IN (?, ?)", it.ID, models.LoanPending, models.LoanActive).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrItemUnavailable
		}
		// 3) 占位
		res := tx.Model(&models.Item{}).
			Where("id = ? AND available = ?", it.ID, true).
			Updates(map[string]any{"available": false, "updated_at": in.At})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrItemUnavailable
		}
		// 4) 新建 Loan
		l := &models.Loan{
			ID:       uuid.NewString(),
			UserID:   in.UserID,
			ItemID:   it.ID,
			PersonID: in.PersonID,
			LoanedAt: in.At,
			Status:   in.Status,
			Notes:    in.Notes,
		}
		if err := tx.Omit(clause.Associations).Create(l).Error; err != nil {
			if col, ok := IsUniqueViolation(err); ok && col == "item_id" {
				return ErrItemUnavailable
			}
			return err
		}
		if err := logActivity(tx, in.UserID, "loan.open", "loan", l.ID, string(l.Status)+" "+it.Placa); err != nil {
			return err
		}
		loan = l
		return nil
	})
	return loan, err
}

// LoanChange 由调用方的状态机决定
type LoanChange struct {
	Status      models.LoanStatus
	ReturnedAt  *time.Time
	ReleaseItem bool // 归还/取消时把物品释放回可用
}

// ChangeLoan 锁住 loan → decide → 同一事务内写 loan、item、审计。
// decide 拒绝时返回当前 loan 和它的错误，不做任何写入。
func (r *Repo) ChangeLoan(ctx context.Context, loanID, actorID string, decide func(l *models.Loan) (LoanChange, error)) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&l, "id = ?", loanID).Error; err != nil {
			return fmt.Errorf("loan: %w", err)
		}
		ch, err := decide(&l)
		if err != nil {
			return err
		}
		from := l.Status
		update := map[string]any{"status": ch.Status}
		if ch.ReturnedAt != nil {
			update["returned_at"] = *ch.ReturnedAt
		}
		if err := tx.Model(&models.Loan{}).
			Where("id = ?", l.ID).
			Updates(update).Error; err != nil {
			return err
		}
		if ch.ReleaseItem {
			if err := tx.Model(&models.Item{}).
				Where("id = ?", l.ItemID).
				Update("available", true).Error; err != nil {
				return err
			}
		}
		if err := logActivity(tx, actorID, "loan."+string(ch.Status), "loan", l.ID, string(from)+" -> "+string(ch.Status)); err != nil {
			return err
		}
		l.Status = ch.Status
		if ch.ReturnedAt != nil {
			l.ReturnedAt = ch.ReturnedAt
		}
		return nil
	})
	if l.ID == "" {
		return nil, err
	}
	return &l, err
}

func (r *Repo) FindLoanByID(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).
		Preload("User").Preload("Item").Preload("Person").
		First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

type LoansQuery struct {
	UserID   string
	ItemID   string
	PersonID string
	Status   string // "", "open", 或具体状态
}

func (r *Repo) ListLoans(ctx context.Context, f LoansQuery) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Preload("Item").Preload("Person").
		Order("loaned_at DESC")
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ItemID != "" {
		q = q.Where("item_id = ?", f.ItemID)
	}
	if f.PersonID != "" {
		q = q.Where("person_id = ?", f.PersonID)
	}
	switch f.Status {
	case "":
	case "open":
		q = q.Where("status IN (?, ?)", models.LoanPending, models.LoanActive)
	default:
		q = q.Where("status = ?", f.Status)
	}
	ls := []models.Loan{}
	if err := q.Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

// IsItemAvailable 汇总：该物品是否可借
func (r *Repo) IsItemAvailable(ctx context.Context, itemID string) (bool, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).Select("available").First(&it, "id = ?", itemID).Error; err != nil {
		return false, err
	}
	return it.Available, nil
}

// CountOpenLoans 用于校验 available ⇔ 无 open loan
func (r *Repo) CountOpenLoans(ctx context.Context, itemID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("item_id = ? AND status IN (?, ?)", itemID, models.LoanPending, models.LoanActive).
		Count(&n).Error
	return n, err
}
