package db

import (
	"Gin_postgres_redis_av_lending/models"
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip string) error {
	// 用数据库时间更准，且避免并发覆盖：CURRENT_TIMESTAMP + 计数自增
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"last_seen_at":  gorm.Expr("CURRENT_TIMESTAMP"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// 按 ID 查
func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Repo) UpdateUser(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, id)
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("is_admin = ?", true).
		Count(&n).Error
	return n, err
}

// 列表（分页 + 关键词，关键词匹配姓名/邮箱）
type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

// DeleteUserCascade 显式级联：先删该用户名下的物品，再删用户。
// 只要用户登记过借用，或名下物品有借用历史，就拒绝（ErrHasLoans）。
func (r *Repo) DeleteUserCascade(ctx context.Context, id, actorID string) (deletedItems int64, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Loan{}).Where("user_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrHasLoans
		}
		if err := tx.Model(&models.Loan{}).
			Where("item_id IN (?)", tx.Model(&models.Item{}).Select("id").Where("owner_id = ?", id)).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrHasLoans
		}
		res := tx.Where("owner_id = ?", id).Delete(&models.Item{})
		if res.Error != nil {
			return res.Error
		}
		deletedItems = res.RowsAffected
		if err := tx.Delete(&models.User{ID: id}).Error; err != nil {
			return err
		}
		return logActivity(tx, actorID, "user.delete", "user", id, u.Email)
	})
	return deletedItems, err
}

// 唯一性检查：excludeID 非空时排除正在编辑的那条
func (r *Repo) taken(ctx context.Context, model any, column, value, excludeID string) (bool, error) {
	q := r.DB.WithContext(ctx).Model(model).Where(column+" = ?", value)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) UserEmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.taken(ctx, &models.User{}, "email", strings.ToLower(strings.TrimSpace(email)), excludeID)
}
