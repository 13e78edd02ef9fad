package db

import (
	"Gin_postgres_redis_av_lending/models"
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// logActivity 必须用调用方的 tx，保证与业务写入一起提交或回滚
func logActivity(tx *gorm.DB, actorID, action, subjectType, subjectID, detail string) error {
	entry := &models.ActivityLog{
		ID:          uuid.NewString(),
		ActorID:     actorID,
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Detail:      detail,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

func (r *Repo) ListActivity(ctx context.Context, subjectID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if subjectID != "" {
		q = q.Where("subject_id = ?", subjectID)
	}
	logs := []models.ActivityLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
