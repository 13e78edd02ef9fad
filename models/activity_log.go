package models

import "time"

// ActivityLog 记录借还状态变化与删除操作的审计信息，
// 与业务写入在同一个事务里落库。
type ActivityLog struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID     string    `gorm:"size:36;index" json:"actorId"`
	Action      string    `gorm:"size:40;not null" json:"action"`
	SubjectType string    `gorm:"size:20;not null" json:"subjectType"`
	SubjectID   string    `gorm:"size:36;index" json:"subjectId"`
	Detail      string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (ActivityLog) TableName() string { return "av_activity_log" }
