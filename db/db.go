package db

import (
	"Gin_postgres_redis_av_lending/models"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenLoanIndex 同一物品最多一条 pending/active 借用
const OpenLoanIndex = models.LoanTable + "_one_open_per_item"

// ConnectDB opens Postgres and runs migrations.
func ConnectDB(dsn string, silent bool) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	conn, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Person{}, &models.Item{}, &models.Loan{}, &models.ActivityLog{}); err != nil {
		return err
	}

	// 数据库兜底：并发借出时第二条 open loan 直接撞唯一索引
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s
	  ON %s (item_id)
	  WHERE status IN ('pending', 'active');
	`, OpenLoanIndex, models.LoanTable)).Error; err != nil {
		return err
	}

	// 按时间倒序列出借用
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_loaned_at_desc
	  ON %s (loaned_at DESC);
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	return nil
}
