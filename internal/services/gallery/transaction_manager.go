package gallery

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
)

// TransactionManager 在一个数据库事务里执行 fn，fn 返回错误或 panic 时回滚
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTransactionManager{db: db}
}

// WithTransaction fn 的错误原样返回，调用方可以继续用 errors.Is 判断业务错误
func (tm *gormTransactionManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("WithTransaction: 开启事务失败", zap.Error(tx.Error))
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			rollback(tx, "panic")
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		rollback(tx, err.Error())
		return err
	}

	if err = tx.Commit().Error; err != nil {
		logger.Error("WithTransaction: 提交事务失败", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func rollback(tx *gorm.DB, cause string) {
	if err := tx.Rollback().Error; err != nil {
		logger.Error("WithTransaction: 回滚失败", zap.String("cause", cause), zap.Error(err))
		return
	}
	logger.Debug("WithTransaction: 事务已回滚", zap.String("cause", cause))
}
