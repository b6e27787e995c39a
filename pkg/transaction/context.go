package transaction

import (
	"context"

	"gorm.io/gorm"
)

// txContextKey 用于在context中存储事务的标识键
type txContextKey struct{}

// WithTransaction 将事务对象注入到context中，用于事务传递
func WithTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// InTransaction 当前 context 是否已携带事务
func InTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return ok && tx != nil
}

// GetTransactionOrDB 仓储层统一入口：有事务用事务，否则用默认连接
func GetTransactionOrDB(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return defaultDB.WithContext(ctx)
}
