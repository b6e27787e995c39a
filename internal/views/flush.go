package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/iceymoss/go-press/pkg/logger"

	"go.uber.org/zap"
)

// FlushTask 把 redis 中缓冲的阅读量写回数据库
// 先把 key 改名为 <key>:flushing 再处理，flush 期间的新增计数写入新 key
type FlushTask struct {
	rdb   HashStore
	store Store
	key   string
}

func NewFlushTask(rdb HashStore, store Store, key string) *FlushTask {
	return &FlushTask{rdb: rdb, store: store, key: key}
}

func (t *FlushTask) Identifier() string {
	return FlushJobName
}

func (t *FlushTask) processingKey() string {
	return t.key + ":flushing"
}

func (t *FlushTask) Run(ctx context.Context, _ map[string]any) error {
	// 上一次失败遗留的数据先处理，避免被 RENAME 覆盖
	if err := t.drain(ctx); err != nil {
		return err
	}

	n, err := t.rdb.Exists(ctx, t.key).Result()
	if err != nil {
		return fmt.Errorf("check views buffer: %w", err)
	}
	if n == 0 {
		return nil
	}
	if err := t.rdb.Rename(ctx, t.key, t.processingKey()).Err(); err != nil {
		return fmt.Errorf("rotate views buffer: %w", err)
	}
	return t.drain(ctx)
}

// drain 每落库一篇就 HDEL 一个字段，中途失败时已处理的部分不会重复计数
func (t *FlushTask) drain(ctx context.Context) error {
	key := t.processingKey()
	pending, err := t.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("read views buffer: %w", err)
	}

	var flushed int64
	for field, raw := range pending {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			logger.Warn("drop malformed views entry", zap.String("field", field))
			t.rdb.HDel(ctx, key, field)
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.Warn("drop malformed views count", zap.String("field", field), zap.String("value", raw))
			t.rdb.HDel(ctx, key, field)
			continue
		}
		if err := t.store.AddViews(ctx, id, n); err != nil {
			return fmt.Errorf("add views for article %d: %w", id, err)
		}
		if err := t.rdb.HDel(ctx, key, field).Err(); err != nil {
			return fmt.Errorf("clear views entry %d: %w", id, err)
		}
		flushed += n
	}
	if len(pending) > 0 {
		logger.Info("views flushed", zap.Int("articles", len(pending)), zap.Int64("views", flushed))
	}
	return nil
}
