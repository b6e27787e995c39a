package core

import "context"

// Task 后台任务接口
type Task interface {
	// Run 执行任务逻辑
	// params 为注册任务时传入的固定参数
	Run(ctx context.Context, params map[string]any) error

	// Identifier 返回任务唯一标识 (用于日志)
	Identifier() string
}
