package repo

import (
	"context"
	"time"

	"github.com/iceymoss/go-press/pkg/db/objects"

	"gorm.io/gorm"
)

// JobRepo 定时任务执行记录
type JobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) *JobRepo {
	return &JobRepo{db: db}
}

// CreateRun 任务开始时写入一条 Running 记录
func (r *JobRepo) CreateRun(ctx context.Context, name string, start time.Time) (*objects.JobRun, error) {
	run := &objects.JobRun{
		JobName:   name,
		Status:    objects.JobRunRunning,
		StartTime: start,
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// FinishRun 回写执行结果
func (r *JobRepo) FinishRun(ctx context.Context, run *objects.JobRun, runErr error, end time.Time) error {
	run.EndTime = &end
	run.DurationMs = end.Sub(run.StartTime).Milliseconds()
	run.Status = objects.JobRunSuccess
	if runErr != nil {
		run.Status = objects.JobRunFailed
		run.ErrorMsg = runErr.Error()
	}
	return r.db.WithContext(ctx).Model(run).Select("status", "error_msg", "duration_ms", "end_time").Updates(run).Error
}

// Recent 最近的执行记录，name 为空时不过滤
func (r *JobRepo) Recent(ctx context.Context, name string, limit int) ([]objects.JobRun, error) {
	list := make([]objects.JobRun, 0, limit)
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if name != "" {
		q = q.Where("job_name = ?", name)
	}
	err := q.Find(&list).Error
	return list, err
}
