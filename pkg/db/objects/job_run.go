package objects

import "time"

const (
	JobRunRunning = 0
	JobRunSuccess = 1
	JobRunFailed  = 2
)

// JobRun 对应 job_runs 表，记录后台定时任务每次执行
type JobRun struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	JobName    string     `gorm:"index;size:128" json:"job_name"`
	Status     int        `json:"status"` // 0 Running, 1 Success, 2 Failed
	ErrorMsg   string     `gorm:"type:text" json:"error_msg"`
	DurationMs int64      `json:"duration_ms"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
}

func (JobRun) TableName() string {
	return "job_runs"
}

// Models 需要 AutoMigrate 的全部模型
func Models() []any {
	return []any{&User{}, &Category{}, &Article{}, &JobRun{}}
}
