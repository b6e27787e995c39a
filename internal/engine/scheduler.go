package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/iceymoss/go-press/internal/core"
	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"
	"github.com/iceymoss/go-press/pkg/xerr"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunRecorder 持久化每次执行，repo.JobRepo 实现了该接口
type RunRecorder interface {
	CreateRun(ctx context.Context, name string, start time.Time) (*objects.JobRun, error)
	FinishRun(ctx context.Context, run *objects.JobRun, runErr error, end time.Time) error
}

type registration struct {
	task    core.Task
	params  map[string]any
	entryID cron.EntryID
}

type Scheduler struct {
	cron       *cron.Cron
	Stats      *StatManager
	recorder   RunRecorder
	timeout    time.Duration
	registered map[string]registration
}

// NewScheduler recorder 可以为 nil，此时只保留内存状态
func NewScheduler(recorder RunRecorder) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		Stats:      NewStatManager(),
		recorder:   recorder,
		timeout:    5 * time.Minute,
		registered: make(map[string]registration),
	}
}

// AddJob 添加任务，cronExpr 支持秒级表达式和 @every 描述符
func (s *Scheduler) AddJob(cronExpr, name string, task core.Task, params map[string]any) error {
	if _, ok := s.registered[name]; ok {
		return fmt.Errorf("job %s already registered", name)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		s.run(name, task, params)
	})
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}

	s.Stats.Set(name, &JobStats{
		Name:       name,
		CronExpr:   cronExpr,
		Status:     StatusIdle,
		LastResult: "Pending",
	})
	s.registered[name] = registration{task: task, params: params, entryID: entryID}
	s.refreshNext(name)
	return nil
}

// run 执行并记录状态，同一任务正在运行时跳过本次
func (s *Scheduler) run(name string, task core.Task, params map[string]any) {
	started := false
	s.Stats.Update(name, func(st *JobStats) {
		if st.Status == StatusRunning {
			return
		}
		started = true
		st.Status = StatusRunning
		st.LastRunTime = formatTime(time.Now())
		st.RunCount++
	})
	if !started {
		logger.Warn("job still running, skipped", zap.String("job", name))
		return
	}

	log := logger.With(zap.String("job", name), zap.String("task", task.Identifier()))
	log.Info("job started")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	var rec *objects.JobRun
	if s.recorder != nil {
		var err error
		if rec, err = s.recorder.CreateRun(ctx, name, start); err != nil {
			log.Warn("record job start failed", zap.Error(err))
		}
	}

	err := task.Run(ctx, params)

	if rec != nil {
		if ferr := s.recorder.FinishRun(ctx, rec, err, time.Now()); ferr != nil {
			log.Warn("record job result failed", zap.Error(ferr))
		}
	}

	s.Stats.Update(name, func(st *JobStats) {
		if err != nil {
			st.LastResult = fmt.Sprintf("Error: %v", err)
			st.Status = StatusError
			return
		}
		st.LastResult = "Success"
		st.Status = StatusIdle
	})
	s.refreshNext(name)

	if err != nil {
		log.Error("job failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	log.Info("job finished", zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) refreshNext(name string) {
	reg, ok := s.registered[name]
	if !ok {
		return
	}
	next := s.cron.Entry(reg.entryID).Next
	if next.IsZero() {
		// cron 未启动时 Entry.Next 为空，按表达式推算
		if e := s.cron.Entry(reg.entryID); e.Schedule != nil {
			next = e.Schedule.Next(time.Now())
		}
	}
	s.Stats.Update(name, func(st *JobStats) {
		st.NextRunTime = formatTime(next)
	})
}

// ManualRun 手动触发，异步执行
func (s *Scheduler) ManualRun(name string) error {
	reg, ok := s.registered[name]
	if !ok {
		return apperrors.NotFound("job")
	}
	if st, _ := s.Stats.Get(name); st.Status == StatusRunning {
		return apperrors.New(xerr.ErrConflict, "job is already running")
	}
	go s.run(name, reg.task, reg.params)
	return nil
}

// RunNow 同步执行，供测试和命令行使用
func (s *Scheduler) RunNow(name string) error {
	reg, ok := s.registered[name]
	if !ok {
		return apperrors.NotFound("job")
	}
	s.run(name, reg.task, reg.params)
	if st, _ := s.Stats.Get(name); st.Status == StatusError {
		return fmt.Errorf("%s", st.LastResult)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 等待正在运行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
