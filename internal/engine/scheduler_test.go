package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/iceymoss/go-press/internal/repo"
	"github.com/iceymoss/go-press/pkg/db/dbtest"
	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTask struct {
	err   error
	calls int
	got   map[string]any
}

func (t *stubTask) Run(_ context.Context, params map[string]any) error {
	t.calls++
	t.got = params
	return t.err
}

func (t *stubTask) Identifier() string { return "stub" }

func TestRunNowRecordsResult(t *testing.T) {
	jobs := repo.NewJobRepo(dbtest.New(t))
	s := NewScheduler(jobs)

	ok := &stubTask{}
	bad := &stubTask{err: errors.New("boom")}
	require.NoError(t, s.AddJob("@every 1m", "ok", ok, map[string]any{"n": 1}))
	require.NoError(t, s.AddJob("@every 1m", "bad", bad, nil))

	require.NoError(t, s.RunNow("ok"))
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, map[string]any{"n": 1}, ok.got)

	assert.EqualError(t, s.RunNow("bad"), "Error: boom")

	stats := s.Stats.GetAll()
	require.Len(t, stats, 2)
	assert.Equal(t, "bad", stats[0].Name)
	assert.Equal(t, StatusError, stats[0].Status)
	assert.Equal(t, StatusIdle, stats[1].Status)
	assert.Equal(t, int64(1), stats[1].RunCount)
	assert.NotEmpty(t, stats[1].NextRunTime)

	runs, err := jobs.Recent(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, objects.JobRunFailed, runs[0].Status)
	assert.Equal(t, "boom", runs[0].ErrorMsg)
	assert.Equal(t, objects.JobRunSuccess, runs[1].Status)
}

func TestAddJobRejectsDuplicatesAndBadSpecs(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.AddJob("0 */5 * * * *", "a", &stubTask{}, nil))
	assert.Error(t, s.AddJob("@every 1m", "a", &stubTask{}, nil))
	assert.Error(t, s.AddJob("not a cron", "b", &stubTask{}, nil))
}

func TestManualRunUnknownJob(t *testing.T) {
	s := NewScheduler(nil)
	err := s.ManualRun("missing")
	assert.True(t, apperrors.IsCode(err, xerr.ErrResourceNotFound))
}
