package transaction_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iceymoss/go-press/pkg/db/dbtest"
	"github.com/iceymoss/go-press/pkg/db/objects"
	"github.com/iceymoss/go-press/pkg/transaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCommits(t *testing.T) {
	conn := dbtest.New(t)
	m := transaction.NewManager(conn)

	err := m.Execute(context.Background(), nil, func(ctx context.Context) error {
		tx := transaction.GetTransactionOrDB(ctx, m.DB())
		if err := tx.Create(&objects.Category{Name: "World", Slug: "world"}).Error; err != nil {
			return err
		}
		return tx.Create(&objects.Category{Name: "Sports", Slug: "sports"}).Error
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, conn.Model(&objects.Category{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestExecuteRollsBack(t *testing.T) {
	conn := dbtest.New(t)
	m := transaction.NewManager(conn)
	boom := errors.New("boom")

	err := m.Execute(context.Background(), nil, func(ctx context.Context) error {
		tx := transaction.GetTransactionOrDB(ctx, m.DB())
		if err := tx.Create(&objects.Category{Name: "World", Slug: "world"}).Error; err != nil {
			return err
		}
		// 嵌套调用复用同一事务
		return m.Execute(ctx, nil, func(ctx context.Context) error {
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, conn.Model(&objects.Category{}).Count(&n).Error)
	assert.Zero(t, n)
}
