package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/iceymoss/go-press/internal/repo"
	"github.com/iceymoss/go-press/pkg/db/dbtest"
	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAdmin(t *testing.T) {
	assert.True(t, apperrors.IsCode(RequireAdmin(nil), xerr.ErrUnauthenticated))
	assert.True(t, apperrors.IsCode(RequireAdmin(&Identity{ID: 1}), xerr.ErrForbidden))
	assert.NoError(t, RequireAdmin(&Identity{ID: 1, IsAdmin: true}))
	assert.NoError(t, RequireAdmin(&Identity{ID: 1, IsSuperAdmin: true}))

	assert.True(t, apperrors.IsCode(RequireSuperAdmin(&Identity{ID: 1, IsAdmin: true}), xerr.ErrForbidden))
	assert.NoError(t, RequireSuperAdmin(&Identity{ID: 1, IsSuperAdmin: true}))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	id := &Identity{ID: 3, IsAdmin: true}
	assert.Same(t, id, FromContext(WithIdentity(ctx, id)))
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("ñ", 40))
	fields := apperrors.From(err).Fields
	assert.Equal(t, "The password field must not be greater than 72 bytes.", fields["password"])
	assert.True(t, apperrors.IsCode(err, xerr.ErrValidation))
}

func TestAuthenticate(t *testing.T) {
	conn := dbtest.New(t)
	hash, err := HashPassword("secret-pass")
	require.NoError(t, err)
	require.NoError(t, conn.Create(&objects.User{Name: "Ana", Email: "ana@example.com", PasswordHash: hash, IsAdmin: true}).Error)

	a := NewAuthenticator(repo.NewUserRepo(conn))
	ctx := context.Background()

	id, err := a.Authenticate(ctx, "ana@example.com", "secret-pass")
	require.NoError(t, err)
	assert.True(t, id.CanManage())
	assert.Equal(t, "Ana", id.Name)

	// 邮箱大小写与首尾空白不影响登录
	id, err = a.Authenticate(ctx, " Ana@Example.COM ", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Ana", id.Name)

	_, err = a.Authenticate(ctx, "ana@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, xerr.ErrInvalidPassword))

	_, err = a.Authenticate(ctx, "nobody@example.com", "secret-pass")
	assert.True(t, apperrors.IsCode(err, xerr.ErrInvalidPassword))
}
