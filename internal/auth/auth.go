// Package auth 请求身份与后台权限判断
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/xerr"

	"golang.org/x/crypto/bcrypt"
)

// Identity 当前请求的调用者，nil 表示未登录
type Identity struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

func FromUser(u *objects.User) *Identity {
	return &Identity{ID: u.ID, Name: u.Name, IsAdmin: u.IsAdmin, IsSuperAdmin: u.IsSuperAdmin}
}

// CanManage 管理员或超级管理员
func (i *Identity) CanManage() bool {
	return i != nil && (i.IsAdmin || i.IsSuperAdmin)
}

// RequireAdmin 未登录 401，非管理员 403
func RequireAdmin(i *Identity) error {
	if i == nil {
		return apperrors.Unauthenticated()
	}
	if !i.CanManage() {
		return apperrors.Forbidden("")
	}
	return nil
}

func RequireSuperAdmin(i *Identity) error {
	if i == nil {
		return apperrors.Unauthenticated()
	}
	if !i.IsSuperAdmin {
		return apperrors.Forbidden("Only super admins can perform this action.")
	}
	return nil
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, i *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, i)
}

func FromContext(ctx context.Context) *Identity {
	i, _ := ctx.Value(ctxKey{}).(*Identity)
	return i
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*objects.User, error)
}

// Authenticator 邮箱 + 密码校验
type Authenticator struct {
	users UserFinder
}

func NewAuthenticator(users UserFinder) *Authenticator {
	return &Authenticator{users: users}
}

func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	u, err := a.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperrors.IsCode(err, xerr.ErrResourceNotFound) {
			return nil, apperrors.New(xerr.ErrInvalidPassword, "These credentials do not match our records.")
		}
		return nil, err
	}
	if err := CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return FromUser(u), nil
}

// NormalizeEmail 邮箱统一小写存储与查找
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword bcrypt 只接受 72 字节以内的密码
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.Field("password", "The password field must not be greater than 72 bytes.")
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperrors.New(xerr.ErrInvalidPassword, "These credentials do not match our records.")
	}
	return err
}
