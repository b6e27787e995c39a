package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/iceymoss/go-press/internal/auth"
	"github.com/iceymoss/go-press/internal/repo"
	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"
	"github.com/iceymoss/go-press/pkg/paginate"
	"github.com/iceymoss/go-press/pkg/transaction"
	"github.com/iceymoss/go-press/pkg/xerr"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserInput struct {
	Name                 string `json:"name" form:"name" validate:"required,max=255"`
	Email                string `json:"email" form:"email" validate:"required,email,max=255"`
	Password             string `json:"password" form:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"eqfield=Password"`
}

type UserService struct {
	users    *repo.UserRepo
	articles *repo.ArticleRepo
	tx       *transaction.Manager
}

func NewUserService(users *repo.UserRepo, articles *repo.ArticleRepo, tx *transaction.Manager) *UserService {
	return &UserService{users: users, articles: articles, tx: tx}
}

func (s *UserService) Index(ctx context.Context, id *auth.Identity, page int, path string, query url.Values) (paginate.Page[objects.User], error) {
	if err := auth.RequireAdmin(id); err != nil {
		return paginate.Page[objects.User]{}, err
	}
	return s.users.PaginateAdmins(ctx, paginate.NewRequest(page, AdminPerPage, path, query))
}

// Create 新建管理员账号
func (s *UserService) Create(ctx context.Context, id *auth.Identity, in UserInput) (*objects.User, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = auth.NormalizeEmail(in.Email)

	verr := apperrors.NewValidation()
	if err := checkStruct(verr, &in); err != nil {
		return nil, err
	}
	if _, bad := verr.Fields["email"]; !bad && in.Email != "" {
		exists, err := s.users.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			verr.Add("email", "The email has already been taken.")
		}
	}
	if verr.HasAny() {
		return nil, verr
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &objects.User{Name: in.Name, Email: in.Email, PasswordHash: hash, IsAdmin: true}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发创建时唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Field("email", "The email has already been taken.")
		}
		return nil, err
	}
	logger.Info("admin user created", zap.Uint64("id", u.ID), zap.Uint64("by", id.ID))
	return u, nil
}

// Delete 仅超级管理员可用，不能删除自己；其文章保留但不再关联作者
func (s *UserService) Delete(ctx context.Context, id *auth.Identity, userID uint64) error {
	if err := auth.RequireSuperAdmin(id); err != nil {
		return err
	}
	if id.ID == userID {
		return apperrors.New(xerr.ErrSelfDeletion, "You cannot delete your own account.")
	}
	err := s.tx.Execute(ctx, nil, func(ctx context.Context) error {
		if _, err := s.users.FindByID(ctx, userID); err != nil {
			return err
		}
		if err := s.articles.DetachAuthor(ctx, userID); err != nil {
			return err
		}
		return s.users.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}
	logger.Info("admin user deleted", zap.Uint64("id", userID), zap.Uint64("by", id.ID))
	return nil
}
