package repo

import (
	"context"
	"errors"

	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/paginate"
	"github.com/iceymoss/go-press/pkg/transaction"

	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) conn(ctx context.Context) *gorm.DB {
	return transaction.GetTransactionOrDB(ctx, r.db)
}

func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*objects.User, error) {
	var u objects.User
	err := r.conn(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user")
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*objects.User, error) {
	var u objects.User
	err := r.conn(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user")
	}
	return &u, err
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.conn(ctx).Model(&objects.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// PaginateAdmins 管理员列表，最新的在前
func (r *UserRepo) PaginateAdmins(ctx context.Context, req paginate.Request) (paginate.Page[objects.User], error) {
	q := func() *gorm.DB {
		return r.conn(ctx).Model(&objects.User{}).Where("is_admin = ? OR is_super_admin = ?", true, true)
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return paginate.Page[objects.User]{}, err
	}
	list := make([]objects.User, 0, req.PerPage)
	err := q().Order("created_at DESC").Order("id DESC").
		Offset(req.Offset()).Limit(req.PerPage).Find(&list).Error
	if err != nil {
		return paginate.Page[objects.User]{}, err
	}
	return paginate.New(req, total, list), nil
}

func (r *UserRepo) Create(ctx context.Context, u *objects.User) error {
	return r.conn(ctx).Create(u).Error
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res := r.conn(ctx).Delete(&objects.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}
