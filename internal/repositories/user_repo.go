package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	Exists(ctx context.Context, uid string) (bool, error)
	// ReleaseEmail 把邮箱从旧账号上摘下，用于邮箱转移
	ReleaseEmail(ctx context.Context, uid string) error
	// MarkPaymentVerified 返回受影响的行数，邮箱没有对应用户时为 0
	MarkPaymentVerified(ctx context.Context, email string) (int64, error)
	WithTx(tx *gorm.DB) UserRepository
}

type userRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*userRepository)(nil)

// NewUserRepository 创建一个新的 UserRepository 实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("create user %s: %w", user.UID, xerr.ErrEmailAlreadyExists)
		}
		logger.Error("Error creating user", zap.String("uid", user.UID), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	return r.first(ctx, "uid = ?", uid)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrUserNotFound
		}
		logger.Error("Error getting user", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("update user %s: %w", user.UID, xerr.ErrEmailAlreadyExists)
		}
		logger.Error("Error updating user", zap.String("uid", user.UID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) Exists(ctx context.Context, uid string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

func (r *userRepository) ReleaseEmail(ctx context.Context, uid string) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).Update("email", nil).Error
	if err != nil {
		return fmt.Errorf("failed to release email: %w", err)
	}
	return nil
}

func (r *userRepository) MarkPaymentVerified(ctx context.Context, email string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("payment_verified", true)
	if res.Error != nil {
		logger.Error("MarkPaymentVerified: Failed to update user", zap.String("email", email), zap.Error(res.Error))
		return 0, fmt.Errorf("failed to mark payment verified: %w", res.Error)
	}
	return res.RowsAffected, nil
}
