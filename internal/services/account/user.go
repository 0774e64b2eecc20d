package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/repositories"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
)

type UserService interface {
	Exists(ctx context.Context, uid string) (bool, error)
	// SaveUser 创建或更新当前登录用户的资料，authUID 为 token 中的 subject
	SaveUser(ctx context.Context, authUID string, req *models.UpsertUserRequest) (*models.User, error)
}

type UserPolicy struct {
	// AllowEmailReassignment 为 true 且请求带 completeRegistration 时，
	// 邮箱可以从另一个 uid 转移到当前 uid
	AllowEmailReassignment bool
}

type userService struct {
	tm          gallery.TransactionManager
	userRepo    repositories.UserRepository
	paymentRepo repositories.PaymentRepository
	policy      UserPolicy
}

func NewUserService(
	tm gallery.TransactionManager,
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentRepository,
	policy UserPolicy,
) UserService {
	return &userService{tm: tm, userRepo: userRepo, paymentRepo: paymentRepo, policy: policy}
}

func (s *userService) Exists(ctx context.Context, uid string) (bool, error) {
	if strings.TrimSpace(uid) == "" {
		return false, fmt.Errorf("user service: %w", xerr.ErrInvalidParams)
	}
	ok, err := s.userRepo.Exists(ctx, uid)
	if err != nil {
		return false, fmt.Errorf("user service: %w: %w", xerr.ErrDatabaseError, err)
	}
	return ok, nil
}

func (s *userService) SaveUser(ctx context.Context, authUID string, req *models.UpsertUserRequest) (*models.User, error) {
	if req.UID != authUID {
		logger.Warn("SaveUser: uid 与 token 不一致", zap.String("authUID", authUID), zap.String("uid", req.UID))
		return nil, fmt.Errorf("user service: %w", xerr.ErrPermissionDenied)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("user service: %w", xerr.ErrValidationFailed)
	}

	var saved *models.User
	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		holder, err := users.GetUserByEmail(ctx, email)
		switch {
		case errors.Is(err, xerr.ErrUserNotFound):
		case err != nil:
			return fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err)
		case holder.UID != req.UID:
			if !s.policy.AllowEmailReassignment || !req.CompleteRegistration {
				return xerr.ErrEmailAlreadyExists
			}
			if err := users.ReleaseEmail(ctx, holder.UID); err != nil {
				return fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err)
			}
			logger.Warn("SaveUser: 邮箱从旧账号转移到新账号",
				zap.String("email", email),
				zap.String("fromUID", holder.UID),
				zap.String("toUID", req.UID))
		}

		user, err := users.GetUserByUID(ctx, req.UID)
		if errors.Is(err, xerr.ErrUserNotFound) {
			user = &models.User{UID: req.UID, Email: &email, DisplayName: strings.TrimSpace(req.DisplayName)}
			if err := users.CreateUser(ctx, user); err != nil {
				return err
			}
			saved = user
			return s.applyRecordedPayments(ctx, tx, user)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err)
		}

		user.Email = &email
		if name := strings.TrimSpace(req.DisplayName); name != "" {
			user.DisplayName = name
		}
		if err := users.UpdateUser(ctx, user); err != nil {
			return err
		}
		saved = user
		return s.applyRecordedPayments(ctx, tx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("user service: %w", err)
	}
	logger.Info("SaveUser: 用户资料已保存", zap.String("uid", saved.UID))
	return saved, nil
}

// applyRecordedPayments 支付可能先于注册完成，邮箱已有确认过的交易时补上 payment_verified
func (s *userService) applyRecordedPayments(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if user.PaymentVerified || user.Email == nil {
		return nil
	}
	payments, err := s.paymentRepo.WithTx(tx).FindByEmail(ctx, *user.Email)
	if err != nil {
		return fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err)
	}
	if len(payments) == 0 {
		return nil
	}
	if _, err := s.userRepo.WithTx(tx).MarkPaymentVerified(ctx, *user.Email); err != nil {
		return fmt.Errorf("%w: %w", xerr.ErrDatabaseError, err)
	}
	user.PaymentVerified = true
	logger.Info("SaveUser: 关联注册前的支付记录",
		zap.String("uid", user.UID),
		zap.String("reference", payments[0].Reference))
	return nil
}
