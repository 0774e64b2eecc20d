package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/metrics"
	"github.com/3Eeeecho/memoryshare/internal/pkg/payment"
	"github.com/3Eeeecho/memoryshare/internal/pkg/quota"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/repositories"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
)

type PaymentService interface {
	Initialize(ctx context.Context, req *models.InitializePaymentRequest) (*payment.Authorization, error)
	// HandleWebhook 验签后处理事件。非扣款成功事件直接忽略
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.User, error)
	// MarkPaid 记录已确认的交易并升级账号，按 reference 幂等
	MarkPaid(ctx context.Context, ev models.PaidEvent) error
}

type paymentService struct {
	tm          gallery.TransactionManager
	processor   payment.Processor
	userRepo    repositories.UserRepository
	spaceRepo   repositories.SpaceRepository
	paymentRepo repositories.PaymentRepository
	secretKey   string
	pricing     quota.Pricing
	now         func() time.Time
}

func NewPaymentService(
	tm gallery.TransactionManager,
	processor payment.Processor,
	userRepo repositories.UserRepository,
	spaceRepo repositories.SpaceRepository,
	paymentRepo repositories.PaymentRepository,
	secretKey string,
	pricing quota.Pricing,
) PaymentService {
	return &paymentService{
		tm:          tm,
		processor:   processor,
		userRepo:    userRepo,
		spaceRepo:   spaceRepo,
		paymentRepo: paymentRepo,
		secretKey:   secretKey,
		pricing:     pricing,
		now:         time.Now,
	}
}

func (s *paymentService) Initialize(ctx context.Context, req *models.InitializePaymentRequest) (*payment.Authorization, error) {
	if req.Amount <= 0 || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("payment service: %w", xerr.ErrValidationFailed)
	}
	if req.Plan != "" && !quota.IsKnown(req.Plan) {
		return nil, fmt.Errorf("payment service: unknown plan %q: %w", req.Plan, xerr.ErrValidationFailed)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.pricing.Currency
	}
	amount := payment.ToMinorUnits(req.Amount)
	if quota.IsPaid(req.Plan) {
		minimum, ok := s.pricing.MinimumFor(req.Plan)
		if !ok || currency != s.pricing.Currency || amount < minimum {
			logger.Warn("Initialize: 金额不足以购买套餐",
				zap.String("plan", req.Plan),
				zap.Int64("amount", amount),
				zap.String("currency", currency),
				zap.Int64("minimum", minimum))
			return nil, fmt.Errorf("payment service: plan %q requires at least %d %s: %w",
				req.Plan, minimum, s.pricing.Currency, xerr.ErrValidationFailed)
		}
	}

	auth, err := s.processor.Initialize(ctx, payment.InitializeParams{
		Email:         strings.TrimSpace(req.Email),
		Amount:        amount,
		Currency:      currency,
		Plan:          string(quota.Normalize(req.Plan)),
		PaymentMethod: req.PaymentMethod,
		Phone:         req.Phone,
		Provider:      req.Provider,
	})
	if err != nil {
		logger.Error("Initialize: 发起支付失败", zap.String("email", req.Email), zap.Error(err))
		return nil, fmt.Errorf("payment service: %w: %w", xerr.ErrPaymentGateway, err)
	}
	metrics.PaymentEvents.WithLabelValues("initialized").Inc()
	logger.Info("Initialize: 支付已发起", zap.String("reference", auth.Reference), zap.String("plan", req.Plan))
	return auth, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !payment.VerifySignature(s.secretKey, body, signature) {
		metrics.PaymentEvents.WithLabelValues("invalid_signature").Inc()
		logger.Warn("HandleWebhook: 签名校验失败")
		return fmt.Errorf("payment service: %w", xerr.ErrSignatureInvalid)
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("payment service: %w: %w", xerr.ErrInvalidParams, err)
	}
	if event.Event != payment.EventChargeSuccess {
		metrics.PaymentEvents.WithLabelValues("ignored").Inc()
		logger.Info("HandleWebhook: 忽略事件", zap.String("event", event.Event))
		return nil
	}

	// webhook 内容只作为提示，以支付方查询结果为准
	tx, err := s.processor.Verify(ctx, event.Data.Reference)
	if err != nil {
		logger.Error("HandleWebhook: 查询交易失败", zap.String("reference", event.Data.Reference), zap.Error(err))
		return fmt.Errorf("payment service: %w: %w", xerr.ErrPaymentGateway, err)
	}
	if !tx.Succeeded() {
		metrics.PaymentEvents.WithLabelValues("unsuccessful").Inc()
		logger.Warn("HandleWebhook: 交易未成功", zap.String("reference", tx.Reference), zap.String("status", tx.Status))
		return nil
	}

	email := tx.Email
	if email == "" {
		email = event.Data.Customer.Email
	}
	plan := tx.Plan
	if plan == "" {
		plan = payment.ParseMetadata(event.Data.Metadata).Plan
	}
	return s.MarkPaid(ctx, models.PaidEvent{
		Reference: tx.Reference,
		Email:     email,
		Plan:      plan,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Channel:   tx.Channel,
	})
}

func (s *paymentService) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	reference := strings.TrimSpace(req.TransactionID)
	if email == "" || reference == "" {
		return nil, fmt.Errorf("payment service: %w", xerr.ErrInvalidParams)
	}
	if _, err := s.userRepo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, xerr.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("payment service: %w: %w", xerr.ErrDatabaseError, err)
	}

	tx, err := s.processor.Verify(ctx, reference)
	if err != nil {
		logger.Error("VerifyPayment: 查询交易失败", zap.String("reference", reference), zap.Error(err))
		return nil, fmt.Errorf("payment service: %w: %w", xerr.ErrPaymentGateway, err)
	}
	if !tx.Succeeded() {
		return nil, fmt.Errorf("payment service: status %q: %w", tx.Status, xerr.ErrPaymentUnsuccessful)
	}
	if tx.Email != "" && !strings.EqualFold(tx.Email, email) {
		logger.Warn("VerifyPayment: 交易邮箱与请求不一致", zap.String("reference", reference), zap.String("email", email), zap.String("txEmail", tx.Email))
		return nil, fmt.Errorf("payment service: %w", xerr.ErrPermissionDenied)
	}

	if err := s.MarkPaid(ctx, models.PaidEvent{
		Reference: tx.Reference,
		Email:     email,
		Plan:      tx.Plan,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Channel:   tx.Channel,
	}); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("payment service: %w: %w", xerr.ErrDatabaseError, err)
	}
	return user, nil
}

func (s *paymentService) MarkPaid(ctx context.Context, ev models.PaidEvent) error {
	email := strings.ToLower(strings.TrimSpace(ev.Email))
	if ev.Reference == "" || email == "" {
		return fmt.Errorf("payment service: %w", xerr.ErrInvalidParams)
	}

	covered := s.pricing.Covers(ev.Plan, ev.Amount, ev.Currency)
	var upgraded []models.Space
	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		first, err := s.paymentRepo.WithTx(tx).Record(ctx, &models.Payment{
			Reference:  ev.Reference,
			Email:      email,
			Plan:       ev.Plan,
			Amount:     ev.Amount,
			Currency:   ev.Currency,
			Channel:    ev.Channel,
			Status:     models.PaymentStatusSuccess,
			VerifiedAt: s.now().UTC(),
		})
		if err != nil {
			return err
		}
		if !first {
			// webhook 和前端确认可能先后到达同一笔交易。
			// 下面的更新都是幂等的，第一次到达时用户或空间可能还不存在，所以照常执行
			metrics.PaymentEvents.WithLabelValues("duplicate").Inc()
		}

		users := s.userRepo.WithTx(tx)
		if _, err := users.MarkPaymentVerified(ctx, email); err != nil {
			return err
		}
		if !quota.IsPaid(ev.Plan) {
			return nil
		}
		if !covered {
			metrics.PaymentEvents.WithLabelValues("underpaid").Inc()
			logger.Warn("MarkPaid: 支付金额不足，不升级套餐",
				zap.String("reference", ev.Reference),
				zap.String("plan", ev.Plan),
				zap.Int64("amount", ev.Amount),
				zap.String("currency", ev.Currency))
			return nil
		}
		user, err := users.GetUserByEmail(ctx, email)
		if errors.Is(err, xerr.ErrUserNotFound) {
			logger.Warn("MarkPaid: 支付邮箱没有对应用户，跳过套餐升级", zap.String("email", email), zap.String("reference", ev.Reference))
			return nil
		}
		if err != nil {
			return err
		}
		plan := string(quota.Normalize(ev.Plan))
		upgraded, err = s.spaceRepo.WithTx(tx).UpgradePlanByUserID(ctx, user.UID, plan, quota.Below(plan))
		return err
	})
	if err != nil {
		logger.Error("MarkPaid: 写入支付结果失败", zap.String("reference", ev.Reference), zap.Error(err))
		return fmt.Errorf("payment service: %w: %w", xerr.ErrDatabaseError, err)
	}

	s.spaceRepo.Evict(ctx, upgraded...)
	metrics.PaymentEvents.WithLabelValues("paid").Inc()
	logger.Info("MarkPaid: 支付已确认",
		zap.String("reference", ev.Reference),
		zap.String("email", email),
		zap.String("plan", ev.Plan),
		zap.Int("upgradedSpaces", len(upgraded)))
	return nil
}
