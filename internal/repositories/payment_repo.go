package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/3Eeeecho/memoryshare/internal/models"
)

type PaymentRepository interface {
	// Record 按 reference 幂等写入，返回 true 表示本次是首次记录
	Record(ctx context.Context, payment *models.Payment) (bool, error)
	FindByEmail(ctx context.Context, email string) ([]models.Payment, error)
	WithTx(tx *gorm.DB) PaymentRepository
}

type paymentRepository struct {
	db *gorm.DB
}

var _ PaymentRepository = (*paymentRepository)(nil)

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	return &paymentRepository{db: tx}
}

func (r *paymentRepository) Record(ctx context.Context, payment *models.Payment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "reference"}}, DoNothing: true}).
		Create(payment)
	if res.Error != nil {
		return false, fmt.Errorf("failed to record payment %s: %w", payment.Reference, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentRepository) FindByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	payments := make([]models.Payment, 0)
	err := r.db.WithContext(ctx).Where("email = ?", email).Order("verified_at DESC").Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
