package models

import "time"

// 支付记录状态
const (
	PaymentStatusSuccess = "success"
)

// Payment 对应 payments 表，按支付方的 reference 幂等记录已确认的交易
type Payment struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference  string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"`
	Email      string    `gorm:"type:varchar(255);index;not null" json:"email"`
	Plan       string    `gorm:"type:varchar(32);not null;default:''" json:"plan"`
	Amount     int64     `gorm:"not null;default:0" json:"amount"` // 最小货币单位，例如 pesewas
	Currency   string    `gorm:"type:varchar(8);not null;default:''" json:"currency"`
	Channel    string    `gorm:"type:varchar(32);not null;default:''" json:"channel"`
	Status     string    `gorm:"type:varchar(32);not null" json:"status"`
	VerifiedAt time.Time `gorm:"not null" json:"verifiedAt"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定 GORM 使用的表名
func (Payment) TableName() string {
	return "payments"
}

// InitializePaymentRequest 发起支付请求体，Amount 为主货币单位
type InitializePaymentRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency"`
	Plan          string  `json:"plan"`
	PaymentMethod string  `json:"paymentMethod"`
	Phone         string  `json:"phone"`
	Provider      string  `json:"provider"`
}

// VerifyPaymentRequest 前端回跳后主动确认支付
type VerifyPaymentRequest struct {
	Email         string `json:"email"`
	TransactionID string `json:"transactionId"`
}

// PaidEvent 经支付方二次确认后的交易，作为 MarkPaid 的输入
type PaidEvent struct {
	Reference string
	Email     string
	Plan      string
	Amount    int64
	Currency  string
	Channel   string
}
