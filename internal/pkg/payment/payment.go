// Package payment 封装第三方支付处理方 (Paystack) 的发起、查询和 webhook 验签
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"math"
	"strings"
)

// SignatureHeader Paystack 在 webhook 请求头中放置签名的字段
const SignatureHeader = "x-paystack-signature"

// EventChargeSuccess 扣款成功事件
const EventChargeSuccess = "charge.success"

// StatusSuccess 交易查询返回的成功状态
const StatusSuccess = "success"

// MethodMobile 选择移动钱包支付时附带 mobile_money 参数
const MethodMobile = "mobile"

// Processor 支付处理方
type Processor interface {
	Initialize(ctx context.Context, p InitializeParams) (*Authorization, error)
	Verify(ctx context.Context, reference string) (*Transaction, error)
}

// InitializeParams 发起支付参数，Amount 为最小货币单位
type InitializeParams struct {
	Email         string
	Amount        int64
	Currency      string
	Plan          string
	PaymentMethod string
	Phone         string
	Provider      string
}

// Authorization 前端跳转所需的支付句柄
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction 支付方确认后的交易信息
type Transaction struct {
	Reference string
	Status    string
	Amount    int64
	Currency  string
	Channel   string
	Email     string
	Plan      string
}

// Succeeded 交易是否已成功扣款
func (t *Transaction) Succeeded() bool {
	return t != nil && t.Status == StatusSuccess
}

// WebhookEvent webhook 请求体中用到的字段
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string          `json:"reference"`
		Customer  customer        `json:"customer"`
		Metadata  json.RawMessage `json:"metadata"`
	} `json:"data"`
}

type customer struct {
	Email string `json:"email"`
}

// Metadata 发起支付时写入、webhook 和查询接口原样带回的自定义字段
type Metadata struct {
	Plan          string `json:"plan,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Provider      string `json:"provider,omitempty"`
}

// ParseMetadata Paystack 在没有 metadata 时可能返回空字符串或 0，统一按空处理
func ParseMetadata(raw json.RawMessage) Metadata {
	var m Metadata
	if len(raw) == 0 || raw[0] != '{' {
		return m
	}
	_ = json.Unmarshal(raw, &m)
	return m
}

// ToMinorUnits 主货币单位转为最小单位，例如 150.5 GHS -> 15050 pesewas
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Sign 计算请求体的 HMAC-SHA512 十六进制签名
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature 以常量时间比较签名，secret 为空时一律拒绝
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
