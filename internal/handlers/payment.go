package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/payment"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/services/account"
)

// InitializePayment 发起 Paystack 支付
// @Summary 发起支付
// @Description amount 为主货币单位。paymentMethod 为 mobile 时需要 phone 和 provider
// @Tags 支付
// @Accept json
// @Produce json
// @Param request body models.InitializePaymentRequest true "支付参数"
// @Success 200 {object} xerr.Response{data=payment.Authorization} "返回跳转地址和 reference"
// @Failure 400 {object} xerr.Response "参数错误"
// @Failure 502 {object} xerr.Response "支付网关错误"
// @Router /api/spaces/paystack/initialize [post]
func InitializePayment(paymentService account.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.InitializePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			xerr.ErrorWithReason(c, http.StatusBadRequest, xerr.InvalidParamsCode, "Invalid request body", err.Error())
			return
		}

		auth, err := paymentService.Initialize(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err, "Failed to initialize payment")
			return
		}
		xerr.Success(c, http.StatusOK, "Payment initialized", auth)
	}
}

// maxWebhookBody webhook 请求体上限，Paystack 的事件通常只有几 KB
const maxWebhookBody = 512 << 10

// PaystackWebhook 接收 Paystack 事件通知
// @Summary Paystack webhook
// @Description 使用原始请求体校验 x-paystack-signature。返回非 2xx 时 Paystack 会重试
// @Tags 支付
// @Accept json
// @Produce json
// @Success 200 {object} xerr.Response "已处理"
// @Failure 401 {object} xerr.Response "签名无效"
// @Failure 413 {object} xerr.Response "请求体过大"
// @Router /api/spaces/paystack/webhook [post]
func PaystackWebhook(paymentService account.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
		body, err := c.GetRawData()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			xerr.Error(c, http.StatusRequestEntityTooLarge, xerr.InvalidParamsCode, "Request body too large")
			return
		}
		if err != nil {
			xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "Failed to read request body")
			return
		}

		if err := paymentService.HandleWebhook(c.Request.Context(), body, c.GetHeader(payment.SignatureHeader)); err != nil {
			writeError(c, err, "Failed to process webhook")
			return
		}
		xerr.Success(c, http.StatusOK, "Webhook received", nil)
	}
}

// VerifyPayment 前端回跳后确认支付
// @Summary 确认支付
// @Tags 支付
// @Accept json
// @Produce json
// @Param request body models.VerifyPaymentRequest true "邮箱和交易 reference"
// @Success 200 {object} xerr.Response{data=models.User} "支付已确认"
// @Failure 400 {object} xerr.Response "参数缺失或交易未成功"
// @Failure 403 {object} xerr.Response "交易邮箱不一致"
// @Failure 404 {object} xerr.Response "用户不存在"
// @Failure 502 {object} xerr.Response "支付网关错误"
// @Router /api/spaces/verify-payment [post]
func VerifyPayment(paymentService account.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			xerr.ErrorWithReason(c, http.StatusBadRequest, xerr.InvalidParamsCode, "Invalid request body", err.Error())
			return
		}

		user, err := paymentService.VerifyPayment(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err, "Failed to verify payment")
			return
		}
		xerr.Success(c, http.StatusOK, "Payment verified", user)
	}
}
