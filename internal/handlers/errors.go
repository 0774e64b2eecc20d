package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/payment"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
)

// errorRule 把服务层的哨兵错误映射为 HTTP 状态码和业务码，按顺序匹配
type errorRule struct {
	target error
	status int
	code   int
}

var errorRules = []errorRule{
	{xerr.ErrFileTooLarge, http.StatusRequestEntityTooLarge, xerr.FileTooLargeCode},
	{xerr.ErrNoFile, http.StatusBadRequest, xerr.NoFileCode},
	{xerr.ErrInvalidSlug, http.StatusBadRequest, xerr.InvalidSlugCode},
	{xerr.ErrValidationFailed, http.StatusBadRequest, xerr.ValidationFailedCode},
	{xerr.ErrInvalidParams, http.StatusBadRequest, xerr.InvalidParamsCode},
	{xerr.ErrPaymentUnsuccessful, http.StatusBadRequest, xerr.PaymentUnsuccessfulCode},

	{xerr.ErrSignatureInvalid, http.StatusUnauthorized, xerr.SignatureInvalidCode},
	{xerr.ErrTokenInvalid, http.StatusUnauthorized, xerr.TokenInvalidCode},
	{xerr.ErrUnauthorized, http.StatusUnauthorized, xerr.UnauthorizedCode},

	{xerr.ErrCountExceeded, http.StatusForbidden, xerr.CountExceededCode},
	{xerr.ErrStorageExceeded, http.StatusForbidden, xerr.StorageExceededCode},
	{xerr.ErrSpacePrivate, http.StatusForbidden, xerr.SpacePrivateCode},
	{xerr.ErrPermissionDenied, http.StatusForbidden, xerr.PermissionDeniedCode},
	{xerr.ErrForbidden, http.StatusForbidden, xerr.ForbiddenCode},

	{xerr.ErrSpaceNotFound, http.StatusNotFound, xerr.SpaceNotFoundCode},
	{xerr.ErrMediaNotFound, http.StatusNotFound, xerr.MediaNotFoundCode},
	{xerr.ErrUserNotFound, http.StatusNotFound, xerr.UserNotFoundCode},

	{xerr.ErrSlugTaken, http.StatusConflict, xerr.SlugTakenCode},
	{xerr.ErrEmailAlreadyExists, http.StatusConflict, xerr.EmailAlreadyExistsCode},

	{xerr.ErrTooManyRequests, http.StatusTooManyRequests, xerr.TooManyRequestsCode},
}

// writeError 统一输出错误响应。客户端错误返回哨兵错误的描述，
// 上游错误把上游的原始信息放进 error 字段，其余 5xx 只返回 fallback
func writeError(c *gin.Context, err error, fallback string) {
	var admission *gallery.AdmissionError
	reason := ""
	if errors.As(err, &admission) {
		reason = string(admission.Reason)
	}

	var slugTaken *gallery.SlugTakenError
	if errors.As(err, &slugTaken) {
		c.JSON(http.StatusConflict, xerr.Response{
			Code:    xerr.SlugTakenCode,
			Message: xerr.ErrSlugTaken.Error(),
			Error:   "slug-taken",
			Data:    gin.H{"suggestedSlug": slugTaken.SuggestedSlug},
		})
		return
	}

	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			xerr.ErrorWithReason(c, rule.status, rule.code, rule.target.Error(), reason)
			return
		}
	}

	var upstream *payment.UpstreamError
	switch {
	case errors.As(err, &upstream) && upstream.StatusCode >= 400 && upstream.StatusCode < 500:
		// 支付方拒绝了请求参数，原样透传
		xerr.ErrorWithReason(c, http.StatusBadRequest, xerr.InvalidParamsCode, upstream.Message, "payment-rejected")
	case errors.Is(err, xerr.ErrPaymentGateway):
		logger.Error(fallback, zap.Error(err))
		xerr.ErrorWithReason(c, http.StatusBadGateway, xerr.PaymentGatewayErrorCode, fallback, err.Error())
	case errors.Is(err, xerr.ErrStorageError):
		logger.Error(fallback, zap.Error(err))
		if reason == "" {
			reason = err.Error()
		}
		xerr.ErrorWithReason(c, http.StatusInternalServerError, xerr.StorageErrorCode, fallback+": "+upstreamText(err), reason)
	case errors.Is(err, xerr.ErrDatabaseError):
		logger.Error(fallback, zap.Error(err))
		xerr.ErrorWithReason(c, http.StatusInternalServerError, xerr.DatabaseErrorCode, fallback, reason)
	default:
		logger.Error(fallback, zap.Error(err))
		xerr.ErrorWithReason(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, fallback, reason)
	}
}

// upstreamText 取出被 "%w: %w" 包装的最后一个错误的文本
func upstreamText(err error) string {
	for {
		joined, ok := err.(interface{ Unwrap() []error })
		if ok {
			errs := joined.Unwrap()
			if len(errs) == 0 {
				break
			}
			err = errs[len(errs)-1]
			continue
		}
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return err.Error()
}
