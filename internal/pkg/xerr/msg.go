package xerr

import "errors"

var (
	// 通用错误
	ErrInternalServer = errors.New("internal server error")

	// 客户端请求错误
	ErrInvalidParams       = errors.New("invalid request parameters")
	ErrValidationFailed    = errors.New("validation failed")
	ErrNoFile              = errors.New("no file uploaded")
	ErrFileTooLarge        = errors.New("uploaded file is too large")
	ErrInvalidSlug         = errors.New("url slug may only contain letters, numbers and hyphens")
	ErrPaymentUnsuccessful = errors.New("payment was not successful")

	// 认证与授权错误
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenInvalid     = errors.New("token is invalid or expired")
	ErrSignatureInvalid = errors.New("invalid webhook signature")

	// 权限错误
	ErrForbidden        = errors.New("forbidden")
	ErrPermissionDenied = errors.New("you do not own this space")
	ErrCountExceeded    = errors.New("media count limit reached for this plan")
	ErrStorageExceeded  = errors.New("storage limit exceeded for this plan")
	ErrSpacePrivate     = errors.New("this space is private")

	// 资源未找到错误
	ErrUserNotFound  = errors.New("user not found")
	ErrSpaceNotFound = errors.New("space not found")
	ErrMediaNotFound = errors.New("media not found")

	// 业务逻辑冲突
	ErrSlugTaken          = errors.New("url slug is already taken")
	ErrEmailAlreadyExists = errors.New("email is already registered to another account")

	// 限流或锁等待超时
	ErrTooManyRequests = errors.New("too many requests, please retry shortly")

	// 数据库与外部服务错误
	ErrDatabaseError  = errors.New("database operation failed")
	ErrStorageError   = errors.New("storage service operation failed")
	ErrPaymentGateway = errors.New("payment gateway request failed")
)
