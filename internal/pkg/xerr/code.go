package xerr

// 定义了统一的业务错误码
const (
	SuccessCode = 20000 // 通用成功码

	// --- 客户端请求错误系列 (400xx) ---
	InvalidParamsCode       = 40000 // 无效的请求参数
	ValidationFailedCode    = 40001 // 参数验证失败
	NoFileCode              = 40002 // 上传请求未携带文件
	FileTooLargeCode        = 40003 // 文件过大
	InvalidSlugCode         = 40004 // slug 不合法
	PaymentUnsuccessfulCode = 40005 // 支付方确认交易未成功

	// --- 认证与授权错误系列 (401xx) ---
	UnauthorizedCode     = 40100 // 通用未授权
	TokenInvalidCode     = 40101 // Token 无效或过期
	SignatureInvalidCode = 40102 // webhook 签名不匹配

	// --- 权限错误系列 (403xx) ---
	ForbiddenCode        = 40300 // 通用无权限
	PermissionDeniedCode = 40301 // 非空间所有者
	CountExceededCode    = 40302 // 超出套餐文件数量
	StorageExceededCode  = 40303 // 超出套餐存储容量
	SpacePrivateCode     = 40304 // 空间为私密状态

	// --- 资源未找到错误系列 (404xx) ---
	NotFoundCode      = 40400 // 通用资源未找到
	UserNotFoundCode  = 40401 // 用户不存在
	SpaceNotFoundCode = 40402 // 空间不存在
	MediaNotFoundCode = 40403 // 媒体不存在

	// --- 业务逻辑冲突系列 (409xx) ---
	SlugTakenCode          = 40900 // slug 已被占用
	EmailAlreadyExistsCode = 40901 // 邮箱已被其他账号使用

	TooManyRequestsCode = 42900 // 触发限流

	// --- 服务器内部错误系列 (500xx) ---
	InternalServerErrorCode = 50000 // 服务器内部通用错误
	DatabaseErrorCode       = 50001 // 数据库操作失败
	StorageErrorCode        = 50002 // 存储服务操作失败（如 Cloudinary、MinIO）
	PaymentGatewayErrorCode = 50003 // 支付网关调用失败
)
