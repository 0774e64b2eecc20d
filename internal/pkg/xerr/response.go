package xerr

import (
	"github.com/gin-gonic/gin"
)

// Response 是通用 JSON 响应结构
// 失败时 Message 是给用户看的描述，Error 是机器可识别的原因或上游错误
type Response struct {
	Code    int    `json:"code"`            // 业务状态码
	Message string `json:"message"`         // 消息
	Error   string `json:"error,omitempty"` // 失败原因
	Data    any    `json:"data,omitempty"`  // 响应数据
}

// JSONResponse 发送标准 JSON 响应
func JSONResponse(c *gin.Context, httpStatus int, code int, message string, data any) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success 成功响应
func Success(c *gin.Context, httpStatus int, message string, data any) {
	JSONResponse(c, httpStatus, SuccessCode, message, data)
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	JSONResponse(c, httpStatus, code, message, nil)
}

// ErrorWithReason 错误响应，附带 error 字段
func ErrorWithReason(c *gin.Context, httpStatus int, code int, message, reason string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Error:   reason,
	})
}

// AbortWithError 终止请求并发送错误响应
func AbortWithError(c *gin.Context, httpStatus int, code int, message string) {
	Error(c, httpStatus, code, message)
	c.Abort() // 终止后续的 HandlerFunc
}
