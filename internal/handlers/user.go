package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/utils"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/services/account"
)

type UserHandler struct {
	userService account.UserService
}

func NewUserHandler(userService account.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UserExists 查询 uid 是否已注册
// @Summary 用户是否存在
// @Tags User
// @Produce json
// @Param uid path string true "用户 uid"
// @Success 200 {object} xerr.Response{data=models.UserExistsResponse} "查询成功"
// @Failure 500 {object} xerr.Response "内部服务器错误"
// @Router /api/user/{uid}/exists [get]
func (h *UserHandler) UserExists(c *gin.Context) {
	exists, err := h.userService.Exists(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeError(c, err, "Failed to check user")
		return
	}
	xerr.Success(c, http.StatusOK, "OK", models.UserExistsResponse{Exists: exists})
}

// SaveUser 注册或更新当前用户资料
// @Summary 保存用户资料
// @Description uid 必须与 token 一致。邮箱已被其他账号使用时返回 409
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpsertUserRequest true "用户资料"
// @Success 200 {object} xerr.Response{data=models.User} "保存成功"
// @Failure 400 {object} xerr.Response "参数错误"
// @Failure 401 {object} xerr.Response "未授权"
// @Failure 403 {object} xerr.Response "uid 与 token 不一致"
// @Failure 409 {object} xerr.Response "邮箱冲突"
// @Router /api/user [post]
func (h *UserHandler) SaveUser(c *gin.Context) {
	currentUserID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req models.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.ErrorWithReason(c, http.StatusBadRequest, xerr.InvalidParamsCode, "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.SaveUser(c.Request.Context(), currentUserID, &req)
	if err != nil {
		writeError(c, err, "Failed to save user")
		return
	}
	xerr.Success(c, http.StatusOK, "User saved successfully", user)
}
