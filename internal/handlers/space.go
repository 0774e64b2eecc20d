package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/utils"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
)

// CreateSpace 创建活动空间
// @Summary 创建空间
// @Description 为当前登录用户创建空间。urlSlug 为空时由姓名首字母和活动年份生成，冲突时自动追加数字
// @Tags 空间
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateSpaceRequest true "空间信息"
// @Success 201 {object} xerr.Response{data=models.Space} "创建成功"
// @Failure 400 {object} xerr.Response "参数错误"
// @Failure 401 {object} xerr.Response "未授权"
// @Failure 409 {object} xerr.Response "slug 已被占用，data 中带 suggestedSlug"
// @Failure 500 {object} xerr.Response "内部服务器错误"
// @Router /api/spaces [post]
func CreateSpace(spaceService gallery.SpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentUserID, ok := utils.GetUserIDFromContext(c)
		if !ok {
			return
		}

		var req models.CreateSpaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			xerr.ErrorWithReason(c, http.StatusBadRequest, xerr.InvalidParamsCode, "Invalid request body", err.Error())
			return
		}
		// 所有者以 token 为准，忽略请求体中的 userId
		req.UserID = currentUserID

		space, err := spaceService.CreateSpace(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err, "Failed to create space")
			return
		}
		logger.Info("CreateSpace: 空间创建成功", zap.String("spaceID", space.ID), zap.String("slug", space.URLSlug))
		xerr.Success(c, http.StatusCreated, "Space created successfully", space)
	}
}

// GetSpaceIDByUser 查询用户的空间 id
// @Summary 按用户查询空间 id
// @Tags 空间
// @Produce json
// @Param userId path string true "用户 uid"
// @Success 200 {object} xerr.Response "成功，data 为 {spaceId}"
// @Failure 404 {object} xerr.Response "空间不存在"
// @Router /api/spaces/user/{userId}/spaceId [get]
func GetSpaceIDByUser(spaceService gallery.SpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		space, err := spaceService.GetSpaceByUserID(c.Request.Context(), c.Param("userId"))
		if err != nil {
			writeError(c, err, "Failed to get space")
			return
		}
		xerr.Success(c, http.StatusOK, "Space found", gin.H{"spaceId": space.ID})
	}
}

// GetSpaceBySlug 按 slug 查询空间
// @Summary 按 slug 查询空间
// @Tags 空间
// @Produce json
// @Param urlSlug path string true "空间 slug"
// @Success 200 {object} xerr.Response{data=models.Space} "成功"
// @Failure 404 {object} xerr.Response "空间不存在"
// @Router /api/spaces/slug/{urlSlug} [get]
func GetSpaceBySlug(spaceService gallery.SpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		space, err := spaceService.GetSpaceBySlug(c.Request.Context(), c.Param("urlSlug"))
		if err != nil {
			writeError(c, err, "Failed to get space")
			return
		}
		xerr.Success(c, http.StatusOK, "Space found", space)
	}
}

// GetSpaceByID 按 id 查询空间
// @Summary 按 id 查询空间
// @Tags 空间
// @Produce json
// @Param spaceId path string true "空间 id"
// @Success 200 {object} xerr.Response{data=models.Space} "成功"
// @Failure 404 {object} xerr.Response "空间不存在"
// @Router /api/spaces/id/{spaceId} [get]
func GetSpaceByID(spaceService gallery.SpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		space, err := spaceService.GetSpaceByID(c.Request.Context(), c.Param("spaceId"))
		if err != nil {
			writeError(c, err, "Failed to get space")
			return
		}
		xerr.Success(c, http.StatusOK, "Space found", space)
	}
}

// UpdateSpaceMode 修改空间公开状态
// @Summary 修改空间公开/私密
// @Tags 空间
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param spaceId path string true "空间 id"
// @Param request body models.UpdateVisibilityRequest true "公开状态"
// @Success 200 {object} xerr.Response{data=models.Space} "修改成功"
// @Failure 400 {object} xerr.Response "参数错误"
// @Failure 403 {object} xerr.Response "不是空间所有者"
// @Failure 404 {object} xerr.Response "空间不存在"
// @Router /api/spaces/{spaceId}/mode [patch]
func UpdateSpaceMode(spaceService gallery.SpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentUserID, ok := utils.GetUserIDFromContext(c)
		if !ok {
			return
		}

		var req models.UpdateVisibilityRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.IsPublic == nil {
			xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "isPublic is required")
			return
		}

		space, err := spaceService.UpdateVisibility(c.Request.Context(), currentUserID, c.Param("spaceId"), *req.IsPublic)
		if err != nil {
			writeError(c, err, "Failed to update space mode")
			return
		}
		xerr.Success(c, http.StatusOK, "Space mode updated", space)
	}
}

// CheckSlug 检查 slug 是否可用
// @Summary 检查 slug 可用性
// @Tags 空间
// @Produce json
// @Param urlSlug path string true "待检查的 slug"
// @Success 200 {object} xerr.Response{data=models.SlugCheckResult} "检查结果"
// @Failure 400 {object} xerr.Response "slug 不合法"
// @Router /api/spaces/check-slug/{urlSlug} [get]
func CheckSlug(spaceService gallery.SpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := spaceService.CheckSlug(c.Request.Context(), c.Param("urlSlug"))
		if err != nil {
			writeError(c, err, "Failed to check slug")
			return
		}
		xerr.Success(c, http.StatusOK, res.Message, res)
	}
}

// GetSpaceUsage 空间用量
// @Summary 查询空间用量与套餐上限
// @Tags 空间
// @Produce json
// @Param spaceId path string true "空间 id"
// @Success 200 {object} xerr.Response{data=models.SpaceUsage} "成功"
// @Failure 404 {object} xerr.Response "空间不存在"
// @Router /api/spaces/{spaceId}/usage [get]
func GetSpaceUsage(spaceService gallery.SpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		usage, err := spaceService.GetUsage(c.Request.Context(), c.Param("spaceId"))
		if err != nil {
			writeError(c, err, "Failed to get space usage")
			return
		}
		xerr.Success(c, http.StatusOK, "OK", usage)
	}
}
