package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/utils"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
)

// UploadMedia 访客向空间上传一个文件
// @Summary 上传媒体
// @Description 在配额允许时写入对象存储并记录元数据。被拒绝时 error 字段为原因：no-file、space-not-found、count-exceeded、storage-exceeded、store-failed、persist-failed、busy
// @Tags 媒体
// @Accept multipart/form-data
// @Produce json
// @Param spaceId path string true "空间 id"
// @Param file formData file true "上传的文件"
// @Param uploadedBy formData string false "上传者姓名，默认 Guest"
// @Success 201 {object} xerr.Response{data=models.Media} "上传成功"
// @Failure 400 {object} xerr.Response "未携带文件"
// @Failure 403 {object} xerr.Response "超出套餐配额"
// @Failure 404 {object} xerr.Response "空间不存在"
// @Failure 413 {object} xerr.Response "文件过大"
// @Failure 429 {object} xerr.Response "请求过于频繁"
// @Failure 500 {object} xerr.Response "存储或数据库错误"
// @Router /api/spaces/{spaceId}/media [post]
func UploadMedia(admission gallery.AdmissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		spaceID := c.Param("spaceId")
		req := &models.UploadRequest{
			SpaceID:    spaceID,
			UploadedBy: c.PostForm("uploadedBy"),
		}

		fileHeader, err := c.FormFile("file")
		switch {
		case err == nil:
			file, openErr := fileHeader.Open()
			if openErr != nil {
				logger.Error("UploadMedia: 打开上传文件失败", zap.String("spaceID", spaceID), zap.Error(openErr))
				xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "Failed to read uploaded file")
				return
			}
			defer file.Close()
			req.FileName = fileHeader.Filename
			req.Size = fileHeader.Size
			req.ContentType = fileHeader.Header.Get("Content-Type")
			req.Reader = file
		case errors.Is(err, http.ErrMissingFile):
			// 交给准入流程按 no-file 拒绝
		default:
			// multipart 解析可能不保留错误链，退回到比较错误文本
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
				xerr.ErrorWithReason(c, http.StatusRequestEntityTooLarge, xerr.FileTooLargeCode, xerr.ErrFileTooLarge.Error(), "file-too-large")
				return
			}
			xerr.ErrorWithReason(c, http.StatusBadRequest, xerr.InvalidParamsCode, "Invalid multipart form", err.Error())
			return
		}

		media, err := admission.Admit(c.Request.Context(), req)
		if err != nil {
			writeError(c, err, "Failed to upload file")
			return
		}
		xerr.Success(c, http.StatusCreated, "File uploaded successfully", media)
	}
}

// ListMedia 列出空间内的媒体
// @Summary 媒体列表
// @Description 按上传时间倒序返回。私密空间仅所有者可以查看
// @Tags 媒体
// @Produce json
// @Param spaceId path string true "空间 id"
// @Success 200 {object} xerr.Response{data=[]models.Media} "成功"
// @Failure 403 {object} xerr.Response "空间为私密"
// @Failure 404 {object} xerr.Response "空间不存在"
// @Router /api/spaces/{spaceId}/media [get]
func ListMedia(mediaService gallery.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := mediaService.ListMedia(c.Request.Context(), utils.OptionalUserID(c), c.Param("spaceId"))
		if err != nil {
			writeError(c, err, "Failed to list media")
			return
		}
		xerr.Success(c, http.StatusOK, "OK", list)
	}
}

// DeleteMedia 删除单个媒体
// @Summary 删除媒体
// @Tags 媒体
// @Produce json
// @Security BearerAuth
// @Param spaceId path string true "空间 id"
// @Param mediaId path string true "媒体 id"
// @Success 200 {object} xerr.Response "删除成功"
// @Failure 403 {object} xerr.Response "不是空间所有者"
// @Failure 404 {object} xerr.Response "媒体不存在"
// @Router /api/spaces/{spaceId}/media/{mediaId} [delete]
func DeleteMedia(mediaService gallery.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentUserID, ok := utils.GetUserIDFromContext(c)
		if !ok {
			return
		}
		mediaID := c.Param("mediaId")
		if err := mediaService.DeleteMedia(c.Request.Context(), currentUserID, c.Param("spaceId"), mediaID); err != nil {
			writeError(c, err, "Failed to delete media")
			return
		}
		xerr.Success(c, http.StatusOK, "Media deleted successfully", gin.H{"id": mediaID})
	}
}

// DeleteMediaBatch 批量删除媒体
// @Summary 批量删除媒体
// @Tags 媒体
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param spaceId path string true "空间 id"
// @Param request body models.DeleteMediaBatchRequest true "媒体 id 列表"
// @Success 200 {object} xerr.Response{data=models.DeleteMediaBatchResult} "删除结果"
// @Failure 400 {object} xerr.Response "参数错误"
// @Failure 403 {object} xerr.Response "不是空间所有者"
// @Router /api/spaces/{spaceId}/media [delete]
func DeleteMediaBatch(mediaService gallery.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentUserID, ok := utils.GetUserIDFromContext(c)
		if !ok {
			return
		}
		var req models.DeleteMediaBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			xerr.ErrorWithReason(c, http.StatusBadRequest, xerr.InvalidParamsCode, "mediaIds is required", err.Error())
			return
		}

		res, err := mediaService.DeleteMediaBatch(c.Request.Context(), currentUserID, c.Param("spaceId"), req.MediaIDs)
		if err != nil {
			writeError(c, err, "Failed to delete media")
			return
		}
		xerr.Success(c, http.StatusOK, fmt.Sprintf("%d media deleted", len(res.Deleted)), res)
	}
}

// DownloadArchive 打包下载空间内所有媒体
// @Summary 下载空间压缩包
// @Tags 媒体
// @Produce application/zip
// @Security BearerAuth
// @Param spaceId path string true "空间 id"
// @Success 200 {file} file "zip 文件流"
// @Failure 403 {object} xerr.Response "不是空间所有者"
// @Failure 404 {object} xerr.Response "空间不存在"
// @Router /api/spaces/{spaceId}/media/archive [get]
func DownloadArchive(mediaService gallery.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentUserID, ok := utils.GetUserIDFromContext(c)
		if !ok {
			return
		}

		name, reader, err := mediaService.ArchiveSpace(c.Request.Context(), currentUserID, c.Param("spaceId"))
		if err != nil {
			writeError(c, err, "Failed to archive space")
			return
		}
		defer reader.Close()

		// 长度未知，使用分块传输
		c.DataFromReader(http.StatusOK, -1, "application/zip", reader, map[string]string{
			"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
		})
	}
}
