package models

import (
	"io"
	"time"
)

// 媒体资源类型，由 MIME 推导
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
	MediaKindRaw   = "raw"
)

// DefaultUploader 访客未填写姓名时的默认上传者
const DefaultUploader = "Guest"

// Media 对应 media 表，一条记录对应对象存储里的一个文件
type Media struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SpaceID     string    `gorm:"type:varchar(36);not null;index:idx_media_space_uploaded,priority:1" json:"spaceId"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"fileName"`
	FileURL     string    `gorm:"type:varchar(1024);not null" json:"fileUrl"`
	FileType    string    `gorm:"type:varchar(16);not null" json:"fileType"`
	FileSize    int64     `gorm:"not null" json:"fileSize"`
	ContentType string    `gorm:"type:varchar(128);not null;default:''" json:"contentType"`
	StorageKey  string    `gorm:"type:varchar(512);not null;default:''" json:"-"` // 对象存储中的 key / public id
	UploadedBy  string    `gorm:"type:varchar(128);not null" json:"uploadedBy"`
	UploadedAt  time.Time `gorm:"not null;index:idx_media_space_uploaded,priority:2" json:"uploadedAt"`

	Space *Space `gorm:"foreignKey:SpaceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定 GORM 使用的表名
func (Media) TableName() string {
	return "media"
}

// UploadRequest 准入事务的输入。Reader 为 nil 表示请求里没有文件
type UploadRequest struct {
	SpaceID     string
	UploadedBy  string
	FileName    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// DeleteMediaBatchRequest 批量删除请求体
type DeleteMediaBatchRequest struct {
	MediaIDs []string `json:"mediaIds" binding:"required,min=1"`
}

// DeleteMediaBatchResult 批量删除结果
type DeleteMediaBatchResult struct {
	Deleted  []string `json:"deleted"`
	NotFound []string `json:"notFound"`
}
