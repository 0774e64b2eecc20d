package models

import "time"

// Space 对应 spaces 表，一个活动对应一个空间
type Space struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	URLSlug          string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"urlSlug"`
	UserID           string    `gorm:"type:varchar(128);index;not null" json:"userId"` // 身份提供方的 subject id
	FirstName        string    `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName         string    `gorm:"type:varchar(100);not null" json:"lastName"`
	PartnerFirstName string    `gorm:"type:varchar(100);not null;default:''" json:"partnerFirstName"`
	PartnerLastName  string    `gorm:"type:varchar(100);not null;default:''" json:"partnerLastName"`
	EventDate        time.Time `gorm:"not null" json:"eventDate"`
	EventType        string    `gorm:"type:varchar(64);not null;default:''" json:"eventType"`
	IsPublic         bool      `gorm:"not null" json:"isPublic"` // 不能写 default:true，否则 false 会被 GORM 当成零值忽略
	Plan             string    `gorm:"type:varchar(32);not null" json:"plan"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (Space) TableName() string {
	return "spaces"
}

// CreateSpaceRequest 创建空间请求体，UserID 由鉴权中间件填充
type CreateSpaceRequest struct {
	URLSlug          string    `json:"urlSlug"`
	UserID           string    `json:"userId"`
	FirstName        string    `json:"firstName" binding:"required"`
	LastName         string    `json:"lastName" binding:"required"`
	PartnerFirstName string    `json:"partnerFirstName"`
	PartnerLastName  string    `json:"partnerLastName"`
	EventDate        time.Time `json:"eventDate" binding:"required"`
	EventType        string    `json:"eventType"`
	Plan             string    `json:"plan"`
	IsPublic         *bool     `json:"isPublic"`
}

// UpdateVisibilityRequest 修改空间公开状态
type UpdateVisibilityRequest struct {
	IsPublic *bool `json:"isPublic" binding:"required"`
}

// SlugCheckResult slug 可用性检查结果
type SlugCheckResult struct {
	Available     bool   `json:"available"`
	Message       string `json:"message"`
	SuggestedSlug string `json:"suggestedSlug,omitempty"`
}

// SpaceUsage 空间当前用量和套餐上限
type SpaceUsage struct {
	Plan     string `json:"plan"`
	Count    int64  `json:"count"`
	Bytes    int64  `json:"bytes"`
	MaxCount int64  `json:"maxCount"`
	MaxBytes int64  `json:"maxBytes"`
}
